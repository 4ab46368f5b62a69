package shapes

// Layout is the semantic label of a sample's axes, one letter per axis:
// e.g. "HWC" for an interleaved image, "CHW" for a planar one.
//
// The empty Layout means "unspecified"; execution fills it in from the
// operator schema's default for the sample's rank, and never overwrites a
// layout that was set explicitly.
type Layout string

// Empty returns whether the layout is unspecified.
func (l Layout) Empty() bool { return len(l) == 0 }

// Rank returns the number of axes the layout describes.
func (l Layout) Rank() int { return len(l) }

// MatchesRank returns whether the layout describes samples of the given rank.
func (l Layout) MatchesRank(rank int) bool { return len(l) == rank }
