package ops

import (
	"github.com/gomlx/exceptions"

	"github.com/ksztenderski/dali/backends/streams"
	"github.com/ksztenderski/dali/backends/threadpool"
	"github.com/ksztenderski/dali/batches"
)

// Workspace is the transient execution context of one operator invocation:
// the positional inputs, named argument inputs, output slots, batch size,
// and the thread pool or stream the invocation is bound to.
//
// A Workspace carries no state across invocations -- it is cleared, not
// reallocated, at the start of each one. Resources are referenced, never
// owned.
type Workspace struct {
	inputs    []*batches.Batch
	argInputs map[string]*batches.Batch
	outputs   []*batches.Batch
	batchSize int

	threadPool *threadpool.Pool
	stream     *streams.Stream
}

// Clear discards all bindings of the previous invocation, keeping the
// allocated bookkeeping for reuse.
func (w *Workspace) Clear() {
	w.inputs = w.inputs[:0]
	w.outputs = w.outputs[:0]
	clear(w.argInputs)
	w.batchSize = 0
	w.threadPool = nil
	w.stream = nil
}

// AddInput appends one positional input.
func (w *Workspace) AddInput(b *batches.Batch) {
	w.inputs = append(w.inputs, b)
}

// Input returns the positional input at index i.
func (w *Workspace) Input(i int) *batches.Batch {
	if i < 0 || i >= len(w.inputs) {
		exceptions.Panicf("Workspace.Input(%d): workspace has %d inputs", i, len(w.inputs))
	}
	return w.inputs[i]
}

// NumInput returns the number of bound positional inputs.
func (w *Workspace) NumInput() int { return len(w.inputs) }

// AddArgumentInput binds one named argument input (a host-resident batch).
func (w *Workspace) AddArgumentInput(name string, b *batches.Batch) {
	if w.argInputs == nil {
		w.argInputs = make(map[string]*batches.Batch)
	}
	w.argInputs[name] = b
}

// ArgumentInput returns the argument input bound under name, if any.
func (w *Workspace) ArgumentInput(name string) (*batches.Batch, bool) {
	b, found := w.argInputs[name]
	return b, found
}

// AddOutput appends one output slot.
func (w *Workspace) AddOutput(b *batches.Batch) {
	w.outputs = append(w.outputs, b)
}

// Output returns the output slot at index i.
func (w *Workspace) Output(i int) *batches.Batch {
	if i < 0 || i >= len(w.outputs) {
		exceptions.Panicf("Workspace.Output(%d): workspace has %d outputs", i, len(w.outputs))
	}
	return w.outputs[i]
}

// NumOutput returns the number of registered output slots.
func (w *Workspace) NumOutput() int { return len(w.outputs) }

// SetBatchSize records the batch size of the invocation.
func (w *Workspace) SetBatchSize(n int) { w.batchSize = n }

// BatchSize returns the batch size of the invocation.
func (w *Workspace) BatchSize() int { return w.batchSize }

// SetThreadPool binds the invocation to a host thread pool.
func (w *Workspace) SetThreadPool(p *threadpool.Pool) { w.threadPool = p }

// ThreadPool returns the bound thread pool, or nil for device kinds.
func (w *Workspace) ThreadPool() *threadpool.Pool { return w.threadPool }

// SetStream binds the invocation to a device stream.
func (w *Workspace) SetStream(s *streams.Stream) { w.stream = s }

// Stream returns the bound stream, or nil for the host-only kind.
func (w *Workspace) Stream() *streams.Stream { return w.stream }

// HasStream returns whether the invocation is bound to a stream.
func (w *Workspace) HasStream() bool { return w.stream != nil }
