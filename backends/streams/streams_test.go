package streams

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamOrdering(t *testing.T) {
	s := New(0)
	defer s.Close()

	var got []int
	for i := 0; i < 20; i++ {
		s.Enqueue(func() error {
			got = append(got, i)
			return nil
		})
	}
	require.NoError(t, s.Synchronize())
	expected := make([]int, 20)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, got)
}

func TestSynchronizeWaitsForInFlightWork(t *testing.T) {
	s := New(0)
	defer s.Close()

	done := false
	s.Enqueue(func() error {
		time.Sleep(50 * time.Millisecond)
		done = true
		return nil
	})
	require.NoError(t, s.Synchronize())
	assert.True(t, done)
}

func TestStreamErrorSurfacesAtSync(t *testing.T) {
	s := New(0)
	defer s.Close()

	boom := errors.New("boom")
	ran := false
	s.Enqueue(func() error { return boom })
	s.Enqueue(func() error { ran = true; return nil }) // Still runs after a failure.
	require.ErrorIs(t, s.Synchronize(), boom)
	assert.True(t, ran)

	// The error was consumed; the stream is usable again.
	s.Enqueue(func() error { return nil })
	require.NoError(t, s.Synchronize())
}

func TestStreamFirstErrorWins(t *testing.T) {
	s := New(0)
	defer s.Close()

	first := errors.New("first")
	s.Enqueue(func() error { return first })
	s.Enqueue(func() error { return errors.New("second") })
	require.ErrorIs(t, s.Synchronize(), first)
}

func TestPoolReusesReturnedStreams(t *testing.T) {
	p := NewPool()
	a := p.Get(0)
	p.Put(a)
	b := p.Get(0)
	assert.Same(t, a, b)

	c := p.Get(1)
	assert.NotSame(t, a, c)
	require.Equal(t, a.Device(), b.Device())
	b.Close()
	c.Close()
}

func TestInvalidDevice(t *testing.T) {
	require.Panics(t, func() { New(-1) })
}
