package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents_NeverBlocksWorker(t *testing.T) {
	e := NewEvents()
	// Nobody is draining; the worker must still be able to emit freely.
	for i := 0; i < 10000; i++ {
		e.Progress(i % 101)
		e.Log("line")
	}
	e.Close()

	// The buffered portion is still delivered in order.
	var got []int
	for p := range e.ProgressCh() {
		got = append(got, p)
	}
	assert.Len(t, got, 256)
	assert.Equal(t, 0, got[0])
}

func TestEvents_DeliversInOrder(t *testing.T) {
	e := NewEvents()
	e.Progress(10)
	e.Progress(20)
	e.Log("first")
	e.Log("second")
	e.Close()

	assert.Equal(t, 10, <-e.ProgressCh())
	assert.Equal(t, 20, <-e.ProgressCh())
	assert.Equal(t, "first", <-e.LogCh())
	assert.Equal(t, "second", <-e.LogCh())
}
