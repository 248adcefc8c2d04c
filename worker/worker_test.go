package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEverything(t *testing.T) {
	p := NewPool(4, 8)
	var n atomic.Int32
	for range 100 {
		require.True(t, p.Submit(func() { n.Add(1) }))
	}
	p.Close()
	assert.EqualValues(t, 100, n.Load())
	assert.False(t, p.Submit(func() {}))
}

func TestPoolSurvivesPanic(t *testing.T) {
	p := NewPool(1, 1)
	var ran atomic.Bool
	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })
	p.Close()
	assert.True(t, ran.Load())
}
