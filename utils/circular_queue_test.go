package utils

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircularQueueOverwritesOldest(t *testing.T) {
	q := NewCircularQueue[int](3, nil)
	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Append(i))
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []int{3, 4, 5}, slices.Collect(q.Iter()))

	last, ok := q.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last)

	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 3, first)

	v, err := q.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	_, err = q.Get(2)
	assert.Error(t, err)
}

func TestCircularQueueZeroCapacity(t *testing.T) {
	q := NewCircularQueue[string](0, nil)
	assert.Error(t, q.Append("x"))
	_, ok := q.Last()
	assert.False(t, ok)
}
