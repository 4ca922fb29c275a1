package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AddAndAll(t *testing.T) {
	b := New[int](3)
	b.Add(1)
	b.Add(2)
	assert.Equal(t, []int{1, 2}, b.All())
	assert.Equal(t, 2, b.Len())
	assert.False(t, b.IsFull())
}

func TestBuffer_OverwritesOldestOnceFull(t *testing.T) {
	b := New[int](3)
	b.Add(1)
	b.Add(2)
	b.Add(3)
	b.Add(4)
	assert.Equal(t, []int{2, 3, 4}, b.All())
	assert.True(t, b.IsFull())
	assert.Equal(t, uint64(4), b.TotalAdded())
}

func TestBuffer_Latest(t *testing.T) {
	b := New[int](5)
	for i := 1; i <= 5; i++ {
		b.Add(i)
	}
	assert.Equal(t, []int{4, 5}, b.Latest(2))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, b.Latest(0))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, b.Latest(100))
}

func TestBuffer_Clear(t *testing.T) {
	b := New[int](3)
	b.Add(1)
	b.Add(2)
	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.All())
}

func TestBuffer_MinimumCapacity(t *testing.T) {
	b := New[int](0)
	b.Add(1)
	b.Add(2)
	require.Equal(t, 1, b.Len())
	assert.Equal(t, []int{2}, b.All())
}

func TestBuffer_ConcurrentAdd(t *testing.T) {
	b := New[int](100)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			b.Add(v)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, uint64(50), b.TotalAdded())
	assert.Equal(t, 50, b.Len())
}
