package idledetector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/idletracker/pkg/ctdf"
)

func TestBufferFillsToCapacity(t *testing.T) {
	buffer := NewBuffer(2)
	assert.Equal(t, 4, buffer.Capacity())

	for i := 1; i <= 3; i++ {
		buffer.Push(ctdf.Snapshot{observation("v1", "t1", 1, 1, int64(i))})
		assert.False(t, buffer.Ready())
		assert.Equal(t, i, buffer.Len())
	}

	assert.Panics(t, func() { buffer.Views() })

	buffer.Push(ctdf.Snapshot{observation("v1", "t1", 1, 1, 4)})
	assert.True(t, buffer.Ready())

	a, b, c := buffer.Views()
	assert.Equal(t, int64(1), a[0].Timestamp)
	assert.Equal(t, int64(3), b[0].Timestamp)
	assert.Equal(t, int64(4), c[0].Timestamp)

	buffer.Push(ctdf.Snapshot{observation("v1", "t1", 1, 1, 5)})
	assert.Equal(t, 4, buffer.Len())

	a, b, c = buffer.Views()
	assert.Equal(t, int64(2), a[0].Timestamp)
	assert.Equal(t, int64(4), b[0].Timestamp)
	assert.Equal(t, int64(5), c[0].Timestamp)
}

func TestBufferStoresCopies(t *testing.T) {
	buffer := NewBuffer(1)

	snapshot := ctdf.Snapshot{observation("v1", "t1", 1, 1, 100)}
	buffer.Push(snapshot)
	buffer.Push(ctdf.Snapshot{})
	buffer.Push(ctdf.Snapshot{})

	snapshot[0].Timestamp = 999

	a, _, _ := buffer.Views()
	assert.Equal(t, int64(100), a[0].Timestamp)
}

func TestBufferEmptySnapshots(t *testing.T) {
	buffer := NewBuffer(1)
	buffer.Push(nil)
	buffer.Push(ctdf.Snapshot{})
	buffer.Push(nil)

	assert.True(t, buffer.Ready())

	a, b, c := buffer.Views()
	assert.Empty(t, a)
	assert.Empty(t, b)
	assert.Empty(t, c)
}
