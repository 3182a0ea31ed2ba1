package capture

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opspulse/workmon/internal/domain"
)

func TestKeystrokeRingBuffer_AppendAndTake(t *testing.T) {
	ring := NewKeystrokeRingBuffer(100)

	ring.Append(domain.KeyEvent{Key: "h"})
	ring.Append(domain.KeyEvent{Key: "i"})
	assert.Equal(t, 2, ring.Len())

	keys := ring.TakeAll()
	require.Len(t, keys, 2)
	assert.Equal(t, "h", keys[0].Key)
	assert.Equal(t, "i", keys[1].Key)
	assert.Equal(t, 0, ring.Len())
}

func TestKeystrokeRingBuffer_EvictsOldestBeyondCapacity(t *testing.T) {
	ring := NewKeystrokeRingBuffer(100)

	for i := 0; i < 150; i++ {
		ring.Append(domain.KeyEvent{Key: fmt.Sprintf("k%d", i)})
	}

	keys := ring.TakeAll()
	require.Len(t, keys, 100)
	assert.Equal(t, "k50", keys[0].Key)
	assert.Equal(t, "k149", keys[99].Key)
}

func TestKeystrokeRingBuffer_TakeAllClears(t *testing.T) {
	ring := NewKeystrokeRingBuffer(10)
	ring.Append(domain.KeyEvent{Key: "a"})

	assert.Len(t, ring.TakeAll(), 1)
	assert.Empty(t, ring.TakeAll())
}
