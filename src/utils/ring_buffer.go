package utils

import (
	"xapi-connector/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of quotes.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     []models.MTick
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultMaxTicksPerSymbol
	}

	return &RingBuffer{
		data:     make([]models.MTick, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) Append(tick models.MTick) {
	rb.data[rb.index] = tick
	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns up to n most recent ticks, newest first.
func (rb *RingBuffer) GetLatest(n int) []models.MTick {
	if rb.size == 0 || n <= 0 {
		return []models.MTick{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MTick, count)
	for i := 0; i < count; i++ {
		idx := (rb.index - 1 - i + rb.capacity) % rb.capacity
		result[i] = rb.data[idx]
	}
	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all ticks oldest to newest.
func (rb *RingBuffer) GetAll() []models.MTick {
	result := make([]models.MTick, rb.size)

	startIdx := 0
	if rb.size == rb.capacity {
		startIdx = rb.index
	}
	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}
	return result
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) Size() int {
	return rb.size
}

func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity. When shrinking, the oldest ticks are dropped.
func (rb *RingBuffer) Resize(newCapacity int) {
	if newCapacity <= 0 || newCapacity == rb.capacity {
		return
	}

	all := rb.GetAll()
	if len(all) > newCapacity {
		all = all[len(all)-newCapacity:]
	}

	rb.data = make([]models.MTick, newCapacity)
	copy(rb.data, all)
	rb.capacity = newCapacity
	rb.size = len(all)
	rb.index = rb.size % newCapacity
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
