package utils

import (
	"testing"

	"xapi-connector/src/models"

	"github.com/stretchr/testify/assert"
)

func ticks(symbol string, from, to int64) []models.MTick {
	var out []models.MTick
	for ts := from; ts <= to; ts++ {
		out = append(out, models.MTick{Symbol: symbol, Timestamp: ts})
	}
	return out
}

func timestamps(ts []models.MTick) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.Timestamp
	}
	return out
}

func TestRingBufferWrapsAround(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, tk := range ticks("EURUSD", 1, 5) {
		rb.Append(tk)
	}
	assert.True(t, rb.IsFull())
	assert.Equal(t, []int64{3, 4, 5}, timestamps(rb.GetAll()))
	assert.Equal(t, []int64{5, 4}, timestamps(rb.GetLatest(2)))
	assert.Equal(t, []int64{5, 4, 3}, timestamps(rb.GetLatest(10)))
	assert.Empty(t, rb.GetLatest(0))
}

func TestRingBufferResize(t *testing.T) {
	rb := NewRingBuffer(5)
	for _, tk := range ticks("EURUSD", 1, 7) {
		rb.Append(tk)
	}
	rb.Resize(2)
	assert.Equal(t, []int64{6, 7}, timestamps(rb.GetAll()))

	rb.Resize(4)
	rb.Append(models.MTick{Timestamp: 8})
	assert.Equal(t, []int64{6, 7, 8}, timestamps(rb.GetAll()))

	rb.Clear()
	assert.Equal(t, 0, rb.Size())
	assert.Empty(t, rb.GetAll())
}

func TestMemoryManager(t *testing.T) {
	mm := NewMemoryManager(0, 2, nil)
	mm.AddTicks(append(ticks("EURUSD", 1, 3), ticks("US500", 10, 10)...))

	assert.Equal(t, 2, mm.SymbolCount())
	assert.Equal(t, []int64{3, 2}, timestamps(mm.Latest("EURUSD", 5)))
	assert.Empty(t, mm.Latest("GOLD", 5))

	snap := mm.Snapshot()
	assert.Equal(t, int64(3), snap["EURUSD"].Timestamp)
	assert.Equal(t, int64(10), snap["US500"].Timestamp)

	mm.Cleanup()
	assert.Equal(t, 0, mm.SymbolCount())
}

func TestCalculateMaxDataPoints(t *testing.T) {
	assert.Equal(t, DefaultMaxTicksPerSymbol, CalculateMaxDataPoints(0))
	assert.Equal(t, 17280, CalculateMaxDataPoints(5))
	assert.Equal(t, maxTicksPerSymbol, CalculateMaxDataPoints(1))
	assert.Equal(t, minTicksPerSymbol, CalculateMaxDataPoints(86400))
}
