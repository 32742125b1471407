package utils

import (
	"runtime"
	"runtime/debug"
	"sync"

	"xapi-connector/src/logger"
	"xapi-connector/src/models"
)

// -----------------------------------------------------------------------------
// MemoryManager keeps the most recent quotes of every polled symbol. The
// gateway answers /api/ticks from it when no journal is configured.
// -----------------------------------------------------------------------------

type MemoryManager struct {
	DataStreams   map[string]*RingBuffer
	MaxMemoryMB   int
	MaxDataPoints int
	Logger        *logger.Logger
	mu            sync.RWMutex
	added         int
}

// -----------------------------------------------------------------------------

func NewMemoryManager(maxMemoryMB, maxDataPoints int, log *logger.Logger) *MemoryManager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MemoryManager{
		DataStreams:   make(map[string]*RingBuffer),
		MaxMemoryMB:   maxMemoryMB,
		MaxDataPoints: maxDataPoints,
		Logger:        log,
	}
}

// -----------------------------------------------------------------------------

// AddTicks appends a poll result. Ticks are expected oldest first.
func (mm *MemoryManager) AddTicks(ticks []models.MTick) {
	mm.mu.Lock()
	for _, t := range ticks {
		buf, ok := mm.DataStreams[t.Symbol]
		if !ok {
			buf = NewRingBuffer(mm.MaxDataPoints)
			mm.DataStreams[t.Symbol] = buf
		}
		buf.Append(t)
	}
	before := mm.added / 1000
	mm.added += len(ticks)
	check := mm.added/1000 != before
	mm.mu.Unlock()

	if check && mm.MaxMemoryMB > 0 {
		mm.CheckMemoryLimits()
	}
}

// -----------------------------------------------------------------------------

// Latest returns up to n recent ticks of symbol, newest first.
func (mm *MemoryManager) Latest(symbol string, n int) []models.MTick {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buf, ok := mm.DataStreams[symbol]
	if !ok {
		return []models.MTick{}
	}
	return buf.GetLatest(n)
}

// Snapshot returns the newest tick of every symbol.
func (mm *MemoryManager) Snapshot() map[string]models.MTick {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	out := make(map[string]models.MTick, len(mm.DataStreams))
	for sym, buf := range mm.DataStreams {
		if latest := buf.GetLatest(1); len(latest) > 0 {
			out[sym] = latest[0]
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits halves every buffer when the heap is over MaxMemoryMB.
func (mm *MemoryManager) CheckMemoryLimits() {
	currentMemory := mm.GetProcessMemoryMB()
	if currentMemory <= float64(mm.MaxMemoryMB) {
		return
	}

	mm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Shrinking tick buffers.", currentMemory, mm.MaxMemoryMB)

	mm.mu.Lock()
	for _, buf := range mm.DataStreams {
		if buf.Capacity() > 100 {
			newCapacity := buf.Capacity() / 2
			if newCapacity < minTicksPerSymbol {
				newCapacity = minTicksPerSymbol
			}
			buf.Resize(newCapacity)
		}
	}
	mm.mu.Unlock()

	runtime.GC()
	debug.FreeOSMemory()
}

// -----------------------------------------------------------------------------

func (mm *MemoryManager) GetProcessMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}

// -----------------------------------------------------------------------------

func (mm *MemoryManager) Cleanup() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.DataStreams = make(map[string]*RingBuffer)
}

// -----------------------------------------------------------------------------

func (mm *MemoryManager) SymbolCount() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	return len(mm.DataStreams)
}
