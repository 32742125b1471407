package utils

import (
	"sync"
	"time"

	"xapi-connector/src/logger"
)

// MarketScheduler tells the tick poller which symbols are worth asking for.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
	now       func() time.Time
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		now:       time.Now,
	}
	ms.MapSymbolsToCalendars(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// MapSymbolsToCalendars replaces the tracked symbols.
func (ms *MarketScheduler) MapSymbolsToCalendars(symbols []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar, len(symbols))
	mics := make(map[string]bool)
	for _, symbol := range symbols {
		cal := GetCalendar(symbol)
		ms.Calendars[symbol] = cal
		if cal.Calendar != nil {
			mics[cal.MIC] = true
		}
	}

	ms.Logger.Info("MarketScheduler: Mapped %d symbols to %d exchange calendars.", len(symbols), len(mics))
}

func (ms *MarketScheduler) UpdateSymbols(symbols []string) {
	ms.MapSymbolsToCalendars(symbols)
}

// -----------------------------------------------------------------------------

// IsOpen reports whether symbol's exchange is open now. Untracked symbols
// count as open.
func (ms *MarketScheduler) IsOpen(symbol string) bool {
	ms.mu.RLock()
	cal, ok := ms.Calendars[symbol]
	ms.mu.RUnlock()
	if !ok {
		return true
	}
	return cal.IsOpenOnMinute(ms.now().UTC())
}

// OpenSymbols splits symbols into those whose market is open and the number
// skipped.
func (ms *MarketScheduler) OpenSymbols(symbols []string) ([]string, int) {
	open := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if ms.IsOpen(s) {
			open = append(open, s)
		}
	}
	return open, len(symbols) - len(open)
}

// AnyMarketOpen checks if any tracked market is currently open.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if len(ms.Calendars) == 0 {
		return false
	}
	now := ms.now().UTC()
	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
