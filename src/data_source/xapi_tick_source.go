package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/models"
	"xapi-connector/src/utils"
)

// XapiTickSource polls getTickPrices for the configured symbols and forwards
// quotes it has not seen before.
type XapiTickSource struct {
	Config           *models.MConfig
	Client           interfaces.IXapiClient
	Logger           *logger.Logger
	MarketScheduler  *utils.MarketScheduler
	symbols          atomic.Value // []string
	LastTimestamps   map[string]int64 // oldest high-water mark among a symbol's levels
	lastSeen         map[tickKey]int64
	lastTimestampsMu sync.Mutex
	cancelFunc       context.CancelFunc
	isRunning        atomic.Bool
	mu               sync.Mutex
}

// -----------------------------------------------------------------------------

func NewXapiTickSource(cfg *models.MConfig, client interfaces.IXapiClient, log *logger.Logger) *XapiTickSource {
	if log == nil {
		log = logger.NewNopLogger()
	}
	symbols := append([]string(nil), cfg.DataSource.Symbols...)
	s := &XapiTickSource{
		Config:          cfg,
		Client:          client,
		Logger:          log,
		LastTimestamps:  make(map[string]int64),
		lastSeen:        make(map[tickKey]int64),
		MarketScheduler: utils.NewMarketScheduler(symbols, log),
	}
	s.symbols.Store(symbols)
	return s
}

func (s *XapiTickSource) Name() string {
	return "xapi-ticks"
}

// -----------------------------------------------------------------------------

// FetchUpdateData polls once. Symbols whose exchange is closed are skipped
// when respect_market_hours is set.
func (s *XapiTickSource) FetchUpdateData(ctx context.Context) (models.MTickBatch, error) {
	start := time.Now()
	symbols := s.getSymbols()
	skipped := 0
	if s.Config.DataSource.RespectMarketHours {
		symbols, skipped = s.MarketScheduler.OpenSymbols(symbols)
	}

	batch := models.MTickBatch{
		Ticks:     []models.MTick{},
		FetchedAt: start.UnixMilli(),
		Metrics:   models.MProcessingMetrics{Symbols: len(symbols), SkippedClosed: skipped},
	}
	if len(symbols) == 0 {
		return batch, nil
	}

	s.lastTimestampsMu.Lock()
	defer s.lastTimestampsMu.Unlock()

	prices, err := s.Client.GetTickPrices(ctx, s.Config.DataSource.Level, symbols, s.oldestSeen(symbols))
	if err != nil {
		return batch, fmt.Errorf("getTickPrices for %d symbols: %w", len(symbols), err)
	}

	batch.Ticks = s.dedup(prices.Quotations)
	batch.Metrics.NewTicks = len(batch.Ticks)
	batch.Metrics.PollTimeSeconds = time.Since(start).Seconds()
	return batch, nil
}

// oldestSeen is the timestamp argument for getTickPrices: the server returns
// quotes newer than it, so the least recent symbol decides. Unseen symbols
// force a full snapshot.
func (s *XapiTickSource) oldestSeen(symbols []string) int64 {
	var oldest int64
	for i, sym := range symbols {
		ts, ok := s.LastTimestamps[sym]
		if !ok {
			return 0
		}
		if i == 0 || ts < oldest {
			oldest = ts
		}
	}
	return oldest
}

type tickKey struct {
	symbol string
	level  int
}

// dedup keeps quotes strictly newer than the last one forwarded for their
// symbol and depth level and records the new high-water marks. Output is
// ordered by timestamp, then symbol, then level.
func (s *XapiTickSource) dedup(quotes []models.MTick) []models.MTick {
	fresh := make([]models.MTick, 0, len(quotes))
	newest := make(map[tickKey]int64)
	for _, q := range quotes {
		key := tickKey{q.Symbol, q.Level}
		if last, ok := s.lastSeen[key]; ok && q.Timestamp <= last {
			continue
		}
		fresh = append(fresh, q)
		if ts, ok := newest[key]; !ok || q.Timestamp > ts {
			newest[key] = q.Timestamp
		}
	}

	touched := make(map[string]bool)
	for key, ts := range newest {
		s.lastSeen[key] = ts
		touched[key.symbol] = true
	}
	for sym := range touched {
		delete(s.LastTimestamps, sym)
	}
	for key, ts := range s.lastSeen {
		if !touched[key.symbol] {
			continue
		}
		if cur, ok := s.LastTimestamps[key.symbol]; !ok || ts < cur {
			s.LastTimestamps[key.symbol] = ts
		}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		a, b := fresh[i], fresh[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Level < b.Level
	})
	return fresh
}

// -----------------------------------------------------------------------------

// Start begins the polling loop.
func (s *XapiTickSource) Start(parentCtx context.Context, outputChan chan<- models.MTickBatch, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning.Load() {
		return fmt.Errorf("source %s is already running", s.Name())
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel
	s.isRunning.Store(true)

	wg.Add(1)
	go s.runLoop(ctx, outputChan, wg)
	s.Logger.Info("Started %s for %d symbols", s.Name(), len(s.getSymbols()))
	return nil
}

// Stop signals the run loop to exit.
func (s *XapiTickSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return fmt.Errorf("source %s is not running", s.Name())
	}
	s.cancelFunc()
	s.isRunning.Store(false)
	s.Logger.Info("Stopped %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

func (s *XapiTickSource) runLoop(ctx context.Context, outputChan chan<- models.MTickBatch, wg *sync.WaitGroup) {
	defer wg.Done()
	defer s.isRunning.Store(false)

	interval := time.Duration(s.Config.DataSource.UpdateIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Client.IsLoggedIn() {
				s.Logger.Debug("Not logged in, skipping poll")
				continue
			}

			batch, err := s.FetchUpdateData(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.Logger.Warning("Error fetching updates: %v", err)
				continue
			}
			if len(batch.Ticks) == 0 {
				continue
			}

			select {
			case outputChan <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *XapiTickSource) UpdateSymbols(symbols []string) error {
	symbols = append([]string(nil), symbols...)
	s.symbols.Store(symbols)
	s.MarketScheduler.UpdateSymbols(symbols)
	s.Logger.Info("Updated symbol list. New count: %d", len(symbols))
	return nil
}

func (s *XapiTickSource) getSymbols() []string {
	return s.symbols.Load().([]string)
}
