package cache

import (
	"context"
	"fmt"
	"time"

	"xapi-connector/src/models"

	"github.com/allegro/bigcache/v3"
	"github.com/fxamacker/cbor/v2"
)

const allSymbolsKey = "\x00all"

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}
}

// -----------------------------------------------------------------------------

// SymbolCache keeps getSymbol / getAllSymbols answers for a while so the
// gateway does not spend rate-limited commands on static data. Entries are
// CBOR encoded.
type SymbolCache struct {
	cache *bigcache.BigCache
}

// NewSymbolCache creates a cache whose entries expire after ttl.
func NewSymbolCache(ctx context.Context, ttl time.Duration) (*SymbolCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 10000
	cfg.CleanWindow = ttl / 2
	if cfg.CleanWindow < time.Second {
		cfg.CleanWindow = time.Second
	}
	cfg.Verbose = false

	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create symbol cache: %w", err)
	}
	return &SymbolCache{cache: c}, nil
}

// -----------------------------------------------------------------------------

func (s *SymbolCache) Get(symbol string) (models.MSymbol, bool) {
	var out models.MSymbol
	return out, s.load(symbol, &out)
}

func (s *SymbolCache) Set(sym models.MSymbol) error {
	return s.store(sym.Symbol, sym)
}

// All returns the cached getAllSymbols answer.
func (s *SymbolCache) All() ([]models.MSymbol, bool) {
	var out []models.MSymbol
	return out, s.load(allSymbolsKey, &out)
}

// SetAll caches the full list and every symbol in it.
func (s *SymbolCache) SetAll(symbols []models.MSymbol) error {
	if err := s.store(allSymbolsKey, symbols); err != nil {
		return err
	}
	for _, sym := range symbols {
		if err := s.Set(sym); err != nil {
			return err
		}
	}
	return nil
}

func (s *SymbolCache) Len() int {
	return s.cache.Len()
}

func (s *SymbolCache) Close() error {
	return s.cache.Close()
}

// -----------------------------------------------------------------------------

func (s *SymbolCache) store(key string, v any) error {
	data, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q for the cache: %w", key, err)
	}
	return s.cache.Set(key, data)
}

// load reports false on a miss or an entry that no longer decodes.
func (s *SymbolCache) load(key string, out any) bool {
	data, err := s.cache.Get(key)
	if err != nil {
		return false
	}
	if err := cbor.Unmarshal(data, out); err != nil {
		_ = s.cache.Delete(key)
		return false
	}
	return true
}
