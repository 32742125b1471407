package testutil

import (
	"context"
	"errors"
	"sync"

	"xapi-connector/src/decoder"
	"xapi-connector/src/models"
)

// ErrNotStubbed is returned by StubClient methods without a stubbed answer.
var ErrNotStubbed = errors.New("stub: not stubbed")

// StubClient implements interfaces.IXapiClient with canned answers. Nil
// function fields return ErrNotStubbed.
type StubClient struct {
	mu    sync.Mutex
	calls []string

	LoggedIn bool

	PingFn           func(ctx context.Context) (bool, error)
	GetServerTimeFn  func(ctx context.Context) (models.MServerTime, error)
	GetVersionFn     func(ctx context.Context) (models.MVersion, error)
	GetAllSymbolsFn  func(ctx context.Context) ([]models.MSymbol, error)
	GetSymbolFn      func(ctx context.Context, symbol string) (models.MSymbol, error)
	GetTickPricesFn  func(ctx context.Context, level int, symbols []string, timestamp int64) (models.MTickPrices, error)
	GetTradesFn      func(ctx context.Context, openedOnly bool) ([]models.MTrade, error)
	GetMarginLevelFn func(ctx context.Context) (models.MMarginLevel, error)
	CallFn           func(ctx context.Context, name string, args map[string]any) (decoder.Payload, error)
}

func (s *StubClient) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

// Calls lists the methods invoked so far, in order.
func (s *StubClient) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount counts invocations of one method.
func (s *StubClient) CallCount(name string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// -----------------------------------------------------------------------------

func (s *StubClient) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LoggedIn
}

func (s *StubClient) Ping(ctx context.Context) (bool, error) {
	s.record("Ping")
	if s.PingFn == nil {
		return true, nil
	}
	return s.PingFn(ctx)
}

func (s *StubClient) GetServerTime(ctx context.Context) (models.MServerTime, error) {
	s.record("GetServerTime")
	if s.GetServerTimeFn == nil {
		return models.MServerTime{}, ErrNotStubbed
	}
	return s.GetServerTimeFn(ctx)
}

func (s *StubClient) GetVersion(ctx context.Context) (models.MVersion, error) {
	s.record("GetVersion")
	if s.GetVersionFn == nil {
		return models.MVersion{}, ErrNotStubbed
	}
	return s.GetVersionFn(ctx)
}

func (s *StubClient) GetAllSymbols(ctx context.Context) ([]models.MSymbol, error) {
	s.record("GetAllSymbols")
	if s.GetAllSymbolsFn == nil {
		return nil, ErrNotStubbed
	}
	return s.GetAllSymbolsFn(ctx)
}

func (s *StubClient) GetSymbol(ctx context.Context, symbol string) (models.MSymbol, error) {
	s.record("GetSymbol")
	if s.GetSymbolFn == nil {
		return models.MSymbol{}, ErrNotStubbed
	}
	return s.GetSymbolFn(ctx, symbol)
}

func (s *StubClient) GetTickPrices(ctx context.Context, level int, symbols []string, timestamp int64) (models.MTickPrices, error) {
	s.record("GetTickPrices")
	if s.GetTickPricesFn == nil {
		return models.MTickPrices{}, ErrNotStubbed
	}
	return s.GetTickPricesFn(ctx, level, symbols, timestamp)
}

func (s *StubClient) GetTrades(ctx context.Context, openedOnly bool) ([]models.MTrade, error) {
	s.record("GetTrades")
	if s.GetTradesFn == nil {
		return nil, ErrNotStubbed
	}
	return s.GetTradesFn(ctx, openedOnly)
}

func (s *StubClient) GetMarginLevel(ctx context.Context) (models.MMarginLevel, error) {
	s.record("GetMarginLevel")
	if s.GetMarginLevelFn == nil {
		return models.MMarginLevel{}, ErrNotStubbed
	}
	return s.GetMarginLevelFn(ctx)
}

func (s *StubClient) Call(ctx context.Context, name string, args map[string]any) (decoder.Payload, error) {
	s.record("Call")
	if s.CallFn == nil {
		return decoder.Payload{}, ErrNotStubbed
	}
	return s.CallFn(ctx, name, args)
}
