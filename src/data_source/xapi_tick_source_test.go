package datasource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"xapi-connector/src/models"
	"xapi-connector/src/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickCall struct {
	level     int
	symbols   []string
	timestamp int64
}

func newSource(symbols []string, answers ...[]models.MTick) (*XapiTickSource, *[]tickCall) {
	var calls []tickCall
	var mu sync.Mutex
	stub := &testutil.StubClient{
		LoggedIn: true,
		GetTickPricesFn: func(_ context.Context, level int, syms []string, ts int64) (models.MTickPrices, error) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, tickCall{level, syms, ts})
			if len(calls) > len(answers) {
				return models.MTickPrices{Quotations: []models.MTick{}}, nil
			}
			return models.MTickPrices{Quotations: answers[len(calls)-1]}, nil
		},
	}
	cfg := &models.MConfig{DataSource: models.MDataSourceConfig{Symbols: symbols, UpdateIntervalSeconds: 1}}
	return NewXapiTickSource(cfg, stub, nil), &calls
}

func TestFetchUpdateDataDeduplicates(t *testing.T) {
	src, calls := newSource([]string{"EURUSD", "US500"},
		[]models.MTick{
			{Symbol: "US500", Timestamp: 200, Ask: 4500},
			{Symbol: "EURUSD", Timestamp: 100, Ask: 1.08},
		},
		[]models.MTick{
			{Symbol: "EURUSD", Timestamp: 100, Ask: 1.08},
			{Symbol: "EURUSD", Timestamp: 150, Ask: 1.09},
			{Symbol: "US500", Timestamp: 200, Ask: 4500},
		},
	)
	ctx := context.Background()

	batch, err := src.FetchUpdateData(ctx)
	require.NoError(t, err)
	require.Len(t, batch.Ticks, 2)
	assert.Equal(t, "EURUSD", batch.Ticks[0].Symbol, "ordered by timestamp")
	assert.Equal(t, 2, batch.Metrics.NewTicks)
	assert.Equal(t, 2, batch.Metrics.Symbols)

	batch, err = src.FetchUpdateData(ctx)
	require.NoError(t, err)
	require.Len(t, batch.Ticks, 1)
	assert.Equal(t, int64(150), batch.Ticks[0].Timestamp)

	require.Len(t, *calls, 2)
	assert.Equal(t, int64(0), (*calls)[0].timestamp, "first poll asks for a full snapshot")
	assert.Equal(t, int64(100), (*calls)[1].timestamp, "then from the least recent symbol")
	assert.Equal(t, []string{"EURUSD", "US500"}, (*calls)[1].symbols)
}

func TestFetchUpdateDataKeepsDepthLevels(t *testing.T) {
	src, _ := newSource([]string{"EURUSD"}, []models.MTick{
		{Symbol: "EURUSD", Timestamp: 100, Level: 1},
		{Symbol: "EURUSD", Timestamp: 100, Level: 0},
	})
	batch, err := src.FetchUpdateData(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Ticks, 2)
	assert.Equal(t, 0, batch.Ticks[0].Level)
	assert.Equal(t, 1, batch.Ticks[1].Level)
}

func TestFetchUpdateDataTracksEachLevel(t *testing.T) {
	src, calls := newSource([]string{"EURUSD"},
		[]models.MTick{
			{Symbol: "EURUSD", Timestamp: 200, Level: 0},
			{Symbol: "EURUSD", Timestamp: 120, Level: 1},
		},
		[]models.MTick{
			{Symbol: "EURUSD", Timestamp: 200, Level: 0},
			{Symbol: "EURUSD", Timestamp: 150, Level: 1},
			{Symbol: "EURUSD", Timestamp: 110, Level: 2},
		},
	)
	ctx := context.Background()

	batch, err := src.FetchUpdateData(ctx)
	require.NoError(t, err)
	require.Len(t, batch.Ticks, 2)

	batch, err = src.FetchUpdateData(ctx)
	require.NoError(t, err)
	require.Len(t, batch.Ticks, 2, "deeper levels older than level 0 still count as new")
	assert.Equal(t, 2, batch.Ticks[0].Level)
	assert.Equal(t, int64(110), batch.Ticks[0].Timestamp)
	assert.Equal(t, 1, batch.Ticks[1].Level)
	assert.Equal(t, int64(150), batch.Ticks[1].Timestamp)

	require.Len(t, *calls, 2)
	assert.Equal(t, int64(120), (*calls)[1].timestamp, "least recent level decides")
	assert.Equal(t, int64(110), src.LastTimestamps["EURUSD"])
}

func TestFetchUpdateDataError(t *testing.T) {
	stub := &testutil.StubClient{LoggedIn: true}
	cfg := &models.MConfig{DataSource: models.MDataSourceConfig{Symbols: []string{"EURUSD"}}}
	src := NewXapiTickSource(cfg, stub, nil)

	_, err := src.FetchUpdateData(context.Background())
	assert.ErrorIs(t, err, testutil.ErrNotStubbed)
}

func TestFetchUpdateDataNoSymbols(t *testing.T) {
	src, calls := newSource(nil)
	batch, err := src.FetchUpdateData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch.Ticks)
	assert.Empty(t, *calls)
}

func TestUpdateSymbols(t *testing.T) {
	src, calls := newSource([]string{"EURUSD"})
	require.NoError(t, src.UpdateSymbols([]string{"GOLD", "OIL"}))
	_, err := src.FetchUpdateData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GOLD", "OIL"}, (*calls)[0].symbols)
}

func TestStartPushesBatches(t *testing.T) {
	src, _ := newSource([]string{"EURUSD"}, []models.MTick{{Symbol: "EURUSD", Timestamp: 1}})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan models.MTickBatch, 1)
	var wg sync.WaitGroup
	require.NoError(t, src.Start(ctx, out, &wg))
	assert.Error(t, src.Start(ctx, out, &wg), "already running")

	select {
	case batch := <-out:
		require.Len(t, batch.Ticks, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch pushed")
	}

	require.NoError(t, src.Stop())
	wg.Wait()
	assert.Error(t, src.Stop())
}

func TestRunLoopSkipsWhenLoggedOut(t *testing.T) {
	stub := &testutil.StubClient{
		GetTickPricesFn: func(context.Context, int, []string, int64) (models.MTickPrices, error) {
			return models.MTickPrices{}, errors.New("must not be called")
		},
	}
	cfg := &models.MConfig{DataSource: models.MDataSourceConfig{Symbols: []string{"EURUSD"}, UpdateIntervalSeconds: 1}}
	src := NewXapiTickSource(cfg, stub, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	var wg sync.WaitGroup
	require.NoError(t, src.Start(ctx, make(chan models.MTickBatch), &wg))
	wg.Wait()
	assert.Zero(t, stub.CallCount("GetTickPrices"))
}
