package storage

import (
	"path/filepath"
	"testing"
	"time"

	"xapi-connector/src/logger"
	"xapi-connector/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *AsyncSQLiteDB {
	t.Helper()
	cfg := &models.MConfig{
		Storage:    models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "journal.db")},
		DataSource: models.MDataSourceConfig{DataRetentionDays: 7},
	}
	db, err := NewAsyncSQLiteDB(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveTicksIgnoresDuplicates(t *testing.T) {
	db := newSQLite(t)
	ticks := []models.MTick{
		{Symbol: "EURUSD", Ask: 1.0851, Bid: 1.0849, Timestamp: 1000},
		{Symbol: "EURUSD", Ask: 1.0852, Bid: 1.0850, Timestamp: 2000},
		{Symbol: "US500", Ask: 4500, Bid: 4499, Timestamp: 1500},
	}
	require.NoError(t, db.SaveTicks(ticks, 3000))
	require.NoError(t, db.SaveTicks(ticks[1:2], 4000))
	require.NoError(t, db.SaveTicks(nil, 5000))

	latest, err := db.LatestTicks("EURUSD", 10)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(2000), latest[0].Timestamp)
	assert.Equal(t, 1.0852, latest[0].Ask)
	assert.Equal(t, int64(1000), latest[1].Timestamp)

	latest, err = db.LatestTicks("EURUSD", 1)
	require.NoError(t, err)
	assert.Len(t, latest, 1)

	latest, err = db.LatestTicks("GOLD", 10)
	require.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Empty(t, latest)
}

func TestSaveTradesUpserts(t *testing.T) {
	db := newSQLite(t)
	symbol := "ETHEREUM"
	open := models.MTrade{Order: 324596785, Symbol: &symbol, Volume: 0.1, OpenPrice: 1850.25, OpenTime: 1000}
	require.NoError(t, db.SaveTrades([]models.MTrade{open}))

	closeTime := int64(2000)
	profit := 0.75
	closed := open
	closed.Closed = true
	closed.CloseTime = &closeTime
	closed.Profit = &profit
	require.NoError(t, db.SaveTrades([]models.MTrade{closed, {Order: 1}}))

	var count int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM trades").Scan(&count))
	assert.Equal(t, 2, count)

	var gotProfit float64
	var gotClosed bool
	require.NoError(t, db.DB.QueryRow("SELECT profit, closed FROM trades WHERE order_id = ?", 324596785).Scan(&gotProfit, &gotClosed))
	assert.Equal(t, 0.75, gotProfit)
	assert.True(t, gotClosed)
}

func TestSaveSymbols(t *testing.T) {
	db := newSQLite(t)
	require.NoError(t, db.SaveSymbols([]models.MSymbol{{Symbol: "EURUSD", Description: "old"}}))
	require.NoError(t, db.SaveSymbols([]models.MSymbol{{Symbol: "EURUSD", Description: "new", Precision: 5}}))

	var descr string
	var digits int
	require.NoError(t, db.DB.QueryRow("SELECT description, digits FROM symbols WHERE symbol = ?", "EURUSD").Scan(&descr, &digits))
	assert.Equal(t, "new", descr)
	assert.Equal(t, 5, digits)
}

func TestCleanupOldData(t *testing.T) {
	db := newSQLite(t)
	now := time.Now().UnixMilli()
	old := time.Now().AddDate(0, 0, -30).UnixMilli()

	require.NoError(t, db.SaveTicks([]models.MTick{
		{Symbol: "EURUSD", Timestamp: old},
		{Symbol: "EURUSD", Timestamp: now},
	}, now))
	oldClose := old
	require.NoError(t, db.SaveTrades([]models.MTrade{
		{Order: 1, Closed: true, CloseTime: &oldClose},
		{Order: 2},
	}))

	require.NoError(t, db.CleanupOldData())

	latest, err := db.LatestTicks("EURUSD", 10)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, now, latest[0].Timestamp)

	var count int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM trades").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: path}}

	db, err := NewAsyncSQLiteDB(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	require.NoError(t, db.SaveTicks([]models.MTick{{Symbol: "EURUSD", Timestamp: 1}}, 1))
	require.NoError(t, db.Close())

	db, err = NewAsyncSQLiteDB(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	defer db.Close()
	latest, err := db.LatestTicks("EURUSD", 10)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestParseWatchlistRef(t *testing.T) {
	ref, ok := ParseWatchlistRef("pg:public.watchlist.symbol")
	require.True(t, ok)
	assert.Equal(t, WatchlistRef{Schema: "public", Table: "watchlist", Field: "symbol"}, ref)

	for _, sym := range []string{"EURUSD", "AAPL.US_9", "public.watchlist.symbol", "pg:a.b", "pg:a.b.c-d"} {
		_, ok := ParseWatchlistRef(sym)
		assert.False(t, ok, sym)
	}
}

func TestNewDatabase(t *testing.T) {
	db, err := NewDatabase(&models.MConfig{Storage: models.MStorageConfig{DBType: "none"}}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, db)

	db, err = NewDatabase(&models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: ":memory:"}}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &AsyncSQLiteDB{}, db)

	_, err = NewDatabase(&models.MConfig{Storage: models.MStorageConfig{DBType: "mysql"}}, logger.NewNopLogger())
	assert.Error(t, err)
}
