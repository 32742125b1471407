package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"xapi-connector/src/logger"
	"xapi-connector/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	// modernc/sqlite serialises writers anyway; one connection avoids
	// SQLITE_BUSY between the loop and HTTP readers.
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	tables := map[string]string{
		"ticks": `
			CREATE TABLE IF NOT EXISTS ticks (
				symbol TEXT NOT NULL,
				timestamp INTEGER NOT NULL,
				level INTEGER NOT NULL,
				ask REAL,
				bid REAL,
				ask_volume INTEGER,
				bid_volume INTEGER,
				high REAL,
				low REAL,
				spread_raw REAL,
				spread_table REAL,
				fetched_at INTEGER,
				PRIMARY KEY (symbol, timestamp, level)
			);`,
		"trades": `
			CREATE TABLE IF NOT EXISTS trades (
				order_id INTEGER PRIMARY KEY,
				order2 INTEGER,
				position INTEGER,
				symbol TEXT,
				cmd INTEGER,
				volume REAL,
				open_price REAL,
				open_time INTEGER,
				close_price REAL,
				close_time INTEGER,
				closed INTEGER,
				sl REAL,
				tp REAL,
				profit REAL,
				commission REAL,
				storage REAL,
				comment TEXT,
				updated_at INTEGER
			);`,
		"symbols": `
			CREATE TABLE IF NOT EXISTS symbols (
				symbol TEXT PRIMARY KEY,
				description TEXT,
				category_name TEXT,
				currency TEXT,
				currency_profit TEXT,
				digits INTEGER,
				contract_size INTEGER,
				lot_min REAL,
				lot_max REAL,
				lot_step REAL,
				updated_at INTEGER
			);`,
	}

	for _, name := range tableOrder {
		if _, err := d.DB.Exec(tables[name]); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveTicks(ticks []models.MTick, fetchedAt int64) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO ticks (symbol, timestamp, level, ask, bid, ask_volume, bid_volume, high, low, spread_raw, spread_table, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timestamp, level) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		_, err := stmt.Exec(t.Symbol, t.Timestamp, t.Level, t.Ask, t.Bid, t.AskVolume, t.BidVolume, t.High, t.Low, t.SpreadRaw, t.SpreadTable, fetchedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveTrades(trades []models.MTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trades (order_id, order2, position, symbol, cmd, volume, open_price, open_time,
			close_price, close_time, closed, sl, tp, profit, commission, storage, comment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE SET
			close_price = excluded.close_price,
			close_time = excluded.close_time,
			closed = excluded.closed,
			sl = excluded.sl,
			tp = excluded.tp,
			profit = excluded.profit,
			commission = excluded.commission,
			storage = excluded.storage,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, t := range trades {
		_, err := stmt.Exec(tradeRow(t, now)...)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveSymbols(symbols []models.MSymbol) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO symbols (symbol, description, category_name, currency, currency_profit, digits,
			contract_size, lot_min, lot_max, lot_step, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			description = excluded.description,
			category_name = excluded.category_name,
			currency = excluded.currency,
			currency_profit = excluded.currency_profit,
			digits = excluded.digits,
			contract_size = excluded.contract_size,
			lot_min = excluded.lot_min,
			lot_max = excluded.lot_max,
			lot_step = excluded.lot_step,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, s := range symbols {
		_, err := stmt.Exec(symbolRow(s, now)...)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) LatestTicks(symbol string, limit int) ([]models.MTick, error) {
	rows, err := d.DB.Query(`
		SELECT `+tickColumns+`
		FROM ticks
		WHERE symbol = ?
		ORDER BY timestamp DESC, level ASC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	return scanTicks(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.DataSource.DataRetentionDays
	cutoff := retentionCutoff(retentionDays)

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM ticks WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM trades WHERE closed = 1 AND close_time < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup trades error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
