package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"xapi-connector/src/logger"
	"xapi-connector/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresDB keeps its tables in a schema named after the executable, so
// several gateways can share one database.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	// Watchlist references in the symbol list are expanded once, here, so
	// the poller only ever sees plain symbols.
	symbols, err := d.ResolveSymbols(d.Config.DataSource.Symbols)
	if err != nil {
		d.Logger.Error("PostgresDB: Failed to resolve symbols: %v", err)
	} else {
		d.Config.DataSource.Symbols = symbols
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table(name string) string {
	return fmt.Sprintf(`"%s"."%s"`, d.Schema, name)
}

func (d *PostgresDB) createTables() error {
	tables := map[string]string{
		"ticks": `
			CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT NOT NULL,
				timestamp BIGINT NOT NULL,
				level INTEGER NOT NULL,
				ask DOUBLE PRECISION,
				bid DOUBLE PRECISION,
				ask_volume BIGINT,
				bid_volume BIGINT,
				high DOUBLE PRECISION,
				low DOUBLE PRECISION,
				spread_raw DOUBLE PRECISION,
				spread_table DOUBLE PRECISION,
				fetched_at BIGINT,
				PRIMARY KEY (symbol, timestamp, level)
			);`,
		"trades": `
			CREATE TABLE IF NOT EXISTS %s (
				order_id BIGINT PRIMARY KEY,
				order2 BIGINT,
				position BIGINT,
				symbol TEXT,
				cmd INTEGER,
				volume DOUBLE PRECISION,
				open_price DOUBLE PRECISION,
				open_time BIGINT,
				close_price DOUBLE PRECISION,
				close_time BIGINT,
				closed BOOLEAN,
				sl DOUBLE PRECISION,
				tp DOUBLE PRECISION,
				profit DOUBLE PRECISION,
				commission DOUBLE PRECISION,
				storage DOUBLE PRECISION,
				comment TEXT,
				updated_at BIGINT
			);`,
		"symbols": `
			CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT PRIMARY KEY,
				description TEXT,
				category_name TEXT,
				currency TEXT,
				currency_profit TEXT,
				digits INTEGER,
				contract_size BIGINT,
				lot_min DOUBLE PRECISION,
				lot_max DOUBLE PRECISION,
				lot_step DOUBLE PRECISION,
				updated_at BIGINT
			);`,
	}

	for _, name := range tableOrder {
		if _, err := d.DB.Exec(fmt.Sprintf(tables[name], d.table(name))); err != nil {
			return fmt.Errorf("failed to create %s: %w", d.table(name), err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveTicks(ticks []models.MTick, fetchedAt int64) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, timestamp, level, ask, bid, ask_volume, bid_volume, high, low, spread_raw, spread_table, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (symbol, timestamp, level) DO NOTHING
	`, d.table("ticks"))
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) SaveTrades(trades []models.MTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (order_id, order2, position, symbol, cmd, volume, open_price, open_time,
			close_price, close_time, closed, sl, tp, profit, commission, storage, comment, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (order_id) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			close_time = EXCLUDED.close_time,
			closed = EXCLUDED.closed,
			sl = EXCLUDED.sl,
			tp = EXCLUDED.tp,
			profit = EXCLUDED.profit,
			commission = EXCLUDED.commission,
			storage = EXCLUDED.storage,
			updated_at = EXCLUDED.updated_at
	`, d.table("trades"))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, t := range trades {
		if _, err := stmt.Exec(tradeRow(t, now)...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSymbols(symbols []models.MSymbol) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, description, category_name, currency, currency_profit, digits,
			contract_size, lot_min, lot_max, lot_step, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol) DO UPDATE SET
			description = EXCLUDED.description,
			category_name = EXCLUDED.category_name,
			currency = EXCLUDED.currency,
			currency_profit = EXCLUDED.currency_profit,
			digits = EXCLUDED.digits,
			contract_size = EXCLUDED.contract_size,
			lot_min = EXCLUDED.lot_min,
			lot_max = EXCLUDED.lot_max,
			lot_step = EXCLUDED.lot_step,
			updated_at = EXCLUDED.updated_at
	`, d.table("symbols"))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, s := range symbols {
		if _, err := stmt.Exec(symbolRow(s, now)...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) LatestTicks(symbol string, limit int) ([]models.MTick, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE symbol = $1
		ORDER BY timestamp DESC, level ASC
		LIMIT $2
	`, tickColumns, d.table("ticks")), symbol, limit)
	if err != nil {
		return nil, err
	}
	return scanTicks(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.DataSource.DataRetentionDays
	cutoff := retentionCutoff(retentionDays)

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE timestamp < $1`, d.table("ticks")), cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE closed AND close_time < $1`, d.table("trades")), cutoff); err != nil {
		d.Logger.Error("Cleanup trades error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
