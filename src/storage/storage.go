package storage

import (
	"fmt"

	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/models"
)

// NewDatabase picks the backend named by storage.db_type. "none" returns a
// nil database and no error; callers skip the journal.
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.Storage.DBType {
	case "sqlite":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported db_type %q", cfg.Storage.DBType)
}
