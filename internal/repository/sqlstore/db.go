package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/transit-favorites/internal/config"
	"go.uber.org/zap"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// DB - подключение к SQL хранилищу (PostgreSQL или SQLite)
type DB struct {
	*sqlx.DB
	logger *zap.Logger
	driver string
}

// Open подключает бэкенд, выбранный STORAGE_DRIVER, и применяет миграции
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*DB, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Storage.Driver {
	case DriverPostgres:
		db, err = NewPostgres(&cfg.Database, logger)
	case DriverSQLite:
		db, err = NewSQLite(cfg.SQLite.Path, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate %s: %w", db.driver, err)
	}

	return db, nil
}

// Driver возвращает имя бэкенда (postgres | sqlite)
func (db *DB) Driver() string {
	return db.driver
}

// nullSafeEq - оператор сравнения, для которого NULL равен NULL
func (db *DB) nullSafeEq() string {
	if db.driver == DriverPostgres {
		return "IS NOT DISTINCT FROM"
	}
	return "IS"
}

func (db *DB) Close() error {
	db.logger.Info("Closing database connection", zap.String("driver", db.driver))
	return db.DB.Close()
}

func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Migrate применяет встроенные .up.sql миграции для текущего бэкенда по порядку
func (db *DB) Migrate(ctx context.Context) error {
	dir := "migrations/" + db.driver
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, file := range upFiles {
		content, err := fs.ReadFile(migrationsFS, dir+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		db.logger.Debug("Applied migration", zap.String("file", file), zap.String("driver", db.driver))
	}

	return nil
}

// NewDBForTest creates a DB instance for testing with provided database and logger
func NewDBForTest(sqlxDB *sqlx.DB, driver string, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		DB:     sqlxDB,
		logger: logger,
		driver: driver,
	}
}
