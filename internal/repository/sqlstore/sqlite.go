package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// MemoryPath открывает приватную базу в памяти (тесты, dev)
const MemoryPath = ":memory:"

// NewSQLite открывает встроенную базу SQLite. Используется одно соединение:
// SQLite допускает только одного писателя, а база в памяти живёт ровно
// столько, сколько её соединение.
func NewSQLite(path string, logger *zap.Logger) (*DB, error) {
	dsn := path
	if path != MemoryPath {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logger.Info("SQLite opened", zap.String("path", path))

	return &DB{DB: db, logger: logger, driver: DriverSQLite}, nil
}
