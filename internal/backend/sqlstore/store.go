// Package sqlstore implements service.Service on a relational database.
// sqlite (github.com/mattn/go-sqlite3) and MySQL
// (github.com/go-sql-driver/mysql) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// DefaultSessionTTL is the access-token lifetime when none is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Store is a relational remote store.
type Store struct {
	db     *sql.DB
	driver string
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSessionTTL sets the access-token lifetime.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Store) { s.ttl = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// Open connects to the database and creates the schema if needed.
// For sqlite, dsn is a file path; WAL mode and foreign keys are enabled.
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	var err error
	switch driver {
	case DriverSQLite:
		dsn, err = sqliteDSN(dsn)
	case DriverMySQL:
		dsn, err = mysqlDSN(dsn)
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite handles one writer at a time
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &Store{
		db:     db,
		driver: driver,
		ttl:    DefaultSessionTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite path must not be empty")
	}
	if strings.Contains(path, "?") || path == ":memory:" {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create db directory: %w", err)
	}
	return path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON", nil
}

// mysqlDSN makes UPDATE report matched rather than changed rows, so an
// update that rewrites identical values still counts as one affected row.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.driver == DriverMySQL {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		full_name TEXT,
		email TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		access_token TEXT PRIMARY KEY,
		refresh_token TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date TEXT,
		user_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_id, created_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		created_at BIGINT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id VARCHAR(36) PRIMARY KEY,
		full_name VARCHAR(255),
		email VARCHAR(255),
		created_at BIGINT NOT NULL,
		FOREIGN KEY (id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sessions (
		access_token VARCHAR(36) PRIMARY KEY,
		refresh_token VARCHAR(36) NOT NULL UNIQUE,
		user_id VARCHAR(36) NOT NULL,
		expires_at BIGINT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		priority VARCHAR(20) NOT NULL DEFAULT 'medium',
		due_date VARCHAR(10),
		user_id VARCHAR(36) NOT NULL,
		created_at BIGINT NOT NULL,
		INDEX idx_tasks_user_created (user_id, created_at),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// isUniqueViolation reports a duplicate-key error from either driver.
func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}
