package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB wraps a database handle together with the dialect it speaks. Postgres
// DSNs go through a pgx pool; anything else is treated as a SQLite path.
type DB struct {
	*sql.DB
	pool     *pgxpool.Pool
	postgres bool
	logger   *slog.Logger
}

// Open connects to the database described by cfg.DSN.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(cfg.DSN, logger)
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database DSN", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "facturabot"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{DB: db, pool: pool, postgres: true, logger: logger}, nil
}

func openSQLite(path string, logger *slog.Logger) (*DB, error) {
	path = strings.TrimPrefix(path, "file:")
	logger.Info("opening database", "dialect", "sqlite", "path", path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency under the webhook handler.
	dsn := path + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{DB: db, logger: logger}, nil
}

// Rebind converts ?-style placeholders into the dialect's form.
func (d *DB) Rebind(query string) string {
	if !d.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connections gracefully
func (d *DB) Close() {
	d.logger.Info("closing database connections")
	if err := d.DB.Close(); err != nil {
		d.logger.Error("failed to close database", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.PingContext(ctx)
}

// EnsureSchema creates the tables if they do not exist yet.
func (d *DB) EnsureSchema(ctx context.Context) error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.postgres {
		idCol = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS clientes (
			id %s,
			rfc TEXT NOT NULL UNIQUE,
			nombre TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`, idCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS productos (
			id %s,
			codigo TEXT NOT NULL DEFAULT '',
			nombre TEXT NOT NULL UNIQUE,
			precio_unitario TEXT NOT NULL
		)`, idCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS facturas (
			id %s,
			cliente_id BIGINT NOT NULL REFERENCES clientes(id),
			producto TEXT NOT NULL,
			cantidad INTEGER NOT NULL CHECK (cantidad > 0),
			precio_unitario TEXT NOT NULL,
			total TEXT NOT NULL,
			fecha_emision TEXT NOT NULL,
			documento_path TEXT NOT NULL DEFAULT ''
		)`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_facturas_cliente ON facturas(cliente_id)`,
	}
	for _, stmt := range stmts {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
