package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// database/sql drivers selectable through warehouse.driver; snowflake
	// registers itself through snowflake.go
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/logger"
	"github.com/agenthands/steward/internal/metrics"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLGateway runs statements through database/sql. Statements are written
// with '?' placeholders and rebound to the driver's style.
type SQLGateway struct {
	db     *sqlx.DB
	atomic bool
	log    *logger.Logger
}

func NewSQLGateway(db *sqlx.DB, atomic bool, log *logger.Logger) *SQLGateway {
	if log == nil {
		log = logger.Nop()
	}
	return &SQLGateway{db: db, atomic: atomic, log: log.With("component", "gateway")}
}

// Open connects to the configured warehouse. Connectivity is not verified
// here; the status monitor reports it.
func Open(cfg config.WarehouseConfig, log *logger.Logger) (*SQLGateway, error) {
	dsn := cfg.DSN
	if cfg.Driver == "snowflake" && dsn == "" {
		var err error
		dsn, err = SnowflakeDSN(cfg.Snowflake)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s warehouse: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite" {
		// one connection so ":memory:" databases are shared and writes serialize
		db.SetMaxOpenConns(1)
	}

	return NewSQLGateway(db, cfg.AtomicWrites, log), nil
}

func (g *SQLGateway) DB() *sqlx.DB { return g.db }

func (g *SQLGateway) ExecuteRead(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	started := time.Now()
	rows, err := g.read(ctx, query, args...)
	metrics.ObserveGateway("read", started, err)
	if err != nil {
		g.log.Warn("warehouse read failed", "error", err, "elapsed", time.Since(started))
		return nil, err
	}
	return rows, nil
}

func (g *SQLGateway) read(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	rows, err := g.db.QueryxContext(ctx, g.db.Rebind(query), args...)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		raw := make(map[string]interface{})
		if err := rows.MapScan(raw); err != nil {
			return nil, &QueryError{SQL: query, Err: err}
		}
		out = append(out, normalizeRow(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return out, nil
}

// ExecuteWriteBatch runs statements in order and stops at the first failure.
// In atomic mode the batch shares one transaction and a failure rolls back
// everything; otherwise statements that ran before the failure stay applied.
func (g *SQLGateway) ExecuteWriteBatch(ctx context.Context, statements []Statement) error {
	started := time.Now()
	var err error
	if g.atomic {
		err = g.writeAtomic(ctx, statements)
	} else {
		err = g.writeSequential(ctx, statements)
	}
	metrics.ObserveGateway("write", started, err)
	if err != nil {
		g.log.Warn("warehouse write failed", "error", err, "statements", len(statements), "atomic", g.atomic)
	}
	return err
}

func (g *SQLGateway) writeSequential(ctx context.Context, statements []Statement) error {
	for i, s := range statements {
		if _, err := g.db.ExecContext(ctx, g.db.Rebind(s.SQL), s.Args...); err != nil {
			return &WriteError{FailedIndex: i, Err: err}
		}
	}
	return nil
}

func (g *SQLGateway) writeAtomic(ctx context.Context, statements []Statement) error {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return &WriteError{FailedIndex: -1, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	for i, s := range statements {
		if _, err := tx.ExecContext(ctx, tx.Rebind(s.SQL), s.Args...); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				g.log.Error("rollback failed", "error", rbErr)
			}
			return &WriteError{FailedIndex: i, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &WriteError{FailedIndex: -1, Err: fmt.Errorf("failed to commit: %w", err)}
	}
	return nil
}

func (g *SQLGateway) Ping(ctx context.Context) error {
	started := time.Now()
	_, err := g.read(ctx, "SELECT 1")
	metrics.ObserveGateway("ping", started, err)
	return err
}

func (g *SQLGateway) Close() error {
	return g.db.Close()
}
