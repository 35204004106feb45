package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var logger = logger_i.NewLogger("Postgres")

// Connect opens a pool and checks that the database answers.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.PostgresPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}
	logger.Info("Postgres pool ready")
	return pool, nil
}

// EnsureSchema creates the extension, tables and indexes the service needs.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, embeddingDimension int) error {
	for _, stmt := range schemaStatements(embeddingDimension) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logger.Info("Schema ensured", "embeddingDimension", embeddingDimension)
	return nil
}

// WithTx runs fn inside a transaction, rolling back when fn fails.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", commonModels.ErrPersistence, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback failed: %v (original err: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", commonModels.ErrPersistence, err)
	}
	return nil
}

// wrapErr maps driver errors onto the domain taxonomy.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, commonModels.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", commonModels.ErrPersistence, op, err)
}
