package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

const (
	selectDocumentsSQL = `SELECT data FROM locations ORDER BY id`
	upsertDocumentSQL  = `INSERT INTO locations (id, data, synced_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, synced_at = EXCLUDED.synced_at`
)

// DB is the subset of *pgxpool.Pool used by PostgresDirectory
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresDirectory keeps one JSONB document per location
type PostgresDirectory struct {
	db DB
}

// NewPostgresDirectory wraps an open pool or a test double
func NewPostgresDirectory(db DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// Connect opens a connection pool and verifies it with a ping
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote database DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w: %w", models.ErrNetwork, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach remote database: %w: %w", models.ErrNetwork, err)
	}

	slog.Info("Connected to remote database", "host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database)
	return pool, nil
}

// FetchAll returns every remote location. Documents that fail to decode are
// skipped; query and scan failures abort the fetch.
func (d *PostgresDirectory) FetchAll(ctx context.Context) ([]models.LocationRecord, error) {
	rows, err := d.db.Query(ctx, selectDocumentsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w: %w", models.ErrNetwork, err)
	}
	defer rows.Close()

	var records []models.LocationRecord
	skipped := 0
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w: %w", models.ErrNetwork, err)
		}

		record, err := DecodeDocument(raw)
		if err != nil {
			skipped++
			slog.Debug("Skipping malformed remote document", "err", err)
			continue
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locations: %w: %w", models.ErrNetwork, err)
	}

	slog.Debug("Fetched remote locations", "count", len(records), "skipped", skipped)
	return records, nil
}

// CommitBatch upserts every record inside one transaction. An empty batch
// still begins and commits a transaction.
func (d *PostgresDirectory) CommitBatch(ctx context.Context, records []models.LocationRecord) error {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w: %w", models.ErrNetwork, err)
	}

	for _, r := range records {
		data, err := EncodeDocument(r)
		if err != nil {
			return rollback(ctx, tx, err)
		}
		if _, err := tx.Exec(ctx, upsertDocumentSQL, r.ID, data); err != nil {
			return rollback(ctx, tx, fmt.Errorf("failed to set location %s: %w: %w", r.ID, models.ErrNetwork, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w: %w", models.ErrNetwork, err)
	}

	slog.Debug("Committed location batch", "count", len(records))
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx, cause error) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("Failed to roll back batch", "err", err)
	}
	return cause
}
