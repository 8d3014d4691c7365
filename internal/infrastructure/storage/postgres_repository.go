package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

const reportsTable = "restaurant_reports"

const schemaDDL = `CREATE TABLE IF NOT EXISTS restaurant_reports (
    restaurant_id   BIGINT PRIMARY KEY,
    restaurant_name TEXT NOT NULL,
    health_score    INTEGER NOT NULL,
    payload         JSONB NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository persists the latest report per restaurant into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ReportRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// OpenPostgres connects with the lib/pq driver, retrying the ping.
func OpenPostgres(ctx context.Context, dsn string, attempts int, interval time.Duration) (*sql.DB, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if lastErr = db.PingContext(ctx); lastErr == nil {
			return db, nil
		}
		_ = db.Close()
		log.Printf("postgres: ping attempt %d/%d failed: %v", i+1, attempts, lastErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("connect postgres after %d attempts: %w", attempts, lastErr)
}

// EnsureSchema creates the reports table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveReports upserts every report and prunes restaurants absent from this
// run, all in one transaction.
func (r *PostgresRepository) SaveReports(ctx context.Context, reports []domain.RestaurantReport) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	ids := make([]int64, 0, len(reports))
	for _, report := range reports {
		query, args, err := r.upsertQuery(report)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert report %d: %w", report.RestaurantID, err)
		}
		ids = append(ids, report.RestaurantID)
	}

	query, args, err := r.pruneQuery(ids)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prune reports: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reports: %w", err)
	}
	return nil
}

// LoadReports returns every stored report ordered by restaurant id.
func (r *PostgresRepository) LoadReports(ctx context.Context) ([]domain.RestaurantReport, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.selectQuery()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	var reports []domain.RestaurantReport
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var report domain.RestaurantReport
		if err := json.Unmarshal(payload, &report); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode report payload: %w", err)
		}
		reports = append(reports, report)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return reports, nil
}

func (r *PostgresRepository) upsertQuery(report domain.RestaurantReport) (string, []any, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return "", nil, fmt.Errorf("marshal report %d: %w", report.RestaurantID, err)
	}
	query, args, err := r.builder.
		Insert(reportsTable).
		Columns("restaurant_id", "restaurant_name", "health_score", "payload").
		Values(report.RestaurantID, report.RestaurantName, report.HealthScore, string(payload)).
		Suffix(`ON CONFLICT (restaurant_id) DO UPDATE
              SET restaurant_name = EXCLUDED.restaurant_name,
                  health_score = EXCLUDED.health_score,
                  payload = EXCLUDED.payload,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return query, args, nil
}

func (r *PostgresRepository) pruneQuery(keep []int64) (string, []any, error) {
	query, args, err := r.builder.
		Delete(reportsTable).
		Where("NOT (restaurant_id = ANY(?))", pq.Array(keep)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build prune: %w", err)
	}
	return query, args, nil
}

func (r *PostgresRepository) selectQuery() (string, []any, error) {
	query, args, err := r.builder.
		Select("payload").
		From(reportsTable).
		OrderBy("restaurant_id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	return query, args, nil
}
