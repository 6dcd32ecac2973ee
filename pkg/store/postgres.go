package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"
)

// DBTX is the subset of pgx used by PostgresStore. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS scheme_settlements (
	period_id       BIGINT PRIMARY KEY,
	period_name     TEXT        NOT NULL DEFAULT '',
	status          TEXT        NOT NULL,
	verdict         TEXT        NOT NULL,
	derived_verdict TEXT        NOT NULL,
	match_count     INTEGER     NOT NULL DEFAULT 0,
	red_count       INTEGER     NOT NULL DEFAULT 0,
	follow_amount   NUMERIC     NOT NULL DEFAULT 0,
	result_time     TIMESTAMPTZ,
	recorded_at     TIMESTAMPTZ NOT NULL
)`

const insertSettlement = `INSERT INTO scheme_settlements (
	period_id, period_name, status, verdict, derived_verdict,
	match_count, red_count, follow_amount, result_time, recorded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)
ON CONFLICT (period_id) DO NOTHING`

const listSettlements = `SELECT period_id, period_name, status, verdict, derived_verdict,
	match_count, red_count, follow_amount::text, result_time, recorded_at
FROM scheme_settlements
ORDER BY period_id DESC
LIMIT $1`

type PostgresStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a pool. The store owns it and closes it on Close.
func NewPostgresStore(p *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: p, pool: p}
}

// NewPostgresStoreWithDB is used with transactions and in tests
func NewPostgresStoreWithDB(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create settlements table: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveSettlement(ctx context.Context, rec SettlementRecord) (bool, error) {
	tag, err := s.db.Exec(ctx, insertSettlement,
		rec.PeriodID,
		rec.PeriodName,
		rec.Status,
		string(rec.Verdict),
		string(rec.DerivedVerdict),
		rec.MatchCount,
		rec.RedCount,
		rec.FollowAmount.String(),
		rec.ResultTime,
		rec.RecordedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert settlement %d: %w", rec.PeriodID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListSettlements(ctx context.Context, limit int) ([]SettlementRecord, error) {
	rows, err := s.db.Query(ctx, listSettlements, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	records := make([]SettlementRecord, 0)
	for rows.Next() {
		var (
			rec        SettlementRecord
			verdict    string
			derived    string
			amount     string
			resultTime *time.Time
		)
		if err := rows.Scan(
			&rec.PeriodID,
			&rec.PeriodName,
			&rec.Status,
			&verdict,
			&derived,
			&rec.MatchCount,
			&rec.RedCount,
			&amount,
			&resultTime,
			&rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		rec.Verdict = settlement.Verdict(verdict)
		rec.DerivedVerdict = settlement.Verdict(derived)
		rec.FollowAmount, _ = decimal.NewFromString(amount)
		rec.ResultTime = resultTime
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool != nil {
		return s.pool.Ping(ctx)
	}
	var one int
	return s.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Pool exposes the underlying pool for advisory locks and stats. It is nil
// when the store was built from a bare DBTX.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}
