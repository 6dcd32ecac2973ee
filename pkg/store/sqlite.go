package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLiteStore keeps settlement history in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store dir: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// one connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS scheme_settlements (
		period_id       INTEGER PRIMARY KEY,
		period_name     TEXT    NOT NULL DEFAULT '',
		status          TEXT    NOT NULL,
		verdict         TEXT    NOT NULL,
		derived_verdict TEXT    NOT NULL,
		match_count     INTEGER NOT NULL DEFAULT 0,
		red_count       INTEGER NOT NULL DEFAULT 0,
		follow_amount   TEXT    NOT NULL DEFAULT '0',
		result_time     TEXT,
		recorded_at     TEXT    NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveSettlement(ctx context.Context, rec SettlementRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resultTime sql.NullString
	if rec.ResultTime != nil {
		resultTime = sql.NullString{String: rec.ResultTime.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO scheme_settlements (
		period_id, period_name, status, verdict, derived_verdict,
		match_count, red_count, follow_amount, result_time, recorded_at
	) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.PeriodID,
		rec.PeriodName,
		rec.Status,
		string(rec.Verdict),
		string(rec.DerivedVerdict),
		rec.MatchCount,
		rec.RedCount,
		rec.FollowAmount.String(),
		resultTime,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert settlement %d: %w", rec.PeriodID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) ListSettlements(ctx context.Context, limit int) ([]SettlementRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT period_id, period_name, status, verdict, derived_verdict,
		match_count, red_count, follow_amount, result_time, recorded_at
	FROM scheme_settlements
	ORDER BY period_id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]SettlementRecord, 0)
	for rows.Next() {
		var (
			rec        SettlementRecord
			verdict    string
			derived    string
			amount     string
			resultTime sql.NullString
			recordedAt string
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
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}

		rec.Verdict = settlement.Verdict(verdict)
		rec.DerivedVerdict = settlement.Verdict(derived)
		rec.FollowAmount, _ = decimal.NewFromString(amount)
		if resultTime.Valid {
			if t, err := time.Parse(time.RFC3339Nano, resultTime.String); err == nil {
				rec.ResultTime = &t
			}
		}
		rec.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
