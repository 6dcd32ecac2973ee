package jobs

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/store"
)

const lockPollInterval = 100 * time.Millisecond

// JobLockManager keeps one instance of a job running at a time
type JobLockManager interface {
	// AcquireLock returns false without error when the lock is held elsewhere
	AcquireLock(ctx context.Context, jobName string) (bool, error)
	ReleaseLock(ctx context.Context, jobName string) error
	IsLocked(ctx context.Context, jobName string) (bool, error)
	AcquireLockWithTimeout(ctx context.Context, jobName string, timeout time.Duration) (bool, error)
}

// PostgreSQLLockManager uses session advisory locks. Advisory locks belong to
// a session, so db must be a single dedicated connection, not a pool.
type PostgreSQLLockManager struct {
	db     store.DBTX
	logger *logger.Logger

	// session locks are reentrant; held keeps them exclusive in-process
	mu   sync.Mutex
	held map[int64]bool
}

func NewPostgreSQLLockManager(db store.DBTX) *PostgreSQLLockManager {
	return &PostgreSQLLockManager{
		db:     db,
		logger: logger.New("job-lock-manager"),
		held:   make(map[int64]bool),
	}
}

// lockKey maps a job name onto the non-negative bigint keyspace
func lockKey(jobName string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("scheme-job:" + jobName))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func (p *PostgreSQLLockManager) AcquireLock(ctx context.Context, jobName string) (bool, error) {
	key := lockKey(jobName)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.held[key] {
		return false, nil
	}

	var acquired bool
	if err := p.db.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		return false, fmt.Errorf("failed to acquire lock for job %s: %w", jobName, err)
	}
	if acquired {
		p.held[key] = true
	}

	p.logger.Debug().
		Str("job_name", jobName).
		Int64("lock_id", key).
		Bool("acquired", acquired).
		Msg("Advisory lock attempt")
	return acquired, nil
}

func (p *PostgreSQLLockManager) ReleaseLock(ctx context.Context, jobName string) error {
	key := lockKey(jobName)

	p.mu.Lock()
	defer p.mu.Unlock()

	var released bool
	if err := p.db.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&released); err != nil {
		return fmt.Errorf("failed to release lock for job %s: %w", jobName, err)
	}
	delete(p.held, key)

	if !released {
		p.logger.Warn().
			Str("job_name", jobName).
			Int64("lock_id", key).
			Msg("Released a lock that was not held")
	}
	return nil
}

// IsLocked reports whether any session holds the job's lock
func (p *PostgreSQLLockManager) IsLocked(ctx context.Context, jobName string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM pg_locks
		WHERE locktype = 'advisory' AND granted
		  AND ((classid::bigint << 32) | objid::bigint) = $1
	)`

	var locked bool
	if err := p.db.QueryRow(ctx, query, lockKey(jobName)).Scan(&locked); err != nil {
		return false, fmt.Errorf("failed to check lock status for job %s: %w", jobName, err)
	}
	return locked, nil
}

func (p *PostgreSQLLockManager) AcquireLockWithTimeout(ctx context.Context, jobName string, timeout time.Duration) (bool, error) {
	return pollAcquire(ctx, p, jobName, timeout)
}

// LocalLockManager is the in-process lock used with the SQLite backend
type LocalLockManager struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLockManager() *LocalLockManager {
	return &LocalLockManager{held: make(map[string]bool)}
}

func (l *LocalLockManager) AcquireLock(ctx context.Context, jobName string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[jobName] {
		return false, nil
	}
	l.held[jobName] = true
	return true, nil
}

func (l *LocalLockManager) ReleaseLock(ctx context.Context, jobName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, jobName)
	return nil
}

func (l *LocalLockManager) IsLocked(ctx context.Context, jobName string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[jobName], nil
}

func (l *LocalLockManager) AcquireLockWithTimeout(ctx context.Context, jobName string, timeout time.Duration) (bool, error) {
	return pollAcquire(ctx, l, jobName, timeout)
}

// pollAcquire retries AcquireLock until it succeeds or timeout elapses. Running
// out of time is not an error; a cancelled parent context is.
func pollAcquire(parent context.Context, m JobLockManager, jobName string, timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		acquired, err := m.AcquireLock(ctx, jobName)
		if err != nil || acquired {
			return acquired, err
		}
		select {
		case <-ctx.Done():
			return false, parent.Err()
		case <-ticker.C:
		}
	}
}

// LockGuard releases a lock only if it acquired it
type LockGuard struct {
	lockManager JobLockManager
	jobName     string
	acquired    bool
}

func NewLockGuard(lockManager JobLockManager, jobName string) *LockGuard {
	return &LockGuard{lockManager: lockManager, jobName: jobName}
}

// Acquire waits up to timeout; a zero timeout tries once
func (lg *LockGuard) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	var err error
	if timeout > 0 {
		lg.acquired, err = lg.lockManager.AcquireLockWithTimeout(ctx, lg.jobName, timeout)
	} else {
		lg.acquired, err = lg.lockManager.AcquireLock(ctx, lg.jobName)
	}
	return lg.acquired, err
}

func (lg *LockGuard) Release(ctx context.Context) error {
	if !lg.acquired {
		return nil
	}
	if err := lg.lockManager.ReleaseLock(ctx, lg.jobName); err != nil {
		return err
	}
	lg.acquired = false
	return nil
}

func (lg *LockGuard) IsAcquired() bool {
	return lg.acquired
}

// NewLockManagerForStore picks the lock backend matching the store. Postgres
// locks run on a connection held out of the pool until release is called.
func NewLockManagerForStore(ctx context.Context, st store.Store) (JobLockManager, func(), error) {
	pg, ok := st.(*store.PostgresStore)
	if !ok || pg.Pool() == nil {
		return NewLocalLockManager(), func() {}, nil
	}

	conn, err := pg.Pool().Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reserve lock connection: %w", err)
	}
	return NewPostgreSQLLockManager(conn), conn.Release, nil
}
