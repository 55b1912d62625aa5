package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"cleanstage/internal/config"
	"cleanstage/internal/failures"
)

// Store manages the artifact registry backed by SQLite and a blob directory.
type Store struct {
	db      *sql.DB
	path    string
	blobDir string
	lock    *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 25 * time.Millisecond
	timestampLayout         = "2006-01-02T15:04:05.000000000Z07:00"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the artifact registry. Failures are reported
// as resolution errors: without a registry nothing can be resolved.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, failures.Wrap(failures.ErrConfiguration, "artifacts", "open", "config is required", nil)
	}
	blobDir := cfg.StoreBlobDir()
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return nil, failures.Wrap(failures.ErrResolution, "artifacts", "open", "artifact store unreachable", err)
	}

	dbPath := cfg.StoreDBPath()
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, failures.Wrap(failures.ErrResolution, "artifacts", "open", "artifact store unreachable", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{
		db:      db,
		path:    dbPath,
		blobDir: blobDir,
		lock:    flock.New(cfg.StoreLockPath()),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, failures.Wrap(failures.ErrResolution, "artifacts", "open", "artifact store unreachable", err)
	}

	return store, nil
}

// Path returns the registry database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withPublishLock holds the cross-process store lock while fn runs.
func (s *Store) withPublishLock(ctx context.Context, fn func() error) error {
	ok, err := s.lock.TryLockContext(ensureContext(ctx), lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return errors.New("acquire store lock: lock held by another process")
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
