package blocklist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Schema for the blocked_channels table.
const Schema = `
CREATE TABLE IF NOT EXISTS blocked_channels (
	name      TEXT PRIMARY KEY,
	reason    TEXT DEFAULT '',
	added_at  INTEGER NOT NULL DEFAULT 0,
	status    TEXT DEFAULT 'active'
);
`

// OpenDB opens an SQLite blocklist database. The caller must blank-import
// the driver:
//
//	import _ "modernc.org/sqlite"
//
// The list is only ever read, so the connection is opened query-only.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("blocklist: open db: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA query_only = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("blocklist: %s: %w", p, err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("blocklist: ping: %w", err)
	}
	return db, nil
}

// LoadDB reads all active names from blocked_channels. A database locked by
// a concurrent writer gets 3 attempts, with 100/200 ms backoff between them.
func LoadDB(ctx context.Context, db *sql.DB) ([]string, error) {
	for i := range maxRetries {
		names, err := loadOnce(ctx, db)
		if err == nil {
			return names, nil
		}
		if !isBusy(err) || i == maxRetries-1 {
			return nil, err
		}
		if err := sleepCtx(ctx, retryDelay(i)); err != nil {
			return nil, fmt.Errorf("blocklist: context cancelled during retry: %w", err)
		}
	}
	return nil, fmt.Errorf("blocklist: LoadDB: max retries exceeded")
}

func loadOnce(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM blocked_channels
		WHERE status = 'active'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("blocklist: query: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("blocklist: scan: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("blocklist: rows: %w", err)
	}
	return names, nil
}

const maxRetries = 3

// retryDelay is the wait after the given failed attempt.
func retryDelay(attempt int) time.Duration {
	return time.Duration(100*(attempt+1)) * time.Millisecond
}

// isBusy reports whether err is an SQLite BUSY condition.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
