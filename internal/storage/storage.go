// Package storage keeps the site's operational records in sqlite: hashed
// visitor hits and the log of contact form messages. Portfolio content never
// lives here.
package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/kbeguinel/portfolio/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS visitors_created_at ON visitors(created_at);

CREATE TABLE IF NOT EXISTS contact_messages (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	surname TEXT NOT NULL,
	email TEXT NOT NULL,
	body TEXT NOT NULL,
	driver TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS contact_messages_created_at ON contact_messages(created_at);
`

// DB wraps the sqlite handle.
type DB struct {
	sql    *sql.DB
	salt   string
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *zap.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	// sqlite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	_, err = sqlDB.Exec(schema)
	if err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	salt, err := randomHex(32)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &DB{
		sql:    sqlDB,
		salt:   salt,
		logger: logging.OrNop(logger).Named("storage"),
		now:    time.Now,
	}, nil
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// HashIP returns a salted, truncated hash so raw addresses are never stored.
// The salt lives only in memory, so hashes are stable per process only.
func (d *DB) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + d.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}
	return hex.EncodeToString(b), nil
}

// RandomToken returns a 32-byte hex token suitable for session cookies.
func RandomToken() (string, error) {
	return randomHex(32)
}
