package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Visitor is one tracked page view.
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordVisit stores a page view under the hashed client address.
func (d *DB) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, created_at) VALUES (?, ?, ?, ?)`,
		d.HashIP(ip), userAgent, path, d.now().Unix())
	if err != nil {
		return errors.Wrap(err, "record visit")
	}
	return nil
}

// CleanupVisitors deletes views older than retention and returns how many
// rows went.
func (d *DB) CleanupVisitors(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := d.now().Add(-retention).Unix()
	res, err := d.sql.ExecContext(ctx, `DELETE FROM visitors WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "cleanup visitors")
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		d.logger.Info("privacy cleanup removed old visitor records",
			zap.Int64("rows", n), zap.Duration("retention", retention))
	}
	return n, nil
}

// RecentVisitors returns the newest views first.
func (d *DB) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), created_at
		FROM visitors
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query visitors")
	}
	defer rows.Close()

	var visitors []Visitor
	for rows.Next() {
		var (
			v  Visitor
			ts int64
		)
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, errors.Wrap(err, "scan visitor")
		}
		v.Timestamp = time.Unix(ts, 0).UTC()
		visitors = append(visitors, v)
	}
	return visitors, errors.Wrap(rows.Err(), "iterate visitors")
}
