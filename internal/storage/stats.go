package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Stats summarizes traffic and contact activity for the admin dashboard.
type Stats struct {
	TotalVisitors    int64     `json:"total_visitors"`
	UniqueVisitors   int64     `json:"unique_visitors"`
	VisitorsToday    int64     `json:"visitors_today"`
	VisitorsThisWeek int64     `json:"visitors_this_week"`
	TopPaths         []PathHit `json:"top_paths"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesFailed   int64     `json:"messages_failed"`
	RecentVisitors   []Visitor `json:"recent_visitors"`
	RecentMessages   []Message `json:"recent_messages"`
}

// PathHit counts views of one path.
type PathHit struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// Stats gathers the dashboard numbers.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := d.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Unix()
	weekStart := now.Add(-7 * 24 * time.Hour).Unix()

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{dayStart}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{weekStart}},
		{&stats.MessagesSent, `SELECT COUNT(*) FROM contact_messages WHERE status = 'sent'`, nil},
		{&stats.MessagesFailed, `SELECT COUNT(*) FROM contact_messages WHERE status = 'error'`, nil},
	}
	for _, c := range counts {
		if err := d.sql.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, errors.Wrapf(err, "stats query %q", c.query)
		}
	}

	var err error
	stats.TopPaths, err = d.topPaths(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors, err = d.RecentVisitors(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentMessages, err = d.RecentMessages(ctx, 20)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// topPaths closes its rows before returning; the pool has one connection.
func (d *DB) topPaths(ctx context.Context, limit int) ([]PathHit, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT COALESCE(path, ''), COUNT(*) AS views
		FROM visitors
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query top paths")
	}
	defer rows.Close()

	var hits []PathHit
	for rows.Next() {
		var hit PathHit
		if err := rows.Scan(&hit.Path, &hit.Views); err != nil {
			return nil, errors.Wrap(err, "scan path hit")
		}
		hits = append(hits, hit)
	}
	return hits, errors.Wrap(rows.Err(), "iterate top paths")
}
