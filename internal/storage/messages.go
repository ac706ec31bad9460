package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Message is one logged contact form submission and its relay outcome.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	Driver    string    `json:"driver"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveMessage logs a submission. A zero CreatedAt is set to now.
func (d *DB) SaveMessage(ctx context.Context, m Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = d.now()
	}
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO contact_messages (id, name, surname, email, body, driver, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Surname, m.Email, m.Body, m.Driver, m.Status, nullString(m.Error), m.CreatedAt.Unix())
	if err != nil {
		return errors.Wrapf(err, "save message %s", m.ID)
	}
	return nil
}

// RecentMessages returns the newest submissions first.
func (d *DB) RecentMessages(ctx context.Context, limit int) ([]Message, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, name, surname, email, body, driver, status, COALESCE(error, ''), created_at
		FROM contact_messages
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query messages")
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			m  Message
			ts int64
		)
		err := rows.Scan(&m.ID, &m.Name, &m.Surname, &m.Email, &m.Body, &m.Driver, &m.Status, &m.Error, &ts)
		if err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		m.CreatedAt = time.Unix(ts, 0).UTC()
		messages = append(messages, m)
	}
	return messages, errors.Wrap(rows.Err(), "iterate messages")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
