package store

import (
	"time"

	"bendcalc/pkg/models"
)

// AuditLog appends one row per reference-data mutation.
type AuditLog struct {
	db *DB
}

func NewAuditLog(db *DB) *AuditLog {
	return &AuditLog{db: db}
}

// Append records an action. Failures here must not abort the mutation
// that already committed, so callers log and continue.
func (l *AuditLog) Append(userName, action, table string, recordID int64, details string) error {
	_, err := l.db.conn.Exec(
		`INSERT INTO audit_log (user_name, action, table_name, record_id, details, at) VALUES (?, ?, ?, ?, ?, ?)`,
		userName, action, table, recordID, details, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Recent returns the latest n entries, newest first.
func (l *AuditLog) Recent(n int) ([]models.LogEntry, error) {
	rows, err := l.db.conn.Query(
		`SELECT id, user_name, action, table_name, record_id, details, at FROM audit_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		var at string
		if err := rows.Scan(&e.ID, &e.UserName, &e.Action, &e.Table, &e.RecordID, &e.Details, &at); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		out = append(out, e)
	}
	return out, rows.Err()
}
