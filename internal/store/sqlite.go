package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS global_leads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	owner_email TEXT,
	first_name TEXT,
	last_name TEXT,
	url TEXT,
	company TEXT,
	position TEXT,
	connected_on TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_global_leads_session_id ON global_leads(session_id);
CREATE INDEX IF NOT EXISTS idx_global_leads_owner_email ON global_leads(owner_email);
CREATE TABLE IF NOT EXISTS site_emails (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	source TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_site_emails_email ON site_emails(email);
CREATE INDEX IF NOT EXISTS idx_site_emails_source ON site_emails(source);
`

// SQLite stores sessions in a local database file.
type SQLite struct {
	db *sql.DB
}

func openSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrNoDatabase
	}
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	zap.L().Debug("sqlite store ready", zap.String("path", path))
	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveLeads(ctx context.Context, sessionID string, rows []leads.Lead) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO global_leads
		(session_id, first_name, last_name, url, company, position, connected_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	recs := leadRecords(sessionID, rows, now)
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.SessionID, nullable(r.FirstName), nullable(r.LastName),
			nullable(r.URL), nullable(r.Company), nullable(r.Position), nullable(r.ConnectedOn),
			now.Format(time.RFC3339Nano)); err != nil {
			return 0, fmt.Errorf("insert lead: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(recs), nil
}

func (s *SQLite) SaveEmail(ctx context.Context, email, source string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO site_emails (email, source, created_at) VALUES (?, ?, ?)`,
		email, nullable(source), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

func (s *SQLite) LinkOwner(ctx context.Context, sessionID, email string) (int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE global_leads SET owner_email = ? WHERE session_id = ?`, email, sessionID)
	if err != nil {
		return 0, fmt.Errorf("link owner: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) SessionLeads(ctx context.Context, sessionID string) ([]LeadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, owner_email, first_name, last_name, url,
		company, position, connected_on, created_at
		FROM global_leads WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []LeadRecord
	for rows.Next() {
		var (
			r                                  LeadRecord
			owner, first, last, url, comp, pos sql.NullString
			conn                               sql.NullString
			created                            string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &owner, &first, &last, &url, &comp, &pos, &conn, &created); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		r.OwnerEmail, r.FirstName, r.LastName = owner.String, first.String, last.String
		r.URL, r.Company, r.Position, r.ConnectedOn = url.String, comp.String, pos.String, conn.String
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Emails(ctx context.Context) ([]EmailRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, source, created_at FROM site_emails ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	var out []EmailRecord
	for rows.Next() {
		var (
			r       EmailRecord
			source  sql.NullString
			created string
		)
		if err := rows.Scan(&r.ID, &r.Email, &source, &created); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		r.Source = source.String
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
