package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS global_leads (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		owner_email TEXT,
		first_name TEXT,
		last_name TEXT,
		url TEXT,
		company TEXT,
		position TEXT,
		connected_on TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_global_leads_session_id ON global_leads(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_global_leads_owner_email ON global_leads(owner_email)`,
	`CREATE TABLE IF NOT EXISTS site_emails (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		source TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_site_emails_email ON site_emails(email)`,
	`CREATE INDEX IF NOT EXISTS idx_site_emails_source ON site_emails(source)`,
}

// Postgres stores sessions in PostgreSQL through a pgx pool.
type Postgres struct {
	db *pgxpool.Pool
}

func openPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create postgres schema: %w", err)
		}
	}
	zap.L().Debug("postgres store ready")
	return &Postgres{db: pool}, nil
}

func (p *Postgres) SaveLeads(ctx context.Context, sessionID string, rows []leads.Lead) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	recs := leadRecords(sessionID, rows, time.Now().UTC())
	src := pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
		r := recs[i]
		return []any{r.SessionID, nullable(r.FirstName), nullable(r.LastName), nullable(r.URL),
			nullable(r.Company), nullable(r.Position), nullable(r.ConnectedOn), r.CreatedAt}, nil
	})
	n, err := p.db.CopyFrom(ctx, pgx.Identifier{"global_leads"},
		[]string{"session_id", "first_name", "last_name", "url", "company", "position", "connected_on", "created_at"}, src)
	if err != nil {
		return 0, fmt.Errorf("copy leads: %w", err)
	}
	return int(n), nil
}

func (p *Postgres) SaveEmail(ctx context.Context, email, source string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, `INSERT INTO site_emails (email, source) VALUES ($1, $2)`, email, nullable(source)); err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

func (p *Postgres) LinkOwner(ctx context.Context, sessionID, email string) (int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	tag, err := p.db.Exec(ctx, `UPDATE global_leads SET owner_email = $1 WHERE session_id = $2`, email, sessionID)
	if err != nil {
		return 0, fmt.Errorf("link owner: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) SessionLeads(ctx context.Context, sessionID string) ([]LeadRecord, error) {
	rows, err := p.db.Query(ctx, `SELECT id, session_id, COALESCE(owner_email, ''), COALESCE(first_name, ''),
		COALESCE(last_name, ''), COALESCE(url, ''), COALESCE(company, ''), COALESCE(position, ''),
		COALESCE(connected_on, ''), created_at
		FROM global_leads WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []LeadRecord
	for rows.Next() {
		var r LeadRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.OwnerEmail, &r.FirstName, &r.LastName, &r.URL,
			&r.Company, &r.Position, &r.ConnectedOn, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) Emails(ctx context.Context) ([]EmailRecord, error) {
	rows, err := p.db.Query(ctx, `SELECT id, email, COALESCE(source, ''), created_at FROM site_emails ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	var out []EmailRecord
	for rows.Next() {
		var r EmailRecord
		if err := rows.Scan(&r.ID, &r.Email, &r.Source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
