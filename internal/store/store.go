// Package store persists normalized leads per analysis session and the
// emails captured by the site.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
)

// LeadRecord is one stored lead row.
type LeadRecord struct {
	ID          int64
	SessionID   string
	OwnerEmail  string
	FirstName   string
	LastName    string
	URL         string
	Company     string
	Position    string
	ConnectedOn string
	CreatedAt   time.Time
}

// EmailRecord is one captured email.
type EmailRecord struct {
	ID        int64
	Email     string
	Source    string
	CreatedAt time.Time
}

// Store is implemented by the SQLite and PostgreSQL backends.
type Store interface {
	// SaveLeads stores rows under sessionID and returns how many were written.
	SaveLeads(ctx context.Context, sessionID string, rows []leads.Lead) (int, error)
	SaveEmail(ctx context.Context, email, source string) error
	// LinkOwner marks email as the owner of every lead in sessionID.
	LinkOwner(ctx context.Context, sessionID, email string) (int64, error)
	SessionLeads(ctx context.Context, sessionID string) ([]LeadRecord, error)
	Emails(ctx context.Context) ([]EmailRecord, error)
	Close() error
}

// ErrNoDatabase is returned by Open for an empty URL.
var ErrNoDatabase = errors.New("database url is empty")

// Open connects to the database named by url. postgres:// and postgresql://
// URLs use PostgreSQL; sqlite:// URLs, file: URLs and bare paths use SQLite.
// The schema is created when missing.
func Open(ctx context.Context, url string) (Store, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return nil, ErrNoDatabase
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		pg, err := openPostgres(ctx, url)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case strings.Contains(url, "://") && !strings.HasPrefix(url, "sqlite://") && !strings.HasPrefix(url, "file:"):
		return nil, fmt.Errorf("unsupported database url scheme: %s", url[:strings.Index(url, "://")])
	}
	path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "sqlite:")
	lite, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

func leadRecords(sessionID string, rows []leads.Lead, now time.Time) []LeadRecord {
	out := make([]LeadRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, LeadRecord{
			SessionID:   sessionID,
			FirstName:   r.Field(leads.FieldFirstName),
			LastName:    r.Field(leads.FieldLastName),
			URL:         r.Field(leads.FieldURL),
			Company:     r.Field(leads.FieldCompany),
			Position:    r.Field(leads.FieldPosition),
			ConnectedOn: r.Field(leads.FieldConnectedOn),
			CreatedAt:   now,
		})
	}
	return out
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	return email, nil
}

// nullable maps "" to nil so optional columns stay NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
