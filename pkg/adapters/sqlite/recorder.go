// Package sqlite records leads and analytics events in a local SQLite file.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Recorder implements ports.Recorder on SQLite.
type Recorder struct {
	db *sql.DB

	mu      sync.Mutex
	entropy io.Reader
}

// Open creates the database directory and schema if needed.
func Open(dbPath string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL lets the HTTP handlers record concurrently with readers.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &Recorder{db: db, entropy: ulid.Monotonic(rand.Reader, 0)}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return r, nil
}

func (r *Recorder) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		offense_type TEXT NOT NULL DEFAULT '',
		eligibility_result TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leads_session ON leads(session_id);

	CREATE TABLE IF NOT EXISTS analytics (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		event TEXT NOT NULL,
		data_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analytics_event ON analytics(event, created_at);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Ping verifies database connectivity.
func (r *Recorder) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Recorder) newID(at time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), r.entropy).String()
}

// RecordLead appends a lead row.
func (r *Recorder) RecordLead(ctx context.Context, lead domain.Lead) error {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (id, session_id, name, email, phone, state, offense_type, eligibility_result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.newID(lead.CreatedAt), lead.SessionID, lead.Name, lead.Email, lead.Phone,
		lead.Jurisdiction, lead.OffenseType, lead.EligibilityResult, lead.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// RecordEvent appends an analytics row.
func (r *Recorder) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	var data sql.NullString
	if len(event.Data) > 0 {
		raw, err := json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("marshal event data: %w", err)
		}
		data = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analytics (id, session_id, event, data_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.newID(event.CreatedAt), event.SessionID, event.Name, data, event.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Leads returns the leads of a session in insertion order.
func (r *Recorder) Leads(ctx context.Context, sessionID string) ([]domain.Lead, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, name, email, phone, state, offense_type, eligibility_result, created_at
		FROM leads WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var l domain.Lead
		var createdAt int64
		if err := rows.Scan(&l.SessionID, &l.Name, &l.Email, &l.Phone, &l.Jurisdiction,
			&l.OffenseType, &l.EligibilityResult, &createdAt); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		l.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

// Events returns the analytics events of a session in insertion order.
func (r *Recorder) Events(ctx context.Context, sessionID string) ([]domain.AnalyticsEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, event, data_json, created_at
		FROM analytics WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []domain.AnalyticsEvent
	for rows.Next() {
		var e domain.AnalyticsEvent
		var data sql.NullString
		var createdAt int64
		if err := rows.Scan(&e.SessionID, &e.Name, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if data.Valid {
			if err := json.Unmarshal([]byte(data.String), &e.Data); err != nil {
				return nil, fmt.Errorf("decode event data: %w", err)
			}
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
