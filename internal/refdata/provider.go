package refdata

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/yourorg/kyotransit/internal/debug"
)

// Provider loads the reference tables from the database exactly once and
// serves the memoized result afterwards. Concurrent callers that arrive
// before the first load completes block on the same in-flight load, so
// the resolvers never observe a partially populated table.
type Provider struct {
	db *sql.DB

	mu     sync.Mutex
	tables *Tables
}

// NewProvider wraps a database connection. The connection is only used
// on the first Load call.
func NewProvider(db *sql.DB) *Provider {
	return &Provider{db: db}
}

// NewStaticProvider returns a provider pre-populated with the given
// tables, bypassing the database. Used by tests and the CLI.
func NewStaticProvider(t *Tables) *Provider {
	return &Provider{tables: t}
}

// Load returns the reference tables, loading them from the database on
// first use. Idempotent; a failed load is retried by the next caller.
func (p *Provider) Load(ctx context.Context) (*Tables, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tables != nil {
		return p.tables, nil
	}
	if p.db == nil {
		return nil, fmt.Errorf("refdata: no database connection configured")
	}

	stops, err := loadStops(ctx, p.db)
	if err != nil {
		return nil, fmt.Errorf("refdata: load stops: %w", err)
	}
	landmarks, err := loadLandmarks(ctx, p.db)
	if err != nil {
		return nil, fmt.Errorf("refdata: load landmarks: %w", err)
	}
	coeffs, err := loadCoefficients(ctx, p.db)
	if err != nil {
		return nil, fmt.Errorf("refdata: load coefficients: %w", err)
	}

	p.tables = NewTables(stops, landmarks, coeffs)
	debug.LogInfo("reference tables loaded", map[string]interface{}{
		"stops":        len(stops),
		"landmarks":    len(landmarks),
		"coefficients": len(coeffs),
	})
	return p.tables, nil
}

// Tables returns the loaded tables, or (nil, false) before first load.
func (p *Provider) Tables() (*Tables, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tables, p.tables != nil
}

func loadStops(ctx context.Context, db *sql.DB) ([]StopRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name_ja, COALESCE(name_en, ''), kind, operator, latitude, longitude
		FROM stops
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []StopRecord
	for rows.Next() {
		var s StopRecord
		if err := rows.Scan(&s.ID, &s.NameJa, &s.NameEn, &s.Kind, &s.Operator, &s.Lat, &s.Lng); err != nil {
			debug.LogWarn("skipping malformed stop row", map[string]interface{}{"error": err.Error()})
			continue
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

func loadLandmarks(ctx context.Context, db *sql.DB) ([]LandmarkRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name_ja, COALESCE(name_en, ''), category, latitude, longitude
		FROM landmarks
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var landmarks []LandmarkRecord
	for rows.Next() {
		var l LandmarkRecord
		if err := rows.Scan(&l.ID, &l.NameJa, &l.NameEn, &l.Category, &l.Lat, &l.Lng); err != nil {
			debug.LogWarn("skipping malformed landmark row", map[string]interface{}{"error": err.Error()})
			continue
		}
		landmarks = append(landmarks, l)
	}
	return landmarks, rows.Err()
}

func loadCoefficients(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, language, value FROM coefficients`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coeffs := make(map[string]string)
	for rows.Next() {
		var name, lang, value string
		if err := rows.Scan(&name, &lang, &value); err != nil {
			continue
		}
		coeffs[name+"/"+lang] = value
	}
	return coeffs, rows.Err()
}
