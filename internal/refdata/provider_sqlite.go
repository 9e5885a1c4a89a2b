package refdata

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteProvider loads the reference tables from a versioned SQLite
// database, for deployments that ship reference data as a single .db
// artifact instead of loose CSV files.
type SQLiteProvider struct {
	db   *sql.DB
	path string
}

// NewSQLiteProvider opens the reference database read-only
func NewSQLiteProvider(path string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening reference database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("reference database %s not readable: %w", path, err)
	}
	return &SQLiteProvider{db: db, path: path}, nil
}

// LoadTables reads and indexes all three tables plus the version row
func (p *SQLiteProvider) LoadTables() (*Tables, error) {
	version := "sqlite:" + p.path
	if v, err := p.loadVersion(); err == nil && v != "" {
		version = v
	}

	signs, err := p.loadSigns()
	if err != nil {
		return nil, err
	}
	dt, err := p.loadDeltaT()
	if err != nil {
		return nil, err
	}
	cy, err := p.loadChineseYears()
	if err != nil {
		return nil, err
	}
	return newTables(version, signs, dt, cy)
}

// Close closes the underlying database handle
func (p *SQLiteProvider) Close() error { return p.db.Close() }

func (p *SQLiteProvider) loadVersion() (string, error) {
	var v string
	err := p.db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&v)
	return v, err
}

func (p *SQLiteProvider) loadSigns() ([]WesternSignRange, error) {
	rows, err := p.db.Query(`SELECT sign, start_md, end_md FROM western_signs`)
	if err != nil {
		return nil, fmt.Errorf("querying western_signs: %w", err)
	}
	defer rows.Close()

	var out []WesternSignRange
	for rows.Next() {
		var sign, start, end string
		if err := rows.Scan(&sign, &start, &end); err != nil {
			return nil, err
		}
		s, err := parseMonthDay(start)
		if err != nil {
			return nil, fmt.Errorf("western_signs %s: %w", sign, err)
		}
		e, err := parseMonthDay(end)
		if err != nil {
			return nil, fmt.Errorf("western_signs %s: %w", sign, err)
		}
		out = append(out, WesternSignRange{Sign: sign, Start: s, End: e})
	}
	return out, rows.Err()
}

func (p *SQLiteProvider) loadDeltaT() ([]DeltaTRef, error) {
	rows, err := p.db.Query(`SELECT year, seconds, tolerance, note FROM deltat_reference`)
	if err != nil {
		return nil, fmt.Errorf("querying deltat_reference: %w", err)
	}
	defer rows.Close()

	var out []DeltaTRef
	for rows.Next() {
		var ref DeltaTRef
		if err := rows.Scan(&ref.Year, &ref.Seconds, &ref.Tolerance, &ref.Note); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (p *SQLiteProvider) loadChineseYears() ([]ChineseYearInterval, error) {
	rows, err := p.db.Query(`SELECT animal, start_utc, end_utc FROM chinese_years`)
	if err != nil {
		return nil, fmt.Errorf("querying chinese_years: %w", err)
	}
	defer rows.Close()

	var out []ChineseYearInterval
	for rows.Next() {
		var animal, start, end string
		if err := rows.Scan(&animal, &start, &end); err != nil {
			return nil, err
		}
		s, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return nil, fmt.Errorf("chinese_years %s: bad start %q", animal, start)
		}
		e, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return nil, fmt.Errorf("chinese_years %s: bad end %q", animal, end)
		}
		out = append(out, ChineseYearInterval{Animal: animal, Start: s.UTC(), End: e.UTC()})
	}
	return out, rows.Err()
}
