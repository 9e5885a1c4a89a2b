package crosscheck

import (
	"testing"
	"time"

	"github.com/astromirror/natalengine/internal/refdata"
	"github.com/astromirror/natalengine/internal/types"
)

func loadTables(t *testing.T) *refdata.Tables {
	t.Helper()
	p := refdata.NewEmbeddedProvider()
	defer p.Close()
	tables, err := p.LoadTables()
	if err != nil {
		t.Fatalf("loading embedded tables: %v", err)
	}
	return tables
}

func TestSunSignAgreement(t *testing.T) {
	tables := loadTables(t)

	// Mid-Leo: August 10th, Sun around 138°.
	date := time.Date(1990, time.August, 10, 12, 0, 0, 0, time.UTC)
	issues := SunSign(tables, date, "Leo", 138.0)
	if len(issues) != 0 {
		t.Fatalf("expected no issues for agreeing mid-sign case, got %+v", issues)
	}
}

func TestSunSignCuspMismatchIsWarning(t *testing.T) {
	tables := loadTables(t)

	// Date table says Virgo on Aug 23 but the longitude is still 0.5°
	// short of the Leo/Virgo boundary at 150°.
	date := time.Date(1990, time.August, 23, 6, 0, 0, 0, time.UTC)
	issues := SunSign(tables, date, "Leo", 149.5)
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %+v", issues)
	}
	is := issues[0]
	if is.Code != "sun_sign_cusp_mismatch" {
		t.Errorf("code = %q, want sun_sign_cusp_mismatch", is.Code)
	}
	if is.Severity != types.SeverityWarn {
		t.Errorf("cusp mismatch must be a warning, got %q", is.Severity)
	}
}

func TestSunSignHardMismatchIsError(t *testing.T) {
	tables := loadTables(t)

	// Mid-Leo date with a longitude deep in Scorpio: no cusp excuse.
	date := time.Date(1990, time.August, 10, 12, 0, 0, 0, time.UTC)
	issues := SunSign(tables, date, "Scorpio", 220.0)
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %+v", issues)
	}
	if issues[0].Code != "sun_sign_mismatch" {
		t.Errorf("code = %q, want sun_sign_mismatch", issues[0].Code)
	}
	if issues[0].Severity != types.SeverityError {
		t.Errorf("hard mismatch must be an error, got %q", issues[0].Severity)
	}
}

func TestDeltaT(t *testing.T) {
	tables := loadTables(t)

	tests := []struct {
		name     string
		year     int
		deltaT   float64
		wantCode string // empty means no issue
	}{
		{"within tolerance", 1990, 57.0, ""},
		{"beyond tolerance", 1990, 75.0, "delta_t_out_of_reference_range"},
		{"no reference year", 1650, 40.0, "delta_t_no_reference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := DeltaT(tables, tt.year, tt.deltaT)
			if tt.wantCode == "" {
				if len(issues) != 0 {
					t.Fatalf("expected no issues, got %+v", issues)
				}
				return
			}
			if len(issues) != 1 {
				t.Fatalf("expected exactly one issue, got %+v", issues)
			}
			if issues[0].Code != tt.wantCode {
				t.Errorf("code = %q, want %q", issues[0].Code, tt.wantCode)
			}
			if issues[0].Severity != types.SeverityWarn {
				t.Errorf("ΔT findings are never errors, got %q", issues[0].Severity)
			}
		})
	}
}

func TestChineseYear(t *testing.T) {
	tables := loadTables(t)

	// Li Chun 1990 fell on Feb 4, 02:14 UTC.
	boundary := time.Date(1990, time.February, 4, 2, 14, 0, 0, time.UTC)

	tests := []struct {
		name     string
		birth    time.Time
		animal   string
		wantCode string
		wantSev  types.Severity
	}{
		{
			name:   "agreement",
			birth:  time.Date(1990, time.June, 15, 12, 0, 0, 0, time.UTC),
			animal: "Horse",
		},
		{
			name:     "mismatch near boundary is warning",
			birth:    boundary.Add(6 * time.Hour),
			animal:   "Snake",
			wantCode: "chinese_year_boundary_mismatch",
			wantSev:  types.SeverityWarn,
		},
		{
			name:     "mismatch far from boundary is error",
			birth:    time.Date(1990, time.June, 15, 12, 0, 0, 0, time.UTC),
			animal:   "Snake",
			wantCode: "chinese_year_mismatch",
			wantSev:  types.SeverityError,
		},
		{
			name:     "outside table coverage",
			birth:    time.Date(1900, time.June, 15, 12, 0, 0, 0, time.UTC),
			animal:   "Rat",
			wantCode: "chinese_year_not_in_table",
			wantSev:  types.SeverityWarn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ChineseYear(tables, tt.birth, tt.animal, boundary)
			if tt.wantCode == "" {
				if len(issues) != 0 {
					t.Fatalf("expected no issues, got %+v", issues)
				}
				return
			}
			if len(issues) != 1 {
				t.Fatalf("expected exactly one issue, got %+v", issues)
			}
			if issues[0].Code != tt.wantCode {
				t.Errorf("code = %q, want %q", issues[0].Code, tt.wantCode)
			}
			if issues[0].Severity != tt.wantSev {
				t.Errorf("severity = %q, want %q", issues[0].Severity, tt.wantSev)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	warn := types.ValidationIssue{Code: "w", Severity: types.SeverityWarn}
	errIssue := types.ValidationIssue{Code: "e", Severity: types.SeverityError}

	tests := []struct {
		name        string
		issues      []types.ValidationIssue
		wantStatus  types.Status
		wantSummary string
	}{
		{"empty", nil, types.StatusOK, "ok"},
		{"warnings only", []types.ValidationIssue{warn, warn}, types.StatusWarn, "2 warning(s)"},
		{"errors only", []types.ValidationIssue{errIssue}, types.StatusError, "1 error(s), 0 warning(s)"},
		{"mixed", []types.ValidationIssue{warn, errIssue, warn}, types.StatusError, "1 error(s), 2 warning(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := BuildReport(tt.issues)
			if rep.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", rep.Status, tt.wantStatus)
			}
			if rep.Summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", rep.Summary, tt.wantSummary)
			}
			if rep.Issues == nil {
				t.Error("issues must never be nil in the report")
			}
			if len(rep.Issues) != len(tt.issues) {
				t.Errorf("issues length = %d, want %d", len(rep.Issues), len(tt.issues))
			}
		})
	}
}
