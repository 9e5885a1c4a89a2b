// Package crosscheck implements the post-computation sanity checks run
// against the static reference tables. The checks are deliberately
// redundant with the primary computation: they are driven by independent
// data so they can catch systematic calendar, timezone or ephemeris-mode
// bugs the live computation cannot see in itself. Checks never abort the
// pipeline; they only append graded issues.
package crosscheck

import (
	"fmt"
	"time"

	"github.com/astromirror/natalengine/internal/refdata"
	"github.com/astromirror/natalengine/internal/types"
	"github.com/astromirror/natalengine/pkg/zodiac"
)

// cuspToleranceDeg is the distance from a 30° sign boundary within which
// a date-table disagreement is expected rather than alarming.
const cuspToleranceDeg = 1.0

// boundaryTolerance is the window around the solved Li Chun instant in
// which table and pillar may legitimately disagree due to differing
// ephemeris precision modes.
const boundaryTolerance = 24 * time.Hour

// SunSign compares the longitude-derived sun sign against the date-range
// table for the local birth date.
func SunSign(tables *refdata.Tables, localDate time.Time, lonSign string, sunLon float64) []types.ValidationIssue {
	dateSign, ok := tables.SignForDate(localDate.Month(), localDate.Day())
	if !ok {
		return []types.ValidationIssue{{
			Code:     "sun_sign_date_table_unmatched",
			Message:  "could not map the birth date to a sign using the western zodiac table",
			Severity: types.SeverityWarn,
			Details: map[string]any{
				"date": localDate.Format("2006-01-02"),
			},
		}}
	}

	if dateSign == lonSign {
		return nil
	}

	dist := zodiac.BoundaryDistance(sunLon)
	details := map[string]any{
		"date_sign":            dateSign,
		"lon_sign":             lonSign,
		"sun_lon":              sunLon,
		"dist_to_boundary_deg": dist,
	}

	if dist < cuspToleranceDeg {
		return []types.ValidationIssue{{
			Code:     "sun_sign_cusp_mismatch",
			Message:  fmt.Sprintf("sun sign disagrees with the date table but the Sun is within %.1f° of a sign boundary (cusp)", cuspToleranceDeg),
			Severity: types.SeverityWarn,
			Details:  details,
		}}
	}
	return []types.ValidationIssue{{
		Code:     "sun_sign_mismatch",
		Message:  "sun sign from longitude disagrees with the date-table sign",
		Severity: types.SeverityError,
		Details:  details,
	}}
}

// DeltaT compares the computed ΔT against the per-year sanity reference.
// A missing reference year is informational, never an error.
func DeltaT(tables *refdata.Tables, year int, deltaTSeconds float64) []types.ValidationIssue {
	ref, ok := tables.DeltaTForYear(year)
	if !ok {
		return []types.ValidationIssue{{
			Code:     "delta_t_no_reference",
			Message:  "no ΔT sanity reference for the birth year",
			Severity: types.SeverityWarn,
			Details:  map[string]any{"year": year},
		}}
	}

	deviation := deltaTSeconds - ref.Seconds
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation <= ref.Tolerance {
		return nil
	}
	return []types.ValidationIssue{{
		Code:     "delta_t_out_of_reference_range",
		Message:  "computed ΔT deviates from the sanity reference beyond its tolerance",
		Severity: types.SeverityWarn,
		Details: map[string]any{
			"year":            year,
			"delta_t_seconds": deltaTSeconds,
			"reference":       ref.Seconds,
			"tolerance":       ref.Tolerance,
			"note":            ref.Note,
		},
	}}
}

// ChineseYear verifies the computed pillar animal against the interval
// table. A mismatch within 24 h of the solved boundary is attributable
// to differing ephemeris precision modes and downgrades to a warning.
func ChineseYear(tables *refdata.Tables, birthUTC time.Time, pillarAnimal string, boundaryUTC time.Time) []types.ValidationIssue {
	tableAnimal, ok := tables.AnimalForInstant(birthUTC)
	if !ok {
		return []types.ValidationIssue{{
			Code:     "chinese_year_not_in_table",
			Message:  "birth instant is outside the coverage of the Chinese year table",
			Severity: types.SeverityWarn,
			Details:  map[string]any{"birth_utc": birthUTC.Format(time.RFC3339)},
		}}
	}

	if tableAnimal == pillarAnimal {
		return nil
	}

	details := map[string]any{
		"table_animal":  tableAnimal,
		"pillar_animal": pillarAnimal,
		"birth_utc":     birthUTC.Format(time.RFC3339),
		"li_chun_utc":   boundaryUTC.Format(time.RFC3339),
	}

	fromBoundary := birthUTC.Sub(boundaryUTC)
	if fromBoundary < 0 {
		fromBoundary = -fromBoundary
	}
	if fromBoundary <= boundaryTolerance {
		return []types.ValidationIssue{{
			Code:     "chinese_year_boundary_mismatch",
			Message:  "table animal disagrees with the pillar but the birth is within 24h of the Li Chun boundary; check ephemeris mode consistency",
			Severity: types.SeverityWarn,
			Details:  details,
		}}
	}
	return []types.ValidationIssue{{
		Code:     "chinese_year_mismatch",
		Message:  "computed pillar animal disagrees with the Li-Chun interval table",
		Severity: types.SeverityError,
		Details:  details,
	}}
}
