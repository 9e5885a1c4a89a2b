// Package engine sequences the natal-chart pipeline: input validation,
// local-time resolution, planetary and house computation, the Li Chun
// boundary solve, and the crosscheck suite.
//
// The pipeline runs in two phases. Phase 1 is fail-closed: any problem
// before the chart quantities exist aborts with an ErrorEnvelope and no
// chart data. Phase 2 is fail-open: once the chart is computed, every
// crosscheck runs and the full output is returned, even if the resulting
// validation status is "error". Partial chart data is never returned.
package engine

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/astromirror/natalengine/internal/civiltime"
	"github.com/astromirror/natalengine/internal/constants"
	"github.com/astromirror/natalengine/internal/crosscheck"
	"github.com/astromirror/natalengine/internal/ephemeris"
	"github.com/astromirror/natalengine/internal/log"
	"github.com/astromirror/natalengine/internal/refdata"
	"github.com/astromirror/natalengine/internal/types"
	"github.com/astromirror/natalengine/pkg/chinesecal"
	"github.com/astromirror/natalengine/pkg/solarevent"
	"github.com/astromirror/natalengine/pkg/zodiac"
)

// DefaultHouseSystem is used when the request does not select one
const DefaultHouseSystem = "P"

// Engine computes charts against a fixed ephemeris provider and reference
// tables. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	eph           *ephemeris.Provider
	tables        *refdata.Tables
	solver        solarevent.Solver
	allowFallback bool
}

// New builds an engine. allowFallback permits computation on the analytic
// ephemeris mode even when the request asks for strict mode.
func New(eph *ephemeris.Provider, tables *refdata.Tables, allowFallback bool) *Engine {
	return &Engine{
		eph:           eph,
		tables:        tables,
		solver:        solarevent.New(),
		allowFallback: allowFallback,
	}
}

// Compute runs the full pipeline for one birth input. Exactly one of the
// return values is non-nil: the output on success (possibly with a failing
// validation status), or the envelope on a fatal Phase-1 failure.
func (e *Engine) Compute(in *types.BirthInput) (*types.ComputeOutput, *types.ErrorEnvelope) {
	var issues []types.ValidationIssue

	issues = append(issues, requiredFieldIssues(in)...)
	if len(issues) > 0 {
		return nil, fail(in, issues)
	}

	lat := in.BirthLocation.Lat
	lon := in.BirthLocation.Lon
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		issues = append(issues, types.ValidationIssue{
			Code:     "location_out_of_range",
			Message:  "birth_location lat/lon out of range",
			Severity: types.SeverityError,
			Details:  map[string]any{"lat": lat, "lon": lon},
		})
		return nil, fail(in, issues)
	}

	naive, err := parseBirthTimestamp(in.BirthDate, in.BirthTime)
	if err != nil {
		issues = append(issues, types.ValidationIssue{
			Code:     civiltime.CodeInvalidZone,
			Message:  err.Error(),
			Severity: types.SeverityError,
		})
		return nil, fail(in, issues)
	}

	resolved, err := civiltime.Resolve(naive, in.IANATimeZone, in.Fold)
	if err != nil {
		issues = append(issues, timeResolutionIssue(err))
		return nil, fail(in, issues)
	}

	// Strict-mode gating: running analytically is fatal under strict mode
	// unless the operator set the fallback override. When computation
	// proceeds on the fallback, the report carries an issue either way.
	if !e.eph.HighPrecision() {
		if in.Strict() && !e.allowFallback {
			issues = append(issues, types.ValidationIssue{
				Code: "ephemeris_unavailable",
				Message: "high-precision ephemeris data is unavailable and strict mode " +
					"forbids the analytic fallback",
				Severity: types.SeverityError,
				Details:  probeDetails(e.eph),
			})
			return nil, fail(in, issues)
		}
		sev := types.SeverityWarn
		if in.Strict() {
			sev = types.SeverityError
		}
		log.Warnw("computing on analytic ephemeris fallback",
			"strict", in.Strict(), "probe_error", fmt.Sprint(e.eph.ProbeErr()))
		issues = append(issues, types.ValidationIssue{
			Code:     "ephemeris_fallback_analytic",
			Message:  "high-precision ephemeris data is unavailable; using the built-in analytic series",
			Severity: sev,
			Details:  probeDetails(e.eph),
		})
	}

	houseSystem := DefaultHouseSystem
	if in.HouseSystem != "" {
		houseSystem = in.HouseSystem[:1]
	}

	jdUT := ephemeris.JulianDayUT(resolved.UTC, in.UT1MinusUTCSeconds)
	deltaT := e.eph.DeltaTSeconds(resolved.UTC)

	planets := make(map[string]types.PlanetPosition, len(ephemeris.Bodies))
	var sunLon float64
	for _, b := range ephemeris.Bodies {
		pos, err := e.eph.Body(resolved.UTC, b, in.UT1MinusUTCSeconds)
		if err != nil {
			issues = append(issues, types.ValidationIssue{
				Code:     "planet_calc_failed",
				Message:  fmt.Sprintf("failed to compute %s: %v", b, err),
				Severity: types.SeverityError,
			})
			return nil, fail(in, issues)
		}
		sign, _, degInSign := zodiac.FromLongitude(pos.LonDeg)
		planets[b.String()] = types.PlanetPosition{
			Name:           b.String(),
			Longitude:      pos.LonDeg,
			Sign:           sign,
			DegreeInSign:   degInSign,
			SpeedLonPerDay: pos.SpeedDeg,
		}
		if b == ephemeris.Sun {
			sunLon = pos.LonDeg
		}
	}

	hs, err := e.eph.HousesFor(resolved.UTC, lat, lon, houseSystem[0], in.UT1MinusUTCSeconds)
	if err != nil {
		issues = append(issues, types.ValidationIssue{
			Code:     "houses_calc_failed",
			Message:  fmt.Sprintf("failed to compute houses/ascendant: %v", err),
			Severity: types.SeverityError,
		})
		return nil, fail(in, issues)
	}

	start, end := chinesecal.LiChunWindowUTC(resolved.UTC.Year())
	liChun, err := e.solver.FindCrossing(start, end, chinesecal.LiChunTargetDeg, e.eph.SunLongitude)
	if err != nil {
		issues = append(issues, types.ValidationIssue{
			Code:     "li_chun_failed",
			Message:  fmt.Sprintf("failed to solve the Li Chun boundary: %v", err),
			Severity: types.SeverityError,
		})
		return nil, fail(in, issues)
	}
	pillar := chinesecal.YearPillar(resolved.UTC, liChun)

	// Phase 2: every crosscheck runs, none can abort.
	issues = append(issues, crosscheck.SunSign(e.tables, resolved.Local, planets[ephemeris.Sun.String()].Sign, sunLon)...)
	issues = append(issues, crosscheck.DeltaT(e.tables, resolved.UTC.Year(), deltaT)...)
	issues = append(issues, crosscheck.ChineseYear(e.tables, resolved.UTC, pillar.Animal, liChun)...)

	report := crosscheck.BuildReport(issues)
	if report.Status != types.StatusOK {
		log.Infow("chart computed with validation findings",
			"status", report.Status, "summary", report.Summary)
	}

	ascSign, _, ascDeg := zodiac.FromLongitude(hs.Ascendant)
	mcSign, _, mcDeg := zodiac.FromLongitude(hs.Midheaven)

	houses := make(map[string]float64, 12)
	for i, cusp := range hs.Cusps {
		houses[strconv.Itoa(i+1)] = cusp
	}

	return &types.ComputeOutput{
		Ascendant: types.ChartAngle{Longitude: hs.Ascendant, Sign: ascSign, DegreeInSign: ascDeg},
		MC:        types.ChartAngle{Longitude: hs.Midheaven, Sign: mcSign, DegreeInSign: mcDeg},
		Houses:    houses,
		Planets:   planets,
		ChineseYear: types.ChineseYear{
			YearPillar: types.YearPillar{
				PillarYear: pillar.Year,
				Stem:       pillar.Stem,
				Branch:     pillar.Branch,
				Animal:     pillar.Animal,
				Element:    pillar.Element,
				YinYang:    pillar.YinYang,
			},
			LiChunUTC: liChun,
		},
		Audit: types.Audit{
			JulianDayUT:      jdUT,
			DeltaTSeconds:    deltaT,
			IANATimeZone:     in.IANATimeZone,
			UTCTimestamp:     resolved.UTC.Format(time.RFC3339),
			LocalTimestamp:   resolved.Local.Format(time.RFC3339),
			UTCOffsetMinutes: resolved.UTCOffsetMinutes,
			DSTOffsetMinutes: resolved.DSTOffsetMinutes,
			HouseSystem:      houseSystem,
			EphemerisMode:    string(e.eph.Mode()),
			EngineVersion:    constants.Version,
		},
		Validation: report,
	}, nil
}

// LiChunUTC solves the calendar boundary instant for a year on its own,
// outside a chart computation.
func (e *Engine) LiChunUTC(year int) (time.Time, error) {
	start, end := chinesecal.LiChunWindowUTC(year)
	return e.solver.FindCrossing(start, end, chinesecal.LiChunTargetDeg, e.eph.SunLongitude)
}

// EphemerisMode reports the precision mode the engine computes in
func (e *Engine) EphemerisMode() string { return string(e.eph.Mode()) }

func requiredFieldIssues(in *types.BirthInput) []types.ValidationIssue {
	var issues []types.ValidationIssue
	missing := func(field string) {
		issues = append(issues, types.ValidationIssue{
			Code:     "missing_field",
			Message:  "missing required field: " + field,
			Severity: types.SeverityError,
			Details:  map[string]any{"field": field},
		})
	}
	if in.BirthDate == "" {
		missing("birth_date")
	}
	if in.BirthTime == "" {
		missing("birth_time")
	}
	if in.BirthLocation == nil {
		missing("birth_location")
	}
	if in.IANATimeZone == "" {
		missing("iana_time_zone")
	}
	return issues
}

// parseBirthTimestamp combines the date and time fields into a naive
// timestamp. Seconds are optional in the time field.
func parseBirthTimestamp(date, clock string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, date+" "+clock); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"could not parse birth_date %q / birth_time %q; expected YYYY-MM-DD and HH:MM[:SS]", date, clock)
}

// timeResolutionIssue maps the resolver's typed errors onto issue codes
// with their structured detail payloads.
func timeResolutionIssue(err error) types.ValidationIssue {
	var ambiguous *civiltime.AmbiguousTimeError
	if errors.As(err, &ambiguous) {
		return types.ValidationIssue{
			Code:     civiltime.CodeAmbiguous,
			Message:  ambiguous.Error(),
			Severity: types.SeverityError,
			Details: map[string]any{
				"zone":       ambiguous.Zone,
				"candidates": ambiguous.Candidates,
			},
		}
	}
	var nonexistent *civiltime.NonexistentTimeError
	if errors.As(err, &nonexistent) {
		return types.ValidationIssue{
			Code:     civiltime.CodeNonexistent,
			Message:  nonexistent.Error(),
			Severity: types.SeverityError,
			Details:  map[string]any{"zone": nonexistent.Zone},
		}
	}
	var invalidFold *civiltime.InvalidFoldError
	if errors.As(err, &invalidFold) {
		return types.ValidationIssue{
			Code:     civiltime.CodeInvalidFold,
			Message:  invalidFold.Error(),
			Severity: types.SeverityError,
		}
	}
	return types.ValidationIssue{
		Code:     civiltime.CodeInvalidZone,
		Message:  err.Error(),
		Severity: types.SeverityError,
	}
}

func probeDetails(p *ephemeris.Provider) map[string]any {
	if p.ProbeErr() == nil {
		return nil
	}
	return map[string]any{"probe_error": p.ProbeErr().Error()}
}

// fail wraps the accumulated issues into a fatal envelope. The fatal
// issue is always the most recently appended one; the transport status
// is derived from its code.
func fail(in *types.BirthInput, issues []types.ValidationIssue) *types.ErrorEnvelope {
	status := 400
	if len(issues) > 0 {
		status = HTTPStatusFor(issues[len(issues)-1].Code)
	}
	return &types.ErrorEnvelope{
		Validation: crosscheck.BuildReport(issues),
		InputEcho:  in,
		HTTPStatus: status,
	}
}

// HTTPStatusFor maps a fatal issue code to its transport status. Crosscheck
// codes never pass through here; they only raise the validation status.
func HTTPStatusFor(code string) int {
	switch code {
	case civiltime.CodeAmbiguous:
		return 409
	case civiltime.CodeNonexistent:
		return 422
	case "ephemeris_unavailable", "planet_calc_failed", "houses_calc_failed", "li_chun_failed":
		return 500
	default:
		return 400
	}
}
