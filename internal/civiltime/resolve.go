// Package civiltime converts local civil birth timestamps into unambiguous
// UTC instants using the IANA tz database. Daylight-saving ambiguity and
// nonexistence are surfaced as typed errors rather than silently resolved,
// because a one-hour timezone mistake visibly shifts the ascendant and
// house cusps of the resulting chart.
package civiltime

import (
	"fmt"
	"sort"
	"time"
)

// Error codes surfaced to callers for structured handling
const (
	CodeAmbiguous   = "AMBIGUOUS_LOCAL_TIME"
	CodeNonexistent = "NONEXISTENT_LOCAL_TIME"
	CodeInvalidFold = "INVALID_FOLD"
	CodeInvalidZone = "time_conversion_failed"
)

// Resolved is the outcome of a successful local-to-UTC conversion
type Resolved struct {
	Local            time.Time // zoned local timestamp of the chosen interpretation
	UTC              time.Time
	UTCOffsetMinutes int
	DSTOffsetMinutes int
}

// Candidate describes one possible interpretation of an ambiguous local time
type Candidate struct {
	Fold             int       `json:"fold"`
	UTCOffsetMinutes int       `json:"utc_offset_minutes"`
	DSTActive        bool      `json:"dst_active"`
	UTCTime          time.Time `json:"utc_time"`
}

// AmbiguousTimeError reports a local time that occurs twice during a DST
// fall-back overlap. Callers resubmit with an explicit fold selection.
type AmbiguousTimeError struct {
	Local      time.Time
	Zone       string
	Candidates []Candidate
}

func (e *AmbiguousTimeError) Error() string {
	return fmt.Sprintf("local time %s is ambiguous in %s due to DST fall-back; "+
		"provide fold=0 (first occurrence) or fold=1 (second occurrence)",
		e.Local.Format("2006-01-02T15:04:05"), e.Zone)
}

// NonexistentTimeError reports a local time skipped by a DST spring-forward
// gap. There is no valid interpretation; this is always fatal.
type NonexistentTimeError struct {
	Local time.Time
	Zone  string
}

func (e *NonexistentTimeError) Error() string {
	return fmt.Sprintf("local time %s does not exist in %s (DST spring-forward gap); "+
		"choose a time before or after the transition",
		e.Local.Format("2006-01-02T15:04:05"), e.Zone)
}

// InvalidFoldError reports a disambiguation flag outside {0, 1}
type InvalidFoldError struct {
	Fold int
}

func (e *InvalidFoldError) Error() string {
	return fmt.Sprintf("fold must be 0 or 1, got %d", e.Fold)
}

// ZoneError reports an IANA zone identifier that could not be loaded
type ZoneError struct {
	Zone string
	Err  error
}

func (e *ZoneError) Error() string {
	return fmt.Sprintf("unknown IANA time zone %q: %v", e.Zone, e.Err)
}

func (e *ZoneError) Unwrap() error { return e.Err }

// Resolve converts the wall-clock reading of naive (its location is ignored)
// in the given IANA zone to a UTC instant. A nil fold means no disambiguation
// was supplied; ambiguous local times then fail with *AmbiguousTimeError.
func Resolve(naive time.Time, zone string, fold *int) (*Resolved, error) {
	if fold != nil && *fold != 0 && *fold != 1 {
		return nil, &InvalidFoldError{Fold: *fold}
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, &ZoneError{Zone: zone, Err: err}
	}

	// Re-read the wall-clock fields as if they were UTC so offset
	// arithmetic below is exact.
	wall := time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), 0, time.UTC)

	candidates := interpretations(wall, loc)

	switch len(candidates) {
	case 0:
		return nil, &NonexistentTimeError{Local: wall, Zone: zone}
	case 1:
		return resolved(candidates[0], loc), nil
	}

	if fold == nil {
		return nil, &AmbiguousTimeError{Local: wall, Zone: zone, Candidates: candidates}
	}
	return resolved(candidates[*fold], loc), nil
}

// interpretations returns every UTC instant whose local rendering in loc
// reproduces the given wall-clock time, ordered earliest first. The earliest
// interpretation corresponds to fold=0.
func interpretations(wall time.Time, loc *time.Location) []Candidate {
	probes := []time.Time{
		wall.Add(-24 * time.Hour),
		wall,
		wall.Add(24 * time.Hour),
	}

	seen := make(map[int]bool)
	var out []Candidate
	for _, p := range probes {
		_, off := p.In(loc).Zone()
		if seen[off] {
			continue
		}
		seen[off] = true

		utc := wall.Add(-time.Duration(off) * time.Second)
		local := utc.In(loc)
		if !sameWallClock(local, wall) {
			continue
		}
		out = append(out, Candidate{
			UTCOffsetMinutes: off / 60,
			DSTActive:        local.IsDST(),
			UTCTime:          utc,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UTCTime.Before(out[j].UTCTime) })
	for i := range out {
		out[i].Fold = i
	}
	return out
}

func resolved(c Candidate, loc *time.Location) *Resolved {
	local := c.UTCTime.In(loc)
	return &Resolved{
		Local:            local,
		UTC:              c.UTCTime,
		UTCOffsetMinutes: c.UTCOffsetMinutes,
		DSTOffsetMinutes: dstMinutes(local, loc),
	}
}

func sameWallClock(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}

// dstMinutes returns the daylight-saving contribution to the local offset.
// The standard offset is taken as the smaller of the mid-winter and
// mid-summer offsets for the year, which covers both hemispheres.
func dstMinutes(local time.Time, loc *time.Location) int {
	if !local.IsDST() {
		return 0
	}
	_, jan := time.Date(local.Year(), time.January, 1, 12, 0, 0, 0, loc).Zone()
	_, jul := time.Date(local.Year(), time.July, 1, 12, 0, 0, 0, loc).Zone()
	std := jan
	if jul < std {
		std = jul
	}
	_, off := local.Zone()
	return (off - std) / 60
}
