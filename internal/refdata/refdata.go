// Package refdata loads the static reference tables used by the
// crosscheck suite: western zodiac date ranges, per-year ΔT sanity
// references and Chinese calendrical year intervals. Tables are loaded
// once at startup, indexed for containment lookup, and shared read-only
// across requests.
package refdata

import (
	"fmt"
	"sort"
	"time"
)

// Provider is a read-only source of reference tables
type Provider interface {
	// LoadTables parses and indexes the complete table set
	LoadTables() (*Tables, error)

	// Close releases any underlying resources
	Close() error
}

// MonthDay is a calendar date without a year, comparable via Ordinal
type MonthDay struct {
	Month time.Month
	Day   int
}

// Ordinal returns a sortable month*100+day key
func (md MonthDay) Ordinal() int { return int(md.Month)*100 + md.Day }

func (md MonthDay) String() string { return fmt.Sprintf("%02d-%02d", md.Month, md.Day) }

// WesternSignRange maps an inclusive month-day range to a zodiac sign.
// Ranges may wrap the year end (e.g. Capricorn 12-22..01-19).
type WesternSignRange struct {
	Sign  string
	Start MonthDay
	End   MonthDay
}

// contains reports whether the range includes the given day, honoring wrap
func (r WesternSignRange) contains(md MonthDay) bool {
	x, s, e := md.Ordinal(), r.Start.Ordinal(), r.End.Ordinal()
	if s <= e {
		return s <= x && x <= e
	}
	return x >= s || x <= e
}

// DeltaTRef is a per-year ΔT sanity reference with tolerance, in seconds
type DeltaTRef struct {
	Year      int
	Seconds   float64
	Tolerance float64
	Note      string
}

// ChineseYearInterval assigns an animal to a half-open UTC interval
type ChineseYearInterval struct {
	Animal string
	Start  time.Time
	End    time.Time
}

// Tables is the immutable, indexed reference table set
type Tables struct {
	Version      string
	westernSigns []WesternSignRange
	deltaT       map[int]DeltaTRef
	chineseYears []ChineseYearInterval // sorted by Start
}

// newTables indexes raw rows: ΔT by year, Chinese intervals sorted for
// binary-search containment.
func newTables(version string, signs []WesternSignRange, dt []DeltaTRef, cy []ChineseYearInterval) (*Tables, error) {
	if len(signs) == 0 {
		return nil, fmt.Errorf("western sign table is empty")
	}

	byYear := make(map[int]DeltaTRef, len(dt))
	for _, ref := range dt {
		byYear[ref.Year] = ref
	}

	sorted := make([]ChineseYearInterval, len(cy))
	copy(sorted, cy)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	for _, iv := range sorted {
		if !iv.Start.Before(iv.End) {
			return nil, fmt.Errorf("chinese year interval for %s is empty or inverted", iv.Animal)
		}
	}

	return &Tables{
		Version:      version,
		westernSigns: signs,
		deltaT:       byYear,
		chineseYears: sorted,
	}, nil
}

// SignForDate returns the western zodiac sign covering a calendar date,
// or false when the table has no covering range.
func (t *Tables) SignForDate(month time.Month, day int) (string, bool) {
	md := MonthDay{Month: month, Day: day}
	for _, r := range t.westernSigns {
		if r.contains(md) {
			return r.Sign, true
		}
	}
	return "", false
}

// DeltaTForYear returns the ΔT sanity reference for a year, if present
func (t *Tables) DeltaTForYear(year int) (DeltaTRef, bool) {
	ref, ok := t.deltaT[year]
	return ref, ok
}

// AnimalForInstant returns the animal whose half-open [start, end)
// interval contains the UTC instant, or false for uncovered instants.
func (t *Tables) AnimalForInstant(utc time.Time) (string, bool) {
	n := len(t.chineseYears)
	// first interval starting after utc; the candidate precedes it
	i := sort.Search(n, func(i int) bool { return t.chineseYears[i].Start.After(utc) })
	if i == 0 {
		return "", false
	}
	iv := t.chineseYears[i-1]
	if utc.Before(iv.End) {
		return iv.Animal, true
	}
	return "", false
}

// ChineseCoverage returns the first covered and last covered instants,
// useful for startup logging.
func (t *Tables) ChineseCoverage() (start, end time.Time, ok bool) {
	if len(t.chineseYears) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.chineseYears[0].Start, t.chineseYears[len(t.chineseYears)-1].End, true
}
