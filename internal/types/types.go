// Package types contains the shared data model for natal chart computation.
// All values here are built once per request and never mutated afterwards.
package types

import "time"

// Severity grades a validation issue
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Status is the overall outcome of a validation report
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

// Location is a geographic birth location
type Location struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" msgpack:"lon"`
}

// BirthInput is the request payload for a chart computation.
// Fold and UT1MinusUTCSeconds are optional; a nil Fold means
// "no disambiguation supplied".
type BirthInput struct {
	BirthDate          string    `json:"birth_date" msgpack:"birth_date"`
	BirthTime          string    `json:"birth_time" msgpack:"birth_time"`
	BirthLocation      *Location `json:"birth_location" msgpack:"birth_location"`
	IANATimeZone       string    `json:"iana_time_zone" msgpack:"iana_time_zone"`
	Fold               *int      `json:"fold,omitempty" msgpack:"fold,omitempty"`
	UT1MinusUTCSeconds float64   `json:"ut1_minus_utc_seconds,omitempty" msgpack:"ut1_minus_utc_seconds,omitempty"`
	HouseSystem        string    `json:"house_system,omitempty" msgpack:"house_system,omitempty"`
	StrictMode         *bool     `json:"strict_mode,omitempty" msgpack:"strict_mode,omitempty"`
}

// Strict reports the effective strict-mode setting (default true)
func (b *BirthInput) Strict() bool {
	if b.StrictMode == nil {
		return true
	}
	return *b.StrictMode
}

// ValidationIssue is a single graded finding from input validation or a
// crosscheck. Issues are append-only; their order reflects the sequence
// of checks performed.
type ValidationIssue struct {
	Code     string         `json:"code" msgpack:"code"`
	Message  string         `json:"message" msgpack:"message"`
	Severity Severity       `json:"severity" msgpack:"severity"`
	Details  map[string]any `json:"details,omitempty" msgpack:"details,omitempty"`
}

// ValidationReport aggregates issues with an overall status.
// Status is "error" iff any issue is an error, else "warn" iff any
// issue is a warning, else "ok".
type ValidationReport struct {
	Status  Status            `json:"status" msgpack:"status"`
	Issues  []ValidationIssue `json:"issues" msgpack:"issues"`
	Summary string            `json:"summary" msgpack:"summary"`
}

// PlanetPosition is a single body's computed position
type PlanetPosition struct {
	Name           string   `json:"name" msgpack:"name"`
	Longitude      float64  `json:"longitude" msgpack:"longitude"`
	Sign           string   `json:"sign" msgpack:"sign"`
	DegreeInSign   float64  `json:"degree_in_sign" msgpack:"degree_in_sign"`
	SpeedLonPerDay *float64 `json:"speed_longitude_deg_per_day" msgpack:"speed_longitude_deg_per_day"`
}

// ChartAngle is the ascendant or midheaven with its sign breakdown
type ChartAngle struct {
	Longitude    float64 `json:"longitude" msgpack:"longitude"`
	Sign         string  `json:"sign" msgpack:"sign"`
	DegreeInSign float64 `json:"degree_in_sign" msgpack:"degree_in_sign"`
}

// YearPillar is the Chinese sexagenary year designation for a birth
type YearPillar struct {
	PillarYear int    `json:"year_for_pillar" msgpack:"year_for_pillar"`
	Stem       string `json:"stem" msgpack:"stem"`
	Branch     string `json:"branch" msgpack:"branch"`
	Animal     string `json:"animal" msgpack:"animal"`
	Element    string `json:"element" msgpack:"element"`
	YinYang    string `json:"yin_yang" msgpack:"yin_yang"`
}

// ChineseYear couples the pillar with the solved Li Chun boundary instant
type ChineseYear struct {
	YearPillar
	LiChunUTC time.Time `json:"li_chun_utc" msgpack:"li_chun_utc"`
}

// Audit records the computation inputs needed to reproduce a chart
type Audit struct {
	RequestID        string  `json:"request_id,omitempty" msgpack:"request_id,omitempty"`
	JulianDayUT      float64 `json:"jd_ut" msgpack:"jd_ut"`
	DeltaTSeconds    float64 `json:"delta_t_seconds" msgpack:"delta_t_seconds"`
	IANATimeZone     string  `json:"iana_time_zone" msgpack:"iana_time_zone"`
	UTCTimestamp     string  `json:"utc_timestamp" msgpack:"utc_timestamp"`
	LocalTimestamp   string  `json:"local_timestamp" msgpack:"local_timestamp"`
	UTCOffsetMinutes int     `json:"utc_offset_minutes" msgpack:"utc_offset_minutes"`
	DSTOffsetMinutes int     `json:"dst_offset_minutes" msgpack:"dst_offset_minutes"`
	HouseSystem      string  `json:"house_system" msgpack:"house_system"`
	EphemerisMode    string  `json:"ephemeris_mode" msgpack:"ephemeris_mode"`
	EngineVersion    string  `json:"engine_version" msgpack:"engine_version"`
}

// ComputeOutput is the full success envelope for a chart computation
type ComputeOutput struct {
	Ascendant   ChartAngle                `json:"ascendant" msgpack:"ascendant"`
	MC          ChartAngle                `json:"mc" msgpack:"mc"`
	Houses      map[string]float64        `json:"houses" msgpack:"houses"`
	Planets     map[string]PlanetPosition `json:"planets" msgpack:"planets"`
	ChineseYear ChineseYear               `json:"chinese_year" msgpack:"chinese_year"`
	Audit       Audit                     `json:"audit" msgpack:"audit"`
	Validation  ValidationReport          `json:"validation" msgpack:"validation"`
}

// ErrorEnvelope is returned for fatal pre-computation failures.
// It never carries chart data.
type ErrorEnvelope struct {
	Validation ValidationReport `json:"validation" msgpack:"validation"`
	InputEcho  *BirthInput      `json:"input_echo" msgpack:"input_echo"`
	HTTPStatus int              `json:"http_status,omitempty" msgpack:"http_status,omitempty"`
}
