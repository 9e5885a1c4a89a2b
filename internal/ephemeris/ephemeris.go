// Package ephemeris computes apparent geocentric planetary positions,
// house cusps and ΔT. Two precision modes are supported: full VSOP87
// series loaded from data files, and a built-in analytic fallback that
// needs no files but delivers reduced accuracy. The mode is fixed at
// construction from explicit configuration, never from ambient state,
// and is reported to callers for auditing.
package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
)

// Body identifies one of the ten chart bodies
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
)

// Bodies lists all chart bodies in traditional order
var Bodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

var bodyNames = map[Body]string{
	Sun: "Sun", Moon: "Moon", Mercury: "Mercury", Venus: "Venus", Mars: "Mars",
	Jupiter: "Jupiter", Saturn: "Saturn", Uranus: "Uranus", Neptune: "Neptune", Pluto: "Pluto",
}

func (b Body) String() string { return bodyNames[b] }

// vsopIndex maps chart bodies to planetposition load constants
var vsopIndex = map[Body]int{
	Mercury: planetposition.Mercury,
	Venus:   planetposition.Venus,
	Mars:    planetposition.Mars,
	Jupiter: planetposition.Jupiter,
	Saturn:  planetposition.Saturn,
	Uranus:  planetposition.Uranus,
	Neptune: planetposition.Neptune,
}

// Mode identifies the precision mode in use
type Mode string

const (
	ModeVSOP87   Mode = "vsop87"   // full series from data files
	ModeAnalytic Mode = "analytic" // built-in reduced-precision series
)

// Position is an apparent geocentric position
type Position struct {
	LonDeg   float64  // ecliptic longitude [0, 360)
	LatDeg   float64  // ecliptic latitude
	DistAU   float64  // distance in astronomical units
	SpeedDeg *float64 // longitudinal speed, degrees/day; nil when unavailable
}

// Houses holds 12 cusp longitudes plus the chart angles, all in [0, 360)
type Houses struct {
	Cusps     [12]float64
	Ascendant float64
	Midheaven float64
}

// Config selects the data source for the provider. An empty DataDir
// disables the VSOP87 mode; the provider then runs analytically.
type Config struct {
	DataDir string // directory holding VSOP87 B data files
}

// Provider computes positions for a fixed precision mode. It is immutable
// after construction and safe for concurrent use.
type Provider struct {
	mode     Mode
	probeErr error
	earth    *planetposition.V87Planet
	planets  map[Body]*planetposition.V87Planet
}

// New probes the configured data directory and returns a provider in the
// highest available precision mode. A failed probe is not an error here:
// the caller decides whether running analytically is acceptable
// (strict-mode gating happens in the engine).
func New(cfg Config) *Provider {
	p := &Provider{mode: ModeAnalytic}
	if cfg.DataDir == "" {
		p.probeErr = fmt.Errorf("no VSOP87 data directory configured")
		return p
	}

	earth, err := planetposition.LoadPlanetPath(planetposition.Earth, cfg.DataDir)
	if err != nil {
		p.probeErr = fmt.Errorf("loading VSOP87 Earth data from %s: %w", cfg.DataDir, err)
		return p
	}

	planets := make(map[Body]*planetposition.V87Planet, len(vsopIndex))
	for body, idx := range vsopIndex {
		v, err := planetposition.LoadPlanetPath(idx, cfg.DataDir)
		if err != nil {
			p.probeErr = fmt.Errorf("loading VSOP87 %s data from %s: %w", body, cfg.DataDir, err)
			return p
		}
		planets[body] = v
	}

	p.mode = ModeVSOP87
	p.earth = earth
	p.planets = planets
	return p
}

// Mode reports the precision mode fixed at construction
func (p *Provider) Mode() Mode { return p.mode }

// HighPrecision reports whether the VSOP87 mode is active
func (p *Provider) HighPrecision() bool { return p.mode == ModeVSOP87 }

// ProbeErr returns the reason high precision is unavailable, or nil
func (p *Provider) ProbeErr() error { return p.probeErr }

// JulianDayUT converts a UTC instant to a Julian day on the UT scale,
// applying the caller's ΔUT1 offset in seconds.
func JulianDayUT(utc time.Time, ut1MinusUTCSeconds float64) float64 {
	ut1 := utc.Add(time.Duration(ut1MinusUTCSeconds * float64(time.Second)))
	return julian.TimeToJD(ut1)
}

// DeltaTSeconds returns ΔT = TT − UT1 in seconds for the instant
func (p *Provider) DeltaTSeconds(utc time.Time) float64 {
	return deltaTSeconds(decimalYear(utc))
}

// jde converts a UT Julian day to the dynamical time argument
func (p *Provider) jde(jdUT float64, utc time.Time) float64 {
	return jdUT + p.DeltaTSeconds(utc)/86400.0
}

// Body returns the apparent geocentric position of a body at the given
// UTC instant. Speed is a symmetric finite difference over one day.
func (p *Provider) Body(utc time.Time, b Body, ut1MinusUTCSeconds float64) (Position, error) {
	jdUT := JulianDayUT(utc, ut1MinusUTCSeconds)
	jde := p.jde(jdUT, utc)

	lon, lat, dist, err := p.apparent(jde, b)
	if err != nil {
		return Position{}, err
	}

	pos := Position{LonDeg: lon, LatDeg: lat, DistAU: dist}
	if speed, err := p.lonSpeed(jde, b); err == nil {
		pos.SpeedDeg = &speed
	}
	return pos, nil
}

// SunLongitude returns the apparent ecliptic longitude of the Sun,
// the quantity the calendar-boundary solver roots against.
func (p *Provider) SunLongitude(utc time.Time) (float64, error) {
	jdUT := JulianDayUT(utc, 0)
	lon, _, _, err := p.apparent(p.jde(jdUT, utc), Sun)
	return lon, err
}

// apparent dispatches to the per-body computation for the active mode
func (p *Provider) apparent(jde float64, b Body) (lon, lat, dist float64, err error) {
	switch b {
	case Sun:
		return p.sunApparent(jde)
	case Moon:
		return p.moonApparent(jde)
	case Pluto:
		return p.plutoApparent(jde)
	default:
		return p.planetApparent(jde, b)
	}
}

// lonSpeed estimates d(longitude)/dt in degrees/day by central difference
func (p *Provider) lonSpeed(jde float64, b Body) (float64, error) {
	const h = 0.5 // days
	before, _, _, err := p.apparent(jde-h, b)
	if err != nil {
		return 0, err
	}
	after, _, _, err := p.apparent(jde+h, b)
	if err != nil {
		return 0, err
	}
	return wrapDelta(after-before) / (2 * h), nil
}

// moonApparent uses the abridged ELP series, which needs no data files
// and serves both precision modes.
func (p *Provider) moonApparent(jde float64) (lon, lat, dist float64, err error) {
	const kmPerAU = 149597870.7
	λ, β, Δ := moonposition.Position(jde)
	Δψ, _ := nutation.Nutation(jde)
	return normalize(λ.Deg() + Δψ.Deg()), β.Deg(), Δ / kmPerAU, nil
}

// plutoApparent combines the Meeus Pluto series with the Earth position
// of the active mode. The series itself is only valid 1885–2099; outside
// that range results degrade but remain finite.
func (p *Provider) plutoApparent(jde float64) (lon, lat, dist float64, err error) {
	l, b, r := pluto.Heliocentric(jde)
	ex, ey, ez, err := p.earthRect(jde)
	if err != nil {
		return 0, 0, 0, err
	}
	x, y, z := rectFromSpherical(l.Rad(), b.Rad(), r)
	return p.geocentric(jde, x-ex, y-ey, z-ez)
}

// geocentric converts geocentric rectangular ecliptic coordinates to
// apparent spherical coordinates, adding nutation in longitude.
func (p *Provider) geocentric(jde, x, y, z float64) (lon, lat, dist float64, err error) {
	Δ := math.Sqrt(x*x + y*y + z*z)
	λ := math.Atan2(y, x)
	β := math.Atan2(z, math.Hypot(x, y))
	Δψ, _ := nutation.Nutation(jde)
	return normalize(λ*180/math.Pi + Δψ.Deg()), β * 180 / math.Pi, Δ, nil
}

func rectFromSpherical(lonRad, latRad, r float64) (x, y, z float64) {
	cb := math.Cos(latRad)
	return r * cb * math.Cos(lonRad), r * cb * math.Sin(lonRad), r * math.Sin(latRad)
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// wrapDelta maps a longitude difference into (-180, 180]
func wrapDelta(d float64) float64 {
	d = math.Mod(d, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// decimalYear expresses an instant as a fractional year for the ΔT polynomials
func decimalYear(t time.Time) float64 {
	y := t.Year()
	start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC)
	return float64(y) + t.Sub(start).Seconds()/end.Sub(start).Seconds()
}
