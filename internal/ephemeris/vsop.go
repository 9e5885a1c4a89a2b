package ephemeris

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/nutation"
)

// sunApparent returns the apparent geocentric solar position. In VSOP87
// mode it is derived from the Earth's heliocentric position; the analytic
// mode uses the built-in equation-of-center series.
func (p *Provider) sunApparent(jde float64) (lon, lat, dist float64, err error) {
	if p.mode != ModeVSOP87 {
		λ, R := analyticSunApparent(jde)
		return λ, 0, R, nil
	}

	L0, B0, R0 := p.earth.Position(jde)
	λ := normalize(L0.Deg() + 180)
	β := -B0.Deg()

	Δψ, _ := nutation.Nutation(jde)
	// aberration for the Sun: -20.4898" / R
	λ = normalize(λ + Δψ.Deg() - 20.4898/3600/R0)
	return λ, β, R0, nil
}

// earthRect returns the Earth's heliocentric rectangular ecliptic
// coordinates for the active mode.
func (p *Provider) earthRect(jde float64) (x, y, z float64, err error) {
	if p.mode != ModeVSOP87 {
		x, y, z = keplerRect(earthElements, jde)
		return x, y, z, nil
	}
	L, B, R := p.earth.Position(jde)
	x, y, z = rectFromSpherical(L.Rad(), B.Rad(), R)
	return x, y, z, nil
}

// planetApparent returns the apparent geocentric position of Mercury
// through Neptune. VSOP87 mode applies one light-time iteration; the
// analytic mode uses Keplerian mean elements without light-time.
func (p *Provider) planetApparent(jde float64, b Body) (lon, lat, dist float64, err error) {
	ex, ey, ez, err := p.earthRect(jde)
	if err != nil {
		return 0, 0, 0, err
	}

	if p.mode != ModeVSOP87 {
		el, ok := planetElements[b]
		if !ok {
			return 0, 0, 0, fmt.Errorf("no analytic elements for body %s", b)
		}
		x, y, z := keplerRect(el, jde)
		return p.geocentric(jde, x-ex, y-ey, z-ez)
	}

	v, ok := p.planets[b]
	if !ok {
		return 0, 0, 0, fmt.Errorf("no VSOP87 series loaded for body %s", b)
	}

	helioRect := func(jd float64) (float64, float64, float64) {
		L, B, R := v.Position(jd)
		return rectFromSpherical(L.Rad(), B.Rad(), R)
	}

	x, y, z := helioRect(jde)
	Δ := math.Sqrt((x-ex)*(x-ex) + (y-ey)*(y-ey) + (z-ez)*(z-ez))

	// one light-time iteration, 0.0057755183 d/AU
	τ := 0.0057755183 * Δ
	x, y, z = helioRect(jde - τ)

	return p.geocentric(jde, x-ex, y-ey, z-ez)
}
