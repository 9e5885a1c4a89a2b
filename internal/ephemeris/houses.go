package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// House system selectors
const (
	SystemPlacidus  byte = 'P'
	SystemWholeSign byte = 'W'
	SystemEqual     byte = 'E'
)

// placidusMaxLat is the geographic latitude beyond which Placidus
// semi-arcs degenerate (circumpolar ecliptic degrees).
const placidusMaxLat = 66.0

// HousesFor computes the 12 house cusps, ascendant and midheaven for an
// instant and location. lonDeg is geographic longitude, east positive.
func (p *Provider) HousesFor(utc time.Time, latDeg, lonDeg float64, system byte, ut1MinusUTCSeconds float64) (Houses, error) {
	jdUT := JulianDayUT(utc, ut1MinusUTCSeconds)
	jde := p.jde(jdUT, utc)

	// local apparent sidereal time as the right ascension of the meridian
	gst := sidereal.Apparent(jdUT).Mod1()
	ramc := normalize(gst.Rad()*180/math.Pi + lonDeg)

	_, Δε := nutation.Nutation(jde)
	ε := (nutation.MeanObliquity(jde).Deg() + Δε.Deg()) * math.Pi / 180

	φ := latDeg * math.Pi / 180
	θ := ramc * math.Pi / 180

	asc := normalize(math.Atan2(math.Cos(θ), -(math.Sin(θ)*math.Cos(ε)+math.Tan(φ)*math.Sin(ε))) * 180 / math.Pi)
	mc := normalize(math.Atan2(math.Sin(θ), math.Cos(θ)*math.Cos(ε)) * 180 / math.Pi)

	h := Houses{Ascendant: asc, Midheaven: mc}

	switch system {
	case SystemPlacidus:
		if math.Abs(latDeg) >= placidusMaxLat {
			return Houses{}, fmt.Errorf("placidus houses undefined at latitude %.2f° (beyond ±%.0f°)", latDeg, placidusMaxLat)
		}
		c11, err := placidusCusp(ramc, 30, 1.0/3, false, φ, ε)
		if err != nil {
			return Houses{}, err
		}
		c12, err := placidusCusp(ramc, 60, 2.0/3, false, φ, ε)
		if err != nil {
			return Houses{}, err
		}
		c2, err := placidusCusp(ramc, 120, 2.0/3, true, φ, ε)
		if err != nil {
			return Houses{}, err
		}
		c3, err := placidusCusp(ramc, 150, 1.0/3, true, φ, ε)
		if err != nil {
			return Houses{}, err
		}
		h.Cusps = assemble(asc, mc, c11, c12, c2, c3)
	case SystemWholeSign:
		first := 30 * math.Floor(asc/30)
		for i := range h.Cusps {
			h.Cusps[i] = normalize(first + 30*float64(i))
		}
	case SystemEqual:
		for i := range h.Cusps {
			h.Cusps[i] = normalize(asc + 30*float64(i))
		}
	default:
		return Houses{}, fmt.Errorf("unsupported house system %q", string(system))
	}
	return h, nil
}

// placidusCusp solves one intermediate Placidus cusp by fixed-point
// iteration on the right ascension of a point whose meridian distance is
// the given fraction of its semi-arc. nocturnal selects the arc below
// the horizon (cusps 2 and 3).
func placidusCusp(ramc, offsetDeg, fraction float64, nocturnal bool, φ, ε float64) (float64, error) {
	ra := ramc + offsetDeg

	for i := 0; i < 40; i++ {
		λ := eclipticFromRA(ra, ε)
		δ := math.Asin(math.Sin(ε) * math.Sin(λ*math.Pi/180))

		x := math.Tan(φ) * math.Tan(δ)
		if x < -1 || x > 1 {
			return 0, fmt.Errorf("placidus cusp degenerate at latitude %.2f°", φ*180/math.Pi)
		}
		ad := math.Asin(x) * 180 / math.Pi

		// meridian distance = fraction of the relevant semi-arc
		var next float64
		if nocturnal {
			next = ramc + 180 - fraction*(90-ad)
		} else {
			next = ramc + fraction*(90+ad)
		}

		converged := math.Abs(wrapDelta(next-ra)) < 1e-7
		ra = next
		if converged {
			break
		}
	}
	return eclipticFromRA(ra, ε), nil
}

// eclipticFromRA returns the ecliptic longitude in degrees of the
// ecliptic point with the given right ascension in degrees.
func eclipticFromRA(raDeg, ε float64) float64 {
	r := raDeg * math.Pi / 180
	return normalize(math.Atan2(math.Sin(r), math.Cos(r)*math.Cos(ε)) * 180 / math.Pi)
}

// assemble fills the cusp array from the four computed intermediate cusps
// and the angles; opposite cusps differ by 180°.
func assemble(asc, mc, c11, c12, c2, c3 float64) [12]float64 {
	var c [12]float64
	c[0] = asc
	c[1] = c2
	c[2] = c3
	c[3] = normalize(mc + 180)
	c[4] = normalize(c11 + 180)
	c[5] = normalize(c12 + 180)
	c[6] = normalize(asc + 180)
	c[7] = normalize(c2 + 180)
	c[8] = normalize(c3 + 180)
	c[9] = mc
	c[10] = c11
	c[11] = c12
	return c
}
