package ephemeris

import "math"

// The analytic fallback needs no external data. The Sun uses the
// equation-of-center series with apparent-longitude correction; planets
// use Keplerian mean elements referenced to J2000, valid roughly
// 1800–2050 to within a few arcminutes.

// analyticSunApparent returns the Sun's apparent ecliptic longitude in
// degrees and the Sun-Earth distance in AU.
func analyticSunApparent(jde float64) (lonDeg, distAU float64) {
	T := (jde - 2451545.0) / 36525.0

	L0 := normalize(280.46646 + T*(36000.76983+T*0.0003032))
	M := normalize(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)

	Mrad := M * math.Pi / 180
	C := math.Sin(Mrad)*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(2*Mrad)*(0.019993-T*0.000101) +
		math.Sin(3*Mrad)*0.000289

	trueLon := L0 + C
	ν := Mrad + C*math.Pi/180
	R := 1.000001018 * (1 - e*e) / (1 + e*math.Cos(ν))

	// apparent correction: nutation + aberration via the Ω term
	Ω := 125.04 - 1934.136*T
	λ := trueLon - 0.00569 - 0.00478*math.Sin(Ω*math.Pi/180)

	return normalize(λ), R
}

// elements holds Keplerian mean elements at J2000 plus per-century rates.
// Angles in degrees, semi-major axis in AU.
type elements struct {
	a, aDot   float64 // semi-major axis
	e, eDot   float64 // eccentricity
	i, iDot   float64 // inclination
	l, lDot   float64 // mean longitude
	pv, pvDot float64 // longitude of perihelion
	om, omDot float64 // longitude of ascending node
}

// JPL approximate-position elements, 1800 AD – 2050 AD validity
var earthElements = elements{
	1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
	100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0.0, 0.0,
}

var planetElements = map[Body]elements{
	Mercury: {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	Venus: {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	Mars: {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	Jupiter: {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	Saturn: {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	Uranus: {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	Neptune: {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
}

// keplerRect returns heliocentric rectangular ecliptic J2000 coordinates
// from mean elements.
func keplerRect(el elements, jde float64) (x, y, z float64) {
	T := (jde - 2451545.0) / 36525.0

	a := el.a + el.aDot*T
	e := el.e + el.eDot*T
	i := (el.i + el.iDot*T) * math.Pi / 180
	l := el.l + el.lDot*T
	pv := el.pv + el.pvDot*T
	om := (el.om + el.omDot*T) * math.Pi / 180

	ω := (pv*math.Pi/180 - om)
	M := normalize(l-pv) * math.Pi / 180

	E := solveKepler(M, e)

	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	cosw, sinw := math.Cos(ω), math.Sin(ω)
	coso, sino := math.Cos(om), math.Sin(om)
	cosi, sini := math.Cos(i), math.Sin(i)

	x = (cosw*coso-sinw*sino*cosi)*xp + (-sinw*coso-cosw*sino*cosi)*yp
	y = (cosw*sino+sinw*coso*cosi)*xp + (-sinw*sino+cosw*coso*cosi)*yp
	z = (sinw*sini)*xp + (cosw*sini)*yp
	return x, y, z
}

// solveKepler iterates Newton's method on Kepler's equation.
// Converges in a handful of steps for planetary eccentricities.
func solveKepler(M, e float64) float64 {
	E := M + e*math.Sin(M)
	for n := 0; n < 10; n++ {
		dE := (M - (E - e*math.Sin(E))) / (1 - e*math.Cos(E))
		E += dE
		if math.Abs(dE) < 1e-9 {
			break
		}
	}
	return E
}
