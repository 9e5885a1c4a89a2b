// Package zodiac maps tropical ecliptic longitudes onto the twelve
// fixed 30-degree zodiac sectors.
package zodiac

import "math"

// Signs lists the twelve tropical signs in ecliptic order from 0° Aries
var Signs = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// NormalizeDeg wraps an angle to the range [0, 360)
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// FromLongitude returns the sign containing the given ecliptic longitude
// along with the sign index and the degree within the sign [0, 30).
func FromLongitude(lon float64) (sign string, index int, degInSign float64) {
	lon = NormalizeDeg(lon)
	index = int(lon / 30.0)
	if index > 11 {
		// guard against lon == 360 after float rounding
		index = 11
	}
	return Signs[index], index, lon - 30.0*float64(index)
}

// BoundaryDistance returns the angular distance from the given longitude
// to the nearest 30° sign boundary.
func BoundaryDistance(lon float64) float64 {
	in := math.Mod(NormalizeDeg(lon), 30.0)
	return math.Min(in, 30.0-in)
}
