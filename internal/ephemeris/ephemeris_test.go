package ephemeris

import (
	"math"
	"testing"
	"time"
)

func analyticProvider() *Provider {
	return New(Config{})
}

func TestNewWithoutDataDirFallsBack(t *testing.T) {
	p := analyticProvider()
	if p.Mode() != ModeAnalytic {
		t.Errorf("Mode() = %v, want %v", p.Mode(), ModeAnalytic)
	}
	if p.HighPrecision() {
		t.Error("HighPrecision() = true without data files")
	}
	if p.ProbeErr() == nil {
		t.Error("ProbeErr() = nil, want explanation of unavailability")
	}
}

func TestNewWithBadDataDirFallsBack(t *testing.T) {
	p := New(Config{DataDir: "/nonexistent/vsop87"})
	if p.Mode() != ModeAnalytic {
		t.Errorf("Mode() = %v, want %v", p.Mode(), ModeAnalytic)
	}
	if p.ProbeErr() == nil {
		t.Error("ProbeErr() = nil for unreadable data directory")
	}
}

func TestJulianDayUT(t *testing.T) {
	// J2000.0 epoch: 2000-01-01 12:00 UT
	jd := JulianDayUT(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 0)
	if math.Abs(jd-2451545.0) > 1e-6 {
		t.Errorf("JulianDayUT(J2000) = %.8f, want 2451545.0", jd)
	}

	// ΔUT1 shifts the time argument directly
	shifted := JulianDayUT(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 86400)
	if math.Abs(shifted-2451546.0) > 1e-6 {
		t.Errorf("JulianDayUT with +86400s = %.8f, want 2451546.0", shifted)
	}
}

func TestSunLongitudeSeasonalPoints(t *testing.T) {
	p := analyticProvider()

	tests := []struct {
		name    string
		utc     time.Time
		wantLon float64
	}{
		{"March equinox 2000", time.Date(2000, 3, 20, 7, 35, 0, 0, time.UTC), 0},
		{"June solstice 2024", time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC), 90},
		{"Li Chun 2024", time.Date(2024, 2, 4, 8, 27, 0, 0, time.UTC), 315},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, err := p.SunLongitude(tt.utc)
			if err != nil {
				t.Fatalf("SunLongitude() error = %v", err)
			}
			diff := math.Abs(wrapDelta(lon - tt.wantLon))
			if diff > 0.05 {
				t.Errorf("SunLongitude = %.5f°, want %.1f° ± 0.05° (off %.5f°)", lon, tt.wantLon, diff)
			}
		})
	}
}

func TestMoonLongitudeKnownPosition(t *testing.T) {
	p := analyticProvider()

	// Meeus example 47.a: 1992 April 12.0 TD, apparent λ = 133.1673°
	lon, _, dist, err := p.apparent(2448724.5, Moon)
	if err != nil {
		t.Fatalf("apparent(Moon) error = %v", err)
	}
	if math.Abs(wrapDelta(lon-133.1673)) > 0.02 {
		t.Errorf("Moon longitude = %.4f°, want 133.1673° ± 0.02°", lon)
	}
	// 368410 km in AU
	if math.Abs(dist-0.0024625) > 0.0001 {
		t.Errorf("Moon distance = %.7f AU, want ~0.00246", dist)
	}
}

func TestAllBodiesProduceSanePositions(t *testing.T) {
	p := analyticProvider()
	utc := time.Date(1990, 7, 15, 6, 30, 0, 0, time.UTC)

	for _, b := range Bodies {
		pos, err := p.Body(utc, b, 0)
		if err != nil {
			t.Fatalf("Body(%s) error = %v", b, err)
		}
		if pos.LonDeg < 0 || pos.LonDeg >= 360 {
			t.Errorf("%s longitude %.4f outside [0,360)", b, pos.LonDeg)
		}
		if pos.DistAU <= 0 {
			t.Errorf("%s distance %.4f not positive", b, pos.DistAU)
		}
		if pos.SpeedDeg == nil {
			t.Errorf("%s speed unexpectedly unavailable", b)
		}
	}

	sun, _ := p.Body(utc, Sun, 0)
	if sun.SpeedDeg != nil && (*sun.SpeedDeg < 0.9 || *sun.SpeedDeg > 1.1) {
		t.Errorf("Sun speed = %.4f°/day, want ~0.95-1.02", *sun.SpeedDeg)
	}
	moon, _ := p.Body(utc, Moon, 0)
	if moon.SpeedDeg != nil && (*moon.SpeedDeg < 11 || *moon.SpeedDeg > 16) {
		t.Errorf("Moon speed = %.4f°/day, want ~12-15", *moon.SpeedDeg)
	}
}

func TestDeltaTReferenceValues(t *testing.T) {
	tests := []struct {
		year float64
		want float64
		tol  float64
	}{
		{2000, 63.9, 1.0},
		{1990, 56.9, 1.5},
		{1975, 45.5, 1.5},
		{1950, 29.1, 1.5},
		{1900, -2.8, 2.0},
		{1800, 13.7, 2.0},
	}
	for _, tt := range tests {
		got := deltaTSeconds(tt.year)
		if math.Abs(got-tt.want) > tt.tol {
			t.Errorf("deltaTSeconds(%.0f) = %.2f, want %.1f ± %.1f", tt.year, got, tt.want, tt.tol)
		}
	}
}

func TestDeltaTContinuityAtSegmentJoins(t *testing.T) {
	joins := []float64{500, 1600, 1700, 1800, 1860, 1900, 1920, 1941, 1961, 1986, 2005, 2050}
	for _, y := range joins {
		lo, hi := deltaTSeconds(y-0.01), deltaTSeconds(y+0.01)
		if math.Abs(hi-lo) > 2.0 {
			t.Errorf("ΔT discontinuity at %v: %.3f vs %.3f", y, lo, hi)
		}
	}
}

func TestHousesEqualAndWholeSign(t *testing.T) {
	p := analyticProvider()
	utc := time.Date(1990, 2, 4, 11, 0, 0, 0, time.UTC)

	eq, err := p.HousesFor(utc, 48.137, 11.575, SystemEqual, 0)
	if err != nil {
		t.Fatalf("HousesFor(E) error = %v", err)
	}
	if eq.Cusps[0] != eq.Ascendant {
		t.Errorf("equal house cusp 1 = %.4f, want ascendant %.4f", eq.Cusps[0], eq.Ascendant)
	}
	for i := 0; i < 12; i++ {
		next := eq.Cusps[(i+1)%12]
		gap := math.Mod(next-eq.Cusps[i]+360, 360)
		if math.Abs(gap-30) > 1e-9 {
			t.Errorf("equal house gap %d = %.4f, want 30", i+1, gap)
		}
	}

	ws, err := p.HousesFor(utc, 48.137, 11.575, SystemWholeSign, 0)
	if err != nil {
		t.Fatalf("HousesFor(W) error = %v", err)
	}
	if rem := math.Mod(ws.Cusps[0], 30); rem != 0 {
		t.Errorf("whole sign cusp 1 = %.4f, want a multiple of 30", ws.Cusps[0])
	}
	if math.Mod(ws.Ascendant, 360) < ws.Cusps[0] || ws.Ascendant >= ws.Cusps[0]+30 {
		t.Errorf("ascendant %.4f not inside first whole-sign house starting %.4f", ws.Ascendant, ws.Cusps[0])
	}
}

func TestHousesPlacidus(t *testing.T) {
	p := analyticProvider()
	utc := time.Date(1990, 2, 4, 11, 0, 0, 0, time.UTC)

	h, err := p.HousesFor(utc, 48.137, 11.575, SystemPlacidus, 0)
	if err != nil {
		t.Fatalf("HousesFor(P) error = %v", err)
	}
	if h.Cusps[0] != h.Ascendant {
		t.Errorf("cusp 1 = %.4f, want ascendant %.4f", h.Cusps[0], h.Ascendant)
	}
	if h.Cusps[9] != h.Midheaven {
		t.Errorf("cusp 10 = %.4f, want midheaven %.4f", h.Cusps[9], h.Midheaven)
	}
	for i := 0; i < 6; i++ {
		opp := math.Mod(h.Cusps[i]+180, 360)
		if math.Abs(wrapDelta(opp-h.Cusps[i+6])) > 1e-9 {
			t.Errorf("cusp %d and %d not opposite: %.4f vs %.4f", i+1, i+7, h.Cusps[i], h.Cusps[i+6])
		}
	}
	for i, c := range h.Cusps {
		if c < 0 || c >= 360 {
			t.Errorf("cusp %d = %.4f outside [0,360)", i+1, c)
		}
	}
}

func TestHousesPlacidusPolarLatitudeFails(t *testing.T) {
	p := analyticProvider()
	utc := time.Date(1990, 2, 4, 11, 0, 0, 0, time.UTC)
	if _, err := p.HousesFor(utc, 78.2, 15.6, SystemPlacidus, 0); err == nil {
		t.Fatal("expected error for Placidus beyond the polar circle")
	}
}

func TestHousesUnknownSystemFails(t *testing.T) {
	p := analyticProvider()
	utc := time.Date(1990, 2, 4, 11, 0, 0, 0, time.UTC)
	if _, err := p.HousesFor(utc, 48.1, 11.6, 'K', 0); err == nil {
		t.Fatal("expected error for unsupported house system")
	}
}
