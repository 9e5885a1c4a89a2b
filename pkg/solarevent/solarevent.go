// Package solarevent locates the UTC instant at which a continuously
// evolving ecliptic longitude crosses a target value. The search is a
// coarse bracketing scan followed by bisection and assumes the longitude
// is monotonic across the caller-supplied window, so the window must be
// chosen narrow enough to contain exactly one crossing.
package solarevent

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNoBracket is returned when the scan finds no sign change inside the
// search window. This indicates an ephemeris or configuration anomaly,
// not a user error.
var ErrNoBracket = errors.New("no longitude crossing bracketed in search window")

// LongitudeFunc evaluates an ecliptic longitude in degrees at an instant
type LongitudeFunc func(t time.Time) (float64, error)

// Solver holds the search parameters. The zero value is unusable; use
// New for the standard configuration. The dual convergence criteria and
// the hard iteration ceiling are safety bounds against non-convergence
// and must not be loosened.
type Solver struct {
	Step          time.Duration // coarse scan step
	MaxIterations int           // bisection iteration ceiling
	FuncTolDeg    float64       // absolute tolerance on the longitude residual
	WidthTol      time.Duration // bracket width below which the midpoint is accepted
}

// New returns a solver with the standard parameters: hourly scan,
// 80 bisection iterations, 1e-8° residual tolerance, 0.5 s bracket width.
func New() Solver {
	return Solver{
		Step:          time.Hour,
		MaxIterations: 80,
		FuncTolDeg:    1e-8,
		WidthTol:      500 * time.Millisecond,
	}
}

// FindCrossing returns the instant in [start, end] at which f crosses
// targetDeg. The residual is wrapped to (-180, 180] so crossings of 0°/360°
// bracket correctly.
func (s Solver) FindCrossing(start, end time.Time, targetDeg float64, f LongitudeFunc) (time.Time, error) {
	if !start.Before(end) {
		return time.Time{}, fmt.Errorf("invalid search window [%v, %v]", start, end)
	}

	residual := func(t time.Time) (float64, error) {
		lon, err := f(t)
		if err != nil {
			return 0, fmt.Errorf("longitude at %v: %w", t, err)
		}
		return wrapResidual(lon - targetDeg), nil
	}

	// coarse scan: first adjacent pair bracketing zero, inclusive of exact zero
	var (
		havePrev  bool
		fPrev     float64
		a, b      time.Time
		bracketed bool
	)
	for t := start; !t.After(end); t = t.Add(s.Step) {
		fc, err := residual(t)
		if err != nil {
			return time.Time{}, err
		}
		if havePrev && brackets(fPrev, fc) {
			a, b = t.Add(-s.Step), t
			bracketed = true
			break
		}
		havePrev = true
		fPrev = fc
	}
	if !bracketed {
		return time.Time{}, fmt.Errorf("%w: target %.4f° in [%v, %v]", ErrNoBracket, targetDeg, start, end)
	}

	fa, err := residual(a)
	if err != nil {
		return time.Time{}, err
	}

	for i := 0; i < s.MaxIterations; i++ {
		mid := a.Add(b.Sub(a) / 2)
		fm, err := residual(mid)
		if err != nil {
			return time.Time{}, err
		}
		if math.Abs(fm) < s.FuncTolDeg {
			return mid, nil
		}
		// An endpoint residual of exactly zero takes the upper-half branch;
		// the comparison below is kept inclusive on both sides on purpose.
		if brackets(fa, fm) {
			b = mid
		} else {
			a, fa = mid, fm
		}
		if b.Sub(a) < s.WidthTol {
			return a.Add(b.Sub(a) / 2), nil
		}
	}
	return a.Add(b.Sub(a) / 2), nil
}

// FindLongitudeCrossing runs FindCrossing with the standard solver parameters
func FindLongitudeCrossing(start, end time.Time, targetDeg float64, f LongitudeFunc) (time.Time, error) {
	return New().FindCrossing(start, end, targetDeg, f)
}

// brackets reports whether the signed pair (f0, f1) straddles zero,
// counting an exact zero on either side as a bracket.
func brackets(f0, f1 float64) bool {
	return (f0 <= 0 && f1 >= 0) || (f0 >= 0 && f1 <= 0)
}

// wrapResidual maps a longitude difference into (-180, 180]
func wrapResidual(d float64) float64 {
	d = math.Mod(d, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}
