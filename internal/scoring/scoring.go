// Package scoring converts raw fitness-assessment results into component
// points, an overall score with a status label, and the weekly PT session
// requirement that follows from it.
//
// Everything here is pure and safe for concurrent use. A gender/variant pair
// without a table row, or a measurement in the wrong unit, is a programming
// error and panics with a *TableError; out-of-range numbers saturate.
package scoring

import "math"

// AerobicScore returns 0..60 points for an aerobic result.
func AerobicScore(g Gender, t AerobicTest, raw Measurement) int {
	return score(g, Aerobic, string(t), raw)
}

// StrengthScore returns 0..20 points for a strength result.
func StrengthScore(g Gender, t StrengthTest, raw Measurement) int {
	return score(g, Strength, string(t), raw)
}

// CoreScore returns 0..20 points for a core result.
func CoreScore(g Gender, t CoreTest, raw Measurement) int {
	return score(g, Core, string(t), raw)
}

func score(g Gender, c Component, test string, m Measurement) int {
	b := mustLookup(g, c, test)
	if m == nil || m.Unit() != b.Unit {
		var got Unit
		if m != nil {
			got = m.Unit()
		}
		panic(&TableError{Gender: g, Component: c, Test: test,
			Reason: "expected " + string(b.Unit) + ", got " + string(got)})
	}
	return interpolate(b, m.raw())
}

// interpolate maps raw linearly onto [0, b.Max], saturating at both ends.
// Rounding happens once, on the final point value. NaN scores 0.
func interpolate(b Bounds, raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	top := float64(b.Max)
	if b.LowerIsBetter() {
		switch {
		case raw <= b.Best:
			return b.Max
		case raw >= b.Worst:
			return 0
		}
		return int(math.Round(top - ((raw-b.Best)/(b.Worst-b.Best))*top))
	}
	switch {
	case raw >= b.Best:
		return b.Max
	case raw <= b.Worst:
		return 0
	}
	return int(math.Round(((raw - b.Worst) / (b.Best - b.Worst)) * top))
}
