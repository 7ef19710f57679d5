package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreRow(k tableKey, raw float64) int {
	b := tables[k]
	return score(k.gender, k.component, k.test, Measure(b.Unit, raw))
}

func TestBoundaryExactness(t *testing.T) {
	require.Len(t, tables, 16)
	for k, b := range tables {
		t.Run(string(k.gender)+"/"+k.test, func(t *testing.T) {
			assert.Equal(t, b.Max, scoreRow(k, b.Best), "best")
			assert.Equal(t, 0, scoreRow(k, b.Worst), "worst")
		})
	}
}

func TestSaturation(t *testing.T) {
	assert.Equal(t, 60, AerobicScore(Male, Run1_5Mile, Minutes(5)))
	assert.Equal(t, 0, AerobicScore(Male, Run1_5Mile, Minutes(30)))
	assert.Equal(t, 60, AerobicScore(Female, Run1_5Mile, Minutes(0)))
	// Faster than best saturates even when impossible; the service layer
	// rejects negative measurements before they get here.
	assert.Equal(t, 60, AerobicScore(Female, Run1_5Mile, Minutes(-3)))
	assert.Equal(t, 20, StrengthScore(Male, Pushups, Reps(500)))
	assert.Equal(t, 0, StrengthScore(Male, Pushups, Reps(-1)))
	assert.Equal(t, 20, CoreScore(Female, Plank, Seconds(3600)))
	assert.Equal(t, 0, CoreScore(Female, Plank, Seconds(0)))
	assert.Equal(t, 0, CoreScore(Male, Situps, Reps(math.NaN())))

	for k, b := range tables {
		span := math.Abs(b.Best - b.Worst)
		for _, raw := range []float64{b.Best - 2*span, b.Best + 2*span, b.Worst - 2*span, b.Worst + 2*span, math.Inf(1), math.Inf(-1)} {
			got := scoreRow(k, raw)
			assert.GreaterOrEqual(t, got, 0, "%v raw=%v", k, raw)
			assert.LessOrEqual(t, got, b.Max, "%v raw=%v", k, raw)
		}
	}
}

func TestMonotonicity(t *testing.T) {
	for k, b := range tables {
		lo := math.Min(b.Best, b.Worst) - 5
		hi := math.Max(b.Best, b.Worst) + 5
		prev := scoreRow(k, lo)
		for raw := lo; raw <= hi; raw += 0.05 {
			got := scoreRow(k, raw)
			if b.LowerIsBetter() {
				require.LessOrEqual(t, got, prev, "%v raw=%v", k, raw)
			} else {
				require.GreaterOrEqual(t, got, prev, "%v raw=%v", k, raw)
			}
			prev = got
		}
	}
}

func TestInterpolatedScores(t *testing.T) {
	tests := []struct {
		name string
		got  func() int
		want int
	}{
		// 12.67 sits exactly halfway between 9.12 and 16.22; the raw
		// float result is 29.999999999999993 which rounds to 30.
		{"male run 12:40", func() int { return AerobicScore(Male, Run1_5Mile, Minutes(12.67)) }, 30},
		{"male run 12:00", func() int { return AerobicScore(Male, Run1_5Mile, Minutes(12.0)) }, 36},
		{"female run 14:00", func() int { return AerobicScore(Female, Run1_5Mile, Minutes(14.0)) }, 33},
		{"male hamr 48", func() int { return AerobicScore(Male, HAMR, Shuttles(48)) }, 31},
		{"male 20m 60", func() int { return AerobicScore(Male, Shuttle20m, Shuttles(60)) }, 26},
		{"female 20m 25", func() int { return AerobicScore(Female, Shuttle20m, Shuttles(25)) }, 5},
		{"male pushups 40", func() int { return StrengthScore(Male, Pushups, Reps(40)) }, 4},
		{"female hand release 30", func() int { return StrengthScore(Female, HandReleasePushups, Reps(30)) }, 16},
		{"male plank 100s", func() int { return CoreScore(Male, Plank, Seconds(100)) }, 5},
		{"male crunch 25", func() int { return CoreScore(Male, CrossLegReverseCrunch, Reps(25)) }, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got())
		})
	}
}

func TestConfigurationErrorsPanic(t *testing.T) {
	t.Run("unknown gender", func(t *testing.T) {
		assert.PanicsWithError(t, "scoring: other/aerobic/1.5_mile: no score table", func() {
			AerobicScore(Gender("other"), Run1_5Mile, Minutes(10))
		})
	})
	t.Run("unknown variant", func(t *testing.T) {
		assert.Panics(t, func() { CoreScore(Male, CoreTest("burpees"), Reps(10)) })
	})
	t.Run("wrong unit", func(t *testing.T) {
		assert.PanicsWithError(t, "scoring: male/aerobic/hamr: expected shuttles, got minutes", func() {
			AerobicScore(Male, HAMR, Minutes(10))
		})
	})
	t.Run("missing measurement", func(t *testing.T) {
		assert.Panics(t, func() { StrengthScore(Female, Pushups, nil) })
	})
	t.Run("variant from another component", func(t *testing.T) {
		assert.Panics(t, func() { CoreScore(Male, CoreTest(Pushups), Reps(40)) })
	})
}

func TestVariantMetadata(t *testing.T) {
	assert.True(t, HAMR.Valid())
	assert.False(t, AerobicTest("mile").Valid())
	assert.False(t, StrengthTest(Situps).Valid())
	assert.Equal(t, UnitMinutes, Run1_5Mile.Unit())
	assert.Equal(t, UnitShuttles, Shuttle20m.Unit())
	assert.Equal(t, UnitReps, HandReleasePushups.Unit())
	assert.Equal(t, UnitSeconds, Plank.Unit())
	assert.Equal(t, UnitReps, CrossLegReverseCrunch.Unit())

	for _, g := range []Gender{Male, Female} {
		for _, a := range AerobicTests() {
			_, ok := Lookup(g, Aerobic, string(a))
			assert.True(t, ok)
		}
		for _, s := range StrengthTests() {
			_, ok := Lookup(g, Strength, string(s))
			assert.True(t, ok)
		}
		for _, c := range CoreTests() {
			_, ok := Lookup(g, Core, string(c))
			assert.True(t, ok)
		}
	}
}

func TestUnitFormatting(t *testing.T) {
	assert.Equal(t, "10:30", Minutes(10.5).String())
	assert.Equal(t, "9:07", Minutes(9.12).String())
	assert.Equal(t, "12:00", Minutes(11.999).String())
	assert.Equal(t, "3:30", Seconds(210).String())
	assert.Equal(t, "1:00", Seconds(60).String())
	assert.Equal(t, 12.5, Value(Measure(UnitMinutes, 12.5)))
	assert.IsType(t, Shuttles(0), Measure(UnitShuttles, 3))
	assert.Panics(t, func() { Measure(Unit("furlongs"), 1) })
}
