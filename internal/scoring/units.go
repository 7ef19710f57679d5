package scoring

import (
	"fmt"
	"math"
)

// Unit names the measurement a test variant is recorded in.
type Unit string

const (
	UnitMinutes  Unit = "minutes"
	UnitShuttles Unit = "shuttles"
	UnitReps     Unit = "reps"
	UnitSeconds  Unit = "seconds"
)

// Measurement is a raw test result tagged with its unit.
// Only the wrapper types in this package implement it.
type Measurement interface {
	Unit() Unit
	raw() float64
}

// Minutes is an elapsed run time in decimal minutes (10.5 == 10:30).
type Minutes float64

// Shuttles is a count of completed shuttle legs.
type Shuttles float64

// Reps is a repetition count inside the test's time window.
type Reps float64

// Seconds is an elapsed hold time.
type Seconds float64

func (Minutes) Unit() Unit  { return UnitMinutes }
func (Shuttles) Unit() Unit { return UnitShuttles }
func (Reps) Unit() Unit     { return UnitReps }
func (Seconds) Unit() Unit  { return UnitSeconds }

func (m Minutes) raw() float64  { return float64(m) }
func (s Shuttles) raw() float64 { return float64(s) }
func (r Reps) raw() float64     { return float64(r) }
func (s Seconds) raw() float64  { return float64(s) }

// String renders a run time as m:ss.
func (m Minutes) String() string {
	whole := math.Floor(float64(m))
	secs := math.Round((float64(m) - whole) * 60)
	if secs == 60 {
		whole++
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", int(whole), int(secs))
}

// String renders a hold time as m:ss.
func (s Seconds) String() string {
	total := int(math.Round(float64(s)))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Measure wraps a bare number in the given unit. It is meant for request
// decoding, where the unit comes from the selected test variant.
func Measure(u Unit, v float64) Measurement {
	switch u {
	case UnitMinutes:
		return Minutes(v)
	case UnitShuttles:
		return Shuttles(v)
	case UnitReps:
		return Reps(v)
	case UnitSeconds:
		return Seconds(v)
	}
	panic(&TableError{Reason: fmt.Sprintf("unknown unit %q", u)})
}

// Value returns the bare number carried by m.
func Value(m Measurement) float64 {
	return m.raw()
}
