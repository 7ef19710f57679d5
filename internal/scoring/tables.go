package scoring

import "fmt"

// Gender selects which boundary table applies.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Valid reports whether g has score tables.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// Component is one of the three scored parts of an assessment.
type Component string

const (
	Aerobic  Component = "aerobic"
	Strength Component = "strength"
	Core     Component = "core"
)

// Component maxima. They add up to 100.
const (
	AerobicMax  = 60
	StrengthMax = 20
	CoreMax     = 20
)

// AerobicTest is the cardio variant a member took.
type AerobicTest string

const (
	Run1_5Mile AerobicTest = "1.5_mile"
	HAMR       AerobicTest = "hamr"
	Shuttle20m AerobicTest = "20m_shuttle"
)

// StrengthTest is the push-up variant a member took.
type StrengthTest string

const (
	Pushups            StrengthTest = "pushups"
	HandReleasePushups StrengthTest = "hand_release_pushups"
)

// CoreTest is the abdominal variant a member took.
type CoreTest string

const (
	Situps                CoreTest = "situps"
	CrossLegReverseCrunch CoreTest = "cross_leg_reverse_crunch"
	Plank                 CoreTest = "plank"
)

// Bounds is one row of the score tables. Worst scores 0 and Best scores Max;
// for timed runs Worst is the larger number.
type Bounds struct {
	Worst float64
	Best  float64
	Max   int
	Unit  Unit
}

// LowerIsBetter reports whether smaller raw values earn more points.
func (b Bounds) LowerIsBetter() bool {
	return b.Worst > b.Best
}

type tableKey struct {
	gender    Gender
	component Component
	test      string
}

// TableError reports a lookup that has no score table entry, or a raw value
// recorded in a unit the variant does not use. It is raised as a panic.
type TableError struct {
	Gender    Gender
	Component Component
	Test      string
	Reason    string
}

func (e *TableError) Error() string {
	if e.Test == "" {
		return "scoring: " + e.Reason
	}
	return fmt.Sprintf("scoring: %s/%s/%s: %s", e.Gender, e.Component, e.Test, e.Reason)
}

var tables = map[tableKey]Bounds{
	{Male, Aerobic, string(Run1_5Mile)}:   {Worst: 16.22, Best: 9.12, Max: AerobicMax, Unit: UnitMinutes},
	{Female, Aerobic, string(Run1_5Mile)}: {Worst: 18.56, Best: 10.23, Max: AerobicMax, Unit: UnitMinutes},
	{Male, Aerobic, string(HAMR)}:         {Worst: 20, Best: 75, Max: AerobicMax, Unit: UnitShuttles},
	{Female, Aerobic, string(HAMR)}:       {Worst: 15, Best: 63, Max: AerobicMax, Unit: UnitShuttles},
	{Male, Aerobic, string(Shuttle20m)}:   {Worst: 30, Best: 100, Max: AerobicMax, Unit: UnitShuttles},
	{Female, Aerobic, string(Shuttle20m)}: {Worst: 20, Best: 80, Max: AerobicMax, Unit: UnitShuttles},

	{Male, Strength, string(Pushups)}:              {Worst: 33, Best: 67, Max: StrengthMax, Unit: UnitReps},
	{Female, Strength, string(Pushups)}:            {Worst: 18, Best: 47, Max: StrengthMax, Unit: UnitReps},
	{Male, Strength, string(HandReleasePushups)}:   {Worst: 20, Best: 50, Max: StrengthMax, Unit: UnitReps},
	{Female, Strength, string(HandReleasePushups)}: {Worst: 10, Best: 35, Max: StrengthMax, Unit: UnitReps},

	{Male, Core, string(Situps)}:                  {Worst: 30, Best: 58, Max: CoreMax, Unit: UnitReps},
	{Female, Core, string(Situps)}:                {Worst: 25, Best: 47, Max: CoreMax, Unit: UnitReps},
	{Male, Core, string(CrossLegReverseCrunch)}:   {Worst: 15, Best: 35, Max: CoreMax, Unit: UnitReps},
	{Female, Core, string(CrossLegReverseCrunch)}: {Worst: 12, Best: 30, Max: CoreMax, Unit: UnitReps},
	{Male, Core, string(Plank)}:                   {Worst: 60, Best: 210, Max: CoreMax, Unit: UnitSeconds},
	{Female, Core, string(Plank)}:                 {Worst: 60, Best: 180, Max: CoreMax, Unit: UnitSeconds},
}

// Lookup returns the table row for a (gender, component, test) triple.
func Lookup(g Gender, c Component, test string) (Bounds, bool) {
	b, ok := tables[tableKey{g, c, test}]
	return b, ok
}

// Valid reports whether t is a known aerobic variant.
func (t AerobicTest) Valid() bool {
	_, ok := Lookup(Male, Aerobic, string(t))
	return ok
}

// Valid reports whether t is a known strength variant.
func (t StrengthTest) Valid() bool {
	_, ok := Lookup(Male, Strength, string(t))
	return ok
}

// Valid reports whether t is a known core variant.
func (t CoreTest) Valid() bool {
	_, ok := Lookup(Male, Core, string(t))
	return ok
}

// Unit returns the unit the variant is recorded in.
func (t AerobicTest) Unit() Unit { return mustLookup(Male, Aerobic, string(t)).Unit }

// Unit returns the unit the variant is recorded in.
func (t StrengthTest) Unit() Unit { return mustLookup(Male, Strength, string(t)).Unit }

// Unit returns the unit the variant is recorded in.
func (t CoreTest) Unit() Unit { return mustLookup(Male, Core, string(t)).Unit }

// AerobicTests lists the aerobic variants in display order.
func AerobicTests() []AerobicTest { return []AerobicTest{Run1_5Mile, HAMR, Shuttle20m} }

// StrengthTests lists the strength variants in display order.
func StrengthTests() []StrengthTest { return []StrengthTest{Pushups, HandReleasePushups} }

// CoreTests lists the core variants in display order.
func CoreTests() []CoreTest { return []CoreTest{Situps, CrossLegReverseCrunch, Plank} }

func mustLookup(g Gender, c Component, test string) Bounds {
	b, ok := Lookup(g, c, test)
	if !ok {
		panic(&TableError{Gender: g, Component: c, Test: test, Reason: "no score table"})
	}
	return b
}
