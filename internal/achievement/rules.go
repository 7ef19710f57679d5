package achievement

import "alcyxob/flighttrack/internal/scoring"

// ImprovementMargin is how many points an assessment must beat the previous
// one by to earn Improvement.
const ImprovementMargin = 10

// ForAssessment returns the fitness achievements triggered by a newly recorded
// overall score. previous is nil when the member has no earlier assessment.
func ForAssessment(previous *int, overall int) []ID {
	var ids []ID
	if overall >= scoring.ExcellentThreshold {
		ids = append(ids, ExcellentFA)
	}
	if overall == scoring.AerobicMax+scoring.StrengthMax+scoring.CoreMax {
		ids = append(ids, PerfectFA)
	}
	if previous != nil && overall >= *previous+ImprovementMargin {
		ids = append(ids, Improvement)
	}
	return ids
}

var workoutMilestones = []struct {
	count int
	id    ID
}{
	{1, FirstWorkout},
	{10, TenWorkouts},
	{25, TwentyFive},
	{50, FiftyWorkouts},
	{100, HundredWorkouts},
	{200, TwoHundred},
}

// ForWorkoutCount returns every workout-count milestone reached at n logged
// workouts. Already-earned ids are filtered by Award.
func ForWorkoutCount(n int) []ID {
	var ids []ID
	for _, m := range workoutMilestones {
		if n >= m.count {
			ids = append(ids, m.id)
		}
	}
	return ids
}

// ForTotals returns the distance and calorie milestones reached.
func ForTotals(miles float64, calories int) []ID {
	var ids []ID
	switch {
	case miles >= 1000:
		ids = append(ids, HundredMiles, FiveHundredMiles, ThousandMiles)
	case miles >= 500:
		ids = append(ids, HundredMiles, FiveHundredMiles)
	case miles >= 100:
		ids = append(ids, HundredMiles)
	}
	switch {
	case calories >= 50000:
		ids = append(ids, TenKCalories, FiftyKCalories)
	case calories >= 10000:
		ids = append(ids, TenKCalories)
	}
	return ids
}

// VarietyThreshold is the number of distinct workout types for Variety.
const VarietyThreshold = 5

// ForVariety returns Variety once enough distinct workout types are logged.
func ForVariety(distinctTypes int) []ID {
	if distinctTypes >= VarietyThreshold {
		return []ID{Variety}
	}
	return nil
}

// Award merges candidates into earned and returns the ids that were not
// already present, in candidate order. Completionist is appended when the
// merge leaves every other achievement earned.
func Award(earned []string, candidates ...ID) []ID {
	have := make(map[ID]bool, len(earned))
	for _, e := range earned {
		have[ID(e)] = true
	}
	var fresh []ID
	for _, c := range candidates {
		if have[c] {
			continue
		}
		if _, ok := byID[c]; !ok {
			continue
		}
		have[c] = true
		fresh = append(fresh, c)
	}
	if len(fresh) > 0 && !have[Completionist] && hasAllButCompletionist(have) {
		fresh = append(fresh, Completionist)
	}
	return fresh
}

func hasAllButCompletionist(have map[ID]bool) bool {
	for _, a := range catalog {
		if a.ID != Completionist && !have[a.ID] {
			return false
		}
	}
	return true
}
