// Package achievement holds the achievement catalog and the pure rules that
// decide which achievements a member has earned.
package achievement

// ID identifies an achievement.
type ID string

// Category groups achievements for display.
type Category string

const (
	CategoryLeaderboard Category = "leaderboard"
	CategoryMilestone   Category = "milestone"
	CategoryStreak      Category = "streak"
	CategoryFitness     Category = "fitness"
	CategorySpecial     Category = "special"
)

const (
	GoldMonth        ID = "gold_month"
	SilverMonth      ID = "silver_month"
	BronzeMonth      ID = "bronze_month"
	FirstWorkout     ID = "first_workout"
	TenWorkouts      ID = "10_workouts"
	TwentyFive       ID = "25_workouts"
	FiftyWorkouts    ID = "50_workouts"
	HundredWorkouts  ID = "100_workouts"
	TwoHundred       ID = "200_workouts"
	HundredMiles     ID = "100_miles"
	FiveHundredMiles ID = "500_miles"
	ThousandMiles    ID = "1000_miles"
	TenKCalories     ID = "10000_calories"
	FiftyKCalories   ID = "50000_calories"
	Variety          ID = "variety"
	WeekStreak       ID = "week_streak"
	MonthStreak      ID = "month_streak"
	QuarterStreak    ID = "three_month_streak"
	EarlyBird        ID = "early_bird"
	IronWill         ID = "iron_will"
	ExcellentFA      ID = "excellent_fa"
	PerfectFA        ID = "perfect_fa"
	Improvement      ID = "improvement"
	TopThreeTwice    ID = "top_3_twice"
	TopThreeFive     ID = "top_3_five"
	Completionist    ID = "completionist"
)

// Achievement describes one badge.
type Achievement struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	Hard        bool     `json:"isHard"`
}

var catalog = []Achievement{
	{GoldMonth, "Gold Champion", "Place 1st on the monthly leaderboard", "crown", CategoryLeaderboard, true},
	{SilverMonth, "Silver Performer", "Place 2nd on the monthly leaderboard", "medal", CategoryLeaderboard, false},
	{BronzeMonth, "Bronze Contender", "Place 3rd on the monthly leaderboard", "award", CategoryLeaderboard, false},
	{FirstWorkout, "First Steps", "Log your first workout", "footprints", CategoryMilestone, false},
	{TenWorkouts, "Getting Consistent", "Log 10 workouts", "dumbbell", CategoryMilestone, false},
	{FiftyWorkouts, "Dedicated Athlete", "Log 50 workouts", "trophy", CategoryMilestone, true},
	{HundredWorkouts, "Century Club", "Log 100 workouts", "star", CategoryMilestone, true},
	{HundredMiles, "Century Runner", "Run 100 total miles", "map-pin", CategoryMilestone, true},
	{FiveHundredMiles, "Marathon Master", "Run 500 total miles", "mountain", CategoryMilestone, true},
	{WeekStreak, "Week Warrior", "Complete PT for 7 consecutive days", "flame", CategoryStreak, false},
	{MonthStreak, "Monthly Machine", "Complete PT every week for a month", "zap", CategoryStreak, true},
	{ExcellentFA, "Excellent Rating", "Score 90+ on a Fitness Assessment", "shield-check", CategoryFitness, false},
	{PerfectFA, "Perfect Score", "Score 100 on a Fitness Assessment", "sparkles", CategoryFitness, true},
	{Improvement, "Self Improvement", "Improve your FA score by 10+ points", "trending-up", CategoryFitness, false},
	{TwentyFive, "Quarter Century", "Log 25 workouts", "target", CategoryMilestone, false},
	{TwoHundred, "Fitness Legend", "Log 200 workouts", "gem", CategoryMilestone, true},
	{ThousandMiles, "Ultra Runner", "Run 1000 total miles", "rocket", CategoryMilestone, true},
	{TenKCalories, "Calorie Crusher", "Burn 10,000 calories", "flame", CategoryMilestone, false},
	{FiftyKCalories, "Inferno", "Burn 50,000 calories", "sun", CategoryMilestone, true},
	{Variety, "Jack of All Trades", "Log 5 different workout types", "layers", CategoryMilestone, false},
	{QuarterStreak, "Quarterly Champion", "Complete PT every week for 3 months", "shield", CategoryStreak, true},
	{EarlyBird, "Early Bird", "Attend 10 morning PT sessions", "sunrise", CategoryStreak, false},
	{IronWill, "Iron Will", "Never miss a required PT session for a month", "anchor", CategoryStreak, true},
	{TopThreeTwice, "Consistent Performer", "Place top 3 on leaderboard twice", "repeat", CategoryLeaderboard, true},
	{TopThreeFive, "Dominant Force", "Place top 3 on leaderboard five times", "crown", CategoryLeaderboard, true},
	{Completionist, "Completionist", "Earn all other achievements", "award", CategorySpecial, true},
}

var byID = func() map[ID]Achievement {
	m := make(map[ID]Achievement, len(catalog))
	for _, a := range catalog {
		m[a.ID] = a
	}
	return m
}()

// All returns the catalog in display order.
func All() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks up an achievement by id.
func Get(id ID) (Achievement, bool) {
	a, ok := byID[id]
	return a, ok
}
