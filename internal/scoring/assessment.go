package scoring

// Status is the qualitative band of an overall score.
type Status string

const (
	Excellent    Status = "Excellent"
	Satisfactory Status = "Satisfactory"
	Pass         Status = "Pass"
	Fail         Status = "Fail"
)

// Band thresholds, inclusive on the lower bound.
const (
	ExcellentThreshold    = 90
	SatisfactoryThreshold = 75
	PassThreshold         = 60
)

// Assessment is the overall result of one fitness assessment.
type Assessment struct {
	Overall int    `json:"overall"`
	Status  Status `json:"status"`
}

// Passed reports whether the assessment met the minimum passing score.
func (a Assessment) Passed() bool {
	return a.Status != Fail
}

// Aggregate sums the three component scores and labels the total.
func Aggregate(aerobic, strength, core int) Assessment {
	overall := aerobic + strength + core
	return Assessment{Overall: overall, Status: StatusFor(overall)}
}

// StatusFor returns the band an overall score falls in.
func StatusFor(overall int) Status {
	switch {
	case overall >= ExcellentThreshold:
		return Excellent
	case overall >= SatisfactoryThreshold:
		return Satisfactory
	case overall >= PassThreshold:
		return Pass
	}
	return Fail
}

// RequiredSessions maps an overall score to the weekly PT session quota.
// The result replaces whatever a member was previously required to attend.
func RequiredSessions(overall int) int {
	switch {
	case overall >= 90:
		return 1
	case overall >= 80:
		return 2
	case overall >= 75:
		return 3
	}
	return 4
}

// Input is a complete set of raw results for one member.
type Input struct {
	Gender       Gender
	AerobicTest  AerobicTest
	AerobicRaw   Measurement
	StrengthTest StrengthTest
	StrengthRaw  Measurement
	CoreTest     CoreTest
	CoreRaw      Measurement
}

// Breakdown is the scored form of an Input.
type Breakdown struct {
	Aerobic  int `json:"aerobic"`
	Strength int `json:"strength"`
	Core     int `json:"core"`
	Assessment
	RequiredSessions int `json:"requiredSessions"`
}

// Evaluate scores every component of in, aggregates them and derives the
// session requirement. It panics under the same conditions as the scorers.
func Evaluate(in Input) Breakdown {
	a := AerobicScore(in.Gender, in.AerobicTest, in.AerobicRaw)
	s := StrengthScore(in.Gender, in.StrengthTest, in.StrengthRaw)
	c := CoreScore(in.Gender, in.CoreTest, in.CoreRaw)
	agg := Aggregate(a, s, c)
	return Breakdown{
		Aerobic:          a,
		Strength:         s,
		Core:             c,
		Assessment:       agg,
		RequiredSessions: RequiredSessions(agg.Overall),
	}
}
