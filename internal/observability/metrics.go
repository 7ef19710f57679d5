package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flighttrack"

var (
	assessmentsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assessments",
		Name:      "recorded_total",
		Help:      "Fitness assessments recorded, by status.",
	}, []string{"status"})
	assessmentScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "assessments",
		Name:      "overall_score",
		Help:      "Distribution of recorded overall assessment scores.",
		Buckets:   []float64{50, 60, 70, 75, 80, 85, 90, 95, 100},
	})
	achievementsAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "achievements",
		Name:      "awarded_total",
		Help:      "Achievements newly awarded, by achievement id.",
	}, []string{"achievement"})
	workoutsLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "workouts",
		Name:      "logged_total",
		Help:      "Workouts logged, by workout type.",
	}, []string{"type"})
	attendanceToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "attendance",
		Name:      "toggles_total",
		Help:      "PT attendance marks, by resulting state.",
	}, []string{"state"})
	eventPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Domain event batches that failed to publish.",
	})
)

func init() {
	prometheus.MustRegister(
		assessmentsRecorded,
		assessmentScores,
		achievementsAwarded,
		workoutsLogged,
		attendanceToggles,
		eventPublishFailures,
	)
}

// RecordAssessment counts a recorded assessment and observes its score.
func RecordAssessment(status string, overall int) {
	assessmentsRecorded.WithLabelValues(status).Inc()
	assessmentScores.Observe(float64(overall))
}

// RecordAchievement counts a newly awarded achievement.
func RecordAchievement(id string) {
	achievementsAwarded.WithLabelValues(id).Inc()
}

// RecordWorkout counts a logged workout.
func RecordWorkout(workoutType string) {
	workoutsLogged.WithLabelValues(workoutType).Inc()
}

// RecordAttendance counts an attendance toggle.
func RecordAttendance(present bool) {
	state := "absent"
	if present {
		state = "present"
	}
	attendanceToggles.WithLabelValues(state).Inc()
}

// RecordPublishFailure counts an event batch that could not be delivered.
func RecordPublishFailure() {
	eventPublishFailures.Inc()
}
