package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(assessmentsRecorded.WithLabelValues("Excellent"))
	RecordAssessment("Excellent", 95)
	assert.Equal(t, before+1, testutil.ToFloat64(assessmentsRecorded.WithLabelValues("Excellent")))

	before = testutil.ToFloat64(attendanceToggles.WithLabelValues("absent"))
	RecordAttendance(false)
	assert.Equal(t, before+1, testutil.ToFloat64(attendanceToggles.WithLabelValues("absent")))

	before = testutil.ToFloat64(achievementsAwarded.WithLabelValues("perfect_fa"))
	RecordAchievement("perfect_fa")
	assert.Equal(t, before+1, testutil.ToFloat64(achievementsAwarded.WithLabelValues("perfect_fa")))

	before = testutil.ToFloat64(eventPublishFailures)
	RecordPublishFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(eventPublishFailures))
}
