package api

import (
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/repository/memory"
	"alcyxob/flighttrack/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "api-test-secret"

type fakeStorage struct{}

func (fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (fakeStorage) DeleteObject(context.Context, string) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	db := memory.NewDB()
	members := memory.NewMemberRepository(db)
	publisher := &events.Recorder{}

	settings := service.NewSettingsService(members, memory.NewSettingsRepository(db), 3)

	router := gin.New()
	SetupRoutes(router, testSecret, Services{
		Auth:           service.NewAuthService(members, settings, testSecret, time.Hour),
		Members:        service.NewMemberService(members),
		Assessments:    service.NewAssessmentService(members, fakeStorage{}, publisher),
		Workouts:       service.NewWorkoutService(members, memory.NewWorkoutRepository(db), fakeStorage{}, publisher),
		Attendance:     service.NewAttendanceService(members, memory.NewPTSessionRepository(db), publisher),
		Leaderboard:    service.NewLeaderboardService(members),
		SharedWorkouts: service.NewSharedWorkoutService(members, memory.NewSharedWorkoutRepository(db), publisher),
		Schedule:       service.NewScheduleService(members, memory.NewScheduledSessionRepository(db), publisher),
		Settings:       settings,
	})
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signUp registers and logs in, returning the token and member id.
func signUp(t *testing.T, router *gin.Engine, email string, extra map[string]any) (string, string) {
	t.Helper()
	body := map[string]any{
		"rank":      "A1C",
		"firstName": "Pat",
		"lastName":  email,
		"email":     email,
		"password":  "longenough",
		"flight":    "Doom",
		"gender":    "male",
	}
	for k, v := range extra {
		body[k] = v
	}
	w := do(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "longenough"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[LoginResponse](t, w)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.Member.ID
}

func TestPing(t *testing.T) {
	w := do(t, newTestRouter(), http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestCalculateScore(t *testing.T) {
	router := newTestRouter()

	w := do(t, router, http.MethodPost, "/api/v1/calculator/score", "", map[string]any{
		"gender":   "male",
		"aerobic":  map[string]any{"test": "1.5_mile", "time": "9:00"},
		"strength": map[string]any{"test": "pushups", "value": 67},
		"core":     map[string]any{"test": "situps", "value": 58},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ScoreResponse](t, w)
	assert.Equal(t, 100, resp.Overall)
	assert.Equal(t, 60, resp.Aerobic)
	assert.Equal(t, 1, resp.RequiredSessions)
	assert.Equal(t, "9:00", resp.AerobicDetail.Display)
	assert.Equal(t, 60, resp.AerobicDetail.Max)

	cases := map[string]map[string]any{
		"unknown variant": {
			"gender":   "male",
			"aerobic":  map[string]any{"test": "marathon", "value": 200},
			"strength": map[string]any{"test": "pushups", "value": 40},
			"core":     map[string]any{"test": "situps", "value": 40},
		},
		"missing gender": {
			"aerobic":  map[string]any{"test": "hamr", "value": 50},
			"strength": map[string]any{"test": "pushups", "value": 40},
			"core":     map[string]any{"test": "plank", "time": "2:00"},
		},
		"malformed time": {
			"gender":   "female",
			"aerobic":  map[string]any{"test": "1.5_mile", "time": "eleven"},
			"strength": map[string]any{"test": "pushups", "value": 40},
			"core":     map[string]any{"test": "situps", "value": 40},
		},
		"missing component": {
			"gender":  "female",
			"aerobic": map[string]any{"test": "hamr", "value": 50},
		},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/calculator/score", "", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter()
	token, id := signUp(t, router, "first@us.af.mil", nil)

	w := do(t, router, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[MemberResponse](t, w)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "flighttrack_creator", string(me.AccountType))
	assert.NotContains(t, w.Body.String(), "password")

	w = do(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"firstName": "Dup", "lastName": "Dup", "email": "first@us.af.mil", "password": "longenough", "flight": "Doom",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "first@us.af.mil", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"firstName": "Short", "lastName": "Pw", "email": "short@us.af.mil", "password": "abc", "flight": "Doom",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	w := do(t, router, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/leaderboard", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceRequiresLeader(t *testing.T) {
	router := newTestRouter()
	creatorToken, _ := signUp(t, router, "creator@us.af.mil", nil)
	memberToken, memberID := signUp(t, router, "member@us.af.mil", nil)

	body := map[string]string{"memberId": memberID, "date": "2026-03-04"}
	w := do(t, router, http.MethodPost, "/api/v1/attendance/toggle", memberToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/attendance/toggle", creatorToken, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[service.AttendanceResult](t, w)
	assert.True(t, res.Present)

	w = do(t, router, http.MethodGet, "/api/v1/attendance/compliance?date=2026-03-05", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := decode[service.Compliance](t, w)
	assert.Equal(t, 1, c.Attended)
	assert.Equal(t, 3, c.Required)
	assert.False(t, c.Met)
}

func TestRecordAssessmentAndPrivacy(t *testing.T) {
	router := newTestRouter()
	_, _ = signUp(t, router, "creator@us.af.mil", nil)
	token, id := signUp(t, router, "airman@us.af.mil", nil)
	peerToken, _ := signUp(t, router, "peer@us.af.mil", nil)

	w := do(t, router, http.MethodPost, "/api/v1/assessments", token, map[string]any{
		"date":     "2026-02-10",
		"aerobic":  map[string]any{"test": "1.5_mile", "time": "12:40"},
		"strength": map[string]any{"test": "pushups", "value": 40},
		"core":     map[string]any{"test": "situps", "value": 45},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[service.RecordResult](t, w)
	assert.Equal(t, 4, rec.RequiredSessions)
	assert.Equal(t, "male", string(rec.Assessment.Gender), "gender comes from the profile")

	w = do(t, router, http.MethodPost, "/api/v1/assessments/privacy", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isPrivate":true}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/members/"+id+"/assessments", peerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/members/"+id+"/assessments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(t, router, http.MethodPost, "/api/v1/assessments", peerToken, map[string]any{
		"memberId": id,
		"aerobic":  map[string]any{"test": "hamr", "value": 50},
		"strength": map[string]any{"test": "pushups", "value": 40},
		"core":     map[string]any{"test": "plank", "time": "2:00"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/members/not-an-id/assessments", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPTLApproval(t *testing.T) {
	router := newTestRouter()
	creatorToken, _ := signUp(t, router, "creator@us.af.mil", nil)
	memberToken, memberID := signUp(t, router, "hopeful@us.af.mil", map[string]any{"requestPTL": true})

	w := do(t, router, http.MethodPost, "/api/v1/members/"+memberID+"/ptl/approve", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/members/"+memberID+"/ptl/approve", creatorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := decode[MemberResponse](t, w)
	assert.Equal(t, "ptl", string(m.AccountType))
	assert.False(t, m.PTLPendingApproval)

	w = do(t, router, http.MethodPost, "/api/v1/members/"+memberID+"/ptl/approve", creatorToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWorkoutUploadAndLog(t *testing.T) {
	router := newTestRouter()
	token, id := signUp(t, router, "runner@us.af.mil", nil)

	w := do(t, router, http.MethodPost, "/api/v1/workouts", token, map[string]any{"type": "Running", "duration": 30})
	assert.Equal(t, http.StatusBadRequest, w.Code, "screenshot proof is mandatory")

	w = do(t, router, http.MethodPost, "/api/v1/workouts/screenshot-upload-url", token, map[string]string{"contentType": "image/png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ticket := decode[service.UploadTicket](t, w)

	w = do(t, router, http.MethodPost, "/api/v1/workouts", token, map[string]any{
		"type":          "Running",
		"duration":      30,
		"distance":      3.1,
		"screenshotKey": ticket.ObjectKey,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[service.LogResult](t, w)
	require.NotEmpty(t, res.NewAchievements)
	assert.Equal(t, "first_workout", string(res.NewAchievements[0].ID))

	w = do(t, router, http.MethodGet, "/api/v1/workouts/"+res.Workout.ID.Hex()+"/screenshot", token, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Contains(t, w.Header().Get("Location"), ticket.ObjectKey)

	w = do(t, router, http.MethodGet, "/api/v1/members/"+id+"/workouts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(t, router, http.MethodGet, "/api/v1/leaderboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[[]service.LeaderboardEntry](t, w)
	require.Len(t, board, 1)
	assert.Equal(t, 30+31, board[0].Score)
}

func TestListAchievements(t *testing.T) {
	router := newTestRouter()
	token, _ := signUp(t, router, "curious@us.af.mil", nil)

	w := do(t, router, http.MethodGet, "/api/v1/achievements", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[[]map[string]any](t, w))
}

func TestAssessmentReportRedirect(t *testing.T) {
	router := newTestRouter()
	_, _ = signUp(t, router, "creator@us.af.mil", nil)
	token, _ := signUp(t, router, "airman@us.af.mil", nil)
	peerToken, _ := signUp(t, router, "peer@us.af.mil", nil)

	w := do(t, router, http.MethodPost, "/api/v1/assessments/report-upload-url", token, map[string]string{"contentType": "application/pdf"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ticket := decode[service.UploadTicket](t, w)

	w = do(t, router, http.MethodPost, "/api/v1/assessments", token, map[string]any{
		"aerobic":   map[string]any{"test": "1.5_mile", "time": "12:40"},
		"strength":  map[string]any{"test": "pushups", "value": 40},
		"core":      map[string]any{"test": "situps", "value": 45},
		"reportKey": ticket.ObjectKey,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[service.RecordResult](t, w)
	path := "/api/v1/assessments/" + rec.Assessment.ID.Hex() + "/report"

	w = do(t, router, http.MethodGet, path, peerToken, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://storage.test/get/"+ticket.ObjectKey, w.Header().Get("Location"))

	w = do(t, router, http.MethodPost, "/api/v1/assessments/privacy", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, path, peerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, router, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/assessments/not-an-id/report", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkoutScreenshotCannotBeReused(t *testing.T) {
	router := newTestRouter()
	token, _ := signUp(t, router, "runner@us.af.mil", nil)

	w := do(t, router, http.MethodPost, "/api/v1/workouts/screenshot-upload-url", token, map[string]string{"contentType": "image/png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ticket := decode[service.UploadTicket](t, w)

	body := map[string]any{"type": "Running", "duration": 30, "screenshotKey": ticket.ObjectKey}
	w = do(t, router, http.MethodPost, "/api/v1/workouts", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/workouts", token, body)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestSharedWorkoutRoutes(t *testing.T) {
	router := newTestRouter()
	creatorToken, _ := signUp(t, router, "creator@us.af.mil", nil)
	token, _ := signUp(t, router, "coach@us.af.mil", nil)
	peerToken, _ := signUp(t, router, "peer@us.af.mil", nil)

	w := do(t, router, http.MethodPost, "/api/v1/shared-workouts", token, map[string]any{
		"name": "Pyramid", "type": "HIIT", "isMultiStep": true, "steps": []string{"10 burpees", "20 squats"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shared := decode[SharedWorkoutResponse](t, w)
	assert.Equal(t, 30, shared.DurationMin)
	assert.Equal(t, []string{"10 burpees", "20 squats"}, shared.Steps)
	base := "/api/v1/shared-workouts/" + shared.ID.Hex()

	w = do(t, router, http.MethodPost, "/api/v1/shared-workouts", token, map[string]any{"name": "Bad", "type": "HIIT", "intensity": 12})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/rating", peerToken, map[string]string{"rating": "up"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rated := decode[SharedWorkoutResponse](t, w)
	assert.Equal(t, 1, rated.Popularity)
	assert.Equal(t, "up", string(rated.MyRating))

	w = do(t, router, http.MethodPost, base+"/rating", peerToken, map[string]string{"rating": "down"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -1, decode[SharedWorkoutResponse](t, w).Popularity)

	w = do(t, router, http.MethodPost, base+"/favorite", peerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[SharedWorkoutResponse](t, w).Favorited)

	w = do(t, router, http.MethodGet, "/api/v1/shared-workouts?scope=favorites", peerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]SharedWorkoutResponse](t, w), 1)

	w = do(t, router, http.MethodGet, "/api/v1/shared-workouts?sort=sideways", peerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodDelete, base, peerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, router, http.MethodDelete, base, creatorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodPost, base+"/favorite", peerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleRoutes(t *testing.T) {
	router := newTestRouter()
	creatorToken, _ := signUp(t, router, "creator@us.af.mil", nil)
	memberToken, _ := signUp(t, router, "member@us.af.mil", nil)

	body := map[string]string{"date": "2099-01-05", "time": "06:30", "description": "Track workout"}
	w := do(t, router, http.MethodPost, "/api/v1/schedule", memberToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/schedule", creatorToken, map[string]string{"date": "2099-01-05", "time": "6:30pm", "description": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/schedule", creatorToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[map[string]any](t, w)
	path := "/api/v1/schedule/" + session["id"].(string)

	w = do(t, router, http.MethodPatch, path, creatorToken, map[string]string{"time": "07:00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "07:00", decode[map[string]any](t, w)["time"])

	w = do(t, router, http.MethodGet, "/api/v1/schedule", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1, "both members are in Doom")

	w = do(t, router, http.MethodDelete, path, creatorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodDelete, path, creatorToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePTSessionRoute(t *testing.T) {
	router := newTestRouter()
	creatorToken, _ := signUp(t, router, "creator@us.af.mil", nil)
	memberToken, memberID := signUp(t, router, "member@us.af.mil", nil)

	w := do(t, router, http.MethodPost, "/api/v1/attendance/toggle", creatorToken, map[string]string{"memberId": memberID, "date": "2026-03-04"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	path := "/api/v1/attendance/sessions/" + decode[service.AttendanceResult](t, w).Session.ID.Hex()

	w = do(t, router, http.MethodDelete, path, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, router, http.MethodDelete, path, creatorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/attendance/compliance?date=2026-03-05", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[service.Compliance](t, w).Attended)
}

func TestSettingsAndRemoveMember(t *testing.T) {
	router := newTestRouter()
	creatorToken, creatorID := signUp(t, router, "creator@us.af.mil", nil)
	memberToken, memberID := signUp(t, router, "member@us.af.mil", nil)

	w := do(t, router, http.MethodGet, "/api/v1/settings", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode[map[string]any](t, w)["defaultPTSessionsPerWeek"])

	w = do(t, router, http.MethodPut, "/api/v1/settings/default-sessions", memberToken, map[string]int{"sessionsPerWeek": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, router, http.MethodPut, "/api/v1/settings/default-sessions", creatorToken, map[string]int{"sessionsPerWeek": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, router, http.MethodPut, "/api/v1/settings/default-sessions", creatorToken, map[string]int{"sessionsPerWeek": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	newToken, _ := signUp(t, router, "newbie@us.af.mil", nil)
	w = do(t, router, http.MethodGet, "/api/v1/me", newToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[MemberResponse](t, w).RequiredPTSessionsPerWeek)

	w = do(t, router, http.MethodDelete, "/api/v1/members/"+memberID, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, router, http.MethodDelete, "/api/v1/members/"+creatorID, creatorToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, router, http.MethodDelete, "/api/v1/members/"+memberID, creatorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/me", memberToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
