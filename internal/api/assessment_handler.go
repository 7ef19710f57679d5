package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/scoring"
	"alcyxob/flighttrack/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssessmentHandler struct {
	assessmentService service.AssessmentService
}

func NewAssessmentHandler(assessmentService service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// ComponentRequest is one test result. Timed tests may send "m:ss" in Time
// instead of a decimal Value.
type ComponentRequest struct {
	Test  string   `json:"test" binding:"required"`
	Value *float64 `json:"value"`
	Time  string   `json:"time"`
}

type ScoreRequest struct {
	Gender   scoring.Gender   `json:"gender"`
	Aerobic  ComponentRequest `json:"aerobic"`
	Strength ComponentRequest `json:"strength"`
	Core     ComponentRequest `json:"core"`
}

type RecordAssessmentRequest struct {
	ScoreRequest
	MemberID  string `json:"memberId"` // defaults to the caller
	Date      string `json:"date"`     // YYYY-MM-DD, defaults to today
	ReportKey string `json:"reportKey"`
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ScoreResponse struct {
	scoring.Breakdown
	AerobicDetail  ComponentScore `json:"aerobicDetail"`
	StrengthDetail ComponentScore `json:"strengthDetail"`
	CoreDetail     ComponentScore `json:"coreDetail"`
}

// ComponentScore echoes a scored input with its display form.
type ComponentScore struct {
	Test    string       `json:"test"`
	Unit    scoring.Unit `json:"unit"`
	Display string       `json:"display"`
	Score   int          `json:"score"`
	Max     int          `json:"max"`
}

var errBadClock = errors.New("time must be formatted m:ss")

// parseClock turns "m:ss" into seconds.
func parseClock(s string) (float64, error) {
	minStr, secStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, errBadClock
	}
	mins, err := strconv.Atoi(minStr)
	if err != nil || mins < 0 {
		return 0, errBadClock
	}
	secs, err := strconv.ParseFloat(secStr, 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, errBadClock
	}
	return float64(mins)*60 + secs, nil
}

// value resolves the request into the unit the test is scored in.
func (r ComponentRequest) value(unit scoring.Unit) (float64, error) {
	switch {
	case r.Value != nil:
		return *r.Value, nil
	case r.Time != "" && unit == scoring.UnitMinutes:
		secs, err := parseClock(r.Time)
		return secs / 60, err
	case r.Time != "" && unit == scoring.UnitSeconds:
		return parseClock(r.Time)
	default:
		return 0, fmt.Errorf("%s: a value is required", r.Test)
	}
}

// toInput validates test names before asking for their units, so an unknown
// variant is reported as bad input rather than reaching the score tables.
func (r ScoreRequest) toInput() (service.AssessmentInput, error) {
	in := service.AssessmentInput{
		Gender:       r.Gender,
		AerobicTest:  scoring.AerobicTest(r.Aerobic.Test),
		StrengthTest: scoring.StrengthTest(r.Strength.Test),
		CoreTest:     scoring.CoreTest(r.Core.Test),
	}
	if !in.AerobicTest.Valid() {
		return in, fmt.Errorf("%w: aerobic %q", service.ErrInvalidTest, r.Aerobic.Test)
	}
	if !in.StrengthTest.Valid() {
		return in, fmt.Errorf("%w: strength %q", service.ErrInvalidTest, r.Strength.Test)
	}
	if !in.CoreTest.Valid() {
		return in, fmt.Errorf("%w: core %q", service.ErrInvalidTest, r.Core.Test)
	}

	var err error
	if in.AerobicValue, err = r.Aerobic.value(in.AerobicTest.Unit()); err != nil {
		return in, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	if in.StrengthValue, err = r.Strength.value(in.StrengthTest.Unit()); err != nil {
		return in, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	if in.CoreValue, err = r.Core.value(in.CoreTest.Unit()); err != nil {
		return in, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return in, nil
}

func component(test string, unit scoring.Unit, v float64, score, top int) ComponentScore {
	return ComponentScore{
		Test:    test,
		Unit:    unit,
		Display: fmt.Sprint(scoring.Measure(unit, v)),
		Score:   score,
		Max:     top,
	}
}

// CalculateScore godoc
// @Summary Score a set of PT test results without saving them
// @Tags Calculator
// @Accept json
// @Produce json
// @Param results body ScoreRequest true "Raw results"
// @Success 200 {object} ScoreResponse
// @Failure 400 {object} gin.H "Unknown gender, test variant or value"
// @Router /calculator/score [post]
func (h *AssessmentHandler) CalculateScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondServiceError(c, err, "calculate score")
		return
	}
	b, err := h.assessmentService.Calculate(in)
	if err != nil {
		respondServiceError(c, err, "calculate score")
		return
	}
	c.JSON(http.StatusOK, ScoreResponse{
		Breakdown:      *b,
		AerobicDetail:  component(req.Aerobic.Test, in.AerobicTest.Unit(), in.AerobicValue, b.Aerobic, scoring.AerobicMax),
		StrengthDetail: component(req.Strength.Test, in.StrengthTest.Unit(), in.StrengthValue, b.Strength, scoring.StrengthMax),
		CoreDetail:     component(req.Core.Test, in.CoreTest.Unit(), in.CoreValue, b.Core, scoring.CoreMax),
	})
}

// RecordAssessment godoc
// @Summary Record an official fitness assessment
// @Description Appends to the member's history, replaces their weekly PT requirement and awards achievements.
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assessment body RecordAssessmentRequest true "Assessment"
// @Success 201 {object} service.RecordResult
// @Router /assessments [post]
func (h *AssessmentHandler) RecordAssessment(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	var req RecordAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	memberID := actorID
	if req.MemberID != "" {
		id, err := primitive.ObjectIDFromHex(req.MemberID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid member ID format.")
			return
		}
		memberID = id
	}

	in, err := req.toInput()
	if err != nil {
		respondServiceError(c, err, "record assessment")
		return
	}
	if req.Date != "" {
		d, err := time.Parse(domain.SessionDateLayout, req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
			return
		}
		in.Date = d
	}
	in.ReportKey = req.ReportKey

	result, err := h.assessmentService.Record(c.Request.Context(), actorID, memberID, in)
	if err != nil {
		respondServiceError(c, err, "record assessment")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *AssessmentHandler) GetHistory(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}
	history, err := h.assessmentService.History(c.Request.Context(), viewerID, memberID)
	if err != nil {
		respondServiceError(c, err, "load assessments")
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *AssessmentHandler) TogglePrivacy(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	private, err := h.assessmentService.TogglePrivacy(c.Request.Context(), memberID)
	if err != nil {
		respondServiceError(c, err, "toggle assessment privacy")
		return
	}
	c.JSON(http.StatusOK, gin.H{"isPrivate": private})
}

func (h *AssessmentHandler) RequestReportUploadURL(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ticket, err := h.assessmentService.RequestReportUploadURL(c.Request.Context(), memberID, req.ContentType)
	if err != nil {
		respondServiceError(c, err, "generate upload URL")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GetReport redirects to a short-lived download URL for the assessment PDF.
func (h *AssessmentHandler) GetReport(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	assessmentID, ok := objectIDParam(c, "assessmentId", "assessment")
	if !ok {
		return
	}
	url, err := h.assessmentService.ReportURL(c.Request.Context(), viewerID, assessmentID)
	if err != nil {
		respondServiceError(c, err, "generate download URL")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
