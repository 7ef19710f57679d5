package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles everything the routes dispatch to.
type Services struct {
	Auth           service.AuthService
	Members        service.MemberService
	Assessments    service.AssessmentService
	Workouts       service.WorkoutService
	Attendance     service.AttendanceService
	Leaderboard    service.LeaderboardService
	SharedWorkouts service.SharedWorkoutService
	Schedule       service.ScheduleService
	Settings       service.SettingsService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	memberHandler := NewMemberHandler(svc.Members)
	assessmentHandler := NewAssessmentHandler(svc.Assessments)
	workoutHandler := NewWorkoutHandler(svc.Workouts)
	attendanceHandler := NewAttendanceHandler(svc.Attendance)
	leaderboardHandler := NewLeaderboardHandler(svc.Leaderboard)
	sharedWorkoutHandler := NewSharedWorkoutHandler(svc.SharedWorkouts)
	scheduleHandler := NewScheduleHandler(svc.Schedule)
	settingsHandler := NewSettingsHandler(svc.Settings)

	authMiddleware := AuthMiddleware(jwtSecret)
	admins := AccountTypeMiddleware(domain.AccountCreator, domain.AccountUFPM)
	leaders := AccountTypeMiddleware(domain.AccountCreator, domain.AccountUFPM, domain.AccountPTL)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Stateless; anyone may try the calculator.
		apiV1.POST("/calculator/score", assessmentHandler.CalculateScore)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", memberHandler.Me)
		protected.GET("/achievements", ListAchievements)

		memberGroup := protected.Group("/members")
		{
			memberGroup.GET("", memberHandler.ListMembers)
			memberGroup.GET("/:memberId", memberHandler.GetMember)
			memberGroup.PATCH("/:memberId", memberHandler.UpdateMember)
			memberGroup.DELETE("/:memberId", admins, memberHandler.RemoveMember)
			memberGroup.GET("/:memberId/assessments", assessmentHandler.GetHistory)
			memberGroup.GET("/:memberId/workouts", workoutHandler.ListWorkouts)

			memberGroup.POST("/:memberId/ptl/approve", admins, memberHandler.ApprovePTL)
			memberGroup.POST("/:memberId/ptl/reject", admins, memberHandler.RejectPTL)
			memberGroup.POST("/:memberId/ptl/revoke", admins, memberHandler.RevokePTL)
			memberGroup.POST("/:memberId/ufpm", AccountTypeMiddleware(domain.AccountCreator), memberHandler.SetUFPM)
		}

		assessmentGroup := protected.Group("/assessments")
		{
			assessmentGroup.POST("", assessmentHandler.RecordAssessment)
			assessmentGroup.POST("/privacy", assessmentHandler.TogglePrivacy)
			assessmentGroup.POST("/report-upload-url", assessmentHandler.RequestReportUploadURL)
			assessmentGroup.GET("/:assessmentId/report", assessmentHandler.GetReport)
		}

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.LogWorkout)
			workoutGroup.POST("/screenshot-upload-url", workoutHandler.RequestScreenshotUploadURL)
			workoutGroup.GET("/:workoutId/screenshot", workoutHandler.GetScreenshot)
		}

		attendanceGroup := protected.Group("/attendance")
		{
			attendanceGroup.POST("/toggle", leaders, attendanceHandler.ToggleAttendance)
			attendanceGroup.GET("/compliance", attendanceHandler.GetCompliance)
			attendanceGroup.DELETE("/sessions/:sessionId", leaders, attendanceHandler.DeleteSession)
		}

		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.GET("", scheduleHandler.GetUpcoming)
			scheduleGroup.POST("", leaders, scheduleHandler.ScheduleSession)
			scheduleGroup.PATCH("/:sessionId", leaders, scheduleHandler.UpdateSession)
			scheduleGroup.DELETE("/:sessionId", leaders, scheduleHandler.CancelSession)
		}

		sharedGroup := protected.Group("/shared-workouts")
		{
			sharedGroup.GET("", sharedWorkoutHandler.ListSharedWorkouts)
			sharedGroup.POST("", sharedWorkoutHandler.ShareWorkout)
			sharedGroup.DELETE("/:workoutId", sharedWorkoutHandler.DeleteSharedWorkout)
			sharedGroup.POST("/:workoutId/rating", sharedWorkoutHandler.RateWorkout)
			sharedGroup.POST("/:workoutId/favorite", sharedWorkoutHandler.ToggleFavorite)
		}

		settingsGroup := protected.Group("/settings")
		{
			settingsGroup.GET("", settingsHandler.GetSettings)
			settingsGroup.PUT("/default-sessions", admins, settingsHandler.SetDefaultSessions)
		}

		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	}
}
