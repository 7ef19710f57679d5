package main

import (
	"alcyxob/flighttrack/internal/api"
	"alcyxob/flighttrack/internal/config"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/repository"
	"alcyxob/flighttrack/internal/repository/memory"
	"alcyxob/flighttrack/internal/repository/mongo"
	"alcyxob/flighttrack/internal/service"
	"alcyxob/flighttrack/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title FlightTrack API
// @version 1.0
// @description Squadron PT tracking: fitness assessment scoring, workouts, attendance and leaderboards.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting FlightTrack Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Printf("Configuration loaded (database driver %q).", cfg.Database.Driver)

	// --- Repositories ---
	var (
		memberRepo    repository.MemberRepository
		workoutRepo   repository.WorkoutRepository
		sessionRepo   repository.PTSessionRepository
		scheduledRepo repository.ScheduledSessionRepository
		sharedRepo    repository.SharedWorkoutRepository
		settingsRepo  repository.SettingsRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Println("WARN: Using in-memory storage; data is lost on restart.")
		db := memory.NewDB()
		memberRepo = memory.NewMemberRepository(db)
		workoutRepo = memory.NewWorkoutRepository(db)
		sessionRepo = memory.NewPTSessionRepository(db)
		scheduledRepo = memory.NewScheduledSessionRepository(db)
		sharedRepo = memory.NewSharedWorkoutRepository(db)
		settingsRepo = memory.NewSettingsRepository(db)
	case config.DriverMongo:
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
		}
		defer func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		log.Println("Database connection established.")

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			mongo.EnsureIndexes(ctx, appDB)
		}()

		memberRepo = mongo.NewMongoMemberRepository(appDB)
		workoutRepo = mongo.NewMongoWorkoutRepository(appDB)
		sessionRepo = mongo.NewMongoPTSessionRepository(appDB)
		scheduledRepo = mongo.NewMongoScheduledSessionRepository(appDB)
		sharedRepo = mongo.NewMongoSharedWorkoutRepository(appDB)
		settingsRepo = mongo.NewMongoSettingsRepository(appDB)
	default:
		log.Fatalf("FATAL: Unknown database driver %q", cfg.Database.Driver)
	}

	// --- Storage ---
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Events ---
	var publisher events.Publisher = events.NopPublisher{}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Printf("ERROR: Failed to close Kafka publisher: %v", err)
			}
		}()
		publisher = kafkaPublisher
		log.Printf("Publishing events to Kafka topic %s via %v", cfg.Kafka.Topic, brokers)
	} else {
		log.Println("WARN: No Kafka brokers configured; domain events are dropped.")
	}

	// --- Services ---
	settingsService := service.NewSettingsService(memberRepo, settingsRepo, cfg.PT.DefaultSessionsPerWeek)
	services := api.Services{
		Auth:           service.NewAuthService(memberRepo, settingsService, cfg.JWT.Secret, cfg.JWT.Expiration),
		Members:        service.NewMemberService(memberRepo),
		Assessments:    service.NewAssessmentService(memberRepo, fileStorage, publisher),
		Workouts:       service.NewWorkoutService(memberRepo, workoutRepo, fileStorage, publisher),
		Attendance:     service.NewAttendanceService(memberRepo, sessionRepo, publisher),
		Leaderboard:    service.NewLeaderboardService(memberRepo),
		SharedWorkouts: service.NewSharedWorkoutService(memberRepo, sharedRepo, publisher),
		Schedule:       service.NewScheduleService(memberRepo, scheduledRepo, publisher),
		Settings:       settingsService,
	}

	router := gin.Default() // Includes Logger and Recovery middleware
	api.SetupRoutes(router, cfg.JWT.Secret, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
