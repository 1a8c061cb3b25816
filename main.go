package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedulo/config"
	appCron "schedulo/cron"
	"schedulo/database"
	eventRepo "schedulo/database/repository/event"
	"schedulo/handlers"
	"schedulo/routes"
	"schedulo/services/availability"
	"schedulo/services/calendar"
	"schedulo/services/conversation"
	"schedulo/services/extractor"
	"schedulo/services/tasks"
	"schedulo/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// Calendar backend.
	var calendarSvc calendar.Service
	switch config.AppConfig.CalendarBackend {
	case "mongo":
		database.InitDB()
		calendarSvc = calendar.NewMongoCalendarService(eventRepo.NewMongoEventRepo())
	default:
		calendarSvc = calendar.NewMockCalendarService()
	}

	// Session store and reminder queue. Without a Redis address the
	// server runs self-contained: in-memory sessions with a periodic
	// sweeper, no reminder queue.
	sessionTTL := time.Duration(config.AppConfig.SessionTTLHours) * time.Hour
	var sessionStore conversation.SessionStore
	var reminders conversation.ReminderScheduler
	if config.AppConfig.RedisAddr != "" {
		sessionStore = conversation.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL)

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr: config.AppConfig.RedisAddr,
			DB:   config.AppConfig.RedisQueueDB,
		})
		defer asynqClient.Close()
		reminders = tasks.NewAsynqScheduler(asynqClient)
		appCron.InitReminderWorker()
	} else {
		memStore := conversation.NewMemorySessionStore(sessionTTL)
		sweeper := appCron.InitSessionSweeper(memStore)
		defer sweeper.Stop()
		sessionStore = memStore
	}

	// Extraction backend.
	var ext extractor.Extractor = extractor.NewRuleExtractor()
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gem, err := extractor.NewGeminiExtractor(key)
		if err != nil {
			logger.Sugar().Warnf("main: gemini extractor unavailable, using rules: %v", err)
		} else {
			ext = gem
		}
	}

	resolver := availability.NewDefaultResolver(
		calendarSvc,
		config.AppConfig.WorkdayStartHour,
		config.AppConfig.WorkdayEndHour,
		config.AppConfig.SlotScanLimit,
	)

	conversationSvc := conversation.NewDefaultConversationService(
		sessionStore,
		ext,
		resolver,
		conversation.NewBookingCommitter(calendarSvc),
		reminders,
		conversation.Options{
			SlotDisplayLimit:   config.AppConfig.SlotDisplayLimit,
			SearchWindowDays:   config.AppConfig.SearchWindowDays,
			DefaultDurationMin: config.AppConfig.DefaultDurationMin,
			MaxTurnHistory:     config.AppConfig.MaxTurnHistory,
		},
	)

	handlerBundle := &handlers.HandlerBundle{
		Conversation: conversationSvc,
		Calendar:     calendarSvc,
		Resolver:     resolver,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
