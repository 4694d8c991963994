package main

import (
	"context"
	"log"
	"time"

	"despacho_app_go/config"
	"despacho_app_go/db"
	"despacho_app_go/handlers"
	"despacho_app_go/middleware"
	"despacho_app_go/models"
	"despacho_app_go/services"
	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize local snapshot database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Snapshot{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Remote document store is optional; without it the store runs
	// local-only.
	var remote services.RemoteStore
	if cfg.TursoDatabaseURL != "" {
		libsql, err := services.NewLibSQLStore(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
		if err != nil {
			log.Printf("[WARNING] Remote store unavailable, running local-only: %v", err)
		} else {
			remote = libsql
			defer libsql.Close()
		}
	}

	var feed store.PromotionFeed
	if cfg.PromotionsFeedURL != "" {
		feed = services.NewPromotionsFeed(cfg.PromotionsFeedURL)
	}

	storage := services.NewStorage(cfg)
	uploads := services.NewUploadService(storage, cfg.UploadTimeout, cfg.UploadStallTimeout)
	oracle := services.NewSimulatedClassifier(cfg.OracleMinDelay, cfg.OracleMaxDelay, cfg.OracleFailureRate)

	st, err := store.New(store.Options{
		Local:             services.NewLocalStore(db.DB),
		Remote:            remote,
		Uploads:           uploads,
		Oracle:            oracle,
		Feed:              feed,
		InlineFallbackMax: cfg.InlineFallbackMaxBytes,
	})
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st.Start(ctx)

	sessions := services.NewSessionService()
	h := handlers.New(st, sessions, cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	// Static files
	e.Static("/static", "static")

	// Public routes (no authentication required)
	e.POST("/api/login", h.Login)

	// Protected routes
	api := e.Group("/api")
	api.Use(middleware.RequireAuth(sessions))
	{
		api.POST("/logout", h.Logout)
		api.GET("/me", h.Me)

		api.GET("/states", h.GetStates)
		api.GET("/states/:id", h.GetState)
		api.GET("/subjects/:id", h.GetSubject)
		api.POST("/states/:id/subjects", h.AddSubject)

		api.GET("/cases", h.GetCases)
		api.POST("/cases", h.CreateCase)
		api.GET("/cases/:id", h.GetCase)
		api.PUT("/cases/:id", h.UpdateCase)
		api.DELETE("/cases/:id", h.DeleteCase)

		api.POST("/cases/:id/tasks", h.AddTask)
		api.PUT("/cases/:id/tasks/:taskId", h.UpdateTask)
		api.POST("/tasks/import", h.ImportTasks)

		api.POST("/cases/:id/images", h.UploadImage)
		api.DELETE("/cases/:id/images/:imageId", h.DeleteImage)
		api.POST("/cases/:id/images/delete", h.DeleteImages)
		api.PUT("/cases/:id/images/order", h.ReorderImages)

		api.GET("/promotions", h.GetPromotions)
		api.POST("/promotions", h.AddPromotion)
		api.POST("/promotions/:id/retry", h.RetryPromotion)
		api.POST("/promotions/:id/move", h.MovePromotion)
		api.DELETE("/promotions/:id", h.DeletePromotion)

		api.GET("/events", h.GetEvents)
		api.GET("/events/today", h.GetTodayEvents)
		api.GET("/events/upcoming", h.GetUpcomingEvents)
		api.GET("/events/urgent", h.GetUrgentTerms)

		api.GET("/ws", h.Changes)
	}

	// Hourly maintenance: expired sessions and the deadline summary for
	// tomorrow's urgent terms.
	reminders := services.NewReminderService(cfg)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if n := sessions.CleanupExpired(); n > 0 {
				log.Printf("Cleaned up %d expired sessions", n)
			}

			tomorrow := time.Now().AddDate(0, 0, 1)
			upcoming := store.FilterRange(store.UrgentTerms(st.AllEvents()), tomorrow, 1)
			if err := reminders.SendDeadlineSummary(upcoming); err != nil {
				log.Printf("Error sending deadline summary: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
