package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/N1femi/Thriva/handlers"
	"github.com/N1femi/Thriva/internal/config"
	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

var (
	cfg             *config.Config
	dbPool          *pgxpool.Pool
	badgeService    *services.BadgeService
	badgeRunner     *services.BadgeRunner
	journalService  *services.JournalService
	calendarService *services.CalendarService
	friendsService  *services.FriendsService
	chatService     *services.ChatService
	focusService    *services.FocusService

	notificationService *services.NotificationService
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = cfg.DBMinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	clock := services.SystemClock{}
	store := services.NewPgDatastore(dbPool)

	badgeService = services.NewBadgeService(store, clock, cfg.Location, cfg.CatalogRefresh)
	badgeRunner = services.NewBadgeRunner(cfg.BadgeTimeout)
	journalService = services.NewJournalService(dbPool)
	calendarService = services.NewCalendarService(dbPool)
	friendsService = services.NewFriendsService(dbPool)
	chatService = services.NewChatService(dbPool)
	focusService = services.NewFocusService(dbPool, clock, cfg.Location)
	notificationService = services.NewNotificationService(dbPool)

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	services.RegisterBadgeMetrics(prometheus.DefaultRegisterer)
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	journalHandler := handlers.NewJournalHandler(journalService, badgeService, badgeRunner)
	calendarHandler := handlers.NewCalendarHandler(calendarService, badgeService, badgeRunner)
	friendsHandler := handlers.NewFriendsHandler(friendsService, badgeService, badgeRunner)
	chatHandler := handlers.NewChatHandler(chatService, badgeService, badgeRunner)
	focusHandler := handlers.NewFocusHandler(focusService, badgeService, badgeRunner)
	badgeHandler := handlers.NewBadgeHandler(badgeService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.CleanupVisitors(cleanupCtx)

	r := mux.NewRouter()
	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := dbPool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "thriva-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.SupabaseAuthMiddleware([]byte(cfg.JWTSecret)))

	protected.HandleFunc("/journal", journalHandler.GetEntries).Methods("GET")
	protected.HandleFunc("/journal", journalHandler.CreateEntry).Methods("POST")
	protected.HandleFunc("/journal", journalHandler.DeleteEntry).Methods("DELETE")

	protected.HandleFunc("/calendar", calendarHandler.GetEvents).Methods("GET")
	protected.HandleFunc("/calendar", calendarHandler.CreateEvent).Methods("POST")
	protected.HandleFunc("/calendar", calendarHandler.DeleteEvent).Methods("DELETE")

	protected.HandleFunc("/friends", friendsHandler.GetFriends).Methods("GET")
	protected.HandleFunc("/friends", friendsHandler.AddFriend).Methods("POST")
	protected.HandleFunc("/friends", friendsHandler.RemoveFriend).Methods("DELETE")

	protected.HandleFunc("/chats", chatHandler.GetChats).Methods("GET")
	protected.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	protected.HandleFunc("/chats/{id}/messages", chatHandler.GetMessages).Methods("GET")
	protected.HandleFunc("/chats/{id}/messages", chatHandler.AddMessage).Methods("POST")

	protected.HandleFunc("/daily-focus", focusHandler.GetDay).Methods("GET")
	protected.HandleFunc("/daily-focus", focusHandler.Select).Methods("POST")
	protected.HandleFunc("/daily-focus", focusHandler.SetCompleted).Methods("PATCH")

	protected.HandleFunc("/badges", badgeHandler.GetBadges).Methods("GET")
	protected.HandleFunc("/badges/recompute", badgeHandler.Recompute).Methods("POST")
	protected.HandleFunc("/stats", badgeHandler.GetStats).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications", notificationHandler.CreateNotification).Methods("POST")
	protected.HandleFunc("/notifications", notificationHandler.UpdateNotification).Methods("PATCH")
	protected.HandleFunc("/notifications", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications", notificationHandler.DeleteNotification).Methods("DELETE")

	protected.HandleFunc("/notification-preferences", notificationHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/notification-preferences", notificationHandler.UpdatePreferences).Methods("POST")
	protected.HandleFunc("/notification-preferences", notificationHandler.UpdatePreference).Methods("PATCH")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	port := ":" + cfg.Port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Let in-flight badge recomputes finish before the pool closes.
	if err := badgeRunner.Wait(shutdownCtx); err != nil {
		log.Printf("Badge runner drain error: %v", err)
	}

	log.Println("Server shutdown complete")
}
