package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/VictorTadashi/AnimaFlow/docs"
	"github.com/VictorTadashi/AnimaFlow/internal/catalog"
	"github.com/VictorTadashi/AnimaFlow/internal/clients/assistant"
	"github.com/VictorTadashi/AnimaFlow/internal/clients/gateway"
	"github.com/VictorTadashi/AnimaFlow/internal/config"
	"github.com/VictorTadashi/AnimaFlow/internal/export"
	"github.com/VictorTadashi/AnimaFlow/internal/handlers"
	"github.com/VictorTadashi/AnimaFlow/internal/logger"
	"github.com/VictorTadashi/AnimaFlow/internal/metrics"
	"github.com/VictorTadashi/AnimaFlow/internal/middleware"
	"github.com/VictorTadashi/AnimaFlow/internal/repositories"
	"github.com/VictorTadashi/AnimaFlow/internal/services"
	"github.com/VictorTadashi/AnimaFlow/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// A remote gateway polls for up to four minutes before answering
const gatewayClientTimeout = 5 * time.Minute

const (
	imagesMediaType = "images"
	janitorInterval = time.Minute
)

// @title AnimaFlow Lesson Studio API
// @version 1.0
// @description Lesson plan wizard, assistant gateway, editor sessions and document export

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Optional API key protecting the assistant, session and image routes
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting AnimaFlow lesson studio")

	m := metrics.NewMetrics()
	lessonCatalog := catalog.Default()

	// Background image catalogue: database when configured, otherwise a fixed list
	var imageRepo services.ImageRepository
	if cfg.DatabaseEnabled() {
		db, err := connectDB(cfg.DSN())
		if err != nil {
			logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := runMigrations(db); err != nil {
			logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		imageRepo = repositories.NewImageRepository(db)
	} else {
		filenames := cfg.Media.BackgroundImages
		if len(filenames) == 0 {
			filenames = lessonCatalog.BackgroundImages
		}
		imageRepo = repositories.NewStaticImageRepository(filenames)
		logger.Logger.Info("Database not configured, using static background list", zap.Int("images", len(filenames)))
	}

	// Initialize storage
	fileStorage := storage.NewLocalStorage(cfg.Media.BasePath)

	// Assistant gateway: in-process against the hosted API, or a remote deployment
	var gw services.Gateway
	if cfg.Gateway.URL != "" {
		gw = gateway.NewClient(cfg.Gateway.URL, cfg.APIKey, gatewayClientTimeout, nil, logger.Logger)
		logger.Logger.Info("Using remote assistant gateway", zap.String("url", cfg.Gateway.URL))
	} else {
		api := assistant.NewClient(assistant.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKey:      cfg.OpenAI.APIKey,
			AssistantID: cfg.OpenAI.AssistantID,
			Timeout:     cfg.OpenAI.Timeout,
		}, logger.Logger)
		gw = services.NewGatewayService(api, services.DefaultGatewayConfig(cfg.OpenAI.APIKey), m, logger.Logger)
	}

	// Initialize services
	lessonService := services.NewLessonService(lessonCatalog, logger.Logger)
	sessionStore := repositories.NewSessionRepository[*services.EditorSession](cfg.Session.TTL, logger.Logger)
	sessionService := services.NewSessionService(sessionStore, lessonService, func() services.ChatSender {
		return services.NewChatClient(gw, m, logger.Logger)
	}, m, logger.Logger)
	sessionStore.OnEvict(sessionService.Evicted)
	imageLoader := export.NewImageLoader(imageRepo, fileStorage, imagesMediaType, logger.Logger)
	imageService := services.NewImageService(imageRepo, fileStorage, imageLoader, imagesMediaType, logger.Logger)
	exporter := export.NewExporter(imageLoader, m, logger.Logger)

	// Initialize handlers
	lessonHandler := handlers.NewLessonHandler(lessonService, logger.Logger)
	assistantHandler := handlers.NewAssistantHandler(gw, logger.Logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, exporter, logger.Logger)
	exportHandler := handlers.NewExportHandler(exporter, logger.Logger)
	imageHandler := handlers.NewImageHandler(imageService, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	r.Use(m.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		lessonHandler.RegisterRoutes(r)
		exportHandler.RegisterRoutes(r)
		r.Post("/content/extract", assistantHandler.Extract)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyMiddleware(cfg.APIKey))
			r.Post("/chat-with-assistant", assistantHandler.Chat)
			sessionHandler.RegisterRoutes(r)
			imageHandler.RegisterRoutes(r)
		})
	})

	// Evict idle sessions until shutdown; sessions with a message in flight are kept
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go sessionStore.RunJanitor(janitorCtx, janitorInterval, func(s *services.EditorSession) bool {
		return s.Busy()
	})

	// Start server; session creation may retry a full assistant run, hence the long write timeout
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(r, "animaflow-api"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")
	stopJanitor()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "animaflow_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Try parent directory if running from cmd
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
