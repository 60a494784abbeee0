package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"planner/internal/auth"
	"planner/internal/config"
	"planner/internal/domain/services"
	"planner/internal/engine"
	"planner/internal/extract"
	"planner/internal/handler"
	"planner/internal/middleware"
	"planner/internal/notify"
	"planner/internal/repository/postgres"
	"planner/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Identity provider is optional: sessions work without accounts
	var identityProvider auth.IdentityProvider
	if cfg.JWKSURL != "" {
		verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create identity verifier: %v", err)
		}
		identityProvider = verifier
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	projectRepo := postgres.NewProjectRepository(repoConfig)
	documentRepo := postgres.NewDocumentRepository(repoConfig)
	sessionRepo := postgres.NewSessionRepository(repoConfig)
	conversationRepo := postgres.NewConversationRepository(repoConfig)
	uploadRepo := postgres.NewUploadRepository(repoConfig)
	invitationRepo := postgres.NewInvitationRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Conversation engine
	var conversationEngine services.ConversationEngine
	switch cfg.EngineProvider {
	case "openai":
		personas, err := engine.NewPersonaRegistry()
		if err != nil {
			log.Fatalf("Failed to load persona registry: %v", err)
		}
		conversationEngine = engine.NewClient(cfg.EngineBaseURL, cfg.EngineAPIKey, cfg.EngineModel, personas, logger)
		logger.Info("conversation engine ready", "provider", "openai", "model", cfg.EngineModel)
	default:
		conversationEngine = engine.NewLoremEngine()
		logger.Warn("conversation engine running in lorem mode, set ENGINE_PROVIDER=openai for real responses")
	}

	// Notifier
	var notifier services.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, logger)
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	extractor := extract.NewFileExtractor()

	// Create services
	sessionService := service.NewSessionService(sessionRepo, projectRepo, cfg.SessionFreshness, logger)
	projectService := service.NewProjectService(projectRepo, documentRepo, sessionRepo, conversationRepo, uploadRepo, invitationRepo, txManager, cfg.SessionFreshness, logger)
	chatService := service.NewChatService(projectRepo, documentRepo, sessionRepo, conversationRepo, conversationEngine, cfg.EngineTimeout, cfg.SessionFreshness, logger)
	uploadService := service.NewUploadService(uploadRepo, sessionRepo, projectRepo, extractor, logger)
	invitationService := service.NewInvitationService(invitationRepo, projectRepo, sessionRepo, txManager, notifier, cfg.InvitationTTL, cfg.BaseURL, logger)

	// Create handlers
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	projectHandler := handler.NewProjectHandler(projectService, sessionService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)
	invitationHandler := handler.NewInvitationHandler(invitationService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", projectHandler.HealthCheck)

	// Session routes
	mux.HandleFunc("POST /join", sessionHandler.Join)
	mux.HandleFunc("POST /leave", sessionHandler.Leave)

	// Conversation routes
	mux.HandleFunc("POST /chat", chatHandler.Chat)
	mux.HandleFunc("GET /history/{projectId}", chatHandler.History)
	mux.HandleFunc("DELETE /history/{projectId}", chatHandler.ClearHistory)

	// Document route
	mux.HandleFunc("GET /document/{projectId}", projectHandler.GetDocument)

	// Project routes
	mux.HandleFunc("GET /projects", projectHandler.ListProjects)
	mux.HandleFunc("GET /projects/{id}/status", projectHandler.Status)
	mux.HandleFunc("GET /projects/{id}/users", projectHandler.Users)
	mux.HandleFunc("POST /projects/{id}/users/reconcile", projectHandler.ReconcileSessions)
	mux.HandleFunc("DELETE /projects/{id}", projectHandler.DeleteProject)

	// Upload routes
	mux.HandleFunc("POST /projects/{id}/upload", uploadHandler.CreateUpload)
	mux.HandleFunc("GET /projects/{id}/uploads", uploadHandler.ListUploads)
	mux.HandleFunc("GET /uploads/{id}", uploadHandler.GetUpload)
	mux.HandleFunc("DELETE /uploads/{id}", uploadHandler.DeleteUpload)

	// Invitation routes
	mux.HandleFunc("POST /projects/{id}/invite", invitationHandler.Invite)
	mux.HandleFunc("GET /invitations/{token}/validate", invitationHandler.Validate)
	mux.HandleFunc("POST /invitations/{token}/accept", invitationHandler.Accept)

	// Build middleware chain - applied in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Session -> Identity -> Routes
	var h http.Handler = mux
	h = middleware.Identity(identityProvider, logger)(h)
	h = middleware.Session()(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.SessionHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.EngineTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
