package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"taskcommadmin/internal/adapter/api"
	"taskcommadmin/internal/adapter/api/handler"
	apimiddleware "taskcommadmin/internal/adapter/api/middleware"
	"taskcommadmin/internal/adapter/api/router"
	"taskcommadmin/internal/adapter/repository"
	"taskcommadmin/internal/chatsync"
	domainrepo "taskcommadmin/internal/domain/repository"
	"taskcommadmin/internal/domain/service"
	"taskcommadmin/internal/infrastructure/firebase"
	"taskcommadmin/internal/infrastructure/metrics"
	"taskcommadmin/internal/infrastructure/postgres"
	"taskcommadmin/internal/infrastructure/ratelimit"
	"taskcommadmin/internal/infrastructure/websocket"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/config"
	"taskcommadmin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, verifier, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", cfg.Backend, err)
	}
	defer closeBackend()

	limiter := ratelimit.NewRateLimiter(cfg.ChatSendPerMin)
	limiter.SetPolicy(apimiddleware.ActionRequest, ratelimit.Policy{PerMinute: 600, Burst: 100})
	limiter.StartCleanupRoutine(ctx, 10*time.Minute)

	poller := chatsync.NewPoller(repos.Messages, cfg.ChatPollInterval)
	mutator := chatsync.NewMutator(repos.Messages, cfg.ChatVerifyDelay)

	authUseCase := usecase.NewAuthUseCase(verifier, repos.Profiles)
	userUseCase := usecase.NewUserUseCase(repos.Users, repos.Instructions, repos.Tasks)
	instructionUseCase := usecase.NewInstructionUseCase(repos.Instructions, repos.Tasks)
	taskUseCase := usecase.NewTaskUseCase(repos.Tasks, repos.Instructions)
	chatUseCase := usecase.NewChatUseCase(repos.Messages, poller, mutator, limiter)
	searchUseCase := usecase.NewSearchUseCase(repos, limiter, cfg.SearchLimit, cfg.SearchTypeLimit)
	diagnosticsUseCase := usecase.NewDiagnosticsUseCase(repos.Messages, repos.Backend)
	defer chatUseCase.Close()

	handler.Setup(authUseCase, userUseCase, instructionUseCase, taskUseCase, chatUseCase, searchUseCase, diagnosticsUseCase)
	handler.SetupHealthHandler(repos.Backend, chatUseCase)

	wsManager := websocket.NewManager()
	defer wsManager.CloseAll()
	wsHandler := handler.NewWebSocketHandler(wsManager, chatUseCase)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware(authUseCase)

	router.Setup(e, authMiddleware, adminMiddleware, wsHandler, apimiddleware.RateLimit(limiter))

	go func() {
		logger.Info("Starting %s admin server on port %s...", repos.Backend, cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	wsManager.CloseAll()
	chatUseCase.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
}

// openBackend connects the configured backend and returns its adapters, the
// token verifier and a func releasing both.
func openBackend(ctx context.Context, cfg *config.Config) (domainrepo.Set, service.IdentityVerifier, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(cfg)
		if err != nil {
			return domainrepo.Set{}, nil, nil, err
		}
		if cfg.IsDevelopment() {
			if err := repository.AutoMigrate(db); err != nil {
				postgres.Close(db)
				return domainrepo.Set{}, nil, nil, err
			}
		}

		verifier, closeVerifier, err := postgres.NewVerifier(ctx, cfg)
		if err != nil {
			postgres.Close(db)
			return domainrepo.Set{}, nil, nil, err
		}

		closeAll := func() {
			closeVerifier()
			if err := postgres.Close(db); err != nil {
				logger.Error("Closing database: %v", err)
			}
		}
		return repository.NewPostgresSet(db), verifier, closeAll, nil

	default:
		clients, err := firebase.NewClients(ctx, cfg)
		if err != nil {
			return domainrepo.Set{}, nil, nil, err
		}

		closeAll := func() {
			if err := clients.Close(); err != nil {
				logger.Error("Closing firestore: %v", err)
			}
		}
		return repository.NewFirestoreSet(clients.Firestore, cfg.UserCollections), firebase.NewFirebaseAuthClient(clients.Auth), closeAll, nil
	}
}
