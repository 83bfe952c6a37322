package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/humanoid-ai/humanoid-server/internal/api/http/handler"
	"github.com/humanoid-ai/humanoid-server/internal/api/http/router"
	"github.com/humanoid-ai/humanoid-server/internal/config"
	"github.com/humanoid-ai/humanoid-server/internal/hf"
	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/repository/postgres"
	"github.com/humanoid-ai/humanoid-server/internal/service"
	storage "github.com/humanoid-ai/humanoid-server/internal/storage/minio"
	"github.com/humanoid-ai/humanoid-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	authTokenRepo := postgres.NewAuthTokenRepository(db)
	credentialRepo := postgres.NewCredentialPoolRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)
	conversationRepo := postgres.NewConversationRepository(db)
	productRepo := postgres.NewProductRepository(db)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	tokenService := service.NewToken(tokenManager, authTokenRepo, logger)
	poolService := service.NewPool(credentialRepo, assignmentRepo, cfg.Pool.FallbackToken, cfg.Pool.FailOnExhausted, logger)
	sessionService := service.NewSession(userRepo, tokenManager, tokenService, poolService, logger)

	hfClient := hf.NewClient(cfg.HF.BaseURL, cfg.HF.Model)
	chatService := service.NewChat(conversationRepo, poolService, hfClient, logger)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}
	productService := service.NewProduct(productRepo, storageClient, logger)

	retention := time.Duration(cfg.Retention.Days) * 24 * time.Hour
	cleanupService := service.NewCleanup(tokenService, retention, cfg.Retention.SweepInterval, logger)

	engine := router.New(router.Dependencies{
		Auth:    handler.NewAuth(sessionService, tokenService, poolService, cfg.HTTP.SecureCookies),
		Admin:   handler.NewAdmin(sessionService, tokenService, poolService),
		Chat:    handler.NewChat(chatService),
		Product: handler.NewProduct(productService),
		Tokens:  tokenService,
		Users:   userRepo,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler: engine,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanupService.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Addr)
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
