// Command seed creates the initial admin account and optionally the first
// pool credential.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/humanoid-ai/humanoid-server/internal/config"
	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
	"github.com/humanoid-ai/humanoid-server/internal/repository/postgres"
	"github.com/humanoid-ai/humanoid-server/internal/service"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@localhost", "admin email")
	password := flag.String("password", "", "admin password (required)")
	credName := flag.String("credential-name", "", "optional pool credential name")
	credValue := flag.String("credential-value", "", "optional pool credential value")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}
	if (*credName == "") != (*credValue == "") {
		log.Fatal("-credential-name and -credential-value must be set together")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("failed to hash password", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	admin, err := userRepo.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		logger.Fatal("failed to create admin user", "error", err)
	}
	fmt.Printf("admin created: id=%s username=%s\n", admin.ID, admin.Username)

	if *credName != "" {
		credentialRepo := postgres.NewCredentialPoolRepository(db)
		assignmentRepo := postgres.NewAssignmentRepository(db)
		pool := service.NewPool(credentialRepo, assignmentRepo, cfg.Pool.FallbackToken, cfg.Pool.FailOnExhausted, logger)

		cred, err := pool.AddCredential(ctx, *credName, *credValue, admin.ID)
		if err != nil {
			logger.Fatal("failed to create pool credential", "error", err)
		}
		fmt.Printf("credential created: id=%s name=%s\n", cred.ID, cred.Name)
	}
}
