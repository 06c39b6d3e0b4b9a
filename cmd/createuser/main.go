package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/sjperalta/devagency-api/internal/config"
	"github.com/sjperalta/devagency-api/internal/database"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/internal/services"
	"github.com/sjperalta/devagency-api/pkg/logger"
)

// createuser seeds an account so the first admin can sign in:
//
//	go run ./cmd/createuser -email admin@agency.test -password secret123 -name "Agency Admin"
func main() {
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "password (min 8 characters)")
	name := flag.String("name", "", "full name")
	role := flag.String("role", models.RoleAdmin, "admin or manager")
	migrate := flag.Bool("migrate", false, "run schema migrations first")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if *migrate || cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	repos := repository.NewRepositories(db)
	authService := services.NewAuthService(repos.User, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := authService.CreateUser(ctx, *email, *password, *name, *role)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				log.Printf("  %s: %s", field, msg)
			}
		}
		log.Fatalf("Failed to create user: %v", err)
	}

	logger.Info("User created", "id", user.ID, "email", user.Email, "role", user.Role)
}
