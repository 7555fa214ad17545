package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/hrdocs/personnel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Bootstraps the first admin (or hr) login on a fresh database.
func main() {
	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "", "password (generated when empty)")
	role := flag.String("role", string(models.RoleAdmin), "admin or hr")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB.DB, logger); err != nil {
			log.Fatalf("❌ Failed to run migrations: %v", err)
		}
	}

	generated := *password == ""
	if generated {
		if *password, err = utils.GeneratePassword(cfg.Security.TempPasswordLength); err != nil {
			log.Fatalf("❌ Failed to generate password: %v", err)
		}
	}

	repos := database.NewRepositories(db)
	credentials := services.NewCredentialService(repos.Users, cfg.Storage, cfg.Security)
	users := services.NewUserService(database.NewTransactor(db), repos, credentials, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := users.CreateStaffAccount(ctx, *username, *password, models.UserRole(*role))
	if err != nil {
		log.Fatalf("❌ Failed to create account: %v", err)
	}

	fmt.Printf("✅ Created %s account %q (id %d)\n", *role, *username, id)
	if generated {
		fmt.Printf("Password: %s\n", *password)
		fmt.Println("⚠️  Store this password now; it is not shown again.")
	}
}
