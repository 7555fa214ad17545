package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Runs the internship sweep once and optionally prunes old audit logs.
// Intended for hosts where the in-process scheduler is disabled.
func main() {
	var dbURLFlag string
	var retentionDays int
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&retentionDays, "audit-retention-days", 0, "delete audit logs older than this many days (0 keeps everything)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	repos := database.NewRepositories(db)
	internships := services.NewInternshipService(database.NewTransactor(db), repos.Internships, config.DefaultPolicy(), logger)
	audit := services.NewAuditService(repos.AuditLogs, true, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := internships.SweepOverdue(ctx)
	if err != nil {
		log.Fatalf("internship sweep failed: %v", err)
	}
	audit.Record(ctx, services.AuditEvent{
		Action:     services.AuditInternshipsSwept,
		EntityType: "internship",
		Details:    map[string]interface{}{"completed": n, "source": "maintenance"},
	})
	fmt.Printf("Completed %d overdue internship(s)\n", n)

	if retentionDays > 0 {
		deleted, err := audit.CleanupOldAuditLogs(ctx, time.Duration(retentionDays)*24*time.Hour)
		if err != nil {
			log.Fatalf("audit cleanup failed: %v", err)
		}
		fmt.Printf("Deleted %d audit log(s) older than %d day(s)\n", deleted, retentionDays)
	}
}
