package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/joho/godotenv"
)

const usage = `usage: migrate [-database-url URL] <command>

commands:
  up            apply all pending migrations
  down N        roll back N migrations
  version       print the current schema version
  force V       mark version V as applied without running it`

func main() {
	var dbURLFlag string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

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

	m, err := database.NewMigrator(db.DB.DB)
	if err != nil {
		log.Fatal(err)
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = m.Up()
	case "down":
		n, convErr := strconv.Atoi(flag.Arg(1))
		if convErr != nil || n < 1 {
			log.Fatal("down requires a positive step count")
		}
		err = m.Steps(-n)
	case "force":
		v, convErr := strconv.Atoi(flag.Arg(1))
		if convErr != nil {
			log.Fatal("force requires a version number")
		}
		err = m.Force(v)
	case "version":
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("No migrations applied")
	case err != nil:
		log.Fatalf("failed to read version: %v", err)
	default:
		fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)
	}
}
