// seed/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/studypool/studypool_api/seed/seeders"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Parse command line flags
	var (
		seedType = flag.String("type", "all", "Type of seeding: all, subjects, admin")
		dsn      = flag.String("dsn", "", "Database DSN (overrides DATABASE_URL env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	// Get database DSN
	databaseDSN := *dsn
	if databaseDSN == "" {
		databaseDSN = os.Getenv("DATABASE_URL")
		if databaseDSN == "" {
			databaseDSN = dsnFromEnv()
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(databaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database")

	// Create main seeder
	mainSeeder := seeders.NewMainSeeder(db)

	// Run seeding based on type
	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "subjects":
		log.Println("Seeding subjects only...")
		if err := mainSeeder.SeedSubjectsOnly(); err != nil {
			log.Fatalf("Failed to seed subjects: %v", err)
		}
	case "admin":
		log.Println("Seeding admin account only...")
		if err := mainSeeder.SeedAdminOnly(); err != nil {
			log.Fatalf("Failed to seed admin account: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'subjects', or 'admin'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func dsnFromEnv() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}
	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		password = "postgres"
	}
	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "studypool"
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)
}

func showHelp() {
	log.Println(`
Database Seeding Tool for StudyPool

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, subjects, admin
  -dsn string
        Database DSN (overrides DATABASE_URL environment variable)
  -help
        Show this help message

Examples:
  # Seed everything
  go run seed/main.go

  # Seed only the subject taxonomy
  go run seed/main.go -type=subjects

  # Seed only the admin account
  go run seed/main.go -type=admin

Environment Variables:
  DATABASE_URL   - Full PostgreSQL DSN (overrides the DB_* variables)
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE
  ADMIN_EMAIL    - Admin account email (default: admin@studypool.io)
  ADMIN_USERNAME - Admin account username (default: admin)
  ADMIN_PASSWORD - Admin account password (required to create the admin account)
`)
}
