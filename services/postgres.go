package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studypool/studypool_api/model"
	"github.com/studypool/studypool_api/services/repositories"
	"github.com/studypool/studypool_api/shared"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string

	users     *repositories.UserRepository
	materials *repositories.MaterialRepository
	comments  *repositories.CommentRepository
	subjects  *repositories.SubjectRepository
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Users() *repositories.UserRepository {
	return ds.users
}

func (ds *PostgresService) Materials() *repositories.MaterialRepository {
	return ds.materials
}

func (ds *PostgresService) Comments() *repositories.CommentRepository {
	return ds.comments
}

func (ds *PostgresService) Subjects() *repositories.SubjectRepository {
	return ds.subjects
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
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
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			// Test the connection
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		// Exponential backoff with max delay of 10 seconds
		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	models := []interface{}{
		&model.User{},
		&model.Subject{},
		&model.Material{},
		&model.Comment{},
	}

	err = ds.db.AutoMigrate(models...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	ds.users = repositories.NewUserRepository(ds.db)
	ds.materials = repositories.NewMaterialRepository(ds.db)
	ds.comments = repositories.NewCommentRepository(ds.db)
	ds.subjects = repositories.NewSubjectRepository(ds.db)

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	if ds.db == nil {
		return
	}
	if sqlDB, err := ds.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// HandleError maps database errors onto API errors so handlers can surface
// the right status code.
func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var message string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		message = "Record not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		message = "Record already exists"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest // 400
		message = "Related record does not exist"
	default:
		// Check for PostgreSQL-specific errors
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict // 409
			message = "Record already exists"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable // 503
			message = "Database unavailable"
		} else {
			statusCode = http.StatusInternalServerError // 500
			message = "Internal server error"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return &shared.AppError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
