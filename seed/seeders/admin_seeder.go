package seeders

import (
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/studypool/studypool_api/model"
	"github.com/studypool/studypool_api/shared"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminBcryptCost = 12

// AdminSeeder handles seeding the admin account
type AdminSeeder struct {
	db *gorm.DB
}

// NewAdminSeeder creates a new admin seeder
func NewAdminSeeder(db *gorm.DB) *AdminSeeder {
	return &AdminSeeder{db: db}
}

// SeedAdmin creates the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Skipped when an admin already exists or when no
// password is configured.
func (s *AdminSeeder) SeedAdmin() error {
	// Check if an admin already exists
	var existingAdmin model.User
	if err := s.db.Where("role = ?", shared.RoleAdmin).First(&existingAdmin).Error; err == nil {
		log.Println("Admin account already exists, skipping admin seeding")
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@studypool.io"
	}
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), adminBcryptCost)
	if err != nil {
		return err
	}
	id, _ := uuid.NewV7()

	// Create admin account
	admin := model.User{
		ID:        id.String(),
		Email:     email,
		Username:  username,
		Password:  string(hashedPassword),
		Role:      shared.RoleAdmin,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.db.Create(&admin).Error; err != nil {
		log.Printf("Error creating admin account: %v", err)
		return err
	}

	log.Printf("Created admin account: %s", admin.Email)
	return nil
}
