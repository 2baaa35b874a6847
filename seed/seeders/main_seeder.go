package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Seed subjects first (materials are filed under them)
	subjectSeeder := NewSubjectSeeder(s.db)
	if err := subjectSeeder.SeedSubjects(); err != nil {
		log.Printf("Subject seeding failed: %v", err)
		return err
	}

	// 2. Seed the admin account
	adminSeeder := NewAdminSeeder(s.db)
	if err := adminSeeder.SeedAdmin(); err != nil {
		log.Printf("Admin seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedSubjectsOnly seeds only the subject taxonomy
func (s *MainSeeder) SeedSubjectsOnly() error {
	subjectSeeder := NewSubjectSeeder(s.db)
	return subjectSeeder.SeedSubjects()
}

// SeedAdminOnly seeds only the admin account
func (s *MainSeeder) SeedAdminOnly() error {
	adminSeeder := NewAdminSeeder(s.db)
	return adminSeeder.SeedAdmin()
}
