package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/studypool/studypool_api/model"
	"gorm.io/gorm"
)

// SubjectSeeder handles seeding the subject taxonomy
type SubjectSeeder struct {
	db *gorm.DB
}

// NewSubjectSeeder creates a new subject seeder
func NewSubjectSeeder(db *gorm.DB) *SubjectSeeder {
	return &SubjectSeeder{db: db}
}

// SeedSubjects seeds the database with the subject taxonomy
func (s *SubjectSeeder) SeedSubjects() error {
	subjects := s.getSubjects()

	for _, subject := range subjects {
		// Check if subject already exists
		var existingSubject model.Subject
		if err := s.db.Where("code = ?", subject.Code).First(&existingSubject).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// Subject doesn't exist, create it
				id, _ := uuid.NewV7()
				subject.ID = id.String()
				if err := s.db.Create(&subject).Error; err != nil {
					log.Printf("Error creating subject %s: %v", subject.Code, err)
					return err
				}
				log.Printf("Created subject: %s (%s)", subject.Code, subject.Name)
			} else {
				log.Printf("Error checking subject %s: %v", subject.Code, err)
				return err
			}
		} else {
			log.Printf("Subject %s already exists, skipping", subject.Code)
		}
	}

	log.Println("Subject seeding completed successfully")
	return nil
}

// getSubjects returns the subject taxonomy
func (s *SubjectSeeder) getSubjects() []model.Subject {
	now := time.Now()

	subjects := []model.Subject{
		{Code: "MATH101", Name: "Calculus I", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "MATH201", Name: "Calculus II", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "MATH301", Name: "Linear Algebra", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "STAT201", Name: "Probability and Statistics", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "PHYS101", Name: "Classical Mechanics", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "PHYS201", Name: "Electromagnetism", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "CHEM101", Name: "General Chemistry", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "BIO101", Name: "Cell Biology", Faculty: "Science", CreatedAt: now, UpdatedAt: now},
		{Code: "CS101", Name: "Introduction to Programming", Faculty: "Engineering", CreatedAt: now, UpdatedAt: now},
		{Code: "CS201", Name: "Data Structures and Algorithms", Faculty: "Engineering", CreatedAt: now, UpdatedAt: now},
		{Code: "CS301", Name: "Operating Systems", Faculty: "Engineering", CreatedAt: now, UpdatedAt: now},
		{Code: "CS302", Name: "Database Systems", Faculty: "Engineering", CreatedAt: now, UpdatedAt: now},
		{Code: "CS401", Name: "Distributed Systems", Faculty: "Engineering", CreatedAt: now, UpdatedAt: now},
		{Code: "EE201", Name: "Circuit Analysis", Faculty: "Engineering", CreatedAt: now, UpdatedAt: now},
		{Code: "ECON101", Name: "Microeconomics", Faculty: "Business", CreatedAt: now, UpdatedAt: now},
		{Code: "ECON102", Name: "Macroeconomics", Faculty: "Business", CreatedAt: now, UpdatedAt: now},
		{Code: "ACCT201", Name: "Financial Accounting", Faculty: "Business", CreatedAt: now, UpdatedAt: now},
		{Code: "FIN301", Name: "Corporate Finance", Faculty: "Business", CreatedAt: now, UpdatedAt: now},
		{Code: "LAW201", Name: "Contract Law", Faculty: "Law", CreatedAt: now, UpdatedAt: now},
		{Code: "HIST101", Name: "World History", Faculty: "Humanities", CreatedAt: now, UpdatedAt: now},
		{Code: "PHIL101", Name: "Introduction to Philosophy", Faculty: "Humanities", CreatedAt: now, UpdatedAt: now},
		{Code: "ENGL102", Name: "Academic Writing", Faculty: "Humanities", CreatedAt: now, UpdatedAt: now},
	}

	return subjects
}
