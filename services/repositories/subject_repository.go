package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/studypool/studypool_api/model"
	"gorm.io/gorm"
)

// SubjectRepository handles the subject taxonomy.
type SubjectRepository struct {
	BaseRepository
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *SubjectRepository) List() ([]model.Subject, error) {
	var subjects []model.Subject
	if err := ds.db.Order("code ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (ds *SubjectRepository) GetByCode(code string) (*model.Subject, error) {
	var subject model.Subject
	if err := ds.db.Where("code = ?", code).First(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (ds *SubjectRepository) Create(subject *model.Subject) error {
	if subject.ID == "" {
		id, _ := uuid.NewV7()
		subject.ID = id.String()
	}
	subject.CreatedAt = time.Now()
	subject.UpdatedAt = time.Now()

	return ds.db.Create(subject).Error
}
