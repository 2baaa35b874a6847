package repositories

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/model"
	"gorm.io/gorm"
)

// MaterialRepository handles study-material metadata rows.
type MaterialRepository struct {
	BaseRepository
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *MaterialRepository) Create(material *model.Material) error {
	if material.ID == "" {
		id, _ := uuid.NewV7()
		material.ID = id.String()
	}
	material.CreatedAt = time.Now()
	material.UpdatedAt = time.Now()

	return ds.db.Create(material).Error
}

func (ds *MaterialRepository) GetByID(materialID string) (*model.Material, error) {
	var material model.Material
	if err := ds.db.Preload("Uploader").Where("id = ?", materialID).First(&material).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

// List returns a page of materials, newest first, narrowed by whichever
// filters are set on the request.
func (ds *MaterialRepository) List(req dto.ListMaterialsRequest) ([]model.Material, int64, error) {
	var materials []model.Material
	var total int64

	query := ds.db.Model(&model.Material{})

	if req.SubjectCode != "" {
		query = query.Where("subject_code = ?", req.SubjectCode)
	}
	if req.Kind != "" {
		query = query.Where("kind = ?", req.Kind)
	}
	if req.Year != 0 {
		query = query.Where("year = ?", req.Year)
	}
	if req.UploaderID != "" {
		query = query.Where("uploader_id = ?", req.UploaderID)
	}
	if req.Search != "" {
		searchPattern := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Uploader").
		Order("created_at DESC").
		Limit(req.Limit).
		Offset(offset).
		Find(&materials).Error

	if err != nil {
		return nil, 0, err
	}

	return materials, total, nil
}

func (ds *MaterialRepository) CountByUploader(uploaderID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.Material{}).Where("uploader_id = ?", uploaderID).Count(&count).Error
	return count, err
}

func (ds *MaterialRepository) IncrementDownloads(materialID string) error {
	return ds.db.Model(&model.Material{}).Where("id = ?", materialID).
		Update("downloads", gorm.Expr("downloads + 1")).Error
}

func (ds *MaterialRepository) Delete(materialID string) error {
	return ds.db.Where("id = ?", materialID).Delete(&model.Material{}).Error
}
