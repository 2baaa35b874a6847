package services

import (
	"bytes"
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/model"
	"github.com/studypool/studypool_api/shared"
	"github.com/studypool/studypool_api/upload"
)

// MaterialService owns the study-material lifecycle: validated upload into
// object storage, filtered listing with a short-lived cache on the default
// page, presigned downloads, and owner-or-admin deletion.
type MaterialService struct {
	appContext.DefaultService

	postgresSvc *PostgresService
	minioSvc    *MinIOService
	redisSvc    *RedisService
}

const MATERIAL_SVC = "material_svc"

const (
	recentMaterialsCacheKey = "materials:recent"
	recentMaterialsCacheTTL = 60 * time.Second
	downloadURLExpiry       = 15 * time.Minute
)

func (svc MaterialService) Id() string {
	return MATERIAL_SVC
}

func (svc *MaterialService) Start() error {
	svc.postgresSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== UPLOAD ====================

// Upload validates the file, stores the bytes under a generated object key,
// and records the metadata row. A failed row insert removes the stored
// object again so storage and database stay consistent.
func (svc *MaterialService) Upload(ctx context.Context, uploaderID string, req dto.UploadMaterialRequest, filename, declaredMime string, content []byte) (*dto.MaterialResponse, error) {
	uploader, err := svc.postgresSvc.Users().GetByID(uploaderID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	if _, err := svc.postgresSvc.Subjects().GetByCode(req.SubjectCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewBadRequestError("Unknown subject code")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	result := upload.Validate(filename, declaredMime, content, upload.MaterialConfig)
	if !result.Valid {
		return nil, &upload.ValidationError{Details: result.Message}
	}

	storageKey := upload.GenerateSecureName(filename)

	if _, err := svc.minioSvc.UploadFile(storageKey, bytes.NewReader(content), int64(len(content)), result.DetectedMime); err != nil {
		log.WithError(err).Error("Failed to store uploaded file")
		return nil, shared.NewInternalError(err, "Failed to store file")
	}

	material := &model.Material{
		Title:            req.Title,
		Description:      req.Description,
		SubjectCode:      req.SubjectCode,
		Kind:             req.Kind,
		Year:             req.Year,
		UploaderID:       uploader.ID,
		OriginalFilename: upload.Sanitize(filename),
		StorageKey:       storageKey,
		SizeBytes:        int64(len(content)),
		MimeType:         result.DetectedMime,
	}

	if err := svc.postgresSvc.Materials().Create(material); err != nil {
		// Roll the object back so no orphan blobs accumulate.
		if removeErr := svc.minioSvc.DeleteFile(storageKey); removeErr != nil {
			log.WithError(removeErr).WithField("storage_key", storageKey).Error("Failed to remove orphaned object")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	svc.invalidateRecentCache(ctx)

	log.WithFields(log.Fields{
		"material_id": material.ID,
		"uploader_id": uploader.ID,
		"size_bytes":  material.SizeBytes,
	}).Info("Material uploaded")

	material.Uploader = *uploader
	response := toMaterialResponse(material)
	return &response, nil
}

// ==================== READS ====================

func (svc *MaterialService) List(ctx context.Context, req dto.ListMaterialsRequest) (*dto.MaterialListResponse, error) {
	req.Normalize()

	cacheable := req.IsUnfiltered()

	if cacheable {
		var cached dto.MaterialListResponse
		if err := svc.redisSvc.GetJSON(ctx, recentMaterialsCacheKey, &cached); err != nil {
			log.WithError(err).Warn("Material cache read failed")
		} else if cached.Pagination.Limit > 0 {
			return &cached, nil
		}
	}

	materials, total, err := svc.postgresSvc.Materials().List(req)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	responses := make([]dto.MaterialResponse, 0, len(materials))
	for i := range materials {
		responses = append(responses, toMaterialResponse(&materials[i]))
	}

	response := &dto.MaterialListResponse{
		Materials:  responses,
		Pagination: dto.NewPaginationResponse(req.Page, req.Limit, total),
	}

	if cacheable {
		if err := svc.redisSvc.Set(ctx, recentMaterialsCacheKey, response, recentMaterialsCacheTTL); err != nil {
			log.WithError(err).Warn("Material cache write failed")
		}
	}

	return response, nil
}

// ListSubjects returns the subject taxonomy materials are filed under.
func (svc *MaterialService) ListSubjects() (*dto.SubjectListResponse, error) {
	subjects, err := svc.postgresSvc.Subjects().List()
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	responses := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, dto.SubjectResponse{
			ID:      subject.ID,
			Code:    subject.Code,
			Name:    subject.Name,
			Faculty: subject.Faculty,
		})
	}

	return &dto.SubjectListResponse{
		Subjects: responses,
		Total:    len(responses),
	}, nil
}

func (svc *MaterialService) Get(materialID string) (*dto.MaterialResponse, error) {
	material, err := svc.postgresSvc.Materials().GetByID(materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Material not found")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	response := toMaterialResponse(material)
	return &response, nil
}

// Download returns a time-limited presigned URL for the stored object and
// counts the download.
func (svc *MaterialService) Download(materialID string) (*dto.DownloadResponse, error) {
	material, err := svc.postgresSvc.Materials().GetByID(materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Material not found")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	url, err := svc.minioSvc.GetDownloadURL(material.StorageKey, material.OriginalFilename, downloadURLExpiry)
	if err != nil {
		log.WithError(err).WithField("material_id", materialID).Error("Failed to presign download URL")
		return nil, shared.NewInternalError(err, "Failed to prepare download")
	}

	if err := svc.postgresSvc.Materials().IncrementDownloads(materialID); err != nil {
		log.WithError(err).WithField("material_id", materialID).Warn("Failed to count download")
	}

	return &dto.DownloadResponse{
		URL:       url,
		Filename:  material.OriginalFilename,
		ExpiresIn: int64(downloadURLExpiry.Seconds()),
	}, nil
}

// ==================== DELETE ====================

// Delete removes the metadata row and its comment thread, then best-effort
// removes the stored object.
func (svc *MaterialService) Delete(ctx context.Context, materialID, userID, role string) error {
	material, err := svc.postgresSvc.Materials().GetByID(materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError("Material not found")
		}
		return svc.postgresSvc.HandleError(err)
	}

	if material.UploaderID != userID && role != shared.RoleAdmin {
		return shared.NewForbiddenError("You do not own this material")
	}

	if err := svc.postgresSvc.Comments().DeleteByMaterial(materialID); err != nil {
		return svc.postgresSvc.HandleError(err)
	}

	if err := svc.postgresSvc.Materials().Delete(materialID); err != nil {
		return svc.postgresSvc.HandleError(err)
	}

	if err := svc.minioSvc.DeleteFile(material.StorageKey); err != nil {
		log.WithError(err).WithField("storage_key", material.StorageKey).Warn("Failed to remove stored object")
	}

	svc.invalidateRecentCache(ctx)

	log.WithFields(log.Fields{
		"material_id": materialID,
		"deleted_by":  userID,
	}).Info("Material deleted")

	return nil
}

// ==================== HELPER FUNCTIONS ====================

func (svc *MaterialService) invalidateRecentCache(ctx context.Context) {
	if err := svc.redisSvc.Delete(ctx, recentMaterialsCacheKey); err != nil {
		log.WithError(err).Warn("Material cache invalidation failed")
	}
}

func toMaterialResponse(material *model.Material) dto.MaterialResponse {
	return dto.MaterialResponse{
		ID:               material.ID,
		Title:            material.Title,
		Description:      material.Description,
		SubjectCode:      material.SubjectCode,
		Kind:             material.Kind,
		Year:             material.Year,
		UploaderID:       material.UploaderID,
		UploaderUsername: material.Uploader.Username,
		OriginalFilename: material.OriginalFilename,
		SizeBytes:        material.SizeBytes,
		MimeType:         material.MimeType,
		Downloads:        material.Downloads,
		CreatedAt:        material.CreatedAt,
	}
}
