package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/shared"
	"github.com/studypool/studypool_api/upload"
)

type fakeMaterialService struct {
	uploadFn    func(ctx context.Context, uploaderID string, req dto.UploadMaterialRequest, filename, declaredMime string, content []byte) (*dto.MaterialResponse, error)
	uploadCalls int
}

func (f *fakeMaterialService) Upload(ctx context.Context, uploaderID string, req dto.UploadMaterialRequest, filename, declaredMime string, content []byte) (*dto.MaterialResponse, error) {
	f.uploadCalls++
	return f.uploadFn(ctx, uploaderID, req, filename, declaredMime, content)
}

func (f *fakeMaterialService) List(ctx context.Context, req dto.ListMaterialsRequest) (*dto.MaterialListResponse, error) {
	return nil, nil
}

func (f *fakeMaterialService) ListSubjects() (*dto.SubjectListResponse, error) {
	return nil, nil
}

func (f *fakeMaterialService) Get(materialID string) (*dto.MaterialResponse, error) {
	return nil, nil
}

func (f *fakeMaterialService) Download(materialID string) (*dto.DownloadResponse, error) {
	return nil, nil
}

func (f *fakeMaterialService) Delete(ctx context.Context, materialID, userID, role string) error {
	return nil
}

func newUploadApp(svc MaterialServiceInterface) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/materials", func(c *fiber.Ctx) error {
		c.Locals(shared.UserID, "user-1")
		return c.Next()
	}, NewMaterialHandler(svc).Upload)
	return app
}

func newUploadRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/materials", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

var uploadFormFields = map[string]string{
	"title":        "Calculus II Midterm 2024",
	"subject_code": "MATH201",
	"kind":         "past_paper",
}

func TestMaterialUpload_ValidationFailureContract(t *testing.T) {
	details := "File content (application/zip) does not match declared type (application/pdf)"
	fake := &fakeMaterialService{
		uploadFn: func(ctx context.Context, uploaderID string, req dto.UploadMaterialRequest, filename, declaredMime string, content []byte) (*dto.MaterialResponse, error) {
			return nil, &upload.ValidationError{Details: details}
		},
	}
	app := newUploadApp(fake)

	resp, err := app.Test(newUploadRequest(t, uploadFormFields, "paper.pdf", []byte("PK\x03\x04zipcontent")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, fake.uploadCalls)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body dto.FileValidationErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "File validation failed", body.Error)
	assert.Equal(t, details, body.Details)
}

func TestMaterialUpload_Success(t *testing.T) {
	var gotUploader, gotFilename string
	var gotReq dto.UploadMaterialRequest
	var gotContent []byte

	fake := &fakeMaterialService{
		uploadFn: func(ctx context.Context, uploaderID string, req dto.UploadMaterialRequest, filename, declaredMime string, content []byte) (*dto.MaterialResponse, error) {
			gotUploader = uploaderID
			gotFilename = filename
			gotReq = req
			gotContent = content
			return &dto.MaterialResponse{ID: "mat-1", Title: req.Title}, nil
		},
	}
	app := newUploadApp(fake)

	fileContent := []byte("%PDF-1.7 test")
	resp, err := app.Test(newUploadRequest(t, uploadFormFields, "midterm_2024.pdf", fileContent))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	assert.Equal(t, "user-1", gotUploader)
	assert.Equal(t, "midterm_2024.pdf", gotFilename)
	assert.Equal(t, "Calculus II Midterm 2024", gotReq.Title)
	assert.Equal(t, "MATH201", gotReq.SubjectCode)
	assert.Equal(t, "past_paper", gotReq.Kind)
	assert.Equal(t, fileContent, gotContent)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Code    int                  `json:"code"`
		Message string               `json:"message"`
		Data    dto.MaterialResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, fiber.StatusCreated, body.Code)
	assert.Equal(t, "Material uploaded successfully", body.Message)
	assert.Equal(t, "mat-1", body.Data.ID)
}

func TestMaterialUpload_RejectsBadKind(t *testing.T) {
	fake := &fakeMaterialService{
		uploadFn: func(ctx context.Context, uploaderID string, req dto.UploadMaterialRequest, filename, declaredMime string, content []byte) (*dto.MaterialResponse, error) {
			return &dto.MaterialResponse{}, nil
		},
	}
	app := newUploadApp(fake)

	fields := map[string]string{
		"title":        "Calculus II Midterm 2024",
		"subject_code": "MATH201",
		"kind":         "essay",
	}
	resp, err := app.Test(newUploadRequest(t, fields, "paper.pdf", []byte("%PDF-1.7")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The service is never reached, so nothing is stored.
	assert.Equal(t, 0, fake.uploadCalls)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body dto.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, fiber.StatusBadRequest, body.Code)
	assert.Equal(t, "Validation failed", body.Message)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "Kind", body.Errors[0].Field)
}
