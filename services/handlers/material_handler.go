package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/shared"
	"github.com/studypool/studypool_api/upload"
)

type MaterialHandler struct {
	materialSvc MaterialServiceInterface
}

func NewMaterialHandler(materialSvc MaterialServiceInterface) *MaterialHandler {
	return &MaterialHandler{
		materialSvc: materialSvc,
	}
}

// @Summary Upload a study material
// @Description Upload a file with its metadata. The file is validated before it is stored.
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param file formData file true "Material file (PDF, DOC, DOCX, PPTX, TXT, JPG, PNG, GIF, WEBP)"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param subject_code formData string true "Subject code"
// @Param kind formData string true "Material kind (note, past_paper)"
// @Param year formData int false "Academic year"
// @Success 201 {object} shared.Response{data=dto.MaterialResponse}
// @Failure 400 {object} dto.FileValidationErrorResponse
// @Router /api/v1/materials [post]
func (h *MaterialHandler) Upload(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError("No file provided")
	}

	var req dto.UploadMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError("Invalid form data")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return shared.NewInternalError(err, "Failed to read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return shared.NewInternalError(err, "Failed to read uploaded file")
	}

	declaredMime := fileHeader.Header.Get(fiber.HeaderContentType)

	resp, err := h.materialSvc.Upload(c.Context(), userID, req, fileHeader.Filename, declaredMime, content)
	if err != nil {
		// Validation failures render the fixed {error, details} contract
		// instead of the shared envelope.
		var validationErr *upload.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.FileValidationErrorResponse{
				Error:   "File validation failed",
				Details: validationErr.Details,
			})
		}
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Material uploaded successfully", resp)
}

// @Summary List study materials
// @Description List materials newest first, optionally filtered
// @Tags materials
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param subject query string false "Subject code filter"
// @Param kind query string false "Kind filter (note, past_paper)"
// @Param year query int false "Year filter"
// @Param uploader query string false "Uploader ID filter"
// @Param search query string false "Title/description search term"
// @Success 200 {object} shared.Response{data=dto.MaterialListResponse}
// @Router /api/v1/materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	year, _ := strconv.Atoi(c.Query("year", "0"))

	req := dto.ListMaterialsRequest{
		PaginationRequest: dto.PaginationRequest{Page: page, Limit: limit},
		SubjectCode:       c.Query("subject"),
		Kind:              c.Query("kind"),
		Year:              year,
		UploaderID:        c.Query("uploader"),
		Search:            c.Query("search"),
	}

	resp, err := h.materialSvc.List(c.Context(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List subjects
// @Description List the subject taxonomy materials are filed under
// @Tags materials
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SubjectListResponse}
// @Router /api/v1/subjects [get]
func (h *MaterialHandler) ListSubjects(c *fiber.Ctx) error {
	resp, err := h.materialSvc.ListSubjects()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get a material
// @Description Return one material's metadata
// @Tags materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} shared.Response{data=dto.MaterialResponse}
// @Router /api/v1/materials/{id} [get]
func (h *MaterialHandler) Get(c *fiber.Ctx) error {
	materialID := c.Params("id")

	resp, err := h.materialSvc.Get(materialID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Download a material
// @Description Return a time-limited download URL for the stored file
// @Tags materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} shared.Response{data=dto.DownloadResponse}
// @Router /api/v1/materials/{id}/download [get]
func (h *MaterialHandler) Download(c *fiber.Ctx) error {
	materialID := c.Params("id")

	resp, err := h.materialSvc.Download(materialID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Delete a material
// @Description Delete a material, its comments, and its stored file (owner or admin)
// @Tags materials
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param id path string true "Material ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	materialID := c.Params("id")
	userID := c.Locals(shared.UserID).(string)
	role, _ := c.Locals(shared.UserRole).(string)

	if err := h.materialSvc.Delete(c.Context(), materialID, userID, role); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Material deleted successfully", nil)
}
