package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/shared"
)

type CommentHandler struct {
	commentSvc CommentServiceInterface
}

func NewCommentHandler(commentSvc CommentServiceInterface) *CommentHandler {
	return &CommentHandler{
		commentSvc: commentSvc,
	}
}

// @Summary Comment on a material
// @Description Create a comment, optionally as a reply to another comment on the same material
// @Tags comments
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param id path string true "Material ID"
// @Param commentRequest body dto.CreateCommentRequest true "Comment content and optional parent"
// @Success 201 {object} shared.Response{data=dto.CommentResponse}
// @Router /api/v1/materials/{id}/comments [post]
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	materialID := c.Params("id")
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError("Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.commentSvc.Create(materialID, userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Comment created successfully", resp)
}

// @Summary List comments
// @Description Return a material's comments as a nested reply tree
// @Tags comments
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} shared.Response{data=dto.CommentListResponse}
// @Router /api/v1/materials/{id}/comments [get]
func (h *CommentHandler) ListByMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")

	resp, err := h.commentSvc.ListByMaterial(materialID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Delete a comment
// @Description Delete a comment and all replies under it (author or admin)
// @Tags comments
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param commentId path string true "Comment ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/comments/{commentId} [delete]
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	commentID := c.Params("commentId")
	userID := c.Locals(shared.UserID).(string)
	role, _ := c.Locals(shared.UserRole).(string)

	if err := h.commentSvc.Delete(commentID, userID, role); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Comment deleted successfully", nil)
}
