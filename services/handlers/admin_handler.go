package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/shared"
)

type AdminHandler struct {
	authSvc AuthServiceInterface
}

func NewAdminHandler(authSvc AuthServiceInterface) *AdminHandler {
	return &AdminHandler{
		authSvc: authSvc,
	}
}

// @Summary Get all users (Admin)
// @Description Get list of all users (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Username/email search term"
// @Success 200 {object} shared.Response{data=dto.AdminUserListResponse}
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) GetUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search")

	req := dto.PaginationRequest{Page: page, Limit: limit}

	users, err := h.authSvc.AdminListUsers(req, search)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Users retrieved successfully", users)
}

// @Summary Update user (Admin)
// @Description Update a user's role (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param userId path string true "User ID"
// @Param updateRequest body dto.AdminUpdateUserRequest true "User update data"
// @Success 200 {object} shared.Response{data=dto.AdminUserInfo}
// @Router /api/v1/admin/users/{userId} [put]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return shared.ResponseJSON(c, http.StatusBadRequest, "User ID is required", nil)
	}

	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseJSON(c, http.StatusBadRequest, "Invalid request", err.Error())
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	user, err := h.authSvc.AdminUpdateUser(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "User updated successfully", user)
}

// @Summary Delete user (Admin)
// @Description Delete a user account and its comments (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param userId path string true "User ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/users/{userId} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return shared.ResponseJSON(c, http.StatusBadRequest, "User ID is required", nil)
	}

	if err := h.authSvc.AdminDeleteUser(userID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "User deleted successfully", nil)
}
