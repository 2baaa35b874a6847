package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
	jwtSvc  JWTServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface, jwtSvc JWTServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		jwtSvc:  jwtSvc,
	}
}

// @Summary Register a new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration details"
// @Success 201 {object} shared.Response{data=dto.UserInfo}
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError("Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Register(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "User registered successfully", resp)
}

// @Summary Login
// @Description Authenticate with email or username and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError("Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Login(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}

// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshRequest body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} shared.Response{data=dto.TokenPair}
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError("Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Refresh(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Token refreshed successfully", resp)
}

// @Summary Logout
// @Description Revoke the presented access token
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	token, err := h.jwtSvc.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return shared.NewUnauthorizedError(err.Error())
	}

	if err := h.authSvc.Logout(c.Context(), token); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Logged out successfully", nil)
}

// @Summary Current user
// @Description Return the authenticated user's account info
// @Tags auth
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.UserInfo}
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	info, err := h.authSvc.GetUserInfo(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", info)
}
