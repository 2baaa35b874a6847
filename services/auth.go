package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/model"
	"github.com/studypool/studypool_api/shared"
)

// AuthService owns registration, login, token refresh, logout, and the auth
// middleware. Logged-out access tokens are blacklisted in Redis until their
// natural expiry.
type AuthService struct {
	appContext.DefaultService

	postgresSvc *PostgresService
	jwtSvc      *JWTService
	redisSvc    *RedisService
}

const AUTH_SVC = "auth_svc"

const bcryptCost = 12

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.postgresSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== ACCOUNT OPERATIONS ====================

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.UserInfo, error) {
	if _, err := svc.postgresSvc.Users().GetByEmail(req.Email); err == nil {
		return nil, shared.NewConflictError("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svc.postgresSvc.HandleError(err)
	}

	if _, err := svc.postgresSvc.Users().GetByUsername(req.Username); err == nil {
		return nil, shared.NewConflictError("Username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svc.postgresSvc.HandleError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create account")
	}

	user, err := svc.postgresSvc.Users().Create(req.Email, req.Username, string(hashedPassword), shared.RoleStudent)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	info := toUserInfo(user)
	return &info, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.postgresSvc.Users().GetByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError("Invalid credentials")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError("Invalid credentials")
	}

	if err := svc.postgresSvc.Users().UpdateLastLogin(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}
	user.LastLogin = time.Now()

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue tokens")
	}

	return &dto.LoginResponse{
		TokenPair: *pair,
		User:      toUserInfo(user),
	}, nil
}

func (svc *AuthService) Refresh(req dto.RefreshTokenRequest) (*dto.TokenPair, error) {
	claims, err := svc.jwtSvc.VerifyToken(req.RefreshToken)
	if err != nil || claims.TokenType != TokenTypeRefresh {
		return nil, shared.NewUnauthorizedError("Invalid refresh token")
	}

	// Re-read the user so a role change invalidates stale claims.
	user, err := svc.postgresSvc.Users().GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue tokens")
	}

	return pair, nil
}

func (svc *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := svc.jwtSvc.VerifyToken(token)
	if err != nil {
		return shared.NewUnauthorizedError("Invalid JWT token")
	}

	expTime, err := claims.GetExpirationTime()
	if err != nil {
		return shared.NewUnauthorizedError("Invalid JWT token")
	}

	ttl := time.Until(expTime.Time)
	if ttl <= 0 {
		return nil
	}

	if err := svc.redisSvc.Set(ctx, blacklistKey(token), "1", ttl); err != nil {
		log.WithError(err).Error("Failed to blacklist token")
		return shared.NewInternalError(err, "Failed to log out")
	}

	return nil
}

func (svc *AuthService) GetUserInfo(userID string) (*dto.UserInfo, error) {
	user, err := svc.postgresSvc.Users().GetByID(userID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	info := toUserInfo(user)
	return &info, nil
}

// ==================== ADMIN OPERATIONS ====================

func (svc *AuthService) AdminListUsers(req dto.PaginationRequest, search string) (*dto.AdminUserListResponse, error) {
	req.Normalize()

	users, total, err := svc.postgresSvc.Users().List(req.Page, req.Limit, search)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	infos := make([]dto.AdminUserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, toAdminUserInfo(&users[i]))
	}

	return &dto.AdminUserListResponse{
		Users:      infos,
		Pagination: dto.NewPaginationResponse(req.Page, req.Limit, total),
	}, nil
}

func (svc *AuthService) AdminUpdateUser(userID string, req dto.AdminUpdateUserRequest) (*dto.AdminUserInfo, error) {
	user, err := svc.postgresSvc.Users().GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("User not found")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	if req.Role != nil && *req.Role != user.Role {
		if user.Role == shared.RoleAdmin {
			if err := svc.ensureNotLastAdmin(); err != nil {
				return nil, err
			}
		}

		if err := svc.postgresSvc.Users().UpdateRole(userID, *req.Role); err != nil {
			return nil, svc.postgresSvc.HandleError(err)
		}
		user.Role = *req.Role

		log.WithFields(log.Fields{
			"user_id": userID,
			"role":    *req.Role,
		}).Info("User role updated")
	}

	info := toAdminUserInfo(user)
	return &info, nil
}

// AdminDeleteUser removes an account and its comments. Accounts that still
// own uploaded materials are refused; the materials must be deleted first.
func (svc *AuthService) AdminDeleteUser(userID string) error {
	user, err := svc.postgresSvc.Users().GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError("User not found")
		}
		return svc.postgresSvc.HandleError(err)
	}

	if user.Role == shared.RoleAdmin {
		if err := svc.ensureNotLastAdmin(); err != nil {
			return err
		}
	}

	uploads, err := svc.postgresSvc.Materials().CountByUploader(userID)
	if err != nil {
		return svc.postgresSvc.HandleError(err)
	}
	if uploads > 0 {
		return shared.NewConflictError("User still owns uploaded materials")
	}

	if err := svc.postgresSvc.Comments().DeleteByAuthor(userID); err != nil {
		return svc.postgresSvc.HandleError(err)
	}

	if err := svc.postgresSvc.Users().Delete(userID); err != nil {
		return svc.postgresSvc.HandleError(err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": user.Username,
	}).Info("User deleted")

	return nil
}

func (svc *AuthService) ensureNotLastAdmin() error {
	admins, err := svc.postgresSvc.Users().CountByRole(shared.RoleAdmin)
	if err != nil {
		return svc.postgresSvc.HandleError(err)
	}
	if admins <= 1 {
		return shared.NewConflictError("Cannot remove the last admin")
	}
	return nil
}

// ==================== MIDDLEWARE FUNCTIONS ====================

func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		if svc.isTokenBlacklisted(c.Context(), token) {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Token has been revoked")
		}

		claims, err := svc.jwtSvc.VerifyToken(token)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if claims.TokenType != TokenTypeAccess {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid token type")
		}

		if claims.UserID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, claims.UserID)
		c.Locals(shared.UserRole, claims.Role)
		return c.Next()
	}
}

// RequireAdmin gates a route on the admin role. It must run after
// RequiredAuth.
func (svc *AuthService) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(shared.UserRole).(string)
		if !ok || role != shared.RoleAdmin {
			return shared.ResponseJSON(c, http.StatusForbidden, "Forbidden", "Admin access required")
		}

		return c.Next()
	}
}

// ==================== HELPER FUNCTIONS ====================

func (svc *AuthService) isTokenBlacklisted(ctx context.Context, token string) bool {
	exists, err := svc.redisSvc.Exists(ctx, blacklistKey(token))
	if err != nil {
		// Do not lock users out because the blacklist is unreachable.
		log.WithError(err).Warn("Token blacklist check failed")
		return false
	}
	return exists
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token:blacklist:" + hex.EncodeToString(sum[:])
}

func toAdminUserInfo(user *model.User) dto.AdminUserInfo {
	info := dto.AdminUserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}

	if !user.LastLogin.IsZero() {
		lastLogin := user.LastLogin
		info.LastLoginAt = &lastLogin
	}

	return info
}

func toUserInfo(user *model.User) dto.UserInfo {
	info := dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}

	if !user.LastLogin.IsZero() {
		lastLogin := user.LastLogin
		info.LastLoginAt = &lastLogin
	}

	return info
}
