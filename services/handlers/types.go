package handlers

import (
	"context"

	"github.com/studypool/studypool_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.UserInfo, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(req dto.RefreshTokenRequest) (*dto.TokenPair, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(userID string) (*dto.UserInfo, error)
	AdminListUsers(req dto.PaginationRequest, search string) (*dto.AdminUserListResponse, error)
	AdminUpdateUser(userID string, req dto.AdminUpdateUserRequest) (*dto.AdminUserInfo, error)
	AdminDeleteUser(userID string) error
}

type JWTServiceInterface interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
}

type MaterialServiceInterface interface {
	Upload(ctx context.Context, uploaderID string, req dto.UploadMaterialRequest, filename, declaredMime string, content []byte) (*dto.MaterialResponse, error)
	List(ctx context.Context, req dto.ListMaterialsRequest) (*dto.MaterialListResponse, error)
	ListSubjects() (*dto.SubjectListResponse, error)
	Get(materialID string) (*dto.MaterialResponse, error)
	Download(materialID string) (*dto.DownloadResponse, error)
	Delete(ctx context.Context, materialID, userID, role string) error
}

type CommentServiceInterface interface {
	Create(materialID, authorID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListByMaterial(materialID string) (*dto.CommentListResponse, error)
	Delete(commentID, userID, role string) error
}
