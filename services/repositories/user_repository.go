package repositories

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studypool/studypool_api/model"
	"gorm.io/gorm"
)

// UserRepository handles user-related database operations. Errors are
// returned raw; the postgres service maps them to API errors.
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetByID(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) Create(email, username, hashedPassword, role string) (*model.User, error) {
	id, _ := uuid.NewV7()
	user := &model.User{
		ID:        id.String(),
		Email:     email,
		Username:  username,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := ds.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ds *UserRepository) Update(user *model.User) error {
	user.UpdatedAt = time.Now()
	return ds.db.Save(user).Error
}

func (ds *UserRepository) UpdateLastLogin(userID string) error {
	now := time.Now()
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_login": now,
		"updated_at": now,
	}).Error
}

func (ds *UserRepository) UpdateRole(userID, role string) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"role":       role,
		"updated_at": time.Now(),
	}).Error
}

// List returns a page of users, newest first, optionally filtered by a
// case-insensitive username/email search.
func (ds *UserRepository) List(page, limit int, search string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := ds.db.Model(&model.User{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", searchPattern, searchPattern)
	}

	query.Count(&total)

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error

	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (ds *UserRepository) Delete(userID string) error {
	return ds.db.Where("id = ?", userID).Delete(&model.User{}).Error
}

func (ds *UserRepository) CountByRole(role string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}
