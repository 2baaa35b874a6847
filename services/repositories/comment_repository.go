package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/studypool/studypool_api/model"
	"gorm.io/gorm"
)

// CommentRepository handles threaded material comments.
type CommentRepository struct {
	BaseRepository
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *CommentRepository) Create(comment *model.Comment) error {
	if comment.ID == "" {
		id, _ := uuid.NewV7()
		comment.ID = id.String()
	}
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()

	return ds.db.Create(comment).Error
}

func (ds *CommentRepository) GetByID(commentID string) (*model.Comment, error) {
	var comment model.Comment
	if err := ds.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByMaterial returns every comment on a material, oldest first, so the
// service can assemble the reply tree in one pass.
func (ds *CommentRepository) ListByMaterial(materialID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := ds.db.Preload("Author").
		Where("material_id = ?", materialID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CollectSubtreeIDs walks the reply tree breadth-first and returns the root
// comment ID plus the IDs of all its descendants.
func (ds *CommentRepository) CollectSubtreeIDs(rootID string) ([]string, error) {
	ids := []string{rootID}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		var children []string
		err := ds.db.Model(&model.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error
		if err != nil {
			return nil, err
		}

		ids = append(ids, children...)
		frontier = children
	}

	return ids, nil
}

func (ds *CommentRepository) DeleteByIDs(commentIDs []string) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return ds.db.Where("id IN ?", commentIDs).Delete(&model.Comment{}).Error
}

func (ds *CommentRepository) DeleteByMaterial(materialID string) error {
	return ds.db.Where("material_id = ?", materialID).Delete(&model.Comment{}).Error
}

func (ds *CommentRepository) DeleteByAuthor(authorID string) error {
	return ds.db.Where("author_id = ?", authorID).Delete(&model.Comment{}).Error
}
