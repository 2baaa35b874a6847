package services

import (
	"errors"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/model"
	"github.com/studypool/studypool_api/shared"
)

// CommentService owns the threaded discussions under materials. Replies
// reference a parent on the same material; deleting a comment removes its
// whole subtree.
type CommentService struct {
	appContext.DefaultService

	postgresSvc *PostgresService
}

const COMMENT_SVC = "comment_svc"

func (svc CommentService) Id() string {
	return COMMENT_SVC
}

func (svc *CommentService) Start() error {
	svc.postgresSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

func (svc *CommentService) Create(materialID, authorID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if _, err := svc.postgresSvc.Materials().GetByID(materialID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Material not found")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	var parentID *string
	if req.ParentID != "" {
		parent, err := svc.postgresSvc.Comments().GetByID(req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, shared.NewBadRequestError("Parent comment not found")
			}
			return nil, svc.postgresSvc.HandleError(err)
		}
		if parent.MaterialID != materialID {
			return nil, shared.NewBadRequestError("Parent comment belongs to a different material")
		}
		parentID = &parent.ID
	}

	comment := &model.Comment{
		MaterialID: materialID,
		ParentID:   parentID,
		AuthorID:   authorID,
		Content:    req.Content,
	}

	if err := svc.postgresSvc.Comments().Create(comment); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	response := toCommentResponse(comment)
	return &response, nil
}

// ListByMaterial returns the material's comments as a nested tree, roots and
// children both ordered oldest first.
func (svc *CommentService) ListByMaterial(materialID string) (*dto.CommentListResponse, error) {
	if _, err := svc.postgresSvc.Materials().GetByID(materialID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Material not found")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	comments, err := svc.postgresSvc.Comments().ListByMaterial(materialID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	byID := make(map[string]bool, len(comments))
	for i := range comments {
		byID[comments[i].ID] = true
	}

	childrenByParent := make(map[string][]*model.Comment)
	var roots []*model.Comment
	for i := range comments {
		comment := &comments[i]
		// A reply whose parent row is gone surfaces as a root instead of
		// silently disappearing.
		if comment.ParentID == nil || !byID[*comment.ParentID] {
			roots = append(roots, comment)
			continue
		}
		childrenByParent[*comment.ParentID] = append(childrenByParent[*comment.ParentID], comment)
	}

	var build func(comment *model.Comment) dto.CommentResponse
	build = func(comment *model.Comment) dto.CommentResponse {
		response := toCommentResponse(comment)
		for _, child := range childrenByParent[comment.ID] {
			response.Children = append(response.Children, build(child))
		}
		return response
	}

	tree := make([]dto.CommentResponse, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}

	return &dto.CommentListResponse{
		Comments: tree,
		Total:    len(comments),
	}, nil
}

// Delete removes a comment and every reply underneath it. Allowed for the
// comment's author or an admin.
func (svc *CommentService) Delete(commentID, userID, role string) error {
	comment, err := svc.postgresSvc.Comments().GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError("Comment not found")
		}
		return svc.postgresSvc.HandleError(err)
	}

	if comment.AuthorID != userID && role != shared.RoleAdmin {
		return shared.NewForbiddenError("You do not own this comment")
	}

	subtreeIDs, err := svc.postgresSvc.Comments().CollectSubtreeIDs(commentID)
	if err != nil {
		return svc.postgresSvc.HandleError(err)
	}

	if err := svc.postgresSvc.Comments().DeleteByIDs(subtreeIDs); err != nil {
		return svc.postgresSvc.HandleError(err)
	}

	log.WithFields(log.Fields{
		"comment_id": commentID,
		"removed":    len(subtreeIDs),
		"deleted_by": userID,
	}).Info("Comment subtree deleted")

	return nil
}

func toCommentResponse(comment *model.Comment) dto.CommentResponse {
	response := dto.CommentResponse{
		ID:             comment.ID,
		MaterialID:     comment.MaterialID,
		AuthorID:       comment.AuthorID,
		AuthorUsername: comment.Author.Username,
		Content:        comment.Content,
		CreatedAt:      comment.CreatedAt,
	}

	if comment.ParentID != nil {
		response.ParentID = *comment.ParentID
	}

	return response
}
