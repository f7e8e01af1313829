package store

import (
	"context"

	"quill/internal/errs"
	"quill/internal/models"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	return translate(s.conn(ctx).Omit("User").Create(c).Error, "Comment")
}

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.conn(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, translate(err, "Comment")
	}
	return &c, nil
}

func (s *Store) UpdateCommentContent(ctx context.Context, id uint, content string) error {
	res := s.conn(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return translate(res.Error, "Comment")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Comment not found")
	}
	return nil
}

// TransitionComment moves a comment to status `to` if its current status is
// one of from. It reports whether a row changed; the check and the write are
// one UPDATE statement.
func (s *Store) TransitionComment(ctx context.Context, id uint, to models.CommentStatus, from ...models.CommentStatus) (bool, error) {
	res := s.conn(ctx).Model(&models.Comment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error, "Comment")
	}
	return res.RowsAffected > 0, nil
}

// DeleteComment removes one comment. Its replies are kept.
func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translate(res.Error, "Comment")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Comment not found")
	}
	return nil
}

// RootComments lists the top level comments of a post in the given status,
// oldest first.
func (s *Store) RootComments(ctx context.Context, postID uint, status models.CommentStatus) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.conn(ctx).Preload("User").
		Where("post_id = ? AND parent_id IS NULL AND status = ?", postID, status).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "Comment")
	}
	return comments, nil
}

// RepliesOf lists the direct replies of a comment in the given status, oldest first.
func (s *Store) RepliesOf(ctx context.Context, commentID uint, status models.CommentStatus) ([]models.Comment, error) {
	replies, err := s.RepliesOfAll(ctx, []uint{commentID}, status)
	if err != nil {
		return nil, err
	}
	if r := replies[commentID]; r != nil {
		return r, nil
	}
	return []models.Comment{}, nil
}

// RepliesOfAll is RepliesOf for many parents in one query, keyed by parent id.
func (s *Store) RepliesOfAll(ctx context.Context, parentIDs []uint, status models.CommentStatus) (map[uint][]models.Comment, error) {
	out := make(map[uint][]models.Comment, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	var replies []models.Comment
	err := s.conn(ctx).Preload("User").
		Where("parent_id IN ? AND status = ?", parentIDs, status).
		Order("created_at ASC").Order("id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, translate(err, "Comment")
	}
	for _, r := range replies {
		out[*r.ParentID] = append(out[*r.ParentID], r)
	}
	return out, nil
}

// CommentsByStatus pages through all comments in a status, oldest first.
func (s *Store) CommentsByStatus(ctx context.Context, status models.CommentStatus, offset, limit int) ([]models.Comment, int64, error) {
	var total int64
	if err := s.conn(ctx).Model(&models.Comment{}).Where("status = ?", status).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Comment")
	}
	comments := []models.Comment{}
	err := s.conn(ctx).Preload("User").
		Where("status = ?", status).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, translate(err, "Comment")
	}
	return comments, total, nil
}

func (s *Store) CountComments(ctx context.Context, postID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, translate(err, "Comment")
}
