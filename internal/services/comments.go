package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"quill/internal/authz"
	"quill/internal/errs"
	"quill/internal/logging"
	"quill/internal/models"
	"quill/internal/store"
	"quill/internal/utils"
)

const (
	maxCommentLength = 1000
	maxGuestName     = 50
)

var guestEmailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// CommentInput is a new comment. The guest fields are read only when the
// caller is not authenticated.
type CommentInput struct {
	PostID     uint   `json:"postId"`
	ParentID   *uint  `json:"parentId"`
	Content    string `json:"content"`
	GuestName  string `json:"guestName"`
	GuestEmail string `json:"guestEmail"`
}

// CommentService is the comment thread engine: threading, authorship and
// moderation.
type CommentService struct {
	store *store.Store
	log   *slog.Logger
}

func NewCommentService(st *store.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: st, log: logging.Component(logger, "comments")}
}

// cleanContent trims, strips script blocks and enforces the length limit.
func cleanContent(raw string) (string, error) {
	content := strings.TrimSpace(utils.StripScripts(raw))
	if content == "" {
		return "", errs.Validation("content", "Please add a comment")
	}
	if utils.RuneLen(content) > maxCommentLength {
		return "", errs.Validation("content", "Comment cannot be more than %d characters", maxCommentLength)
	}
	return content, nil
}

func guestAuthor(name, email string) (models.GuestAuthor, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.GuestAuthor{}, errs.Validation("guest", "Name and email are required for guest comments")
	}
	if utils.RuneLen(name) > maxGuestName {
		return models.GuestAuthor{}, errs.Validation("guestName", "Guest name cannot be more than %d characters", maxGuestName)
	}
	if !guestEmailPattern.MatchString(email) {
		return models.GuestAuthor{}, errs.Validation("guestEmail", "Please add a valid email")
	}
	return models.GuestAuthor{Name: name, Email: email}, nil
}

// AddComment attaches a comment to a post. Guests and plain users enter
// moderation as pending; authors and admins are approved immediately.
func (s *CommentService) AddComment(ctx context.Context, in CommentInput, p *authz.Principal) (*models.Comment, error) {
	if in.PostID == 0 {
		return nil, errs.Validation("postId", "Content and post ID are required")
	}
	content, err := cleanContent(in.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.viewablePost(ctx, in.PostID, p)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.store.GetComment(ctx, *in.ParentID)
		if err != nil {
			if errs.Is(err, errs.KindNotFound) {
				return nil, errs.NotFound("Parent comment not found")
			}
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, errs.Validation("parentId", "Parent comment belongs to another post")
		}
	}

	var author models.Author
	var role models.Role
	if p != nil {
		author, role = models.UserAuthor{UserID: p.ID}, p.Role
	} else {
		guest, err := guestAuthor(in.GuestName, in.GuestEmail)
		if err != nil {
			return nil, err
		}
		author = guest
	}

	c := &models.Comment{
		Content:  content,
		PostID:   post.ID,
		ParentID: in.ParentID,
		Status:   models.InitialCommentStatus(author, role),
	}
	c.SetAuthor(author)
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("[Comments] added", "id", c.ID, "post", post.ID, "guest", c.IsGuest(), "status", c.Status)
	return s.store.GetComment(ctx, c.ID)
}

// viewablePost loads a post and hides drafts from anyone but their owner
// and admins.
func (s *CommentService) viewablePost(ctx context.Context, postID uint, p *authz.Principal) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(post, p) {
		return nil, errs.NotFound("Post not found")
	}
	return post, nil
}

// ListApprovedRootComments returns the approved top level comments of a
// post, each with its direct approved replies. Deeper replies are not expanded.
func (s *CommentService) ListApprovedRootComments(ctx context.Context, postID uint, p *authz.Principal) ([]models.Comment, error) {
	if _, err := s.viewablePost(ctx, postID, p); err != nil {
		return nil, err
	}
	return s.approvedThread(ctx, postID)
}

// approvedThread assumes the caller already checked the post is visible.
func (s *CommentService) approvedThread(ctx context.Context, postID uint) ([]models.Comment, error) {
	roots, err := s.store.RootComments(ctx, postID, models.CommentApproved)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(roots))
	for i := range roots {
		ids[i] = roots[i].ID
	}
	replies, err := s.store.RepliesOfAll(ctx, ids, models.CommentApproved)
	if err != nil {
		return nil, err
	}
	for i := range roots {
		roots[i].Replies = replies[roots[i].ID]
	}
	return roots, nil
}

// Replies lists the approved direct replies of a comment on a post the
// caller can see.
func (s *CommentService) Replies(ctx context.Context, commentID uint, p *authz.Principal) ([]models.Comment, error) {
	parent, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.viewablePost(ctx, parent.PostID, p); err != nil {
		return nil, err
	}
	return s.store.RepliesOf(ctx, commentID, models.CommentApproved)
}

// UpdateComment edits the content. Only the writing user or an admin may
// edit; guest comments only an admin.
func (s *CommentService) UpdateComment(ctx context.Context, id uint, content string, p *authz.Principal) (*models.Comment, error) {
	if err := authz.RequirePrincipal(p); err != nil {
		return nil, err
	}
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeMutation(c, p, "comment"); err != nil {
		return nil, err
	}
	cleaned, err := cleanContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateCommentContent(ctx, id, cleaned); err != nil {
		return nil, err
	}
	return s.store.GetComment(ctx, id)
}

// DeleteComment removes one comment. Replies stay in place.
func (s *CommentService) DeleteComment(ctx context.Context, id uint, p *authz.Principal) error {
	if err := authz.RequirePrincipal(p); err != nil {
		return err
	}
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeMutation(c, p, "comment"); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return err
	}
	s.log.Info("[Comments] deleted", "id", id, "by", p.ID)
	return nil
}

// ApproveComment makes a pending or rejected comment visible. Approving an
// approved comment is a no-op.
func (s *CommentService) ApproveComment(ctx context.Context, id uint, p *authz.Principal) (*models.Comment, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	changed, err := s.store.TransitionComment(ctx, id, models.CommentApproved, models.CommentPending, models.CommentRejected)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		s.log.Info("[Comments] approved", "id", id, "by", p.ID)
	}
	return c, nil
}

// RejectComment hides a pending comment. Approved comments stay approved.
func (s *CommentService) RejectComment(ctx context.Context, id uint, p *authz.Principal) (*models.Comment, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	changed, err := s.store.TransitionComment(ctx, id, models.CommentRejected, models.CommentPending)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed && c.Status == models.CommentApproved {
		return nil, &errs.Error{Kind: errs.KindConflict, Field: "status", Message: "Approved comments cannot be rejected"}
	}
	if changed {
		s.log.Info("[Comments] rejected", "id", id, "by", p.ID)
	}
	return c, nil
}

// ListPendingComments is the moderation queue, oldest first.
func (s *CommentService) ListPendingComments(ctx context.Context, p *authz.Principal, page, limit int) (*Page[models.Comment], error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	page, limit = NormalizePage(page, limit)
	comments, total, err := s.store.CommentsByStatus(ctx, models.CommentPending, offsetOf(page, limit), limit)
	if err != nil {
		return nil, err
	}
	return newPage(comments, total, page, limit), nil
}
