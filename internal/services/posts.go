package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"quill/internal/authz"
	"quill/internal/errs"
	"quill/internal/logging"
	"quill/internal/models"
	"quill/internal/store"
	"quill/internal/utils"
)

const (
	maxTitle   = 200
	maxExcerpt = 500
)

// TaxonRef names a category or tag either by id (JSON number) or by a
// free-text label (JSON string).
type TaxonRef struct {
	ID    uint
	Label string
}

func (r *TaxonRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Label)
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("must be an id or a name")
	}
	r.ID = id
	return nil
}

// PostInput carries create and update fields. Nil fields are left unchanged.
type PostInput struct {
	Title         *string            `json:"title"`
	Excerpt       *string            `json:"excerpt"`
	Content       *string            `json:"content"`
	FeaturedImage *string            `json:"featuredImage"`
	Category      *TaxonRef          `json:"category"`
	Tags          *[]TaxonRef        `json:"tags"`
	Status        *models.PostStatus `json:"status"`
	IsFeatured    *bool              `json:"isFeatured"`
	SEO           *models.SEO        `json:"seo"`
}

func (in PostInput) validate(creating bool) error {
	if creating {
		switch {
		case in.Title == nil || strings.TrimSpace(*in.Title) == "":
			return errs.Validation("title", "Please add a title")
		case in.Excerpt == nil || strings.TrimSpace(*in.Excerpt) == "":
			return errs.Validation("excerpt", "Please add an excerpt")
		case in.Content == nil || strings.TrimSpace(*in.Content) == "":
			return errs.Validation("content", "Please add content")
		case in.Category == nil:
			return errs.Validation("category", "Please add a category")
		}
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return errs.Validation("title", "Please add a title")
		}
		if utils.RuneLen(t) > maxTitle {
			return errs.Validation("title", "Title cannot be more than %d characters", maxTitle)
		}
	}
	if in.Excerpt != nil {
		if strings.TrimSpace(*in.Excerpt) == "" {
			return errs.Validation("excerpt", "Please add an excerpt")
		}
		if utils.RuneLen(*in.Excerpt) > maxExcerpt {
			return errs.Validation("excerpt", "Excerpt cannot be more than %d characters", maxExcerpt)
		}
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return errs.Validation("content", "Please add content")
	}
	if in.Status != nil && !models.ValidPostStatus(*in.Status) {
		return errs.Validation("status", "Status must be draft or published")
	}
	return nil
}

// PostService owns post create, update, delete and reads.
type PostService struct {
	store    *store.Store
	taxonomy *TaxonomyService
	comments *CommentService
	log      *slog.Logger
}

func NewPostService(st *store.Store, taxonomy *TaxonomyService, comments *CommentService, logger *slog.Logger) *PostService {
	return &PostService{store: st, taxonomy: taxonomy, comments: comments, log: logging.Component(logger, "posts")}
}

func (s *PostService) CreatePost(ctx context.Context, in PostInput, p *authz.Principal) (*models.Post, error) {
	if err := authz.RequireRole(p, models.RoleUser, models.RoleAuthor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: p.ID, Status: models.PostDraft}
	if err := s.apply(ctx, in, post); err != nil {
		return nil, err
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.log.Info("[Posts] created", "id", post.ID, "slug", post.Slug, "author", p.ID)
	return s.store.GetPost(ctx, post.ID)
}

func (s *PostService) UpdatePost(ctx context.Context, id uint, in PostInput, p *authz.Principal) (*models.Post, error) {
	if err := authz.RequirePrincipal(p); err != nil {
		return nil, err
	}
	prev, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeMutation(prev, p, "post"); err != nil {
		return nil, err
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}

	next := *prev
	next.Author, next.Category = nil, nil
	if err := s.apply(ctx, in, &next); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePost(ctx, prev, &next, in.Tags != nil); err != nil {
		return nil, err
	}
	return s.store.GetPost(ctx, id)
}

func (s *PostService) DeletePost(ctx context.Context, id uint, p *authz.Principal) error {
	if err := authz.RequirePrincipal(p); err != nil {
		return err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeMutation(post, p, "post"); err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.log.Info("[Posts] deleted", "id", id, "by", p.ID)
	return nil
}

// GetPost returns a post for display and counts the view. Drafts are only
// visible to their author and admins.
func (s *PostService) GetPost(ctx context.Context, id uint, p *authz.Principal) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, post, p)
}

func (s *PostService) GetPostBySlug(ctx context.Context, slug string, p *authz.Principal) (*models.Post, error) {
	if !utils.IsSlug(slug) {
		return nil, errs.NotFound("Post not found")
	}
	post, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, post, p)
}

func (s *PostService) present(ctx context.Context, post *models.Post, p *authz.Principal) (*models.Post, error) {
	if !authz.CanView(post, p) {
		return nil, errs.NotFound("Post not found")
	}
	if err := s.store.IncrementViews(ctx, post.ID); err != nil {
		return nil, err
	}
	post.Views++

	comments, err := s.comments.approvedThread(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	post.ContentHTML = utils.RenderMarkdown(post.Content)
	return post, nil
}

// ListPostsByAuthor lists every post of an author, drafts included, newest first.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID uint, p *authz.Principal, page, limit int) (*Page[models.Post], error) {
	if err := authz.AuthorizeAuthorListing(authorID, p); err != nil {
		return nil, err
	}
	page, limit = NormalizePage(page, limit)
	posts, total, err := s.store.FindPosts(ctx, buildPostQuery(postCriteria{AuthorID: authorID}, page, limit))
	if err != nil {
		return nil, err
	}
	return newPage(posts, total, page, limit), nil
}

// apply copies the set fields of in onto post, resolving taxonomy references.
func (s *PostService) apply(ctx context.Context, in PostInput, post *models.Post) error {
	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*in.FeaturedImage)
	}
	if in.Status != nil {
		post.Status = *in.Status
	}
	if in.IsFeatured != nil {
		post.IsFeatured = *in.IsFeatured
	}
	if in.SEO != nil {
		post.SEO = datatypes.NewJSONType(*in.SEO)
	}

	if in.Category != nil {
		id, err := s.resolveCategoryRef(ctx, *in.Category)
		if err != nil {
			return err
		}
		post.CategoryID = id
	}
	if in.Tags != nil {
		tags, err := s.resolveTagRefs(ctx, *in.Tags)
		if err != nil {
			return err
		}
		post.Tags = tags
	}
	return nil
}

func (s *PostService) resolveCategoryRef(ctx context.Context, ref TaxonRef) (uint, error) {
	if ref.ID != 0 {
		if _, err := s.store.GetCategory(ctx, ref.ID); err != nil {
			if errs.Is(err, errs.KindNotFound) {
				return 0, errs.Validation("category", "Category %d does not exist", ref.ID)
			}
			return 0, err
		}
		return ref.ID, nil
	}
	return s.taxonomy.ResolveCategory(ctx, ref.Label)
}

func (s *PostService) resolveTagRefs(ctx context.Context, refs []TaxonRef) ([]models.Tag, error) {
	ids := make([]uint, 0, len(refs))
	seen := make(map[uint]bool, len(refs))
	for _, ref := range refs {
		id := ref.ID
		if id == 0 {
			var err error
			if id, err = s.taxonomy.ResolveTag(ctx, ref.Label); err != nil {
				return nil, err
			}
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	tags, err := s.store.TagsByIDs(ctx, ids)
	if errs.Is(err, errs.KindNotFound) {
		return nil, errs.Validation("tags", "Tag does not exist")
	}
	return tags, err
}
