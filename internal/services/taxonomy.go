package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/authz"
	"quill/internal/errs"
	"quill/internal/logging"
	"quill/internal/models"
	"quill/internal/store"
	"quill/internal/utils"
)

const (
	maxCategoryName        = 50
	maxCategoryDescription = 500
	maxTagName             = 30
	maxTagDescription      = 200

	// resolveAttempts bounds lookup, insert, refetch rounds under contention.
	resolveAttempts = 5
)

// TaxonomyService resolves and manages categories and tags.
type TaxonomyService struct {
	store *store.Store
	log   *slog.Logger
}

func NewTaxonomyService(st *store.Store, logger *slog.Logger) *TaxonomyService {
	return &TaxonomyService{store: st, log: logging.Component(logger, "taxonomy")}
}

// ResolveCategory returns the id of the category matching label by name
// (case-insensitive) or slug, creating it when absent. Concurrent calls
// with the same label return the same id.
func (s *TaxonomyService) ResolveCategory(ctx context.Context, label string) (uint, error) {
	label = strings.TrimSpace(label)
	if err := checkLabel("category", label, maxCategoryName); err != nil {
		return 0, err
	}
	return findOrCreate(ctx, s.log, "category", label,
		s.store.FindCategoryByLabel,
		func(ctx context.Context) (uint, error) {
			c := &models.Category{
				Name:        utils.Capitalize(label),
				Slug:        utils.Slugify(label),
				Description: fmt.Sprintf("Articles about %s", label),
				Image:       models.DefaultCategoryImage,
			}
			err := s.store.InsertCategory(ctx, c)
			return c.ID, err
		},
		func(c *models.Category) uint { return c.ID },
	)
}

// ResolveTag is ResolveCategory for tags.
func (s *TaxonomyService) ResolveTag(ctx context.Context, label string) (uint, error) {
	label = strings.TrimSpace(label)
	if err := checkLabel("tag", label, maxTagName); err != nil {
		return 0, err
	}
	return findOrCreate(ctx, s.log, "tag", label,
		s.store.FindTagByLabel,
		func(ctx context.Context) (uint, error) {
			t := &models.Tag{
				Name:        utils.Capitalize(label),
				Slug:        utils.Slugify(label),
				Description: fmt.Sprintf("Posts tagged %s", label),
			}
			err := s.store.InsertTag(ctx, t)
			return t.ID, err
		},
		func(t *models.Tag) uint { return t.ID },
	)
}

func checkLabel(field, label string, max int) error {
	if label == "" {
		return errs.Validation(field, "Please add a %s name", field)
	}
	if utils.RuneLen(label) > max {
		return errs.Validation(field, "%s name cannot be more than %d characters", utils.Capitalize(field), max)
	}
	if utils.Slugify(label) == "" {
		return errs.Validation(field, "%s name must contain a letter or digit", utils.Capitalize(field))
	}
	return nil
}

// findOrCreate looks label up, inserts when missing and, when the insert
// loses a race to a concurrent writer, fetches the winner instead.
func findOrCreate[T any](
	ctx context.Context,
	log *slog.Logger,
	kind, label string,
	find func(context.Context, string) (*T, error),
	insert func(context.Context) (uint, error),
	idOf func(*T) uint,
) (uint, error) {
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		found, err := find(ctx, label)
		if err == nil {
			return idOf(found), nil
		}
		if !errs.Is(err, errs.KindNotFound) {
			return 0, err
		}

		id, err := insert(ctx)
		if err == nil {
			log.Info("[Taxonomy] created", "kind", kind, "label", label, "id", id)
			return id, nil
		}
		if !errs.Is(err, errs.KindConflict) {
			return 0, err
		}
		log.Debug("[Taxonomy] concurrent create, refetching", "kind", kind, "label", label)
	}
	return 0, errs.Server("Server Error", fmt.Errorf("resolve %s %q: still conflicting after %d attempts", kind, label, resolveAttempts))
}

// CategoryInput carries create and update fields. Nil fields are left unchanged.
type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func (in CategoryInput) validate(creating bool) error {
	if creating && (in.Name == nil || strings.TrimSpace(*in.Name) == "") {
		return errs.Validation("name", "Please add a category name")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return errs.Validation("name", "Please add a category name")
		}
		if utils.RuneLen(name) > maxCategoryName {
			return errs.Validation("name", "Category name cannot be more than %d characters", maxCategoryName)
		}
	}
	if in.Description != nil && utils.RuneLen(*in.Description) > maxCategoryDescription {
		return errs.Validation("description", "Description cannot be more than %d characters", maxCategoryDescription)
	}
	return nil
}

func (in CategoryInput) apply(c *models.Category) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Image != nil {
		c.Image = *in.Image
	}
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *TaxonomyService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if !utils.IsSlug(slug) {
		return nil, errs.NotFound("Category not found")
	}
	return s.store.GetCategoryBySlug(ctx, slug)
}

// CategoryPosts pages through the published posts of a category.
func (s *TaxonomyService) CategoryPosts(ctx context.Context, id uint, page, limit int) (*Page[models.Post], error) {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	page, limit = NormalizePage(page, limit)
	posts, total, err := s.store.PostsInCategory(ctx, id, offsetOf(page, limit), limit)
	if err != nil {
		return nil, err
	}
	return newPage(posts, total, page, limit), nil
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, in CategoryInput, p *authz.Principal) (*models.Category, error) {
	if err := authz.RequireRole(p, models.RoleAuthor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}
	c := &models.Category{Image: models.DefaultCategoryImage}
	in.apply(c)
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("[Taxonomy] category created", "id", c.ID, "slug", c.Slug, "by", p.ID)
	return c, nil
}

func (s *TaxonomyService) UpdateCategory(ctx context.Context, id uint, in CategoryInput, p *authz.Principal) (*models.Category, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}
	prev, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *prev
	in.apply(&next)
	if err := s.store.UpdateCategory(ctx, prev, &next); err != nil {
		return nil, err
	}
	return s.store.GetCategory(ctx, id)
}

func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uint, p *authz.Principal) error {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.log.Info("[Taxonomy] category deleted", "id", id, "by", p.ID)
	return nil
}

// TagInput carries create and update fields. Nil fields are left unchanged.
type TagInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (in TagInput) validate(creating bool) error {
	if creating && (in.Name == nil || strings.TrimSpace(*in.Name) == "") {
		return errs.Validation("name", "Please add a tag name")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return errs.Validation("name", "Please add a tag name")
		}
		if utils.RuneLen(name) > maxTagName {
			return errs.Validation("name", "Tag name cannot be more than %d characters", maxTagName)
		}
	}
	if in.Description != nil && utils.RuneLen(*in.Description) > maxTagDescription {
		return errs.Validation("description", "Description cannot be more than %d characters", maxTagDescription)
	}
	return nil
}

func (in TagInput) apply(t *models.Tag) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.store.ListTags(ctx)
}

func (s *TaxonomyService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.store.GetTag(ctx, id)
}

func (s *TaxonomyService) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	if !utils.IsSlug(slug) {
		return nil, errs.NotFound("Tag not found")
	}
	return s.store.GetTagBySlug(ctx, slug)
}

func (s *TaxonomyService) CreateTag(ctx context.Context, in TagInput, p *authz.Principal) (*models.Tag, error) {
	if err := authz.RequireRole(p, models.RoleAuthor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}
	t := &models.Tag{}
	in.apply(t)
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("[Taxonomy] tag created", "id", t.ID, "slug", t.Slug, "by", p.ID)
	return t, nil
}

func (s *TaxonomyService) UpdateTag(ctx context.Context, id uint, in TagInput, p *authz.Principal) (*models.Tag, error) {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}
	prev, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *prev
	in.apply(&next)
	if err := s.store.UpdateTag(ctx, prev, &next); err != nil {
		return nil, err
	}
	return s.store.GetTag(ctx, id)
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, id uint, p *authz.Principal) error {
	if err := authz.RequireRole(p, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return err
	}
	s.log.Info("[Taxonomy] tag deleted", "id", id, "by", p.ID)
	return nil
}
