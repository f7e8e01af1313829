package store

import (
	"context"

	"gorm.io/gorm"

	"quill/internal/errs"
	"quill/internal/models"
	"quill/internal/utils"
)

type countRow struct {
	ID uint
	N  int64
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.conn(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, translate(err, "Category")
	}

	var rows []countRow
	err := s.conn(ctx).Model(&models.Post{}).
		Select("category_id AS id, COUNT(*) AS n").
		Where("status = ?", models.PostPublished).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "Category")
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ID] = r.N
	}
	for i := range categories {
		categories[i].PostCount = counts[categories[i].ID]
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "Category")
	}
	return &c, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err, "Category")
	}
	return &c, nil
}

// FindCategoryByLabel matches name case-insensitively or slug exactly.
func (s *Store) FindCategoryByLabel(ctx context.Context, label string) (*models.Category, error) {
	var c models.Category
	err := s.conn(ctx).
		Where("LOWER(name) = LOWER(?) OR slug = ?", label, utils.Slugify(label)).
		Order("id ASC").
		First(&c).Error
	if err != nil {
		return nil, translate(err, "Category")
	}
	return &c, nil
}

// CreateCategory inserts c with a free slug derived from its name.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.writeWithUniqueSlug(ctx, &models.Category{}, slugBase(c.Name, "category"), 0, "name", func(tx *gorm.DB, slug string) error {
		c.ID = 0
		c.Slug = slug
		return tx.Create(c).Error
	})
}

// InsertCategory inserts c as given. Any unique violation is a Conflict.
func (s *Store) InsertCategory(ctx context.Context, c *models.Category) error {
	return translate(s.conn(ctx).Create(c).Error, "Category")
}

func (s *Store) UpdateCategory(ctx context.Context, prev, next *models.Category) error {
	write := func(tx *gorm.DB, slug string) error {
		next.Slug = slug
		return tx.Model(&models.Category{}).Where("id = ?", next.ID).Updates(map[string]any{
			"name":        next.Name,
			"slug":        next.Slug,
			"description": next.Description,
			"image":       next.Image,
		}).Error
	}
	if !deriveTaxonReslug(prev.Name, next.Name, next.Slug) {
		err := write(s.conn(ctx), next.Slug)
		if isDuplicate(err) {
			return errs.Conflict("name", err)
		}
		return translate(err, "Category")
	}
	return s.writeWithUniqueSlug(ctx, &models.Category{}, slugBase(next.Name, "category"), next.ID, "name", write)
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return translate(res.Error, "Category")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Category not found")
	}
	return nil
}

func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.conn(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, translate(err, "Tag")
	}

	var rows []countRow
	err := s.conn(ctx).Table("post_tags").
		Select("post_tags.tag_id AS id, COUNT(*) AS n").
		Joins("JOIN posts ON posts.id = post_tags.post_id").
		Where("posts.status = ?", models.PostPublished).
		Group("post_tags.tag_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "Tag")
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ID] = r.N
	}
	for i := range tags {
		tags[i].PostCount = counts[tags[i].ID]
	}
	return tags, nil
}

func (s *Store) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var t models.Tag
	if err := s.conn(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err, "Tag")
	}
	return &t, nil
}

func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var t models.Tag
	if err := s.conn(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, translate(err, "Tag")
	}
	return &t, nil
}

// TagsByIDs loads the tags with the given ids. Missing ids are a NotFound.
func (s *Store) TagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, translate(err, "Tag")
	}
	if len(tags) != len(unique) {
		return nil, errs.NotFound("Tag not found")
	}
	return tags, nil
}

func (s *Store) FindTagByLabel(ctx context.Context, label string) (*models.Tag, error) {
	var t models.Tag
	err := s.conn(ctx).
		Where("LOWER(name) = LOWER(?) OR slug = ?", label, utils.Slugify(label)).
		Order("id ASC").
		First(&t).Error
	if err != nil {
		return nil, translate(err, "Tag")
	}
	return &t, nil
}

func (s *Store) CreateTag(ctx context.Context, t *models.Tag) error {
	return s.writeWithUniqueSlug(ctx, &models.Tag{}, slugBase(t.Name, "tag"), 0, "name", func(tx *gorm.DB, slug string) error {
		t.ID = 0
		t.Slug = slug
		return tx.Create(t).Error
	})
}

func (s *Store) InsertTag(ctx context.Context, t *models.Tag) error {
	return translate(s.conn(ctx).Create(t).Error, "Tag")
}

func (s *Store) UpdateTag(ctx context.Context, prev, next *models.Tag) error {
	write := func(tx *gorm.DB, slug string) error {
		next.Slug = slug
		return tx.Model(&models.Tag{}).Where("id = ?", next.ID).Updates(map[string]any{
			"name":        next.Name,
			"slug":        next.Slug,
			"description": next.Description,
		}).Error
	}
	if !deriveTaxonReslug(prev.Name, next.Name, next.Slug) {
		err := write(s.conn(ctx), next.Slug)
		if isDuplicate(err) {
			return errs.Conflict("name", err)
		}
		return translate(err, "Tag")
	}
	return s.writeWithUniqueSlug(ctx, &models.Tag{}, slugBase(next.Name, "tag"), next.ID, "name", write)
}

// DeleteTag removes the tag and its post links.
func (s *Store) DeleteTag(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return translate(err, "Tag")
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return translate(res.Error, "Tag")
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("Tag not found")
		}
		return nil
	})
}
