package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"quill/internal/errs"
	"quill/internal/models"
)

// PostQuery selects a page of posts. Where is any squirrel condition over
// the posts table; nil selects every post.
type PostQuery struct {
	Where  sq.Sqlizer
	Offset int
	Limit  int
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	derivePost(nil, p)
	return s.writeWithUniqueSlug(ctx, &models.Post{}, slugBase(p.Title, "post"), 0, "title", func(tx *gorm.DB, slug string) error {
		p.ID = 0
		p.Slug = slug
		return tx.Omit("Tags.*").Create(p).Error
	})
}

// UpdatePost persists next over prev, re-running the derivations. Views are
// never written here. Tags are replaced only when replaceTags is set.
func (s *Store) UpdatePost(ctx context.Context, prev, next *models.Post, replaceTags bool) error {
	reslug := derivePost(prev, next)

	write := func(db *gorm.DB, slug string) error {
		return db.Transaction(func(tx *gorm.DB) error {
			next.Slug = slug
			err := tx.Model(&models.Post{}).Where("id = ?", next.ID).Updates(map[string]any{
				"title":          next.Title,
				"slug":           next.Slug,
				"excerpt":        next.Excerpt,
				"content":        next.Content,
				"featured_image": next.FeaturedImage,
				"category_id":    next.CategoryID,
				"status":         next.Status,
				"is_featured":    next.IsFeatured,
				"read_time":      next.ReadTime,
				"seo":            next.SEO,
			}).Error
			if err != nil {
				return err
			}
			if !replaceTags {
				return nil
			}
			tags := tx.Model(&models.Post{ID: next.ID}).Association("Tags")
			if len(next.Tags) == 0 {
				return tags.Clear()
			}
			return tags.Replace(next.Tags)
		})
	}

	if !reslug {
		return translate(write(s.conn(ctx), next.Slug), "Post")
	}
	return s.writeWithUniqueSlug(ctx, &models.Post{}, slugBase(next.Title, "post"), next.ID, "title", write)
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var p models.Post
	err := s.conn(ctx).Preload("Author").Preload("Category").Preload("Tags").First(&p, id).Error
	if err != nil {
		return nil, translate(err, "Post")
	}
	return &p, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	err := s.conn(ctx).Preload("Author").Preload("Category").Preload("Tags").Where("slug = ?", slug).First(&p).Error
	if err != nil {
		return nil, translate(err, "Post")
	}
	return &p, nil
}

// IncrementViews adds one view with a single UPDATE so concurrent readers
// never lose an increment.
func (s *Store) IncrementViews(ctx context.Context, id uint) error {
	res := s.conn(ctx).Model(&models.Post{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return translate(res.Error, "Post")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Post not found")
	}
	return nil
}

// DeletePost removes the post and its tag links. Comments are kept.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	res := s.conn(ctx).Select("Tags").Delete(&models.Post{ID: id})
	if res.Error != nil {
		return translate(res.Error, "Post")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Post not found")
	}
	return nil
}

// FindPosts returns one page, newest first, and the size of the whole selection.
func (s *Store) FindPosts(ctx context.Context, q PostQuery) ([]models.Post, int64, error) {
	var where string
	var args []any
	if q.Where != nil {
		var err error
		if where, args, err = q.Where.ToSql(); err != nil {
			return nil, 0, errs.Server("Server Error", err)
		}
	}
	scoped := func() *gorm.DB {
		db := s.conn(ctx).Model(&models.Post{})
		if where != "" {
			db = db.Where(where, args...)
		}
		return db
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Post")
	}

	posts := []models.Post{}
	db := scoped().Preload("Author").Preload("Category").Preload("Tags").
		Order("created_at DESC").Order("id DESC").
		Offset(q.Offset)
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if err := db.Find(&posts).Error; err != nil {
		return nil, 0, translate(err, "Post")
	}
	return posts, total, nil
}

// PostsInCategory lists the published posts of a category.
func (s *Store) PostsInCategory(ctx context.Context, categoryID uint, offset, limit int) ([]models.Post, int64, error) {
	return s.FindPosts(ctx, PostQuery{
		Where:  sq.Eq{"status": models.PostPublished, "category_id": categoryID},
		Offset: offset,
		Limit:  limit,
	})
}
