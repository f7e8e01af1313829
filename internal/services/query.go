package services

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"quill/internal/errs"
	"quill/internal/models"
	"quill/internal/store"
	"quill/internal/utils"
)

// PostFilter is a public listing request. Category and Tag accept an id or
// a slug, Author an id. Empty fields do not filter.
type PostFilter struct {
	Category string
	Tag      string
	Author   string
	Search   string
}

// postCriteria is a PostFilter with references resolved to ids.
type postCriteria struct {
	PublishedOnly bool
	CategoryID    uint
	TagID         uint
	AuthorID      uint
	Search        string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildPostQuery turns criteria into the store query for one page.
func buildPostQuery(c postCriteria, page, limit int) store.PostQuery {
	where := sq.And{}
	if c.PublishedOnly {
		where = append(where, sq.Eq{"status": models.PostPublished})
	}
	if c.CategoryID != 0 {
		where = append(where, sq.Eq{"category_id": c.CategoryID})
	}
	if c.AuthorID != 0 {
		where = append(where, sq.Eq{"author_id": c.AuthorID})
	}
	if c.TagID != 0 {
		where = append(where, sq.Expr("id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)", c.TagID))
	}
	if s := strings.TrimSpace(c.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		where = append(where, sq.Or{
			sq.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(content) LIKE ? ESCAPE '\'`, pattern),
		})
	}

	q := store.PostQuery{Offset: offsetOf(page, limit), Limit: limit}
	if len(where) > 0 {
		q.Where = where
	}
	return q
}

// ListPosts pages through published posts matching f, newest first.
func (s *PostService) ListPosts(ctx context.Context, f PostFilter, page, limit int) (*Page[models.Post], error) {
	page, limit = NormalizePage(page, limit)

	criteria, ok, err := s.resolveFilter(ctx, f)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newPage([]models.Post{}, 0, page, limit), nil
	}
	criteria.PublishedOnly = true

	posts, total, err := s.store.FindPosts(ctx, buildPostQuery(criteria, page, limit))
	if err != nil {
		return nil, err
	}
	return newPage(posts, total, page, limit), nil
}

// resolveFilter maps slugs to ids. ok is false when a referenced category
// or tag does not exist, so nothing can match.
func (s *PostService) resolveFilter(ctx context.Context, f PostFilter) (postCriteria, bool, error) {
	c := postCriteria{Search: f.Search}

	if ref := strings.TrimSpace(f.Category); ref != "" {
		if id, ok := utils.ParseID(ref); ok {
			c.CategoryID = id
		} else {
			cat, err := s.store.GetCategoryBySlug(ctx, ref)
			if errs.Is(err, errs.KindNotFound) {
				return c, false, nil
			}
			if err != nil {
				return c, false, err
			}
			c.CategoryID = cat.ID
		}
	}

	if ref := strings.TrimSpace(f.Tag); ref != "" {
		if id, ok := utils.ParseID(ref); ok {
			c.TagID = id
		} else {
			tag, err := s.store.GetTagBySlug(ctx, ref)
			if errs.Is(err, errs.KindNotFound) {
				return c, false, nil
			}
			if err != nil {
				return c, false, err
			}
			c.TagID = tag.ID
		}
	}

	if ref := strings.TrimSpace(f.Author); ref != "" {
		id, ok := utils.ParseID(ref)
		if !ok {
			return c, false, errs.Validation("author", "Invalid ID format")
		}
		c.AuthorID = id
	}
	return c, true, nil
}
