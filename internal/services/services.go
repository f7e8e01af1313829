package services

import (
	"log/slog"

	"quill/internal/store"
)

// Services bundles the domain services over one store.
type Services struct {
	Posts    *PostService
	Comments *CommentService
	Taxonomy *TaxonomyService
}

func New(st *store.Store, logger *slog.Logger) *Services {
	taxonomy := NewTaxonomyService(st, logger)
	comments := NewCommentService(st, logger)
	return &Services{
		Posts:    NewPostService(st, taxonomy, comments, logger),
		Comments: comments,
		Taxonomy: taxonomy,
	}
}
