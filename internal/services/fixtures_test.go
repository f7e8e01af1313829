package services

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quill/internal/authz"
	"quill/internal/db/dbtest"
	"quill/internal/logging"
	"quill/internal/models"
	"quill/internal/store"
)

type fixture struct {
	db  *gorm.DB
	svc *Services
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	logger := logging.NewWithWriter(io.Discard, "error")
	return &fixture{
		db:  gdb,
		svc: New(store.New(gdb, logger), logger),
		ctx: context.Background(),
	}
}

// principal persists a user with role and returns it as a principal.
func (f *fixture) principal(t *testing.T, name string, role models.Role) *authz.Principal {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, f.db.Create(u).Error)
	return &authz.Principal{ID: u.ID, Role: role}
}

func ptr[T any](v T) *T { return &v }

func postInput(title, category string, status models.PostStatus) PostInput {
	return PostInput{
		Title:    ptr(title),
		Excerpt:  ptr("An excerpt"),
		Content:  ptr("Some content about " + title),
		Category: &TaxonRef{Label: category},
		Status:   ptr(status),
	}
}

func (f *fixture) publish(t *testing.T, p *authz.Principal, title, category string) *models.Post {
	t.Helper()
	post, err := f.svc.Posts.CreatePost(f.ctx, postInput(title, category, models.PostPublished), p)
	require.NoError(t, err)
	return post
}
