package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quill/internal/errs"
	"quill/internal/models"
)

func uptr(v uint) *uint { return &v }

func TestCanMutatePost(t *testing.T) {
	post := &models.Post{AuthorID: 2}

	assert.True(t, CanMutate(post, &Principal{ID: 2, Role: models.RoleUser}))
	assert.False(t, CanMutate(post, &Principal{ID: 1, Role: models.RoleUser}))
	assert.False(t, CanMutate(post, &Principal{ID: 1, Role: models.RoleAuthor}))
	assert.True(t, CanMutate(post, &Principal{ID: 9, Role: models.RoleAdmin}))
	assert.False(t, CanMutate(post, nil))
}

func TestCanMutateGuestCommentOnlyByAdmin(t *testing.T) {
	guest := &models.Comment{}
	guest.SetAuthor(models.GuestAuthor{Name: "Ann", Email: "ann@example.com"})

	assert.False(t, CanMutate(guest, &Principal{ID: 0, Role: models.RoleUser}))
	assert.True(t, CanMutate(guest, &Principal{ID: 3, Role: models.RoleAdmin}))

	owned := &models.Comment{UserID: uptr(5)}
	assert.True(t, CanMutate(owned, &Principal{ID: 5, Role: models.RoleUser}))
}

func TestAuthorizeMutationKinds(t *testing.T) {
	post := &models.Post{AuthorID: 2}

	assert.True(t, errs.Is(AuthorizeMutation(post, nil, "post"), errs.KindUnauthenticated))
	assert.True(t, errs.Is(AuthorizeMutation(post, &Principal{ID: 1, Role: models.RoleUser}, "post"), errs.KindForbidden))
	assert.NoError(t, AuthorizeMutation(post, &Principal{ID: 1, Role: models.RoleAdmin}, "post"))
}

func TestAuthorizeAuthorListing(t *testing.T) {
	assert.NoError(t, AuthorizeAuthorListing(4, &Principal{ID: 4, Role: models.RoleUser}))
	assert.NoError(t, AuthorizeAuthorListing(4, &Principal{ID: 1, Role: models.RoleAdmin}))
	assert.True(t, errs.Is(AuthorizeAuthorListing(4, &Principal{ID: 1, Role: models.RoleAuthor}), errs.KindForbidden))
	assert.True(t, errs.Is(AuthorizeAuthorListing(4, nil), errs.KindUnauthenticated))
}

func TestRequireRole(t *testing.T) {
	p := &Principal{ID: 1, Role: models.RoleUser}
	assert.True(t, errs.Is(RequireRole(p, models.RoleAuthor, models.RoleAdmin), errs.KindForbidden))
	assert.NoError(t, RequireRole(p, models.RoleUser, models.RoleAuthor, models.RoleAdmin))
	assert.True(t, errs.Is(RequireRole(nil, models.RoleAdmin), errs.KindUnauthenticated))
}

func TestCanViewDrafts(t *testing.T) {
	draft := &models.Post{AuthorID: 2, Status: models.PostDraft}
	published := &models.Post{AuthorID: 2, Status: models.PostPublished}

	assert.True(t, CanView(published, nil))
	assert.False(t, CanView(draft, nil))
	assert.False(t, CanView(draft, &Principal{ID: 3, Role: models.RoleAuthor}))
	assert.True(t, CanView(draft, &Principal{ID: 2, Role: models.RoleUser}))
	assert.True(t, CanView(draft, &Principal{ID: 3, Role: models.RoleAdmin}))
}
