package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialCommentStatus(t *testing.T) {
	guest := GuestAuthor{Name: "Ann", Email: "ann@example.com"}
	user := UserAuthor{UserID: 1}

	assert.Equal(t, CommentPending, InitialCommentStatus(guest, ""))
	assert.Equal(t, CommentPending, InitialCommentStatus(guest, RoleAdmin), "role is ignored for guests")
	assert.Equal(t, CommentPending, InitialCommentStatus(user, RoleUser))
	assert.Equal(t, CommentApproved, InitialCommentStatus(user, RoleAuthor))
	assert.Equal(t, CommentApproved, InitialCommentStatus(user, RoleAdmin))
}

func TestSetAuthorKeepsOneVariant(t *testing.T) {
	var c Comment
	c.SetAuthor(GuestAuthor{Name: "Ann", Email: "ann@example.com"})
	assert.True(t, c.IsGuest())
	_, owned := c.OwnerID()
	assert.False(t, owned)
	assert.Equal(t, GuestAuthor{Name: "Ann", Email: "ann@example.com"}, c.Author())

	c.SetAuthor(UserAuthor{UserID: 9})
	assert.False(t, c.IsGuest())
	assert.Empty(t, c.GuestName)
	assert.Empty(t, c.GuestEmail)
	owner, owned := c.OwnerID()
	assert.True(t, owned)
	assert.EqualValues(t, 9, owner)
	assert.Equal(t, UserAuthor{UserID: 9}, c.Author())
}

func TestDisplayFields(t *testing.T) {
	guest := Comment{GuestName: "Ann Lee", GuestEmail: "ann@example.com"}
	assert.Equal(t, "Ann Lee", guest.DisplayName())
	assert.True(t, strings.HasPrefix(guest.DisplayAvatar(), "https://ui-avatars.com/api/"))
	assert.Equal(t, guest.DisplayAvatar(), (&Comment{GuestName: "Ann Lee"}).DisplayAvatar(), "avatar is stable per name")

	uid := uint(3)
	withUser := Comment{UserID: &uid, User: &User{ID: 3, Name: "Bo", Avatar: "bo.png"}}
	assert.Equal(t, "Bo", withUser.DisplayName())
	assert.Equal(t, "bo.png", withUser.DisplayAvatar())

	orphan := Comment{UserID: &uid}
	assert.Equal(t, "Anonymous", orphan.DisplayName())
}

func TestCommentJSONHidesGuestEmail(t *testing.T) {
	parent := uint(4)
	c := Comment{ID: 5, Content: "hi", PostID: 2, ParentID: &parent, Status: CommentPending}
	c.SetAuthor(GuestAuthor{Name: "Ann", Email: "ann@example.com"})

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ann@example.com")

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.EqualValues(t, 2, out["post"])
	assert.EqualValues(t, 4, out["parent"])
	assert.Equal(t, true, out["isGuest"])
	assert.Equal(t, "Ann", out["displayName"])
	assert.Equal(t, "pending", out["status"])
}

func TestUserJSONHidesEmail(t *testing.T) {
	raw, err := json.Marshal(User{ID: 1, Name: "Bo", Email: "bo@example.com", Role: RoleAuthor})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "bo@example.com")
}

func TestParseRoleAndStatus(t *testing.T) {
	r, valid := ParseRole("admin")
	assert.True(t, valid)
	assert.Equal(t, RoleAdmin, r)
	_, valid = ParseRole("superuser")
	assert.False(t, valid)

	assert.True(t, ValidPostStatus(PostDraft))
	assert.True(t, ValidPostStatus(PostPublished))
	assert.False(t, ValidPostStatus("archived"))

	p := Post{AuthorID: 8, Status: PostPublished}
	owner, _ := p.OwnerID()
	assert.EqualValues(t, 8, owner)
	assert.True(t, p.IsPublished())
}
