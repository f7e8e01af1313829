package models

import (
	"encoding/json"
	"time"

	"quill/internal/utils"
)

type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

// Author is who wrote a comment: exactly one of UserAuthor or GuestAuthor.
type Author interface {
	isAuthor()
}

type UserAuthor struct {
	UserID uint
}

type GuestAuthor struct {
	Name  string
	Email string
}

func (UserAuthor) isAuthor()  {}
func (GuestAuthor) isAuthor() {}

// InitialCommentStatus decides where a new comment enters moderation.
// role is ignored for guests.
func InitialCommentStatus(a Author, role Role) CommentStatus {
	if _, ok := a.(UserAuthor); ok && (role == RoleAuthor || role == RoleAdmin) {
		return CommentApproved
	}
	return CommentPending
}

// Comment rows keep the author variant in UserID or GuestName/GuestEmail.
// Those columns are written only through SetAuthor and the table CHECK
// rejects rows holding both or neither.
type Comment struct {
	ID       uint          `gorm:"primaryKey"`
	Content  string        `gorm:"type:text;not null"`
	PostID   uint          `gorm:"not null;index"`
	ParentID *uint         `gorm:"index"`
	Status   CommentStatus `gorm:"size:20;not null;default:pending;index"`

	UserID     *uint  `gorm:"index;check:(user_id IS NOT NULL AND guest_name = '' AND guest_email = '') OR (user_id IS NULL AND guest_name <> '' AND guest_email <> '')"`
	GuestName  string `gorm:"size:50;not null"`
	GuestEmail string `gorm:"not null"`
	User       *User  `gorm:"foreignKey:UserID"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// Not persisted. Direct approved replies, filled by the thread listing.
	Replies []Comment `gorm:"-"`
}

// Author returns the active author variant.
func (c *Comment) Author() Author {
	if c.UserID != nil {
		return UserAuthor{UserID: *c.UserID}
	}
	return GuestAuthor{Name: c.GuestName, Email: c.GuestEmail}
}

// SetAuthor stores a and clears the other variant.
func (c *Comment) SetAuthor(a Author) {
	switch v := a.(type) {
	case UserAuthor:
		id := v.UserID
		c.UserID = &id
		c.GuestName, c.GuestEmail = "", ""
	case GuestAuthor:
		c.UserID = nil
		c.User = nil
		c.GuestName, c.GuestEmail = v.Name, v.Email
	}
}

func (c *Comment) IsGuest() bool { return c.UserID == nil }

// OwnerID is the writing user. Guest comments have no owner.
func (c *Comment) OwnerID() (uint, bool) {
	if c.UserID == nil {
		return 0, false
	}
	return *c.UserID, true
}

func (c *Comment) DisplayName() string {
	if c.IsGuest() {
		if c.GuestName == "" {
			return "Guest"
		}
		return c.GuestName
	}
	if c.User != nil && c.User.Name != "" {
		return c.User.Name
	}
	return "Anonymous"
}

func (c *Comment) DisplayAvatar() string {
	if c.IsGuest() {
		return utils.GuestAvatarURL(c.GuestName)
	}
	if c.User != nil {
		return c.User.Avatar
	}
	return ""
}

type commentJSON struct {
	ID            uint          `json:"id"`
	Content       string        `json:"content"`
	Post          uint          `json:"post"`
	Parent        *uint         `json:"parent"`
	Status        CommentStatus `json:"status"`
	IsGuest       bool          `json:"isGuest"`
	GuestName     string        `json:"guestName,omitempty"`
	User          *User         `json:"user,omitempty"`
	DisplayName   string        `json:"displayName"`
	DisplayAvatar string        `json:"displayAvatar"`
	Replies       []Comment     `json:"replies,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// MarshalJSON exposes the derived display fields. Guest emails are never serialized.
func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(commentJSON{
		ID:            c.ID,
		Content:       c.Content,
		Post:          c.PostID,
		Parent:        c.ParentID,
		Status:        c.Status,
		IsGuest:       c.IsGuest(),
		GuestName:     c.GuestName,
		User:          c.User,
		DisplayName:   c.DisplayName(),
		DisplayAvatar: c.DisplayAvatar(),
		Replies:       c.Replies,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	})
}
