package models

import (
	"time"

	"gorm.io/datatypes"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// DefaultFeaturedImage is used when a post has no image of its own.
const DefaultFeaturedImage = "default-post.jpg"

// SEO overrides for a post page.
type SEO struct {
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

type Post struct {
	ID            uint                    `gorm:"primaryKey" json:"id"`
	Title         string                  `gorm:"size:200;not null" json:"title"`
	Slug          string                  `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt       string                  `gorm:"size:500;not null" json:"excerpt"`
	Content       string                  `gorm:"type:text;not null" json:"content"`
	FeaturedImage string                  `json:"featuredImage"`
	AuthorID      uint                    `gorm:"not null;index" json:"authorId"`
	Author        *User                   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID    uint                    `gorm:"not null;index" json:"categoryId"`
	Category      *Category               `json:"category,omitempty"`
	Tags          []Tag                   `gorm:"many2many:post_tags;" json:"tags"`
	Status        PostStatus              `gorm:"size:20;not null;default:draft;index" json:"status"`
	IsFeatured    bool                    `gorm:"not null;default:false" json:"isFeatured"`
	ReadTime      int                     `gorm:"not null;default:0" json:"readTime"`
	Views         int64                   `gorm:"not null;default:0" json:"views"`
	SEO           datatypes.JSONType[SEO] `gorm:"column:seo" json:"seo"`
	CreatedAt     time.Time               `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`

	// Not persisted. Filled for single post responses.
	ContentHTML string    `gorm:"-" json:"contentHtml,omitempty"`
	Comments    []Comment `gorm:"-" json:"comments,omitempty"`
}

// OwnerID reports the post's author.
func (p *Post) OwnerID() (uint, bool) { return p.AuthorID, true }

func (p *Post) IsPublished() bool { return p.Status == PostPublished }

func ValidPostStatus(s PostStatus) bool {
	return s == PostDraft || s == PostPublished
}
