package models

import (
	"time"
)

const DefaultCategoryImage = "default-category.jpg"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"size:500" json:"description"`
	Image       string    `gorm:"default:default-category.jpg" json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Not persisted. Filled by the store on listing.
	PostCount int64 `gorm:"-" json:"postCount"`
}

type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:30;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"size:200" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	PostCount int64 `gorm:"-" json:"postCount"`
}
