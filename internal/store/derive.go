package store

import (
	"quill/internal/models"
	"quill/internal/utils"
)

// derivePost refreshes the fields computed from a post's own content.
// prev is nil on create. It reports whether the slug must be regenerated.
func derivePost(prev, next *models.Post) (reslug bool) {
	if prev == nil || prev.Content != next.Content {
		next.ReadTime = utils.ReadTime(next.Content)
	}
	if next.FeaturedImage == "" {
		next.FeaturedImage = utils.FirstImage(next.Content)
		if next.FeaturedImage == "" {
			next.FeaturedImage = models.DefaultFeaturedImage
		}
	}
	return prev == nil || prev.Title != next.Title || next.Slug == ""
}

// deriveTaxonReslug reports whether a category or tag needs a new slug.
func deriveTaxonReslug(prevName, nextName, slug string) bool {
	return prevName != nextName || slug == ""
}
