package utils

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

func init() {
	// Every non-alphanumeric becomes a separator, including the characters
	// slug would otherwise spell out or keep.
	slug.CustomRuneSub = map[rune]string{'&': "-", '@': "-", '_': "-"}
}

// Slugify lowercases text, transliterates it to ASCII and joins the
// alphanumeric runs with single hyphens.
func Slugify(text string) string {
	s := slug.Make(text)
	if strings.Contains(s, "_") {
		// unidecode can emit underscores after the rune substitution ran
		s = slug.Make(strings.ReplaceAll(s, "_", "-"))
	}
	return s
}

// SlugCandidate returns the n-th candidate for base: base, base-2, base-3...
func SlugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// NextSlug picks the slug for base given the slugs already in use that are
// base itself or start with "base-". base is returned when free, otherwise
// the candidate one past the highest numbered suffix.
func NextSlug(base string, used []string) string {
	taken := false
	highest := 1
	prefix := base + "-"
	for _, u := range used {
		if u == base {
			taken = true
			continue
		}
		if !strings.HasPrefix(u, prefix) {
			continue
		}
		if n, err := strconv.Atoi(u[len(prefix):]); err == nil && n > highest {
			highest = n
		}
	}
	if !taken {
		return base
	}
	return SlugCandidate(base, highest+1)
}

// IsSlug reports whether s is already in slug form.
func IsSlug(s string) bool {
	return slug.IsSlug(s)
}
