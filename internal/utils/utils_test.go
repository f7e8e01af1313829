package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Luxury Living":              "luxury-living",
		"  Hello,   World!!  ":       "hello-world",
		"Fine & Dining":              "fine-dining",
		"---Already--Dashed---":      "already-dashed",
		"Café Crème":                 "cafe-creme",
		"UPPER lower 123":            "upper-lower-123",
		"!!!":                        "",
		"Design/Interior_Ideas.2024": "design-interior-ideas-2024",
		"Q&A @ Home":                 "q-a-home",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Slugify("Mindful Travel"), Slugify("MINDFUL travel"))
}

func TestSlugCandidate(t *testing.T) {
	assert.Equal(t, "travel", SlugCandidate("travel", 1))
	assert.Equal(t, "travel-2", SlugCandidate("travel", 2))
	assert.Equal(t, "travel-10", SlugCandidate("travel", 10))
}

func TestNextSlug(t *testing.T) {
	assert.Equal(t, "travel", NextSlug("travel", nil))
	assert.Equal(t, "travel", NextSlug("travel", []string{"travel-2"}), "base is reused once free")
	assert.Equal(t, "travel-2", NextSlug("travel", []string{"travel"}))
	assert.Equal(t, "travel-8", NextSlug("travel", []string{"travel", "travel-3", "travel-7"}))
	assert.Equal(t, "travel-2", NextSlug("travel", []string{"travel", "travel-tips", "travel-tips-4"}), "other slugs sharing the prefix do not count")

	used := []string{"same"}
	for n := 2; n <= 60; n++ {
		used = append(used, SlugCandidate("same", n))
	}
	assert.Equal(t, "same-61", NextSlug("same", used))
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("luxury-living"))
	assert.False(t, IsSlug("Luxury Living"))
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 0, ReadTime(""))
	assert.Equal(t, 1, ReadTime("one two three"))
	assert.Equal(t, 1, ReadTime(strings.Repeat("word ", 200)))
	assert.Equal(t, 2, ReadTime(strings.Repeat("word ", 201)))
	assert.Equal(t, 3, WordCount("  spaced\tout\nwords  "))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Travel", Capitalize("travel"))
	assert.Equal(t, "TRAVEL", Capitalize("tRAVEL"))
	assert.Equal(t, "Élan", Capitalize("élan"))
	assert.Equal(t, "", Capitalize(""))
}

func TestStripScripts(t *testing.T) {
	in := `Nice post<script>alert("x")</script> really<SCRIPT type="text/javascript">
steal()
</SCRIPT >`
	assert.Equal(t, "Nice post really", StripScripts(in))
	assert.Equal(t, "", strings.TrimSpace(StripScripts("<script>only()</script>")))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestGuestAvatarURLIsDeterministic(t *testing.T) {
	a := GuestAvatarURL("Ada Lovelace")
	assert.Equal(t, a, GuestAvatarURL("Ada Lovelace"))
	assert.NotEqual(t, a, GuestAvatarURL("Grace Hopper"))
	assert.True(t, strings.HasPrefix(a, "https://ui-avatars.com/api/?"))
	assert.Contains(t, a, "name=Ada+Lovelace")
	assert.Contains(t, GuestAvatarURL(""), "name=Guest")
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("# Title\n\n<script>alert(1)</script>\n\n![pic](https://img.example.com/a.jpg)")
	assert.Contains(t, out, "<h1")
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, `loading="lazy"`)
}

func TestFirstImage(t *testing.T) {
	assert.Equal(t, "https://img.example.com/a.jpg", FirstImage("intro\n\n![a](https://img.example.com/a.jpg)\n\n![b](https://img.example.com/b.jpg)"))
	assert.Equal(t, "", FirstImage("no pictures here"))
}
