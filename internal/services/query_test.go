package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/models"
)

func TestBuildPostQuery(t *testing.T) {
	q := buildPostQuery(postCriteria{}, 1, 10)
	assert.Nil(t, q.Where)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, 10, q.Limit)

	q = buildPostQuery(postCriteria{
		PublishedOnly: true,
		CategoryID:    3,
		TagID:         4,
		Search:        " 50%_Off ",
	}, 3, 20)
	assert.Equal(t, 40, q.Offset)

	sql, args, err := q.Where.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		`(status = ? AND category_id = ? AND id IN (SELECT post_id FROM post_tags WHERE tag_id = ?) AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'))`,
		sql)
	assert.Equal(t, []any{models.PostPublished, uint(3), uint(4), `%50\%\_off%`, `%50\%\_off%`}, args)
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultLimit},
		{-2, -5, 1, DefaultLimit},
		{4, 25, 4, 25},
	}
	for _, c := range cases {
		page, limit := NormalizePage(c.page, c.limit)
		assert.Equal(t, c.wantPage, page)
		assert.Equal(t, c.wantLimit, limit)
	}
}

func TestNewPageFlags(t *testing.T) {
	p := newPage([]int{1, 2}, 12, 2, 5)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = newPage([]int{}, 0, 1, 5)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = newPage([]int{1, 2}, 10, 2, 5)
	assert.False(t, p.HasNext)

	p = newPage([]int{}, 3, 92233720368547759, 100)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = newPage([]int{}, 3, math.MaxInt, math.MaxInt)
	assert.False(t, p.HasNext)
}

func TestNormalizePageCapsHugePages(t *testing.T) {
	page, limit := NormalizePage(math.MaxInt, 100)
	assert.Equal(t, 100, limit)
	assert.Equal(t, math.MaxInt/100+1, page)
	assert.GreaterOrEqual(t, offsetOf(page, limit), 0)

	page, _ = NormalizePage(math.MaxInt, math.MaxInt)
	assert.Equal(t, 2, page)
	assert.Equal(t, 0, offsetOf(1, math.MaxInt))
}
