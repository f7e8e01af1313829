package db_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quill/internal/config"
	"quill/internal/db"
	"quill/internal/db/dbtest"
	"quill/internal/models"
)

func TestSeedIsIdempotent(t *testing.T) {
	gdb := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx, gdb))
	require.NoError(t, db.Seed(ctx, gdb))

	var categories, tags int64
	gdb.Model(&models.Category{}).Count(&categories)
	gdb.Model(&models.Tag{}).Count(&tags)
	assert.EqualValues(t, 4, categories)
	assert.EqualValues(t, 7, tags)

	var tag models.Tag
	require.NoError(t, gdb.Where("name = ?", "Interior Design").First(&tag).Error)
	assert.Equal(t, "interior-design", tag.Slug)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenSQLite(t *testing.T) {
	gdb, err := db.Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file:open_sqlite?mode=memory&cache=shared"})
	require.NoError(t, err)
	assert.True(t, gdb.Migrator().HasTable(&models.Comment{}))
}

func TestCommentAuthorCheckConstraint(t *testing.T) {
	gdb := dbtest.Open(t)
	uid := uint(1)

	both := models.Comment{Content: "x", PostID: 1, UserID: &uid, GuestName: "Ann", GuestEmail: "ann@example.com"}
	assert.Error(t, gdb.Create(&both).Error)

	neither := models.Comment{Content: "x", PostID: 1}
	assert.Error(t, gdb.Create(&neither).Error)

	var ok models.Comment
	ok.Content, ok.PostID = "x", 1
	ok.SetAuthor(models.GuestAuthor{Name: "Ann", Email: "ann@example.com"})
	assert.NoError(t, gdb.Create(&ok).Error)
}

func TestSQLLoggerSkipsMissingRows(t *testing.T) {
	var buf bytes.Buffer
	gdb := dbtest.Open(t).Session(&gorm.Session{Logger: db.NewSQLLogger(&buf)})

	var post models.Post
	err := gdb.First(&post, 9999).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	err = gdb.Table("no_such_table").Count(new(int64)).Error
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
}
