package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookhub/internal/http-api/models"
)

func newBookRepoEnv(t *testing.T) *BookRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bookhub.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Book{}))
	return NewBookRepo(db)
}

func TestSearch_LikeWildcardsAreLiteral(t *testing.T) {
	repo := newBookRepoEnv(t)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, &models.Book{Title: "Snow Crash", Author: "Neal Stephenson"}))
	assert.NoError(t, repo.Create(ctx, &models.Book{Title: "50% Off Murder", Author: "Josie Belle"}))

	// a bare wildcard matches nothing instead of every row
	books, err := repo.Search(ctx, "%", 10)
	assert.NoError(t, err)
	assert.Empty(t, books)

	books, err = repo.Search(ctx, "_", 10)
	assert.NoError(t, err)
	assert.Empty(t, books)

	// a literal % in the title still matches as a substring
	books, err = repo.Search(ctx, "50% off", 10)
	assert.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, "50% Off Murder", books[0].Title)

	books, err = repo.Search(ctx, "snow", 10)
	assert.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, "Snow Crash", books[0].Title)
}

func TestFindByTitleAuthorFuzzy_EscapesWildcards(t *testing.T) {
	repo := newBookRepoEnv(t)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, &models.Book{Title: "Snow Crash", Author: "Neal Stephenson"}))

	// underscore must not act as a single-character wildcard
	_, err := repo.FindByTitleAuthorFuzzy(ctx, "S_ow Crash", "Neal Stephenson")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	book, err := repo.FindByTitleAuthorFuzzy(ctx, "snow crash", "stephenson")
	assert.NoError(t, err)
	assert.Equal(t, "Snow Crash", book.Title)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% Wolf`, escapeLike("100% Wolf"))
	assert.Equal(t, `user\_name`, escapeLike("user_name"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain title", escapeLike("plain title"))
}
