package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookhub/internal/deepseek"
	"bookhub/internal/http-api/models"
)

func libraryWith(books ...*models.Book) []models.Reading {
	readings := make([]models.Reading, 0, len(books))
	for i, book := range books {
		readings = append(readings, models.Reading{
			ID:     int64(i + 1),
			BookID: book.ID,
			Book:   book,
		})
	}
	return readings
}

func TestFilterOwned(t *testing.T) {
	readings := libraryWith(
		&models.Book{ID: 1, Title: "Dune", Author: "Frank Herbert"},
	)

	candidates := []deepseek.Recommendation{
		// exact pair owned: excluded (case-insensitive)
		{Title: "DUNE", Author: "frank herbert", Reason: "classic"},
		// same title, different author: kept
		{Title: "Dune", Author: "Brian Herbert", Reason: "sequel era"},
		{Title: "Hyperion", Author: "Dan Simmons", Reason: "space opera"},
	}

	filtered := filterOwned(candidates, readings)

	assert.Len(t, filtered, 2)
	assert.Equal(t, "Brian Herbert", filtered[0].Author)
	assert.Equal(t, "Hyperion", filtered[1].Title)
}

func TestFilterOwned_EmptyLibrary(t *testing.T) {
	candidates := deepseek.Fallback()
	filtered := filterOwned(candidates, nil)
	assert.Len(t, filtered, len(candidates))
}

func TestBuildPrompt(t *testing.T) {
	scifi := "Science Fiction"
	five := 5
	two := 2
	readings := []models.Reading{
		{
			Rating: &five,
			Book:   &models.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: &scifi},
		},
		{
			// low rating: not in the "loved" section, still in do-not-recommend
			Rating: &two,
			Book:   &models.Book{ID: 2, Title: "Disliked Book", Author: "Someone"},
		},
		{
			// unrated
			Book: &models.Book{ID: 3, Title: "Unrated Book", Author: "Someone Else"},
		},
	}

	prompt := buildPrompt(readings)

	assert.Contains(t, prompt, `"Dune" by Frank Herbert (rated 5/5)`)
	assert.NotContains(t, prompt, "Disliked Book\" by Someone (rated")
	assert.Contains(t, prompt, "Favorite genres: Science Fiction")
	assert.Contains(t, prompt, "Favorite authors: Frank Herbert")
	// the whole library is listed as do-not-recommend
	assert.Contains(t, prompt, `"Disliked Book" by Someone`)
	assert.Contains(t, prompt, `"Unrated Book" by Someone Else`)
	assert.Contains(t, prompt, "JSON array")
}

func TestBuildPrompt_CapsLovedBooks(t *testing.T) {
	five := 5
	var readings []models.Reading
	for i := 0; i < 12; i++ {
		readings = append(readings, models.Reading{
			Rating: &five,
			Book:   &models.Book{ID: int64(i + 1), Title: "Book", Author: "Author"},
		})
	}

	prompt := buildPrompt(readings)

	assert.Equal(t, maxPromptBooks, strings.Count(prompt, "(rated 5/5)"))
}

func TestTopKeys(t *testing.T) {
	counts := map[string]int{"Fantasy": 3, "Mystery": 1, "Sci-Fi": 3, "Romance": 2, "Horror": 1}

	top := topKeys(counts, 3)

	// count-descending, alphabetical tiebreak
	assert.Equal(t, []string{"Fantasy", "Sci-Fi", "Romance"}, top)
}
