package deepseek

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecommendations_JSONArray(t *testing.T) {
	content := `[
		{"title": "Dune", "author": "Frank Herbert", "genre": "Science Fiction", "reason": "Epic world-building", "confidence": 0.9},
		{"title": "Hyperion", "author": "Dan Simmons", "reason": "Layered narrative"}
	]`

	recs := ParseRecommendations(content)

	assert.Len(t, recs, 2)
	assert.Equal(t, "Dune", recs[0].Title)
	assert.Equal(t, 0.9, recs[0].Confidence)
	// defaults applied to the second item
	assert.Equal(t, 0.7, recs[1].Confidence)
	assert.Equal(t, "Fiction", recs[1].Genre)
}

func TestParseRecommendations_MarkdownFences(t *testing.T) {
	content := "```json\n[{\"title\": \"Dune\", \"author\": \"Frank Herbert\", \"reason\": \"Classic\"}]\n```"

	recs := ParseRecommendations(content)

	assert.Len(t, recs, 1)
	assert.Equal(t, "Dune", recs[0].Title)
}

func TestParseRecommendations_WrapperObject(t *testing.T) {
	content := `{"recommendations": [{"title": "Dune", "author": "Frank Herbert", "reason": "Classic"}]}`

	recs := ParseRecommendations(content)

	assert.Len(t, recs, 1)
	assert.Equal(t, "Frank Herbert", recs[0].Author)
}

func TestParseRecommendations_DiscardsIncompleteItems(t *testing.T) {
	content := `[
		{"title": "Dune", "author": "Frank Herbert", "reason": "Classic"},
		{"title": "No Author", "reason": "Missing author"},
		{"author": "No Title", "reason": "Missing title"},
		{"title": "No Reason", "author": "Somebody"}
	]`

	recs := ParseRecommendations(content)

	assert.Len(t, recs, 1)
	assert.Equal(t, "Dune", recs[0].Title)
}

func TestParseRecommendations_TextScrape(t *testing.T) {
	content := `Here are some books you might enjoy:

1. Title: Dune
   Author: Frank Herbert
   Reason: Epic science fiction with rich world-building.
   Confidence: 0.85

2. Title: Hyperion
   Author: Dan Simmons
   Reason: A layered far-future pilgrimage story.
`

	recs := ParseRecommendations(content)

	assert.Len(t, recs, 2)
	assert.Equal(t, "Dune", recs[0].Title)
	assert.Equal(t, "Frank Herbert", recs[0].Author)
	assert.Equal(t, 0.85, recs[0].Confidence)
	assert.Equal(t, 0.7, recs[1].Confidence)
}

func TestParseRecommendations_Unparseable(t *testing.T) {
	recs := ParseRecommendations("Sorry, I cannot help with that.")
	assert.Empty(t, recs)
}

func TestFallback(t *testing.T) {
	recs := Fallback()

	assert.Len(t, recs, 3)
	assert.Equal(t, "The Seven Husbands of Evelyn Hugo", recs[0].Title)
	assert.Equal(t, 0.75, recs[0].Confidence)
	assert.Equal(t, "Educated", recs[1].Title)
	assert.Equal(t, 0.80, recs[1].Confidence)
	assert.Equal(t, "The Midnight Library", recs[2].Title)
	assert.Equal(t, 0.78, recs[2].Confidence)
	for _, rec := range recs {
		assert.NotEmpty(t, rec.Reason)
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `[1]`, stripFences("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, stripFences("```\n[1]\n```"))
	assert.Equal(t, `[1]`, stripFences("[1]"))
}

func TestClientEnabled(t *testing.T) {
	assert.False(t, NewClient("https://api.deepseek.com/v1", "").Enabled())
	assert.True(t, NewClient("https://api.deepseek.com/v1", "key").Enabled())
}
