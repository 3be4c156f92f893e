package openlibrary

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/cache"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	disabled, err := cache.New("", "", 0)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(baseURL, "https://covers.openlibrary.org", disabled, logger)
}

func TestParseDocs(t *testing.T) {
	client := testClient(t, "https://openlibrary.org")
	coverID := int64(12345)
	year := 1965

	docs := []searchDoc{
		{
			Key:              "/works/OL893415W",
			Title:            "Dune",
			AuthorName:       []string{"Frank Herbert", "Someone Else"},
			ISBN:             []string{"9780441013593", "0441013597"},
			CoverI:           &coverID,
			FirstPublishYear: &year,
			Subject:          []string{"Science fiction"},
		},
		{
			// no title: dropped
			Key:        "/works/OL000000W",
			AuthorName: []string{"Anonymous"},
		},
		{
			// minimal doc: defaults applied
			Key:   "/works/OL111111W",
			Title: "Untitled Author Book",
		},
	}

	books := client.parseDocs(docs)

	require.Len(t, books, 2)

	assert.Equal(t, "/works/OL893415W", books[0].OpenLibraryID)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Frank Herbert", books[0].Author)
	require.NotNil(t, books[0].ISBN)
	assert.Equal(t, "9780441013593", *books[0].ISBN)
	require.NotNil(t, books[0].CoverURL)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12345-M.jpg", *books[0].CoverURL)
	require.NotNil(t, books[0].FirstPublishYear)
	assert.Equal(t, 1965, *books[0].FirstPublishYear)

	assert.Equal(t, "Unknown Author", books[1].Author)
	assert.Nil(t, books[1].ISBN)
	assert.Nil(t, books[1].CoverURL)
}

func TestSearch(t *testing.T) {
	var gotQuery, gotFields, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotFields = r.URL.Query().Get("fields")
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode(searchResponse{
			NumFound: 1,
			Docs: []searchDoc{
				{Key: "/works/OL893415W", Title: "Dune", AuthorName: []string{"Frank Herbert"}},
			},
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	books, err := client.Search(context.Background(), "dune", 5)

	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "dune", gotQuery)
	assert.Equal(t, searchFields, gotFields)
	assert.Equal(t, "5", gotLimit)
}

func TestSearch_LimitClamped(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.Search(context.Background(), "dune", 500)
	require.NoError(t, err)
	assert.Equal(t, "50", gotLimit)

	_, err = client.Search(context.Background(), "dune", 0)
	require.NoError(t, err)
	assert.Equal(t, "10", gotLimit)
}

func TestSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Search(context.Background(), "dune", 5)
	assert.Error(t, err)
}
