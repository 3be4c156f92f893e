package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"bookhub/internal/cache"
)

const (
	// Open Library asks clients to stay under ~100 requests per 5 minutes.
	rateLimit = 2 // requests per second
	rateBurst = 5

	searchFields = "key,title,author_name,isbn,cover_i,first_publish_year,subject"

	maxLimit     = 50
	defaultLimit = 10
)

// Client queries the Open Library search API with rate limiting and an
// optional Redis result cache.
type Client struct {
	baseURL    string
	coversURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewClient creates an Open Library client. cache may be a disabled cache.
func NewClient(baseURL, coversURL string, c *cache.Cache, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		coversURL: coversURL,
		limiter:   rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		cache:     c,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// searchResponse mirrors the subset of /search.json we request via fields.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	CoverI           *int64   `json:"cover_i"`
	FirstPublishYear *int     `json:"first_publish_year"`
	Subject          []string `json:"subject"`
}

// Book is one normalized search hit.
type Book struct {
	OpenLibraryID    string
	Title            string
	Author           string
	ISBN             *string
	CoverURL         *string
	FirstPublishYear *int
	Subjects         []string
}

// Search runs a full-text catalog search. Results are served from cache when
// the same query was fetched within the cache TTL.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Book, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	cacheKey := fmt.Sprintf("openlibrary:search:%s:%d", query, limit)
	if cached, err := c.cache.Get(ctx, cacheKey); err != nil {
		c.logger.Warn("openlibrary_cache_read_failed", "error", err)
	} else if cached != "" {
		var books []Book
		if err := json.Unmarshal([]byte(cached), &books); err == nil {
			return books, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	reqURL := c.baseURL + "/search.json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open library request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open library HTTP %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	books := c.parseDocs(sr.Docs)

	if payload, err := json.Marshal(books); err == nil {
		if err := c.cache.Set(ctx, cacheKey, string(payload)); err != nil {
			c.logger.Warn("openlibrary_cache_write_failed", "error", err)
		}
	}

	return books, nil
}

// parseDocs normalizes raw search docs. Docs without a title are dropped;
// missing authors fall back to "Unknown Author".
func (c *Client) parseDocs(docs []searchDoc) []Book {
	books := make([]Book, 0, len(docs))
	for _, doc := range docs {
		if doc.Title == "" {
			continue
		}

		book := Book{
			OpenLibraryID:    doc.Key,
			Title:            doc.Title,
			Author:           "Unknown Author",
			FirstPublishYear: doc.FirstPublishYear,
			Subjects:         doc.Subject,
		}
		if len(doc.AuthorName) > 0 {
			book.Author = doc.AuthorName[0]
		}
		if len(doc.ISBN) > 0 {
			isbn := doc.ISBN[0]
			book.ISBN = &isbn
		}
		if doc.CoverI != nil {
			coverURL := fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, *doc.CoverI)
			book.CoverURL = &coverURL
		}
		books = append(books, book)
	}
	return books
}
