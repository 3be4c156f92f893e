package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	model       = "deepseek-chat"
	maxTokens   = 1500
	temperature = 0.8
)

// Client talks to the DeepSeek chat completions API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a DeepSeek client. An empty apiKey leaves the client in
// fallback-only mode.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Recommendation is one suggested book parsed from the model output.
type Recommendation struct {
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Genre      string  `json:"genre"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends a single-user-message completion request and returns
// the raw assistant text.
func (c *Client) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices")
	}

	return cr.Choices[0].Message.Content, nil
}

// ParseRecommendations extracts book suggestions from model output. It tries
// JSON first (with or without markdown fences), then a line-oriented text
// scrape. Returns nil when nothing usable was found.
func ParseRecommendations(content string) []Recommendation {
	cleaned := stripFences(content)

	var items []Recommendation
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return sanitize(items)
	}

	// Some responses wrap the array in an object.
	var wrapper struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err == nil && len(wrapper.Recommendations) > 0 {
		return sanitize(wrapper.Recommendations)
	}

	return scrapeText(content)
}

// stripFences removes a leading ```json or ``` fence and the trailing ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// sanitize drops items missing required fields and fills defaults.
func sanitize(items []Recommendation) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		if item.Title == "" || item.Author == "" || item.Reason == "" {
			continue
		}
		if item.Confidence <= 0 {
			item.Confidence = 0.7
		}
		if item.Genre == "" {
			item.Genre = "Fiction"
		}
		out = append(out, item)
	}
	return out
}

// scrapeText recovers recommendations from prose responses that laid out
// Title:/Author:/Reason: lines instead of JSON.
func scrapeText(content string) []Recommendation {
	var out []Recommendation
	var current Recommendation

	flush := func() {
		if current.Title != "" && current.Author != "" && current.Reason != "" {
			if current.Confidence <= 0 {
				current.Confidence = 0.7
			}
			if current.Genre == "" {
				current.Genre = "Fiction"
			}
			out = append(out, current)
		}
		current = Recommendation{}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "title:"):
			if current.Title != "" {
				flush()
			}
			current.Title = strings.Trim(strings.TrimSpace(line[len("title:"):]), `"*`)
		case strings.HasPrefix(lower, "author:"):
			current.Author = strings.Trim(strings.TrimSpace(line[len("author:"):]), `"*`)
		case strings.HasPrefix(lower, "genre:"):
			current.Genre = strings.TrimSpace(line[len("genre:"):])
		case strings.HasPrefix(lower, "reason:"):
			current.Reason = strings.TrimSpace(line[len("reason:"):])
		case strings.HasPrefix(lower, "confidence:"):
			if v, err := strconv.ParseFloat(strings.TrimSpace(line[len("confidence:"):]), 64); err == nil {
				current.Confidence = v
			}
		}
	}
	flush()

	return out
}

// Fallback returns a fixed set of broadly liked titles used when the API is
// unavailable or returned nothing parseable.
func Fallback() []Recommendation {
	return []Recommendation{
		{
			Title:      "The Seven Husbands of Evelyn Hugo",
			Author:     "Taylor Jenkins Reid",
			Genre:      "Fiction",
			Reason:     "A captivating story about a reclusive Hollywood icon, loved by readers across many genres.",
			Confidence: 0.75,
		},
		{
			Title:      "Educated",
			Author:     "Tara Westover",
			Genre:      "Memoir",
			Reason:     "A powerful memoir about education and self-invention that resonates with most readers.",
			Confidence: 0.80,
		},
		{
			Title:      "The Midnight Library",
			Author:     "Matt Haig",
			Genre:      "Fiction",
			Reason:     "An uplifting novel about life's infinite possibilities, a reliable crowd-pleaser.",
			Confidence: 0.78,
		},
	}
}
