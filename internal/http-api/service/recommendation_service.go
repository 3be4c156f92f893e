package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gorm.io/gorm"

	"bookhub/internal/deepseek"
	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/openlibrary"
)

const (
	highRatingThreshold = 4
	maxPromptBooks      = 8
	maxTopTastes        = 3
	maxRecommendations  = 20
)

type RecommendationService interface {
	Generate(ctx context.Context, userID int64) ([]dto.RecommendationResponse, error)
	List(userID int64, limit int) ([]dto.RecommendationResponse, error)
	Dismiss(recommendationID, userID int64) error
}

type recommendationService struct {
	db          *gorm.DB
	recRepo     repository.RecommendationRepository
	readingRepo repository.ReadingRepository
	bookRepo    *repository.BookRepo
	deepseek    *deepseek.Client
	openLibrary *openlibrary.Client
	logger      *slog.Logger
}

func NewRecommendationService(
	db *gorm.DB,
	recRepo repository.RecommendationRepository,
	readingRepo repository.ReadingRepository,
	bookRepo *repository.BookRepo,
	ds *deepseek.Client,
	ol *openlibrary.Client,
	logger *slog.Logger,
) RecommendationService {
	return &recommendationService{
		db:          db,
		recRepo:     recRepo,
		readingRepo: readingRepo,
		bookRepo:    bookRepo,
		deepseek:    ds,
		openLibrary: ol,
		logger:      logger,
	}
}

// Generate replaces the user's recommendations with a fresh AI-generated
// set. Degrades to a fixed fallback list rather than failing.
func (s *recommendationService) Generate(ctx context.Context, userID int64) ([]dto.RecommendationResponse, error) {
	readings, err := s.readingRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}

	candidates := s.suggest(ctx, userID, readings)
	candidates = filterOwned(candidates, readings)
	if len(candidates) == 0 {
		candidates = filterOwned(deepseek.Fallback(), readings)
	}
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}

	// Resolve candidate titles into catalog rows before the swap so the
	// transaction holds only inserts.
	resolved := make([]*models.Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		book, err := s.resolveBook(ctx, candidate)
		if err != nil {
			s.logger.Warn("recommendation_book_unresolved",
				"title", candidate.Title, "author", candidate.Author, "error", err)
			continue
		}
		resolved = append(resolved, &models.Recommendation{
			UserID:          userID,
			BookID:          book.ID,
			Reason:          candidate.Reason,
			ConfidenceScore: candidate.Confidence,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.recRepo.DeleteAllForUser(tx, userID); err != nil {
			return err
		}
		for _, rec := range resolved {
			if err := s.recRepo.Create(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recommendations_generated", "user_id", userID, "count", len(resolved))
	return s.List(userID, 0)
}

// suggest asks DeepSeek for candidates; any failure falls back to the
// fixed list.
func (s *recommendationService) suggest(ctx context.Context, userID int64, readings []models.Reading) []deepseek.Recommendation {
	if !s.deepseek.Enabled() || len(readings) == 0 {
		return deepseek.Fallback()
	}

	prompt := buildPrompt(readings)
	content, err := s.deepseek.ChatCompletion(ctx, prompt)
	if err != nil {
		s.logger.Warn("deepseek_call_failed", "user_id", userID, "error", err)
		return deepseek.Fallback()
	}

	parsed := deepseek.ParseRecommendations(content)
	if len(parsed) == 0 {
		s.logger.Warn("deepseek_response_unparseable", "user_id", userID)
		return deepseek.Fallback()
	}
	return parsed
}

// buildPrompt summarizes the user's taste from highly rated books and lists
// the whole library as do-not-recommend.
func buildPrompt(readings []models.Reading) string {
	var highlyRated []models.Reading
	genreCounts := map[string]int{}
	authorCounts := map[string]int{}

	for _, reading := range readings {
		if reading.Rating == nil || *reading.Rating < highRatingThreshold || reading.Book == nil {
			continue
		}
		highlyRated = append(highlyRated, reading)
		if reading.Book.Genre != nil && *reading.Book.Genre != "" {
			genreCounts[*reading.Book.Genre]++
		}
		authorCounts[reading.Book.Author]++
	}

	var b strings.Builder
	b.WriteString("You are a book recommendation expert. Based on this reader's taste, recommend 5 books they have not read.\n\n")

	if len(highlyRated) > 0 {
		b.WriteString("Books they loved (rated 4-5 stars):\n")
		for i, reading := range highlyRated {
			if i >= maxPromptBooks {
				break
			}
			fmt.Fprintf(&b, "- %q by %s (rated %d/5)\n", reading.Book.Title, reading.Book.Author, *reading.Rating)
		}
		b.WriteString("\n")
	}

	if tastes := topKeys(genreCounts, maxTopTastes); len(tastes) > 0 {
		fmt.Fprintf(&b, "Favorite genres: %s\n", strings.Join(tastes, ", "))
	}
	if tastes := topKeys(authorCounts, maxTopTastes); len(tastes) > 0 {
		fmt.Fprintf(&b, "Favorite authors: %s\n", strings.Join(tastes, ", "))
	}

	b.WriteString("\nDo NOT recommend any of these books they already have:\n")
	for _, reading := range readings {
		if reading.Book == nil {
			continue
		}
		fmt.Fprintf(&b, "- %q by %s\n", reading.Book.Title, reading.Book.Author)
	}

	b.WriteString("\nRespond with a JSON array only, no prose. Each item: " +
		`{"title": "...", "author": "...", "genre": "...", "reason": "one sentence why this fits", "confidence": 0.0-1.0}`)
	return b.String()
}

func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// filterOwned drops candidates whose (title, author) pair is already in the
// library. Title-only collisions pass: different authors write same-named
// books.
func filterOwned(candidates []deepseek.Recommendation, readings []models.Reading) []deepseek.Recommendation {
	owned := make(map[string]bool, len(readings))
	for _, reading := range readings {
		if reading.Book == nil {
			continue
		}
		key := strings.ToLower(reading.Book.Title) + "|" + strings.ToLower(reading.Book.Author)
		owned[key] = true
	}

	out := make([]deepseek.Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		key := strings.ToLower(candidate.Title) + "|" + strings.ToLower(candidate.Author)
		if owned[key] {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// resolveBook maps a suggested title to a catalog row, enriching from Open
// Library when possible and inserting a bare record otherwise.
func (s *recommendationService) resolveBook(ctx context.Context, candidate deepseek.Recommendation) (*models.Book, error) {
	if book, err := s.bookRepo.FindByTitleAuthorExact(ctx, candidate.Title, candidate.Author); err == nil {
		return book, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	book := &models.Book{
		Title:  candidate.Title,
		Author: candidate.Author,
	}
	if candidate.Genre != "" {
		genre := candidate.Genre
		book.Genre = &genre
	}

	hits, err := s.openLibrary.Search(ctx, candidate.Title+" "+candidate.Author, 3)
	if err != nil {
		s.logger.Warn("recommendation_enrichment_failed", "title", candidate.Title, "error", err)
	} else {
		for _, hit := range hits {
			if !strings.EqualFold(hit.Title, candidate.Title) {
				continue
			}
			if hit.OpenLibraryID != "" {
				if existing, err := s.bookRepo.FindByOpenLibraryID(ctx, hit.OpenLibraryID); err == nil {
					return existing, nil
				}
				olID := hit.OpenLibraryID
				book.OpenLibraryID = &olID
			}
			book.ISBN = hit.ISBN
			book.CoverURL = hit.CoverURL
			book.PublicationYear = hit.FirstPublishYear
			break
		}
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		if repository.IsUniqueViolation(err) {
			if existing, ferr := s.bookRepo.FindByTitleAuthorExact(ctx, candidate.Title, candidate.Author); ferr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return book, nil
}

func (s *recommendationService) List(userID int64, limit int) ([]dto.RecommendationResponse, error) {
	recs, err := s.recRepo.GetActiveForUser(userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.RecommendationResponse, 0, len(recs))
	for i := range recs {
		out = append(out, dto.FromModelToRecommendationResponse(&recs[i]))
	}
	return out, nil
}

func (s *recommendationService) Dismiss(recommendationID, userID int64) error {
	rec, err := s.recRepo.GetByIDAndUser(recommendationID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	rec.IsDismissed = true
	if err := s.recRepo.Update(rec); err != nil {
		return err
	}

	s.logger.Info("recommendation_dismissed", "user_id", userID, "recommendation_id", recommendationID)
	return nil
}
