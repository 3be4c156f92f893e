package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Input constraints shared by the user and reading services.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxNameLength     = 100
	MaxBioLength      = 500
	MaxLocationLength = 100

	MaxProfilePictureSize = 5 * 1024 * 1024 // 5MB
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	allowedImageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
)

// Error is a business-rule violation surfaced to the caller as a 400.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Username validates format and constraints, returning the cleaned value.
func Username(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", newError("username is required")
	}
	if len(username) < MinUsernameLength {
		return "", newError("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return "", newError("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRe.MatchString(username) {
		return "", newError("username can only contain letters, numbers, underscores, and hyphens")
	}
	if unicode.IsDigit(rune(username[0])) {
		return "", newError("username cannot start with a number")
	}
	return username, nil
}

// Email validates and normalizes an email address.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", newError("email is required")
	}
	if !emailRe.MatchString(email) {
		return "", newError("invalid email format")
	}
	return email, nil
}

// Name validates a display name.
func Name(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError("name is required")
	}
	if len(name) > MaxNameLength {
		return "", newError("name must be at most %d characters", MaxNameLength)
	}
	return name, nil
}

// Bio validates an optional bio; an empty string becomes nil.
func Bio(bio *string) (*string, error) {
	return optionalText(bio, MaxBioLength, "bio")
}

// Location validates an optional location; an empty string becomes nil.
func Location(location *string) (*string, error) {
	return optionalText(location, MaxLocationLength, "location")
}

func optionalText(value *string, maxLen int, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	cleaned := strings.TrimSpace(*value)
	if cleaned == "" {
		return nil, nil
	}
	if len(cleaned) > maxLen {
		return nil, newError("%s must be at most %d characters", field, maxLen)
	}
	return &cleaned, nil
}

// ReadingGoal validates a yearly reading goal.
func ReadingGoal(goal int) (int, error) {
	if goal < 1 {
		return 0, newError("reading goal must be at least 1 book")
	}
	if goal > 365 {
		return 0, newError("reading goal cannot exceed 365 books per year")
	}
	return goal, nil
}

// Rating validates an optional 1-5 star rating.
func Rating(rating *int) (*int, error) {
	if rating == nil {
		return nil, nil
	}
	if *rating < 1 || *rating > 5 {
		return nil, newError("rating must be between 1 and 5 stars")
	}
	return rating, nil
}

// PasswordStrength checks minimum requirements for email-auth passwords.
func PasswordStrength(password string) error {
	if len(password) < 8 {
		return newError("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return newError("password must contain both letters and numbers")
	}
	return nil
}

// FileUpload validates an uploaded image and returns its extension.
func FileUpload(filename string, content []byte) (string, error) {
	if filename == "" {
		return "", newError("filename is required")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExtensions[ext] {
		return "", newError("invalid file type %q. Allowed types: %s", ext, strings.Join(sortedExtensions(), ", "))
	}
	if len(content) == 0 {
		return "", newError("file is empty")
	}
	if len(content) > MaxProfilePictureSize {
		return "", newError("file too large. Maximum size: %dMB", MaxProfilePictureSize/(1024*1024))
	}
	return ext, nil
}

func sortedExtensions() []string {
	exts := make([]string, 0, len(allowedImageExtensions))
	for ext := range allowedImageExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
