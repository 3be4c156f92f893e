package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		cleaned, err := Username("  book_lover-42  ")
		assert.NoError(t, err)
		assert.Equal(t, "book_lover-42", cleaned)
	})

	t.Run("TooShort", func(t *testing.T) {
		_, err := Username("ab")
		assert.Error(t, err)
	})

	t.Run("TooLong", func(t *testing.T) {
		_, err := Username(strings.Repeat("a", MaxUsernameLength+1))
		assert.Error(t, err)
	})

	t.Run("InvalidCharacters", func(t *testing.T) {
		_, err := Username("book lover!")
		assert.Error(t, err)
	})

	t.Run("StartsWithNumber", func(t *testing.T) {
		_, err := Username("1reader")
		assert.Error(t, err)
	})
}

func TestEmail(t *testing.T) {
	t.Run("NormalizesCase", func(t *testing.T) {
		email, err := Email(" Reader@Example.COM ")
		assert.NoError(t, err)
		assert.Equal(t, "reader@example.com", email)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, bad := range []string{"", "not-an-email", "missing@tld", "@example.com"} {
			_, err := Email(bad)
			assert.Error(t, err, bad)
		}
	})
}

func TestBio(t *testing.T) {
	t.Run("EmptyBecomesNil", func(t *testing.T) {
		empty := "   "
		cleaned, err := Bio(&empty)
		assert.NoError(t, err)
		assert.Nil(t, cleaned)
	})

	t.Run("TooLong", func(t *testing.T) {
		long := strings.Repeat("a", MaxBioLength+1)
		_, err := Bio(&long)
		assert.Error(t, err)
	})

	t.Run("NilPassesThrough", func(t *testing.T) {
		cleaned, err := Bio(nil)
		assert.NoError(t, err)
		assert.Nil(t, cleaned)
	})
}

func TestReadingGoal(t *testing.T) {
	goal, err := ReadingGoal(12)
	assert.NoError(t, err)
	assert.Equal(t, 12, goal)

	_, err = ReadingGoal(0)
	assert.Error(t, err)

	_, err = ReadingGoal(366)
	assert.Error(t, err)
}

func TestRating(t *testing.T) {
	t.Run("NilAllowed", func(t *testing.T) {
		rating, err := Rating(nil)
		assert.NoError(t, err)
		assert.Nil(t, rating)
	})

	t.Run("InRange", func(t *testing.T) {
		for v := 1; v <= 5; v++ {
			value := v
			_, err := Rating(&value)
			assert.NoError(t, err)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		for _, v := range []int{0, 6, -1} {
			value := v
			_, err := Rating(&value)
			assert.Error(t, err)
		}
	})
}

func TestPasswordStrength(t *testing.T) {
	assert.NoError(t, PasswordStrength("reading4fun"))
	assert.Error(t, PasswordStrength("short1"))
	assert.Error(t, PasswordStrength("onlyletters"))
	assert.Error(t, PasswordStrength("12345678"))
}

func TestFileUpload(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		ext, err := FileUpload("avatar.PNG", []byte{1, 2, 3})
		assert.NoError(t, err)
		assert.Equal(t, ".png", ext)
	})

	t.Run("BadExtension", func(t *testing.T) {
		_, err := FileUpload("avatar.svg", []byte{1})
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := FileUpload("avatar.jpg", nil)
		assert.Error(t, err)
	})

	t.Run("TooLarge", func(t *testing.T) {
		_, err := FileUpload("avatar.jpg", make([]byte, MaxProfilePictureSize+1))
		assert.Error(t, err)
	})
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Message: "rating must be between 1 and 5 stars"}
	assert.Equal(t, "rating must be between 1 and 5 stars", err.Error())
}
