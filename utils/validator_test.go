package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("writer@example.org"))
	assert.True(t, ValidateEmail("first.last+tag@sub.domain.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail("@example.org"))
}

func TestValidatePassword(t *testing.T) {
	ok, _ := ValidatePassword("short1")
	assert.False(t, ok, "too short")

	ok, msg := ValidatePassword("lettersonly")
	assert.False(t, ok)
	assert.Contains(t, msg, "digits")

	ok, _ = ValidatePassword("12345678")
	assert.False(t, ok, "digits only")

	ok, msg = ValidatePassword("stories2026")
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestValidLanguage(t *testing.T) {
	assert.True(t, ValidLanguage("en"))
	assert.True(t, ValidLanguage("sw"))
	assert.True(t, ValidLanguage("pt-BR"))
	assert.False(t, ValidLanguage("English"))
	assert.False(t, ValidLanguage(""))
	assert.False(t, ValidLanguage("e"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
	assert.Equal(t, "line1\nline2", SanitizeInput("line1\nline2"))
	assert.Equal(t, "tabhere\tok", SanitizeInput("tabhere\tok"))
	assert.Equal(t, "bell", SanitizeInput("be\x07ll"))
}
