package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidSlug(t *testing.T) {
	for _, s := range []string{"jane", "jane-doe", "a1", "2026", "-"} {
		assert.True(t, IsValidSlug(s), s)
	}
	for _, s := range []string{"", "Jane", "jane doe", "jane_doe", "jané", "jane/doe"} {
		assert.False(t, IsValidSlug(s), s)
	}
}

func TestIsReservedSlug(t *testing.T) {
	assert.True(t, IsReservedSlug("admin"))
	assert.True(t, IsReservedSlug("Admin"))
	assert.True(t, IsReservedSlug("webhooks"))
	assert.False(t, IsReservedSlug("jane"))
}

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"Jane Doe's Work!":    "jane-does-work",
		"  --Hello   World-- ": "hello-world",
		"Ünïcode":             "ncode",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, GenerateSlug(in), in)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"https://WWW.Example.com/": "www.example.com",
		"example.com.":             "example.com",
		"example.com:8080":         "example.com",
		"Example.com/path?q=1":     "example.com",
		"  shop.example.org  ":     "shop.example.org",
		"":                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDomain(in), in)
	}
}

func TestUpdateBuilder(t *testing.T) {
	b := NewUpdateBuilder()
	assert.True(t, b.Empty())

	b.Set("title", "x").SetRaw("domain_verified = FALSE").Set("slug", "y").SetRaw("updated_at = NOW()")
	query, args := b.Build("portfolios", "id", 7, "id")

	assert.Equal(t, "UPDATE portfolios SET title = $1, domain_verified = FALSE, slug = $2, updated_at = NOW() WHERE id = $3 RETURNING id", query)
	assert.Equal(t, []any{"x", "y", 7}, args)
}
