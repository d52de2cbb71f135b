package middleware

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// Field limits matching database schema constraints.
const (
	MaxUserIDLen      = 64  // users.id VARCHAR(64), gateway-issued
	MaxTitleLen       = 120 // videos.title VARCHAR(120)
	MaxDescriptionLen = 500 // videos.description VARCHAR(500)

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// userIDRe matches gateway-issued user IDs: alphanumeric, dash, underscore.
var userIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoID checks that a video ID is a well-formed UUID and
// returns its canonical form.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoId is required"
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", "videoId must be a valid UUID"
	}
	return parsed.String(), ""
}

// ValidateUserID checks that a user ID is well-formed and within DB limits.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "userId is required"
	}
	if len(id) > MaxUserIDLen {
		return "", "userId must be at most 64 characters"
	}
	if !userIDRe.MatchString(id) {
		return "", "userId contains invalid characters"
	}
	return id, ""
}

// ValidatePage parses a 1-based page number; empty defaults to 1.
func ValidatePage(raw string) (int, string) {
	if raw == "" {
		return 1, ""
	}
	page := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, "page must be a positive integer"
		}
		page = page*10 + int(r-'0')
		if page > 1_000_000 {
			return 0, "page out of range"
		}
	}
	if page < 1 {
		return 0, "page must be at least 1"
	}
	return page, ""
}

// ValidatePageSize parses a page size; empty defaults to DefaultPageSize,
// values above MaxPageSize are rejected.
func ValidatePageSize(raw string) (int, string) {
	if raw == "" {
		return DefaultPageSize, ""
	}
	size := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, "pageSize must be a positive integer"
		}
		size = size*10 + int(r-'0')
		if size > MaxPageSize {
			return 0, "pageSize must be at most 100"
		}
	}
	if size < 1 {
		return 0, "pageSize must be at least 1"
	}
	return size, ""
}

// ValidateTitle trims and bounds a video title.
func ValidateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "title is required"
	}
	if len(title) > MaxTitleLen {
		return "", "title must be at most 120 characters"
	}
	return title, ""
}

// ValidateDescription trims and truncates a description to DB limits.
// Truncation backs up to a rune boundary so the stored text stays valid UTF-8.
func ValidateDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if len(desc) > MaxDescriptionLen {
		cut := MaxDescriptionLen
		for cut > 0 && !utf8.RuneStart(desc[cut]) {
			cut--
		}
		desc = desc[:cut]
	}
	return desc
}
