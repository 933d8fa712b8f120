package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for resource fields.
const (
	maxNameLen     = 300
	maxSlugLen     = 300
	maxDescLen     = 10_000
	maxBodyLen     = 100_000
	maxExcerptLen  = 1_000
	maxMetaDescLen = 500
	maxCodeLen     = 50
)

// validateName checks a required display name and returns the first
// error found, or "" when valid.
func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "name is too long (max 300 characters)"
	}
	return ""
}

// validatePostFields checks blog post inputs.
func validatePostFields(title, body string) string {
	if strings.TrimSpace(title) == "" {
		return "title is required"
	}
	if utf8.RuneCountInString(title) > maxNameLen {
		return "title is too long (max 300 characters)"
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "body is too long (max 100,000 characters)"
	}
	return ""
}

// validateMetadata checks optional SEO metadata fields.
func validateMetadata(excerpt, metaDesc string) string {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "excerpt is too long (max 1,000 characters)"
	}
	if utf8.RuneCountInString(metaDesc) > maxMetaDescLen {
		return "meta description is too long (max 500 characters)"
	}
	return ""
}

// validateDiscountCode checks a coupon code: non-empty, bounded, and
// limited to letters, digits, and dashes.
func validateDiscountCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "code is required"
	}
	if utf8.RuneCountInString(code) > maxCodeLen {
		return "code is too long (max 50 characters)"
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			return "code may only contain letters, digits, and dashes"
		}
	}
	return ""
}

// validateEmail does a minimal shape check; real validation happens when
// the invitation email bounces.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "email is required"
	}
	at := strings.IndexByte(email, '@')
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return "email is not valid"
	}
	return ""
}

// validatePassword enforces the minimum password length.
func validatePassword(password string) string {
	if utf8.RuneCountInString(password) < 8 {
		return "password must be at least 8 characters"
	}
	return ""
}
