// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"fmt"
	"strings"

	gslug "github.com/gosimple/slug"
)

// maxLen caps generated slugs so they stay usable as URL segments and
// fit the database columns.
const maxLen = 200

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := gslug.Make(strings.TrimSpace(s))
	if len(result) > maxLen {
		result = strings.Trim(result[:maxLen], "-")
	}
	return result
}

// WithSuffix appends a numeric suffix to a base slug, used to resolve
// collisions: "consulting" → "consulting-2".
func WithSuffix(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return s != "" && s == Generate(s)
}
