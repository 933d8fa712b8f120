// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a blog post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// BodyFormat identifies the markup language of a post body.
type BodyFormat string

const (
	BodyFormatMarkdown BodyFormat = "markdown"
	BodyFormatHTML     BodyFormat = "html"
)

// BlogPost represents an article in the shop's blog. The body is edited
// in a rich-text editor client-side; the autosave endpoint updates title
// and body only, independent of the rest of the fields.
type BlogPost struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Body            string     `json:"body"`
	BodyFormat      BodyFormat `json:"body_format"`
	Excerpt         *string    `json:"excerpt,omitempty"`
	Status          PostStatus `json:"status"`
	MetaDescription *string    `json:"meta_description,omitempty"`
	AuthorID        uuid.UUID  `json:"author_id"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is in published status.
func (p *BlogPost) IsPublished() bool {
	return p.Status == PostStatusPublished
}
