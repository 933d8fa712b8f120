// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// PostStore handles blog post database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, body, body_format, excerpt, status, meta_description, author_id, published_at, created_at, updated_at`

// scanPost scans a row into a BlogPost struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.BlogPost, error) {
	var p models.BlogPost
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body, &p.BodyFormat, &p.Excerpt,
		&p.Status, &p.MetaDescription, &p.AuthorID, &p.PublishedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PostListParams filters and paginates the blog post listing.
type PostListParams struct {
	Page   int
	Limit  int
	Search string
	Status string // "draft", "published", or "" for all
}

// List returns a filtered page of posts plus the total row count.
func (s *PostStore) List(p PostListParams) ([]models.BlogPost, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}

	var where []string
	var args []any
	if p.Search != "" {
		args = append(args, "%"+strings.ToLower(p.Search)+"%")
		where = append(where, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(slug) LIKE $%d)", len(args), len(args)))
	}
	if p.Status != "" {
		args = append(args, p.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM blog_posts `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	args = append(args, p.Limit, (p.Page-1)*p.Limit)
	query := fmt.Sprintf(`SELECT %s FROM blog_posts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, whereClause, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.BlogPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *post)
	}
	return items, total, rows.Err()
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.BlogPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// SlugExists reports whether any post already uses the given slug.
func (s *PostStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new post. Publishing sets published_at if unset.
func (s *PostStore) Create(p *models.BlogPost) (*models.BlogPost, error) {
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	row := s.db.QueryRow(`
		INSERT INTO blog_posts (title, slug, body, body_format, excerpt, status, meta_description, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Body, p.BodyFormat, p.Excerpt, p.Status,
		p.MetaDescription, p.AuthorID, p.PublishedAt,
	)
	result, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err, "blog_posts_slug_key") {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post. Transitioning to published sets
// published_at if unset.
func (s *PostStore) Update(p *models.BlogPost) error {
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	_, err := s.db.Exec(`
		UPDATE blog_posts SET
			title = $1, slug = $2, body = $3, body_format = $4, excerpt = $5,
			status = $6, meta_description = $7, published_at = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Slug, p.Body, p.BodyFormat, p.Excerpt, p.Status,
		p.MetaDescription, p.PublishedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err, "blog_posts_slug_key") {
			return ErrSlugTaken
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Autosave updates only a post's title and body. Status and metadata
// are untouched so a draft cannot accidentally publish itself.
func (s *PostStore) Autosave(id uuid.UUID, title, body string) error {
	result, err := s.db.Exec(`
		UPDATE blog_posts SET title = $1, body = $2, updated_at = NOW() WHERE id = $3
	`, title, body, id)
	if err != nil {
		return fmt.Errorf("autosave post: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post by ID.
func (s *PostStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
