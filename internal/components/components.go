// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package components implements the page-builder block model: a closed
// set of typed content blocks with per-type default content and
// server-side content validation, plus the dense-ordering operations
// (append, remove, move) over a page's component list.
package components

import (
	"fmt"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// ErrUnknownType is returned when a component carries a type outside the
// closed enum.
var ErrUnknownType = fmt.Errorf("unknown component type")

// requiredKeys lists the content keys every component of a type must
// carry. Types absent from the map (SPACER has an optional size,
// DIVIDER and IMAGE_CAROUSEL carry no content) require none.
var requiredKeys = map[models.ComponentType][]string{
	models.ComponentHeading:     {"text", "level"},
	models.ComponentTextBlock:   {"html"},
	models.ComponentImage:       {"imageUrl", "altText"},
	models.ComponentVideoEmbed:  {"videoUrl"},
	models.ComponentReviewCard:  {"quote", "author"},
	models.ComponentArticleGrid: {"heading", "limit"},
	models.ComponentQuoteBlock:  {"text"},
	models.ComponentCTAButton:   {"label", "url"},
}

// knownTypes is the closed component type enum.
var knownTypes = map[models.ComponentType]bool{
	models.ComponentHeading:       true,
	models.ComponentTextBlock:     true,
	models.ComponentImage:         true,
	models.ComponentImageCarousel: true,
	models.ComponentVideoEmbed:    true,
	models.ComponentReviewCard:    true,
	models.ComponentArticleGrid:   true,
	models.ComponentQuoteBlock:    true,
	models.ComponentCTAButton:     true,
	models.ComponentSpacer:        true,
	models.ComponentDivider:       true,
}

// KnownType reports whether t is part of the closed component enum.
func KnownType(t models.ComponentType) bool {
	return knownTypes[t]
}

// DefaultContent returns the initial content map for a freshly added
// component of the given type.
func DefaultContent(t models.ComponentType) map[string]any {
	switch t {
	case models.ComponentHeading:
		return map[string]any{"text": "", "level": 2}
	case models.ComponentTextBlock:
		return map[string]any{"html": ""}
	case models.ComponentImage:
		return map[string]any{"imageUrl": "", "altText": "", "caption": ""}
	case models.ComponentImageCarousel:
		return map[string]any{}
	case models.ComponentVideoEmbed:
		return map[string]any{"videoUrl": "", "caption": ""}
	case models.ComponentReviewCard:
		return map[string]any{"quote": "", "author": "", "rating": 5}
	case models.ComponentArticleGrid:
		return map[string]any{"heading": "", "limit": 3}
	case models.ComponentQuoteBlock:
		return map[string]any{"text": "", "attribution": ""}
	case models.ComponentCTAButton:
		return map[string]any{"label": "", "url": ""}
	case models.ComponentSpacer:
		return map[string]any{"size": "md"}
	case models.ComponentDivider:
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// ValidateContent checks a component's content map against its type:
// the type must be known and every required key present. Extra keys are
// allowed so block editors can evolve without schema migrations.
func ValidateContent(t models.ComponentType, content map[string]any) error {
	if !knownTypes[t] {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	for _, key := range requiredKeys[t] {
		if _, ok := content[key]; !ok {
			return fmt.Errorf("component type %s: missing content key %q", t, key)
		}
	}
	return nil
}

// Renumber rewrites every component's Order to its index, restoring the
// dense 0..N-1 invariant. Called defensively after every list mutation.
func Renumber(list []models.PageComponent) {
	for i := range list {
		list[i].Order = i
	}
}

// Append adds a new component of the given type at the end of the list,
// populated with its per-type default content.
func Append(list []models.PageComponent, t models.ComponentType) []models.PageComponent {
	c := models.PageComponent{
		ID:      uuid.New(),
		Type:    t,
		Content: DefaultContent(t),
		Order:   len(list),
	}
	return append(list, c)
}

// Remove filters out the component with the given id and renumbers the
// remainder. Removing an absent id is a no-op.
func Remove(list []models.PageComponent, id uuid.UUID) []models.PageComponent {
	result := list[:0]
	for _, c := range list {
		if c.ID != id {
			result = append(result, c)
		}
	}
	Renumber(result)
	return result
}

// MoveUp swaps the component with its previous neighbor. The first
// component stays put. The full list is renumbered afterwards so the
// dense invariant holds even if orders were inconsistent on entry.
func MoveUp(list []models.PageComponent, id uuid.UUID) {
	for i := range list {
		if list[i].ID == id {
			if i > 0 {
				list[i-1], list[i] = list[i], list[i-1]
			}
			break
		}
	}
	Renumber(list)
}

// MoveDown swaps the component with its next neighbor. The last
// component stays put.
func MoveDown(list []models.PageComponent, id uuid.UUID) {
	for i := range list {
		if list[i].ID == id {
			if i < len(list)-1 {
				list[i], list[i+1] = list[i+1], list[i]
			}
			break
		}
	}
	Renumber(list)
}

// RenumberCarousel rewrites a carousel image list to dense 0..N-1 order.
// The operation is scoped to one component's sub-list only.
func RenumberCarousel(images []models.CarouselImage) {
	for i := range images {
		images[i].Order = i
	}
}

// RemoveCarouselImage filters one image out of a carousel and renumbers
// the remainder.
func RemoveCarouselImage(images []models.CarouselImage, id uuid.UUID) []models.CarouselImage {
	result := images[:0]
	for _, img := range images {
		if img.ID != id {
			result = append(result, img)
		}
	}
	RenumberCarousel(result)
	return result
}

// Normalize prepares an incoming component list for persistence: orders
// are rewritten to the input sequence (dense 0..N-1), carousel image
// orders likewise, missing ids are assigned, and every component's
// content is validated against its type. Carousel images on
// non-carousel components are rejected.
func Normalize(list []models.PageComponent) error {
	for i := range list {
		c := &list[i]
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.Content == nil {
			c.Content = DefaultContent(c.Type)
		}
		if err := ValidateContent(c.Type, c.Content); err != nil {
			return err
		}
		if len(c.CarouselImages) > 0 && c.Type != models.ComponentImageCarousel {
			return fmt.Errorf("component type %s: carousel images only allowed on %s", c.Type, models.ComponentImageCarousel)
		}
		for j := range c.CarouselImages {
			if c.CarouselImages[j].ID == uuid.Nil {
				c.CarouselImages[j].ID = uuid.New()
			}
		}
		RenumberCarousel(c.CarouselImages)
	}
	Renumber(list)
	return nil
}
