// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ComponentType identifies the kind of content block a PageComponent is.
// The set is closed: creating a component with an unknown type is a
// validation error.
type ComponentType string

const (
	ComponentHeading       ComponentType = "HEADING"
	ComponentTextBlock     ComponentType = "TEXT_BLOCK"
	ComponentImage         ComponentType = "IMAGE"
	ComponentImageCarousel ComponentType = "IMAGE_CAROUSEL"
	ComponentVideoEmbed    ComponentType = "VIDEO_EMBED"
	ComponentReviewCard    ComponentType = "REVIEW_CARD"
	ComponentArticleGrid   ComponentType = "ARTICLE_GRID"
	ComponentQuoteBlock    ComponentType = "QUOTE_BLOCK"
	ComponentCTAButton     ComponentType = "CTA_BUTTON"
	ComponentSpacer        ComponentType = "SPACER"
	ComponentDivider       ComponentType = "DIVIDER"
)

// PageComponent is one typed content block in a service page's ordered
// component list. Content holds the type-specific payload; its required
// keys are validated against the component type before persisting.
// Order is dense 0..N-1 within one service and renumbered on every
// mutation of the list.
type PageComponent struct {
	ID           uuid.UUID       `json:"id"`
	ServiceID    uuid.UUID       `json:"service_id"`
	Type         ComponentType   `json:"type"`
	Content      map[string]any  `json:"content"`
	StyleVariant *string         `json:"style_variant,omitempty"`
	Order        int             `json:"order"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Present only for IMAGE_CAROUSEL components.
	CarouselImages []CarouselImage `json:"carousel_images,omitempty"`
}

// CarouselImage is an ordered sub-item belonging to one IMAGE_CAROUSEL
// component. Order is dense 0..N-1 within its parent component.
type CarouselImage struct {
	ID          uuid.UUID `json:"id"`
	ComponentID uuid.UUID `json:"component_id"`
	ImageURL    string    `json:"image_url"`
	AltText     string    `json:"alt_text"`
	Caption     string    `json:"caption"`
	Order       int       `json:"order"`
}
