package models

import (
	"time"

	"github.com/google/uuid"
)

// Media represents one uploaded file stored in S3-compatible object
// storage. The admin UI references media by its public URL (image fields
// on products, services, and page components).
type Media struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	S3Key        string    `json:"s3_key"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedBy   uuid.UUID `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
