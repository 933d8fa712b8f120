// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"shopadmin/internal/imaging"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/slug"
	"shopadmin/internal/storage"
	"shopadmin/internal/store"
)

// Media groups the file upload HTTP handlers. Uploads go to S3; image
// uploads additionally get responsive WebP variants.
type Media struct {
	store    *store.MediaStore
	storage  *storage.Client // nil when object storage is not configured
	maxBytes int64
}

// NewMedia creates a new Media handler group.
func NewMedia(s *store.MediaStore, sc *storage.Client, maxBytes int64) *Media {
	return &Media{store: s, storage: sc, maxBytes: maxBytes}
}

// mediaView is a media record decorated with its public URL and, for
// images, the generated variant URLs.
type mediaView struct {
	models.Media
	URL      string            `json:"url"`
	Variants map[string]string `json:"variants,omitempty"`
}

// List returns recent uploads with their public URLs.
func (h *Media) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.store.List(limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	views := make([]mediaView, 0, len(items))
	for _, m := range items {
		v := mediaView{Media: m}
		if h.storage != nil {
			v.URL = h.storage.FileURL(m.S3Key)
		}
		views = append(views, v)
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": views})
}

// Upload accepts a multipart file, stores it in object storage, records
// it, and returns the public URL. Image files get WebP variants uploaded
// next to the original.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	key := buildObjectKey(header.Filename)
	if err := h.storage.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("s3 upload failed", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	m, err := h.store.Create(&models.Media{
		OriginalName: header.Filename,
		S3Key:        key,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		UploadedBy:   sess.UserID,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	view := mediaView{Media: *m, URL: h.storage.FileURL(key)}
	if strings.HasPrefix(contentType, "image/") && contentType != "image/svg+xml" {
		view.Variants = h.uploadVariants(r, key, data)
	}

	slog.Info("media uploaded", "id", m.ID, "key", key, "size", m.SizeBytes)
	respondJSON(w, http.StatusCreated, view)
}

// uploadVariants generates WebP renditions and uploads them next to
// the original. Rendition failures are logged, not fatal; the original
// upload already succeeded.
func (h *Media) uploadVariants(r *http.Request, originalKey string, data []byte) map[string]string {
	renditions, err := imaging.Renditions(data, nil)
	if err != nil {
		slog.Warn("rendition generation failed", "key", originalKey, "error", err)
		return nil
	}

	base := strings.TrimSuffix(originalKey, filepath.Ext(originalKey))
	urls := make(map[string]string, len(renditions))
	for _, rd := range renditions {
		key := fmt.Sprintf("%s-%s.webp", base, rd.Label)
		if err := h.storage.Upload(r.Context(), key, imaging.WebPContentType, bytes.NewReader(rd.WebP), int64(len(rd.WebP))); err != nil {
			slog.Warn("rendition upload failed", "key", key, "error", err)
			continue
		}
		urls[rd.Label] = h.storage.FileURL(key)
	}
	return urls
}

// Delete removes a media record and its object, variants included.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	m, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if m == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	if h.storage != nil {
		if err := h.storage.Delete(r.Context(), m.S3Key); err != nil {
			slog.Warn("s3 delete failed", "key", m.S3Key, "error", err)
		}
		if strings.HasPrefix(m.ContentType, "image/") {
			base := strings.TrimSuffix(m.S3Key, filepath.Ext(m.S3Key))
			for _, s := range imaging.MediaSizes {
				key := fmt.Sprintf("%s-%s.webp", base, s.Label)
				if err := h.storage.Delete(r.Context(), key); err != nil {
					slog.Debug("rendition delete failed", "key", key, "error", err)
				}
			}
		}
	}

	if err := h.store.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// buildObjectKey derives a collision-free S3 key from the original
// filename: uploads/YYYY/MM/<slug>-<short-uuid><ext>.
func buildObjectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	now := time.Now()
	return fmt.Sprintf("uploads/%d/%02d/%s-%s%s",
		now.Year(), now.Month(), slug.Generate(name), uuid.NewString()[:8], ext)
}
