package model

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

type VariantStatus string

const (
	VariantPending VariantStatus = "pending"
	VariantQueued  VariantStatus = "queued"
	VariantReady   VariantStatus = "ready"
	VariantFailed  VariantStatus = "failed"
	VariantSkipped VariantStatus = "skipped"
)

// Asset is a stored image. OriginURL is the dedup key.
type Asset struct {
	ID            uuid.UUID         `json:"id"`
	OriginURL     string            `json:"origin_url"`
	StorageKey    string            `json:"storage_key"`
	URL           string            `json:"url"`
	FileName      string            `json:"file_name"`
	MimeType      string            `json:"mime_type"`
	SizeBytes     int64             `json:"size_bytes"`
	Width         *int              `json:"width,omitempty"`
	Height        *int              `json:"height,omitempty"`
	Variants      map[string]string `json:"variants"` // variant name => storage key
	VariantStatus VariantStatus     `json:"variant_status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// StorageKeyFor returns media/{id}/{fileName}.
func StorageKeyFor(id uuid.UUID, fileName string) string {
	return path.Join("media", id.String(), fileName)
}

// VariantKeyFor returns media/{id}/{stem}-{variant}.jpg.
func VariantKeyFor(id uuid.UUID, fileName, variant string) string {
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	return path.Join("media", id.String(), stem+"-"+variant+".jpg")
}

var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpe":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MimeTypeForFile derives the media type from the extension; ok is false for
// disallowed types.
func MimeTypeForFile(fileName string) (string, bool) {
	t, ok := allowedTypes[strings.ToLower(path.Ext(fileName))]
	return t, ok
}

// HasImageExtension reports whether the URL path looks like a direct image.
func HasImageExtension(p string) bool {
	_, ok := MimeTypeForFile(p)
	return ok
}
