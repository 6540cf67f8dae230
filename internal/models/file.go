package models

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileCategory is the declared kind of an uploaded study material.
type FileCategory string

const (
	CategoryAudio FileCategory = "audio"
	CategoryImage FileCategory = "image"
	CategoryPDF   FileCategory = "pdf"
)

// ParseFileCategory validates a category supplied by the client.
func ParseFileCategory(raw string) (FileCategory, error) {
	switch FileCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryAudio:
		return CategoryAudio, nil
	case CategoryImage:
		return CategoryImage, nil
	case CategoryPDF:
		return CategoryPDF, nil
	default:
		return "", fmt.Errorf("unknown file category %q", raw)
	}
}

// UploadedFile is one piece of material held in a study session.
// Data holds the base64 encoded bytes; together with MIMEType it is
// everything the collaborator needs to decode the original content.
type UploadedFile struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Category      FileCategory `json:"category"`
	PreviewHandle string       `json:"preview_handle"`
	Data          string       `json:"data"`
	MIMEType      string       `json:"mime_type"`
	Size          int64        `json:"size"`
	Pages         int          `json:"pages,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Bytes decodes the transport payload.
func (f *UploadedFile) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// FileView is the payload-free shape handed to presentation.
type FileView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Category   FileCategory `json:"category"`
	MIMEType   string       `json:"mime_type"`
	Size       int64        `json:"size"`
	Pages      int          `json:"pages,omitempty"`
	PreviewURL string       `json:"preview_url"`
	CreatedAt  time.Time    `json:"created_at"`
}

// View strips the payload and resolves the preview handle against prefix.
func (f *UploadedFile) View(previewPrefix string) FileView {
	return FileView{
		ID:         f.ID,
		Name:       f.Name,
		Category:   f.Category,
		MIMEType:   f.MIMEType,
		Size:       f.Size,
		Pages:      f.Pages,
		PreviewURL: strings.TrimRight(previewPrefix, "/") + "/" + f.PreviewHandle,
		CreatedAt:  f.CreatedAt,
	}
}

// InferCategory guesses the category of a file from its MIME type,
// falling back to the file extension.
func InferCategory(name, mimeType string) (FileCategory, bool) {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio, true
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage, true
	case mt == "application/pdf":
		return CategoryPDF, true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav", ".m4a", ".aac", ".ogg", ".flac", ".webm":
		return CategoryAudio, true
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".heic":
		return CategoryImage, true
	case ".pdf":
		return CategoryPDF, true
	}
	return "", false
}
