package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybuddy/internal/models"
	"studybuddy/internal/session"
)

// ErrRead is returned when the upload cannot be read in full.
var ErrRead = errors.New("failed to read file")

// Ingest reads one upload completely and turns it into an UploadedFile.
// The preview handle is only allocated after the read succeeded, so a
// failed ingestion leaves nothing behind.
func Ingest(ctx context.Context, r io.Reader, name, declaredMIME string, category models.FileCategory, previews session.PreviewStore) (models.UploadedFile, error) {
	if r == nil {
		return models.UploadedFile{}, fmt.Errorf("%w: no content", ErrRead)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if err := ctx.Err(); err != nil {
		return models.UploadedFile{}, err
	}

	mimeType := resolveMIME(declaredMIME, raw)
	file := models.UploadedFile{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Data:      base64.StdEncoding.EncodeToString(raw),
		MIMEType:  mimeType,
		Size:      int64(len(raw)),
		CreatedAt: time.Now(),
	}
	if category == models.CategoryPDF || mimeType == "application/pdf" {
		file.Pages = pageCount(raw)
	}

	if previews != nil {
		handle, err := previews.Put(ctx, session.Preview{MIMEType: mimeType, Data: raw})
		if err != nil {
			return models.UploadedFile{}, fmt.Errorf("allocate preview: %w", err)
		}
		file.PreviewHandle = handle
	}
	return file, nil
}

// resolveMIME prefers the type declared by the client and sniffs the
// content otherwise.
func resolveMIME(declared string, raw []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	sniffed := http.DetectContentType(raw)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mt
	}
	return strings.TrimSpace(sniffed)
}
