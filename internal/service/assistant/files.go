package assistant

import (
	"context"
	"fmt"
	"io"
	"log"

	"studybuddy/internal/ingest"
	"studybuddy/internal/models"
	"studybuddy/internal/session"
)

// AddFile ingests one upload and appends it to the session.
func (s *Service) AddFile(ctx context.Context, sessionID string, r io.Reader, name, mimeType string, category models.FileCategory) (models.UploadedFile, error) {
	if sessionID == "" {
		return models.UploadedFile{}, session.ErrNoSession
	}
	file, err := ingest.Ingest(ctx, r, name, mimeType, category, s.previews)
	if err != nil {
		return models.UploadedFile{}, err
	}
	if err := s.store.Update(ctx, sessionID, func(st *session.State) error {
		st.AddFile(file)
		return nil
	}); err != nil {
		s.releasePreview(file.PreviewHandle)
		return models.UploadedFile{}, fmt.Errorf("save file: %w", err)
	}
	log.Printf("session %s: added %s file %q (%d bytes)", shortID(sessionID), file.Category, file.Name, file.Size)
	return file, nil
}

// RemoveFile drops one file and frees its preview. Unknown ids are a no-op.
func (s *Service) RemoveFile(ctx context.Context, sessionID, fileID string) error {
	var removed models.UploadedFile
	var found bool
	err := s.store.Update(ctx, sessionID, func(st *session.State) error {
		removed, found = st.RemoveFile(fileID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	if found {
		s.releasePreview(removed.PreviewHandle)
	}
	return nil
}

func (s *Service) releasePreview(handle string) {
	if handle == "" || s.previews == nil {
		return
	}
	if err := s.previews.Release(context.Background(), handle); err != nil {
		log.Printf("release preview %s: %v", handle, err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
