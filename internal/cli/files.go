package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"studybuddy/internal/models"
)

// addFiles uploads every path into the app session.
func (a *app) addFiles(ctx context.Context, paths []string) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(paths))
	for _, p := range paths {
		f, err := a.addFile(ctx, p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (a *app) addFile(ctx context.Context, path string) (models.UploadedFile, error) {
	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	category, ok := models.InferCategory(name, mimeType)
	if !ok {
		return models.UploadedFile{}, fmt.Errorf("%s: cannot tell whether this is audio, image or pdf", path)
	}
	fh, err := os.Open(path)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	return a.service.AddFile(ctx, a.sessionID, fh, name, mimeType, category)
}
