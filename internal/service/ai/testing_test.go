package ai

import (
	"context"
	"encoding/base64"

	"google.golang.org/genai"

	"studybuddy/internal/models"
)

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	calls  int
	model  string
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	return f.resp, f.err
}

func textReply(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func testFile(id, name string, category models.FileCategory, mimeType string, payload []byte) models.UploadedFile {
	return models.UploadedFile{
		ID:       id,
		Name:     name,
		Category: category,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(payload),
		Size:     int64(len(payload)),
	}
}
