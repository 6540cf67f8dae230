package ai

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"studybuddy/internal/config"
	"studybuddy/internal/models"
)

func TestTimelineRequestCarriesFilesInOrder(t *testing.T) {
	b := NewBuilder(config.ModelConfig{})
	files := []models.UploadedFile{
		testFile("f1", "lecture.mp3", models.CategoryAudio, "audio/mpeg", []byte("audio")),
		testFile("f2", "board.jpg", models.CategoryImage, "image/jpeg", []byte("jpeg")),
	}
	req, err := b.Timeline(files)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Model != "gemini-3-flash-preview" {
		t.Fatalf("model = %s", req.Model)
	}
	parts := req.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("expected 2 file parts plus prompt, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "audio/mpeg" || !bytes.Equal(parts[0].InlineData.Data, []byte("audio")) {
		t.Fatalf("first part is not the audio file: %#v", parts[0])
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/jpeg" {
		t.Fatalf("second part is not the image file: %#v", parts[1])
	}
	prompt := parts[2].Text
	if !strings.Contains(prompt, "chronological") || !strings.Contains(prompt, "board.jpg") || !strings.Contains(prompt, "LaTeX") {
		t.Fatalf("prompt missing instructions: %q", prompt)
	}
	if req.Config.ResponseMIMEType != "application/json" || req.Config.ResponseSchema.Type != genai.TypeArray {
		t.Fatalf("structured output not requested: %#v", req.Config)
	}
	if got := *req.Config.ThinkingConfig.ThinkingBudget; got != 1024 {
		t.Fatalf("thinking budget = %d", got)
	}
	required := strings.Join(req.Config.ResponseSchema.Items.Required, ",")
	if required != "timestamp,title,description,importance" {
		t.Fatalf("required fields = %s", required)
	}
}

func TestExamRequest(t *testing.T) {
	b := NewBuilder(config.ModelConfig{})
	req, err := b.Exam([]models.UploadedFile{testFile("f1", "syllabus.pdf", models.CategoryPDF, "application/pdf", []byte("%PDF"))})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Model != "gemini-3-pro-preview" || *req.Config.ThinkingConfig.ThinkingBudget != 2048 {
		t.Fatalf("unexpected exam config: %s %#v", req.Model, req.Config.ThinkingConfig)
	}
	if _, ok := req.Config.ResponseSchema.Items.Properties["examProbability"]; !ok {
		t.Fatalf("schema lacks examProbability")
	}
}

func TestBuildersGuardInput(t *testing.T) {
	b := NewBuilder(config.ModelConfig{})
	audio := testFile("a", "x.mp3", models.CategoryAudio, "audio/mpeg", []byte("a"))
	image := testFile("i", "x.png", models.CategoryImage, "image/png", []byte("p"))
	empty := models.UploadedFile{ID: "e", Category: models.CategoryImage}

	cases := []struct {
		name string
		err  error
		run  func() error
	}{
		{"timeline without files", ErrNoFiles, func() error { _, err := b.Timeline(nil); return err }},
		{"exam without files", ErrNoFiles, func() error { _, err := b.Exam(nil); return err }},
		{"blank search", ErrEmptyQuery, func() error { _, err := b.Search("   "); return err }},
		{"edit without file", ErrMissingImage, func() error { _, err := b.ImageEdit(nil, "crop"); return err }},
		{"edit non-image", ErrMissingImage, func() error { _, err := b.ImageEdit(&audio, "crop"); return err }},
		{"edit empty payload", ErrMissingImage, func() error { _, err := b.ImageEdit(&empty, "crop"); return err }},
		{"edit blank instruction", ErrEmptyInstruction, func() error { _, err := b.ImageEdit(&image, " "); return err }},
		{"blank visual aid", ErrEmptyDescription, func() error { _, err := b.VisualAid(""); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestSearchRequestEnablesGrounding(t *testing.T) {
	req, err := NewBuilder(config.ModelConfig{Search: "custom-model"}).Search("photosynthesis")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Model != "custom-model" {
		t.Fatalf("configured model ignored: %s", req.Model)
	}
	if len(req.Config.Tools) != 1 || req.Config.Tools[0].GoogleSearch == nil {
		t.Fatalf("google search tool missing")
	}
	if req.Config.ResponseSchema != nil {
		t.Fatalf("search must not constrain output")
	}
	if !strings.Contains(req.Contents[0].Parts[0].Text, `"photosynthesis"`) {
		t.Fatalf("query not quoted in prompt: %q", req.Contents[0].Parts[0].Text)
	}
}

func TestImageRequests(t *testing.T) {
	b := NewBuilder(config.ModelConfig{})
	image := testFile("i", "board.png", models.CategoryImage, "image/png", []byte("png"))
	req, err := b.ImageEdit(&image, "Add a red circle around the formula")
	if err != nil {
		t.Fatalf("build edit: %v", err)
	}
	parts := req.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[1].Text != "Add a red circle around the formula" {
		t.Fatalf("unexpected edit parts: %#v", parts)
	}
	if req.Model != "gemini-2.5-flash-image" {
		t.Fatalf("model = %s", req.Model)
	}

	req, err = b.VisualAid("the Krebs cycle")
	if err != nil {
		t.Fatalf("build visual: %v", err)
	}
	if got := req.Contents[0].Parts[0].Text; got != "Create a clear, educational diagram or illustration for: the Krebs cycle" {
		t.Fatalf("prompt = %q", got)
	}
}
