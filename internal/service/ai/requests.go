package ai

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"studybuddy/internal/config"
	"studybuddy/internal/models"
)

var (
	ErrNoFiles          = errors.New("no study materials uploaded")
	ErrEmptyQuery       = errors.New("search query is empty")
	ErrMissingImage     = errors.New("an image file is required")
	ErrEmptyInstruction = errors.New("edit instruction is empty")
	ErrEmptyDescription = errors.New("visual aid description is empty")
)

const plainTextRules = `CRITICAL FORMATTING RULES:
- You are a Plain Text Assistant.
- DO NOT use Markdown formatting (no bold **, italics _, headers #).
- DO NOT use LaTeX (no $).
- Use standard capitalization and plain text.`

const searchRules = `CRITICAL FORMATTING RULES:
- You are a Plain Text Assistant.
- Provide a direct answer based on the search results.
- STRICTLY PROHIBIT Markdown (no bold **, italics _, headers #, code blocks).
- STRICTLY PROHIBIT LaTeX.
- Use simple numbering (1. 2. 3.) if a list is needed.
- Use standard capitalization and spacing.`

// Request is one fully prepared call to the model API.
type Request struct {
	Feature  string
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Builder turns session material into requests. It holds only model
// settings and never sees session state.
type Builder struct {
	models config.ModelConfig
}

// NewBuilder fills unset models with the defaults.
func NewBuilder(m config.ModelConfig) *Builder {
	def := config.Default().Models
	if m.Timeline == "" {
		m.Timeline = def.Timeline
	}
	if m.Exam == "" {
		m.Exam = def.Exam
	}
	if m.Search == "" {
		m.Search = def.Search
	}
	if m.Image == "" {
		m.Image = def.Image
	}
	if m.TimelineThinkBudget <= 0 {
		m.TimelineThinkBudget = def.TimelineThinkBudget
	}
	if m.ExamThinkBudget <= 0 {
		m.ExamThinkBudget = def.ExamThinkBudget
	}
	return &Builder{models: m}
}

// Timeline asks for a chronological concept timeline over every file.
func (b *Builder) Timeline(files []models.UploadedFile) (Request, error) {
	if len(files) == 0 {
		return Request{}, ErrNoFiles
	}
	parts, err := fileParts(files)
	if err != nil {
		return Request{}, err
	}
	parts = append(parts, genai.NewPartFromText(timelinePrompt(files)))
	return Request{
		Feature:  "timeline",
		Model:    b.models.Timeline,
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   timelineSchema(),
			ThinkingConfig:   &genai.ThinkingConfig{ThinkingBudget: int32Ptr(b.models.TimelineThinkBudget)},
		},
	}, nil
}

// Exam asks for three likely exam topics.
func (b *Builder) Exam(files []models.UploadedFile) (Request, error) {
	if len(files) == 0 {
		return Request{}, ErrNoFiles
	}
	parts, err := fileParts(files)
	if err != nil {
		return Request{}, err
	}
	parts = append(parts, genai.NewPartFromText(examPrompt))
	return Request{
		Feature:  "exam",
		Model:    b.models.Exam,
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   insightSchema(),
			ThinkingConfig:   &genai.ThinkingConfig{ThinkingBudget: int32Ptr(b.models.ExamThinkBudget)},
		},
	}, nil
}

// Search asks a web-grounded question.
func (b *Builder) Search(query string) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, ErrEmptyQuery
	}
	prompt := fmt.Sprintf("Answer the following query using the provided search tools: %q\n\n%s", query, searchRules)
	return Request{
		Feature:  "search",
		Model:    b.models.Search,
		Contents: genai.Text(prompt),
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		},
	}, nil
}

// ImageEdit asks for a modified version of an uploaded image.
func (b *Builder) ImageEdit(file *models.UploadedFile, instruction string) (Request, error) {
	if file == nil || file.Category != models.CategoryImage || file.Data == "" {
		return Request{}, ErrMissingImage
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return Request{}, ErrEmptyInstruction
	}
	raw, err := file.Bytes()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMissingImage, err)
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(raw, file.MIMEType),
		genai.NewPartFromText(instruction),
	}
	return Request{
		Feature:  "edit",
		Model:    b.models.Image,
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config:   &genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}, nil
}

// VisualAid asks for an illustration generated from text alone.
func (b *Builder) VisualAid(description string) (Request, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Request{}, ErrEmptyDescription
	}
	prompt := "Create a clear, educational diagram or illustration for: " + description
	return Request{
		Feature:  "visual",
		Model:    b.models.Image,
		Contents: []*genai.Content{genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser)},
		Config:   &genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}, nil
}

func fileParts(files []models.UploadedFile) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(files)+1)
	for i := range files {
		raw, err := files[i].Bytes()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", files[i].Name, err)
		}
		parts = append(parts, genai.NewPartFromBytes(raw, files[i].MIMEType))
	}
	return parts, nil
}

func timelinePrompt(files []models.UploadedFile) string {
	var images []string
	for _, f := range files {
		if f.Category == models.CategoryImage {
			images = append(images, f.Name)
		}
	}
	var sb strings.Builder
	sb.WriteString(`Analyze these lecture materials (audio, whiteboard images, syllabus).
Create a chronological study timeline of the key concepts covered.

For each key concept/event:
1. Assign a rough timestamp (e.g., "00:05:30" or "Beginning").
2. Provide a title and brief description.
3. Rate importance (high/medium/low) based on emphasis in the audio or syllabus.
4. If a whiteboard image seems relevant to this specific timestamp, mention its visual content in the description`)
	if len(images) > 0 {
		sb.WriteString(" and set linkedImage to its file name.\nImage files, in the order they were attached: ")
		sb.WriteString(strings.Join(images, ", "))
	} else {
		sb.WriteString(".")
	}
	sb.WriteString("\n\n")
	sb.WriteString(plainTextRules)
	sb.WriteString("\n\nReturn the data as a JSON array.")
	return sb.String()
}

var examPrompt = `Based on the provided lecture materials, predict 3 high-probability exam topics.
Explain why each topic is likely to appear (e.g., "Professor emphasized this twice", "Marked as core in syllabus").
Provide a search query to learn more about the topic.

` + plainTextRules

func int32Ptr(v int32) *int32 {
	return &v
}
