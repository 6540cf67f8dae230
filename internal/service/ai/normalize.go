package ai

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"google.golang.org/genai"

	"studybuddy/internal/models"
)

var (
	ErrEmptyReply     = errors.New("ai reply was empty")
	ErrMalformedReply = errors.New("ai reply was not the expected json")
	ErrNoImage        = errors.New("ai reply contained no image")
)

const noSearchAnswer = "No response found."

type timelineItem struct {
	Timestamp   string `json:"timestamp"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
	LinkedImage string `json:"linkedImage"`
}

type insightItem struct {
	Topic              string  `json:"topic"`
	Summary            string  `json:"summary"`
	ExamProbability    float64 `json:"examProbability"`
	RelatedSearchQuery string  `json:"relatedSearchQuery"`
}

// NormalizeTimeline converts the reply into a batch of events. files are
// the materials the request was built from; linkedImage names are
// resolved against their image entries.
func NormalizeTimeline(resp *genai.GenerateContentResponse, files []models.UploadedFile) ([]models.TimelineEvent, error) {
	var items []timelineItem
	if err := decodeArray(resp, &items); err != nil {
		return nil, err
	}
	imageIDs := make(map[string]string)
	for _, f := range files {
		if f.Category != models.CategoryImage {
			continue
		}
		if _, seen := imageIDs[f.Name]; !seen {
			imageIDs[f.Name] = f.ID
		}
	}
	events := make([]models.TimelineEvent, 0, len(items))
	for i, item := range items {
		events = append(events, models.TimelineEvent{
			ID:            fmt.Sprintf("event-%d", i),
			Timestamp:     Sanitize(item.Timestamp),
			Title:         Sanitize(item.Title),
			Description:   Sanitize(item.Description),
			Importance:    models.ParseImportance(item.Importance),
			LinkedImageID: imageIDs[strings.TrimSpace(item.LinkedImage)],
		})
	}
	return events, nil
}

// NormalizeInsights converts the reply into exam predictions.
func NormalizeInsights(resp *genai.GenerateContentResponse) ([]models.StudyInsight, error) {
	var items []insightItem
	if err := decodeArray(resp, &items); err != nil {
		return nil, err
	}
	insights := make([]models.StudyInsight, 0, len(items))
	for _, item := range items {
		insights = append(insights, models.StudyInsight{
			Topic:              Sanitize(item.Topic),
			Summary:            Sanitize(item.Summary),
			ExamProbability:    clampProbability(item.ExamProbability),
			RelatedSearchQuery: strings.TrimSpace(Sanitize(item.RelatedSearchQuery)),
		})
	}
	return insights, nil
}

// NormalizeSearch extracts the grounded answer and its web sources.
func NormalizeSearch(query string, resp *genai.GenerateContentResponse) models.SearchResult {
	text := replyText(resp)
	if strings.TrimSpace(text) == "" {
		text = noSearchAnswer
	}
	result := models.SearchResult{
		Query:   strings.TrimSpace(query),
		Text:    Sanitize(text),
		Sources: []models.Source{},
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return result
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return result
	}
	seen := make(map[string]struct{})
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		host, ok := webHost(chunk.Web.URI)
		if !ok {
			continue
		}
		if _, dup := seen[chunk.Web.URI]; dup {
			continue
		}
		seen[chunk.Web.URI] = struct{}{}
		title := strings.TrimSpace(Sanitize(chunk.Web.Title))
		if title == "" {
			title = host
		}
		result.Sources = append(result.Sources, models.Source{URI: chunk.Web.URI, Title: title})
	}
	return result
}

// NormalizeImage returns the first inline image of the reply as a data URI.
func NormalizeImage(prompt, sourceFileID string, resp *genai.GenerateContentResponse) (models.GeneratedImage, error) {
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				mimeType := part.InlineData.MIMEType
				if mimeType != "" && !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
					continue
				}
				if mimeType == "" {
					mimeType = "image/png"
				}
				return models.GeneratedImage{
					Prompt:       prompt,
					MIMEType:     mimeType,
					DataURI:      "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data),
					SourceFileID: sourceFileID,
				}, nil
			}
		}
	}
	return models.GeneratedImage{}, ErrNoImage
}

// replyText joins the non-thought text parts of the first candidate.
func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func decodeArray(resp *genai.GenerateContentResponse, out any) error {
	text := stripFence(strings.TrimSpace(replyText(resp)))
	if text == "" {
		return ErrEmptyReply
	}
	if !strings.HasPrefix(text, "[") {
		return fmt.Errorf("%w: reply is not a json array", ErrMalformedReply)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return nil
}

// stripFence drops a ```json fence some models wrap around the payload.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func webHost(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	return parsed.Hostname(), true
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 0
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
