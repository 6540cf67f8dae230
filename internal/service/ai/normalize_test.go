package ai

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"

	"studybuddy/internal/models"
)

func TestNormalizeTimeline(t *testing.T) {
	files := []models.UploadedFile{
		testFile("f1", "lecture.mp3", models.CategoryAudio, "audio/mpeg", []byte("a")),
		testFile("f2", "board.jpg", models.CategoryImage, "image/jpeg", []byte("j")),
	}
	resp := textReply(`[{"timestamp":"00:01:00","title":"Intro","description":"Overview","importance":"high","linkedImage":"board.jpg"}]`)

	events, err := NormalizeTimeline(resp, files)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := models.TimelineEvent{
		ID:            "event-0",
		Timestamp:     "00:01:00",
		Title:         "Intro",
		Description:   "Overview",
		Importance:    models.ImportanceHigh,
		LinkedImageID: "f2",
	}
	if len(events) != 1 || events[0] != want {
		t.Fatalf("unexpected events: %#v", events)
	}
}

func TestNormalizeTimelineIDsFollowOrder(t *testing.T) {
	var items []string
	for i := 0; i < 5; i++ {
		items = append(items, fmt.Sprintf(`{"timestamp":"t%d","title":"**T%d**","description":"d","importance":"urgent"}`, i, i))
	}
	events, err := NormalizeTimeline(textReply("["+strings.Join(items, ",")+"]"), nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for i, ev := range events {
		if ev.ID != fmt.Sprintf("event-%d", i) || ev.Timestamp != fmt.Sprintf("t%d", i) {
			t.Fatalf("event %d out of order: %#v", i, ev)
		}
		if ev.Title != fmt.Sprintf("T%d", i) {
			t.Fatalf("title not sanitized: %q", ev.Title)
		}
		if ev.Importance != models.ImportanceMedium {
			t.Fatalf("unknown importance should map to medium, got %q", ev.Importance)
		}
		if ev.LinkedImageID != "" {
			t.Fatalf("unexpected linked image")
		}
	}
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
}

func TestNormalizeParsePolicy(t *testing.T) {
	if _, err := NormalizeTimeline(textReply("  "), nil); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
	if _, err := NormalizeTimeline(&genai.GenerateContentResponse{}, nil); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply for no candidates, got %v", err)
	}
	if _, err := NormalizeInsights(textReply("not json")); !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
	for _, reply := range []string{"null", `{"timestamp":"x"}`, `"text"`} {
		if _, err := NormalizeTimeline(textReply(reply), nil); !errors.Is(err, ErrMalformedReply) {
			t.Fatalf("timeline %s: expected ErrMalformedReply, got %v", reply, err)
		}
		if _, err := NormalizeInsights(textReply(reply)); !errors.Is(err, ErrMalformedReply) {
			t.Fatalf("insights %s: expected ErrMalformedReply, got %v", reply, err)
		}
	}
	events, err := NormalizeTimeline(textReply("[]"), nil)
	if err != nil || len(events) != 0 {
		t.Fatalf("empty array should be an empty batch: %#v %v", events, err)
	}
	fenced := "```json\n[{\"topic\":\"Cells\",\"summary\":\"s\",\"examProbability\":40}]\n```"
	insights, err := NormalizeInsights(textReply(fenced))
	if err != nil || len(insights) != 1 {
		t.Fatalf("fenced json rejected: %v", err)
	}
}

func TestNormalizeInsights(t *testing.T) {
	resp := textReply(`[
		{"topic":"# Mitosis","summary":"Stressed $twice$","examProbability":140,"relatedSearchQuery":"mitosis phases"},
		{"topic":"Osmosis","summary":"In syllabus","examProbability":-3},
		{"topic":"Enzymes","summary":"Core","examProbability":72.5,"relatedSearchQuery":"  "}
	]`)
	insights, err := NormalizeInsights(resp)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	if insights[0].Topic != " Mitosis" || insights[0].Summary != "Stressed twice" || insights[0].ExamProbability != 100 {
		t.Fatalf("unexpected first insight: %#v", insights[0])
	}
	if insights[1].ExamProbability != 0 || insights[1].RelatedSearchQuery != "" {
		t.Fatalf("unexpected second insight: %#v", insights[1])
	}
	if insights[2].ExamProbability != 72.5 || insights[2].RelatedSearchQuery != "" {
		t.Fatalf("unexpected third insight: %#v", insights[2])
	}
}

func TestNormalizeSearch(t *testing.T) {
	resp := textReply("Plants make **bold** sugar")
	resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://example.edu/photo", Title: "Photosynthesis"}},
			{Web: &genai.GroundingChunkWeb{URI: "https://example.edu/photo", Title: "Duplicate"}},
			{Web: &genai.GroundingChunkWeb{URI: "javascript:alert(1)", Title: "bad"}},
			{Web: &genai.GroundingChunkWeb{URI: "not a url", Title: "bad"}},
			{Web: &genai.GroundingChunkWeb{URI: "http://plants.org/a", Title: ""}},
			{},
		},
	}
	result := NormalizeSearch("photosynthesis", resp)
	if result.Text != "Plants make bold sugar" {
		t.Fatalf("text = %q", result.Text)
	}
	if result.Query != "photosynthesis" {
		t.Fatalf("query = %q", result.Query)
	}
	want := []models.Source{
		{URI: "https://example.edu/photo", Title: "Photosynthesis"},
		{URI: "http://plants.org/a", Title: "plants.org"},
	}
	if len(result.Sources) != len(want) {
		t.Fatalf("sources = %#v", result.Sources)
	}
	for i := range want {
		if result.Sources[i] != want[i] {
			t.Fatalf("source %d = %#v, want %#v", i, result.Sources[i], want[i])
		}
	}
}

func TestNormalizeSearchFallback(t *testing.T) {
	result := NormalizeSearch("q", &genai.GenerateContentResponse{})
	if result.Text != "No response found." || len(result.Sources) != 0 {
		t.Fatalf("unexpected fallback: %#v", result)
	}
}

func TestNormalizeSearchSkipsThoughts(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking...", Thought: true},
			{Text: "answer"},
		}},
	}}}
	if got := NormalizeSearch("q", resp).Text; got != "answer" {
		t.Fatalf("text = %q", got)
	}
}

func TestNormalizeImage(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "Here is your image"},
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}},
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{0x89}}},
		}},
	}}}
	img, err := NormalizeImage("diagram", "f1", resp)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if img.DataURI != "data:image/jpeg;base64,/9g=" || img.MIMEType != "image/jpeg" || img.SourceFileID != "f1" || img.Prompt != "diagram" {
		t.Fatalf("unexpected image: %#v", img)
	}

	resp.Candidates[0].Content.Parts[1].InlineData.MIMEType = ""
	img, _ = NormalizeImage("diagram", "", resp)
	if !strings.HasPrefix(img.DataURI, "data:image/png;base64,") {
		t.Fatalf("missing mime should default to png: %q", img.DataURI)
	}

	nonImage := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "text/plain", Data: []byte("x")}},
			{InlineData: &genai.Blob{MIMEType: "image/webp", Data: []byte("w")}},
		}},
	}}}
	img, err = NormalizeImage("x", "", nonImage)
	if err != nil || img.MIMEType != "image/webp" {
		t.Fatalf("non-image blob should be skipped: %#v %v", img, err)
	}
	nonImage.Candidates[0].Content.Parts = nonImage.Candidates[0].Content.Parts[:1]
	if _, err := NormalizeImage("x", "", nonImage); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage for text-only blob, got %v", err)
	}

	if _, err := NormalizeImage("x", "", textReply("sorry, text only")); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"**bold** text":      "bold text",
		"## Heading":         " Heading",
		"$E = mc^2$":         "E = mc^2",
		"  keep _this_ `x` ": "  keep _this_ `x` ",
		"":                   "",
	}
	for in, want := range cases {
		got := Sanitize(in)
		if got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
		if Sanitize(got) != got {
			t.Fatalf("Sanitize not idempotent for %q", in)
		}
	}
}
