package models

// StudyInsight is a predicted exam topic.
type StudyInsight struct {
	Topic              string  `json:"topic"`
	Summary            string  `json:"summary"`
	ExamProbability    float64 `json:"exam_probability"`
	RelatedSearchQuery string  `json:"related_search_query,omitempty"`
}

// Source is a web citation backing a search answer.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// SearchResult is a web-grounded answer with its citations.
type SearchResult struct {
	Query   string   `json:"query"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// GeneratedImage is an image produced by the collaborator, ready to be
// displayed through its data URI.
type GeneratedImage struct {
	Prompt       string `json:"prompt"`
	MIMEType     string `json:"mime_type"`
	DataURI      string `json:"data_uri"`
	SourceFileID string `json:"source_file_id,omitempty"`
}
