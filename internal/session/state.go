package session

import (
	"time"

	"studybuddy/internal/models"
)

// Feature names an independently loading area of the study session.
type Feature string

const (
	FeatureTimeline Feature = "timeline"
	FeatureExam     Feature = "exam"
	FeatureSearch   Feature = "search"
	FeatureVisual   Feature = "visual"
	FeatureEdit     Feature = "edit"
)

// Features lists every feature area in display order.
var Features = []Feature{FeatureTimeline, FeatureExam, FeatureSearch, FeatureVisual, FeatureEdit}

// Activity is the loading flag of one feature area plus the message of
// its last failure. A finished call, successful or not, clears Loading.
type Activity struct {
	Loading   bool   `json:"loading"`
	LastError string `json:"last_error,omitempty"`
}

// State holds everything one browser session has uploaded and derived.
// Each slice is owned by the operation producing it and replaced wholesale.
type State struct {
	ID          string                 `json:"id"`
	Files       []models.UploadedFile  `json:"files"`
	Timeline    []models.TimelineEvent `json:"timeline"`
	Insights    []models.StudyInsight  `json:"insights"`
	Search      *models.SearchResult   `json:"search,omitempty"`
	VisualAid   *models.GeneratedImage `json:"visual_aid,omitempty"`
	EditedImage *models.GeneratedImage `json:"edited_image,omitempty"`
	Activity    map[Feature]Activity   `json:"activity"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewState returns an empty state for id.
func NewState(id string) *State {
	return &State{
		ID:       id,
		Activity: make(map[Feature]Activity, len(Features)),
	}
}

// AddFile appends f to the file collection.
func (s *State) AddFile(f models.UploadedFile) {
	s.Files = append(s.Files, f)
}

// RemoveFile drops the file with id and reports what was removed.
// Unknown ids are a no-op.
func (s *State) RemoveFile(id string) (models.UploadedFile, bool) {
	for i, f := range s.Files {
		if f.ID != id {
			continue
		}
		kept := make([]models.UploadedFile, 0, len(s.Files)-1)
		kept = append(kept, s.Files[:i]...)
		kept = append(kept, s.Files[i+1:]...)
		s.Files = kept
		return f, true
	}
	return models.UploadedFile{}, false
}

// File looks up a file by id.
func (s *State) File(id string) (models.UploadedFile, bool) {
	for _, f := range s.Files {
		if f.ID == id {
			return f, true
		}
	}
	return models.UploadedFile{}, false
}

// FileByPreview looks up a file by its preview handle.
func (s *State) FileByPreview(handle string) (models.UploadedFile, bool) {
	for _, f := range s.Files {
		if f.PreviewHandle == handle {
			return f, true
		}
	}
	return models.UploadedFile{}, false
}

// Begin marks feature as loading.
func (s *State) Begin(feature Feature) {
	s.ensureActivity()
	s.Activity[feature] = Activity{Loading: true}
}

// Finish clears the loading flag of feature and records err, if any.
func (s *State) Finish(feature Feature, err error) {
	s.ensureActivity()
	act := Activity{}
	if err != nil {
		act.LastError = err.Error()
	}
	s.Activity[feature] = act
}

// Loading reports whether feature has a call in flight.
func (s *State) Loading(feature Feature) bool {
	return s.Activity[feature].Loading
}

func (s *State) ensureActivity() {
	if s.Activity == nil {
		s.Activity = make(map[Feature]Activity, len(Features))
	}
}

// Clone returns a copy safe to hand out while the original keeps changing.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Files = append([]models.UploadedFile(nil), s.Files...)
	c.Timeline = append([]models.TimelineEvent(nil), s.Timeline...)
	c.Insights = append([]models.StudyInsight(nil), s.Insights...)
	if s.Search != nil {
		search := *s.Search
		search.Sources = append([]models.Source(nil), s.Search.Sources...)
		c.Search = &search
	}
	if s.VisualAid != nil {
		img := *s.VisualAid
		c.VisualAid = &img
	}
	if s.EditedImage != nil {
		img := *s.EditedImage
		c.EditedImage = &img
	}
	c.Activity = make(map[Feature]Activity, len(s.Activity))
	for k, v := range s.Activity {
		c.Activity[k] = v
	}
	return &c
}
