package assistant

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"studybuddy/internal/models"
	"studybuddy/internal/service/ai"
	"studybuddy/internal/session"
)

// GenerateTimeline replaces the timeline with a batch built from every
// file currently in the session.
func (s *Service) GenerateTimeline(ctx context.Context, sessionID string) ([]models.TimelineEvent, error) {
	st, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	files := st.Files
	req, err := s.builder.Timeline(files)
	if err != nil {
		return nil, err
	}
	return runFeature(ctx, s, sessionID, session.FeatureTimeline, req,
		func(resp *genai.GenerateContentResponse) ([]models.TimelineEvent, error) {
			return ai.NormalizeTimeline(resp, files)
		},
		func(st *session.State, events []models.TimelineEvent) { st.Timeline = events })
}

// PredictExam replaces the exam predictions.
func (s *Service) PredictExam(ctx context.Context, sessionID string) ([]models.StudyInsight, error) {
	st, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	req, err := s.builder.Exam(st.Files)
	if err != nil {
		return nil, err
	}
	return runFeature(ctx, s, sessionID, session.FeatureExam, req, ai.NormalizeInsights,
		func(st *session.State, insights []models.StudyInsight) { st.Insights = insights })
}

// Search replaces the current grounded answer.
func (s *Service) Search(ctx context.Context, sessionID, query string) (*models.SearchResult, error) {
	req, err := s.builder.Search(query)
	if err != nil {
		return nil, err
	}
	return runFeature(ctx, s, sessionID, session.FeatureSearch, req,
		func(resp *genai.GenerateContentResponse) (*models.SearchResult, error) {
			result := ai.NormalizeSearch(query, resp)
			return &result, nil
		},
		func(st *session.State, result *models.SearchResult) { st.Search = result })
}

// EditImage asks for an edited version of one uploaded image.
func (s *Service) EditImage(ctx context.Context, sessionID, fileID, instruction string) (*models.GeneratedImage, error) {
	if fileID == "" {
		return nil, ai.ErrMissingImage
	}
	st, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	file, ok := st.File(fileID)
	if !ok {
		return nil, ErrFileNotFound
	}
	req, err := s.builder.ImageEdit(&file, instruction)
	if err != nil {
		return nil, err
	}
	return runFeature(ctx, s, sessionID, session.FeatureEdit, req,
		imageNormalizer(instruction, file.ID),
		func(st *session.State, img *models.GeneratedImage) { st.EditedImage = img })
}

// GenerateVisualAid replaces the generated illustration.
func (s *Service) GenerateVisualAid(ctx context.Context, sessionID, description string) (*models.GeneratedImage, error) {
	req, err := s.builder.VisualAid(description)
	if err != nil {
		return nil, err
	}
	return runFeature(ctx, s, sessionID, session.FeatureVisual, req,
		imageNormalizer(description, ""),
		func(st *session.State, img *models.GeneratedImage) { st.VisualAid = img })
}

func imageNormalizer(prompt, sourceID string) func(*genai.GenerateContentResponse) (*models.GeneratedImage, error) {
	return func(resp *genai.GenerateContentResponse) (*models.GeneratedImage, error) {
		img, err := ai.NormalizeImage(prompt, sourceID, resp)
		if err != nil {
			return nil, err
		}
		return &img, nil
	}
}

// runFeature marks feature loading, dispatches req and settles the state:
// on success apply replaces the slice, on failure the previous slice stays
// and the error is recorded. The final update ignores request cancellation
// and is retried once without the result when it fails, so a feature does
// not stay loading.
func runFeature[T any](
	ctx context.Context,
	s *Service,
	sessionID string,
	feature session.Feature,
	req ai.Request,
	normalize func(*genai.GenerateContentResponse) (T, error),
	apply func(*session.State, T),
) (T, error) {
	var zero T
	if err := s.store.Update(ctx, sessionID, func(st *session.State) error {
		st.Begin(feature)
		return nil
	}); err != nil {
		return zero, err
	}

	var result T
	resp, err := s.ai.Do(ctx, req)
	if err == nil {
		result, err = normalize(resp)
	}

	settle := context.WithoutCancel(ctx)
	if uerr := s.store.Update(settle, sessionID, func(st *session.State) error {
		if err == nil {
			apply(st, result)
		}
		st.Finish(feature, err)
		return nil
	}); uerr != nil {
		log.Printf("session %s: settle %s: %v", shortID(sessionID), feature, uerr)
		failure := err
		if failure == nil {
			failure = fmt.Errorf("save %s result: %w", feature, uerr)
		}
		if rerr := s.store.Update(settle, sessionID, func(st *session.State) error {
			st.Finish(feature, failure)
			return nil
		}); rerr != nil {
			log.Printf("session %s: clear %s loading: %v", shortID(sessionID), feature, rerr)
		}
		if err == nil {
			return zero, uerr
		}
	}
	if err != nil {
		log.Printf("session %s: %s failed: %v", shortID(sessionID), feature, err)
		return zero, err
	}
	return result, nil
}
