package assistant

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"studybuddy/internal/service/ai"
	"studybuddy/internal/session"
)

// ErrFileNotFound is returned when a file id is not part of the session.
var ErrFileNotFound = errors.New("file not found in session")

// Dispatcher sends a built request to the model API.
type Dispatcher interface {
	Do(ctx context.Context, req ai.Request) (*genai.GenerateContentResponse, error)
}

// Service runs the study features against one explicitly owned store.
type Service struct {
	store    session.Store
	previews session.PreviewStore
	builder  *ai.Builder
	ai       Dispatcher
}

func NewService(store session.Store, previews session.PreviewStore, builder *ai.Builder, dispatcher Dispatcher) *Service {
	return &Service{
		store:    store,
		previews: previews,
		builder:  builder,
		ai:       dispatcher,
	}
}

// Snapshot returns a copy of the session state.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*session.State, error) {
	return s.store.Load(ctx, sessionID)
}

// Preview returns the raw bytes behind a preview handle of this session.
func (s *Service) Preview(ctx context.Context, sessionID, handle string) (session.Preview, error) {
	st, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return session.Preview{}, err
	}
	if _, ok := st.FileByPreview(handle); !ok {
		return session.Preview{}, session.ErrPreviewNotFound
	}
	return s.previews.Get(ctx, handle)
}
