package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"studybuddy/internal/config"
	"studybuddy/internal/debuglog"
)

// ErrCollaborator wraps every failure reported by the model API.
var ErrCollaborator = errors.New("ai collaborator failed")

// Generator is the single call the service needs from the model API.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewClient builds a genai client for the configured backend.
func NewClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	switch strings.ToLower(cfg.Gemini.Backend) {
	case "vertex":
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Gemini.Project
		cc.Location = cfg.Gemini.Location
	default:
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("gemini api key not configured")
		}
		cc.APIKey = cfg.Gemini.APIKey
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	return client, nil
}

// Service dispatches built requests to the model API.
type Service struct {
	generator Generator
	timeout   time.Duration
}

// NewService wraps gen. A zero timeout waits on the collaborator for as
// long as the caller's context allows.
func NewService(gen Generator, timeout time.Duration) *Service {
	return &Service{generator: gen, timeout: timeout}
}

// Do sends one request. There is no retry: a single failure is final.
func (s *Service) Do(ctx context.Context, req Request) (*genai.GenerateContentResponse, error) {
	if s == nil || s.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", ErrCollaborator)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := s.generator.GenerateContent(ctx, req.Model, req.Contents, req.Config)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("ai %s via %s failed after %s: %v", req.Feature, req.Model, elapsed, err)
		return nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}
	debuglog.Printf("ai %s via %s finished in %s", req.Feature, req.Model, elapsed)
	return resp, nil
}
