package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"studybuddy/internal/config"
)

func TestServiceDoPassesRequestThrough(t *testing.T) {
	gen := &fakeGenerator{resp: textReply("[]")}
	svc := NewService(gen, 0)
	req, _ := NewBuilder(config.ModelConfig{}).Search("cells")

	resp, err := svc.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp != gen.resp || gen.calls != 1 || gen.model != req.Model || gen.config != req.Config {
		t.Fatalf("request not forwarded as built")
	}
}

func TestServiceDoWrapsFailures(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	_, err := NewService(gen, time.Second).Do(context.Background(), Request{Feature: "search", Model: "m"})
	if !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("failures must not be retried, got %d calls", gen.calls)
	}
}

func TestServiceWithoutGenerator(t *testing.T) {
	if _, err := NewService(nil, 0).Do(context.Background(), Request{}); !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
}
