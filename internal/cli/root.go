// Package cli defines the studyctl commands. Every command runs one
// feature against a throwaway in-memory session.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"studybuddy/internal/config"
	"studybuddy/internal/service/ai"
	"studybuddy/internal/service/assistant"
	"studybuddy/internal/session"
)

var (
	configPath string
	version    = "dev"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	accentColor = color.New(color.FgGreen, color.Bold)
	mutedColor  = color.New(color.FgHiBlack)
	errorColor  = color.New(color.FgRed, color.Bold)
)

// newDispatcher builds the model client; tests swap it for a fake.
var newDispatcher = func(ctx context.Context, cfg *config.Config) (assistant.Dispatcher, error) {
	client, err := ai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.BasicConfig.RequestTimeoutSeconds) * time.Second
	return ai.NewService(client.Models, timeout), nil
}

var rootCmd = &cobra.Command{
	Use:   "studyctl",
	Short: "Run study assistant features from the terminal",
	Long: `studyctl sends lecture audio, whiteboard photos and syllabus PDFs to
Gemini and prints the resulting timeline, exam predictions or search
answers. Image commands write the generated picture to a file.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("STUDYBUDDY_CONFIG"), "path to a json, toml or yaml config file")

	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(visualizeCmd)
	rootCmd.AddCommand(editCmd)
}

// app is one command invocation's assistant plus its private session.
type app struct {
	service   *assistant.Service
	sessionID string
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dispatcher, err := newDispatcher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	id, err := session.NewID()
	if err != nil {
		return nil, err
	}
	store := session.NewMemoryStore(session.DefaultTTL, nil)
	svc := assistant.NewService(store, session.NewMemoryPreviews(), ai.NewBuilder(cfg.Models), dispatcher)
	return &app{service: svc, sessionID: id}, nil
}
