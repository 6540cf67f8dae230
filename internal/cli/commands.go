package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studybuddy/internal/models"
)

var (
	visualizeOut string
	editOut      string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline <file>...",
	Short: "Build a chronological concept timeline from lecture materials",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		files, err := a.addFiles(ctx, args)
		if err != nil {
			return err
		}
		events, err := a.service.GenerateTimeline(ctx, a.sessionID)
		if err != nil {
			return err
		}
		printTimeline(cmd.OutOrStdout(), events, files)
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict <file>...",
	Short: "Predict likely exam topics from lecture materials",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		if _, err := a.addFiles(ctx, args); err != nil {
			return err
		}
		insights, err := a.service.PredictExam(ctx, a.sessionID)
		if err != nil {
			return err
		}
		printInsights(cmd.OutOrStdout(), insights)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Answer a question with live web sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		result, err := a.service.Search(ctx, a.sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printSearch(cmd.OutOrStdout(), result)
		return nil
	},
}

var visualizeCmd = &cobra.Command{
	Use:   "visualize <description>",
	Short: "Generate an educational illustration",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		img, err := a.service.GenerateVisualAid(ctx, a.sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return writeImage(cmd.OutOrStdout(), visualizeOut, img)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <image> <instruction>",
	Short: "Edit an image with a text instruction",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		file, err := a.addFile(ctx, args[0])
		if err != nil {
			return err
		}
		img, err := a.service.EditImage(ctx, a.sessionID, file.ID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return writeImage(cmd.OutOrStdout(), editOut, img)
	},
}

func init() {
	visualizeCmd.Flags().StringVarP(&visualizeOut, "output", "o", "visual-aid.png", "where to write the generated image")
	editCmd.Flags().StringVarP(&editOut, "output", "o", "edited.png", "where to write the edited image")
}

func printTimeline(w io.Writer, events []models.TimelineEvent, files []models.UploadedFile) {
	headerColor.Fprintln(w, "Study timeline")
	if len(events) == 0 {
		mutedColor.Fprintln(w, "  no key concepts found")
		return
	}
	names := make(map[string]string, len(files))
	for _, f := range files {
		names[f.ID] = f.Name
	}
	for _, ev := range events {
		fmt.Fprintf(w, "  %-12s %s %s\n", ev.Timestamp, accentColor.Sprint(ev.Title), importanceLabel(ev.Importance))
		if ev.Description != "" {
			fmt.Fprintf(w, "  %-12s %s\n", "", ev.Description)
		}
		if name, ok := names[ev.LinkedImageID]; ok {
			mutedColor.Fprintf(w, "  %-12s see %s\n", "", name)
		}
	}
}

func importanceLabel(i models.Importance) string {
	switch i {
	case models.ImportanceHigh:
		return errorColor.Sprint("[high]")
	case models.ImportanceLow:
		return mutedColor.Sprint("[low]")
	default:
		return "[medium]"
	}
}

func printInsights(w io.Writer, insights []models.StudyInsight) {
	headerColor.Fprintln(w, "Predicted exam topics")
	for i, in := range insights {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, accentColor.Sprint(in.Topic), mutedColor.Sprintf("(%.0f%%)", in.ExamProbability))
		fmt.Fprintf(w, "   %s\n", in.Summary)
		if in.RelatedSearchQuery != "" {
			mutedColor.Fprintf(w, "   search: %s\n", in.RelatedSearchQuery)
		}
	}
}

func printSearch(w io.Writer, result *models.SearchResult) {
	fmt.Fprintln(w, result.Text)
	if len(result.Sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Sources")
	for _, src := range result.Sources {
		fmt.Fprintf(w, "  %s %s\n", src.Title, mutedColor.Sprint(src.URI))
	}
}

func writeImage(w io.Writer, path string, img *models.GeneratedImage) error {
	raw, err := decodeDataURI(img.DataURI)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(w, "%s %s (%s, %d bytes)\n", accentColor.Sprint("wrote"), path, img.MIMEType, len(raw))
	return nil
}

func decodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(uri, "data:") {
		return nil, errors.New("image is not a base64 data uri")
	}
	return base64.StdEncoding.DecodeString(payload)
}
