package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	analyticsapp "coldcall-sim/backend/internal/features/analytics/application"
	"coldcall-sim/backend/internal/features/conversation/application"
	"coldcall-sim/backend/internal/features/conversation/domain"
	"coldcall-sim/backend/internal/features/conversation/infrastructure"
)

var (
	analyzeJSON   bool
	analyzeAPIKey string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript.json>",
	Short: "Score a saved conversation",
	Long: `Analyze a transcript and print the Markdown report. The file holds either a JSON
array of {"role": "agent"|"owner", "content": "..."} turns or a conversation as
returned by GET /api/conversations/:id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		turns, err := readTranscript(fs, args[0])
		if err != nil {
			return err
		}

		apiKey := analyzeAPIKey
		if apiKey == "" {
			apiKey = infrastructure.DefaultAPIKey()
		}
		analyzer, err := analyzerFactory(cfg, logger)(apiKey)
		if err != nil {
			return err
		}
		return runAnalyze(cmd.Context(), analyzer, turns, analyzeJSON, cmd.OutOrStdout())
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analytics as JSON instead of Markdown")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY)")
}

// readTranscript loads turns from path, accepting a bare array or a session object.
func readTranscript(fsys afero.Fs, path string) ([]domain.Turn, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}

	var turns []domain.Turn
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &turns)
	} else {
		var session domain.Session
		err = json.Unmarshal(data, &session)
		turns = session.Transcript
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript %s: %w", path, err)
	}

	for i, turn := range turns {
		if turn.Role != domain.RoleAgent && turn.Role != domain.RoleOwner {
			return nil, fmt.Errorf("turn %d in %s: unknown role %q", i+1, path, turn.Role)
		}
	}
	return turns, nil
}

func runAnalyze(ctx context.Context, analyzer application.CallAnalyzer, turns []domain.Turn, asJSON bool, out io.Writer) error {
	analytics, err := analyzer.Analyze(ctx, turns)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analytics)
	}
	_, err = fmt.Fprint(out, analyticsapp.FormatReport(analytics))
	return err
}
