package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/dashboard"
)

const analyzeSystemPrompt = `You are a Rocket League positioning analyst. You are given a table built from
the player's own game history and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable. Focus on what the player can actually change.

Table format:
- Each row is a scoreline ("3-1"), a goal differential ("+2") or a single game.
- "games" is how many games the row averages over. Small samples are noisy.
- Each cell has one bar per role: Me, Tm (teammates' mean, absent in 1v1), Op (opponents' mean).
- pbb: % time behind the ball. Lower is the aggressive end; in the bar colours a
  lower pbb ranks hotter.
- spd: average speed (uu/s). dist: average distance to the ball (uu).
- t is the bar's rank within its row (0 to 1), height its size against the whole table.
- A value of 0 with label "-" means no data was recorded; ignore it.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeFlags  filterFlags
	analyzeExpand []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <view> <question>",
	Short: "AI-powered grounded analysis of a view (requires ANTHROPIC_API_KEY)",
	Long: `Build a view with the usual filter flags (or its saved state) and send the
resulting table as JSON context, together with your question, to the Anthropic API.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().StringSliceVar(&analyzeExpand, "expand", nil, "bucket keys whose games are included")
	analyzeFlags.register(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	v, err := dashboard.Lookup(args[0])
	if err != nil {
		return err
	}
	question := args[1]

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, store, closeAll, err := openStores()
	if err != nil {
		return err
	}
	defer closeAll()

	st, _, err := analyzeFlags.resolve(ctx, cmd, v, store)
	if err != nil {
		return err
	}
	s := dashboard.NewSession(v, st)
	for _, k := range analyzeExpand {
		if _, err := s.ToggleExpand(k); err != nil {
			return err
		}
	}
	if _, err := s.Refresh(ctx, db); err != nil {
		return err
	}
	tbl := s.Table()
	if tbl.Total == 0 {
		return fmt.Errorf("no games match the %s filters (%s)", v.Name, describeState(st))
	}

	dataJSON, err := buildAnalysisJSON(tbl, describeState(st))
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return callAnthropic(ctx, analyzeAPIKey, analyzeModel, dataJSON, question)
}

func buildAnalysisJSON(tbl dashboard.Table, filters string) (string, error) {
	doc := struct {
		Filters string          `json:"filters"`
		Table   dashboard.Table `json:"table"`
	}{filters, tbl}
	b, err := json.Marshal(doc)
	return string(b), err
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
