package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lectio/internal/analysis"
	"lectio/internal/checklist"
	"lectio/internal/classify"
	"lectio/internal/llm"
	"lectio/internal/report"
	"lectio/internal/store"
	"lectio/internal/taxonomy"
	"lectio/internal/transcript"
	"lectio/internal/tui"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript>",
	Short: "Classify a lesson transcript and print its complexity profile",
	Long: "Analyze reads a transcript (JSON, JSONL or plain text with one utterance\n" +
		"per line), classifies every utterance on the stage, context and level\n" +
		"dimensions, and prints the aggregated matrix and complexity metrics.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		mock, _ := cmd.Flags().GetBool("mock")
		watch, _ := cmd.Flags().GetBool("watch")
		votes, _ := cmd.Flags().GetInt("votes")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		topK, _ := cmd.Flags().GetInt("top")
		checklistDir, _ := cmd.Flags().GetString("checklist-dir")

		utterances, err := transcript.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}

		repo := checklist.NewRepository()
		if checklistDir != "" {
			if err := repo.LoadDir(checklistDir); err != nil {
				return fmt.Errorf("load checklists: %w", err)
			}
		}
		if err := repo.Validate(); err != nil {
			return fmt.Errorf("validate checklists: %w", err)
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var provider llm.Provider
		if mock {
			provider = offlineProvider()
		} else {
			p, ok, err := llm.NewProviderFromEnv(ctx, s.Events())
			if err != nil {
				return fmt.Errorf("configure model provider: %w", err)
			}
			if !ok {
				return errors.New("no model provider configured; set LECTIO_LLM_PROVIDER and an API key, or pass --mock")
			}
			provider = p
		}

		ccfg := classify.DefaultConfig()
		ccfg.Votes = votes

		acfg := analysis.DefaultConfig()
		acfg.Concurrency = concurrency
		acfg.Budget = timeout
		acfg.TopK = topK

		pipeline := classify.NewPipeline(provider, repo, classify.NewGate(concurrency), ccfg)
		orch := analysis.New(pipeline, acfg, nil)
		defer orch.Close()

		job, err := orch.Submit(ctx, utterances)
		if err != nil {
			var vErr *analysis.JobValidationError
			if errors.As(err, &vErr) {
				return fmt.Errorf("transcript rejected: %w", vErr)
			}
			return err
		}

		if watch {
			job, err = tui.Run(orch, job.ID)
			if err != nil {
				return err
			}
		}
		if !job.Status.Terminal() {
			job, err = orch.Wait(ctx, job.ID)
			if errors.Is(err, context.Canceled) {
				// Interrupted: stop the job and report what resolved so far.
				_ = orch.Cancel(job.ID)
				job, err = orch.Get(job.ID)
			}
			if err != nil {
				return err
			}
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(job)
		}

		fmt.Print(report.RenderSummary(job))
		if job.Result != nil {
			fmt.Println()
			for _, level := range taxonomy.Levels() {
				fmt.Print(report.RenderHeatmap(job.Result.Matrix, string(level)))
			}
			fmt.Println()
			fmt.Print(report.RenderTopCombinations(job.Result, topK))
		}
		return nil
	},
}

// offlineProvider scripts classifications from a hash of the prompt so
// the full pipeline can run without an API key. All N votes for the
// same utterance see the same prompt, so consensus is unanimous and
// runs are reproducible.
func offlineProvider() llm.Provider {
	return &llm.MockProvider{
		Handler: func(req llm.Request) (*llm.Response, error) {
			var prompt string
			if len(req.Messages) > 0 {
				prompt = req.Messages[len(req.Messages)-1].Content
			}
			h := fnv.New32a()
			_, _ = h.Write([]byte(prompt))
			n := h.Sum32()

			var content string
			switch req.Schema.Name {
			case "classify-stage":
				stages := taxonomy.Stages()
				content = fmt.Sprintf(`{"label":%q}`, stages[n%uint32(len(stages))])
			case "classify-level":
				levels := taxonomy.Levels()
				content = fmt.Sprintf(`{"label":%q}`, levels[n%uint32(len(levels))])
			default:
				content = fmt.Sprintf(`{"match":%v}`, n%3 == 0)
			}
			return &llm.Response{
				Content:    json.RawMessage(content),
				Model:      "mock",
				StopReason: llm.StopEnd,
			}, nil
		},
	}
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "Emit the full job record as JSON")
	analyzeCmd.Flags().Bool("mock", false, "Classify with a deterministic offline provider (no API key)")
	analyzeCmd.Flags().BoolP("watch", "w", false, "Show live progress while the analysis runs")
	analyzeCmd.Flags().Int("votes", classify.DefaultConfig().Votes, "Redundant model calls per classification decision")
	analyzeCmd.Flags().Int("concurrency", classify.DefaultConcurrency, "Maximum in-flight model calls")
	analyzeCmd.Flags().Duration("timeout", 10*time.Minute, "Wall-clock budget for the whole analysis")
	analyzeCmd.Flags().Int("top", 10, "How many top combinations to report")
	analyzeCmd.Flags().String("checklist-dir", "", "Directory of YAML checklist overrides")
}
