package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lectio/internal/analysis"
	"lectio/internal/checklist"
	"lectio/internal/classify"
	"lectio/internal/llm"
	"lectio/internal/server"
	"lectio/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		checklistDir, _ := cmd.Flags().GetString("checklist-dir")

		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

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

		provider, ok, err := llm.NewProviderFromEnv(ctx, s.Events())
		if err != nil {
			return fmt.Errorf("configure model provider: %w", err)
		}
		if !ok {
			return errors.New("no model provider configured; set LECTIO_LLM_PROVIDER and an API key")
		}

		cfg := analysis.DefaultConfig()
		pipeline := classify.NewPipeline(provider, repo, classify.NewGate(cfg.Concurrency), classify.DefaultConfig())
		orch := analysis.New(pipeline, cfg, logger)
		defer orch.Close()

		return server.New(addr, orch, logger).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("checklist-dir", "", "Directory of YAML checklist overrides")
}
