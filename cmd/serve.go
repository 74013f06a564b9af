package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/api"
	"github.com/abhisek/quizgen/internal/health"
	"github.com/abhisek/quizgen/internal/questiongen"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz generation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, llmCfg, err := newProvider(ctx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("model provider: %w", err)
		}

		cfg := api.ConfigFromEnv()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		srv, err := api.New(api.Deps{
			Generator: questiongen.New(provider, questiongen.DefaultConfig()),
			Questions: st.QuestionRepo(),
			Health:    health.NewMonitor(provider, health.Config{}),
			Provider:  llmCfg.Provider,
			Model:     provider.ModelID(),
		}, cfg)
		if err != nil {
			return err
		}
		return srv.Listen(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZGEN_ADDR, default :8000)")
}
