package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/client"
	"github.com/abhisek/quizgen/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal client for a running quizgen server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := client.ConfigFromEnv()
		if u, _ := cmd.Flags().GetString("api"); u != "" {
			cfg.BaseURL = u
		}
		exportDir, _ := cmd.Flags().GetString("export-dir")

		ctrl := client.New(client.NewHTTPBackend(cfg.BaseURL), client.FileStorage{Dir: cfg.StateDir}, cfg, nil)
		defer ctrl.Close()
		return tui.Run(ctrl, exportDir)
	},
}

func init() {
	tuiCmd.Flags().String("api", "", "Server base URL (overrides QUIZGEN_API_URL, default http://localhost:8000)")
	tuiCmd.Flags().String("export-dir", ".", "Directory exported files are written to")
}
