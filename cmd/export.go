package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <json|csv|moodle|gift>",
	Short: "Export the most recent stored questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := export.ParseTarget(args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		out, _ := cmd.Flags().GetString("output")

		st, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := export.Run(cmd.Context(), st.QuestionRepo(), export.Job{Target: target, Limit: limit}, time.Now())
		if err != nil {
			return err
		}

		switch {
		case out == "-":
			_, err = cmd.OutOrStdout().Write(f.Data)
			return err
		case out == "":
			out = f.Filename
		default:
			if info, statErr := os.Stat(out); statErr == nil && info.IsDir() {
				out = filepath.Join(out, f.Filename)
			}
		}
		if err := os.WriteFile(out, f.Data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", out, len(f.Data))
		return nil
	},
}

func init() {
	exportCmd.Flags().IntP("limit", "n", export.DefaultLimit, fmt.Sprintf("Number of questions, newest first (1-%d)", export.MaxLimit))
	exportCmd.Flags().StringP("output", "o", "", "Output file or directory (- for stdout; default: server-style file name in the current directory)")
}
