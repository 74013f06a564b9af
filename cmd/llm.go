package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
}

// withEvents opens the configured backend for the duration of fn.
func withEvents(cmd *cobra.Command, fn func(context.Context, store.EventRepo) error) error {
	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(cmd.Context(), b.EventRepo())
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")
		asJSON, _ := cmd.Flags().GetBool("json")

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(ctx, opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(eventSummaries(events))
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No model calls recorded.")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tOK")
			for _, e := range events {
				ok := "yes"
				if !e.Success {
					ok = "no"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose,
					truncate(e.Model, 32), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
			}
			return tw.Flush()
		})
	},
}

type eventSummary struct {
	ID           int       `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Purpose      string    `json:"purpose"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	LatencyMs    int64     `json:"latency_ms"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

func eventSummaries(events []store.LLMRequestEvent) []eventSummary {
	out := make([]eventSummary, len(events))
	for i, e := range events {
		out[i] = eventSummary{
			ID: e.ID, Timestamp: e.Timestamp, Provider: e.Provider, Model: e.Model,
			Purpose: e.Purpose, InputTokens: e.InputTokens, OutputTokens: e.OutputTokens,
			LatencyMs: e.LatencyMs, Success: e.Success, Error: e.ErrorMessage,
		}
	}
	return out
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and answer of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("event %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}

			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintf(tw, "ID:\t%d\n", e.ID)
			fmt.Fprintf(tw, "Time:\t%s\n", e.Timestamp.Local().Format(timeLayout))
			fmt.Fprintf(tw, "Provider:\t%s\n", e.Provider)
			fmt.Fprintf(tw, "Model:\t%s\n", e.Model)
			fmt.Fprintf(tw, "Purpose:\t%s\n", e.Purpose)
			fmt.Fprintf(tw, "Tokens:\t%d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Fprintf(tw, "Latency:\t%dms\n", e.LatencyMs)
			fmt.Fprintf(tw, "Success:\t%t\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintf(tw, "Error:\t%s\n", e.ErrorMessage)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			section(out, "REQUEST", e.RequestBody)
			section(out, "RESPONSE", e.ResponseBody)
			return nil
		})
	},
}

func section(w io.Writer, title, body string) {
	rule := strings.Repeat("─", 60)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintf(w, "\n%s\n%s\n%s\n%s\n", rule, title, rule, strings.TrimRight(body, "\n"))
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			byPurpose, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No model usage recorded yet.")
				return nil
			}
			byModel, err := repo.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}

			fmt.Fprintln(out, "Usage by purpose")
			if err := writePurposeUsage(out, byPurpose); err != nil {
				return err
			}
			if len(byModel) > 0 {
				fmt.Fprintln(out, "\nEstimated cost (USD)")
				return writeModelCost(out, byModel)
			}
			return nil
		})
	},
}

func writePurposeUsage(w io.Writer, rows []store.LLMPurposeUsage) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "PURPOSE\tCALLS\tFAILED\tINPUT\tOUTPUT\tAVG MS")
	var calls, failed, in, outTok int
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n",
			r.Purpose, r.Calls, r.Failures, r.InputTokens, r.OutputTokens, r.AvgLatencyMs)
		calls += r.Calls
		failed += r.Failures
		in += r.InputTokens
		outTok += r.OutputTokens
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t\n", calls, failed, in, outTok)
	return tw.Flush()
}

func writeModelCost(w io.Writer, rows []store.LLMModelUsage) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "MODEL\tCALLS\tINPUT\tOUTPUT\tCOST")
	var total float64
	var unpriced []string
	for _, r := range rows {
		cost := "?"
		if p := llm.LookupCost(r.Model); p != nil {
			c := p.Cost(r.InputTokens, r.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, r.Model)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", truncate(r.Model, 32), r.Calls, r.InputTokens, r.OutputTokens, cost)
	}
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\n", label, formatCost(total))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show this purpose ("+llm.PurposeQuestionGeneration+", "+llm.PurposeHealthProbe+")")
	llmListCmd.Flags().Duration("since", 0, "Only show calls newer than this (e.g. 24h)")
	llmListCmd.Flags().Bool("json", false, "Print events as JSON")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
