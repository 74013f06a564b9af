package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/questiongen"
	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions from a text file without the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		n, _ := cmd.Flags().GetInt("num")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		asJSON, _ := cmd.Flags().GetBool("json")
		save, _ := cmd.Flags().GetBool("save")

		text, err := readSource(file)
		if err != nil {
			return err
		}

		req := quiz.GenerationRequest{Text: text, NumQuestions: n, Difficulty: quiz.Difficulty(difficulty)}
		req.Normalize()
		if err := req.Validate(); err != nil {
			return err
		}

		st, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
		defer cancel()

		provider, llmCfg, err := newProvider(ctx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("model provider: %w", err)
		}

		questions, err := questiongen.New(provider, questiongen.DefaultConfig()).Generate(ctx, req)
		if err != nil {
			return err
		}

		if save {
			meta := store.GenerationMeta{Difficulty: req.Difficulty, Provider: llmCfg.Provider, Model: provider.ModelID()}
			if err := st.QuestionRepo().Append(ctx, questions, meta); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to store questions: %v\n", err)
			}
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		}
		printQuestions(cmd.OutOrStdout(), questions)
		return nil
	},
}

// readSource reads the source text from path, or stdin when path is "-".
func readSource(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return "", fmt.Errorf("--file is required (use - for stdin)")
	case "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func printQuestions(w io.Writer, qs []quiz.Question) {
	for i, q := range qs {
		fmt.Fprintf(w, "%d. %s  [%s, %s]\n", i+1, q.Question, q.Difficulty, q.BloomLevel)
		for j, opt := range q.Options {
			mark := " "
			if opt == q.CorrectAnswer {
				mark = "*"
			}
			fmt.Fprintf(w, "   %s %c) %s\n", mark, 'A'+j, opt)
		}
		if q.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", strings.TrimSpace(q.Explanation))
		}
		fmt.Fprintln(w)
	}
}

func init() {
	generateCmd.Flags().StringP("file", "f", "", "Source text file (- for stdin)")
	generateCmd.Flags().IntP("num", "n", 5, "Number of questions (1-20)")
	generateCmd.Flags().StringP("difficulty", "d", "medium", "easy, medium, hard or mixed")
	generateCmd.Flags().Bool("json", false, "Print questions as JSON")
	generateCmd.Flags().Bool("save", true, "Store the questions for later export")
}
