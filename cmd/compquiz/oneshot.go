package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/compquiz/internal/levels"
	"github.com/verte-zerg/compquiz/internal/logging"
	"github.com/verte-zerg/compquiz/internal/model"
)

const defaultOutputWidth = 80

var (
	questionLevel int
	checkID       string
)

func newQuestionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Fetch one question and print it",
		Args:  cobra.NoArgs,
		RunE:  runQuestionCmd,
	}
	cmd.Flags().IntVar(&questionLevel, "level", 0, "question level (1-6, 0 lets the service choose)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check --id ID CODE",
		Short: "Submit an answer and print the verdict",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheckCmd,
	}
	cmd.Flags().StringVar(&checkID, "id", "", "question id")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}
	return cmd
}

func runQuestionCmd(cmd *cobra.Command, _ []string) error {
	if questionLevel != 0 && !levels.Valid(questionLevel) {
		return fmt.Errorf("--level must be between %d and %d", levels.Min, levels.Max)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeQuietly(closer, "log file")
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	q, err := client.FetchQuestion(context.Background(), questionLevel)
	if err != nil {
		return fmt.Errorf("failed to fetch question: %w", err)
	}
	return printQuestion(cmd.OutOrStdout(), q, outputWidth())
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	code := args[0]
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("answer must not be empty")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeQuietly(closer, "log file")
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	v, err := client.CheckAnswer(context.Background(), checkID, code)
	if err != nil {
		return fmt.Errorf("failed to submit answer: %w", err)
	}
	return printVerdict(cmd.OutOrStdout(), v, outputWidth())
}

func printQuestion(w io.Writer, q model.Question, width int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Level %d  (id %s)\n\n", q.Level, q.ID)
	b.WriteString(wrapPlain(q.Prompt, width))
	b.WriteString("\n")
	if len(q.Context) > 0 {
		b.WriteString("\nContext:\n")
		for _, entry := range q.Context {
			fmt.Fprintf(&b, "  %s = %s\n", entry.Name, entry.Value)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func printVerdict(w io.Writer, v model.Verdict, width int) error {
	var out string
	switch {
	case v.Correct:
		out = "Correct!\n"
	case v.HasError():
		out = "Error\n" + wrapPlain(v.Error, width) + "\n"
	default:
		out = fmt.Sprintf("Incorrect\nExpected: %s\nGot:      %s\n", v.Expected, v.UserResult)
	}
	_, err := io.WriteString(w, out)
	return err
}

// wrapPlain word-wraps text to width columns without trailing padding.
func wrapPlain(text string, width int) string {
	lines := strings.Split(lipgloss.NewStyle().Width(width).Render(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func outputWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultOutputWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultOutputWidth
	}
	return width
}
