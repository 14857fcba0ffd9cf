package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/pkg/formatter"
	"github.com/futig/survey-agent/internal/usecase/intake"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
)

const (
	cmdQuit   = "/quit"
	cmdSurvey = "/survey"
)

type interviewOptions struct {
	format       string
	output       string
	requirements bool
	history      bool
}

func newInterviewCmd(newAgent AgentFactory) *cobra.Command {
	opts := &interviewOptions{}

	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Answer intake questions and print the drafted survey",
		Long: `Run the intake interview in the terminal.

Answer each question on its own line. Type /survey to draft the survey
before the interview is complete, or /quit to leave without one.

Examples:
  survey-cli interview
  survey-cli interview --format markdown --output survey.md
  survey-cli interview --requirements --history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmd.Flags().GetString("env")
			if err != nil {
				return err
			}

			agent, logger, err := newAgent(env)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := ctxzap.ToContext(cmd.Context(), logger)
			return runInterview(ctx, agent, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", string(entity.FormatJSON), "Survey output format (json, markdown, pdf, docx)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the survey to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.requirements, "requirements", false, "Also print the gathered requirements as JSON")
	cmd.Flags().BoolVar(&opts.history, "history", false, "Also print the conversation history as JSON")

	return cmd
}

func runInterview(ctx context.Context, agent *intake.Agent, in io.Reader, out io.Writer, opts *interviewOptions) error {
	fmtr, err := formatter.NewFactory().Create(entity.ResultFormat(strings.ToLower(opts.format)))
	if err != nil {
		return err
	}
	if opts.output == "" && fmtr.ContentType() != "application/json" && !strings.HasPrefix(fmtr.ContentType(), "text/") {
		return fmt.Errorf("format %s is binary, use --output", opts.format)
	}

	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s\n> ", agent.Start(ctx))

	for {
		line, readErr := reader.ReadString('\n')
		answer := strings.TrimSpace(line)

		switch {
		case answer == cmdQuit:
			fmt.Fprintln(out, "Interview closed.")
			return nil
		case answer == cmdSurvey:
			return printResults(ctx, agent, out, fmtr, opts)
		case answer != "":
			question, complete, err := agent.Respond(ctx, answer)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, question)
			if complete {
				return printResults(ctx, agent, out, fmtr, opts)
			}
			fmt.Fprint(out, "> ")
		case readErr == nil:
			fmt.Fprint(out, "Please type an answer.\n> ")
		}

		if errors.Is(readErr, io.EOF) {
			fmt.Fprintln(out)
			return errors.New("input ended before the interview was complete")
		}
		if readErr != nil {
			return fmt.Errorf("read answer: %w", readErr)
		}
	}
}

func printResults(ctx context.Context, agent *intake.Agent, out io.Writer, fmtr formatter.Formatter, opts *interviewOptions) error {
	questions, err := agent.Synthesize(ctx, false)
	if err != nil {
		return err
	}

	survey := &entity.SurveyDTO{
		Title:                  surveyTitle(agent.Requirements()),
		IsConversationComplete: agent.State().IsConversationComplete,
		Questions:              questions,
	}

	data, err := fmtr.Format(survey)
	if err != nil {
		return fmt.Errorf("format survey: %w", err)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return fmt.Errorf("write survey: %w", err)
		}
		fmt.Fprintf(out, "Survey written to %s\n", opts.output)
	} else {
		fmt.Fprintf(out, "%s\n", data)
	}

	if opts.requirements {
		if err := printJSON(out, "Requirements", agent.Requirements()); err != nil {
			return err
		}
	}
	if opts.history {
		if err := printJSON(out, "History", agent.History()); err != nil {
			return err
		}
	}

	return nil
}

func surveyTitle(req entity.Requirements) string {
	if req.Purpose != nil && strings.TrimSpace(*req.Purpose) != "" {
		return "Survey: " + *req.Purpose
	}
	return "Survey"
}

func printJSON(out io.Writer, label string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", strings.ToLower(label), err)
	}
	fmt.Fprintf(out, "%s:\n%s\n", label, data)
	return nil
}
