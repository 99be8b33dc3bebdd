package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"german-reading-quiz/internal/client"
	"german-reading-quiz/internal/config"
	"german-reading-quiz/internal/session"
	"german-reading-quiz/internal/view"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs the interactive terminal quiz against a reading service.
func NewPlayCmd(configPath *string) *cobra.Command {
	var baseURL, level string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Read stories and answer quizzes in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = cfg.Client.BaseURL
			}
			if level == "" {
				level = cfg.Client.Level
			}
			api := client.New(baseURL, config.TTLDuration(cfg.Client.Timeout, 10*time.Second))
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			ctrl := session.NewController(api, level, logger)
			return runPlay(cmd.Context(), ctrl, view.ForFile(os.Stdout), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "reading service API base URL (overrides config)")
	cmd.Flags().StringVar(&level, "level", "", "reading level, e.g. a1 (overrides config)")
	return cmd
}

// runPlay starts a round and executes one command per input line until
// "quit" or end of input.
func runPlay(ctx context.Context, ctrl *session.Controller, r view.Renderer, in io.Reader, out io.Writer) error {
	_ = ctrl.Start(ctx)
	if err := r.Render(out, ctrl.Snapshot()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return nil
		case "submit":
			err = ctrl.Submit(ctx)
		case "next":
			err = ctrl.Next(ctx)
		default:
			err = selectByPosition(ctrl, line)
		}
		if err != nil {
			fmt.Fprintln(out, describe(err))
			continue
		}
		if err := r.Render(out, ctrl.Snapshot()); err != nil {
			return err
		}
	}
}

var errUsage = errors.New("commands: <question> <letter> (e.g. '1 a'), submit, next, quit")

// selectByPosition resolves "2 c" to the third option of the second question.
func selectByPosition(ctrl *session.Controller, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return errUsage
	}
	number, err := strconv.Atoi(strings.TrimSuffix(fields[0], "."))
	if err != nil {
		return errUsage
	}
	letter := strings.ToLower(strings.TrimSuffix(fields[1], "."))

	snap := ctrl.Snapshot()
	if number < 1 || number > len(snap.Questions) {
		return fmt.Errorf("there is no question %d", number)
	}
	q := snap.Questions[number-1]
	for _, opt := range q.Options {
		if opt.Letter == letter {
			return ctrl.Select(q.ID, opt.Text)
		}
	}
	return fmt.Errorf("question %d has no option %q", number, letter)
}

func describe(err error) string {
	var failure *session.Failure
	switch {
	case errors.As(err, &failure):
		return "Something went wrong talking to the reading service. Try again."
	case errors.Is(err, session.ErrIncomplete):
		return "Answer every question before submitting."
	case errors.Is(err, session.ErrNotSubmitted):
		return "Submit your answers first."
	default:
		return err.Error()
	}
}
