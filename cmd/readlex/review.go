package main

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/japaniel/readlex/internal/tui"
	"github.com/japaniel/readlex/pkg/sample"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

func newReviewCmd(o *rootOptions) *cobra.Command {
	var kindName string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review due words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, ok := vocabulary.ParseSessionKind(kindName)
			if !ok {
				return fmt.Errorf("unknown session kind %q (want discovery, review or quiz)", kindName)
			}
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(o)

			out := cmd.OutOrStdout()
			if _, err := a.svc.StartSession(ctx, kind); err != nil {
				if errors.Is(err, vocabulary.ErrNoDueWords) {
					fmt.Fprintln(out, "Nothing due for review.")
					return nil
				}
				return err
			}

			model := tui.NewModel(ctx, a.svc)
			program := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(out))
			_, runErr := program.Run()
			// Record whatever was answered if the program stopped early.
			if _, _, err := a.svc.Finalize(ctx); err != nil {
				return err
			}
			if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
				return fmt.Errorf("failed to run review TUI: %w", runErr)
			}
			if err := model.Err(); err != nil {
				return err
			}
			if s, ok := model.Summary(); ok {
				fmt.Fprintf(out, "%d/%d correct in %s. Streak: %d days.\n",
					s.Correct, s.Total, s.Duration.Round(time.Second), a.svc.Stats().Streak)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", string(vocabulary.KindReview), "session kind: discovery, review or quiz")
	return cmd
}

func newDemoCmd(o *rootOptions) *cobra.Command {
	var (
		words    int
		sessions int
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Fill the vocabulary with generated demo data",
		Long: "Replace the vocabulary with randomly generated words and sessions tagged \"sample\".\n" +
			"Intended for trying the tool out; refuses to overwrite real data without --force.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(o)

			if n := len(a.svc.Words()); n > 0 && !force {
				return fmt.Errorf("vocabulary already has %d words; use --force to replace it", n)
			}
			snap := sample.New().Snapshot(time.Now(), words, sessions)
			if err := a.store.Save(ctx, snap); err != nil {
				return err
			}
			if err := a.svc.Load(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d demo words and %d sessions.\n", len(snap.Words), len(snap.Sessions))
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "number of words")
	cmd.Flags().IntVar(&sessions, "sessions", 5, "number of past sessions")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing vocabulary")
	return cmd
}
