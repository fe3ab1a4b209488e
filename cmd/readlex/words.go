package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/japaniel/readlex/pkg/db"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

func terms(words []vocabulary.Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Term
	}
	return out
}

func newAddCmd(o *rootOptions) *cobra.Command {
	var sentence string
	cmd := &cobra.Command{
		Use:   "add <word>...",
		Short: "Add words to the vocabulary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(o)
			out := cmd.OutOrStdout()
			for _, term := range args {
				w, err := a.svc.AddWord(ctx, term, sentence, 0)
				if err != nil {
					return err
				}
				printWord(out, w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sentence, "context", "", "sentence the word was found in")
	return cmd
}

func newWordsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List the vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(o)

			words := a.svc.Words()
			out := cmd.OutOrStdout()
			if len(words) == 0 {
				fmt.Fprintln(out, "No words yet. Add some with: readlex add <word> or readlex analyze --add <file>")
				return nil
			}
			seen, err := db.SightingCounts(a.conn)
			if err != nil {
				return err
			}
			now := time.Now()
			t := newTable("ID", "Word", "Mastery", "Reviews", "Next review", "Seen", "Added")
			for _, w := range words {
				t.Row(shortID(w.ID), w.Term, masteryString(w.Mastery), strconv.Itoa(w.ReviewCount),
					humanizeDue(w.NextReview, now), strconv.Itoa(seen[w.ID]), humanize.Time(w.CreatedAt))
			}
			fmt.Fprintln(out, t.Render())
			fmt.Fprintf(out, "%d words\n", len(words))
			return nil
		},
	}
}

func newShowCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|word>",
		Short: "Show a word with the sources it was seen in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(o)

			w, err := a.resolveWord(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printWord(out, w)
			fmt.Fprintf(out, "  %s %s   %s %d\n",
				labelStyle.Render("Last reviewed:"), lastReviewed(w),
				labelStyle.Render("Reviews:"), w.ReviewCount)

			sightings, err := db.SightingsForWord(a.conn, w.ID)
			if err != nil {
				return err
			}
			if len(sightings) == 0 {
				return nil
			}
			fmt.Fprintln(out, labelStyle.Render("Seen in:"))
			for _, s := range sightings {
				src, err := db.GetSource(a.conn, s.SourceID)
				if err != nil {
					return err
				}
				title := src.Title
				if title == "" {
					title = src.URL
				}
				fmt.Fprintf(out, "  - %s (%s)\n", title, english.Plural(s.OccurrenceCount, "time", "times"))
				if s.ContextSentence != "" {
					fmt.Fprintf(out, "    %q\n", s.ContextSentence)
				}
			}
			return nil
		},
	}
}

func newRemoveCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id|word>",
		Aliases: []string{"rm"},
		Short:   "Remove a word from the vocabulary",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(o)

			w, err := a.resolveWord(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.RemoveWord(ctx, w.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", w.Term)
			return nil
		},
	}
}

func newResetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id|word>",
		Short: "Reset a word's review progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(o)

			w, err := a.resolveWord(args[0])
			if err != nil {
				return err
			}
			w, err = a.svc.ResetWord(ctx, w.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s to mastery %s\n", w.Term, masteryString(w.Mastery))
			return nil
		},
	}
}

func newDueCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List words due for review today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(o)

			out := cmd.OutOrStdout()
			due := a.svc.DueWords(time.Now())
			if len(due) == 0 {
				fmt.Fprintln(out, "Nothing due for review.")
				return nil
			}
			t := newTable("ID", "Word", "Mastery", "Last reviewed")
			for _, w := range due {
				t.Row(shortID(w.ID), w.Term, masteryString(w.Mastery), lastReviewed(w))
			}
			fmt.Fprintln(out, t.Render())
			fmt.Fprintf(out, "%s due\n", english.Plural(len(due), "word", "words"))
			return nil
		},
	}
}

func newStatsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(o)

			s := a.svc.RecomputeStats()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Vocabulary"))
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("Words:"), humanize.Comma(int64(s.TotalWords)))
			fmt.Fprintf(out, "  %s %d   %s %d   %s %d\n",
				labelStyle.Render("Reviewing:"), s.Reviewing,
				labelStyle.Render("Learned:"), s.Learned,
				labelStyle.Render("Mastered:"), s.Mastered)
			fmt.Fprintf(out, "  %s %.1f/5\n", labelStyle.Render("Average mastery:"), s.AverageMastery)
			fmt.Fprintf(out, "  %s %d\n", labelStyle.Render("Due today:"), s.Due)
			fmt.Fprintln(out, titleStyle.Render("Practice"))
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("Streak:"), english.Plural(s.Streak, "day", "days"))
			fmt.Fprintf(out, "  %s %d/%d answers %s\n", labelStyle.Render("This week:"),
				s.WeeklyProgress, s.WeeklyGoal, progressBar(s.WeeklyProgress, s.WeeklyGoal, 20))
			fmt.Fprintf(out, "  %s %d\n", labelStyle.Render("Sessions:"), len(a.svc.Sessions()))
			return nil
		},
	}
}

func progressBar(value, goal, width int) string {
	if goal <= 0 {
		return ""
	}
	filled := value * width / goal
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func newSourcesCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the texts words were taken from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(o)

			sources, err := db.ListSources(a.conn)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sources) == 0 {
				fmt.Fprintln(out, "No sources yet.")
				return nil
			}
			t := newTable("ID", "Type", "Title", "URL", "Added")
			for _, s := range sources {
				t.Row(strconv.FormatInt(s.ID, 10), s.SourceType, s.Title, s.URL, humanize.Time(s.AddedAt))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}
