package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/japaniel/readlex/pkg/analysis"
	"github.com/japaniel/readlex/pkg/srs"
	"github.com/japaniel/readlex/pkg/topics"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	termStyle  = lipgloss.NewStyle().Bold(true)
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func printReport(w io.Writer, name string, r analysis.Report) {
	if name != "" {
		fmt.Fprintln(w, titleStyle.Render(name))
	}
	if r.Empty() {
		fmt.Fprintln(w, "No text to analyse.")
		return
	}
	fmt.Fprintf(w, "%s %s   %s %d min\n",
		labelStyle.Render("Difficulty:"), r.Difficulty,
		labelStyle.Render("Reading time:"), r.ReadingMinutes)
	fmt.Fprintf(w, "%s %d   %s %d   %s %d sentences, %s words\n",
		labelStyle.Render("Flesch-Kincaid:"), r.Readability.FleschKincaid,
		labelStyle.Render("SMOG:"), r.Readability.SMOG,
		labelStyle.Render("Length:"), r.Readability.Sentences, humanize.Comma(int64(r.Readability.Words)))
	fmt.Fprintf(w, "%s %d words, %d unique, %d%% complex\n",
		labelStyle.Render("Vocabulary:"), r.Vocabulary.TotalWords, r.Vocabulary.UniqueWords, r.Vocabulary.ComplexityPct)
	if len(r.UnknownWords) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Unknown words:"), strings.Join(r.UnknownWords, ", "))
	}
	if len(r.Topics) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Topics:"), formatTopics(r.Topics))
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, labelStyle.Render("Recommendations:"))
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}

func formatTopics(ts []topics.Topic) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprintf("%s (%d)", t.Term, t.Frequency)
	}
	return strings.Join(parts, ", ")
}

func printWord(w io.Writer, word vocabulary.Word) {
	head := termStyle.Render(word.Term)
	if word.Pronunciation != "" {
		head += " [" + word.Pronunciation + "]"
	}
	if word.PartOfSpeech != "" {
		head += " " + labelStyle.Render(word.PartOfSpeech)
	}
	fmt.Fprintln(w, head)
	fmt.Fprintf(w, "  %s\n", word.Definition)
	if word.Context != "" {
		fmt.Fprintf(w, "  %s %q\n", labelStyle.Render("Context:"), word.Context)
	}
	for _, ex := range word.Examples {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Example:"), ex)
	}
	if len(word.Synonyms) > 0 {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Synonyms:"), strings.Join(word.Synonyms, ", "))
	}
	if len(word.Antonyms) > 0 {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Antonyms:"), strings.Join(word.Antonyms, ", "))
	}
	fmt.Fprintf(w, "  %s %s   %s %s   %s %s\n",
		labelStyle.Render("ID:"), word.ID,
		labelStyle.Render("Mastery:"), masteryString(word.Mastery),
		labelStyle.Render("Next review:"), humanizeDue(word.NextReview, time.Now()))
}

func masteryString(m int) string {
	return fmt.Sprintf("%d/%d", m, srs.MaxMastery)
}

func humanizeDue(next, now time.Time) string {
	if !srs.Day(next).After(srs.Day(now)) {
		return "now"
	}
	return humanize.RelTime(next, now, "ago", "from now")
}

func lastReviewed(w vocabulary.Word) string {
	if w.LastReviewed == nil {
		return "never"
	}
	return humanize.Time(*w.LastReviewed)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
