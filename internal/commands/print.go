package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/sakif/moodjournal/internal/model"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var (
	bold      = color.New(color.Bold).SprintFunc()
	underline = color.New(color.Underline).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()

	categoryColors = map[model.Category]*color.Color{
		model.CategoryPositive: color.New(color.FgGreen),
		model.CategoryNeutral:  color.New(color.FgYellow),
		model.CategoryNegative: color.New(color.FgRed),
	}
)

func checkOutput(output string) error {
	switch output {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table or json)", output)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mood(e model.JournalEntry) string {
	c, ok := categoryColors[e.PrimaryCategory]
	if !ok {
		return e.PrimaryMood
	}
	return c.Sprint(e.PrimaryMood)
}

func lockMark(e model.JournalEntry) string {
	if e.Locked() {
		return "🔒"
	}
	return ""
}

func printEntries(w io.Writer, entries []model.JournalEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, faint("No entries."))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	tbl.AddRow(bold("Date"), bold("Title"), bold("Mood"), bold("Also"), bold("Tags"), "")
	for _, e := range entries {
		tbl.AddRow(e.DateKey, e.Title, mood(e),
			strings.Join(e.SecondaryMoods, ", "),
			strings.Join(e.Tags, ", "),
			lockMark(e))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printEntry(w io.Writer, e *model.JournalEntry) {
	_, _ = fmt.Fprintln(w, bold(underline(e.DateKey+"  "+e.Title)))

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Mood"), fmt.Sprintf("%s (%s)", mood(*e), e.PrimaryCategory))
	if len(e.SecondaryMoods) > 0 {
		tbl.AddRow(bold("Also"), strings.Join(e.SecondaryMoods, ", "))
	}
	if len(e.Tags) > 0 {
		tbl.AddRow(bold("Tags"), strings.Join(e.Tags, ", "))
	}
	tbl.AddRow(bold("Updated"), e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintln(w, tbl)

	if e.Content != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, e.Content)
	}
}

func printSearch(w io.Writer, res *model.SearchResult) {
	printEntries(w, res.Items)
	_, _ = fmt.Fprintln(w, faint(fmt.Sprintf("page %d of %d · %d entries", res.Page, res.TotalPages(), res.TotalCount)))
}

func printStreaks(w io.Writer, r model.StreakResult) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Current streak"), days(r.CurrentStreak))
	tbl.AddRow(bold("Longest streak"), days(r.LongestStreak))
	tbl.AddRow(bold("Missed days"), days(r.MissedDays))
	_, _ = fmt.Fprintln(w, tbl)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func printList(w io.Writer, values []string) {
	if len(values) == 0 {
		_, _ = fmt.Fprintln(w, faint("None yet."))
		return
	}
	for _, v := range values {
		_, _ = fmt.Fprintln(w, v)
	}
}

func printTaxonomy(w io.Writer) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold("Mood"), bold("Category"))
	for _, m := range model.Moods {
		tbl.AddRow(m.Emoji, m.Name, categoryColors[m.Category].Sprint(m.Category))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printCustomTags(w io.Writer, tags []model.CustomTag) {
	if len(tags) == 0 {
		_, _ = fmt.Fprintln(w, faint("No custom tags."))
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Name"), bold("ID"), bold("Created"))
	for _, t := range tags {
		tbl.AddRow(t.Name, t.ID, t.CreatedAt.Local().Format(model.DateLayout))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printSummary(w io.Writer, s *model.MoodSummary) {
	_, _ = fmt.Fprintln(w, bold(underline(fmt.Sprintf("%s → %s · %d entries", s.From, s.To, s.Total))))
	if s.Total == 0 {
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(categoryColors[model.CategoryPositive].Sprint("Positive"), s.PositiveCount, fmt.Sprintf("%d%%", s.PositivePercent))
	tbl.AddRow(categoryColors[model.CategoryNeutral].Sprint("Neutral"), s.NeutralCount, fmt.Sprintf("%d%%", s.NeutralPercent))
	tbl.AddRow(categoryColors[model.CategoryNegative].Sprint("Negative"), s.NegativeCount, fmt.Sprintf("%d%%", s.NegativePercent))
	_, _ = fmt.Fprintln(w, tbl)

	if s.MostFrequentMood.Name != "" {
		_, _ = fmt.Fprintf(w, "\n%s %s (%d)\n", bold("Most frequent mood:"), s.MostFrequentMood.Name, s.MostFrequentMood.Count)
	}
	printStats(w, "Top moods", s.TopMoods)
	printStats(w, "Top tags", s.TopTagsByEntry)
}

func printStats(w io.Writer, title string, stats []model.LabelStat) {
	if len(stats) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "\n"+bold(title))
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, st := range stats {
		tbl.AddRow("  "+st.Name, st.Count, fmt.Sprintf("%d%%", st.Percent))
	}
	_, _ = fmt.Fprintln(w, tbl)
}
