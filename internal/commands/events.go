package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sakif/moodjournal/internal/model"
)

func addEvents(topLevel *cobra.Command, ro *RootOptions) {
	var month, output string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List calendar events (default the current month)",
		Example: `
journal events
journal events --month 2024-03 -o json
journal events add --title "Dentist" --start 2024-03-05T10:00:00+01:00
journal events rm cnh2v0b6n88s73dq6v1g
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			m := clock()
			if strings.TrimSpace(month) != "" {
				var err error
				if m, err = time.Parse("2006-01", strings.TrimSpace(month)); err != nil {
					return fmt.Errorf("invalid month %q: expected YYYY-MM", month)
				}
			}

			return withSession(ro, func(s *session) error {
				events, err := s.Calendar.Month(cmd.Context(), m.Year(), m.Month())
				if err != nil {
					return err
				}
				if output == outputJSON {
					return printJSON(cmd.OutOrStdout(), events)
				}
				printEvents(cmd.OutOrStdout(), events)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to list (YYYY-MM)")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	cmd.AddCommand(newEventAddCommand(ro))

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a calendar event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(ro, func(s *session) error {
				n, err := s.Calendar.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if n == 0 {
					cmd.Printf("No event %s\n", args[0])
					return nil
				}
				cmd.Printf("Deleted event %s\n", args[0])
				return nil
			})
		},
	})

	topLevel.AddCommand(cmd)
}

func newEventAddCommand(ro *RootOptions) *cobra.Command {
	var (
		in         model.EventInput
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a calendar event",
		Long: `Add stores a calendar event. Times take RFC 3339 or YYYY-MM-DD; a bare
date means midnight UTC. Passing --id of an existing event replaces it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Start, err = model.ParseEventTime(start); err != nil {
				return err
			}
			if strings.TrimSpace(end) != "" {
				e, err := model.ParseEventTime(end)
				if err != nil {
					return err
				}
				in.End = &e
			}

			return withSession(ro, func(s *session) error {
				ev, err := s.Calendar.Save(cmd.Context(), in)
				if err != nil {
					return err
				}
				cmd.Printf("Saved event %s %s\n", ev.ID, bold(ev.Title))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.ID, "id", "", "replace the event with this id")
	cmd.Flags().StringVar(&in.Title, "title", "", "event title (required)")
	cmd.Flags().StringVar(&start, "start", "", "start time (required)")
	cmd.Flags().StringVar(&end, "end", "", "end time")
	cmd.Flags().BoolVar(&in.AllDay, "all-day", false, "the event lasts the whole day")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free text")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func printEvents(w io.Writer, events []model.CalendarEvent) {
	if len(events) == 0 {
		_, _ = fmt.Fprintln(w, faint("No events."))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	tbl.AddRow(bold("When"), bold("Title"), bold("ID"))
	for _, ev := range events {
		tbl.AddRow(eventWhen(ev), ev.Title, faint(ev.ID))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func eventWhen(ev model.CalendarEvent) string {
	if ev.AllDay {
		return model.DateKeyOf(ev.Start) + " (all day)"
	}
	when := ev.Start.Format("2006-01-02 15:04")
	if ev.End != nil {
		when += " → " + ev.End.Format("15:04")
	}
	return when + " UTC"
}
