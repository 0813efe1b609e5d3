package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/service"
)

func addSearch(topLevel *cobra.Command, ro *RootOptions) {
	var (
		from, to, sort, output string
		moods, tags            []string
		asc                    bool
		page, pageSize         int
	)

	cmd := &cobra.Command{
		Use:   "search [title]",
		Short: "Search entries by title, dates, moods and tags",
		Example: `
journal search walk
journal search --tag work --tag gym --from 2024-01-01
journal search --mood Happy --sort Title --asc
journal search --page 2 -o json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			spec := model.SearchSpec{
				Moods:     moods,
				Tags:      tags,
				Sort:      model.SortColumn(sort),
				Ascending: asc,
				Page:      page,
				PageSize:  pageSize,
			}
			if len(args) == 1 {
				spec.TitleContains = args[0]
			}
			var err error
			if spec.From, err = optionalDay(from); err != nil {
				return err
			}
			if spec.To, err = optionalDay(to); err != nil {
				return err
			}

			return withSession(ro, func(s *session) error {
				res, err := s.Journal.Search(cmd.Context(), spec)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				printSearch(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&moods, "mood", nil, "primary or secondary mood; repeatable, any match")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag; repeatable, any match")
	cmd.Flags().StringVar(&sort, "sort", string(model.SortDateKey), "DateKey, Title, CreatedAt or UpdatedAt")
	cmd.Flags().BoolVar(&asc, "asc", false, "sort ascending")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", service.DefaultPageSize, "entries per page")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command, ro *RootOptions) {
	var pin, output string

	cmd := &cobra.Command{
		Use:   "show [date]",
		Short: "Show the entry for a day (default today)",
		Example: `
journal show
journal show 2024-02-14 --pin 1234
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			date, err := parseDay(firstArg(args))
			if err != nil {
				return err
			}

			return withSession(ro, func(s *session) error {
				entry, err := s.Journal.Open(cmd.Context(), date, pin)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return printJSON(cmd.OutOrStdout(), entry)
				}
				printEntry(cmd.OutOrStdout(), entry)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "PIN of a protected entry")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	topLevel.AddCommand(cmd)
}

func addSave(topLevel *cobra.Command, ro *RootOptions) {
	var (
		in          model.EntryInput
		contentFile string
	)

	cmd := &cobra.Command{
		Use:   "save [date]",
		Short: "Create or replace the entry for a day (default today)",
		Long: `Save writes the whole entry for a day. An existing entry for that day is
replaced, keeping its id and creation time.

Content may contain markup; it is stored as plain text.`,
		Example: `
journal save --title "Long walk" --mood Relaxed --tag outdoors
journal save 2024-02-14 --title "Dinner" --mood Happy --also Grateful --pin 1234
journal save --title "Notes" --mood Calm --content-file notes.md
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(firstArg(args))
			if err != nil {
				return err
			}
			in.Date = date
			in.HasPin = in.Pin != ""

			if contentFile != "" {
				b, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("reading content: %w", err)
				}
				in.Content = string(b)
			}

			return withSession(ro, func(s *session) error {
				entry, err := s.Journal.Save(cmd.Context(), in)
				if err != nil {
					return err
				}
				cmd.Printf("Saved %s %s\n", entry.DateKey, bold(entry.Title))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "entry title (required)")
	cmd.Flags().StringVar(&in.Content, "content", "", "entry text")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read the entry text from a file")
	cmd.Flags().StringVar(&in.PrimaryMood, "mood", "", "primary mood (required)")
	cmd.Flags().StringSliceVar(&in.SecondaryMoods, "also", nil, "secondary mood; up to two")
	cmd.Flags().StringVar(&in.PrimaryCategory, "category", "", "Positive, Neutral or Negative (default: from the mood)")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag; repeatable")
	cmd.Flags().StringVar(&in.Pin, "pin", "", "protect the entry with a 4-character PIN")
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, ro *RootOptions) {
	cmd := &cobra.Command{
		Use:     "delete <date>",
		Aliases: []string{"rm"},
		Short:   "Delete the entry for a day",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[0])
			if err != nil {
				return err
			}

			return withSession(ro, func(s *session) error {
				n, err := s.Journal.Delete(cmd.Context(), date)
				if err != nil {
					return err
				}
				if n == 0 {
					cmd.Printf("No entry for %s\n", model.DateKeyOf(date))
					return nil
				}
				cmd.Printf("Deleted %s\n", model.DateKeyOf(date))
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addRecent(topLevel *cobra.Command, ro *RootOptions) {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently updated entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return withSession(ro, func(s *session) error {
				entries, err := s.Journal.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				printEntries(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultRecentLimit, "number of entries")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, ro *RootOptions) {
	var from, to, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries in a date range as JSON",
		Long: `Export writes every entry between --from and --to, oldest first, as a JSON
array. Content of PIN-protected entries is left out.`,
		Example: `
journal export --from 2024-01-01 --to 2024-12-31 --out 2024.json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDay(from)
			if err != nil {
				return err
			}
			end, err := parseDay(to)
			if err != nil {
				return err
			}

			return withSession(ro, func(s *session) error {
				entries, err := s.Journal.Export(cmd.Context(), start, end)
				if err != nil {
					return err
				}

				if strings.TrimSpace(out) == "" || out == "-" {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				if err := printJSON(f, entries); err != nil {
					f.Close()
					return fmt.Errorf("writing %s: %w", out, err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				cmd.Printf("Exported %d entries to %s\n", len(entries), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "today", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("from")
	topLevel.AddCommand(cmd)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
