package commands

import (
	"github.com/spf13/cobra"
)

func addStreaks(topLevel *cobra.Command, ro *RootOptions) {
	var output string

	cmd := &cobra.Command{
		Use:   "streaks",
		Short: "Show the current and longest writing streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return withSession(ro, func(s *session) error {
				res, err := s.Streaks.Calculate(cmd.Context())
				if err != nil {
					return err
				}
				if output == outputJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				printStreaks(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	topLevel.AddCommand(cmd)
}

func addMoods(topLevel *cobra.Command, ro *RootOptions) {
	var taxonomy bool

	cmd := &cobra.Command{
		Use:   "moods",
		Short: "List the moods used in the journal",
		Example: `
journal moods
journal moods --taxonomy
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if taxonomy {
				printTaxonomy(cmd.OutOrStdout())
				return nil
			}
			return withSession(ro, func(s *session) error {
				moods, err := s.Journal.DistinctMoods(cmd.Context())
				if err != nil {
					return err
				}
				printList(cmd.OutOrStdout(), moods)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&taxonomy, "taxonomy", false, "list every selectable mood with its category")
	topLevel.AddCommand(cmd)
}

func addTags(topLevel *cobra.Command, ro *RootOptions) {
	var custom bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tags used in the journal",
		Example: `
journal tags
journal tags --custom
journal tags add Family
journal tags rm Family
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(ro, func(s *session) error {
				tags, err := s.Journal.DistinctTags(cmd.Context())
				if err != nil {
					return err
				}
				if custom {
					if tags, err = s.CustomTags.Suggestions(cmd.Context(), tags); err != nil {
						return err
					}
				}
				printList(cmd.OutOrStdout(), tags)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&custom, "custom", false, "include custom tags")

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(ro, func(s *session) error {
				tag, err := s.CustomTags.Add(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				cmd.Printf("Added custom tag %s\n", bold(tag.Name))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a custom tag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(ro, func(s *session) error {
				n, err := s.CustomTags.DeleteByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if n == 0 {
					cmd.Printf("No custom tag named %s\n", args[0])
					return nil
				}
				cmd.Printf("Removed custom tag %s\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "custom",
		Aliases: []string{"ls"},
		Short:   "List custom tags",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(ro, func(s *session) error {
				tags, err := s.CustomTags.List(cmd.Context())
				if err != nil {
					return err
				}
				printCustomTags(cmd.OutOrStdout(), tags)
				return nil
			})
		},
	})

	topLevel.AddCommand(cmd)
}

func addSummary(topLevel *cobra.Command, ro *RootOptions) {
	var from, to, output string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Mood dashboard for a date range (default the last 30 days)",
		Example: `
journal summary
journal summary --from 2024-01-01 --to 2024-01-31 -o json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			end, err := parseDay(to)
			if err != nil {
				return err
			}
			start := end.AddDate(0, 0, -29)
			if from != "" {
				if start, err = parseDay(from); err != nil {
					return err
				}
			}

			return withSession(ro, func(s *session) error {
				summary, err := s.Dashboard.Summary(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return printJSON(cmd.OutOrStdout(), summary)
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day (default 29 days before --to)")
	cmd.Flags().StringVar(&to, "to", "today", "last day")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	topLevel.AddCommand(cmd)
}

