package commands

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/moodjournal/internal/mcptools"
	"github.com/sakif/moodjournal/internal/server"
)

func addServe(topLevel *cobra.Command, ro *RootOptions) {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Example: `
journal serve
journal serve --port 9090
JOURNAL_HTTP_PORT=9090 journal serve
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(ro, func(s *session) error {
				if cmd.Flags().Changed("port") {
					s.Config.HTTP.Port = port
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return server.New(server.Config{Port: s.Config.HTTP.Port}, s.App).Run(ctx)
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides http.port)")
	topLevel.AddCommand(cmd)
}

func addMCP(topLevel *cobra.Command, ro *RootOptions) {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server on stdio",
		Long: `Launch an MCP server that exposes journal search, entries, streaks and
the mood dashboard as tools. Stdout carries the protocol, so logs only go
to log.file when one is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(ro, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			return mcptools.Serve(s.App, Version)
		},
	}
	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the journal version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Version)
		},
	}
	topLevel.AddCommand(cmd)
}
