// Command journal is the mood journal CLI: write and search entries, follow
// streaks, and run the HTTP or MCP server.
package main

import (
	"os"

	"github.com/sakif/moodjournal/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		os.Exit(1)
	}
}
