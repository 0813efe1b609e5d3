// Package mcptools exposes the journal to MCP clients over stdio.
//
// Every tool answers with JSON text. Failures a caller can fix (bad dates,
// unknown entries, a wrong PIN) come back as tool errors rather than
// protocol errors, so the model sees the message.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sakif/moodjournal/internal/app"
	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/service"
)

const ServerName = "Mood Journal MCP Server"

type toolset struct {
	journal   *service.JournalService
	streaks   *service.StreakService
	dashboard *service.DashboardService
	calendar  *service.CalendarService
	logger    *slog.Logger
}

// NewServer builds an MCP server with every journal tool registered.
func NewServer(a *app.App, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	register(s, &toolset{
		journal:   a.Journal,
		streaks:   a.Streaks,
		dashboard: a.Dashboard,
		calendar:  a.Calendar,
		logger:    a.Logger,
	})
	return s
}

// Serve runs the stdio loop until the client disconnects.
func Serve(a *app.App, version string) error {
	return server.ServeStdio(NewServer(a, version))
}

func register(s *server.MCPServer, t *toolset) {
	s.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Search journal entries by title, date range, moods and tags. Results are paged; PIN-protected content is hidden."),
		mcp.WithString("title", mcp.Description("Case-insensitive substring of the title.")),
		mcp.WithString("from", mcp.Description("First day, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Last day, YYYY-MM-DD.")),
		mcp.WithString("moods", mcp.Description("Comma-separated moods; matches primary or secondary mood.")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; an entry matches if it has any of them.")),
		mcp.WithString("sort", mcp.Description("DateKey, Title, CreatedAt or UpdatedAt.")),
		mcp.WithBoolean("ascending", mcp.Description("Sort ascending instead of descending.")),
		mcp.WithNumber("page", mcp.Description("1-based page number.")),
		mcp.WithNumber("page_size", mcp.Description("Entries per page.")),
	), t.searchEntries)

	s.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Fetch the entry for one day. PIN-protected entries need the PIN."),
		mcp.WithString("date", mcp.Required(), mcp.Description("The day, YYYY-MM-DD.")),
		mcp.WithString("pin", mcp.Description("PIN for a protected entry.")),
	), t.getEntry)

	s.AddTool(mcp.NewTool("calculate_streaks",
		mcp.WithDescription("Current streak, longest streak and missed days."),
	), t.calculateStreaks)

	s.AddTool(mcp.NewTool("list_moods",
		mcp.WithDescription("Every mood used on an entry, sorted case-insensitively."),
	), t.listMoods)

	s.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("Every tag used on an entry, sorted case-insensitively."),
	), t.listTags)

	s.AddTool(mcp.NewTool("mood_summary",
		mcp.WithDescription("Mood category split, top moods and top tags for a date range."),
		mcp.WithString("from", mcp.Required(), mcp.Description("First day, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Last day, YYYY-MM-DD.")),
	), t.moodSummary)

	s.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("Calendar events for a month, or starting in [from, to). Without arguments, every event."),
		mcp.WithString("month", mcp.Description("Month, YYYY-MM. Takes precedence over from/to.")),
		mcp.WithString("from", mcp.Description("Inclusive start, RFC 3339 or YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Exclusive end, RFC 3339 or YYYY-MM-DD.")),
	), t.listEvents)
}

func (t *toolset) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	spec := model.SearchSpec{
		TitleContains: stringArg(args, "title"),
		Moods:         listArg(args, "moods"),
		Tags:          listArg(args, "tags"),
		Sort:          model.SortColumn(stringArg(args, "sort")),
		Page:          intArg(args, "page", 1),
		PageSize:      intArg(args, "page_size", service.DefaultPageSize),
	}
	spec.Ascending, _ = args["ascending"].(bool)

	var err error
	if spec.From, err = optionalDate(args, "from"); err != nil {
		return toolError(err), nil
	}
	if spec.To, err = optionalDate(args, "to"); err != nil {
		return toolError(err), nil
	}

	result, err := t.journal.Search(ctx, spec)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{
		"items":      result.Items,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"totalPages": result.TotalPages(),
	})
}

func (t *toolset) getEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := requiredDate(req.Params.Arguments, "date")
	if err != nil {
		return toolError(err), nil
	}

	entry, err := t.journal.Open(ctx, date, stringArg(req.Params.Arguments, "pin"))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(entry)
}

func (t *toolset) calculateStreaks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.streaks.Calculate(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(result)
}

func (t *toolset) listMoods(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	moods, err := t.journal.DistinctMoods(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(moods)
}

func (t *toolset) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := t.journal.DistinctTags(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(tags)
}

func (t *toolset) moodSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := requiredDate(req.Params.Arguments, "from")
	if err != nil {
		return toolError(err), nil
	}
	to, err := requiredDate(req.Params.Arguments, "to")
	if err != nil {
		return toolError(err), nil
	}

	summary, err := t.dashboard.Summary(ctx, from, to)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(summary)
}

func (t *toolset) listEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments

	var (
		events []model.CalendarEvent
		err    error
	)
	if raw := stringArg(args, "month"); raw != "" {
		m, perr := time.Parse("2006-01", raw)
		if perr != nil {
			return toolError(apperror.ValidationFailed("month",
				fmt.Sprintf("'month' must be YYYY-MM, got %q", raw))), nil
		}
		events, err = t.calendar.Month(ctx, m.Year(), m.Month())
	} else {
		var from, to *time.Time
		if from, err = optionalTime(args, "from"); err != nil {
			return toolError(err), nil
		}
		if to, err = optionalTime(args, "to"); err != nil {
			return toolError(err), nil
		}
		events, err = t.calendar.List(ctx, from, to)
	}
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(events)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError hides storage details the same way the HTTP API does.
func toolError(err error) *mcp.CallToolResult {
	var appErr *apperror.AppError
	switch {
	case errors.Is(err, apperror.ErrStorage):
		return mcp.NewToolResultError("the journal could not be read")
	case errors.As(err, &appErr):
		return mcp.NewToolResultError(appErr.Message)
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

// intArg reads a JSON number; they arrive as float64.
func intArg(args map[string]interface{}, name string, fallback int) int {
	switch n := args[name].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

func listArg(args map[string]interface{}, name string) []string {
	var out []string
	for _, part := range strings.Split(stringArg(args, name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optionalDate(args map[string]interface{}, name string) (*time.Time, error) {
	if stringArg(args, name) == "" {
		return nil, nil
	}
	d, err := requiredDate(args, name)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func requiredDate(args map[string]interface{}, name string) (time.Time, error) {
	raw := stringArg(args, name)
	d, err := model.ParseDateKey(raw)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed(name,
			fmt.Sprintf("'%s' must be a date in YYYY-MM-DD form, got %q", name, raw))
	}
	return d, nil
}

func optionalTime(args map[string]interface{}, name string) (*time.Time, error) {
	raw := stringArg(args, name)
	if raw == "" {
		return nil, nil
	}
	ts, err := model.ParseEventTime(raw)
	if err != nil {
		return nil, apperror.ValidationFailed(name,
			fmt.Sprintf("'%s' must be RFC 3339 or YYYY-MM-DD, got %q", name, raw))
	}
	return &ts, nil
}
