// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes mood-log tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/moodlog/internal/apperr"
	"github.com/starford/moodlog/internal/checkin"
	"github.com/starford/moodlog/internal/dashboard"
	"github.com/starford/moodlog/internal/models"
	"github.com/starford/moodlog/internal/moodlog"
)

// Server wraps the MCP server with mood-log tools.
type Server struct {
	mcp       *server.MCPServer
	store     *moodlog.Store
	trendDays int
	now       func() time.Time
}

// New creates a new MCP server with all tools registered.
func New(store *moodlog.Store, trendDays int) *Server {
	s := &Server{store: store, trendDays: trendDays, now: time.Now}

	s.mcp = server.NewMCPServer(
		"moodlog",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("record_checkin",
		mcp.WithDescription("Record a daily mood check-in. A second check-in on the same day replaces the first. "+
			"Read the guide first via the get_checkin_guide tool or the moodlog://checkin-guide resource."),
		mcp.WithString("feeling", mcp.Required(), mcp.Description("One of: great, good, okay, not great, difficult")),
		mcp.WithString("note", mcp.Description("Optional free-text note")),
		mcp.WithString("date", mcp.Description("Optional calendar date YYYY-MM-DD (defaults to today, UTC)")),
	), s.recordCheckin)

	s.mcp.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Latest mood, the recent trend and the current streak."),
	), s.getDashboard)

	s.mcp.AddTool(mcp.NewTool("get_streak",
		mcp.WithDescription("Number of consecutive days with a check-in, ending at the most recent one."),
	), s.getStreak)

	s.mcp.AddTool(mcp.NewTool("list_moods",
		mcp.WithDescription("List recorded mood entries, most recent last."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of trailing entries (0 for all)")),
	), s.listMoods)

	s.mcp.AddTool(mcp.NewTool("get_mood",
		mcp.WithDescription("Get the mood entry for a specific date."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Calendar date YYYY-MM-DD")),
	), s.getMood)

	s.mcp.AddTool(mcp.NewTool("get_checkin_guide",
		mcp.WithDescription("Returns the feeling labels and check-in rules."),
	), s.getCheckinGuide)

	s.mcp.AddResource(
		mcp.NewResource("moodlog://checkin-guide", "Check-in Guide",
			mcp.WithResourceDescription("Feeling labels and how check-ins and streaks work."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCheckinGuideResource,
	)

	return s
}

// ServeStdio serves MCP on stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) recordCheckin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("feeling")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	feeling, err := checkin.ParseFeeling(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry := checkin.New(feeling, req.GetString("note", ""), s.now())
	if date := req.GetString("date", ""); date != "" {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%v: date must be YYYY-MM-DD", apperr.ErrInvalidInput)), nil
		}
		entry.Date = date
	}

	out := s.store.Record(ctx, entry)
	verb := "recorded"
	if out.Replaced {
		verb = "updated"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s: %s %s (streak %d)\n%s",
		verb, entry.Date, entry.Emoji, entry.Feeling, out.Streak, checkin.Response(feeling))), nil
}

func (s *Server) getDashboard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(dashboard.Build(s.store, s.trendDays), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getStreak(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf("%d", s.store.Streak())), nil
}

func (s *Server) listMoods(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var entries []models.MoodEntry
	if limit := req.GetInt("limit", 0); limit > 0 {
		entries = s.store.Recent(limit)
	} else {
		entries, _ = s.store.Snapshot()
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no entries yet"), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMood(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := s.store.Entry(date)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no entry for %s", date)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(e, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCheckinGuide(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CheckinGuide), nil
}

func (s *Server) readCheckinGuideResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "moodlog://checkin-guide",
			MIMEType: "text/markdown",
			Text:     CheckinGuide,
		},
	}, nil
}
