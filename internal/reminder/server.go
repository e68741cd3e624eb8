package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "dailybell"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	store     *Store
}

// NewServer creates a new Reminder MCP server backed by the given store.
func NewServer(store *Store) *Server {
	s := &Server{
		store: store,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a new reminder with a description, a future due time and an optional repeat mode"),
			mcp.WithString("description", mcp.Required(), mcp.Description("What to be reminded of")),
			mcp.WithString("due_at", mcp.Required(), mcp.Description("Local due time as YYYY-MM-DD HH:MM (24h)")),
			mcp.WithString("repeat", mcp.Description("Repeat mode: None, Daily or Weekly (default: None)"),
				mcp.Enum(string(RepeatNone), string(RepeatDaily), string(RepeatWeekly))),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all reminders in creation order"),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_reminder",
			mcp.WithDescription("Get one reminder by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleGetReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Replace a reminder's description, due time and repeat mode. Omitted fields keep their current value"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("due_at", mcp.Description("New local due time as YYYY-MM-DD HH:MM")),
			mcp.WithString("repeat", mcp.Description("New repeat mode: None, Daily or Weekly"),
				mcp.Enum(string(RepeatNone), string(RepeatDaily), string(RepeatWeekly))),
		),
		s.handleUpdateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)
}

// reminderView is the JSON shape returned to MCP clients.
type reminderView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	DueAt       string `json:"due_at"`
	Repeat      Repeat `json:"repeat"`
}

func toView(r Reminder) reminderView {
	return reminderView{
		ID:          r.ID,
		Description: r.Description,
		DueAt:       FormatTime(r.DueAt),
		Repeat:      r.Repeat,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}

func (s *Server) handleAddReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	dueAtStr := req.GetString("due_at", "")

	if dueAtStr == "" {
		return mcp.NewToolResultError("due_at is required"), nil
	}
	dueAt, err := ParseTime(dueAtStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repeat, err := ParseRepeat(req.GetString("repeat", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	added, err := s.store.Add(Input{Description: description, DueAt: dueAt, Repeat: repeat})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	return jsonResult(toView(added)), nil
}

func (s *Server) handleListReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders := s.store.List()
	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	views := make([]reminderView, 0, len(reminders))
	for _, r := range reminders {
		views = append(views, toView(r))
	}
	return jsonResult(views), nil
}

func (s *Server) handleGetReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	r, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(toView(r)), nil
}

func (s *Server) handleUpdateReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	current, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := Input{
		Description: current.Description,
		DueAt:       current.DueAt,
		Repeat:      current.Repeat,
	}
	if v := req.GetString("description", ""); v != "" {
		in.Description = v
	}
	if v := req.GetString("due_at", ""); v != "" {
		t, err := ParseTime(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.DueAt = t
	}
	if v := req.GetString("repeat", ""); v != "" {
		repeat, err := ParseRepeat(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.Repeat = repeat
	}

	updated, err := s.store.Update(id, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}
	return jsonResult(toView(updated)), nil
}

func (s *Server) handleDeleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.store.Remove(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}
