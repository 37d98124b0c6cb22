package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/todo/internal/app"
	"github.com/joescharf/todo/internal/dashboard"
	"github.com/joescharf/todo/internal/models"
)

// Server exposes the todo core as MCP tools.
type Server struct {
	app     *app.App
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(a *app.App, version string) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{app: a, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("todo", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listTool())
	srv.AddTool(s.createTool())
	srv.AddTool(s.updateTool())
	srv.AddTool(s.deleteTool())
	srv.AddTool(s.undoTool())
	srv.AddTool(s.reorderTool())
	srv.AddTool(s.toggleTool())
	srv.AddTool(s.statisticsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// todo_list
func (s *Server) listTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_list",
		mcp.WithDescription("List todo items one page (10 items) at a time. Returns items plus page, totalPages and totalItems."),
		mcp.WithString("search", mcp.Description("Case-insensitive text matched against title and description")),
		mcp.WithString("status", mcp.Description("Filter by status"), mcp.Enum("todo", "in_progress", "done")),
		mcp.WithString("priority", mcp.Description("Filter by priority"), mcp.Enum("low", "medium", "high")),
		mcp.WithString("sort", mcp.Description("Ordering"), mcp.Enum("order", "priority", "due", "status", "title")),
		mcp.WithNumber("page", mcp.Description("1-based page number")),
	)
	return tool, s.handleList
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := dashboard.Query{
		Search: request.GetString("search", ""),
		Page:   request.GetInt("page", 1),
	}
	if raw := request.GetString("status", ""); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q.Status = &st
	}
	if raw := request.GetString("priority", ""); raw != "" {
		p, err := models.ParsePriority(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q.Priority = &p
	}
	sort, err := dashboard.ParseSort(request.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q.Sort = sort

	return jsonResult(dashboard.Apply(s.app.Todos.All(ctx), q))
}

// todo_create
func (s *Server) createTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_create",
		mcp.WithDescription("Create a todo item. Returns the created item as JSON."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short task title")),
		mcp.WithString("description", mcp.Description("Longer task description")),
		mcp.WithString("status", mcp.Description("Initial status (default: todo)"), mcp.Enum("todo", "in_progress", "done")),
		mcp.WithString("priority", mcp.Description("Priority (default: medium)"), mcp.Enum("low", "medium", "high")),
		mcp.WithString("due_date", mcp.Description("Due date as YYYY-MM-DD")),
	)
	return tool, s.handleCreate
}

func (s *Server) handleCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := request.RequireString("title"); err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}
	draft := dashboard.Draft{Status: models.StatusTodo, Priority: models.PriorityMedium}
	if err := applyArgs(request, &draft); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.app.Dashboard.Create(ctx, draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(item)
}

// todo_update
func (s *Server) updateTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_update",
		mcp.WithDescription("Update fields of a todo item. Only the given fields change. Pass due_date \"\" to clear it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("status", mcp.Description("New status"), mcp.Enum("todo", "in_progress", "done")),
		mcp.WithString("priority", mcp.Description("New priority"), mcp.Enum("low", "medium", "high")),
		mcp.WithString("due_date", mcp.Description("New due date as YYYY-MM-DD")),
	)
	return tool, s.handleUpdate
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	existing, ok := s.app.Todos.Get(ctx, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("todo not found: %s", id)), nil
	}

	draft := dashboard.DraftOf(existing)
	if err := applyArgs(request, &draft); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.app.Dashboard.Edit(ctx, id, draft)
	if err != nil {
		var verr *dashboard.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Message), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to update todo: %v", err)), nil
	}
	return jsonResult(item)
}

// applyArgs copies the arguments present in request onto draft.
func applyArgs(request mcp.CallToolRequest, draft *dashboard.Draft) error {
	args := request.GetArguments()
	if _, ok := args["title"]; ok {
		draft.Title = request.GetString("title", "")
	}
	if _, ok := args["description"]; ok {
		draft.Description = request.GetString("description", "")
	}
	if _, ok := args["status"]; ok {
		st, err := models.ParseStatus(request.GetString("status", ""))
		if err != nil {
			return err
		}
		draft.Status = st
	}
	if _, ok := args["priority"]; ok {
		p, err := models.ParsePriority(request.GetString("priority", ""))
		if err != nil {
			return err
		}
		draft.Priority = p
	}
	if _, ok := args["due_date"]; ok {
		due, err := models.ParseDueDate(request.GetString("due_date", ""))
		if err != nil {
			return err
		}
		draft.DueDate = due
	}
	return nil
}

// todo_delete
func (s *Server) deleteTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_delete",
		mcp.WithDescription("Delete a todo item. The most recent delete can be reverted with todo_undo for a few seconds."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo ID")),
	)
	return tool, s.handleDelete
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	if !s.app.Dashboard.Delete(ctx, id) {
		return mcp.NewToolResultError(fmt.Sprintf("todo not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s", id)), nil
}

// todo_undo
func (s *Server) undoTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_undo",
		mcp.WithDescription("Restore the most recently deleted todo item while the undo window is open."),
	)
	return tool, s.handleUndo
}

func (s *Server) handleUndo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.app.Dashboard.Undo(ctx) {
		return mcp.NewToolResultError("nothing to undo"), nil
	}
	return mcp.NewToolResultText("Task restored!"), nil
}

// todo_reorder
func (s *Server) reorderTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_reorder",
		mcp.WithDescription("Move a todo item to a 0-based position in the manual order. Positions past the end append."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo ID")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Target position, 0 is the top")),
	)
	return tool, s.handleReorder
}

func (s *Server) handleReorder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: index"), nil
	}
	if !s.app.Todos.Reorder(ctx, id, index) {
		return mcp.NewToolResultError(fmt.Sprintf("todo not found: %s", id)), nil
	}
	return jsonResult(s.app.Todos.All(ctx))
}

// todo_toggle
func (s *Server) toggleTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_toggle",
		mcp.WithDescription("Advance a todo item's status: todo -> in_progress -> done -> todo."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo ID")),
	)
	return tool, s.handleToggle
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	item, ok := s.app.Dashboard.ToggleStatus(ctx, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("todo not found: %s", id)), nil
	}
	return jsonResult(item)
}

// todo_statistics
func (s *Server) statisticsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("todo_statistics",
		mcp.WithDescription("Get task counts, completion rate, average completion time and the 7-day activity histogram."),
	)
	return tool, s.handleStatistics
}

func (s *Server) handleStatistics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.app.Stats.Statistics(ctx))
}
