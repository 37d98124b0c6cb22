package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/joescharf/todo/internal/app"
	"github.com/joescharf/todo/internal/dashboard"
	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/theme"
)

// Server provides the REST API handlers.
type Server struct {
	app         *app.App
	log         zerolog.Logger
	requireAuth bool
}

// NewServer creates a new API server. When requireAuth is set every route
// except login needs a bearer token minted by the auth gate.
func NewServer(a *app.App, requireAuth bool, logger zerolog.Logger) *Server {
	return &Server{
		app:         a,
		log:         logger,
		requireAuth: requireAuth,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", s.login)
	mux.HandleFunc("POST /api/v1/auth/logout", s.logout)
	mux.HandleFunc("GET /api/v1/auth/session", s.session)

	mux.HandleFunc("GET /api/v1/todos", s.listTodos)
	mux.HandleFunc("POST /api/v1/todos", s.createTodo)
	mux.HandleFunc("POST /api/v1/todos/bulk-delete", s.bulkDeleteTodos)
	mux.HandleFunc("POST /api/v1/todos/bulk-priority", s.bulkPriorityTodos)
	mux.HandleFunc("POST /api/v1/todos/undo", s.undoDelete)
	mux.HandleFunc("GET /api/v1/todos/{id}", s.getTodo)
	mux.HandleFunc("PUT /api/v1/todos/{id}", s.updateTodo)
	mux.HandleFunc("DELETE /api/v1/todos/{id}", s.deleteTodo)
	mux.HandleFunc("POST /api/v1/todos/{id}/reorder", s.reorderTodo)
	mux.HandleFunc("POST /api/v1/todos/{id}/toggle", s.toggleTodo)

	mux.HandleFunc("GET /api/v1/statistics", s.statistics)

	mux.HandleFunc("GET /api/v1/theme", s.getTheme)
	mux.HandleFunc("PUT /api/v1/theme", s.setTheme)
	mux.HandleFunc("POST /api/v1/theme/toggle", s.toggleTheme)

	mux.HandleFunc("GET /api/v1/notifications", s.notifications)

	var h http.Handler = mux
	if s.requireAuth {
		h = s.authMiddleware(h)
	}
	return s.logMiddleware(corsMiddleware(h))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// patchString applies a string value from a JSON patch map to the target if the key is present.
func patchString(patch map[string]any, key string, target *string) {
	if v, ok := patch[key]; ok {
		if str, ok := v.(string); ok {
			*target = str
		}
	}
}

// --- Auth ---

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res := s.app.Auth.Login(r.Context(), creds)
	if !res.Success {
		writeJSON(w, http.StatusUnauthorized, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.app.Auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	if user, ok := UserFrom(r.Context()); ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Username: user})
		return
	}
	resp := sessionResponse{Authenticated: s.app.Auth.IsAuthenticated(r.Context())}
	if resp.Authenticated {
		resp.Username, _ = s.app.Auth.CurrentUser(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Todos ---

func parseQuery(r *http.Request) (dashboard.Query, error) {
	v := r.URL.Query()
	q := dashboard.Query{Search: v.Get("search"), Page: 1}

	if raw := v.Get("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return q, err
		}
		q.Status = &st
	}
	if raw := v.Get("priority"); raw != "" {
		p, err := models.ParsePriority(raw)
		if err != nil {
			return q, err
		}
		q.Priority = &p
	}
	sort, err := dashboard.ParseSort(v.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = sort
	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("page must be a number")
		}
		q.Page = n
	}
	return q, nil
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Apply(s.app.Todos.All(r.Context()), q))
}

func (s *Server) getTodo(w http.ResponseWriter, r *http.Request) {
	item, ok := s.app.Todos.Get(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// applyPatch merges the keys present in patch into draft.
func applyPatch(patch map[string]any, draft *dashboard.Draft) error {
	patchString(patch, "title", &draft.Title)
	patchString(patch, "description", &draft.Description)

	var raw string
	if _, ok := patch["status"]; ok {
		patchString(patch, "status", &raw)
		st, err := models.ParseStatus(raw)
		if err != nil {
			return err
		}
		draft.Status = st
	}
	if _, ok := patch["priority"]; ok {
		raw = ""
		patchString(patch, "priority", &raw)
		p, err := models.ParsePriority(raw)
		if err != nil {
			return err
		}
		draft.Priority = p
	}
	if v, ok := patch["dueDate"]; ok {
		raw = ""
		if v != nil {
			patchString(patch, "dueDate", &raw)
		}
		due, err := models.ParseDueDate(raw)
		if err != nil {
			return err
		}
		draft.DueDate = due
	}
	return nil
}

func decodePatch(r *http.Request) (map[string]any, error) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		return nil, errors.New("invalid JSON")
	}
	return patch, nil
}

func (s *Server) writeSaveError(w http.ResponseWriter, err error) {
	var verr *dashboard.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, dashboard.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft := dashboard.Draft{Status: models.StatusTodo, Priority: models.PriorityMedium}
	if err := applyPatch(patch, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.app.Dashboard.Create(r.Context(), draft)
	if err != nil {
		s.writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, ok := s.app.Todos.Get(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}

	patch, err := decodePatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft := dashboard.DraftOf(existing)
	if err := applyPatch(patch, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.app.Dashboard.Edit(r.Context(), id, draft)
	if err != nil {
		s.writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if !s.app.Dashboard.Delete(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) undoDelete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"restored": s.app.Dashboard.Undo(r.Context())})
}

func (s *Server) reorderTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}
	if !s.app.Todos.Reorder(r.Context(), r.PathValue("id"), *req.Index) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Todos.All(r.Context()))
}

func (s *Server) toggleTodo(w http.ResponseWriter, r *http.Request) {
	item, ok := s.app.Dashboard.ToggleStatus(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) bulkDeleteTodos(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	n := s.app.Dashboard.BulkDelete(r.Context(), req.IDs)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) bulkPriorityTodos(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs      []string `json:"ids"`
		Priority string   `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	p, err := models.ParsePriority(req.Priority)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := s.app.Dashboard.BulkSetPriority(r.Context(), req.IDs, p)
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// --- Statistics ---

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Stats.Statistics(r.Context()))
}

// --- Theme ---

func (s *Server) getTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]theme.Theme{"theme": s.app.Theme.Get(r.Context())})
}

func (s *Server) setTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	t, err := theme.Parse(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.app.Theme.Set(r.Context(), t)
	writeJSON(w, http.StatusOK, map[string]theme.Theme{"theme": t})
}

func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]theme.Theme{"theme": s.app.Theme.Toggle(r.Context())})
}

// --- Notifications ---

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	n := s.app.Notifications.Drain()
	if n == nil {
		n = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, n)
}
