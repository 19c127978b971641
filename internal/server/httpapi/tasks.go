package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type createTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// parseListFilter translates the query string of GET /tasks:
// ?completed=true&sortBy=createdAt:desc&limit=10&skip=20.
// Unparseable or negative limit/skip values are ignored; any sort direction
// other than the literal "desc" sorts ascending.
func parseListFilter(r *http.Request) tasks.ListFilter {
	var filter tasks.ListFilter
	q := r.URL.Query()

	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}

	if v := q.Get("sortBy"); v != "" {
		parts := strings.SplitN(v, ":", 2)
		filter.SortField = parts[0]
		filter.SortDesc = len(parts) == 2 && parts[1] == "desc"
	}

	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit >= 0 {
			filter.Limit = &limit
		}
	}

	if v := q.Get("skip"); v != "" {
		if skip, err := strconv.Atoi(v); err == nil && skip >= 0 {
			filter.Skip = &skip
		}
	}

	return filter
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	result, err := s.tasks.List(r.Context(), user.ID, parseListFilter(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	taskID := mux.Vars(r)["id"]

	task, err := s.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	taskID := mux.Vars(r)["id"]

	fields, err := decodeWhitelisted(r, "description", "completed")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var upd services.TaskUpdate
	for key, raw := range fields {
		var bad bool
		switch key {
		case "description":
			bad = json.Unmarshal(raw, &upd.Description) != nil
		case "completed":
			bad = json.Unmarshal(raw, &upd.Completed) != nil
		}
		if bad {
			respondError(w, http.StatusBadRequest, "invalid value for field "+key)
			return
		}
	}

	task, err := s.tasks.Update(r.Context(), user.ID, taskID, upd)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	taskID := mux.Vars(r)["id"]

	task, err := s.tasks.Delete(r.Context(), user.ID, taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}
