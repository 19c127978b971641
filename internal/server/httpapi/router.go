package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router builds the route table. Middleware is executed in the same order
// that it is registered in.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.StrictSlash(true) // Ignore trailing slashes
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	r.Use(closeBodyMiddleware) // MUST be registered first
	r.Use(s.reqBodySizeLimitMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	// Public routes.
	r.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/avatar", s.handleGetAvatar).Methods(http.MethodGet)

	// Authenticated routes.
	r.Handle("/users/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)
	r.Handle("/users/logoutAll", s.authed(s.handleLogoutAll)).Methods(http.MethodPost)
	r.Handle("/users/me", s.authed(s.handleGetProfile)).Methods(http.MethodGet)
	r.Handle("/users/me", s.authed(s.handleUpdateProfile)).Methods(http.MethodPatch)
	r.Handle("/users/me", s.authed(s.handleDeleteUser)).Methods(http.MethodDelete)
	r.Handle("/users/me/avatar", s.authed(s.handleUploadAvatar)).Methods(http.MethodPost)
	r.Handle("/users/me/avatar", s.authed(s.handleDeleteAvatar)).Methods(http.MethodDelete)

	r.Handle("/tasks", s.authed(s.handleCreateTask)).Methods(http.MethodPost)
	r.Handle("/tasks", s.authed(s.handleListTasks)).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", s.authed(s.handleGetTask)).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", s.authed(s.handleUpdateTask)).Methods(http.MethodPatch)
	r.Handle("/tasks/{id}", s.authed(s.handleDeleteTask)).Methods(http.MethodDelete)

	return r
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "not found")
}
