package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// decodeWhitelisted decodes a JSON object and rejects it outright when it
// contains a key outside allowed. This is what makes partial updates
// all-or-nothing: no field is applied unless every field may be.
func decodeWhitelisted(r *http.Request, allowed ...string) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = struct{}{}
	}

	for k := range fields {
		if _, ok := allowedSet[k]; !ok {
			return nil, fmt.Errorf("%w: invalid updates", common.ErrValidation)
		}
	}

	return fields, nil
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.mailer.SendWelcome(r.Context(), user.Email, user.Name)

	respondJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unable to login")
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	token, _ := tokenFromContext(r.Context())

	if err := s.users.Logout(r.Context(), user.ID, token); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	if err := s.users.LogoutAll(r.Context(), user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	fields, err := decodeWhitelisted(r, "name", "email", "age", "password")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var upd services.UserUpdate
	for key, raw := range fields {
		var bad bool
		switch key {
		case "name":
			bad = json.Unmarshal(raw, &upd.Name) != nil
		case "email":
			bad = json.Unmarshal(raw, &upd.Email) != nil
		case "age":
			bad = json.Unmarshal(raw, &upd.Age) != nil
		case "password":
			bad = json.Unmarshal(raw, &upd.Password) != nil
		}
		if bad {
			respondError(w, http.StatusBadRequest, "invalid value for field "+key)
			return
		}
	}

	updated, err := s.users.Update(r.Context(), user.ID, upd)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	deleted, err := s.users.Delete(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.mailer.SendCancellation(r.Context(), deleted.Email, deleted.Name)

	respondJSON(w, http.StatusOK, deleted)
}
