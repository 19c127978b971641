package httpapi

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/imagex"
)

const (
	avatarFormField = "avatar"
	avatarSize      = 250
)

var allowedAvatarExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// handleUploadAvatar accepts a multipart upload, normalizes the image to a
// fixed-size PNG and stores the result.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.avatarMaxBytes)

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		respondError(w, http.StatusBadRequest, "please upload an image up to 1MB in the avatar field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedAvatarExts[ext]; !ok {
		respondError(w, http.StatusBadRequest, "please upload an image in jpg, jpeg or png format")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "please upload an image up to 1MB in the avatar field")
		return
	}

	normalized, err := imagex.Normalize(data, avatarSize, avatarSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "uploaded file is not a valid image")
		return
	}

	if err := s.avatars.Put(r.Context(), user.ID, normalized); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	if err := s.avatars.Delete(r.Context(), user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nil)
}

// handleGetAvatar serves an avatar publicly by user id. A missing user and a
// user without an avatar both 404.
func (s *Server) handleGetAvatar(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	data, err := s.avatars.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
