package httpapi

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// closeBodyMiddleware drains and closes the request body once the handler
// returns, so the connection can be reused.
func closeBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		_, _ = io.Copy(io.Discard, r.Body)
		r.Body.Close()
	})
}

// reqBodySizeLimitMiddleware applies a maximum size limit to the request
// body. Reads past the limit fail, which surfaces as a 400 from the JSON
// decoding in the handlers.
func (s *Server) reqBodySizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.reqBodySizeLimit)
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns a handler panic into a 500 instead of killing the
// process.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error(r.Context(), "handler panic", "panic", p, "path", r.URL.Path)
				respondError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// authed is the authorization gate. It extracts the bearer token, resolves
// the acting user, and exposes both to the handler via the request context.
// Every failure — missing header, bad signature, unknown user, revoked
// token — produces the same 401 so a caller learns nothing about the cause.
// Nothing is cached between requests.
func (s *Server) authed(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "please authenticate")
			return
		}

		user, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "please authenticate")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, tokenKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
