package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yjkogan/stuff-tracker/internal/back"
	"github.com/yjkogan/stuff-tracker/internal/config"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

const authTokenLifetime = 24 * time.Hour

type ctxKey int

const ctxKeyAuthUserID ctxKey = iota

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.Allow() {
		s.writeErrorCode(w, errors.New("too many login attempts"), http.StatusTooManyRequests)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.back.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, back.ErrInvalidCredential) {
		s.writeErrorCode(w, err, http.StatusUnauthorized)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.config.IssueToken(user.ID.String(), user.Name, authTokenLifetime)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.response(w, http.StatusOK, loginResponse{Token: token})
}

// authenticator rejects requests without a valid bearer token.
func (s *Server) authenticator(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.writeErrorCode(w, errors.New("missing bearer token"), http.StatusUnauthorized)
			return
		}

		claims, err := s.config.CheckToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, config.ErrTokenExpired) {
				msg = "token expired"
			}
			s.writeErrorCode(w, errors.New(msg), http.StatusUnauthorized)
			return
		}

		userID, err := util.ParseUUIDAsBlob(claims.Subject)
		if err != nil {
			s.writeErrorCode(w, err, http.StatusUnauthorized)
			return
		}

		// Tokens outlive users removed from the database.
		user, err := s.back.GetUserByID(r.Context(), userID)
		if errors.Is(err, sql.ErrNoRows) {
			s.writeErrorCode(w, errors.New("unknown user"), http.StatusUnauthorized)
			return
		}
		if err != nil {
			s.writeError(w, err)
			return
		}

		h.ServeHTTP(w, r.WithContext(withUserID(r.Context(), user.ID)))
	})
}

func withUserID(ctx context.Context, id util.UUIDAsBlob) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUserID, id)
}

func userIDFromRequest(r *http.Request) util.UUIDAsBlob {
	id, _ := r.Context().Value(ctxKeyAuthUserID).(util.UUIDAsBlob)
	return id
}
