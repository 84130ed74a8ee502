package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/landrzz/LOPEffortTracker/internal/auth"
	"github.com/landrzz/LOPEffortTracker/internal/domain"
	"github.com/landrzz/LOPEffortTracker/internal/observability"
)

// GoogleSignInRequest carries the federated credential from the sign-in widget.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token"`
}

// SignInResponse is the payload for a successful sign-in.
type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// UserView exposes the signed-in user.
type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

func (h *Handler) googleSignIn(w http.ResponseWriter, r *http.Request) {
	var req GoogleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "id_token is required")
		return
	}

	result, err := h.sessions.SignInWithIDToken(r.Context(), req.IDToken)
	if err != nil {
		observability.RecordSignIn("failure")
		h.log.Error().Err(err).Msg("sign-in failed")
		writeError(w, http.StatusUnauthorized, "unauthorized", "sign-in failed")
		return
	}

	observability.RecordSignIn("success")
	writeJSON(w, http.StatusOK, SignInResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserView(result.User),
	})
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	user, err := h.sessions.CurrentUser(r.Context(), claims)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	if err := h.sessions.SignOut(r.Context(), claims); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toUserView(u domain.User) UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
	}
}
