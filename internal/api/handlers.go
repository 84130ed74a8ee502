// Package api exposes the HTTP surface of the portal service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/landrzz/LOPEffortTracker/internal/auth"
	"github.com/landrzz/LOPEffortTracker/internal/domain"
	"github.com/landrzz/LOPEffortTracker/internal/form"
	"github.com/landrzz/LOPEffortTracker/internal/observability"
	"github.com/landrzz/LOPEffortTracker/internal/persistence"
	"github.com/landrzz/LOPEffortTracker/internal/profile"
	"github.com/landrzz/LOPEffortTracker/internal/session"
)

// Handler coordinates HTTP requests with the domain service and session manager.
type Handler struct {
	service  *domain.Service
	sessions *session.Manager
	profiles *profile.Sync
	log      zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, sessions *session.Manager, profiles *profile.Sync, log zerolog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, profiles: profiles, log: log}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	r.HandleFunc("/v1/auth/google", h.googleSignIn).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/session", h.currentSession).Methods(http.MethodGet)
	r.HandleFunc("/v1/auth/signout", h.signOut).Methods(http.MethodPost)

	r.HandleFunc("/v1/activities", h.createActivity).Methods(http.MethodPost)
	r.HandleFunc("/v1/activities", h.listActivities).Methods(http.MethodGet)

	r.HandleFunc("/v1/dashboard/daily", h.dailySummary).Methods(http.MethodGet)
	r.HandleFunc("/v1/dashboard/team", h.teamOverview).Methods(http.MethodGet)
	r.HandleFunc("/v1/dashboard/metrics", h.metrics).Methods(http.MethodGet)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Type      string     `json:"type"`
	Timestamp *time.Time `json:"timestamp"`
	Notes     string     `json:"notes"`
	Count     *int       `json:"count"`
	LOID      string     `json:"lo_id"`
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "you must be signed in to log activities")
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	sub := form.New()
	sub.SetType(domain.ActivityType(req.Type))
	sub.SetNotes(req.Notes)
	if req.Timestamp != nil {
		sub.SetTimestamp(*req.Timestamp)
	} else {
		sub.SetTimestamp(time.Time{})
	}
	if req.Count != nil {
		sub.SetCount(*req.Count)
	}
	if req.LOID != "" {
		sub.SetLoanOfficer(req.LOID)
	}

	user, err := h.sessions.CurrentUser(r.Context(), claims)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "you must be signed in to log activities")
		return
	}

	prof, err := h.profiles.Lookup(r.Context(), claims.Subject)
	if err != nil {
		// Attribution falls back to the user's own id.
		h.log.Error().Err(err).Str("uid", claims.Subject).Msg("profile lookup failed")
		prof = nil
	}

	activity, err := sub.Submit(r.Context(), h.service, &user, prof)
	if err != nil {
		switch {
		case errors.Is(err, form.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Type:   "validation_failed",
				Errors: sub.FieldErrors(),
			})
		case errors.Is(err, form.ErrNotSignedIn):
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		default:
			writeStoreError(w, err)
		}
		return
	}

	observability.RecordActivityLogged(string(activity.Type))
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.ListActivities(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	summary, err := h.service.DailySummary(r.Context(), claims.Subject, time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	remaining := summary.Goal - summary.Total
	if remaining < 0 {
		remaining = 0
	}
	writeJSON(w, http.StatusOK, DailySummaryResponse{
		Total:     summary.Total,
		Goal:      summary.Goal,
		Remaining: remaining,
	})
}

func (h *Handler) teamOverview(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	stats, err := h.service.TeamOverview(r.Context(), time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	members := make([]TeamMemberView, 0, len(stats))
	for _, s := range stats {
		members = append(members, TeamMemberView{
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			Activities:  s.Total,
		})
	}
	writeJSON(w, http.StatusOK, TeamOverviewResponse{Members: members})
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	period := domain.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.PeriodDaily
	}
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "validation_failed", "period must be daily, weekly or monthly")
		return
	}

	metrics, err := h.service.Metrics(r.Context(), claims.Subject, period, time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	byType := make([]TypeCountView, 0, len(metrics.ByType))
	for _, tc := range metrics.ByType {
		byType = append(byType, TypeCountView{
			Type:  string(tc.Type),
			Label: tc.Type.Label(),
			Count: tc.Count,
		})
	}
	writeJSON(w, http.StatusOK, MetricsResponse{
		Period:     string(metrics.Period),
		ByType:     byType,
		TotalCount: metrics.TotalCount,
	})
}

// ActivityView exposes one logged activity.
type ActivityView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
	UserID    string    `json:"user_id"`
	LOID      string    `json:"lo_id"`
	Count     *int      `json:"count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// DailySummaryResponse backs the daily effort counter.
type DailySummaryResponse struct {
	Total     int `json:"total"`
	Goal      int `json:"goal"`
	Remaining int `json:"remaining"`
}

// TeamMemberView is one row of the team overview.
type TeamMemberView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Activities  int    `json:"activities"`
}

// TeamOverviewResponse packages the team overview.
type TeamOverviewResponse struct {
	Members []TeamMemberView `json:"members"`
}

// TypeCountView pairs an activity type with its aggregate count.
type TypeCountView struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MetricsResponse packages per-period metrics.
type MetricsResponse struct {
	Period     string          `json:"period"`
	ByType     []TypeCountView `json:"by_type"`
	TotalCount int             `json:"total_count"`
}

// ValidationErrorResponse carries per-field validation messages.
type ValidationErrorResponse struct {
	Type   string            `json:"type"`
	Errors map[string]string `json:"errors"`
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:        a.ID,
		Type:      string(a.Type),
		Timestamp: a.Timestamp,
		Notes:     a.Notes,
		UserID:    a.UserID,
		LOID:      a.LOID,
		Count:     a.Count,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

// writeStoreError surfaces the store's message verbatim, with the Postgres
// error code when one is present.
func writeStoreError(w http.ResponseWriter, err error) {
	payload := map[string]string{
		"type":   "server_error",
		"detail": err.Error(),
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		payload["detail"] = pgErr.Message
		payload["code"] = pgErr.Code
	}
	writeJSON(w, http.StatusInternalServerError, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
