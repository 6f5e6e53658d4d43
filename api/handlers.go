package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"randpredict/auth"
	"randpredict/metrics"
	"randpredict/models"
	"randpredict/service"

	log "github.com/sirupsen/logrus"
)

const (
	msgPleaseLogIn     = "Please log in"
	msgRandomAuthError = "Authentication required to generate random numbers"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the game's JSON endpoints
type Handler struct {
	games       service.GameService
	leaderboard service.LeaderboardService
	analytics   service.AnalyticsService
	accounts    service.AccountService
	random      service.RandomService
	metrics     *metrics.Metrics
	db          Pinger
}

// Services groups the services the handlers call
type Services struct {
	Games       service.GameService
	Leaderboard service.LeaderboardService
	Analytics   service.AnalyticsService
	Accounts    service.AccountService
	Random      service.RandomService
}

// NewHandler creates the HTTP handlers. db may be nil.
func NewHandler(services Services, m *metrics.Metrics, db Pinger) *Handler {
	return &Handler{
		games:       services.Games,
		leaderboard: services.Leaderboard,
		analytics:   services.Analytics,
		accounts:    services.Accounts,
		random:      services.Random,
		metrics:     m,
		db:          db,
	}
}

type sessionUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"emailConfirmed"`
}

type sessionResponse struct {
	User *sessionUser `json:"user"`
}

// Session returns the signed-in user or null
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondJSON(w, http.StatusOK, sessionResponse{})
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{User: &sessionUser{
		ID:             user.ID,
		Email:          user.Email,
		EmailConfirmed: user.EmailConfirmed(),
	}})
}

type leaderboardResponse struct {
	Entries []*models.LeaderboardRow `json:"entries"`
}

// Leaderboard returns the best players
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboard.Top(r.Context(), r.URL.Query().Get("gameType"), limit)
	if err != nil {
		respondWithServiceError(w, r, err, msgPleaseLogIn)
		return
	}

	respondJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}

// RecordGameRun stores a finished game
func (h *Handler) RecordGameRun(w http.ResponseWriter, r *http.Request) {
	var submission models.GameSubmission
	if !decodeJSON(w, r, &submission, false) {
		return
	}

	result, err := h.games.RecordRun(r.Context(), &submission, auth.UserFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, r, err, msgPleaseLogIn)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GlobalAnalytics aggregates every run
func (h *Handler) GlobalAnalytics(w http.ResponseWriter, r *http.Request) {
	doc, err := h.analytics.Global(r.Context(), r.URL.Query().Get("gameType"))
	if err != nil {
		respondWithServiceError(w, r, err, msgPleaseLogIn)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// UserAnalytics returns the runs and stats of an email. Signed-in players may
// omit the email to see their own.
func (h *Handler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if user := auth.UserFromContext(r.Context()); user != nil {
			email = user.Email
		}
	}

	result, err := h.analytics.ForUser(r.Context(), email, r.URL.Query().Get("gameType"))
	if err != nil {
		respondWithServiceError(w, r, err, msgPleaseLogIn)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type checkLegacyEmailRequest struct {
	Email string `json:"email"`
}

// CheckLegacyEmail reports anonymous data left under an email
func (h *Handler) CheckLegacyEmail(w http.ResponseWriter, r *http.Request) {
	var req checkLegacyEmailRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	check, err := h.accounts.CheckLegacyEmail(r.Context(), req.Email)
	if err != nil {
		respondWithServiceError(w, r, err, msgPleaseLogIn)
		return
	}

	respondJSON(w, http.StatusOK, check)
}

// MigrationStatus reports migrated and pending runs of the signed-in user
func (h *Handler) MigrationStatus(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		respondWithError(w, msgPleaseLogIn, http.StatusUnauthorized)
		return
	}

	status, err := h.accounts.MigrationStatus(r.Context(), user)
	if err != nil {
		respondWithServiceError(w, r, err, msgPleaseLogIn)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// MigrateAccount moves anonymous runs of the user's email to the user
func (h *Handler) MigrateAccount(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		respondWithError(w, msgPleaseLogIn, http.StatusUnauthorized)
		return
	}

	result, err := h.accounts.MigrateAccount(r.Context(), user)
	if err != nil {
		respondWithServiceError(w, r, err, msgPleaseLogIn)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type randomResponse struct {
	Numbers []int `json:"numbers"`
}

// Random draws numbers from Random.org for a signed-in player
func (h *Handler) Random(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		h.recordDraw(metrics.DrawUnauthorized)
		respondWithError(w, msgRandomAuthError, http.StatusUnauthorized)
		return
	}

	if !h.random.Configured() {
		h.recordDraw(drawOutcome(service.ErrRandomNotConfigured))
		respondWithServiceError(w, r, service.ErrRandomNotConfigured, msgRandomAuthError)
		return
	}

	var req service.DrawRequest
	if !decodeJSON(w, r, &req, true) {
		h.recordDraw(metrics.DrawInvalid)
		return
	}

	numbers, err := h.random.Draw(r.Context(), user, req)
	if err != nil {
		h.recordDraw(drawOutcome(err))
		respondWithServiceError(w, r, err, msgRandomAuthError)
		return
	}

	h.recordDraw(metrics.DrawOK)
	log.WithFields(log.Fields{
		"userID": user.ID,
		"count":  len(numbers),
	}).Debug("Random numbers served")

	respondJSON(w, http.StatusOK, randomResponse{Numbers: numbers})
}

// Healthz answers OK while the database is reachable
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			log.WithError(err).Warn("Health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) recordDraw(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordDraw(outcome)
	}
}

func drawOutcome(err error) string {
	switch {
	case service.IsValidationError(err):
		return metrics.DrawInvalid
	case errors.Is(err, service.ErrRateLimited):
		return metrics.DrawRateLimited
	case errors.Is(err, service.ErrUnauthorized):
		return metrics.DrawUnauthorized
	default:
		return metrics.DrawError
	}
}
