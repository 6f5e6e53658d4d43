package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"randpredict/service"

	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithServiceError maps service errors to a status. unauthorizedMessage is
// what the endpoint tells a visitor without a session.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, unauthorizedMessage string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, validationErr.Message, http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, unauthorizedMessage, http.StatusUnauthorized)
	case errors.Is(err, service.ErrRateLimited):
		respondWithError(w, "Too many random draws, please wait a moment", http.StatusTooManyRequests)
	case errors.Is(err, service.ErrRandomNotConfigured):
		respondWithError(w, "Missing RANDOM_API_KEY environment variable", http.StatusInternalServerError)
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		respondWithError(w, errorMessage(err), http.StatusInternalServerError)
	}
}

// errorMessage returns the innermost error text
func errorMessage(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}
		err = inner
	}
}

// decodeJSON reads a JSON body into v. An empty body is accepted when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	respondWithError(w, "Invalid JSON payload", http.StatusBadRequest)
	return false
}
