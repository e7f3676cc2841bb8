package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps a service error to a status and a client-safe message.
// Unexpected errors are logged and reported as 500 "Server error".
func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	var (
		validation *common.ValidationError
		duplicate  *common.DuplicateFieldError
	)

	switch {
	case errors.As(err, &validation):
		writeMessage(w, http.StatusBadRequest, validation.Reason)
	case errors.As(err, &duplicate):
		writeMessage(w, http.StatusConflict, "Duplicate "+duplicate.Field)
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, common.ErrTokenExpired):
		writeMessage(w, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, common.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, common.ErrorUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, common.ErrorAttachmentsDisabled):
		writeMessage(w, http.StatusNotFound, "Attachments are not configured")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorAlreadyDispensed):
		writeMessage(w, http.StatusConflict, "Prescription already dispensed")
	default:
		if logger != nil {
			logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// decodeJSON reads the request body into dst. An empty body is accepted
// only when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}

	writeMessage(w, http.StatusBadRequest, "Invalid request body")
	return false
}
