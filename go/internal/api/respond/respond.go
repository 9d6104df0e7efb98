// Package respond provides shared JSON response utilities for API
// handlers, including the mapping from the typed error taxonomy to
// HTTP statuses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
)

// ErrorResponse is the standard error shape for all API errors.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// JSON marshals v and writes it with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Error writes a structured JSON error with an explicit status.
func Error(w http.ResponseWriter, status int, code, message string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// AppError translates an application error into an HTTP response.
// Unrecognized errors become opaque 500s so internals never leak.
func AppError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		Error(w, http.StatusBadRequest, apperrors.CodeOf(err), err.Error())
	case apperrors.KindAuthorization:
		Error(w, http.StatusForbidden, apperrors.CodeOf(err), err.Error())
	case apperrors.KindNotFound:
		Error(w, http.StatusNotFound, apperrors.CodeOf(err), err.Error())
	case apperrors.KindStateConflict:
		Error(w, http.StatusConflict, apperrors.CodeOf(err), err.Error())
	case apperrors.KindExhaustion:
		Error(w, http.StatusUnprocessableEntity, apperrors.CodeOf(err), err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		Error(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
