// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelmix/reelmix/internal/feed"
	"github.com/reelmix/reelmix/internal/logging"
	"github.com/reelmix/reelmix/internal/models"
)

// writeJSON serializes the envelope. Encoding failures after the header is
// written can only be logged.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// respondSuccess writes a 200 envelope. meta is optional; the timestamp and
// request ID are always filled in here.
func respondSuccess(w http.ResponseWriter, r *http.Request, data any, meta *models.Metadata) {
	resp := models.NewSuccessResponse(data)
	if meta != nil {
		resp.Metadata = *meta
	}
	resp.Metadata.Timestamp = time.Now().UTC()
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	writeJSON(w, r, http.StatusOK, resp)
}

// respondError writes an error envelope with the given status and code.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := models.NewErrorResponse(code, message)
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	writeJSON(w, r, status, resp)
}

// respondValidationError writes a 400 envelope carrying structured field
// details from the validation layer.
func respondValidationError(w http.ResponseWriter, r *http.Request, apiErr interface {
	Error() string
}) {
	respondError(w, r, http.StatusBadRequest, models.CodeValidation, apiErr.Error())
}

// statusForError maps the feed engine's error taxonomy to an HTTP status and
// response code. Cursor errors are checked before the broader invalid-argument
// class they wrap.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, feed.ErrCursorInvalid):
		return http.StatusBadRequest, models.CodeInvalidCursor
	case errors.Is(err, feed.ErrInvalidArgument):
		return http.StatusBadRequest, models.CodeValidation
	case errors.Is(err, feed.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, models.CodeDependency
	default:
		return http.StatusInternalServerError, models.CodeInternal
	}
}

// respondEngineError logs and writes an engine failure. Internal errors are
// not echoed to clients verbatim.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)

	logger := logging.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
		respondError(w, r, status, code, "internal server error")
		return
	}

	logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	respondError(w, r, status, code, err.Error())
}
