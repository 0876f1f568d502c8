// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP
// endpoints. It provides consistent structure for both successful and error
// responses, with metadata for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"items": [...], "next_cursor": "eyJiIjoxfQ"},
//	  "metadata": {
//	    "timestamp": "2026-08-01T12:00:00Z",
//	    "compose_time_ms": 12,
//	    "cached": false
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "INVALID_CURSOR",
//	    "message": "cursor is malformed or expired"
//	  },
//	  "metadata": {"timestamp": "2026-08-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata for observability. ComposeTimeMS is the
// wall-clock time spent composing the feed page, and Cached reports whether
// the ranked batch was served from the feed cache rather than recomputed.
type Metadata struct {
	Timestamp     time.Time `json:"timestamp"`
	ComposeTimeMS int64     `json:"compose_time_ms,omitempty"`
	Cached        bool      `json:"cached,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - INVALID_CURSOR: Malformed or expired pagination cursor
//   - DEPENDENCY_UNAVAILABLE: A backing repository or the cache failed
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Unexpected server-side failure
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidCursor  = "INVALID_CURSOR"
	CodeDependency     = "DEPENDENCY_UNAVAILABLE"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	CodeInternal       = "INTERNAL_ERROR"
	CodeMethodNotAllow = "METHOD_NOT_ALLOWED"
)

// NewSuccessResponse builds a success envelope around data.
func NewSuccessResponse(data any) APIResponse {
	return APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	}
}

// NewErrorResponse builds an error envelope with the given code and message.
func NewErrorResponse(code, message string) APIResponse {
	return APIResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
		},
	}
}
