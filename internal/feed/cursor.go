// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Cursor is the decoded resume point of a paginated feed. It is carried on
// the wire as opaque base64url(JSON) so clients cannot meaningfully
// manipulate it.
//
// Two pagination modes share the one type:
//
//   - Keyset (following / single-ordering feeds): LastCreatedAt and LastID
//     record the ordering key of the last item served; the next page starts
//     strictly after it.
//   - Batch (ranked and randomized mixes): Batch is the index of the next
//     composed batch; earlier batches define the exclude-set.
type Cursor struct {
	// Batch is the next batch index for batch-mode pagination.
	Batch int `json:"b,omitempty"`

	// LastID is the id of the last item served, the ordering tie-breaker.
	LastID string `json:"id,omitempty"`

	// LastCreatedAt is the creation time of the last item served.
	LastCreatedAt *time.Time `json:"at,omitempty"`
}

// After reports whether the position (createdAt, id) sorts strictly after
// the cursor in the (createdAt desc, id desc) ordering. A nil cursor, or one
// without a keyset position, precedes everything.
func (c *Cursor) After(createdAt time.Time, id string) bool {
	if c == nil || c.LastCreatedAt == nil {
		return true
	}
	if createdAt.Before(*c.LastCreatedAt) {
		return true
	}
	if createdAt.Equal(*c.LastCreatedAt) {
		return id < c.LastID
	}
	return false
}

// Encode serializes the cursor to its opaque wire form.
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		// Cursor fields are plain values; marshaling cannot fail in
		// practice. An empty cursor restarts pagination, the safe outcome.
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor parses an opaque cursor string. An empty string yields a nil
// cursor (first page). Undecodable input fails with ErrCursorInvalid.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursorInvalid, err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursorInvalid, err)
	}
	if c.Batch < 0 {
		return nil, fmt.Errorf("%w: negative batch", ErrCursorInvalid)
	}
	return &c, nil
}
