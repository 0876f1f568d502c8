// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"errors"
	"fmt"
)

// Error taxonomy for the feed core. Callers classify with errors.Is.
var (
	// ErrDependencyUnavailable indicates an underlying store or cache could
	// not be reached. Fatal to the request: the feed core never returns an
	// unfiltered or partially-filtered feed in place of an error.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInvalidArgument indicates caller input the API layer should have
	// prevented, such as a negative limit.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCursorInvalid indicates a pagination cursor that could not be
	// decoded. A subtype of invalid argument for HTTP mapping purposes.
	ErrCursorInvalid = fmt.Errorf("%w: invalid cursor", ErrInvalidArgument)
)

// unavailable wraps a repository or cache failure so it classifies as
// ErrDependencyUnavailable while preserving the cause chain.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDependencyUnavailable, err)
}

// invalidArg reports caller input the API layer should have rejected.
func invalidArg(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
