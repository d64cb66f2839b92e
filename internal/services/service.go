// Package services holds the types shared between the registry client and its
// callers: the Entity submitted for lookup and the common error sentinels.
package services

import (
	"log/slog"

	"github.com/polarityio/ripe/internal/apperr"
)

// ErrInvalidInput is re-exported from apperr.
// Use errors.Is(err, services.ErrInvalidInput) to detect rejected inputs.
var ErrInvalidInput = apperr.ErrInvalidInput

// ErrRequestFailed is re-exported from apperr.
// Every classified registry error matches it via errors.Is.
var ErrRequestFailed = apperr.ErrRequestFailed

// LevelTrace is the slog level used for per-request tracing, one step below Debug.
const LevelTrace = slog.LevelDebug - 4
