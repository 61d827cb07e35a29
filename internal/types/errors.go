package types

import "errors"

// Error kinds surfaced by the adapters. Callers match them with errors.Is
// after wrapping.
var (
	ErrLookupFailure       = errors.New("rank lookup failed")
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	ErrNotificationFailure = errors.New("notification failed")
	ErrInvalidRecord       = errors.New("invalid keyword record")
)
