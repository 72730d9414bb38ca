package models

import "errors"

// ErrNotConfigured is returned when a guild has no trigger channel or
// category mapping for the requested room kind. It is a user-facing
// condition, distinct from infrastructure failures.
var ErrNotConfigured = errors.New("room creation is not configured for this guild")
