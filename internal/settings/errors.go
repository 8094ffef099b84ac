package settings

import "errors"

var (
	// ErrDefaultsUnavailable indicates the bundled default resource could not be read or parsed.
	ErrDefaultsUnavailable = errors.New("default settings unavailable")
	// ErrOverrideUnavailable indicates the configured override file could not be read or parsed.
	ErrOverrideUnavailable = errors.New("override settings unavailable")
)
