package bot

import (
	"errors"
	"fmt"
)

// ErrRegistryFrozen is returned when a callback is added after Run has started.
var ErrRegistryFrozen = errors.New("bot: callbacks cannot be added after run")

// ErrNotConnected is returned by Initialize before Connect has succeeded.
var ErrNotConnected = errors.New("bot: not connected")

// ErrNotInitialized is returned by Run before Initialize has succeeded.
var ErrNotInitialized = errors.New("bot: no league selected")

// ConfigurationError is fatal: the bot cannot start against this league and store.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "bot: configuration error: " + e.Reason
}

// FetchError wraps a failed upstream call. It aborts the current cycle only.
type FetchError struct {
	Stream string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("bot: %s fetch failed: %v", e.Stream, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HandlerError reports a callback that failed or panicked for one item.
type HandlerError struct {
	Stream string
	ItemID string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("bot: %s handler failed for %s: %v", e.Stream, e.ItemID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// AsConfigurationError attempts to unwrap an error into a ConfigurationError.
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var cErr *ConfigurationError
	if errors.As(err, &cErr) {
		return cErr, true
	}
	return nil, false
}
