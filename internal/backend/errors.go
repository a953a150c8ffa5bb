package backend

import (
	"errors"
	"fmt"
)

var ErrCreateMenuItem = errors.New("failed to add menu item")

// MenuLoadError means no menu is available. It never affects cart state.
type MenuLoadError struct {
	StatusCode int
	Err        error
}

func (e *MenuLoadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to load menu (%d)", e.StatusCode)
	}
	return fmt.Sprintf("failed to load menu: %v", e.Err)
}

func (e *MenuLoadError) Unwrap() error {
	return e.Err
}

// statusError marks server-side failures so they count against the breaker.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.status)
}
