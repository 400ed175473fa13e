// Package gamma abstracts the display adjustment method. A backend captures
// the hardware state once at start, applies derived ramps for each color
// setting, and restores the captured state on exit.
package gamma

import (
	"fmt"
	"log/slog"

	"github.com/hkava/sunshift/internal/transition"
)

// Backend is the capability contract for a gamma adjustment method.
type Backend interface {
	// Start captures the current hardware state for later restoration.
	// It must be called once, before any SetTemperature call.
	Start() error

	// SetTemperature applies the color setting to every captured output.
	// Each new ramp is derived from the originally captured one, never
	// from the previously applied one.
	SetTemperature(setting transition.ColorSetting) error

	// Restore re-applies the originally captured state verbatim.
	Restore() error
}

// BackendError reports a failed backend operation.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Open selects a backend by name: "randr", "dummy", or "auto". Auto tries
// the hardware method first and falls back to the dummy with a warning, so
// headless sessions still run.
func Open(name string, logger *slog.Logger) (Backend, error) {
	switch name {
	case "randr":
		return NewRandr(logger), nil
	case "dummy":
		return NewDummy(logger), nil
	case "auto":
		randr := NewRandr(logger)
		if err := randr.Start(); err != nil {
			logger.Warn("RandR unavailable, falling back to dummy backend", "error", err)
			return NewDummy(logger), nil
		}
		return &started{randr}, nil
	default:
		return nil, fmt.Errorf("unknown gamma backend %q", name)
	}
}

// started wraps a backend whose Start already ran during auto-selection.
type started struct {
	Backend
}

func (s *started) Start() error { return nil }
