package gamma

import (
	"log/slog"

	"github.com/hkava/sunshift/internal/transition"
)

// Dummy is a no-op backend for testing and headless use. It only logs the
// settings it would have applied.
type Dummy struct {
	logger *slog.Logger

	started  bool
	applied  int
	restored int
	last     transition.ColorSetting
}

// NewDummy creates a dummy backend.
func NewDummy(logger *slog.Logger) *Dummy {
	return &Dummy{logger: logger}
}

func (d *Dummy) Start() error {
	d.logger.Warn("Using dummy gamma backend, display will not be affected")
	d.started = true
	return nil
}

func (d *Dummy) SetTemperature(setting transition.ColorSetting) error {
	d.logger.Info("Dummy apply",
		"temp_k", setting.Temp,
		"brightness", setting.Brightness)
	d.applied++
	d.last = setting
	return nil
}

func (d *Dummy) Restore() error {
	d.restored++
	return nil
}

// Applied returns how many settings were applied.
func (d *Dummy) Applied() int { return d.applied }

// Restored returns how many times Restore ran.
func (d *Dummy) Restored() int { return d.restored }

// Last returns the most recently applied setting.
func (d *Dummy) Last() transition.ColorSetting { return d.last }
