// Package loop runs the continual adjustment cycle: recompute the solar
// elevation, derive a color setting, push it to the gamma backend when it
// changes, and guarantee the display is restored on every exit path.
package loop

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/hkava/sunshift/internal/gamma"
	"github.com/hkava/sunshift/internal/location"
	"github.com/hkava/sunshift/internal/solar"
	"github.com/hkava/sunshift/internal/transition"
)

// Default tick intervals. The short interval drives start/stop fades; the
// long one is enough for the slow drift of solar elevation.
const (
	DefaultTickShort = 100 * time.Millisecond
	DefaultTickLong  = 5 * time.Second
)

type state int

const (
	running state = iota
	exiting
)

// Update describes one applied state change, for observers such as the
// telemetry publisher.
type Update struct {
	Elevation float64
	Period    transition.Period
	Setting   transition.ColorSetting
}

// Config carries the optional knobs of a Loop. Zero values select defaults.
type Config struct {
	TickShort time.Duration
	TickLong  time.Duration

	// Now returns the current Unix time in seconds. Injected for tests;
	// defaults to the wall clock with sub-second precision.
	Now func() float64

	// OnChange, when set, observes every applied setting.
	OnChange func(Update)
}

// Loop owns the transition scheme and the backend handle. It is
// single-threaded: only the loop goroutine mutates the scheme or calls the
// backend; the ticker and the signal source are pure producers.
type Loop struct {
	scheme  *transition.Scheme
	backend gamma.Backend
	loc     location.Location
	logger  *slog.Logger

	tickShort time.Duration
	tickLong  time.Duration
	now       func() float64
	onChange  func(Update)

	prev     transition.ColorSetting
	havePrev bool
	prevElev float64
	haveElev bool
}

// New creates a control loop over the given scheme and backend.
func New(scheme *transition.Scheme, backend gamma.Backend, loc location.Location, cfg Config, logger *slog.Logger) *Loop {
	if cfg.TickShort == 0 {
		cfg.TickShort = DefaultTickShort
	}
	if cfg.TickLong == 0 {
		cfg.TickLong = DefaultTickLong
	}
	if cfg.Now == nil {
		cfg.Now = func() float64 {
			return float64(time.Now().UnixNano()) / float64(time.Second)
		}
	}
	return &Loop{
		scheme:    scheme,
		backend:   backend,
		loc:       loc,
		logger:    logger,
		tickShort: cfg.TickShort,
		tickLong:  cfg.TickLong,
		now:       cfg.Now,
		onChange:  cfg.OnChange,
	}
}

// Run starts the backend and processes ticks until a termination signal
// completes the shutdown fade, a second signal forces an exit, or a backend
// write fails. After a successful backend start the captured display state
// is restored exactly once on every exit path.
func (l *Loop) Run(sigs <-chan os.Signal) error {
	if err := l.backend.Start(); err != nil {
		return fmt.Errorf("failed to start gamma backend: %w", err)
	}

	defer func() {
		if err := l.backend.Restore(); err != nil {
			l.logger.Error("Failed to restore display state", "error", err)
		} else {
			l.logger.Info("Display state restored")
		}
	}()

	tick := newTicker()
	go tick.run()
	defer close(tick.stop)

	st := running
	tick.arm(0) // process the first tick immediately

	for {
		select {
		case <-tick.fire:
			if err := l.tick(); err != nil {
				return err
			}
			if st == exiting && !l.scheme.ShortTransitionActive() {
				l.logger.Info("Shutdown fade complete")
				return nil
			}
			tick.arm(l.nextDelay())

		case <-sigs:
			if st == running {
				st = exiting
				l.scheme.ArmStopFade()
				l.logger.Info("Termination signal received, fading out")
				tick.arm(l.tickShort)
			} else {
				l.logger.Info("Second termination signal received, exiting now")
				return nil
			}
		}
	}
}

// tick recomputes the elevation and applies the derived setting if it
// differs from the previously applied one.
func (l *Loop) tick() error {
	elev := solar.Elevation(l.now(), l.loc)
	if !l.haveElev || math.Abs(elev-l.prevElev) > 0.01 {
		l.logger.Debug("Solar elevation changed", "degrees", elev)
		l.prevElev = elev
		l.haveElev = true
	}

	period := l.scheme.Period(elev)

	if l.scheme.ShortTransitionActive() {
		l.scheme.AdvanceShortTransition()
	}
	setting := l.scheme.ApplyAdjustment(l.scheme.Interpolate(elev))

	if l.havePrev && setting == l.prev {
		return nil
	}

	if setting.Temp != l.prev.Temp {
		l.logger.Info("Color temperature", "temp_k", setting.Temp, "period", period.String())
	}
	if setting.Brightness != l.prev.Brightness {
		l.logger.Info("Brightness", "brightness", setting.Brightness)
	}

	if err := l.backend.SetTemperature(setting); err != nil {
		return fmt.Errorf("failed to apply color setting: %w", err)
	}
	l.prev = setting
	l.havePrev = true

	if l.onChange != nil {
		l.onChange(Update{Elevation: elev, Period: period, Setting: setting})
	}
	return nil
}

func (l *Loop) nextDelay() time.Duration {
	if l.scheme.ShortTransitionActive() {
		return l.tickShort
	}
	return l.tickLong
}
