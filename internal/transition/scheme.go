// Package transition maps solar elevation to a color setting. It owns the
// day/night interpolation and the short start/stop fade state machine.
package transition

import (
	"errors"
	"fmt"
	"math"

	"github.com/hkava/sunshift/internal/solar"
)

// NeutralTemp is the color temperature that leaves the display unchanged.
const NeutralTemp = 6500

// Default color settings, applied when the configuration leaves them unset.
const (
	DefaultDayTemp    = 5500
	DefaultNightTemp  = 3500
	DefaultBrightness = 1.0
	DefaultGamma      = 1.0
)

// ErrInvalidScheme reports an elevation threshold ordering violation.
var ErrInvalidScheme = errors.New("transition: high elevation must be greater than low")

// ColorSetting is a target hardware adjustment.
type ColorSetting struct {
	Temp       int
	Gamma      [3]float64
	Brightness float64
}

// Sentinel returns the uninitialized setting used during configuration
// assembly: fields are filled in from defaults where they remain unset.
func Sentinel() ColorSetting {
	return ColorSetting{
		Temp:       -1,
		Gamma:      [3]float64{math.NaN(), math.NaN(), math.NaN()},
		Brightness: math.NaN(),
	}
}

// Neutral returns the setting that leaves the display unchanged.
func Neutral() ColorSetting {
	return ColorSetting{
		Temp:       NeutralTemp,
		Gamma:      [3]float64{1.0, 1.0, 1.0},
		Brightness: 1.0,
	}
}

// PeriodKind tags the period of day derived from solar elevation.
type PeriodKind int

const (
	PeriodNone PeriodKind = iota
	PeriodDay
	PeriodNight
	PeriodTransition
)

// Period classifies an elevation. Fraction is only meaningful for
// PeriodTransition: 0 at the low threshold, 1 at the high threshold.
type Period struct {
	Kind     PeriodKind
	Fraction float64
}

func (p Period) String() string {
	switch p.Kind {
	case PeriodDay:
		return "Day"
	case PeriodNight:
		return "Night"
	case PeriodTransition:
		return fmt.Sprintf("Transition (%.1f%% day)", p.Fraction*100)
	default:
		return "None"
	}
}

// Scheme holds the elevation thresholds, the day/night color settings and
// the state of the short start/stop fade. It is mutated only by its owner;
// the control loop is the single writer.
type Scheme struct {
	High  float64
	Low   float64
	Day   ColorSetting
	Night ColorSetting

	// Short fade from/to neutral at process start and stop.
	shortDelta  int
	shortLen    int
	adjustAlpha float64
}

// NewScheme builds a scheme with the given thresholds and profiles. The high
// threshold must be strictly greater than the low one, otherwise the
// interpolation inverts.
func NewScheme(high, low float64, day, night ColorSetting) (*Scheme, error) {
	if !(high > low) {
		return nil, fmt.Errorf("%w (high=%v, low=%v)", ErrInvalidScheme, high, low)
	}
	return &Scheme{
		High:        high,
		Low:         low,
		Day:         day,
		Night:       night,
		adjustAlpha: 1.0,
	}, nil
}

// DefaultScheme uses the civil twilight elevation as the low threshold and
// 3 degrees as the high one.
func DefaultScheme(day, night ColorSetting) *Scheme {
	s, _ := NewScheme(3.0, solar.CivilTwilightElev, day, night)
	return s
}

// Period classifies the elevation against the scheme thresholds. Elevations
// exactly at a threshold classify as a transition endpoint.
func (s *Scheme) Period(elevation float64) Period {
	switch {
	case elevation < s.Low:
		return Period{Kind: PeriodNight}
	case elevation > s.High:
		return Period{Kind: PeriodDay}
	default:
		t := (s.Low - elevation) / (s.Low - s.High)
		return Period{Kind: PeriodTransition, Fraction: t}
	}
}

// Interpolate blends the night and day settings for the given elevation.
// The blend factor is clamped to [0, 1] however far the elevation lies
// outside the thresholds.
func (s *Scheme) Interpolate(elevation float64) ColorSetting {
	alpha := clamp((s.Low-elevation)/(s.Low-s.High), 0.0, 1.0)

	return ColorSetting{
		Temp:       int((1.0-alpha)*float64(s.Night.Temp) + alpha*float64(s.Day.Temp)),
		Brightness: (1.0-alpha)*s.Night.Brightness + alpha*s.Day.Brightness,
		Gamma: [3]float64{
			(1.0-alpha)*s.Night.Gamma[0] + alpha*s.Day.Gamma[0],
			(1.0-alpha)*s.Night.Gamma[1] + alpha*s.Day.Gamma[1],
			(1.0-alpha)*s.Night.Gamma[2] + alpha*s.Day.Gamma[2],
		},
	}
}

// ShortTransitionActive reports whether a start/stop fade is in progress.
func (s *Scheme) ShortTransitionActive() bool {
	return s.shortDelta != 0
}

// AdjustAlpha returns the current neutral-blend weight.
func (s *Scheme) AdjustAlpha() float64 {
	return s.adjustAlpha
}

// AdvanceShortTransition moves the fade one step. When the alpha crosses
// outside [0, 1] it is clamped and the fade stops; the terminal state is
// one-shot and further calls are no-ops.
func (s *Scheme) AdvanceShortTransition() {
	if s.shortDelta == 0 {
		return
	}
	s.adjustAlpha += float64(s.shortDelta) * 0.1 / float64(s.shortLen)

	if s.adjustAlpha <= 0.0 || s.adjustAlpha >= 1.0 {
		s.shortDelta = 0
	}
	s.adjustAlpha = clamp(s.adjustAlpha, 0.0, 1.0)
}

// ApplyAdjustment blends the setting toward neutral while a fade is active.
// Temperature and brightness are blended; gamma deliberately is not, since
// it is a per-channel calibration exponent rather than a perceptual level.
func (s *Scheme) ApplyAdjustment(setting ColorSetting) ColorSetting {
	if s.shortDelta == 0 {
		return setting
	}
	setting.Temp = int(s.adjustAlpha*float64(NeutralTemp) + (1.0-s.adjustAlpha)*float64(setting.Temp))
	setting.Brightness = s.adjustAlpha*1.0 + (1.0-s.adjustAlpha)*setting.Brightness
	return setting
}

// ArmStartFade eases the display from neutral to the current period color
// over roughly one second of short ticks at startup.
func (s *Scheme) ArmStartFade() {
	s.shortDelta = -1
	s.shortLen = 10
	s.adjustAlpha = 1.0
}

// ArmStopFade eases the display for roughly 0.2s of short ticks before the
// process exits.
func (s *Scheme) ArmStopFade() {
	s.shortDelta = -1
	s.shortLen = 2
	s.adjustAlpha = 0.1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
