// Package colorramp derives tinted gamma ramps from a color setting. The
// tint is a per-channel white point looked up from a blackbody table, so the
// underlying calibration curve of the captured ramp is preserved.
package colorramp

import (
	"math"

	"github.com/hkava/sunshift/internal/transition"
)

// Supported color temperature range (Kelvin). The white point table holds
// one entry per tableStep across this range.
const (
	MinTemp   = 1000
	MaxTemp   = 25000
	tableStep = 100
)

// whitePoints[i] is the RGB multiplier triple for MinTemp + i*tableStep,
// normalized so the neutral temperature maps to exactly (1, 1, 1).
var whitePoints [(MaxTemp-MinTemp)/tableStep + 1][3]float64

func init() {
	for i := range whitePoints {
		whitePoints[i] = blackbodyRGB(float64(MinTemp + i*tableStep))
	}
	neutral := whitePoints[(transition.NeutralTemp-MinTemp)/tableStep]
	for i := range whitePoints {
		for ch := 0; ch < 3; ch++ {
			whitePoints[i][ch] /= neutral[ch]
		}
	}
}

// blackbodyRGB approximates the color of a blackbody radiator at the given
// temperature as an RGB triple in [0, 1], using the standard Planckian-locus
// curve fit over the 100K grid.
func blackbodyRGB(temp float64) [3]float64 {
	t := temp / 100.0

	var r, g, b float64
	if t <= 66 {
		r = 255
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
	}
	if t <= 66 {
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}
	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}

	return [3]float64{
		clamp(r/255.0, 0, 1),
		clamp(g/255.0, 0, 1),
		clamp(b/255.0, 0, 1),
	}
}

// WhitePoint returns the RGB multiplier triple for the given temperature,
// piecewise-linearly interpolated between the bracketing table entries.
// Temperatures outside the supported range clamp to the nearest endpoint.
func WhitePoint(temp int) [3]float64 {
	if temp <= MinTemp {
		return whitePoints[0]
	}
	if temp >= MaxTemp {
		return whitePoints[len(whitePoints)-1]
	}

	i := (temp - MinTemp) / tableStep
	alpha := float64(temp%tableStep) / float64(tableStep)

	var wp [3]float64
	for ch := 0; ch < 3; ch++ {
		wp[ch] = (1.0-alpha)*whitePoints[i][ch] + alpha*whitePoints[i+1][ch]
	}
	return wp
}

// Fill rewrites the ramps in place. The slices must hold the originally
// captured base values on entry; each value is scaled by the white point for
// the setting's temperature, the per-channel gamma and the brightness, then
// clamped to the representable range.
func Fill(r, g, b []uint16, setting transition.ColorSetting) {
	wp := WhitePoint(setting.Temp)

	scale := func(ramp []uint16, ch int) {
		f := wp[ch] * setting.Gamma[ch] * setting.Brightness
		for i := range ramp {
			ramp[i] = uint16(math.Min(float64(ramp[i])*f, 65535))
		}
	}
	scale(r, 0)
	scale(g, 1)
	scale(b, 2)
}

// Linear builds the fallback base ramp used when an output reports no
// readable gamma table.
func Linear(size int) []uint16 {
	ramp := make([]uint16, size)
	for i := range ramp {
		ramp[i] = uint16(float64(i) / float64(size) * 65535.0)
	}
	return ramp
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
