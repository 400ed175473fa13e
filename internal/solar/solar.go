// Package solar computes the angular elevation of the sun for a given time
// and location, using the NOAA low-precision solar position formulas.
package solar

import (
	"math"

	"github.com/hkava/sunshift/internal/location"
)

// AtmosRefraction models atmospheric refraction near the horizon (degrees).
const AtmosRefraction = 0.833

// Standard elevation thresholds (degrees).
const (
	AstroTwilightElev = -18.0
	NautTwilightElev  = -12.0
	CivilTwilightElev = -6.0
	DaytimeElev       = 0.0 - AtmosRefraction
)

// julianDayFromEpoch converts Unix epoch seconds to a Julian day number.
func julianDayFromEpoch(t float64) float64 {
	return t/86400.0 + 2440587.5
}

// julianCent converts a Julian day to Julian centuries since J2000.0.
func julianCent(jd float64) float64 {
	return (jd - 2451545.0) / 36525.0
}

// sunGeomMeanLon returns the geometric mean longitude of the sun (radians).
func sunGeomMeanLon(t float64) float64 {
	return rad(math.Mod(280.46646+t*(36000.76983+t*0.0003032), 360.0))
}

// sunGeomMeanAnomaly returns the geometric mean anomaly of the sun (radians).
func sunGeomMeanAnomaly(t float64) float64 {
	return rad(357.52911 + t*(35999.05029-t*0.0001537))
}

// earthOrbitEccentricity returns the eccentricity of Earth's orbit (unitless).
func earthOrbitEccentricity(t float64) float64 {
	return 0.016708634 - t*(0.000042037+t*0.0000001267)
}

// sunEquationOfCenter returns the equation of center for the sun (radians).
func sunEquationOfCenter(t float64) float64 {
	m := sunGeomMeanAnomaly(t)
	c := math.Sin(m)*(1.914602-t*(0.004817+0.000014*t)) +
		math.Sin(2*m)*(0.019993-0.000101*t) +
		math.Sin(3*m)*0.000289
	return rad(c)
}

// sunTrueLon returns the true longitude of the sun (radians).
func sunTrueLon(t float64) float64 {
	return sunGeomMeanLon(t) + sunEquationOfCenter(t)
}

// sunApparentLon returns the nutation-corrected apparent longitude (radians).
func sunApparentLon(t float64) float64 {
	o := deg(sunTrueLon(t))
	return rad(o - 0.00569 - 0.00478*math.Sin(rad(125.04-1934.136*t)))
}

// meanEclipticObliquity returns the mean obliquity of the ecliptic (radians).
func meanEclipticObliquity(t float64) float64 {
	sec := 21.448 - t*(46.815+t*(0.00059-t*0.001813))
	return rad(23.0 + (26.0+sec/60.0)/60.0)
}

// obliquityCorr returns the nutation-corrected obliquity (radians).
func obliquityCorr(t float64) float64 {
	e0 := meanEclipticObliquity(t)
	omega := 125.04 - t*1934.136
	return rad(deg(e0) + 0.00256*math.Cos(rad(omega)))
}

// solarDeclination returns the declination of the sun (radians).
func solarDeclination(t float64) float64 {
	e := obliquityCorr(t)
	lambda := sunApparentLon(t)
	return math.Asin(math.Sin(e) * math.Sin(lambda))
}

// equationOfTime returns the divergence between apparent and mean solar
// time, in minutes.
func equationOfTime(t float64) float64 {
	l0 := sunGeomMeanLon(t)
	e := earthOrbitEccentricity(t)
	m := sunGeomMeanAnomaly(t)
	y := math.Pow(math.Tan(obliquityCorr(t)/2.0), 2)

	eqTime := y*math.Sin(2*l0) -
		2.0*e*math.Sin(m) +
		4.0*e*y*math.Sin(m)*math.Cos(2*l0) -
		0.5*y*y*math.Sin(4*l0) -
		1.25*e*e*math.Sin(2*m)
	return 4.0 * deg(eqTime)
}

// elevationFromHourAngle computes the solar elevation (radians) from the
// latitude (degrees), declination (radians) and true hour angle (radians).
func elevationFromHourAngle(lat, decl, ha float64) float64 {
	return math.Asin(math.Cos(ha)*math.Cos(rad(lat))*math.Cos(decl) +
		math.Sin(rad(lat))*math.Sin(decl))
}

// elevationFromJulianDay computes the solar elevation (radians) at the given
// Julian day and location.
func elevationFromJulianDay(jd float64, loc location.Location) float64 {
	t := julianCent(jd)
	offset := (jd - math.Round(jd) - 0.5) * 1440.0

	eqTime := equationOfTime(t)
	ha := rad((720.0-offset-eqTime)/4.0 - loc.Lon)
	decl := solarDeclination(t)
	return elevationFromHourAngle(loc.Lat, decl, ha)
}

// Elevation returns the solar angular elevation in degrees at the given Unix
// time (seconds, sub-second precision allowed) and location. It is pure and
// never fails; NaN input propagates as NaN output.
func Elevation(t float64, loc location.Location) float64 {
	jd := julianDayFromEpoch(t)
	return deg(elevationFromJulianDay(jd, loc))
}

func rad(d float64) float64 { return d * math.Pi / 180.0 }

func deg(r float64) float64 { return r * 180.0 / math.Pi }
