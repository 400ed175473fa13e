package solar

import (
	"math"
	"testing"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/hkava/sunshift/internal/location"
)

func TestJulianDayFromEpoch(t *testing.T) {
	tests := []struct {
		name  string
		epoch float64
		want  float64
	}{
		{"unix epoch", 0, 2440587.5},
		{"one day later", 86400, 2440588.5},
		{"j2000", 946728000, 2451545.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := julianDayFromEpoch(tt.epoch)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestJulianCent(t *testing.T) {
	if got := julianCent(2451545.0); got != 0 {
		t.Errorf("expected 0 centuries at J2000.0, got %v", got)
	}
	if got := julianCent(2451545.0 + 36525.0); got != 1 {
		t.Errorf("expected 1 century, got %v", got)
	}
}

func TestElevationNearSolarNoonAtEquator(t *testing.T) {
	// Near the March 2000 equinox the sun stands almost overhead at the
	// equator around apparent noon.
	loc := location.Location{Lat: 0, Lon: 0}
	noon := time.Date(2000, 3, 20, 12, 0, 0, 0, time.UTC)

	elev := Elevation(float64(noon.Unix()), loc)
	if elev < 85 || elev > 90 {
		t.Errorf("expected near-zenith elevation at equinox noon, got %v", elev)
	}

	midnight := time.Date(2000, 3, 20, 0, 0, 0, 0, time.UTC)
	elev = Elevation(float64(midnight.Unix()), loc)
	if elev > -80 {
		t.Errorf("expected deep negative elevation at equinox midnight, got %v", elev)
	}
}

func TestElevationMidsummerHelsinki(t *testing.T) {
	// Midsummer noon in Helsinki: max elevation is about 90 - lat + decl
	// = 90 - 60.17 + 23.44 ≈ 53°.
	loc := location.Location{Lat: 60.1695, Lon: 24.9354}
	noon := time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC) // close to local solar noon

	elev := Elevation(float64(noon.Unix()), loc)
	if elev < 51 || elev > 54 {
		t.Errorf("expected midsummer noon elevation around 53°, got %v", elev)
	}
}

// The suncalc library the platform already uses serves as an independent
// oracle: both models should agree to a fraction of a degree.
func TestElevationAgreesWithSuncalc(t *testing.T) {
	locations := []location.Location{
		{Lat: 60.1695, Lon: 24.9354},   // Helsinki
		{Lat: -33.8688, Lon: 151.2093}, // Sydney
		{Lat: 0.0, Lon: -78.4678},      // Quito
		{Lat: 64.1466, Lon: -21.9426},  // Reykjavik
	}
	times := []time.Time{
		time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 21, 18, 30, 0, 0, time.UTC),
		time.Date(2024, 10, 31, 23, 45, 0, 0, time.UTC),
	}

	for _, loc := range locations {
		for _, ts := range times {
			got := Elevation(float64(ts.Unix()), loc)

			pos := suncalc.GetPosition(ts, loc.Lat, loc.Lon)
			want := pos.Altitude * 180.0 / math.Pi

			if math.Abs(got-want) > 0.5 {
				t.Errorf("elevation at %v %s: got %v, suncalc says %v",
					ts, loc.String(), got, want)
			}
		}
	}
}

func TestElevationMonotonicThroughMorning(t *testing.T) {
	loc := location.Location{Lat: 60.1695, Lon: 24.9354}
	start := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	prev := Elevation(float64(start.Unix()), loc)
	for i := 1; i <= 12; i++ {
		ts := start.Add(time.Duration(i) * 30 * time.Minute)
		elev := Elevation(float64(ts.Unix()), loc)
		if elev <= prev {
			t.Fatalf("elevation not rising at %v: %v -> %v", ts, prev, elev)
		}
		prev = elev
	}
}

func TestElevationPropagatesNaN(t *testing.T) {
	loc := location.Location{Lat: 60.0, Lon: 25.0}
	if !math.IsNaN(Elevation(math.NaN(), loc)) {
		t.Error("expected NaN elevation for NaN timestamp")
	}
}

func TestTwilightConstants(t *testing.T) {
	if CivilTwilightElev != -6.0 {
		t.Errorf("civil twilight should be -6.0, got %v", CivilTwilightElev)
	}
	if NautTwilightElev != -12.0 {
		t.Errorf("nautical twilight should be -12.0, got %v", NautTwilightElev)
	}
	if AstroTwilightElev != -18.0 {
		t.Errorf("astronomical twilight should be -18.0, got %v", AstroTwilightElev)
	}
	if DaytimeElev != -0.833 {
		t.Errorf("apparent sunrise elevation should be -0.833, got %v", DaytimeElev)
	}
}
