package location

import (
	"context"
	"errors"
	"testing"
)

func TestNewValidatesRanges(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantErr  bool
	}{
		{"helsinki", 60.1695, 24.9354, false},
		{"south west", -33.87, -70.66, false},
		{"pole", 90, 180, false},
		{"lat too high", 90.001, 0, true},
		{"lat too low", -91, 0, true},
		{"lon too high", 0, 180.5, true},
		{"lon too low", 0, -181, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%v, %v) error = %v, wantErr %v", tt.lat, tt.lon, err, tt.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Location
		wantErr bool
	}{
		{"plain", "60.1695:24.9354", Location{60.1695, 24.9354}, false},
		{"negative", "-33.87:-70.66", Location{-33.87, -70.66}, false},
		{"integers", "55:12", Location{55, 12}, false},
		{"missing lon", "60.17", Location{}, true},
		{"trailing part", "60:24:7", Location{}, true},
		{"bad lat", "abc:24", Location{}, true},
		{"bad lon", "60:xyz", Location{}, true},
		{"out of range", "120:24", Location{}, true},
		{"empty", "", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMarksMalformedInput(t *testing.T) {
	for _, input := range []string{"60.17", "60:24:7", "abc:24", "60:xyz", ""} {
		if _, err := Parse(input); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q): expected ErrMalformed, got %v", input, err)
		}
	}
	// Out-of-range coordinates parse fine but fail validation, which is a
	// different error.
	if _, err := Parse("120:24"); err == nil || errors.Is(err, ErrMalformed) {
		t.Errorf("Parse(\"120:24\"): expected range error, got %v", err)
	}
}

func TestStringUsesHemisphereSuffixes(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{60.1695, 24.9354}, "60.17 N, 24.94 E"},
		{Location{-33.8688, 151.2093}, "33.87 S, 151.21 E"},
		{Location{40.71, -74.01}, "40.71 N, 74.01 W"},
		{Location{-54.80, -68.30}, "54.80 S, 68.30 W"},
	}

	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestStaticProvider(t *testing.T) {
	want := Location{Lat: 60.1695, Lon: 24.9354}
	got, err := Static{Loc: want}.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
