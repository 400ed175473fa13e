// Package config assembles the daemon configuration with the hierarchy
// defaults → config file → environment → flags.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hkava/sunshift/internal/location"
	"github.com/hkava/sunshift/internal/transition"
)

// Config holds the configuration for the sunshift daemon.
type Config struct {
	// Service configuration
	ServiceName string `yaml:"-"`
	LogLevel    string `yaml:"log_level"`

	// Location configuration. Location ("LAT:LON") overrides the separate
	// latitude/longitude values when set.
	Latitude         float64 `yaml:"latitude"`
	Longitude        float64 `yaml:"longitude"`
	Location         string  `yaml:"location"`
	LocationProvider string  `yaml:"location_provider"` // manual or geoclue2
	LocationTimeout  int     `yaml:"location_timeout_sec"`

	// Transition scheme configuration
	ElevationHigh   float64 `yaml:"elevation_high"`
	ElevationLow    float64 `yaml:"elevation_low"`
	DayTemp         int     `yaml:"day_temp"`
	NightTemp       int     `yaml:"night_temp"`
	DayBrightness   float64 `yaml:"day_brightness"`
	NightBrightness float64 `yaml:"night_brightness"`
	DayGamma        string  `yaml:"day_gamma"`   // "G" or "R:G:B"
	NightGamma      string  `yaml:"night_gamma"` // "G" or "R:G:B"

	// Adjustment configuration
	Backend     string `yaml:"backend"` // randr, dummy or auto
	FadeStart   bool   `yaml:"fade_start"`
	TickShortMs int    `yaml:"tick_short_ms"`
	TickLongSec int    `yaml:"tick_long_sec"`

	// MQTT telemetry configuration (optional)
	MQTTEnabled  bool   `yaml:"mqtt_enabled"`
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTPort     int    `yaml:"mqtt_port"`
	MQTTUser     string `yaml:"mqtt_user"`
	MQTTPassword string `yaml:"mqtt_password"`
	MQTTClientID string `yaml:"mqtt_client_id"`
	MQTTTopic    string `yaml:"mqtt_topic"`

	// Runtime modes (flags only)
	Print      bool   `yaml:"-"`
	ConfigFile string `yaml:"-"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServiceName: "sunshift",
		LogLevel:    "info",
		// Helsinki coordinates
		Latitude:         60.1695,
		Longitude:        24.9354,
		LocationProvider: "manual",
		LocationTimeout:  15,
		ElevationHigh:    3.0,
		ElevationLow:     -6.0,
		DayTemp:          transition.DefaultDayTemp,
		NightTemp:        transition.DefaultNightTemp,
		DayBrightness:    transition.DefaultBrightness,
		NightBrightness:  transition.DefaultBrightness,
		DayGamma:         "1.0",
		NightGamma:       "1.0",
		Backend:          "auto",
		FadeStart:        false,
		TickShortMs:      100,
		TickLongSec:      5,
		MQTTEnabled:      false,
		MQTTBroker:       "localhost",
		MQTTPort:         1883,
		MQTTTopic:        "sunshift/state",
	}
}

// LoadFromFile overlays values from a YAML config file. A missing file is
// only an error when the path was given explicitly.
func (c *Config) LoadFromFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables with the
// SUNSHIFT_ prefix.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("SUNSHIFT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SUNSHIFT_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("SUNSHIFT_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}
	if v := os.Getenv("SUNSHIFT_LOCATION"); v != "" {
		c.Location = v
	}
	if v := os.Getenv("SUNSHIFT_LOCATION_PROVIDER"); v != "" {
		c.LocationProvider = v
	}
	if v := os.Getenv("SUNSHIFT_DAY_TEMP"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.DayTemp = temp
		}
	}
	if v := os.Getenv("SUNSHIFT_NIGHT_TEMP"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.NightTemp = temp
		}
	}
	if v := os.Getenv("SUNSHIFT_DAY_BRIGHTNESS"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil {
			c.DayBrightness = b
		}
	}
	if v := os.Getenv("SUNSHIFT_NIGHT_BRIGHTNESS"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil {
			c.NightBrightness = b
		}
	}
	if v := os.Getenv("SUNSHIFT_DAY_GAMMA"); v != "" {
		c.DayGamma = v
	}
	if v := os.Getenv("SUNSHIFT_NIGHT_GAMMA"); v != "" {
		c.NightGamma = v
	}
	if v := os.Getenv("SUNSHIFT_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("SUNSHIFT_FADE_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.FadeStart = b
		}
	}
	if v := os.Getenv("SUNSHIFT_MQTT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.MQTTEnabled = b
		}
	}
	if v := os.Getenv("SUNSHIFT_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("SUNSHIFT_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("SUNSHIFT_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("SUNSHIFT_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("SUNSHIFT_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}
	if v := os.Getenv("SUNSHIFT_MQTT_TOPIC"); v != "" {
		c.MQTTTopic = v
	}
}

// RegisterFlags declares command-line flags bound to the config values.
// pflag.Parse must be called separately so the file layer can run first.
func (c *Config) RegisterFlags() {
	pflag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Path to YAML config file")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	pflag.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude in degrees")
	pflag.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude in degrees")
	pflag.StringVarP(&c.Location, "location", "l", c.Location, "Location as LAT:LON, overrides latitude/longitude")
	pflag.StringVar(&c.LocationProvider, "location-provider", c.LocationProvider, "Location provider (manual, geoclue2)")
	pflag.IntVar(&c.LocationTimeout, "location-timeout", c.LocationTimeout, "Location lookup timeout in seconds")

	pflag.Float64Var(&c.ElevationHigh, "elevation-high", c.ElevationHigh, "Solar elevation where full day color applies (degrees)")
	pflag.Float64Var(&c.ElevationLow, "elevation-low", c.ElevationLow, "Solar elevation where full night color applies (degrees)")
	pflag.IntVar(&c.DayTemp, "day-temp", c.DayTemp, "Daytime color temperature (Kelvin)")
	pflag.IntVar(&c.NightTemp, "night-temp", c.NightTemp, "Nighttime color temperature (Kelvin)")
	pflag.Float64Var(&c.DayBrightness, "day-brightness", c.DayBrightness, "Daytime brightness")
	pflag.Float64Var(&c.NightBrightness, "night-brightness", c.NightBrightness, "Nighttime brightness")
	pflag.StringVar(&c.DayGamma, "day-gamma", c.DayGamma, "Daytime gamma (G or R:G:B)")
	pflag.StringVar(&c.NightGamma, "night-gamma", c.NightGamma, "Nighttime gamma (G or R:G:B)")

	pflag.StringVar(&c.Backend, "backend", c.Backend, "Gamma backend (randr, dummy, auto)")
	pflag.BoolVar(&c.FadeStart, "fade-start", c.FadeStart, "Fade in from neutral at startup")
	pflag.IntVar(&c.TickShortMs, "tick-short-ms", c.TickShortMs, "Tick interval during fades (milliseconds)")
	pflag.IntVar(&c.TickLongSec, "tick-long-sec", c.TickLongSec, "Tick interval during normal operation (seconds)")

	pflag.BoolVar(&c.MQTTEnabled, "mqtt-enabled", c.MQTTEnabled, "Publish state changes over MQTT")
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")
	pflag.StringVar(&c.MQTTTopic, "mqtt-topic", c.MQTTTopic, "MQTT state topic")

	pflag.BoolVarP(&c.Print, "print", "p", c.Print, "Print the current solar state and exit")
}

// Validate checks that the configuration values are in range.
func (c *Config) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if c.Location != "" {
		if _, err := location.Parse(c.Location); err != nil {
			return err
		}
	}
	if !(c.ElevationHigh > c.ElevationLow) {
		return fmt.Errorf("elevation-high (%v) must be greater than elevation-low (%v)",
			c.ElevationHigh, c.ElevationLow)
	}
	for name, temp := range map[string]int{"day-temp": c.DayTemp, "night-temp": c.NightTemp} {
		if temp < 1000 || temp > 25000 {
			return fmt.Errorf("%s must be between 1000K and 25000K", name)
		}
	}
	for name, b := range map[string]float64{"day-brightness": c.DayBrightness, "night-brightness": c.NightBrightness} {
		if !(b > 0) {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	for name, g := range map[string]string{"day-gamma": c.DayGamma, "night-gamma": c.NightGamma} {
		if _, err := ParseGamma(g); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	switch c.Backend {
	case "randr", "dummy", "auto":
	default:
		return fmt.Errorf("invalid backend: %s (must be randr, dummy, or auto)", c.Backend)
	}
	switch c.LocationProvider {
	case "manual", "geoclue2":
	default:
		return fmt.Errorf("invalid location provider: %s (must be manual or geoclue2)", c.LocationProvider)
	}
	if c.TickShortMs <= 0 || c.TickLongSec <= 0 {
		return fmt.Errorf("tick intervals must be positive")
	}
	if c.MQTTEnabled {
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT broker is required when telemetry is enabled")
		}
		if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
			return fmt.Errorf("MQTT port must be between 1 and 65535")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// ParseGamma parses a gamma string, either a single value applied to all
// channels ("0.9") or a per-channel triple ("0.9:0.8:1.0"). Each value must
// be within [0.1, 10.0].
func ParseGamma(s string) ([3]float64, error) {
	var g [3]float64

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return g, fmt.Errorf("malformed gamma %q", s)
		}
		g = [3]float64{v, v, v}
	case 3:
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return g, fmt.Errorf("malformed gamma %q (of %q)", p, s)
			}
			g[i] = v
		}
	default:
		return g, fmt.Errorf("malformed gamma %q (want G or R:G:B)", s)
	}

	for _, v := range g {
		if v < 0.1 || v > 10.0 {
			return g, fmt.Errorf("gamma value %v out of range [0.1, 10.0]", v)
		}
	}
	return g, nil
}

// Schemes builds the fully populated day and night color settings. Assembly
// starts from the sentinel setting and fills every field that remains unset,
// so the control loop only ever sees complete values.
func (c *Config) Schemes() (day, night transition.ColorSetting, err error) {
	dayGamma, err := ParseGamma(c.DayGamma)
	if err != nil {
		return day, night, err
	}
	nightGamma, err := ParseGamma(c.NightGamma)
	if err != nil {
		return day, night, err
	}

	day = transition.Sentinel()
	day.Temp = c.DayTemp
	day.Brightness = c.DayBrightness
	day.Gamma = dayGamma

	night = transition.Sentinel()
	night.Temp = c.NightTemp
	night.Brightness = c.NightBrightness
	night.Gamma = nightGamma

	for _, s := range []*transition.ColorSetting{&day, &night} {
		if s.Temp < 0 {
			s.Temp = transition.NeutralTemp
		}
		if math.IsNaN(s.Brightness) {
			s.Brightness = transition.DefaultBrightness
		}
		for i := range s.Gamma {
			if math.IsNaN(s.Gamma[i]) {
				s.Gamma[i] = transition.DefaultGamma
			}
		}
	}
	return day, night, nil
}

// MQTTAddress returns the full MQTT broker address.
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}
