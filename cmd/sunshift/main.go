package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sixdouglas/suncalc"
	"github.com/spf13/pflag"

	"github.com/hkava/sunshift/internal/gamma"
	"github.com/hkava/sunshift/internal/location"
	"github.com/hkava/sunshift/internal/loop"
	"github.com/hkava/sunshift/internal/solar"
	"github.com/hkava/sunshift/internal/telemetry"
	"github.com/hkava/sunshift/internal/transition"
	"github.com/hkava/sunshift/pkg/config"
	"github.com/hkava/sunshift/pkg/mqtt"
)

func main() {
	// Load configuration with hierarchy: defaults → file → env → flags
	cfg := config.NewConfig()

	path, explicit := configPath()
	if path != "" {
		if err := cfg.LoadFromFile(path, explicit); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.LoadFromEnv()
	cfg.RegisterFlags()
	pflag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	loc, err := resolveLocation(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Location error: %v\n", err)
		os.Exit(1)
	}

	day, night, err := cfg.Schemes()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	scheme, err := transition.NewScheme(cfg.ElevationHigh, cfg.ElevationLow, day, night)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Print {
		printStatus(loc, scheme)
		return
	}

	logger.Info("Starting sunshift",
		"location", loc.String(),
		"day_temp_k", day.Temp,
		"night_temp_k", night.Temp,
		"backend", cfg.Backend)

	backend, err := gamma.Open(cfg.Backend, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backend error: %v\n", err)
		os.Exit(1)
	}

	if cfg.FadeStart {
		scheme.ArmStartFade()
	}

	loopCfg := loop.Config{
		TickShort: time.Duration(cfg.TickShortMs) * time.Millisecond,
		TickLong:  time.Duration(cfg.TickLongSec) * time.Second,
	}

	if cfg.MQTTEnabled {
		client := mqtt.NewClient(cfg, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := client.Connect(ctx); err != nil {
			logger.Warn("MQTT connect failed, telemetry degraded until reconnect", "error", err)
		}
		cancel()
		defer client.Disconnect()

		publisher := telemetry.NewPublisher(client, cfg.MQTTTopic, logger)
		loopCfg.OnChange = publisher.OnChange
	}

	// Coalesced termination signals drive the shutdown fade; a second
	// signal forces an immediate exit.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	l := loop.New(scheme, backend, loc, loopCfg, logger)
	if err := l.Run(sigChan); err != nil {
		logger.Error("Fatal error", "error", err)
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}

// configPath returns the config file path from --config, or the default
// per-user path. The bool reports whether the path was given explicitly.
func configPath() (string, bool) {
	args := os.Args[1:]
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1], true
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):], true
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "sunshift", "config.yaml"), false
}

// resolveLocation picks the configured coordinates or asks GeoClue2 once,
// falling back to the configured coordinates if the lookup fails.
func resolveLocation(cfg *config.Config, logger *slog.Logger) (location.Location, error) {
	var manual location.Location
	var err error
	if cfg.Location != "" {
		manual, err = location.Parse(cfg.Location)
	} else {
		manual, err = location.New(cfg.Latitude, cfg.Longitude)
	}
	if err != nil {
		return location.Location{}, err
	}
	if cfg.LocationProvider != "geoclue2" {
		return manual, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.LocationTimeout)*time.Second)
	defer cancel()

	loc, err := location.GeoClue{DesktopID: cfg.ServiceName, Logger: logger}.Get(ctx)
	if err != nil {
		logger.Warn("GeoClue2 lookup failed, using configured coordinates", "error", err)
		return manual, nil
	}
	return loc, nil
}

// printStatus reports the current solar state and the day's key times
// without touching the display.
func printStatus(loc location.Location, scheme *transition.Scheme) {
	now := time.Now()
	elev := solar.Elevation(float64(now.UnixNano())/float64(time.Second), loc)
	setting := scheme.Interpolate(elev)

	fmt.Printf("Location: %s\n", loc.String())
	fmt.Printf("Solar elevation: %.2f°\n", elev)
	fmt.Printf("Period: %s\n", scheme.Period(elev).String())
	fmt.Printf("Color temperature: %dK\n", setting.Temp)
	fmt.Printf("Brightness: %.2f\n", setting.Brightness)

	times := suncalc.GetTimes(now, loc.Lat, loc.Lon)
	for _, name := range []suncalc.DayTimeName{
		suncalc.Dawn, suncalc.Sunrise, suncalc.SolarNoon, suncalc.Sunset, suncalc.Dusk,
	} {
		if t, ok := times[name]; ok {
			fmt.Printf("%s: %s\n", name, t.Value.Local().Format("15:04"))
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
