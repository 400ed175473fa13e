package gamma

import (
	"log/slog"
	"os"
	"testing"

	"github.com/hkava/sunshift/internal/transition"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDummyBackendLifecycle(t *testing.T) {
	d := NewDummy(testLogger())

	if err := d.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	setting := transition.ColorSetting{Temp: 4200, Gamma: [3]float64{1, 1, 1}, Brightness: 0.9}
	if err := d.SetTemperature(setting); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Applied() != 1 {
		t.Errorf("expected one apply, got %d", d.Applied())
	}
	if d.Last() != setting {
		t.Errorf("expected last setting %+v, got %+v", setting, d.Last())
	}

	if err := d.Restore(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Restore(); err != nil {
		t.Fatalf("restore should be idempotent: %v", err)
	}
	if d.Restored() != 2 {
		t.Errorf("expected two restore calls recorded, got %d", d.Restored())
	}
}

func TestOpenDummy(t *testing.T) {
	b, err := Open("dummy", testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := b.(*Dummy); !ok {
		t.Errorf("expected dummy backend, got %T", b)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("wayland", testLogger()); err == nil {
		t.Error("expected error for unknown backend name")
	}
}

func TestOpenAutoFallsBackWithoutDisplay(t *testing.T) {
	// In a headless test environment the RandR start fails and auto
	// selection must hand back the dummy.
	if os.Getenv("DISPLAY") != "" {
		t.Skip("X display present")
	}
	b, err := Open("auto", testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := b.(*Dummy); !ok {
		t.Errorf("expected fallback to dummy backend, got %T", b)
	}
}

func TestBackendErrorMessage(t *testing.T) {
	err := &BackendError{Backend: "randr", Op: "query version", Err: os.ErrClosed}
	want := "randr backend: query version: file already closed"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if err.Unwrap() != os.ErrClosed {
		t.Error("Unwrap should return the underlying error")
	}
}
