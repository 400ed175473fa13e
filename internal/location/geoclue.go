package location

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	geoclueService = "org.freedesktop.GeoClue2"
	geoclueManager = "/org/freedesktop/GeoClue2/Manager"
	clientIface    = "org.freedesktop.GeoClue2.Client"
	locationIface  = "org.freedesktop.GeoClue2.Location"
)

// GeoClue resolves the location from the GeoClue2 service on the system bus.
// The lookup is one-shot: the client is started, the first LocationUpdated
// signal wins, and the client is stopped again.
type GeoClue struct {
	DesktopID string
	Logger    *slog.Logger
}

func (g GeoClue) Get(ctx context.Context) (Location, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return Location{}, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	manager := conn.Object(geoclueService, geoclueManager)

	var clientPath dbus.ObjectPath
	if err := manager.CallWithContext(ctx, geoclueService+".Manager.GetClient", 0).Store(&clientPath); err != nil {
		return Location{}, fmt.Errorf("failed to obtain GeoClue2 client: %w", err)
	}

	client := conn.Object(geoclueService, clientPath)
	if err := client.SetProperty(clientIface+".DesktopId", dbus.MakeVariant(g.DesktopID)); err != nil {
		return Location{}, fmt.Errorf("failed to set desktop id: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(clientIface),
		dbus.WithMatchMember("LocationUpdated"),
	); err != nil {
		return Location{}, fmt.Errorf("failed to subscribe to location updates: %w", err)
	}

	signals := make(chan *dbus.Signal, 1)
	conn.Signal(signals)

	if err := client.CallWithContext(ctx, clientIface+".Start", 0).Err; err != nil {
		return Location{}, fmt.Errorf("failed to start GeoClue2 client: %w", err)
	}
	defer client.Call(clientIface+".Stop", 0)

	g.Logger.Debug("Waiting for GeoClue2 location fix", "client", clientPath)

	for {
		select {
		case sig := <-signals:
			if sig.Name != clientIface+".LocationUpdated" || len(sig.Body) != 2 {
				continue
			}
			newPath, ok := sig.Body[1].(dbus.ObjectPath)
			if !ok {
				continue
			}
			return g.read(conn, newPath)
		case <-ctx.Done():
			return Location{}, fmt.Errorf("location fix timed out: %w", ctx.Err())
		}
	}
}

func (g GeoClue) read(conn *dbus.Conn, path dbus.ObjectPath) (Location, error) {
	obj := conn.Object(geoclueService, path)

	lat, err := obj.GetProperty(locationIface + ".Latitude")
	if err != nil {
		return Location{}, fmt.Errorf("failed to read latitude: %w", err)
	}
	lon, err := obj.GetProperty(locationIface + ".Longitude")
	if err != nil {
		return Location{}, fmt.Errorf("failed to read longitude: %w", err)
	}

	latV, ok := lat.Value().(float64)
	if !ok {
		return Location{}, fmt.Errorf("unexpected latitude type %T", lat.Value())
	}
	lonV, ok := lon.Value().(float64)
	if !ok {
		return Location{}, fmt.Errorf("unexpected longitude type %T", lon.Value())
	}

	loc, err := New(latV, lonV)
	if err != nil {
		return Location{}, fmt.Errorf("GeoClue2 returned invalid coordinates: %w", err)
	}

	g.Logger.Info("Resolved location from GeoClue2", "location", loc.String())
	return loc, nil
}
