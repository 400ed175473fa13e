package gamma

import (
	"fmt"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/hkava/sunshift/internal/colorramp"
	"github.com/hkava/sunshift/internal/transition"
)

// Minimum RandR protocol version carrying per-CRTC gamma requests.
const (
	randrMajorVersion = 1
	randrMinorVersion = 3
)

// crtc is one output controller with its originally captured ramps. The
// saved ramps are read-only after Start; Restore writes them back verbatim.
type crtc struct {
	id       randr.Crtc
	rampSize int
	saved    [3][]uint16
}

// Randr adjusts gamma ramps through the X RandR extension.
type Randr struct {
	logger *slog.Logger
	conn   *xgb.Conn
	root   xproto.Window
	crtcs  []crtc
}

// NewRandr creates an unstarted RandR backend.
func NewRandr(logger *slog.Logger) *Randr {
	return &Randr{logger: logger}
}

// Start connects to the X server, validates the RandR version and captures
// the current gamma ramps of every CRTC.
func (r *Randr) Start() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return &BackendError{Backend: "randr", Op: "connect", Err: err}
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return &BackendError{Backend: "randr", Op: "init extension", Err: err}
	}

	ver, err := randr.QueryVersion(conn, randrMajorVersion, randrMinorVersion).Reply()
	if err != nil {
		conn.Close()
		return &BackendError{Backend: "randr", Op: "query version", Err: err}
	}
	if ver.MajorVersion < randrMajorVersion ||
		(ver.MajorVersion == randrMajorVersion && ver.MinorVersion < randrMinorVersion) {
		conn.Close()
		return &BackendError{
			Backend: "randr",
			Op:      "query version",
			Err: fmt.Errorf("RandR %d.%d unsupported, need at least %d.%d",
				ver.MajorVersion, ver.MinorVersion, randrMajorVersion, randrMinorVersion),
		}
	}

	r.conn = conn
	r.root = xproto.Setup(conn).DefaultScreen(conn).Root

	if err := r.captureCrtcs(); err != nil {
		conn.Close()
		return err
	}

	r.logger.Info("RandR backend started",
		"randr_version", fmt.Sprintf("%d.%d", ver.MajorVersion, ver.MinorVersion),
		"crtc_count", len(r.crtcs))
	return nil
}

// captureCrtcs saves the size and gamma ramps of every CRTC on the screen.
func (r *Randr) captureCrtcs() error {
	res, err := randr.GetScreenResourcesCurrent(r.conn, r.root).Reply()
	if err != nil {
		return &BackendError{Backend: "randr", Op: "get screen resources", Err: err}
	}

	r.crtcs = make([]crtc, 0, len(res.Crtcs))
	for _, id := range res.Crtcs {
		g, err := randr.GetCrtcGamma(r.conn, id).Reply()
		if err != nil {
			return &BackendError{
				Backend: "randr",
				Op:      fmt.Sprintf("get gamma of crtc %d", id),
				Err:     err,
			}
		}

		c := crtc{id: id, rampSize: int(g.Size)}
		if g.Size == 0 {
			// Nothing readable; synthesize a linear base so the
			// output can still be tinted and restored.
			c.rampSize = 256
			for ch := 0; ch < 3; ch++ {
				c.saved[ch] = colorramp.Linear(c.rampSize)
			}
		} else {
			c.saved[0] = append([]uint16(nil), g.Red...)
			c.saved[1] = append([]uint16(nil), g.Green...)
			c.saved[2] = append([]uint16(nil), g.Blue...)
		}
		r.crtcs = append(r.crtcs, c)
	}
	return nil
}

// SetTemperature writes a derived ramp to every CRTC.
func (r *Randr) SetTemperature(setting transition.ColorSetting) error {
	for i := range r.crtcs {
		if err := r.setCrtc(&r.crtcs[i], setting); err != nil {
			return err
		}
	}
	return nil
}

func (r *Randr) setCrtc(c *crtc, setting transition.ColorSetting) error {
	red := append([]uint16(nil), c.saved[0]...)
	green := append([]uint16(nil), c.saved[1]...)
	blue := append([]uint16(nil), c.saved[2]...)

	colorramp.Fill(red, green, blue, setting)

	err := randr.SetCrtcGammaChecked(r.conn, c.id, uint16(c.rampSize), red, green, blue).Check()
	if err != nil {
		return &BackendError{
			Backend: "randr",
			Op:      fmt.Sprintf("set gamma of crtc %d", c.id),
			Err:     err,
		}
	}
	return nil
}

// Restore writes the originally captured ramps back to every CRTC.
func (r *Randr) Restore() error {
	for i := range r.crtcs {
		c := &r.crtcs[i]
		err := randr.SetCrtcGammaChecked(r.conn, c.id, uint16(c.rampSize),
			c.saved[0], c.saved[1], c.saved[2]).Check()
		if err != nil {
			return &BackendError{
				Backend: "randr",
				Op:      fmt.Sprintf("restore gamma of crtc %d", c.id),
				Err:     err,
			}
		}
	}
	return nil
}
