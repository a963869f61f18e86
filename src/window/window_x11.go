//go:build linux

package window

import (
	"fmt"
	"log"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Backend reads EWMH properties set by the window manager.
type x11Backend struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewBackend connects to the X server named by $DISPLAY.
func NewBackend() (Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &x11Backend{conn: conn, root: root, atoms: make(map[string]xproto.Atom)}, nil
}

func (b *x11Backend) Close() error {
	b.conn.Close()
	return nil
}

func (b *x11Backend) ActiveWindow() (Window, error) {
	ids, err := b.windowList("_NET_ACTIVE_WINDOW")
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrNoActiveWindow, err)
	}
	if len(ids) == 0 || ids[0] == 0 {
		return Window{}, ErrNoActiveWindow
	}
	w, err := b.inspect(ids[0])
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrNoActiveWindow, err)
	}
	return w, nil
}

func (b *x11Backend) ListWindows() ([]Window, error) {
	ids, err := b.windowList("_NET_CLIENT_LIST")
	if err != nil {
		return nil, err
	}
	windows := make([]Window, 0, len(ids))
	for _, id := range ids {
		w, err := b.inspect(id)
		if err != nil {
			// Windows can close between listing and inspection.
			log.Printf("window: skipping 0x%x: %v", id, err)
			continue
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func (b *x11Backend) inspect(id xproto.Window) (Window, error) {
	geom, err := xproto.GetGeometry(b.conn, xproto.Drawable(id)).Reply()
	if err != nil {
		return Window{}, fmt.Errorf("geometry: %w", err)
	}
	pos, err := xproto.TranslateCoordinates(b.conn, id, b.root, 0, 0).Reply()
	if err != nil {
		return Window{}, fmt.Errorf("translate coordinates: %w", err)
	}
	return Window{
		ID:     uint64(id),
		Title:  b.title(id),
		Left:   int(pos.DstX),
		Top:    int(pos.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (b *x11Backend) title(id xproto.Window) string {
	for _, name := range []string{"_NET_WM_NAME", "WM_NAME"} {
		reply, err := b.property(id, name)
		if err != nil || reply == nil || len(reply.Value) == 0 {
			continue
		}
		return string(reply.Value)
	}
	return ""
}

// windowList reads a root-window property holding 32-bit window ids.
func (b *x11Backend) windowList(name string) ([]xproto.Window, error) {
	reply, err := b.property(b.root, name)
	if err != nil {
		return nil, err
	}
	if reply.Format != 32 {
		return nil, fmt.Errorf("%s: unexpected format %d", name, reply.Format)
	}
	ids := make([]xproto.Window, 0, reply.ValueLen)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		ids = append(ids, xproto.Window(xgb.Get32(reply.Value[i:])))
	}
	return ids, nil
}

func (b *x11Backend) property(id xproto.Window, name string) (*xproto.GetPropertyReply, error) {
	atom, err := b.atom(name)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(b.conn, false, id, atom, xproto.GetPropertyTypeAny, 0, 1<<16).Reply()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return reply, nil
}

func (b *x11Backend) atom(name string) (xproto.Atom, error) {
	if a, ok := b.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(b.conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	if reply.Atom == xproto.AtomNone {
		return 0, fmt.Errorf("atom %s not supported by window manager", name)
	}
	b.atoms[name] = reply.Atom
	return reply.Atom, nil
}
