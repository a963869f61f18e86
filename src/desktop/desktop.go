package desktop

import (
	"fmt"
	"image"
	"io"
	"log"

	"roi-snapshot/src/screenshot"
	"roi-snapshot/src/window"
)

// Desktop is the set of platform capabilities one capture needs.
type Desktop interface {
	ActiveWindow() (window.Window, error)
	ListWindows() ([]window.Window, error)
	CaptureRegion(screenshot.Region) (*image.RGBA, error)
	MonitorResolution() (int, int, error)
}

// System is the Desktop backed by the platform window backend and the screen.
type System struct {
	backend    window.Backend
	backendErr error
}

// New opens the platform window backend. A backend failure is not fatal here;
// it surfaces on every window lookup so the process can still report it per
// capture.
func New() *System {
	b, err := window.NewBackend()
	if err != nil {
		log.Printf("desktop: window backend unavailable: %v", err)
	}
	return &System{backend: b, backendErr: err}
}

func (s *System) ActiveWindow() (window.Window, error) {
	if s.backend == nil {
		return window.Window{}, fmt.Errorf("%w: %v", window.ErrNoActiveWindow, s.backendErr)
	}
	return s.backend.ActiveWindow()
}

func (s *System) ListWindows() ([]window.Window, error) {
	if s.backend == nil {
		return nil, s.backendErr
	}
	return s.backend.ListWindows()
}

func (s *System) CaptureRegion(r screenshot.Region) (*image.RGBA, error) {
	return screenshot.CaptureRegion(r)
}

func (s *System) MonitorResolution() (int, int, error) {
	return screenshot.MonitorResolution()
}

// Close releases the window backend connection if it holds one.
func (s *System) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
