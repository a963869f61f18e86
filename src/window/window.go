package window

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

var (
	// ErrNoActiveWindow is returned when the focused window cannot be determined.
	ErrNoActiveWindow = errors.New("no active window detected")
	// ErrNotFound is returned when no window title matched before the wait expired.
	ErrNotFound = errors.New("no window matching title")
	// ErrUnsupported is returned by NewBackend on platforms without a backend.
	ErrUnsupported = errors.New("window lookup not supported on this platform")
)

const (
	DefaultWaitTimeout  = 60 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Window is a top-level application window in absolute screen pixels.
type Window struct {
	ID     uint64
	Title  string
	Left   int
	Top    int
	Width  int
	Height int
}

// HasArea reports whether the window can be captured and normalized against.
func (w Window) HasArea() bool {
	return w.Width > 0 && w.Height > 0
}

// Backend is the platform window-management collaborator.
type Backend interface {
	ActiveWindow() (Window, error)
	ListWindows() ([]Window, error)
}

// MatchTitle returns the first window with area whose title contains substr,
// compared case-insensitively.
func MatchTitle(windows []Window, substr string) (Window, bool) {
	needle := strings.ToLower(strings.TrimSpace(substr))
	if needle == "" {
		return Window{}, false
	}
	for _, w := range windows {
		if !w.HasArea() {
			continue
		}
		if strings.Contains(strings.ToLower(w.Title), needle) {
			return w, true
		}
	}
	return Window{}, false
}

// WaitForTitle polls b every interval until a window title contains substr or
// timeout elapses. Listing failures are logged and retried on the next tick.
func WaitForTitle(ctx context.Context, b Backend, substr string, timeout, interval time.Duration) (Window, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		windows, err := b.ListWindows()
		if err != nil {
			log.Printf("window: listing failed, retrying: %v", err)
		} else if w, ok := MatchTitle(windows, substr); ok {
			return w, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return Window{}, ErrNotFound
			}
			return Window{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
