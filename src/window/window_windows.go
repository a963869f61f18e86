//go:build windows

package window

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

type win32Backend struct{}

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")

	enumMu      sync.Mutex
	enumHandles []windows.HWND
	// A single callback; NewCallback slots are never released.
	enumCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		enumHandles = append(enumHandles, hwnd)
		return 1
	})
)

// NewBackend returns the Win32 window backend.
func NewBackend() (Backend, error) {
	return win32Backend{}, nil
}

func (win32Backend) ActiveWindow() (Window, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return Window{}, ErrNoActiveWindow
	}
	w, err := inspect(hwnd)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrNoActiveWindow, err)
	}
	return w, nil
}

func (win32Backend) ListWindows() ([]Window, error) {
	enumMu.Lock()
	enumHandles = enumHandles[:0]
	err := windows.EnumWindows(enumCallback, unsafe.Pointer(nil))
	handles := append([]windows.HWND(nil), enumHandles...)
	enumMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}

	out := make([]Window, 0, len(handles))
	for _, hwnd := range handles {
		if !windows.IsWindowVisible(hwnd) {
			continue
		}
		w, err := inspect(hwnd)
		if err != nil {
			continue
		}
		if w.Title == "" {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func inspect(hwnd windows.HWND) (Window, error) {
	var rect win.RECT
	if !win.GetWindowRect(win.HWND(hwnd), &rect) {
		return Window{}, fmt.Errorf("GetWindowRect failed for 0x%x", hwnd)
	}
	return Window{
		ID:     uint64(hwnd),
		Title:  windowText(hwnd),
		Left:   int(rect.Left),
		Top:    int(rect.Top),
		Width:  int(rect.Right - rect.Left),
		Height: int(rect.Bottom - rect.Top),
	}, nil
}

func windowText(hwnd windows.HWND) string {
	length, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
