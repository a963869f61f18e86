package window

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeBackend struct {
	mu     sync.Mutex
	calls  int
	listFn func(call int) ([]Window, error)
}

func (f *fakeBackend) ActiveWindow() (Window, error) {
	return Window{}, ErrNoActiveWindow
}

func (f *fakeBackend) ListWindows() ([]Window, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.listFn(call)
}

func TestMatchTitle(t *testing.T) {
	windows := []Window{
		{Title: "Terminal", Width: 800, Height: 600},
		{Title: "Hidden Game", Width: 0, Height: 0},
		{Title: "My GAME - Level 2", Width: 1280, Height: 720},
	}

	tests := []struct {
		name   string
		substr string
		want   string
		found  bool
	}{
		{"case insensitive", "game", "My GAME - Level 2", true},
		{"exact prefix", "Term", "Terminal", true},
		{"no match", "browser", "", false},
		{"blank needle", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchTitle(windows, tt.substr)
			if ok != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, ok)
			}
			if got.Title != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got.Title)
			}
		})
	}
}

func TestWaitForTitleFindsAfterRetries(t *testing.T) {
	b := &fakeBackend{listFn: func(call int) ([]Window, error) {
		switch call {
		case 1:
			return nil, errors.New("transient")
		case 2:
			return []Window{{Title: "loading"}}, nil
		default:
			return []Window{{Title: "Target App", Width: 10, Height: 10}}, nil
		}
	}}

	w, err := WaitForTitle(context.Background(), b, "target", time.Second, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForTitle failed: %v", err)
	}
	if w.Title != "Target App" {
		t.Errorf("Unexpected window %+v", w)
	}
	if b.calls < 3 {
		t.Errorf("Expected at least 3 polls, got %d", b.calls)
	}
}

func TestWaitForTitleTimesOut(t *testing.T) {
	b := &fakeBackend{listFn: func(int) ([]Window, error) {
		return []Window{{Title: "other", Width: 1, Height: 1}}, nil
	}}

	start := time.Now()
	_, err := WaitForTitle(context.Background(), b, "missing", 50*time.Millisecond, 10*time.Millisecond)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Timeout took too long: %v", time.Since(start))
	}
}

func TestWaitForTitleCancelled(t *testing.T) {
	b := &fakeBackend{listFn: func(int) ([]Window, error) { return nil, nil }}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitForTitle(ctx, b, "x", time.Minute, time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend()
	if err != nil {
		t.Logf("No window backend (expected in headless environment): %v", err)
		return
	}
	if _, err := b.ActiveWindow(); err != nil {
		t.Logf("ActiveWindow failed (expected without a window manager): %v", err)
	}
}
