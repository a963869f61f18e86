package eventloop

import (
	"context"
	"errors"
	"log"
	"time"

	"roi-snapshot/src/config"
	"roi-snapshot/src/hotkey"
	"roi-snapshot/src/session"
	"roi-snapshot/src/singleinstance"
)

// ExitKey ends continuous mode.
const ExitKey = "esc"

// ErrListenerStopped is returned when the key event source closes.
var ErrListenerStopped = errors.New("hotkey listener stopped")

// CaptureFunc runs one capture session.
type CaptureFunc func(ctx context.Context) (session.Result, error)

// Loop is the single-threaded coordinator for hotkey and remote capture
// triggers. Captures run one at a time on the goroutine that calls Run.
type Loop struct {
	capture    CaptureFunc
	captureKey string
	continuous bool
	cooldown   time.Duration
	now        func() time.Time

	// lastDone is when the previous capture finished; zero before the first.
	lastDone time.Time
}

// New creates a loop with the key and mode settings from cfg.
func New(cfg config.Config, capture CaptureFunc) *Loop {
	cooldown := cfg.CaptureCooldown
	if cooldown < 0 {
		cooldown = 0
	}
	key := hotkey.Normalize(cfg.CaptureKey)
	if key == "" {
		key = config.DefaultCaptureKey
	}
	return &Loop{
		capture:    capture,
		captureKey: key,
		continuous: cfg.Continuous,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// CaptureKey returns the normalized capture key name.
func (l *Loop) CaptureKey() string { return l.captureKey }

// Continuous reports whether the loop keeps running after a capture.
func (l *Loop) Continuous() bool { return l.continuous }

// Run processes key events and remote requests until the exit key (continuous
// mode), the first successful capture (single-run mode) or ctx cancellation.
// In single-run mode a missing target window or a failed write ends the loop
// with that error; cancelled selections never do.
func (l *Loop) Run(ctx context.Context, keys <-chan hotkey.Event, remote <-chan singleinstance.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-keys:
			if !ok {
				return ErrListenerStopped
			}
			done, err := l.handleKey(ctx, ev)
			if done {
				return err
			}

		case conn, ok := <-remote:
			if !ok {
				remote = nil
				continue
			}
			done, err := l.handleRemote(ctx, conn)
			if done {
				return err
			}
		}
	}
}

func (l *Loop) handleKey(ctx context.Context, ev hotkey.Event) (bool, error) {
	// Keys pressed while a capture was running were aimed at the picker.
	if !l.lastDone.IsZero() && ev.At.Before(l.lastDone) {
		log.Printf("handleKey: ignoring %s pressed during capture", ev.Key)
		return false, nil
	}

	switch ev.Key {
	case ExitKey:
		if !l.continuous {
			return false, nil
		}
		log.Printf("handleKey: exit key pressed")
		return true, nil
	case l.captureKey:
		if l.coolingDown(ev.At) {
			log.Printf("handleKey: capture key within cooldown, skipping")
			return false, nil
		}
		return l.runCapture(ctx)
	default:
		return false, nil
	}
}

func (l *Loop) handleRemote(ctx context.Context, conn singleinstance.Conn) (bool, error) {
	defer conn.Close()
	log.Printf("handleRemote: capture requested by another instance")

	res, err := l.capture(ctx)
	l.lastDone = l.now()
	if err != nil {
		_ = conn.RespondError(err.Error())
	} else {
		_ = conn.RespondSuccess(res.Snapshot.Dir)
	}
	return l.outcome(err)
}

func (l *Loop) runCapture(ctx context.Context) (bool, error) {
	_, err := l.capture(ctx)
	l.lastDone = l.now()
	return l.outcome(err)
}

// outcome decides whether the loop ends after a capture.
func (l *Loop) outcome(err error) (bool, error) {
	switch {
	case err == nil:
		return !l.continuous, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true, err
	case errors.Is(err, session.ErrSelectionCancelled):
		log.Printf("Capture cancelled by user")
		return false, nil
	default:
		log.Printf("Capture failed: %v", err)
		return !l.continuous, err
	}
}

func (l *Loop) coolingDown(at time.Time) bool {
	if l.lastDone.IsZero() || l.cooldown == 0 {
		return false
	}
	return at.Sub(l.lastDone) < l.cooldown
}
