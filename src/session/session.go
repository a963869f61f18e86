package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"time"

	"roi-snapshot/src/clipboard"
	"roi-snapshot/src/desktop"
	"roi-snapshot/src/geometry"
	"roi-snapshot/src/logutil"
	"roi-snapshot/src/overlay"
	"roi-snapshot/src/palette"
	"roi-snapshot/src/report"
	"roi-snapshot/src/screenshot"
	"roi-snapshot/src/snapshot"
	"roi-snapshot/src/window"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	// ErrNoTargetWindow wraps every failure to obtain a capturable window.
	ErrNoTargetWindow = errors.New("no target window")
)

// SnapshotWriter persists one capture.
type SnapshotWriter interface {
	Write(img image.Image, summary string) (snapshot.Snapshot, error)
}

// ResultTarget receives the outcome of a capture.
type ResultTarget interface {
	OnSuccess(res Result) error
	OnFailure(err error) error
}

type Options struct {
	Desktop  desktop.Desktop
	Selector overlay.Selector
	Writer   SnapshotWriter
	// Summarizer defaults to the k-means engine.
	Summarizer *palette.Summarizer
	Clusters   int
	// Window, when set, is captured instead of the active window.
	Window *window.Window
	// Title, when set, selects the first window whose title contains it
	// (case-insensitive), waiting up to TitleTimeout for one to appear.
	Title        string
	TitleTimeout time.Duration
	TitlePoll    time.Duration
	Targets      []ResultTarget
}

type Result struct {
	Snapshot snapshot.Snapshot
	Summary  string
	Views    geometry.Views
	Clusters []palette.Cluster
}

// Execute runs one capture: window -> screenshot -> ROI -> geometry + colors ->
// report -> snapshot on disk -> targets.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Desktop == nil {
		return Result{}, errors.New("Desktop is required")
	}
	if opts.Selector == nil {
		return Result{}, errors.New("Selector is required")
	}
	if opts.Writer == nil {
		return Result{}, errors.New("Writer is required")
	}

	res, err := execute(ctx, opts)
	if err != nil {
		notifyFailure(opts.Targets, err)
		return Result{}, err
	}

	for _, t := range opts.Targets {
		if err := t.OnSuccess(res); err != nil {
			log.Printf("session: result target failed: %v", err)
		}
	}
	return res, nil
}

func execute(ctx context.Context, opts Options) (Result, error) {
	win, err := targetWindow(ctx, opts)
	if err != nil {
		return Result{}, err
	}
	log.Printf("Capturing window %q at (%d,%d) %dx%d",
		logutil.SanitizeForLog(win.Title), win.Left, win.Top, win.Width, win.Height)

	monW, monH, err := opts.Desktop.MonitorResolution()
	if err != nil {
		log.Printf("session: monitor resolution unavailable: %v", err)
	}

	shot, err := opts.Desktop.CaptureRegion(screenshot.Region{X: win.Left, Y: win.Top, Width: win.Width, Height: win.Height})
	if err != nil {
		return Result{}, fmt.Errorf("capturing window: %w", err)
	}

	sel, err := opts.Selector.Select(ctx, shot)
	if err != nil {
		return Result{}, fmt.Errorf("selecting region: %w", err)
	}
	// Selection coordinates are window-relative regardless of the buffer origin.
	sel = sel.Sub(shot.Bounds().Min)
	rel := geometry.FromImageRect(sel)
	if rel.Empty() {
		return Result{}, ErrSelectionCancelled
	}

	views, err := geometry.Convert(rel, geometry.Point{X: float64(win.Left), Y: float64(win.Top)}, win.Width, win.Height)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoTargetWindow, err)
	}

	roi := screenshot.Crop(shot, sel.Add(shot.Bounds().Min))

	summarizer := opts.Summarizer
	if summarizer == nil {
		summarizer = palette.New(palette.EngineKMeans, 0)
	}
	k := opts.Clusters
	if k <= 0 {
		k = palette.DefaultK
	}
	clusters := summarizer.Summarize(roi, k)

	text := report.Format(report.Summary{
		MonitorWidth:  monW,
		MonitorHeight: monH,
		WindowTitle:   win.Title,
		WindowWidth:   win.Width,
		WindowHeight:  win.Height,
		Views:         views,
		K:             k,
		Clusters:      clusters,
	})

	snap, err := opts.Writer.Write(roi, text)
	if err != nil {
		return Result{}, err
	}
	log.Printf("Snapshot written to %s", snap.Dir)

	return Result{Snapshot: snap, Summary: text, Views: views, Clusters: clusters}, nil
}

func targetWindow(ctx context.Context, opts Options) (window.Window, error) {
	if opts.Title != "" && opts.Window == nil {
		log.Printf("Waiting for a window titled %q", logutil.SanitizeForLog(opts.Title))
		win, err := window.WaitForTitle(ctx, opts.Desktop, opts.Title, opts.TitleTimeout, opts.TitlePoll)
		if err != nil {
			return window.Window{}, fmt.Errorf("%w: %w", ErrNoTargetWindow, err)
		}
		return win, nil
	}
	if opts.Window != nil {
		if !opts.Window.HasArea() {
			return window.Window{}, fmt.Errorf("%w: %q has no area", ErrNoTargetWindow, opts.Window.Title)
		}
		return *opts.Window, nil
	}
	win, err := opts.Desktop.ActiveWindow()
	if err != nil {
		return window.Window{}, fmt.Errorf("%w: %w", ErrNoTargetWindow, err)
	}
	if !win.HasArea() {
		return window.Window{}, fmt.Errorf("%w: active window %q has no area", ErrNoTargetWindow, win.Title)
	}
	return win, nil
}

func notifyFailure(targets []ResultTarget, err error) {
	for _, t := range targets {
		_ = t.OnFailure(err)
	}
}

// StdoutTarget echoes the report and user-facing status messages.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) out() io.Writer {
	if t.Writer == nil {
		return os.Stdout
	}
	return t.Writer
}

func (t StdoutTarget) OnSuccess(res Result) error {
	_, err := fmt.Fprintf(t.out(), "%s\nSaved snapshot to %s\n", res.Summary, res.Snapshot.Dir)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	var msg string
	switch {
	case errors.Is(err, ErrSelectionCancelled):
		msg = "Selection cancelled; nothing saved."
	case errors.Is(err, ErrNoTargetWindow):
		msg = "No target window; nothing captured."
	default:
		msg = fmt.Sprintf("Capture failed: %v", err)
	}
	_, werr := fmt.Fprintln(t.out(), msg)
	return werr
}

// ClipboardTarget copies the report text to the system clipboard.
type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(res Result) error {
	return clipboard.Write(res.Summary)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}
