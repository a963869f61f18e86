package snapshot

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

const (
	DefaultRoot = "Saved ROIs"
	ImageName   = "roi.png"
	SummaryName = "summary.txt"

	// timestampLayout is second resolution and colon free.
	timestampLayout = "2006-01-02T15-04-05"
)

// Snapshot is one persisted capture. It is never modified after Write returns.
type Snapshot struct {
	Dir         string
	ImagePath   string
	SummaryPath string
	CapturedAt  time.Time
}

// Writer persists snapshots under Root, one directory per capture second.
// Two writes within the same second target the same directory and the second
// overwrites the first.
type Writer struct {
	Root string
	Now  func() time.Time
}

// NewWriter returns a Writer rooted at root, or DefaultRoot when root is empty.
func NewWriter(root string) *Writer {
	if root == "" {
		root = DefaultRoot
	}
	return &Writer{Root: root, Now: time.Now}
}

// DirName formats the capture time as a directory name.
func DirName(t time.Time) string {
	return t.Format(timestampLayout)
}

// Write creates the snapshot directory (and Root if needed) and stores the
// cropped image and the summary text in it.
func (w *Writer) Write(img image.Image, summary string) (Snapshot, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	capturedAt := now()

	dir := filepath.Join(w.Root, DirName(capturedAt))
	if _, err := os.Stat(dir); err == nil {
		log.Printf("snapshot: %s already exists, overwriting capture from the same second", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Snapshot{}, fmt.Errorf("creating snapshot directory: %w", err)
	}

	snap := Snapshot{
		Dir:         dir,
		ImagePath:   filepath.Join(dir, ImageName),
		SummaryPath: filepath.Join(dir, SummaryName),
		CapturedAt:  capturedAt,
	}

	if img == nil || img.Bounds().Empty() {
		// PNG cannot encode a 0x0 image; keep the pair complete with a transparent pixel.
		img = image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	if err := imaging.Save(img, snap.ImagePath); err != nil {
		return Snapshot{}, fmt.Errorf("writing %s: %w", ImageName, err)
	}
	if err := os.WriteFile(snap.SummaryPath, []byte(summary), 0644); err != nil {
		return Snapshot{}, fmt.Errorf("writing %s: %w", SummaryName, err)
	}

	log.Printf("snapshot: saved %s", dir)
	return snap, nil
}
