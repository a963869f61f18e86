package overlay

import (
	"context"
	"image"
	"math"

	"fyne.io/fyne/v2"
)

// Selector defines a synchronous region-selection API owned by the event loop.
// The call is blocking and MUST be invoked only from the single event-loop
// goroutine. The returned rectangle is in img's pixel space; an empty
// rectangle means the user cancelled.
type Selector interface {
	Select(ctx context.Context, img image.Image) (image.Rectangle, error)
}

// SelectorFunc adapts a plain function to Selector.
type SelectorFunc func(ctx context.Context, img image.Image) (image.Rectangle, error)

func (f SelectorFunc) Select(ctx context.Context, img image.Image) (image.Rectangle, error) {
	return f(ctx, img)
}

// toImageRect maps two widget positions spanning a drag onto image pixels.
// The image is stretched over the whole widget, so the mapping is a plain
// per-axis scale. The result is clipped to the image.
func toImageRect(a, b fyne.Position, widget fyne.Size, bounds image.Rectangle) image.Rectangle {
	if widget.Width <= 0 || widget.Height <= 0 || bounds.Empty() {
		return image.Rectangle{}
	}
	sx := float64(bounds.Dx()) / float64(widget.Width)
	sy := float64(bounds.Dy()) / float64(widget.Height)

	x0 := int(math.Round(float64(min(a.X, b.X)) * sx))
	y0 := int(math.Round(float64(min(a.Y, b.Y)) * sy))
	x1 := int(math.Round(float64(max(a.X, b.X)) * sx))
	y1 := int(math.Round(float64(max(a.Y, b.Y)) * sy))

	r := image.Rect(x0, y0, x1, y1).Add(bounds.Min)
	return r.Intersect(bounds)
}

// toWidgetRect is the inverse of toImageRect, used to draw the selection.
func toWidgetRect(r image.Rectangle, widget fyne.Size, bounds image.Rectangle) (fyne.Position, fyne.Size) {
	if bounds.Empty() {
		return fyne.NewPos(0, 0), fyne.NewSize(0, 0)
	}
	sx := widget.Width / float32(bounds.Dx())
	sy := widget.Height / float32(bounds.Dy())
	r = r.Sub(bounds.Min)
	return fyne.NewPos(float32(r.Min.X)*sx, float32(r.Min.Y)*sy),
		fyne.NewSize(float32(r.Dx())*sx, float32(r.Dy())*sy)
}
