package geometry

import (
	"errors"
	"image"
)

// ErrZeroWindow is returned by Convert when the window has no area to normalize against.
var ErrZeroWindow = errors.New("window has zero width or height")

// Point is a 2-D coordinate in whichever space its Rect lives in.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle. Pixel spaces hold whole numbers; the
// normalized space holds fractions of the window size.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Corners are the four points of a Rect, derived by Rect.Corners.
type Corners struct {
	TopLeft     Point
	TopRight    Point
	BottomLeft  Point
	BottomRight Point
}

// FromImageRect converts an image.Rectangle into a Rect.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), W: float64(r.Dx()), H: float64(r.Dy())}
}

// Empty reports whether r is a cancelled selection (zero width or height).
func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Corners derives the corner set of r.
func (r Rect) Corners() Corners {
	return Corners{
		TopLeft:     Point{X: r.X, Y: r.Y},
		TopRight:    Point{X: r.X + r.W, Y: r.Y},
		BottomLeft:  Point{X: r.X, Y: r.Y + r.H},
		BottomRight: Point{X: r.X + r.W, Y: r.Y + r.H},
	}
}

// ImageRect returns r as an integer image.Rectangle, truncating fractions.
func (r Rect) ImageRect() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
}

// View is one coordinate representation of the ROI.
type View struct {
	Rect    Rect
	Corners Corners
}

func newView(r Rect) View {
	return View{Rect: r, Corners: r.Corners()}
}

// Views holds the ROI in window-relative, absolute-screen and normalized space.
type Views struct {
	Relative   View
	Absolute   View
	Normalized View
}

// Left, Top, Right and Bottom of the absolute view, as printed in reports.
func (v Views) Left() float64   { return v.Absolute.Rect.X }
func (v Views) Top() float64    { return v.Absolute.Rect.Y }
func (v Views) Right() float64  { return v.Absolute.Rect.Right() }
func (v Views) Bottom() float64 { return v.Absolute.Rect.Bottom() }

// Convert derives all three representations of a window-relative rectangle.
// origin is the window's top-left corner on the screen. Values are not rounded.
func Convert(rel Rect, origin Point, winW, winH int) (Views, error) {
	if winW == 0 || winH == 0 {
		return Views{}, ErrZeroWindow
	}

	abs := Rect{X: origin.X + rel.X, Y: origin.Y + rel.Y, W: rel.W, H: rel.H}

	fw, fh := float64(winW), float64(winH)
	norm := Rect{X: rel.X / fw, Y: rel.Y / fh, W: rel.W / fw, H: rel.H / fh}

	return Views{
		Relative:   newView(rel),
		Absolute:   newView(abs),
		Normalized: newView(norm),
	}, nil
}
