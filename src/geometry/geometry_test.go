package geometry

import (
	"errors"
	"image"
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func TestConvertScenario(t *testing.T) {
	rel := Rect{X: 10, Y: 20, W: 100, H: 50}
	views, err := Convert(rel, Point{X: 500, Y: 300}, 800, 600)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if views.Relative.Rect != rel {
		t.Errorf("Expected relative view unchanged, got %+v", views.Relative.Rect)
	}

	if views.Left() != 510 || views.Top() != 320 || views.Right() != 610 || views.Bottom() != 370 {
		t.Errorf("Unexpected absolute rect: left=%v top=%v right=%v bottom=%v",
			views.Left(), views.Top(), views.Right(), views.Bottom())
	}

	n := views.Normalized.Rect
	want := Rect{X: 0.0125, Y: 0.0333, W: 0.125, H: 0.0833}
	got := Rect{X: round4(n.X), Y: round4(n.Y), W: round4(n.W), H: round4(n.H)}
	if got != want {
		t.Errorf("Expected normalized %+v, got %+v", want, got)
	}
}

func TestConvertZeroWindow(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 600},
		{"zero height", 800, 0},
		{"both zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(Rect{X: 1, Y: 1, W: 1, H: 1}, Point{}, tt.w, tt.h)
			if !errors.Is(err, ErrZeroWindow) {
				t.Fatalf("Expected ErrZeroWindow, got %v", err)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	tests := []struct {
		rel        Rect
		origin     Point
		winW, winH int
	}{
		{Rect{X: 0, Y: 0, W: 1, H: 1}, Point{X: 0, Y: 0}, 1, 1},
		{Rect{X: 3, Y: 7, W: 11, H: 13}, Point{X: -1920, Y: 0}, 1920, 1080},
		{Rect{X: 123, Y: 45, W: 640, H: 480}, Point{X: 2560, Y: 1440}, 1280, 720},
		{Rect{X: 1, Y: 2, W: 3, H: 4}, Point{X: 17, Y: 33}, 7, 9},
	}

	for _, tt := range tests {
		views, err := Convert(tt.rel, tt.origin, tt.winW, tt.winH)
		if err != nil {
			t.Fatalf("Convert(%+v) failed: %v", tt.rel, err)
		}

		n := views.Normalized.Rect
		if !almostEqual(n.X*float64(tt.winW), tt.rel.X) || !almostEqual(n.W*float64(tt.winW), tt.rel.W) {
			t.Errorf("Horizontal round trip failed for %+v: %+v", tt.rel, n)
		}
		if !almostEqual(n.Y*float64(tt.winH), tt.rel.Y) || !almostEqual(n.H*float64(tt.winH), tt.rel.H) {
			t.Errorf("Vertical round trip failed for %+v: %+v", tt.rel, n)
		}

		if views.Left()-tt.origin.X != tt.rel.X || views.Top()-tt.origin.Y != tt.rel.Y {
			t.Errorf("Absolute offset mismatch for %+v", tt.rel)
		}
		if views.Right()-views.Left() != tt.rel.W || views.Bottom()-views.Top() != tt.rel.H {
			t.Errorf("Absolute size mismatch for %+v", tt.rel)
		}

		for name, v := range map[string]View{
			"relative":   views.Relative,
			"absolute":   views.Absolute,
			"normalized": views.Normalized,
		} {
			c := v.Corners
			if !almostEqual(c.TopRight.X-c.TopLeft.X, v.Rect.W) {
				t.Errorf("%s: top edge %v != width %v", name, c.TopRight.X-c.TopLeft.X, v.Rect.W)
			}
			if !almostEqual(c.BottomLeft.Y-c.TopLeft.Y, v.Rect.H) {
				t.Errorf("%s: left edge %v != height %v", name, c.BottomLeft.Y-c.TopLeft.Y, v.Rect.H)
			}
			if c.BottomRight != (Point{X: c.TopRight.X, Y: c.BottomLeft.Y}) {
				t.Errorf("%s: bottom-right %+v inconsistent", name, c.BottomRight)
			}
		}
	}
}

func TestRectEmpty(t *testing.T) {
	if !(Rect{}).Empty() {
		t.Error("Expected zero rect to be empty")
	}
	if !(Rect{X: 5, Y: 5, W: 10, H: 0}).Empty() {
		t.Error("Expected zero-height rect to be empty")
	}
	if (Rect{W: 1, H: 1}).Empty() {
		t.Error("Expected 1x1 rect to be non-empty")
	}
}

func TestImageRectConversion(t *testing.T) {
	in := image.Rect(4, 6, 14, 26)
	r := FromImageRect(in)
	if r != (Rect{X: 4, Y: 6, W: 10, H: 20}) {
		t.Fatalf("Unexpected rect %+v", r)
	}
	if r.ImageRect() != in {
		t.Fatalf("Expected %v back, got %v", in, r.ImageRect())
	}
}
