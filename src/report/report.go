package report

import (
	"fmt"
	"strconv"
	"strings"

	"roi-snapshot/src/geometry"
	"roi-snapshot/src/palette"
)

// Summary is everything a snapshot report describes.
type Summary struct {
	MonitorWidth  int
	MonitorHeight int
	WindowTitle   string
	WindowWidth   int
	WindowHeight  int
	Views         geometry.Views
	// K is the requested cluster count, shown in the colors header.
	K        int
	Clusters []palette.Cluster
}

// Format renders s as the multi-section text report. Normalized values are
// rounded to 4 decimals here and nowhere else.
func Format(s Summary) string {
	var b strings.Builder

	b.WriteString("===== ROI SUMMARY =====\n")
	fmt.Fprintf(&b, "%-32s%d x %d\n", "Monitor Resolution:", s.MonitorWidth, s.MonitorHeight)
	fmt.Fprintf(&b, "%-32s%s\n", "Active Window Title:", s.WindowTitle)
	fmt.Fprintf(&b, "%-32s%d x %d\n", "Active Window Size:", s.WindowWidth, s.WindowHeight)

	rel := s.Views.Relative.Rect
	b.WriteString("\nROI (Window-Relative):\n")
	fmt.Fprintf(&b, "  Rectangle: x=%s, y=%s, w=%s, h=%s\n", px(rel.X), px(rel.Y), px(rel.W), px(rel.H))
	writeCorners(&b, s.Views.Relative.Corners, pxPoint)

	b.WriteString("\nROI (Absolute):\n")
	fmt.Fprintf(&b, "  Rectangle: left=%s, top=%s, right=%s, bottom=%s\n",
		px(s.Views.Left()), px(s.Views.Top()), px(s.Views.Right()), px(s.Views.Bottom()))
	writeCorners(&b, s.Views.Absolute.Corners, pxPoint)

	norm := s.Views.Normalized.Rect
	b.WriteString("\nROI (Normalized to Window):\n")
	fmt.Fprintf(&b, "  Rectangle: x=%.4f, y=%.4f, w=%.4f, h=%.4f\n", norm.X, norm.Y, norm.W, norm.H)
	writeCorners(&b, s.Views.Normalized.Corners, normPoint)

	fmt.Fprintf(&b, "\nDominant Colors (k=%d):\n", s.K)
	if len(s.Clusters) == 0 {
		b.WriteString("  No color data (empty region).\n")
	}
	for i, c := range s.Clusters {
		fmt.Fprintf(&b, "  %d. %s  %-20s %-20s %6.2f%%\n", i+1, c.Hex, c.Color.String(), c.HSV.String(), c.Percent)
	}

	b.WriteString("===== END OF ROI INFO =====\n")
	return b.String()
}

func writeCorners(b *strings.Builder, c geometry.Corners, point func(geometry.Point) string) {
	b.WriteString("  Corners:\n")
	fmt.Fprintf(b, "    top-left     = %s\n", point(c.TopLeft))
	fmt.Fprintf(b, "    top-right    = %s\n", point(c.TopRight))
	fmt.Fprintf(b, "    bottom-left  = %s\n", point(c.BottomLeft))
	fmt.Fprintf(b, "    bottom-right = %s\n", point(c.BottomRight))
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pxPoint(p geometry.Point) string {
	return fmt.Sprintf("(%s, %s)", px(p.X), px(p.Y))
}

func normPoint(p geometry.Point) string {
	return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
}
