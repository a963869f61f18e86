package overlay

import (
	"context"
	"image"
	"image/color"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const pickerTitle = "Select ROI - drag, then Enter/Space to confirm, Esc to cancel"

// Picker is the fyne ROI selector. It shows the captured window in its own
// window and lets the user drag a rectangle over it. One window is created on
// first use and hidden between selections so the app never runs out of
// windows.
type Picker struct {
	app fyne.App
	win fyne.Window

	mu     sync.Mutex
	result chan image.Rectangle
}

// NewPicker returns a Picker bound to a running fyne app.
func NewPicker(a fyne.App) *Picker {
	return &Picker{app: a}
}

// Select shows img and blocks until the user confirms, cancels or ctx ends.
func (p *Picker) Select(ctx context.Context, img image.Image) (image.Rectangle, error) {
	if img == nil || img.Bounds().Empty() {
		return image.Rectangle{}, nil
	}

	result := make(chan image.Rectangle, 1)
	p.mu.Lock()
	p.result = result
	p.mu.Unlock()

	fyne.Do(func() { p.show(img) })

	select {
	case r := <-result:
		return r, nil
	case <-ctx.Done():
		fyne.Do(func() { p.finish(image.Rectangle{}) })
		return image.Rectangle{}, ctx.Err()
	}
}

// show runs on the fyne thread.
func (p *Picker) show(img image.Image) {
	if p.win == nil {
		p.win = p.app.NewWindow(pickerTitle)
		p.win.SetCloseIntercept(func() { p.finish(image.Rectangle{}) })
	}

	area := newSelectionArea(img)
	p.win.SetContent(area)
	p.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyReturn, fyne.KeyEnter, fyne.KeySpace:
			p.finish(area.Selection())
		case fyne.KeyEscape, fyne.KeyC:
			p.finish(image.Rectangle{})
		}
	})

	b := img.Bounds()
	p.win.Resize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	p.win.CenterOnScreen()
	p.win.Show()
	p.win.RequestFocus()
}

// finish delivers r to the waiting Select exactly once and hides the window.
func (p *Picker) finish(r image.Rectangle) {
	p.mu.Lock()
	result := p.result
	p.result = nil
	p.mu.Unlock()

	if p.win != nil {
		p.win.Hide()
		p.win.SetContent(widget.NewLabel(""))
	}
	if result == nil {
		return
	}
	log.Printf("ROI picker finished with %v", r)
	result <- r
}

// selectionArea draws the capture and a rubber-band rectangle over it.
type selectionArea struct {
	widget.BaseWidget

	img    image.Image
	raster *canvas.Image
	band   *canvas.Rectangle

	start, end fyne.Position
	dragging   bool
	selection  image.Rectangle
}

var (
	_ fyne.Draggable    = (*selectionArea)(nil)
	_ desktop.Mouseable = (*selectionArea)(nil)
)

func newSelectionArea(img image.Image) *selectionArea {
	s := &selectionArea{img: img}

	s.raster = canvas.NewImageFromImage(img)
	s.raster.FillMode = canvas.ImageFillStretch
	s.raster.ScaleMode = canvas.ImageScalePixels

	s.band = canvas.NewRectangle(color.NRGBA{R: 0, G: 160, B: 255, A: 40})
	s.band.StrokeColor = color.NRGBA{R: 0, G: 160, B: 255, A: 255}
	s.band.StrokeWidth = 2
	s.band.Hide()

	s.ExtendBaseWidget(s)
	return s
}

// Selection returns the current selection in image pixels.
func (s *selectionArea) Selection() image.Rectangle {
	return s.selection
}

func (s *selectionArea) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.start = ev.Position
	s.end = ev.Position
	s.dragging = true
}

func (s *selectionArea) MouseUp(ev *desktop.MouseEvent) {
	if !s.dragging {
		return
	}
	s.end = ev.Position
	s.dragging = false
	s.update()
}

func (s *selectionArea) Dragged(ev *fyne.DragEvent) {
	if !s.dragging {
		s.start = ev.Position.Subtract(ev.Dragged)
		s.dragging = true
	}
	s.end = ev.Position
	s.update()
}

func (s *selectionArea) DragEnd() {
	s.dragging = false
}

func (s *selectionArea) update() {
	s.selection = toImageRect(s.start, s.end, s.Size(), s.img.Bounds())
	s.Refresh()
}

func (s *selectionArea) CreateRenderer() fyne.WidgetRenderer {
	return &selectionRenderer{area: s}
}

type selectionRenderer struct {
	area *selectionArea
}

func (r *selectionRenderer) Layout(size fyne.Size) {
	r.area.raster.Move(fyne.NewPos(0, 0))
	r.area.raster.Resize(size)
	r.placeBand(size)
}

func (r *selectionRenderer) placeBand(size fyne.Size) {
	sel := r.area.selection
	if sel.Empty() {
		r.area.band.Hide()
		return
	}
	pos, sz := toWidgetRect(sel, size, r.area.img.Bounds())
	r.area.band.Move(pos)
	r.area.band.Resize(sz)
	r.area.band.Show()
}

func (r *selectionRenderer) MinSize() fyne.Size {
	return fyne.NewSize(64, 64)
}

func (r *selectionRenderer) Refresh() {
	r.placeBand(r.area.Size())
	canvas.Refresh(r.area.band)
}

func (r *selectionRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.area.raster, r.area.band}
}

func (r *selectionRenderer) Destroy() {}
