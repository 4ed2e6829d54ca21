package rive

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"go.uber.org/zap"
)

// Surface is the pixel buffer a Renderer draws into.
type Surface struct {
	dc      *gg.Context
	version uint64
}

// NewSurface allocates a w x h surface. Dimensions are clamped to 1.
func NewSurface(w, h int) *Surface {
	w, h = clampSize(w, h)
	return &Surface{dc: gg.NewContext(w, h)}
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (int, int) {
	if s == nil || s.dc == nil {
		return 0, 0
	}
	return s.dc.Width(), s.dc.Height()
}

// Resize reallocates the pixel buffer. The current transform is kept.
func (s *Surface) Resize(w, h int) error {
	if s == nil || s.dc == nil {
		return nil
	}
	w, h = clampSize(w, h)
	cw, ch := s.Size()
	if cw == w && ch == h {
		return nil
	}
	if err := s.dc.Resize(w, h); err != nil {
		return err
	}
	s.version++
	return nil
}

// Pixels returns the RGBA pixel data, 4 bytes per pixel, row-major.
func (s *Surface) Pixels() []byte {
	if s == nil || s.dc == nil {
		return nil
	}
	return s.dc.ResizeTarget().Data()
}

// Version changes whenever the surface is flushed or resized.
func (s *Surface) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// Snapshot copies the current pixels into an image.
func (s *Surface) Snapshot() *image.RGBA {
	if s == nil || s.dc == nil {
		return nil
	}
	return s.dc.ResizeTarget().ToImage()
}

// Close releases the drawing context.
func (s *Surface) Close() error {
	if s == nil || s.dc == nil {
		return nil
	}
	err := s.dc.Close()
	s.dc = nil
	return err
}

func clampSize(w, h int) (int, int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// FillRule selects the path fill rule.
type FillRule uint8

const (
	FillNonZero FillRule = iota
	FillEvenOdd
)

// Renderer is a render target bound to one Surface. After Delete every
// operation is a no-op.
type Renderer struct {
	surface  *Surface
	base     Mat2D
	depth    int
	deleted  bool
	onDelete []func()
}

// NewRenderer binds a renderer to surface.
func NewRenderer(surface *Surface) *Renderer {
	return &Renderer{surface: surface, base: Identity()}
}

// Surface returns the bound surface.
func (r *Renderer) Surface() *Surface {
	if r == nil {
		return nil
	}
	return r.surface
}

func (r *Renderer) context() *gg.Context {
	if r == nil || r.deleted || r.surface == nil {
		return nil
	}
	return r.surface.dc
}

// Clear erases the surface to transparent.
func (r *Renderer) Clear() {
	if dc := r.context(); dc != nil {
		dc.Clear()
	}
}

// Save pushes the current transform and clip.
func (r *Renderer) Save() {
	if dc := r.context(); dc != nil {
		dc.Push()
		r.depth++
	}
}

// Restore pops the last Save. Unbalanced calls are ignored.
func (r *Renderer) Restore() {
	if dc := r.context(); dc != nil && r.depth > 0 {
		dc.Pop()
		r.depth--
	}
}

// Align replaces the base transform with the fit/alignment mapping of
// content into frame.
func (r *Renderer) Align(fit Fit, align Alignment, frame, content AABB) {
	dc := r.context()
	if dc == nil {
		return
	}
	r.base = ComputeAlignment(fit, align, frame, content)
	dc.SetTransform(toMatrix(r.base))
}

// Base returns the transform set by the last Align.
func (r *Renderer) Base() Mat2D {
	if r == nil {
		return Identity()
	}
	return r.base
}

// Transform concatenates m onto the current transform.
func (r *Renderer) Transform(m Mat2D) {
	if dc := r.context(); dc != nil {
		dc.Transform(toMatrix(m))
	}
}

func (r *Renderer) MoveTo(x, y float64) {
	if dc := r.context(); dc != nil {
		dc.MoveTo(x, y)
	}
}

func (r *Renderer) LineTo(x, y float64) {
	if dc := r.context(); dc != nil {
		dc.LineTo(x, y)
	}
}

func (r *Renderer) CubicTo(ox, oy, ix, iy, x, y float64) {
	if dc := r.context(); dc != nil {
		dc.CubicTo(ox, oy, ix, iy, x, y)
	}
}

func (r *Renderer) Close() {
	if dc := r.context(); dc != nil {
		dc.ClosePath()
	}
}

// Fill fills and clears the current path.
func (r *Renderer) Fill(c color.Color, rule FillRule) {
	dc := r.context()
	if dc == nil {
		return
	}
	dc.SetColor(c)
	if rule == FillEvenOdd {
		dc.SetFillRule(gg.FillRuleEvenOdd)
	} else {
		dc.SetFillRule(gg.FillRuleNonZero)
	}
	if err := dc.Fill(); err != nil {
		Logger().Debug("renderer fill failed", zap.Error(err))
	}
}

// Stroke strokes and clears the current path.
func (r *Renderer) Stroke(c color.Color, width float64) {
	dc := r.context()
	if dc == nil {
		return
	}
	dc.SetColor(c)
	dc.SetLineWidth(width)
	if err := dc.Stroke(); err != nil {
		Logger().Debug("renderer stroke failed", zap.Error(err))
	}
}

// Flush finishes pending drawing and publishes a new surface version.
func (r *Renderer) Flush() {
	dc := r.context()
	if dc == nil {
		return
	}
	if err := dc.FlushGPU(); err != nil {
		Logger().Debug("renderer flush failed", zap.Error(err))
	}
	r.surface.version++
}

// OnDelete registers fn to run when the renderer is deleted.
func (r *Renderer) OnDelete(fn func()) {
	if r == nil || fn == nil || r.deleted {
		return
	}
	r.onDelete = append(r.onDelete, fn)
}

// Deleted reports whether Delete was called.
func (r *Renderer) Deleted() bool {
	return r == nil || r.deleted
}

// Delete releases the renderer. The surface stays with its owner.
func (r *Renderer) Delete() {
	if r == nil || r.deleted {
		return
	}
	r.deleted = true
	for _, fn := range r.onDelete {
		fn()
	}
	r.onDelete = nil
}

func toMatrix(m Mat2D) gg.Matrix {
	return gg.Matrix{
		A: m.XX, B: m.YX, C: m.TX,
		D: m.XY, E: m.YY, F: m.TY,
	}
}
