package rive

import (
	"fmt"
	"math"
)

// Fit controls how artboard bounds are scaled into a frame.
type Fit uint8

const (
	FitContain Fit = iota
	FitCover
	FitFill
	FitWidth
	FitHeight
	FitNone
	FitScaleDown
)

var fitNames = map[Fit]string{
	FitCover:     "cover",
	FitContain:   "contain",
	FitFill:      "fill",
	FitWidth:     "fitWidth",
	FitHeight:    "fitHeight",
	FitNone:      "none",
	FitScaleDown: "scaleDown",
}

func (f Fit) String() string {
	if s, ok := fitNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Fit(%d)", uint8(f))
}

// ParseFit resolves a fit by its name ("cover", "fitWidth", ...).
func ParseFit(s string) (Fit, error) {
	for f, name := range fitNames {
		if name == s {
			return f, nil
		}
	}
	return FitContain, fmt.Errorf("rive: unknown fit %q", s)
}

// Alignment positions the fitted artboard inside its frame.
type Alignment uint8

const (
	AlignCenter Alignment = iota
	AlignTopLeft
	AlignTopCenter
	AlignTopRight
	AlignCenterLeft
	AlignCenterRight
	AlignBottomLeft
	AlignBottomCenter
	AlignBottomRight
)

var alignmentNames = map[Alignment]string{
	AlignCenter:       "center",
	AlignTopLeft:      "topLeft",
	AlignTopCenter:    "topCenter",
	AlignTopRight:     "topRight",
	AlignCenterLeft:   "centerLeft",
	AlignCenterRight:  "centerRight",
	AlignBottomLeft:   "bottomLeft",
	AlignBottomCenter: "bottomCenter",
	AlignBottomRight:  "bottomRight",
}

// alignmentFactors are the normalized x/y anchors in [-1, 1].
var alignmentFactors = map[Alignment][2]float64{
	AlignCenter:       {0, 0},
	AlignTopLeft:      {-1, -1},
	AlignTopCenter:    {0, -1},
	AlignTopRight:     {1, -1},
	AlignCenterLeft:   {-1, 0},
	AlignCenterRight:  {1, 0},
	AlignBottomLeft:   {-1, 1},
	AlignBottomCenter: {0, 1},
	AlignBottomRight:  {1, 1},
}

func (a Alignment) String() string {
	if s, ok := alignmentNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Alignment(%d)", uint8(a))
}

// ParseAlignment resolves an alignment by its name ("center", "topLeft", ...).
func ParseAlignment(s string) (Alignment, error) {
	for a, name := range alignmentNames {
		if name == s {
			return a, nil
		}
	}
	return AlignCenter, fmt.Errorf("rive: unknown alignment %q", s)
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b AABB) Width() float64  { return b.MaxX - b.MinX }
func (b AABB) Height() float64 { return b.MaxY - b.MinY }

// Mat2D is a 2D affine transform:
//
//	x' = XX*x + YX*y + TX
//	y' = XY*x + YY*y + TY
type Mat2D struct {
	XX, XY, YX, YY, TX, TY float64
}

// Identity returns the identity transform.
func Identity() Mat2D {
	return Mat2D{XX: 1, YY: 1}
}

// Apply transforms a point.
func (m Mat2D) Apply(x, y float64) (float64, float64) {
	return m.XX*x + m.YX*y + m.TX, m.XY*x + m.YY*y + m.TY
}

// Multiply returns m * o (o is applied first).
func (m Mat2D) Multiply(o Mat2D) Mat2D {
	return Mat2D{
		XX: m.XX*o.XX + m.YX*o.XY,
		XY: m.XY*o.XX + m.YY*o.XY,
		YX: m.XX*o.YX + m.YX*o.YY,
		YY: m.XY*o.YX + m.YY*o.YY,
		TX: m.XX*o.TX + m.YX*o.TY + m.TX,
		TY: m.XY*o.TX + m.YY*o.TY + m.TY,
	}
}

// Invert returns the inverse transform. ok is false for singular matrices.
func (m Mat2D) Invert() (Mat2D, bool) {
	det := m.XX*m.YY - m.XY*m.YX
	if det == 0 || math.IsNaN(det) {
		return Mat2D{}, false
	}
	inv := 1 / det
	return Mat2D{
		XX: m.YY * inv,
		XY: -m.XY * inv,
		YX: -m.YX * inv,
		YY: m.XX * inv,
		TX: (m.YX*m.TY - m.YY*m.TX) * inv,
		TY: (m.XY*m.TX - m.XX*m.TY) * inv,
	}, true
}

// ComputeAlignment maps content bounds into frame according to fit and
// alignment. Empty content is treated as unit scale.
func ComputeAlignment(fit Fit, align Alignment, frame, content AABB) Mat2D {
	cw, ch := content.Width(), content.Height()
	fw, fh := frame.Width(), frame.Height()
	f := alignmentFactors[align]

	x := -content.MinX - cw/2 - f[0]*cw/2
	y := -content.MinY - ch/2 - f[1]*ch/2

	sx, sy := 1.0, 1.0
	if cw > 0 && ch > 0 {
		switch fit {
		case FitFill:
			sx, sy = fw/cw, fh/ch
		case FitContain:
			s := math.Min(fw/cw, fh/ch)
			sx, sy = s, s
		case FitCover:
			s := math.Max(fw/cw, fh/ch)
			sx, sy = s, s
		case FitHeight:
			s := fh / ch
			sx, sy = s, s
		case FitWidth:
			s := fw / cw
			sx, sy = s, s
		case FitScaleDown:
			s := math.Min(fw/cw, fh/ch)
			if s > 1 {
				s = 1
			}
			sx, sy = s, s
		}
	}

	tx := frame.MinX + fw/2 + f[0]*fw/2
	ty := frame.MinY + fh/2 + f[1]*fh/2

	return Mat2D{XX: sx, YY: sy, TX: tx + sx*x, TY: ty + sy*y}
}
