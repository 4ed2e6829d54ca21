package wasm

import (
	"context"
	"image/color"

	"github.com/tetratelabs/wazero/api"

	"github.com/qvajs/ebiten-rive/rive"
)

var (
	i32  = api.ValueTypeI32
	i64  = api.ValueTypeI64
	f32  = api.ValueTypeF32
	f64t = api.ValueTypeF64
)

// instantiateRendererHost exports the drawing callbacks. They only run
// inside a guest call, so r.mu is already held.
func (r *Runtime) instantiateRendererHost(ctx context.Context) error {
	b := r.wr.NewHostModuleBuilder(hostModule)

	export := func(name string, params []api.ValueType, fn func(rr *rive.Renderer, stack []uint64)) {
		b.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				rr := r.renderers[uint32(stack[0])]
				if rr == nil {
					return
				}
				fn(rr, stack[1:])
			}), params, nil).
			Export(name)
	}

	export(hostSave, []api.ValueType{i32}, func(rr *rive.Renderer, _ []uint64) {
		rr.Save()
	})
	export(hostRestore, []api.ValueType{i32}, func(rr *rive.Renderer, _ []uint64) {
		rr.Restore()
	})
	export(hostTransform, []api.ValueType{i32, f32, f32, f32, f32, f32, f32}, func(rr *rive.Renderer, s []uint64) {
		rr.Transform(rive.Mat2D{
			XX: decodeF32(s[0]), XY: decodeF32(s[1]),
			YX: decodeF32(s[2]), YY: decodeF32(s[3]),
			TX: decodeF32(s[4]), TY: decodeF32(s[5]),
		})
	})
	export(hostMoveTo, []api.ValueType{i32, f32, f32}, func(rr *rive.Renderer, s []uint64) {
		rr.MoveTo(decodeF32(s[0]), decodeF32(s[1]))
	})
	export(hostLineTo, []api.ValueType{i32, f32, f32}, func(rr *rive.Renderer, s []uint64) {
		rr.LineTo(decodeF32(s[0]), decodeF32(s[1]))
	})
	export(hostCubicTo, []api.ValueType{i32, f32, f32, f32, f32, f32, f32}, func(rr *rive.Renderer, s []uint64) {
		rr.CubicTo(
			decodeF32(s[0]), decodeF32(s[1]),
			decodeF32(s[2]), decodeF32(s[3]),
			decodeF32(s[4]), decodeF32(s[5]),
		)
	})
	export(hostClose, []api.ValueType{i32}, func(rr *rive.Renderer, _ []uint64) {
		rr.Close()
	})
	export(hostFill, []api.ValueType{i32, i32, i32}, func(rr *rive.Renderer, s []uint64) {
		rule := rive.FillNonZero
		if uint32(s[1]) == 1 {
			rule = rive.FillEvenOdd
		}
		rr.Fill(argb(uint32(s[0])), rule)
	})
	export(hostStroke, []api.ValueType{i32, i32, f32}, func(rr *rive.Renderer, s []uint64) {
		rr.Stroke(argb(uint32(s[0])), decodeF32(s[1]))
	})

	_, err := b.Instantiate(ctx)
	return err
}

func decodeF32(v uint64) float64 {
	return float64(api.DecodeF32(v))
}

// argb unpacks a 0xAARRGGBB colour.
func argb(v uint32) color.NRGBA {
	return color.NRGBA{
		A: uint8(v >> 24),
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}
