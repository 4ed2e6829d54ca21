package scene

import "github.com/hajimehoshi/ebiten/v2"

// Source is a pixel buffer a Texture mirrors. Pixels are premultiplied
// RGBA, row-major.
type Source interface {
	Size() (int, int)
	Pixels() []byte
	Version() uint64
}

// Texture uploads a Source into an ebiten image on demand.
type Texture struct {
	src      Source
	img      *ebiten.Image
	version  uint64
	dirty    bool
	disposed bool
}

// NewTexture returns a dirty texture over src.
func NewTexture(src Source) *Texture {
	return &Texture{src: src, dirty: true}
}

// Size returns the source dimensions.
func (t *Texture) Size() (int, int) {
	if t == nil || t.src == nil || t.disposed {
		return 0, 0
	}
	return t.src.Size()
}

// MarkDirty forces a re-upload on the next Image call.
func (t *Texture) MarkDirty() {
	if t != nil {
		t.dirty = true
	}
}

// Dirty reports whether the next Image call uploads pixels.
func (t *Texture) Dirty() bool {
	if t == nil || t.src == nil || t.disposed {
		return false
	}
	return t.dirty || t.version != t.src.Version()
}

// Image returns the uploaded image, reallocating it when the source size
// changed. It must be called from the ebiten game loop.
func (t *Texture) Image() *ebiten.Image {
	if t == nil || t.src == nil || t.disposed {
		return nil
	}
	w, h := t.src.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	if t.img != nil {
		if b := t.img.Bounds(); b.Dx() != w || b.Dy() != h {
			t.img.Deallocate()
			t.img = nil
		}
	}
	if t.img == nil {
		t.img = ebiten.NewImage(w, h)
		t.dirty = true
	}
	if t.Dirty() {
		if px := t.src.Pixels(); len(px) == 4*w*h {
			t.img.WritePixels(px)
		}
		t.version = t.src.Version()
		t.dirty = false
	}
	return t.img
}

// Dispose releases the GPU image.
func (t *Texture) Dispose() {
	if t == nil || t.disposed {
		return
	}
	t.disposed = true
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
}
