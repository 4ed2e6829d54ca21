package scene

import (
	"math"
	"testing"
)

type fakeSource struct {
	w, h    int
	version uint64
}

func (f *fakeSource) Size() (int, int) { return f.w, f.h }
func (f *fakeSource) Pixels() []byte  { return make([]byte, 4*f.w*f.h) }
func (f *fakeSource) Version() uint64 { return f.version }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNodeToLocal(t *testing.T) {
	cases := []struct {
		name   string
		setup  func() *Node
		gx, gy float64
		lx, ly float64
	}{
		{
			name:  "identity",
			setup: func() *Node { return NewNode("n") },
			gx:    10, gy: 20, lx: 10, ly: 20,
		},
		{
			name: "translate_scale",
			setup: func() *Node {
				n := NewNode("n")
				n.X, n.Y = 100, 50
				n.ScaleX, n.ScaleY = 2, 4
				return n
			},
			gx: 120, gy: 90, lx: 10, ly: 10,
		},
		{
			name: "rotated",
			setup: func() *Node {
				n := NewNode("n")
				n.Rotation = math.Pi / 2
				return n
			},
			gx: 0, gy: 10, lx: 10, ly: 0,
		},
		{
			name: "parented",
			setup: func() *Node {
				p := NewNode("p")
				p.X, p.Y = 10, 10
				p.ScaleX, p.ScaleY = 2, 2
				c := NewNode("c")
				c.X, c.Y = 5, 5
				p.AddChild(c)
				return c
			},
			// world = (local + 5) * 2 + 10
			gx: 40, gy: 30, lx: 10, ly: 5,
		},
		{
			name: "degenerate_scale",
			setup: func() *Node {
				n := NewNode("n")
				n.ScaleX = 0
				return n
			},
			gx: 7, gy: 8, lx: 7, ly: 8,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := c.setup()
			lx, ly := n.ToLocal(c.gx, c.gy)
			if !near(lx, c.lx) || !near(ly, c.ly) {
				t.Fatalf("ToLocal(%v, %v) = (%v, %v), want (%v, %v)", c.gx, c.gy, lx, ly, c.lx, c.ly)
			}
			if c.name == "degenerate_scale" {
				return
			}
			gx, gy := n.ToGlobal(lx, ly)
			if !near(gx, c.gx) || !near(gy, c.gy) {
				t.Fatalf("ToGlobal round trip = (%v, %v), want (%v, %v)", gx, gy, c.gx, c.gy)
			}
		})
	}
}

func TestNodeChildren(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.AddChild(c)
	b.AddChild(c)
	if c.Parent() != b || len(a.Children()) != 0 || len(b.Children()) != 1 {
		t.Fatalf("AddChild should reparent")
	}
	b.RemoveChild(c)
	if c.Parent() != nil || len(b.Children()) != 0 {
		t.Fatalf("RemoveChild should detach")
	}
	a.AddChild(a)
	if len(a.Children()) != 0 {
		t.Fatalf("node must not parent itself")
	}
}

func TestNodeContains(t *testing.T) {
	n := NewNode("n")
	if n.Contains(0, 0) {
		t.Fatalf("node without texture should not be hit")
	}
	n.SetTexture(NewTexture(&fakeSource{w: 100, h: 50}))
	n.X, n.Y = 10, 10

	cases := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{109, 59, true},
		{110, 30, false},
		{5, 30, false},
		{50, 60, false},
	}
	for _, c := range cases {
		if got := n.Contains(c.x, c.y); got != c.want {
			t.Fatalf("Contains(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestHandlers(t *testing.T) {
	n := NewNode("n")
	var got []string
	h1 := n.On(PointerDown, func(ev PointerEvent) { got = append(got, "one") })
	n.On(PointerDown, func(ev PointerEvent) {
		if ev.Target != n {
			t.Errorf("expected target to be the node")
		}
		got = append(got, "two")
	})

	n.Emit(PointerEvent{Type: PointerDown})
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("expected handlers in order, got %v", got)
	}

	h1.Remove()
	h1.Remove()
	got = nil
	n.Emit(PointerEvent{Type: PointerDown})
	if len(got) != 1 || got[0] != "two" {
		t.Fatalf("expected only second handler, got %v", got)
	}
	if n.HandlerCount(PointerDown) != 1 || n.HandlerCount(PointerUp) != 0 {
		t.Fatalf("unexpected handler counts")
	}
	Handle{}.Remove()
}

func TestDestroy(t *testing.T) {
	root := NewNode("root")
	n := NewNode("n")
	child := NewNode("child")
	root.AddChild(n)
	n.AddChild(child)
	n.On(PointerMove, func(PointerEvent) {})

	n.Destroy()
	n.Destroy()
	if !n.Destroyed() || n.Parent() != nil || len(root.Children()) != 0 {
		t.Fatalf("destroy should detach")
	}
	if n.HandlerCount(PointerMove) != 0 {
		t.Fatalf("destroy should drop handlers")
	}
	if child.Parent() != nil {
		t.Fatalf("children should be detached")
	}
	if h := n.On(PointerDown, func(PointerEvent) {}); h != (Handle{}) {
		t.Fatalf("destroyed node should not accept handlers")
	}
}

func interactiveNode(name string, x, y float64, w, h int) *Node {
	n := NewNode(name)
	n.X, n.Y = x, y
	n.Interactive = true
	n.SetTexture(NewTexture(&fakeSource{w: w, h: h}))
	return n
}

func TestDispatchRouting(t *testing.T) {
	s := New()
	bottom := interactiveNode("bottom", 0, 0, 100, 100)
	top := interactiveNode("top", 50, 50, 100, 100)
	s.Root().AddChild(bottom)
	s.Root().AddChild(top)

	var log []string
	for _, n := range []*Node{bottom, top} {
		name := n.Name
		for _, typ := range []EventType{PointerDown, PointerUp, PointerMove} {
			typ := typ
			n.On(typ, func(PointerEvent) { log = append(log, name+":"+typ.String()) })
		}
	}

	if got := s.Dispatch(PointerEvent{Type: PointerMove, X: 75, Y: 75}); got != top {
		t.Fatalf("overlap should hit the top-most node, got %v", got)
	}
	if got := s.Dispatch(PointerEvent{Type: PointerMove, X: 10, Y: 10}); got != bottom {
		t.Fatalf("expected bottom, got %v", got)
	}
	if got := s.Dispatch(PointerEvent{Type: PointerMove, X: 500, Y: 500}); got != nil {
		t.Fatalf("expected miss, got %v", got.Name)
	}

	// Pressed pointer stays captured by the node it went down on.
	s.Dispatch(PointerEvent{Type: PointerDown, X: 10, Y: 10})
	s.Dispatch(PointerEvent{Type: PointerMove, X: 120, Y: 120})
	s.Dispatch(PointerEvent{Type: PointerUp, X: 120, Y: 120})
	s.Dispatch(PointerEvent{Type: PointerMove, X: 121, Y: 121})

	want := []string{
		"top:pointermove",
		"bottom:pointermove",
		"bottom:pointerdown",
		"bottom:pointermove",
		"bottom:pointerup",
		"top:pointermove",
	}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("event %d: expected %q, got %q (all %v)", i, want[i], log[i], log)
		}
	}
}

func TestDispatchSkipsHiddenAndPassive(t *testing.T) {
	s := New()
	hidden := interactiveNode("hidden", 0, 0, 10, 10)
	hidden.Visible = false
	passive := interactiveNode("passive", 0, 0, 10, 10)
	passive.Interactive = false
	s.Root().AddChild(hidden)
	s.Root().AddChild(passive)

	if got := s.Dispatch(PointerEvent{Type: PointerDown, X: 5, Y: 5}); got != nil {
		t.Fatalf("expected no target, got %v", got.Name)
	}
}

func TestDispatchReleasesDestroyedCapture(t *testing.T) {
	s := New()
	n := interactiveNode("n", 0, 0, 10, 10)
	s.Root().AddChild(n)
	s.Dispatch(PointerEvent{Type: PointerDown, X: 5, Y: 5})
	n.Destroy()
	if got := s.Dispatch(PointerEvent{Type: PointerMove, X: 6, Y: 6}); got != nil {
		t.Fatalf("destroyed node should not receive events")
	}
}

func TestDispatchInvalidPointer(t *testing.T) {
	s := New()
	if s.Dispatch(PointerEvent{Type: PointerDown, PointerID: maxPointers}) != nil {
		t.Fatalf("out of range pointer should be ignored")
	}
}

func TestAddUpdater(t *testing.T) {
	s := New()
	calls := 0
	remove := s.AddUpdater(func() { calls++ })
	for _, u := range s.updaters {
		u.fn()
	}
	remove()
	remove()
	if calls != 1 || len(s.updaters) != 0 {
		t.Fatalf("expected one call and no updaters, got %d calls, %d updaters", calls, len(s.updaters))
	}
}

func TestTextureDirty(t *testing.T) {
	src := &fakeSource{w: 4, h: 4}
	tex := NewTexture(src)
	if !tex.Dirty() {
		t.Fatalf("new texture should be dirty")
	}
	tex.dirty = false
	tex.version = src.version
	if tex.Dirty() {
		t.Fatalf("texture should be clean")
	}
	src.version++
	if !tex.Dirty() {
		t.Fatalf("source version change should dirty the texture")
	}
	tex.version = src.version
	tex.MarkDirty()
	if !tex.Dirty() {
		t.Fatalf("MarkDirty should dirty the texture")
	}
	tex.Dispose()
	if tex.Dirty() || tex.Image() != nil {
		t.Fatalf("disposed texture should be inert")
	}
	if w, h := tex.Size(); w != 0 || h != 0 {
		t.Fatalf("disposed texture should report zero size")
	}
}
