package scene

import (
	"github.com/hajimehoshi/ebiten/v2"
)

const maxPointers = 10

type pointerState struct {
	down         bool
	lastX, lastY float64
	captured     *Node
}

type updater struct {
	id uint32
	fn func()
}

// Scene owns a node tree and routes pointer input to it.
type Scene struct {
	root *Node

	pointers  [maxPointers]pointerState
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool
	touchIDs  []ebiten.TouchID
	hitBuf    []*Node

	updaters      []updater
	nextUpdaterID uint32
}

// New returns a scene with an empty root.
func New() *Scene {
	return &Scene{root: NewNode("root")}
}

func (s *Scene) Root() *Node { return s.root }

// AddUpdater registers fn to run at the start of every Update. The
// returned func unregisters it.
func (s *Scene) AddUpdater(fn func()) (remove func()) {
	if fn == nil {
		return func() {}
	}
	s.nextUpdaterID++
	id := s.nextUpdaterID
	s.updaters = append(s.updaters, updater{id: id, fn: fn})
	return func() {
		for i := range s.updaters {
			if s.updaters[i].id == id {
				s.updaters = append(s.updaters[:i], s.updaters[i+1:]...)
				return
			}
		}
	}
}

// Update runs the updaters and then polls mouse and touch input.
func (s *Scene) Update() {
	us := append([]updater(nil), s.updaters...)
	for _, u := range us {
		u.fn()
	}

	mx, my := ebiten.CursorPosition()
	s.pointer(0, float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	s.touches()
}

func (s *Scene) touches() {
	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])

	var active [maxPointers]bool
	for _, tid := range s.touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.pointer(slot, float64(tx), float64(ty), true)
	}

	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !active[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.pointer(i, ps.lastX, ps.lastY, false)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// pointer turns sampled pointer state into down, up and move events.
func (s *Scene) pointer(id int, x, y float64, pressed bool) {
	ps := &s.pointers[id]
	moved := x != ps.lastX || y != ps.lastY
	switch {
	case pressed && !ps.down:
		if moved {
			s.Dispatch(PointerEvent{Type: PointerMove, PointerID: id, X: x, Y: y})
		}
		s.Dispatch(PointerEvent{Type: PointerDown, PointerID: id, X: x, Y: y})
	case !pressed && ps.down:
		s.Dispatch(PointerEvent{Type: PointerUp, PointerID: id, X: x, Y: y})
	case moved:
		s.Dispatch(PointerEvent{Type: PointerMove, PointerID: id, X: x, Y: y})
	}
}

// Dispatch routes ev to the top-most interactive node under it. While a
// pointer is down its events go to the node that received the down. It
// returns the node that received the event, or nil.
func (s *Scene) Dispatch(ev PointerEvent) *Node {
	if ev.PointerID < 0 || ev.PointerID >= maxPointers {
		return nil
	}
	ps := &s.pointers[ev.PointerID]
	ps.lastX, ps.lastY = ev.X, ev.Y
	if ps.captured != nil && ps.captured.destroyed {
		ps.captured = nil
	}

	target := ps.captured
	if target == nil {
		target = s.HitTest(ev.X, ev.Y)
	}

	switch ev.Type {
	case PointerDown:
		ps.down = true
		ps.captured = target
	case PointerUp:
		ps.down = false
		ps.captured = nil
	}

	if target == nil {
		return nil
	}
	target.Emit(ev)
	return target
}

// HitTest returns the top-most visible interactive node containing the
// scene point.
func (s *Scene) HitTest(x, y float64) *Node {
	s.hitBuf = collectInteractive(s.root, s.hitBuf[:0])
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		if n := s.hitBuf[i]; n.Contains(x, y) {
			return n
		}
	}
	return nil
}

func collectInteractive(n *Node, buf []*Node) []*Node {
	if !n.Visible {
		return buf
	}
	if n.Interactive {
		buf = append(buf, n)
	}
	for _, c := range n.children {
		buf = collectInteractive(c, buf)
	}
	return buf
}

// Draw renders the tree onto screen in depth-first order.
func (s *Scene) Draw(screen *ebiten.Image) {
	drawNode(screen, s.root)
}

func drawNode(screen *ebiten.Image, n *Node) {
	if !n.Visible {
		return
	}
	if img := n.texture.Image(); img != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM = n.WorldGeoM()
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)
	}
	for _, c := range n.children {
		drawNode(screen, c)
	}
}
