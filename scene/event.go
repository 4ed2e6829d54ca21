package scene

// EventType identifies a pointer event.
type EventType uint8

const (
	PointerDown EventType = iota + 1
	PointerUp
	PointerMove
)

func (t EventType) String() string {
	switch t {
	case PointerDown:
		return "pointerdown"
	case PointerUp:
		return "pointerup"
	case PointerMove:
		return "pointermove"
	default:
		return "unknown"
	}
}

// PointerEvent is delivered to node handlers. X and Y are scene
// coordinates.
type PointerEvent struct {
	Type EventType
	// PointerID is 0 for the mouse and 1 and up for touches.
	PointerID int
	X, Y      float64
	Target    *Node
}

type pointerHandler struct {
	id uint32
	fn func(PointerEvent)
}

type handlerRegistry struct {
	down   []pointerHandler
	up     []pointerHandler
	move   []pointerHandler
	nextID uint32
}

func (r *handlerRegistry) list(t EventType) *[]pointerHandler {
	switch t {
	case PointerDown:
		return &r.down
	case PointerUp:
		return &r.up
	case PointerMove:
		return &r.move
	default:
		return nil
	}
}

// Handle removes a registered handler.
type Handle struct {
	id    uint32
	node  *Node
	event EventType
}

// Remove unregisters the handler. Repeated calls are no-ops.
func (h Handle) Remove() {
	if h.node == nil {
		return
	}
	l := h.node.handlers.list(h.event)
	if l == nil {
		return
	}
	s := *l
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pointerHandler{}
			*l = s[:len(s)-1]
			return
		}
	}
}

// On registers fn for events of type t targeting n.
func (n *Node) On(t EventType, fn func(PointerEvent)) Handle {
	l := n.handlers.list(t)
	if l == nil || fn == nil || n.destroyed {
		return Handle{}
	}
	n.handlers.nextID++
	id := n.handlers.nextID
	*l = append(*l, pointerHandler{id: id, fn: fn})
	return Handle{id: id, node: n, event: t}
}

// HandlerCount returns the number of handlers registered for t.
func (n *Node) HandlerCount(t EventType) int {
	if l := n.handlers.list(t); l != nil {
		return len(*l)
	}
	return 0
}

// Emit delivers ev to the handlers of n in registration order.
func (n *Node) Emit(ev PointerEvent) {
	l := n.handlers.list(ev.Type)
	if l == nil || len(*l) == 0 {
		return
	}
	ev.Target = n
	hs := append([]pointerHandler(nil), *l...)
	for _, h := range hs {
		h.fn(ev)
	}
}
