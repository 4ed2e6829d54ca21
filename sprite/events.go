package sprite

import (
	"github.com/qvajs/ebiten-rive/rive"
	"github.com/qvajs/ebiten-rive/scene"
)

func (s *Sprite) bindEvents() {
	s.node.Interactive = true
	s.handles = append(s.handles,
		s.node.On(scene.PointerDown, func(ev scene.PointerEvent) {
			x, y := s.translatePoint(ev.X, ev.Y)
			for _, m := range s.stateMachines {
				m.PointerDown(x, y)
			}
		}),
		s.node.On(scene.PointerUp, func(ev scene.PointerEvent) {
			x, y := s.translatePoint(ev.X, ev.Y)
			for _, m := range s.stateMachines {
				m.PointerUp(x, y)
			}
		}),
		s.node.On(scene.PointerMove, func(ev scene.PointerEvent) {
			x, y := s.translatePoint(ev.X, ev.Y)
			for _, m := range s.stateMachines {
				m.PointerMove(x, y)
			}
		}),
	)
}

// translatePoint maps a scene point into artboard space. Before the first
// layout the aligned transform is the identity.
func (s *Sprite) translatePoint(gx, gy float64) (float64, float64) {
	x, y := s.node.ToLocal(gx, gy)
	m := rive.Identity()
	if s.aligned != nil {
		m = *s.aligned
	}
	if m.XX == 0 || m.YY == 0 {
		return x - m.TX, y - m.TY
	}
	return (x - m.TX) / m.XX, (y - m.TY) / m.YY
}
