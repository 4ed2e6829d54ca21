package sprite

import (
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

// Enable starts the frame loop. Enabling an enabled sprite is a no-op.
// Before the load completes it only records the request.
func (s *Sprite) Enable() {
	if s.enabled || s.destroyed {
		return
	}
	s.enabled = true
	s.schedule()
}

// Disable stops the frame loop and cancels the pending callback. A tick
// already running finishes its frame. The last frame time is kept, so the
// first tick after Enable advances by the whole pause.
func (s *Sprite) Disable() {
	if !s.enabled {
		return
	}
	s.enabled = false
	if s.frame != 0 && s.rt != nil {
		s.rt.CancelAnimationFrame(s.frame)
	}
	s.frame = 0
}

// Enabled reports whether the frame loop re-schedules itself.
func (s *Sprite) Enabled() bool { return s.enabled }

// schedule queues one tick unless one is already pending.
func (s *Sprite) schedule() {
	if s.rt == nil || s.frame != 0 || s.destroyed {
		return
	}
	s.frame = s.rt.RequestAnimationFrame(s.tick)
}

// tick is the scheduler callback. now is in milliseconds.
func (s *Sprite) tick(now float64) {
	s.frame = 0
	if s.destroyed {
		return
	}

	elapsed := 0.0
	if s.hasLast {
		elapsed = (now - s.lastTime) / 1000
	}
	s.lastTime, s.hasLast = now, true

	if s.artboard != nil && s.renderer != nil {
		s.advanceStateMachines(elapsed)
		s.advanceAnimations(elapsed)
		s.artboard.Advance(elapsed)
		s.draw()
		s.texture.MarkDirty()
		if s.opts.Debug {
			s.log.Debug("tick", zap.Float64("now", now), zap.Float64("elapsed", elapsed))
		}
	}

	if s.enabled {
		s.schedule()
	}
}

func (s *Sprite) advanceStateMachines(elapsed float64) {
	for _, m := range s.stateMachines {
		m.Advance(elapsed)
		n := m.StateChangedCount()
		if n == 0 {
			continue
		}
		states := make([]string, 0, n)
		for i := 0; i < n; i++ {
			states = append(states, m.StateChangedNameByIndex(i))
		}
		if s.opts.Debug {
			s.log.Debug("state changed", zap.String("state_machine", m.Name()), zap.Strings("states", states))
		}
		if s.opts.OnStateChange != nil {
			s.opts.OnStateChange(states)
		}
	}
}

func (s *Sprite) advanceAnimations(elapsed float64) {
	for _, a := range s.animations {
		a.Advance(elapsed)
		a.Apply(1)
	}
}

func (s *Sprite) draw() {
	r := s.renderer
	r.Clear()
	r.Save()
	s.artboard.Draw(r)
	if s.opts.Debug {
		s.drawBounds()
	}
	r.Restore()
	r.Flush()
}

// drawBounds outlines the artboard in artboard space.
func (s *Sprite) drawBounds() {
	b := s.artboard.Bounds()
	r := s.renderer
	r.MoveTo(b.MinX, b.MinY)
	r.LineTo(b.MaxX, b.MinY)
	r.LineTo(b.MaxX, b.MaxY)
	r.LineTo(b.MinX, b.MaxY)
	r.Close()
	r.Stroke(colornames.Magenta, 2)
}
