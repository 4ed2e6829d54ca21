package sprite

import (
	"go.uber.org/zap"

	"github.com/qvajs/ebiten-rive/rive"
)

// LoadArtboard binds the named artboard, or the default one for "". The
// current artboard and every instance created on it are released first.
// An unknown name leaves the sprite unchanged.
func (s *Sprite) LoadArtboard(name string) {
	if s.file == nil {
		return
	}
	var (
		next rive.Artboard
		ok   bool
	)
	if name == "" {
		next, ok = s.file.DefaultArtboard()
	} else {
		next, ok = s.file.ArtboardByName(name)
	}
	if !ok {
		s.log.Debug("artboard not found", zap.String("artboard", name))
		return
	}

	if s.artboard != nil {
		s.releaseInstances()
		s.artboard.Delete()
	}
	s.artboard = next
	s.UpdateSize()
}

func (s *Sprite) releaseInstances() {
	for _, m := range s.stateMachines {
		m.Delete()
	}
	s.stateMachines = nil
	for _, a := range s.animations {
		a.Delete()
	}
	s.animations = nil
	s.rebuildInputs()
}

// LoadStateMachines instantiates the named state machines, replacing
// instances with the same name. No names selects the first state machine
// of the artboard. Unknown names are skipped.
func (s *Sprite) LoadStateMachines(names ...string) {
	if s.artboard == nil {
		return
	}
	if len(names) == 0 {
		if def, ok := s.artboard.StateMachineByIndex(0); ok {
			names = []string{def.Name()}
		}
	}
	for _, name := range names {
		def, ok := s.artboard.StateMachineByName(name)
		if !ok {
			s.log.Debug("state machine not found", zap.String("state_machine", name))
			continue
		}
		s.unloadStateMachine(name)
		inst := s.artboard.NewStateMachineInstance(def)
		if inst == nil {
			continue
		}
		s.stateMachines = append(s.stateMachines, inst)
	}
	s.rebuildInputs()
}

// UnloadStateMachine releases every instance with the given name.
func (s *Sprite) UnloadStateMachine(name string) {
	s.unloadStateMachine(name)
	s.rebuildInputs()
}

func (s *Sprite) unloadStateMachine(name string) {
	kept := s.stateMachines[:0]
	for _, m := range s.stateMachines {
		if m.Name() == name {
			m.Delete()
			continue
		}
		kept = append(kept, m)
	}
	clear(s.stateMachines[len(kept):])
	s.stateMachines = kept
}

// PlayAnimations instantiates the named animations, replacing instances
// with the same name. No names selects the first animation, but only when
// no state machine is active. Unknown names are skipped.
func (s *Sprite) PlayAnimations(names ...string) {
	if s.artboard == nil {
		return
	}
	if len(names) == 0 && len(s.stateMachines) == 0 {
		if def, ok := s.artboard.AnimationByIndex(0); ok {
			names = []string{def.Name()}
		}
	}
	for _, name := range names {
		def, ok := s.artboard.AnimationByName(name)
		if !ok {
			s.log.Debug("animation not found", zap.String("animation", name))
			continue
		}
		s.StopAnimation(name)
		inst := s.artboard.NewAnimationInstance(def)
		if inst == nil {
			continue
		}
		s.animations = append(s.animations, inst)
	}
}

// StopAnimation releases every animation instance with the given name.
func (s *Sprite) StopAnimation(name string) {
	kept := s.animations[:0]
	for _, a := range s.animations {
		if a.Name() == name {
			a.Delete()
			continue
		}
		kept = append(kept, a)
	}
	clear(s.animations[len(kept):])
	s.animations = kept
}

// StateMachines returns the active state machine names in order.
func (s *Sprite) StateMachines() []string {
	names := make([]string, len(s.stateMachines))
	for i, m := range s.stateMachines {
		names[i] = m.Name()
	}
	return names
}

// Animations returns the active animation names in order.
func (s *Sprite) Animations() []string {
	names := make([]string, len(s.animations))
	for i, a := range s.animations {
		names[i] = a.Name()
	}
	return names
}
