package rive

// FrameID identifies a pending animation-frame callback. Zero is never issued.
type FrameID uint64

// FrameCallback receives the frame timestamp in milliseconds.
type FrameCallback func(now float64)

type pendingFrame struct {
	id FrameID
	cb FrameCallback
}

// FrameScheduler is the runtime's own animation-frame queue. Callbacks
// requested while Run is executing wait for the next Run. Run is not
// re-entrant: a nested call from a callback runs nothing.
type FrameScheduler struct {
	nextID  FrameID
	pending []pendingFrame
	running []pendingFrame
	inRun   bool
}

// Request queues cb for the next Run and returns its id.
func (s *FrameScheduler) Request(cb FrameCallback) FrameID {
	if s == nil || cb == nil {
		return 0
	}
	s.nextID++
	s.pending = append(s.pending, pendingFrame{id: s.nextID, cb: cb})
	return s.nextID
}

// Cancel drops a pending callback. Unknown or already-run ids are ignored.
func (s *FrameScheduler) Cancel(id FrameID) {
	if s == nil || id == 0 {
		return
	}
	for i := range s.running {
		if s.running[i].id == id {
			s.running[i].cb = nil
			return
		}
	}
	for i := range s.pending {
		if s.pending[i].id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Run invokes every callback queued before the call, in request order,
// and returns how many ran.
func (s *FrameScheduler) Run(now float64) int {
	if s == nil || s.inRun || len(s.pending) == 0 {
		return 0
	}
	s.inRun = true
	defer func() {
		s.running = nil
		s.inRun = false
	}()
	s.running = s.pending
	s.pending = nil
	ran := 0
	for i := range s.running {
		cb := s.running[i].cb
		if cb == nil {
			continue
		}
		s.running[i].cb = nil
		ran++
		cb(now)
	}
	return ran
}

// Pending reports the number of queued callbacks.
func (s *FrameScheduler) Pending() int {
	if s == nil {
		return 0
	}
	return len(s.pending)
}
