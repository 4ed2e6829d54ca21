package rive

import "testing"

func TestFrameSchedulerRunOrder(t *testing.T) {
	var s FrameScheduler
	var order []int
	s.Request(func(float64) { order = append(order, 1) })
	s.Request(func(float64) { order = append(order, 2) })

	if ran := s.Run(16); ran != 2 {
		t.Fatalf("expected 2 callbacks, got %d", ran)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected order %v", order)
	}
	if s.Pending() != 0 {
		t.Fatalf("queue should be empty, got %d", s.Pending())
	}
}

func TestFrameSchedulerRequeueWaitsForNextRun(t *testing.T) {
	var s FrameScheduler
	calls := 0
	var loop FrameCallback
	loop = func(float64) {
		calls++
		s.Request(loop)
	}
	s.Request(loop)

	s.Run(0)
	s.Run(16)
	if calls != 2 {
		t.Fatalf("expected one call per run, got %d", calls)
	}
	if s.Pending() != 1 {
		t.Fatalf("expected re-registered callback pending, got %d", s.Pending())
	}
}

func TestFrameSchedulerCancel(t *testing.T) {
	cases := []struct {
		name   string
		cancel func(s *FrameScheduler, ids []FrameID)
		ran    int
	}{
		{"cancel_pending", func(s *FrameScheduler, ids []FrameID) { s.Cancel(ids[0]) }, 1},
		{"cancel_unknown", func(s *FrameScheduler, ids []FrameID) { s.Cancel(999) }, 2},
		{"cancel_zero", func(s *FrameScheduler, ids []FrameID) { s.Cancel(0) }, 2},
		{"cancel_twice", func(s *FrameScheduler, ids []FrameID) {
			s.Cancel(ids[1])
			s.Cancel(ids[1])
		}, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var s FrameScheduler
			ids := []FrameID{
				s.Request(func(float64) {}),
				s.Request(func(float64) {}),
			}
			if ids[0] == 0 || ids[1] == 0 || ids[0] == ids[1] {
				t.Fatalf("expected distinct non-zero ids, got %v", ids)
			}
			c.cancel(&s, ids)
			if ran := s.Run(0); ran != c.ran {
				t.Fatalf("expected %d callbacks, got %d", c.ran, ran)
			}
		})
	}
}

func TestFrameSchedulerCancelDuringRun(t *testing.T) {
	var s FrameScheduler
	secondRan := false
	var second FrameID
	s.Request(func(float64) { s.Cancel(second) })
	second = s.Request(func(float64) { secondRan = true })

	if ran := s.Run(0); ran != 1 {
		t.Fatalf("expected 1 callback, got %d", ran)
	}
	if secondRan {
		t.Fatalf("cancelled callback should not run")
	}
}

func TestFrameSchedulerPassesTimestamp(t *testing.T) {
	var s FrameScheduler
	var got float64
	s.Request(func(now float64) { got = now })
	s.Run(1234.5)
	if got != 1234.5 {
		t.Fatalf("expected timestamp 1234.5, got %v", got)
	}
}

func TestFrameSchedulerNestedRunIsIgnored(t *testing.T) {
	var s FrameScheduler
	var order []string
	nested := -1
	s.Request(func(now float64) {
		order = append(order, "first")
		s.Request(func(float64) { order = append(order, "queued") })
		nested = s.Run(now)
	})
	s.Request(func(float64) { order = append(order, "second") })

	if ran := s.Run(0); ran != 2 {
		t.Fatalf("expected 2 callbacks, got %d", ran)
	}
	if nested != 0 {
		t.Fatalf("nested Run should run nothing, ran %d", nested)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected order %v", order)
	}
	if s.Pending() != 1 {
		t.Fatalf("callback requested during Run should stay queued, pending=%d", s.Pending())
	}
	if ran := s.Run(1); ran != 1 || order[2] != "queued" {
		t.Fatalf("queued callback should run next, ran=%d order=%v", ran, order)
	}
}
