package refresh_test

import (
	"errors"
	"testing"

	"taskpro/internal/refresh"
)

func TestCounter_BumpIsMonotonic(t *testing.T) {
	c := refresh.NewCounter()
	if c.Value() != 0 {
		t.Fatalf("expected 0, got %d", c.Value())
	}
	prev := c.Value()
	for i := 0; i < 5; i++ {
		v := c.Bump()
		if v <= prev {
			t.Fatalf("expected %d > %d", v, prev)
		}
		prev = v
	}
	if c.Value() != 5 {
		t.Errorf("expected 5, got %d", c.Value())
	}
}

func TestCounter_SubscribeSeesLatest(t *testing.T) {
	c := refresh.NewCounter()
	ch, cancel := c.Subscribe()
	defer cancel()

	c.Bump()
	c.Bump()
	c.Bump()

	select {
	case v := <-ch:
		if v != 3 {
			t.Errorf("expected latest value 3, got %d", v)
		}
	default:
		t.Fatal("expected a notification")
	}

	select {
	case v := <-ch:
		t.Errorf("expected no further notification, got %d", v)
	default:
	}
}

func TestCounter_CancelStopsNotifications(t *testing.T) {
	c := refresh.NewCounter()
	ch, cancel := c.Subscribe()
	cancel()
	c.Bump()
	select {
	case v := <-ch:
		t.Errorf("expected nothing after cancel, got %d", v)
	default:
	}
}

func TestSnapshot_Observe(t *testing.T) {
	var s refresh.Snapshot[int]
	if !s.Observe(0) {
		t.Error("first observation should report a change")
	}
	if s.Observe(0) {
		t.Error("same value should not report a change")
	}
	if !s.Observe(1) {
		t.Error("new value should report a change")
	}
}

func TestSnapshot_StaleTicketDropped(t *testing.T) {
	var s refresh.Snapshot[[]string]
	old := s.Begin()
	latest := s.Begin()

	if !s.Apply(latest, []string{"new"}, nil) {
		t.Fatal("latest ticket should apply")
	}
	if s.Apply(old, []string{"old"}, nil) {
		t.Error("stale ticket should be dropped")
	}
	got, _ := s.Get()
	if len(got) != 1 || got[0] != "new" {
		t.Errorf("expected [new], got %v", got)
	}
}

func TestSnapshot_ErrorKeepsPreviousValue(t *testing.T) {
	var s refresh.Snapshot[int]
	s.Apply(s.Begin(), 42, nil)

	boom := errors.New("boom")
	if !s.Apply(s.Begin(), 0, boom) {
		t.Fatal("failed fetch with current ticket should apply")
	}
	v, loaded := s.Get()
	if !loaded || v != 42 {
		t.Errorf("expected previous value 42 to survive, got %d (loaded=%v)", v, loaded)
	}
	if !errors.Is(s.Err(), boom) {
		t.Errorf("expected boom, got %v", s.Err())
	}

	s.Apply(s.Begin(), 7, nil)
	if s.Err() != nil {
		t.Errorf("expected error cleared after success, got %v", s.Err())
	}
}

func TestSnapshot_ClosedIgnoresCompletions(t *testing.T) {
	var s refresh.Snapshot[int]
	tk := s.Begin()
	s.Close()
	if s.Apply(tk, 1, nil) {
		t.Error("closed snapshot should ignore completions")
	}
	if _, loaded := s.Get(); loaded {
		t.Error("nothing should be loaded")
	}
}

func TestSnapshot_ResetSupersedesInFlight(t *testing.T) {
	var s refresh.Snapshot[int]
	s.Apply(s.Begin(), 1, nil)
	inFlight := s.Begin()
	s.Reset()
	if s.Apply(inFlight, 2, nil) {
		t.Error("fetch issued before reset should be dropped")
	}
	if _, loaded := s.Get(); loaded {
		t.Error("reset should drop the value")
	}
}
