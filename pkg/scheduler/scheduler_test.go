package scheduler

import "testing"

func TestEmptySpecDisablesScheduling(t *testing.T) {
	s := New("", func() { t.Error("job must not run") })
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestInvalidSpecRejected(t *testing.T) {
	s := New("not a cron spec", func() {})
	if err := s.Start(); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestValidSpecStartsAndStops(t *testing.T) {
	s := New("@every 12h", func() {})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
