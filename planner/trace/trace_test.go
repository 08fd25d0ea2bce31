package trace

import "testing"

func TestNilRecorderRecordIsNoop(t *testing.T) {
	var r *Recorder
	r.Record(EventStarvationFallback, 0, "queue empty")
	if r != nil {
		t.Fatal("expected nil recorder to stay nil")
	}
}

func TestRecordAppendsEvent(t *testing.T) {
	r := &Recorder{}
	r.Record(EventJunctionReLimit, 3, "lowered accel to 1200")
	if len(r.Events) != 1 {
		t.Fatalf("want 1 event, got %d", len(r.Events))
	}
	if r.Events[0].MoveIndex != 3 {
		t.Fatalf("want move index 3, got %d", r.Events[0].MoveIndex)
	}
}

func TestSummarizeNilRecorderReturnsZeroValue(t *testing.T) {
	s := Summarize(nil)
	if s.TotalEvents != 0 {
		t.Fatalf("want 0 events, got %d", s.TotalEvents)
	}
}

func TestSummarizeCountsByKind(t *testing.T) {
	r := &Recorder{}
	r.Record(EventJunctionReLimit, 0, "a")
	r.Record(EventJunctionReLimit, 1, "b")
	r.Record(EventStarvationFallback, 2, "c")
	s := Summarize(r)
	if s.TotalEvents != 3 {
		t.Fatalf("want 3 total, got %d", s.TotalEvents)
	}
	if s.ByKind[EventJunctionReLimit] != 2 {
		t.Fatalf("want 2 junction relimits, got %d", s.ByKind[EventJunctionReLimit])
	}
}

func TestEventKindStringIsHumanReadable(t *testing.T) {
	if EventAccelCompClamped.String() != "accel_comp_clamped" {
		t.Fatalf("unexpected string: %s", EventAccelCompClamped.String())
	}
}
