package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	if got := l.LastEvent(); got.Type != EventNewGame || got.Seq != 0 {
		t.Fatalf("empty LastEvent = %+v", got)
	}

	l.Log(NewGameEvent(1, "Idle", 3, 78))
	l.Log(NewDealEvent(1, "Idle", []string{"SOLID-GREEN-OVAL-1"}, 77, 0))
	l.Log(NewDealEvent(1, "Idle", []string{"SOLID-GREEN-OVAL-2"}, 76, 0))

	events := l.Events()
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d seq = %d", i, e.Seq)
		}
	}
	if deals := l.EventsOfType(EventDeal); len(deals) != 2 {
		t.Errorf("deals = %d", len(deals))
	}
	if last := l.LastEvent(); !strings.Contains(last.Details, "76 left") {
		t.Errorf("last = %q", last.Details)
	}

	// Events returns a copy.
	events[0].Details = "changed"
	if l.Events()[0].Details == "changed" {
		t.Error("Events exposes internal slice")
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewSetFoundEvent(2, "Evaluating", []string{"A", "B", "C"}, 4))
	l.Log(NewGameOverEvent(2, "Idle", 9))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "G2  Evaluating        | Set! A, B, C" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "score 9") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if len(l.Events()) != 2 {
		t.Error("TextLogger does not keep events")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventNewGame, "NewGame"},
		{EventPhaseChange, "PhaseChange"},
		{EventSetFound, "SetFound"},
		{EventNotASet, "NotASet"},
		{EventGameOver, "GameOver"},
		{EventType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestFormatAll(t *testing.T) {
	out := FormatAll([]GameEvent{
		NewPhaseChangeEvent(1, "Idle", "Selecting", 0),
		NewScoreChangeEvent(1, "Idle", 0, 1),
	})
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "Phase Idle → Selecting") || !strings.Contains(out, "Score: 0 → 1") {
		t.Errorf("FormatAll = %q", out)
	}
}

func TestStreamLoggerKeepsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := NewStreamLogger(&buf)
	for i := 0; i < 50; i++ {
		l.Log(NewDealEvent(1, "Idle", []string{"SOLID-GREEN-OVAL-1"}, 77, 0))
	}
	if got := strings.Count(buf.String(), "\n"); got != 50 {
		t.Errorf("lines = %d, want 50", got)
	}
	if !strings.HasPrefix(buf.String(), "G1  Idle              | Dealt 1 card(s)") {
		t.Errorf("first line = %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}
	if l.Events() != nil {
		t.Error("StreamLogger retained events")
	}
}

func TestDiscardLogger(t *testing.T) {
	var l EventLogger = NewDiscardLogger()
	l.Log(NewGameEvent(1, "Idle", 3, 78))
	if l.Events() != nil {
		t.Error("DiscardLogger retained events")
	}
}
