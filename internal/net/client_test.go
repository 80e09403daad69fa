package net

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/benbenpetit/Seeet/internal/game"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    []ClientMessage
		quit    bool
		wantErr bool
	}{
		{"", nil, false, false},
		{"1 5 7", []ClientMessage{{Type: CmdSelect, Index: 0}, {Type: CmdSelect, Index: 4}, {Type: CmdSelect, Index: 6}}, false, false},
		{"m", []ClientMessage{{Type: CmdMore}}, false, false},
		{"more 6", []ClientMessage{{Type: CmdMore, Count: 6}}, false, false},
		{"m zero", nil, false, true},
		{"H", []ClientMessage{{Type: CmdHint}}, false, false},
		{"r", []ClientMessage{{Type: CmdReset}}, false, false},
		{"s", []ClientMessage{{Type: CmdState}}, false, false},
		{"q", []ClientMessage{{Type: CmdQuit}}, true, false},
		{"0", nil, false, true},
		{"2 x", nil, false, true},
		{"?", nil, false, true},
	}
	for _, tt := range tests {
		got, quit, err := ParseCommand(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q) error = %v", tt.line, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) || quit != tt.quit {
			t.Errorf("ParseCommand(%q) = %+v, %v; want %+v, %v", tt.line, got, quit, tt.want, tt.quit)
		}
	}
}

func TestFormatBoard(t *testing.T) {
	snap := game.State{
		Game:      2,
		Board:     game.Board(game.FullDeck()[:4]),
		Score:     5,
		Phase:     game.PhaseSelecting,
		DeckCount: 60,
	}
	snap.Selection = []game.Card{snap.Board[3]}
	out := FormatBoard(BuildStateView(snap, true))

	for _, want := range []string{"Game 2", "Score 5", "Deck 60", "Selecting", "[ 1] SOLID-GREEN-OVAL-1", "*[ 4] SOLID-GREEN-LOZENGE-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("board missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "m for more") {
		t.Error("more-cards prompt shown with a Set on the board")
	}

	over := FormatBoard(&StateView{Over: true})
	if !strings.Contains(over, "GAME OVER") {
		t.Errorf("over board = %q", over)
	}
}

func TestPlayLocal(t *testing.T) {
	var out syncBuffer
	in := strings.NewReader("h\nq\n")
	cfg := game.EngineConfig{NoShuffle: true}

	done := make(chan error, 1)
	go func() { done <- PlayLocal(context.Background(), cfg, in, &out) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("PlayLocal = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PlayLocal did not return")
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Errorf("no help printed:\n%s", out.String())
	}
}
