package net

// Message types for the JSON protocol. The same envelopes travel over TCP
// (one JSON object per line) and over websockets (one object per frame).

// --- Server → Client messages ---

const (
	MsgHello = "hello" // first message on a websocket, carries the session id
	MsgState = "state" // full state snapshot, after every command and phase change
	MsgEvent = "event" // one engine event
	MsgHint  = "hint"  // answer to a hint request
	MsgError = "error" // malformed or throttled command
)

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "hello"
	Session string `json:"session,omitempty"`

	// For "event"
	Event *EventView `json:"event,omitempty"`

	// For "state" and "hint"
	State   *StateView `json:"state,omitempty"`
	Outcome string     `json:"outcome,omitempty"` // result of the command that produced this state

	// For "hint"
	Hint  []CardView `json:"hint,omitempty"`
	Found bool       `json:"found,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a game event for the client.
type EventView struct {
	Seq     int      `json:"seq"`
	Game    int      `json:"game"`
	Phase   string   `json:"phase"`
	Type    string   `json:"type"`
	Cards   []string `json:"cards,omitempty"`
	Score   int      `json:"score"`
	Details string   `json:"details"`
}

// CardView describes one card on the board.
type CardView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"` // wire form, e.g. "SOLID-GREEN-OVAL-1"
	Filling  string `json:"filling"`
	Color    string `json:"color"`
	Shape    string `json:"shape"`
	Size     int    `json:"size"`
	Selected bool   `json:"selected,omitempty"`
}

// StateView is the engine state as shown to the presentation layer.
type StateView struct {
	Game      int        `json:"game"`
	Board     []CardView `json:"board"`
	Selection []string   `json:"selection"`
	Score     int        `json:"score"`
	Phase     string     `json:"phase"`
	DeckCount int        `json:"deck_count"`
	Pending   bool       `json:"pending"`
	HasSet    bool       `json:"has_set"`
	Over      bool       `json:"over"`
}

// --- Client → Server messages ---

const (
	CmdSelect = "select" // by Index, or by Card name when Card is set
	CmdMore   = "more"   // Count cards, 0 = configured default
	CmdReset  = "reset"
	CmdHint   = "hint"
	CmdState  = "state"
	CmdQuit   = "quit"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "select"
	Index int    `json:"index,omitempty"`
	Card  string `json:"card,omitempty"`

	// For "more"
	Count int `json:"count,omitempty"`
}
