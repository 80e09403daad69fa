package log

// EventType enumerates all observable engine events.
type EventType int

const (
	EventNewGame EventType = iota
	EventPhaseChange
	EventBoardChange
	EventSelectionChange
	EventScoreChange
	EventDeal
	EventSetFound
	EventNotASet
	EventRejected // input refused while a resolution is pending
	EventGameOver
)

func (e EventType) String() string {
	switch e {
	case EventNewGame:
		return "NewGame"
	case EventPhaseChange:
		return "PhaseChange"
	case EventBoardChange:
		return "BoardChange"
	case EventSelectionChange:
		return "SelectionChange"
	case EventScoreChange:
		return "ScoreChange"
	case EventDeal:
		return "Deal"
	case EventSetFound:
		return "SetFound"
	case EventNotASet:
		return "NotASet"
	case EventRejected:
		return "Rejected"
	case EventGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Game    int       // which game since the engine was created (1-based)
	Phase   string    // phase after the event (e.g. "Selecting")
	Type    EventType // event type
	Cards   []string  // cards involved, in wire form
	Score   int       // score after the event
	Details string    // human-readable detail string
}
