package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/benbenpetit/Seeet/internal/game"
	seeetnet "github.com/benbenpetit/Seeet/internal/net"
)

var (
	// sessionMu guards activeSession across concurrent tool calls.
	sessionMu sync.Mutex

	// activeSession is the singleton game session (one per stdio process).
	activeSession *GameSession

	// rules is the engine configuration for new games, set by main.
	rules game.EngineConfig
)

// SetRules sets the engine configuration used by start_game.
func SetRules(cfg game.EngineConfig) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	rules = cfg
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(selectCardTool(), handleSelectCard)
	s.AddTool(requestMoreCardsTool(), handleRequestMoreCards)
	s.AddTool(resetGameTool(), handleResetGame)
	s.AddTool(getGameStateTool(), handleGetGameState)
	s.AddTool(getHintTool(), handleGetHint)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new game of Set. Three cards are dealt face up; find three cards that form a Set "+
			"(for each of filling, color, shape and size the three cards are all the same or all different). "+
			"Returns the initial board. Any running game is replaced."),
		mcp.WithNumber("seed", mcp.Description("RNG seed for a reproducible deal (0 or omitted for random)")),
		mcp.WithNumber("initial_board_size", mcp.Description("Cards dealt at the start (default from configuration)")),
		mcp.WithBoolean("auto_replenish", mcp.Description("Refill the board to its initial size after each Set")),
	)
}

func selectCardTool() mcp.Tool {
	return mcp.NewTool("select_card",
		mcp.WithDescription("Toggle one card in the selection, by board index or by name. Selecting a third card evaluates the "+
			"selection; the response is returned once the Set (or miss) has been resolved."),
		mcp.WithNumber("index", mcp.Description("0-based board index of the card")),
		mcp.WithString("card", mcp.Description("Card name such as 'SOLID-GREEN-OVAL-1'; takes precedence over index")),
	)
}

func requestMoreCardsTool() mcp.Tool {
	return mcp.NewTool("request_more_cards",
		mcp.WithDescription("Deal more cards from the deck onto the board. Use this when get_hint reports no Set."),
		mcp.WithNumber("count", mcp.Description("Number of cards to deal (default from configuration)")),
	)
}

func resetGameTool() mcp.Tool {
	return mcp.NewTool("reset_game",
		mcp.WithDescription("Abandon the current game and deal a new one. Score returns to zero."),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current board, selection, score and events since the last call. Read-only."),
	)
}

func getHintTool() mcp.Tool {
	return mcp.NewTool("get_hint",
		mcp.WithDescription("Show one Set on the current board, or report that there is none. Read-only."),
	)
}

// --- Tool handlers ---

func currentSession() *GameSession {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	return activeSession
}

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	size := request.GetInt("initial_board_size", 0)
	if size < 0 || size > game.DeckSize {
		return mcp.NewToolResultErrorf("initial_board_size must be in 0-%d", game.DeckSize), nil
	}

	sessionMu.Lock()
	cfg := rules
	if seed := request.GetInt("seed", 0); seed != 0 {
		cfg.Seed = int64(seed)
	}
	if size > 0 {
		cfg.InitialBoardSize = size
	}
	cfg.AutoReplenish = request.GetBool("auto_replenish", cfg.AutoReplenish)
	if activeSession != nil {
		activeSession.Close()
	}
	sess := NewGameSession(cfg)
	activeSession = sess
	sessionMu.Unlock()

	return respondResult(ctx, sess, "")
}

func handleSelectCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := currentSession()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	var out game.Outcome
	if name := request.GetString("card", ""); name != "" {
		card, err := game.ParseCard(name)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid card %q: %v", name, err), nil
		}
		out = sess.engine.SelectCard(card)
	} else {
		index := request.GetInt("index", -1)
		if board := len(sess.engine.Snapshot().Board); index < 0 || index >= board {
			return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, board-1), nil
		}
		out = sess.engine.SelectIndex(index)
	}
	return respondResult(ctx, sess, out.String())
}

func handleRequestMoreCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := currentSession()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	count := request.GetInt("count", 0)
	if count < 0 {
		return mcp.NewToolResultError("count cannot be negative"), nil
	}
	return respondResult(ctx, sess, sess.engine.RequestMoreCards(count).String())
}

func handleResetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := currentSession()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	sess.engine.Reset()
	return respondResult(ctx, sess, game.OutcomeApplied.String())
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := currentSession()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return respondResult(ctx, sess, "")
}

func handleGetHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := currentSession()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	resp, err := sess.respond(ctx, "")
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for resolution: %v", err), nil
	}
	if triple, ok := sess.engine.Hint(); ok {
		board := sess.engine.Snapshot().Board
		for _, c := range triple {
			resp.Hint = append(resp.Hint, seeetnet.BuildCardView(board.Index(c), c))
		}
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func respondResult(ctx context.Context, sess *GameSession, outcome string) (*mcp.CallToolResult, error) {
	resp, err := sess.respond(ctx, outcome)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for resolution: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
