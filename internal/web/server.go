package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/benbenpetit/Seeet/internal/config"
	"github.com/benbenpetit/Seeet/internal/game"
	gamelog "github.com/benbenpetit/Seeet/internal/log"
	seeetnet "github.com/benbenpetit/Seeet/internal/net"
)

//go:embed static
var staticFiles embed.FS

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	Name    string `json:"name"`
	Filling string `json:"filling"`
	Color   string `json:"color"`
	Shape   string `json:"shape"`
	Size    int    `json:"size"`
}

// Server is the Seeet web UI server. Every websocket plays its own game.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux
}

// NewServer creates a new web server for the given configuration.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/rules", s.handleRules)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	deck := game.FullDeck()
	cards := make([]CardInfo, 0, len(deck))
	for _, c := range deck {
		cards = append(cards, CardInfo{
			Name:    c.String(),
			Filling: c.Filling.String(),
			Color:   c.Color.String(),
			Shape:   c.Shape.String(),
			Size:    int(c.Size),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "yaml" {
		data, err := encodeRulesYAML(s.cfg.Rules)
		if err != nil {
			http.Error(w, "could not encode rules", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rulesInfo(s.cfg.Rules))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()
	id := uuid.NewString()
	log.Printf("Session %s: connected from %s", id, r.RemoteAddr)

	conn := &wsMessageConn{conn: wsConn}
	if err := conn.WriteMessage(ctx, seeetnet.ServerMessage{Type: seeetnet.MsgHello, Session: id}); err != nil {
		log.Printf("Session %s: write hello: %v", id, err)
		return
	}

	sess := seeetnet.NewSession(conn, s.sessionConfig())
	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Session %s: %v", id, err)
		wsConn.Close(websocket.StatusInternalError, "session error")
		return
	}
	log.Printf("Session %s: closed (score %d)", id, sess.Engine().Snapshot().Score)
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// wsMessageConn carries protocol messages as websocket text frames.
type wsMessageConn struct {
	conn *websocket.Conn
}

func (c *wsMessageConn) ReadMessage(ctx context.Context) (seeetnet.ClientMessage, error) {
	var msg seeetnet.ClientMessage
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			return msg, io.EOF
		}
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		// Unparsable frames become unknown commands and get an error reply.
		return seeetnet.ClientMessage{Type: fmt.Sprintf("invalid JSON: %v", err)}, nil
	}
	return msg, nil
}

func (c *wsMessageConn) WriteMessage(ctx context.Context, msg seeetnet.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// sessionConfig builds the settings for one websocket game. Events go to no
// log: a browser session can stay open for many games.
func (s *Server) sessionConfig() seeetnet.SessionConfig {
	ec := s.cfg.Rules.EngineConfig()
	ec.Logger = gamelog.NewDiscardLogger()
	return seeetnet.SessionConfig{
		Engine:  ec,
		Limiter: seeetnet.NewLimiter(s.cfg.Server.CommandRate, s.cfg.Server.CommandBurst),
	}
}
