package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/catmaikl/cosatkaclickmserv-sub000/game"
)

var wsLogger = log.With().Str("logger_name", "ws::server").Logger()

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// inbound action budget per connection
	msgRatePerSec = 10
	msgRateBurst  = 20
)

// Server upgrades player connections and bridges them to the game manager.
// Each connection gets a read pump feeding the manager and a write pump
// draining the session's send channel.
type Server struct {
	manager  *game.Manager
	upgrader websocket.Upgrader
}

func NewServer(manager *game.Manager) *Server {
	return &Server{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeWS handles one player connection for its lifetime.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wsLogger.Error().Msgf("Upgrade failed: %v", err)
		return
	}

	session := s.manager.ConnectPlayer(name)
	wsLogger.Info().
		Str("playerID", session.ID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Connection established")

	go s.writePump(conn, session)
	s.readPump(conn, session)
}

func (s *Server) readPump(conn *websocket.Conn, session *game.PlayerSession) {
	defer func() {
		s.manager.DisconnectPlayer(session)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(rate.Limit(msgRatePerSec), msgRateBurst)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLogger.Warn().Str("playerID", session.ID).Msgf("Read error: %v", err)
			}
			return
		}
		if !limiter.Allow() {
			wsLogger.Warn().Str("playerID", session.ID).Msg("Dropping action, rate limit exceeded")
			continue
		}
		s.manager.HandleAction(session, raw)
	}
}

func (s *Server) writePump(conn *websocket.Conn, session *game.PlayerSession) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-session.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-session.SendCh():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
