package game

import (
	"sync"

	"github.com/rs/zerolog/log"
)

var playerLogger = log.With().Str("logger_name", "game::player").Logger()

// PlayerSession is the server-side identity of one connection. Events are
// marshaled once and pushed to the send channel; the transport's write pump
// drains it. The channel is never closed — the done channel signals the
// write pump to exit instead, so a late event from a room goroutine can
// never panic.
type PlayerSession struct {
	ID   string
	Name string

	chSend chan []byte
	done   chan struct{}

	mu       sync.Mutex
	roomCode string
	closed   bool
}

func NewPlayerSession(id string, name string) *PlayerSession {
	return &PlayerSession{
		ID:     id,
		Name:   name,
		chSend: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// SendCh is drained by the transport write pump.
func (p *PlayerSession) SendCh() <-chan []byte {
	return p.chSend
}

// Done is closed when the session ends.
func (p *PlayerSession) Done() <-chan struct{} {
	return p.done
}

func (p *PlayerSession) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
}

func (p *PlayerSession) SetRoomCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roomCode = code
}

func (p *PlayerSession) GetRoomCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomCode
}

// sendEvent marshals and queues an event for this player. A slow consumer
// loses events rather than blocking a room.
func (p *PlayerSession) sendEvent(event *EventMessage) {
	data, err := json.Marshal(event)
	if err != nil {
		playerLogger.Error().
			Str("playerID", p.ID).
			Str("msgType", event.Kind).
			Msgf("Unable to marshal event: %v", err)
		return
	}
	select {
	case p.chSend <- data:
	default:
		playerLogger.Warn().
			Str("playerID", p.ID).
			Str("msgType", event.Kind).
			Msg("Player send buffer full, dropping event")
	}
}

func (p *PlayerSession) sendError(err error) {
	p.sendEvent(&EventMessage{
		Kind:    EventError,
		ErrCode: ErrorCode(err),
		ErrMsg:  err.Error(),
	})
}
