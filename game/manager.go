package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/rs/zerolog/log"

	"github.com/catmaikl/cosatkaclickmserv-sub000/util"
)

var managerLogger = log.With().Str("logger_name", "game::manager").Logger()

const recentHandsCacheSize = 128

// ResultPublisher forwards resolved hands and room lifecycle changes to an
// external collaborator (leaderboard/persistence). May be absent.
type ResultPublisher interface {
	PublishHandResult(record *HandResultRecord)
	PublishRoomEvent(kind string, roomCode string)
}

// Manager is the session registry and room directory. Sessions register
// from their own connection goroutines, so both maps are concurrent.
type Manager struct {
	config      *util.ServerConfig
	ledger      *Ledger
	sessions    cmap.ConcurrentMap // playerID -> *PlayerSession
	rooms       cmap.ConcurrentMap // roomCode -> *Room
	recentHands *lru.Cache
	publisher   ResultPublisher
	turnTimeout time.Duration
}

func NewManager(config *util.ServerConfig, store BalanceStore, publisher ResultPublisher) *Manager {
	recentHands, err := lru.New(recentHandsCacheSize)
	if err != nil {
		panic("Cannot initialize recent hands cache")
	}
	return &Manager{
		config:      config,
		ledger:      NewLedger(config.StartingBalance, store),
		sessions:    cmap.New(),
		rooms:       cmap.New(),
		recentHands: recentHands,
		publisher:   publisher,
		turnTimeout: time.Duration(config.TurnTimeoutSec) * time.Second,
	}
}

// Ledger exposes the chip ledger to observability surfaces.
func (m *Manager) Ledger() *Ledger {
	return m.ledger
}

// ConnectPlayer registers a new session and greets it with its identity,
// balance and the room directory.
func (m *Manager) ConnectPlayer(name string) *PlayerSession {
	if name == "" {
		name = "player"
	}
	session := NewPlayerSession(uuid.New().String(), name)
	m.sessions.Set(session.ID, session)
	balance := m.ledger.AddPlayer(session.ID)

	managerLogger.Info().
		Str(logPlayerID, session.ID).
		Str(logPlayerName, name).
		Msg("Player connected")

	session.sendEvent(&EventMessage{
		Kind:       EventWelcome,
		PlayerID:   session.ID,
		PlayerName: session.Name,
		Balance:    balance,
	})
	session.sendEvent(&EventMessage{
		Kind:  EventRoomDirectory,
		Rooms: m.roomDirectory(),
	})
	return session
}

// DisconnectPlayer tears a session down. An in-room player leaves first,
// which folds them out of any active hand.
func (m *Manager) DisconnectPlayer(session *PlayerSession) {
	if roomCode := session.GetRoomCode(); roomCode != "" {
		if val, ok := m.rooms.Get(roomCode); ok {
			room := val.(*Room)
			room.QueueAction(session, &ActionMessage{Kind: ActionLeaveRoom})
		}
	}
	m.sessions.Remove(session.ID)
	m.ledger.RemovePlayer(session.ID)
	session.close()

	managerLogger.Info().
		Str(logPlayerID, session.ID).
		Msg("Player disconnected")
}

// HandleAction parses and routes one inbound message. Malformed input is
// reported to the sender only.
func (m *Manager) HandleAction(session *PlayerSession, raw []byte) {
	util.Metrics.PlayerMsgReceived()

	var msg ActionMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		session.sendError(MalformedMessageError{Reason: "unparseable message"})
		return
	}

	switch msg.Kind {
	case ActionCreateRoom:
		m.createRoom(session, msg.RoomName)
	case ActionJoinRoom:
		m.joinRoom(session, msg.RoomCode)
	case ActionLeaveRoom, ActionStartGame, ActionPlaceBet, ActionDrawCards, ActionFold:
		roomCode := session.GetRoomCode()
		if roomCode == "" {
			session.sendError(InvalidRoomError{Reason: "not in a room"})
			return
		}
		val, ok := m.rooms.Get(roomCode)
		if !ok {
			session.sendError(InvalidRoomError{RoomCode: roomCode, Reason: "room no longer exists"})
			return
		}
		val.(*Room).QueueAction(session, &msg)
	case "":
		session.sendError(MalformedMessageError{Reason: "missing action kind"})
	default:
		session.sendError(MalformedMessageError{Reason: "unknown action " + msg.Kind})
	}
}

func (m *Manager) createRoom(session *PlayerSession, roomName string) {
	if session.GetRoomCode() != "" {
		session.sendError(InvalidRoomError{Reason: "already in a room"})
		return
	}
	if roomName == "" {
		roomName = fmt.Sprintf("%s's room", session.Name)
	}

	roomCode := newRoomCode()
	room := NewRoom(m, roomCode, roomName, m.config.MaxPlayersPerRoom, m.turnTimeout)
	m.rooms.Set(roomCode, room)
	util.Metrics.RoomCreated()
	util.Metrics.SetActiveRoomsCount(m.rooms.Count())
	room.Run()

	managerLogger.Info().
		Str(logRoomCode, roomCode).
		Str(logRoomName, roomName).
		Str(logPlayerID, session.ID).
		Msg("Room created")

	session.sendEvent(&EventMessage{
		Kind:     EventRoomCreated,
		RoomCode: roomCode,
		RoomName: roomName,
	})
	if m.publisher != nil {
		m.publisher.PublishRoomEvent("created", roomCode)
	}

	room.QueueAction(session, &ActionMessage{Kind: ActionJoinRoom})
}

func (m *Manager) joinRoom(session *PlayerSession, roomCode string) {
	if session.GetRoomCode() != "" {
		session.sendError(InvalidRoomError{Reason: "already in a room"})
		return
	}
	val, ok := m.rooms.Get(roomCode)
	if !ok {
		session.sendError(InvalidRoomError{RoomCode: roomCode, Reason: "no such room"})
		return
	}
	val.(*Room).QueueAction(session, &ActionMessage{Kind: ActionJoinRoom})
}

// roomClosed is called from the room loop when its last member leaves.
func (m *Manager) roomClosed(room *Room) {
	m.rooms.Remove(room.Code)
	util.Metrics.SetActiveRoomsCount(m.rooms.Count())
	if m.publisher != nil {
		m.publisher.PublishRoomEvent("closed", room.Code)
	}
	managerLogger.Info().Str(logRoomCode, room.Code).Msg("Room closed")
	m.broadcastDirectory()
}

// handResolved records the result, notifies the external collaborator and
// flushes the participants' balances.
func (m *Manager) handResolved(record *HandResultRecord, memberIDs []string) {
	util.Metrics.HandPlayed()
	m.recentHands.Add(fmt.Sprintf("%s:%d", record.RoomCode, record.HandNum), record)
	if m.publisher != nil {
		m.publisher.PublishHandResult(record)
	}
	m.ledger.Flush(memberIDs)
}

// roomDirectory snapshots joinable rooms. Rooms with an active hand are
// excluded.
func (m *Manager) roomDirectory() []RoomSummary {
	summaries := make([]RoomSummary, 0, m.rooms.Count())
	for item := range m.rooms.IterBuffered() {
		room := item.Val.(*Room)
		if room.HandActive() {
			continue
		}
		summaries = append(summaries, RoomSummary{
			RoomCode:   room.Code,
			RoomName:   room.Name,
			NumPlayers: room.NumMembers(),
			MaxPlayers: room.MaxPlayers,
		})
	}
	return summaries
}

// RoomDirectory is the public snapshot used by the REST surface.
func (m *Manager) RoomDirectory() []RoomSummary {
	return m.roomDirectory()
}

// RecentHandResults lists the cached results of recently resolved hands.
func (m *Manager) RecentHandResults() []*HandResultRecord {
	keys := m.recentHands.Keys()
	records := make([]*HandResultRecord, 0, len(keys))
	for _, key := range keys {
		if val, ok := m.recentHands.Peek(key); ok {
			records = append(records, val.(*HandResultRecord))
		}
	}
	return records
}

func (m *Manager) broadcastDirectory() {
	event := &EventMessage{
		Kind:  EventRoomDirectory,
		Rooms: m.roomDirectory(),
	}
	for item := range m.sessions.IterBuffered() {
		item.Val.(*PlayerSession).sendEvent(event)
	}
}

// newRoomCode returns a short join code.
func newRoomCode() string {
	return strings.Split(uuid.New().String(), "-")[0]
}
