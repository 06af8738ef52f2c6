package game

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/catmaikl/cosatkaclickmserv-sub000/poker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Action messages
// These messages can be sent to the server only by a connected player.
const (
	ActionCreateRoom string = "CREATE_ROOM"
	ActionJoinRoom   string = "JOIN_ROOM"
	ActionLeaveRoom  string = "LEAVE_ROOM"
	ActionStartGame  string = "START_GAME"
	ActionPlaceBet   string = "PLACE_BET"
	ActionDrawCards  string = "DRAW_CARDS"
	ActionFold       string = "FOLD"
)

// Event messages pushed to players
const (
	EventWelcome       string = "WELCOME"
	EventRoomDirectory string = "ROOM_DIRECTORY"
	EventRoomCreated   string = "ROOM_CREATED"
	EventPlayerJoined  string = "PLAYER_JOINED"
	EventPlayerLeft    string = "PLAYER_LEFT"
	EventGameStarted   string = "GAME_STARTED"
	EventBetPlaced     string = "BET_PLACED"
	EventCardsDealt    string = "CARDS_DEALT"
	EventCardsDrawn    string = "CARDS_DRAWN"
	EventPlayerFolded  string = "PLAYER_FOLDED"
	EventGameResult    string = "GAME_RESULT"
	EventError         string = "ERROR"
)

// ActionMessage is the closed set of inbound player actions. Kind selects
// the action; the remaining fields carry its parameters.
type ActionMessage struct {
	Kind           string `json:"kind"`
	RoomName       string `json:"roomName,omitempty"`
	RoomCode       string `json:"roomCode,omitempty"`
	Amount         int64  `json:"amount,omitempty"`
	CardsToReplace []int  `json:"cardsToReplace,omitempty"`
}

// EventMessage is the outbound envelope. Only the fields relevant to Kind
// are populated.
type EventMessage struct {
	Kind        string        `json:"kind"`
	PlayerID    string        `json:"playerId,omitempty"`
	PlayerName  string        `json:"playerName,omitempty"`
	Balance     int64         `json:"balance,omitempty"`
	Amount      int64         `json:"amount,omitempty"`
	Pot         int64         `json:"pot,omitempty"`
	RoomCode    string        `json:"roomCode,omitempty"`
	RoomName    string        `json:"roomName,omitempty"`
	CurrentTurn string        `json:"currentTurn,omitempty"`
	TimedOut    bool          `json:"timedOut,omitempty"`
	Cards       []poker.Card  `json:"cards,omitempty"`
	Seats       []SeatView    `json:"seats,omitempty"`
	Rooms       []RoomSummary `json:"rooms,omitempty"`
	Result      *HandResult   `json:"result,omitempty"`
	ErrCode     string        `json:"errCode,omitempty"`
	ErrMsg      string        `json:"errMsg,omitempty"`
}

// RoomSummary is one entry of the room directory snapshot.
type RoomSummary struct {
	RoomCode   string `json:"roomCode"`
	RoomName   string `json:"roomName"`
	NumPlayers int    `json:"numPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
}

// SeatView is a per-player projection of a seat. Cards are populated only
// when the viewer is allowed to see them.
type SeatView struct {
	SeatNo     int          `json:"seatNo"`
	PlayerID   string       `json:"playerId"`
	PlayerName string       `json:"playerName"`
	NumCards   int          `json:"numCards"`
	Cards      []poker.Card `json:"cards,omitempty"`
	CurrentBet int64        `json:"currentBet"`
	Folded     bool         `json:"folded"`
}

// HandResult is broadcast when a hand resolves. Folded players' hands are
// withheld from the seat views.
type HandResult struct {
	WinnerID   string           `json:"winnerId,omitempty"`
	WinnerName string           `json:"winnerName,omitempty"`
	Reason     string           `json:"reason"`
	NoWinner   bool             `json:"noWinner,omitempty"`
	Pot        int64            `json:"pot"`
	Seats      []SeatView       `json:"seats"`
	Balances   map[string]int64 `json:"balances"`
}

// HandResultRecord is what the recent-hands cache and the result publisher
// carry per resolved hand.
type HandResultRecord struct {
	RoomCode string      `json:"roomCode"`
	RoomName string      `json:"roomName"`
	HandNum  uint32      `json:"handNum"`
	Result   *HandResult `json:"result"`
	EndedAt  time.Time   `json:"endedAt"`
}

const wonByFoldReason = "won by fold"
