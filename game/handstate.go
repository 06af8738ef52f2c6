package game

import (
	"github.com/catmaikl/cosatkaclickmserv-sub000/poker"
)

// GamePhase only moves forward for a given hand:
// WAITING -> BETTING -> DRAWING -> FINISHED.
type GamePhase string

const (
	PhaseWaiting  GamePhase = "WAITING"
	PhaseBetting  GamePhase = "BETTING"
	PhaseDrawing  GamePhase = "DRAWING"
	PhaseFinished GamePhase = "FINISHED"
)

// PlayerHandState is one seat of an active hand. Membership is frozen when
// the hand starts. CurrentBet resets each phase; TotalBet accumulates the
// player's stake for refund accounting. Folded is sticky for the hand.
type PlayerHandState struct {
	PlayerID   string
	PlayerName string
	Cards      []poker.Card
	CurrentBet int64
	TotalBet   int64
	Folded     bool
	PlacedBet  bool
	DrewCards  bool
}

// HandState is one complete play of betting -> drawing -> showdown for the
// room membership at start time.
type HandState struct {
	Phase GamePhase
	Pot   int64
	Turns *TurnController
	deck  *poker.Deck
}

func NewHandState(members []*PlayerSession, deck *poker.Deck) *HandState {
	seats := make([]*PlayerHandState, len(members))
	for i, member := range members {
		seats[i] = &PlayerHandState{
			PlayerID:   member.ID,
			PlayerName: member.Name,
		}
	}
	return &HandState{
		Phase: PhaseBetting,
		Turns: NewTurnController(seats),
		deck:  deck,
	}
}

// Seat returns the seat owned by the player, or nil.
func (hs *HandState) Seat(playerID string) *PlayerHandState {
	for _, seat := range hs.Turns.Seats {
		if seat.PlayerID == playerID {
			return seat
		}
	}
	return nil
}
