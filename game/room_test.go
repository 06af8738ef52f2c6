package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catmaikl/cosatkaclickmserv-sub000/poker"
	"github.com/catmaikl/cosatkaclickmserv-sub000/timer"
	"github.com/catmaikl/cosatkaclickmserv-sub000/util"
)

// testRig wires a room to a manager without running the room loop, so tests
// drive handlers synchronously and inspect state between steps. The action
// timer loop does run, but with an hour-long timeout it never fires.
type testRig struct {
	manager  *Manager
	room     *Room
	sessions []*PlayerSession
}

func newTestRig(t *testing.T, numPlayers int, maxPlayers int) *testRig {
	config := util.DefaultServerConfig()
	config.MaxPlayersPerRoom = maxPlayers

	manager := NewManager(config, NewMemoryBalanceTracker(), nil)
	room := NewRoom(manager, "abc123", "test room", maxPlayers, time.Hour)
	manager.rooms.Set(room.Code, room)
	room.actionTimer.Run()
	t.Cleanup(room.actionTimer.Destroy)

	rig := &testRig{manager: manager, room: room}
	for i := 0; i < numPlayers; i++ {
		session := manager.ConnectPlayer(fmt.Sprintf("player%d", i+1))
		room.handleJoin(session)
		rig.sessions = append(rig.sessions, session)
	}
	rig.drainAll()
	return rig
}

func (rig *testRig) drainAll() {
	for _, session := range rig.sessions {
		drainEvents(nil, session)
	}
}

// drainEvents empties a session's send buffer and returns the decoded events.
func drainEvents(t *testing.T, session *PlayerSession) []*EventMessage {
	var events []*EventMessage
	for {
		select {
		case data := <-session.chSend:
			var event EventMessage
			if err := json.Unmarshal(data, &event); err != nil {
				if t != nil {
					t.Fatalf("unparseable event: %v", err)
				}
				return events
			}
			events = append(events, &event)
		default:
			return events
		}
	}
}

func lastEventOfKind(events []*EventMessage, kind string) *EventMessage {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i]
		}
	}
	return nil
}

func TestFullHandFlow(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	require.NotNil(t, room.hand)
	assert.Equal(t, PhaseBetting, room.hand.Phase)
	assert.Equal(t, s1.ID, room.hand.Turns.CurrentSeat().PlayerID)
	assert.True(t, room.HandActive())

	room.handlePlaceBet(s1, 100)
	assert.Equal(t, int64(100), room.hand.Pot)
	assert.Equal(t, s2.ID, room.hand.Turns.CurrentSeat().PlayerID)
	assert.Equal(t, int64(900), rig.manager.ledger.BalanceOf(s1.ID))

	room.handlePlaceBet(s2, 200)
	assert.Equal(t, PhaseDrawing, room.hand.Phase)
	assert.Equal(t, int64(300), room.hand.Pot)
	assert.Equal(t, int64(800), rig.manager.ledger.BalanceOf(s2.ID))
	for _, seat := range room.hand.Turns.Seats {
		assert.Len(t, seat.Cards, 5)
		assert.Equal(t, int64(0), seat.CurrentBet, "per-phase bet resets on the phase change")
	}

	// Fix the hands so the showdown is deterministic.
	room.hand.Turns.Seats[0].Cards = poker.NewCards("As", "Ks", "Qs", "Js", "Ts")
	room.hand.Turns.Seats[1].Cards = poker.NewCards("2h", "5d", "7c", "9s", "Jh")

	rig.drainAll()
	room.handleDrawCards(s1, nil)
	assert.Equal(t, s2.ID, room.hand.Turns.CurrentSeat().PlayerID)
	room.handleDrawCards(s2, nil)

	events := drainEvents(t, s2)
	result := lastEventOfKind(events, EventGameResult)
	require.NotNil(t, result)
	require.NotNil(t, result.Result)
	assert.Equal(t, s1.ID, result.Result.WinnerID)
	assert.Equal(t, "Royal Flush", result.Result.Reason)
	assert.Equal(t, int64(300), result.Result.Pot)

	// Chips are conserved: the winner collects exactly what was staked.
	assert.Equal(t, int64(1200), rig.manager.ledger.BalanceOf(s1.ID))
	assert.Equal(t, int64(800), rig.manager.ledger.BalanceOf(s2.ID))

	// Both hands are revealed at showdown.
	for _, seat := range result.Result.Seats {
		assert.Len(t, seat.Cards, 5)
	}

	assert.Nil(t, room.hand, "room returns to waiting after the hand")
	assert.False(t, room.HandActive())
}

func TestTieGoesToFirstSeat(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	room.handlePlaceBet(s1, 50)
	room.handlePlaceBet(s2, 50)

	// Both hold a pair; the earlier seat wins the tie.
	room.hand.Turns.Seats[0].Cards = poker.NewCards("2h", "2d", "7c", "9s", "Jh")
	room.hand.Turns.Seats[1].Cards = poker.NewCards("Ah", "Ad", "7d", "9c", "Js")

	rig.drainAll()
	room.handleDrawCards(s1, nil)
	room.handleDrawCards(s2, nil)

	result := lastEventOfKind(drainEvents(t, s1), EventGameResult)
	require.NotNil(t, result)
	assert.Equal(t, s1.ID, result.Result.WinnerID)
	assert.Equal(t, "Pair", result.Result.Reason)
}

func TestOutOfTurnBetRejected(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	rig.drainAll()

	room.handlePlaceBet(s2, 100)
	errEvent := lastEventOfKind(drainEvents(t, s2), EventError)
	require.NotNil(t, errEvent)
	assert.Equal(t, ErrCodeNotYourTurn, errEvent.ErrCode)
	assert.Equal(t, int64(0), room.hand.Pot)
	assert.Equal(t, s1.ID, room.hand.Turns.CurrentSeat().PlayerID)
}

func TestWrongPhaseActionRejected(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1 := rig.sessions[0]

	room.handleStartGame(s1)
	rig.drainAll()

	// Drawing is not allowed while betting is open.
	room.handleDrawCards(s1, []int{0})
	errEvent := lastEventOfKind(drainEvents(t, s1), EventError)
	require.NotNil(t, errEvent)
	assert.Equal(t, ErrCodeWrongPhase, errEvent.ErrCode)
	assert.Equal(t, PhaseBetting, room.hand.Phase)
}

func TestBetValidation(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1 := rig.sessions[0]

	room.handleStartGame(s1)
	rig.drainAll()

	room.handlePlaceBet(s1, 5000)
	errEvent := lastEventOfKind(drainEvents(t, s1), EventError)
	require.NotNil(t, errEvent)
	assert.Equal(t, ErrCodeInsufficientFunds, errEvent.ErrCode)
	assert.Equal(t, int64(1000), rig.manager.ledger.BalanceOf(s1.ID))

	room.handlePlaceBet(s1, -5)
	errEvent = lastEventOfKind(drainEvents(t, s1), EventError)
	require.NotNil(t, errEvent)
	assert.Equal(t, ErrCodeMalformedMessage, errEvent.ErrCode)

	// A failed bet does not consume the turn.
	assert.Equal(t, s1.ID, room.hand.Turns.CurrentSeat().PlayerID)
	assert.Equal(t, int64(0), room.hand.Pot)
}

func TestRoomCapacity(t *testing.T) {
	rig := newTestRig(t, 2, 2)

	s3 := rig.manager.ConnectPlayer("player3")
	drainEvents(t, s3)
	rig.room.handleJoin(s3)

	errEvent := lastEventOfKind(drainEvents(t, s3), EventError)
	require.NotNil(t, errEvent)
	assert.Equal(t, ErrCodeInvalidRoom, errEvent.ErrCode)
	assert.Equal(t, 2, rig.room.NumMembers())
	assert.Equal(t, "", s3.GetRoomCode())
}

func TestJoinDuringHandRejected(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	rig.room.handleStartGame(rig.sessions[0])

	s3 := rig.manager.ConnectPlayer("player3")
	drainEvents(t, s3)
	rig.room.handleJoin(s3)

	errEvent := lastEventOfKind(drainEvents(t, s3), EventError)
	require.NotNil(t, errEvent)
	assert.Equal(t, ErrCodeInvalidRoom, errEvent.ErrCode)
	assert.Equal(t, 2, rig.room.NumMembers())
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	rig := newTestRig(t, 1, 4)
	rig.room.handleStartGame(rig.sessions[0])

	errEvent := lastEventOfKind(drainEvents(t, rig.sessions[0]), EventError)
	require.NotNil(t, errEvent)
	assert.Equal(t, ErrCodeInvalidRoom, errEvent.ErrCode)
	assert.Nil(t, rig.room.hand)
}

func TestTurnTimeoutForcesFold(t *testing.T) {
	rig := newTestRig(t, 3, 4)
	room := rig.room
	s1, s2, s3 := rig.sessions[0], rig.sessions[1], rig.sessions[2]

	room.handleStartGame(s1)
	room.handlePlaceBet(s1, 100)
	rig.drainAll()

	// s2 never acts; the timer callback forces a fold and their stake-free
	// seat is out for the rest of the hand.
	room.handleTurnTimeout(timer.TimerMsg{RoomCode: room.Code, PlayerID: s2.ID})

	seat := room.hand.Seat(s2.ID)
	require.NotNil(t, seat)
	assert.True(t, seat.Folded)
	assert.Equal(t, s3.ID, room.hand.Turns.CurrentSeat().PlayerID)

	folded := lastEventOfKind(drainEvents(t, s1), EventPlayerFolded)
	require.NotNil(t, folded)
	assert.Equal(t, s2.ID, folded.PlayerID)
	assert.True(t, folded.TimedOut)

	// The hand plays out between the remaining two.
	room.handlePlaceBet(s3, 50)
	assert.Equal(t, PhaseDrawing, room.hand.Phase)

	room.hand.Turns.Seats[0].Cards = poker.NewCards("Ah", "Ad", "7d", "9c", "Js")
	room.hand.Turns.Seats[2].Cards = poker.NewCards("2h", "5d", "7c", "9s", "Jh")

	rig.drainAll()
	room.handleDrawCards(s1, nil)
	room.handleDrawCards(s3, nil)

	result := lastEventOfKind(drainEvents(t, s3), EventGameResult)
	require.NotNil(t, result)
	assert.Equal(t, s1.ID, result.Result.WinnerID)
	assert.Equal(t, int64(150), result.Result.Pot)

	// The timed-out player's chips were never staked; the bettors settle
	// the pot between themselves.
	assert.Equal(t, int64(1050), rig.manager.ledger.BalanceOf(s1.ID))
	assert.Equal(t, int64(1000), rig.manager.ledger.BalanceOf(s2.ID))
	assert.Equal(t, int64(950), rig.manager.ledger.BalanceOf(s3.ID))
}

func TestStaleTimeoutIgnored(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	rig.drainAll()

	// The timer message names a player who no longer holds the turn.
	room.handleTurnTimeout(timer.TimerMsg{RoomCode: room.Code, PlayerID: s2.ID})

	assert.Equal(t, PhaseBetting, room.hand.Phase)
	for _, seat := range room.hand.Turns.Seats {
		assert.False(t, seat.Folded)
	}
	assert.Equal(t, s1.ID, room.hand.Turns.CurrentSeat().PlayerID)
}

func TestFoldToSingleSurvivor(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	room.handlePlaceBet(s1, 100)
	rig.drainAll()

	room.handleFold(s2.ID, false)

	result := lastEventOfKind(drainEvents(t, s1), EventGameResult)
	require.NotNil(t, result)
	assert.Equal(t, s1.ID, result.Result.WinnerID)
	assert.Equal(t, "won by fold", result.Result.Reason)
	assert.Equal(t, int64(100), result.Result.Pot)
	assert.Equal(t, int64(1000), rig.manager.ledger.BalanceOf(s1.ID))

	// Folded hands stay hidden even at resolution.
	for _, seat := range result.Result.Seats {
		if seat.PlayerID == s2.ID {
			assert.Empty(t, seat.Cards)
		}
	}
}

func TestAllFoldedRefundsStakes(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1 := rig.sessions[0]

	room.handleStartGame(s1)
	room.handlePlaceBet(s1, 100)
	assert.Equal(t, int64(900), rig.manager.ledger.BalanceOf(s1.ID))
	rig.drainAll()

	for _, seat := range room.hand.Turns.Seats {
		seat.Folded = true
	}
	room.resolve()

	result := lastEventOfKind(drainEvents(t, s1), EventGameResult)
	require.NotNil(t, result)
	assert.True(t, result.Result.NoWinner)
	assert.Equal(t, "all players folded", result.Result.Reason)
	assert.Equal(t, int64(0), result.Result.Pot)

	// Every player gets their own stake back.
	assert.Equal(t, int64(1000), rig.manager.ledger.BalanceOf(s1.ID))
}

func TestDrawReplacesRequestedCards(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	room.handlePlaceBet(s1, 10)
	room.handlePlaceBet(s2, 10)
	require.Equal(t, PhaseDrawing, room.hand.Phase)
	rig.drainAll()

	seat := room.hand.Seat(s1.ID)
	before := append([]poker.Card(nil), seat.Cards...)

	// Out-of-range slots are ignored; only index 0 is replaced.
	room.handleDrawCards(s1, []int{0, 9, -1})

	assert.NotEqual(t, before[0], seat.Cards[0])
	assert.Equal(t, before[1:], seat.Cards[1:])

	drawn := lastEventOfKind(drainEvents(t, s1), EventCardsDrawn)
	require.NotNil(t, drawn)
	assert.Equal(t, int64(1), drawn.Amount)
	assert.Len(t, drawn.Cards, 5)

	// The other player sees the draw happen without seeing any cards.
	peerView := lastEventOfKind(drainEvents(t, s2), EventCardsDrawn)
	require.NotNil(t, peerView)
	assert.Empty(t, peerView.Cards)
}

func TestLeaveMidHandFoldsPlayer(t *testing.T) {
	rig := newTestRig(t, 3, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	rig.drainAll()

	room.handleLeave(s1)

	assert.Equal(t, 2, room.NumMembers())
	assert.Equal(t, "", s1.GetRoomCode())

	require.NotNil(t, room.hand, "hand continues for the remaining players")
	seat := room.hand.Seat(s1.ID)
	require.NotNil(t, seat)
	assert.True(t, seat.Folded)
	assert.Equal(t, s2.ID, room.hand.Turns.CurrentSeat().PlayerID)

	left := lastEventOfKind(drainEvents(t, s2), EventPlayerLeft)
	require.NotNil(t, left)
	assert.Equal(t, s1.ID, left.PlayerID)
}

func TestLastLeaveClosesRoom(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room

	room.handleLeave(rig.sessions[0])
	room.handleLeave(rig.sessions[1])

	_, ok := rig.manager.rooms.Get(room.Code)
	assert.False(t, ok, "empty room is removed from the directory")
}

func TestOwnCardsHiddenFromOthers(t *testing.T) {
	rig := newTestRig(t, 2, 4)
	room := rig.room
	s1, s2 := rig.sessions[0], rig.sessions[1]

	room.handleStartGame(s1)
	room.handlePlaceBet(s1, 10)
	rig.drainAll()
	room.handlePlaceBet(s2, 10)

	dealt := lastEventOfKind(drainEvents(t, s2), EventCardsDealt)
	require.NotNil(t, dealt)
	assert.Len(t, dealt.Cards, 5)
	for _, seat := range dealt.Seats {
		if seat.PlayerID == s1.ID {
			assert.Empty(t, seat.Cards, "opponent cards are masked")
			assert.Equal(t, 5, seat.NumCards)
		}
	}
}
