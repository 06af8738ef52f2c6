package game

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/catmaikl/cosatkaclickmserv-sub000/poker"
	"github.com/catmaikl/cosatkaclickmserv-sub000/timer"
	"github.com/catmaikl/cosatkaclickmserv-sub000/util"
)

var roomLogger = log.With().Str("logger_name", "game::room").Logger()

const cardsPerHand = 5

type roomAction struct {
	session *PlayerSession
	msg     *ActionMessage
}

// Room is an isolated session container: its members, at most one active
// hand, and one turn timer. All room state is touched only inside the room
// loop goroutine, one message or timer callback at a time.
type Room struct {
	Code       string
	Name       string
	MaxPlayers int

	manager *Manager

	members []*PlayerSession
	hand    *HandState
	handNum uint32

	actionTimer *timer.ActionTimer
	turnTimeout time.Duration

	chAction   chan roomAction
	chTimedOut chan timer.TimerMsg
	chEnd      chan bool
	closing    bool

	// read by the manager goroutine for directory snapshots
	memberCount int32
	handActive  int32
}

func NewRoom(manager *Manager, code string, name string, maxPlayers int, turnTimeout time.Duration) *Room {
	r := &Room{
		Code:        code,
		Name:        name,
		MaxPlayers:  maxPlayers,
		manager:     manager,
		turnTimeout: turnTimeout,
		chAction:    make(chan roomAction, 16),
		chTimedOut:  make(chan timer.TimerMsg, 4),
		chEnd:       make(chan bool, 2),
	}
	r.actionTimer = timer.NewActionTimer(code, r.queueTimeoutMsg, r.timerCrashed)
	return r
}

func (r *Room) Run() {
	r.actionTimer.Run()
	go r.loop()
}

func (r *Room) loop() {
	defer func() {
		err := recover()
		if err != nil {
			debug.PrintStack()
			roomLogger.Error().
				Str(logRoomCode, r.Code).
				Msgf("Room loop returning due to panic: %s\nStack Trace:\n%s", err, string(debug.Stack()))
			r.actionTimer.Destroy()
			r.manager.roomClosed(r)
		} else {
			roomLogger.Info().Str(logRoomCode, r.Code).Msg("Room loop returning")
		}
	}()

	for {
		select {
		case <-r.chEnd:
			return
		case action := <-r.chAction:
			r.handleAction(action.session, action.msg)
		case msg := <-r.chTimedOut:
			r.handleTurnTimeout(msg)
		}
		if r.closing {
			return
		}
	}
}

// QueueAction hands a player action to the room loop. Called from
// connection goroutines.
func (r *Room) QueueAction(session *PlayerSession, msg *ActionMessage) {
	select {
	case r.chAction <- roomAction{session: session, msg: msg}:
	default:
		roomLogger.Warn().
			Str(logRoomCode, r.Code).
			Str(logPlayerID, session.ID).
			Str(logMsgType, msg.Kind).
			Msg("Room action queue full, dropping action")
		session.sendError(InvalidRoomError{RoomCode: r.Code, Reason: "room is busy"})
	}
}

func (r *Room) queueTimeoutMsg(msg timer.TimerMsg) {
	r.chTimedOut <- msg
}

func (r *Room) timerCrashed() {
	roomLogger.Error().Str(logRoomCode, r.Code).Msg("Action timer crashed")
}

// NumMembers is safe to call from outside the room loop.
func (r *Room) NumMembers() int {
	return int(atomic.LoadInt32(&r.memberCount))
}

// HandActive is safe to call from outside the room loop.
func (r *Room) HandActive() bool {
	return atomic.LoadInt32(&r.handActive) == 1
}

func (r *Room) handleAction(session *PlayerSession, msg *ActionMessage) {
	switch msg.Kind {
	case ActionJoinRoom:
		r.handleJoin(session)
	case ActionLeaveRoom:
		r.handleLeave(session)
	case ActionStartGame:
		r.handleStartGame(session)
	case ActionPlaceBet:
		r.handlePlaceBet(session, msg.Amount)
	case ActionDrawCards:
		r.handleDrawCards(session, msg.CardsToReplace)
	case ActionFold:
		r.handleFold(session.ID, false)
	default:
		session.sendError(MalformedMessageError{Reason: "unknown action " + msg.Kind})
	}
}

func (r *Room) handleJoin(session *PlayerSession) {
	for _, member := range r.members {
		if member.ID == session.ID {
			session.sendError(InvalidRoomError{RoomCode: r.Code, Reason: "already in the room"})
			return
		}
	}
	if len(r.members) >= r.MaxPlayers {
		session.sendError(InvalidRoomError{RoomCode: r.Code, Reason: "room is full"})
		return
	}
	if r.hand != nil {
		session.sendError(InvalidRoomError{RoomCode: r.Code, Reason: "hand in progress"})
		return
	}

	r.members = append(r.members, session)
	atomic.StoreInt32(&r.memberCount, int32(len(r.members)))
	session.SetRoomCode(r.Code)

	roomLogger.Info().
		Str(logRoomCode, r.Code).
		Str(logPlayerID, session.ID).
		Str(logPlayerName, session.Name).
		Msg("Player joined")

	r.broadcast(&EventMessage{
		Kind:       EventPlayerJoined,
		RoomCode:   r.Code,
		RoomName:   r.Name,
		PlayerID:   session.ID,
		PlayerName: session.Name,
		Seats:      r.memberViews(),
	})
	r.manager.broadcastDirectory()
}

func (r *Room) handleLeave(session *PlayerSession) {
	idx := -1
	for i, member := range r.members {
		if member.ID == session.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		session.sendError(PlayerNotFoundError{PlayerID: session.ID})
		return
	}

	// Leaving mid-hand is an implicit fold, with the same single-survivor
	// check as a voluntary one.
	if r.hand != nil && r.hand.Phase != PhaseFinished {
		if seat := r.hand.Seat(session.ID); seat != nil && !seat.Folded {
			r.handleFold(session.ID, false)
		}
	}

	r.members = append(r.members[:idx], r.members[idx+1:]...)
	atomic.StoreInt32(&r.memberCount, int32(len(r.members)))
	session.SetRoomCode("")

	roomLogger.Info().
		Str(logRoomCode, r.Code).
		Str(logPlayerID, session.ID).
		Msg("Player left")

	r.broadcast(&EventMessage{
		Kind:     EventPlayerLeft,
		RoomCode: r.Code,
		PlayerID: session.ID,
		Seats:    r.memberViews(),
	})

	if len(r.members) == 0 {
		r.destroy()
		return
	}
	r.manager.broadcastDirectory()
}

func (r *Room) destroy() {
	r.closing = true
	r.actionTimer.Destroy()
	r.hand = nil
	atomic.StoreInt32(&r.handActive, 0)
	r.manager.roomClosed(r)
}

func (r *Room) handleStartGame(session *PlayerSession) {
	if r.hand != nil {
		session.sendError(WrongPhaseError{Phase: r.hand.Phase, Action: ActionStartGame})
		return
	}
	if len(r.members) < 2 {
		session.sendError(InvalidRoomError{RoomCode: r.Code, Reason: "need at least 2 players to start"})
		return
	}

	deck := poker.NewDeck(nil).Shuffle()
	r.hand = NewHandState(r.members, deck)
	r.handNum++
	atomic.StoreInt32(&r.handActive, 1)

	roomLogger.Info().
		Str(logRoomCode, r.Code).
		Uint32("handNum", r.handNum).
		Msg("Hand started")

	r.broadcast(&EventMessage{
		Kind:        EventGameStarted,
		RoomCode:    r.Code,
		Seats:       r.seatViews("", false),
		CurrentTurn: r.hand.Turns.CurrentSeat().PlayerID,
	})
	r.armTurnTimer()
	r.manager.broadcastDirectory()
}

// guardTurnAction re-validates phase and turn ownership. Every handler runs
// it on entry because the room may have advanced between enqueue and
// processing.
func (r *Room) guardTurnAction(playerID string, phase GamePhase, action string) (*PlayerHandState, error) {
	if r.hand == nil || r.hand.Phase != phase {
		currentPhase := PhaseWaiting
		if r.hand != nil {
			currentPhase = r.hand.Phase
		}
		return nil, WrongPhaseError{Phase: currentPhase, Action: action}
	}
	seat := r.hand.Turns.CurrentSeat()
	if seat.PlayerID != playerID {
		return nil, NotYourTurnError{PlayerID: playerID}
	}
	return seat, nil
}

func (r *Room) handlePlaceBet(session *PlayerSession, amount int64) {
	seat, err := r.guardTurnAction(session.ID, PhaseBetting, ActionPlaceBet)
	if err != nil {
		session.sendError(err)
		return
	}
	if amount < 0 {
		session.sendError(MalformedMessageError{Reason: "bet amount cannot be negative"})
		return
	}
	if err := r.manager.ledger.Reserve(session.ID, amount); err != nil {
		session.sendError(err)
		return
	}

	seat.CurrentBet = amount
	seat.TotalBet += amount
	seat.PlacedBet = true
	r.hand.Pot += amount

	event := &EventMessage{
		Kind:     EventBetPlaced,
		RoomCode: r.Code,
		PlayerID: session.ID,
		Amount:   amount,
		Pot:      r.hand.Pot,
		Balance:  r.manager.ledger.BalanceOf(session.ID),
	}

	if r.hand.Turns.AllActed(func(s *PlayerHandState) bool { return s.PlacedBet }) {
		r.broadcast(event)
		r.enterDrawing()
		return
	}
	r.hand.Turns.Advance()
	event.CurrentTurn = r.hand.Turns.CurrentSeat().PlayerID
	r.broadcast(event)
	r.armTurnTimer()
}

// enterDrawing deals five cards to every non-folded seat and restarts the
// turn order for the draw round.
func (r *Room) enterDrawing() {
	r.hand.Phase = PhaseDrawing
	for _, seat := range r.hand.Turns.Seats {
		seat.CurrentBet = 0
		if seat.Folded {
			continue
		}
		cards, err := r.hand.deck.Deal(cardsPerHand)
		if err != nil {
			// Cannot happen while room capacity * 5 <= 52 holds.
			roomLogger.Error().Str(logRoomCode, r.Code).Msgf("Deck exhausted while dealing: %v", err)
			return
		}
		seat.Cards = cards
	}
	r.hand.Turns.ResetToFirstActive()

	currentTurn := r.hand.Turns.CurrentSeat().PlayerID
	for _, member := range r.members {
		member.sendEvent(&EventMessage{
			Kind:        EventCardsDealt,
			RoomCode:    r.Code,
			Cards:       r.ownCards(member.ID),
			Seats:       r.seatViews(member.ID, false),
			Pot:         r.hand.Pot,
			CurrentTurn: currentTurn,
		})
	}
	r.armTurnTimer()
}

func (r *Room) handleDrawCards(session *PlayerSession, cardsToReplace []int) {
	seat, err := r.guardTurnAction(session.ID, PhaseDrawing, ActionDrawCards)
	if err != nil {
		session.sendError(err)
		return
	}

	replaced := 0
	for _, idx := range cardsToReplace {
		if idx < 0 || idx >= len(seat.Cards) {
			// Out-of-range replacement slots are ignored, not fatal.
			continue
		}
		card, err := r.hand.deck.DrawOne()
		if err != nil {
			// Deck exhausted: skip the remaining replacement slots.
			break
		}
		seat.Cards[idx] = card
		replaced++
	}
	seat.DrewCards = true

	// The actor sees the refreshed hand; everyone else only sees the turn
	// advance.
	session.sendEvent(&EventMessage{
		Kind:     EventCardsDrawn,
		RoomCode: r.Code,
		PlayerID: session.ID,
		Amount:   int64(replaced),
		Cards:    seat.Cards,
	})

	if r.hand.Turns.AllActed(func(s *PlayerHandState) bool { return s.DrewCards }) {
		r.broadcastExcept(session.ID, &EventMessage{
			Kind:     EventCardsDrawn,
			RoomCode: r.Code,
			PlayerID: session.ID,
			Amount:   int64(replaced),
		})
		r.resolve()
		return
	}
	r.hand.Turns.Advance()
	r.broadcastExcept(session.ID, &EventMessage{
		Kind:        EventCardsDrawn,
		RoomCode:    r.Code,
		PlayerID:    session.ID,
		Amount:      int64(replaced),
		CurrentTurn: r.hand.Turns.CurrentSeat().PlayerID,
	})
	r.armTurnTimer()
}

// handleFold covers voluntary folds, timer-forced folds and the implicit
// fold of a leaving player.
func (r *Room) handleFold(playerID string, timedOut bool) {
	if r.hand == nil || r.hand.Phase == PhaseFinished {
		return
	}
	seat := r.hand.Seat(playerID)
	if seat == nil || seat.Folded {
		return
	}
	seat.Folded = true
	if timedOut {
		util.Metrics.ForcedFold()
	}

	roomLogger.Info().
		Str(logRoomCode, r.Code).
		Str(logPlayerID, playerID).
		Bool("timedOut", timedOut).
		Msg("Player folded")

	heldTurn := r.hand.Turns.CurrentSeat().PlayerID == playerID
	event := &EventMessage{
		Kind:     EventPlayerFolded,
		RoomCode: r.Code,
		PlayerID: playerID,
		TimedOut: timedOut,
	}

	if r.hand.Turns.ActiveCount() <= 1 {
		r.broadcast(event)
		r.resolve()
		return
	}

	// The fold may have completed the current round.
	switch r.hand.Phase {
	case PhaseBetting:
		if r.hand.Turns.AllActed(func(s *PlayerHandState) bool { return s.PlacedBet }) {
			r.broadcast(event)
			r.enterDrawing()
			return
		}
	case PhaseDrawing:
		if r.hand.Turns.AllActed(func(s *PlayerHandState) bool { return s.DrewCards }) {
			r.broadcast(event)
			r.resolve()
			return
		}
	}

	if heldTurn {
		r.hand.Turns.Advance()
		r.armTurnTimer()
	}
	event.CurrentTurn = r.hand.Turns.CurrentSeat().PlayerID
	r.broadcast(event)
}

// handleTurnTimeout synthesizes a fold for the timed-out player. A stale
// callback for a turn that already moved on is a no-op.
func (r *Room) handleTurnTimeout(msg timer.TimerMsg) {
	if r.hand == nil || r.hand.Phase == PhaseFinished {
		return
	}
	seat := r.hand.Turns.CurrentSeat()
	if seat.PlayerID != msg.PlayerID || seat.Folded {
		roomLogger.Debug().
			Str(logRoomCode, r.Code).
			Str(logPlayerID, msg.PlayerID).
			Msg("Ignoring stale turn timeout")
		return
	}
	roomLogger.Info().
		Str(logRoomCode, r.Code).
		Str(logPlayerID, msg.PlayerID).
		Msg("Turn timed out, forcing a fold")
	r.handleFold(msg.PlayerID, true)
}

// resolve settles the hand: refund when nobody is left, full pot to a lone
// survivor, otherwise a showdown decided by hand category alone. Ties go to
// the first seat in table order.
func (r *Room) resolve() {
	r.actionTimer.Pause()
	hand := r.hand
	hand.Phase = PhaseFinished

	active := hand.Turns.ActiveSeats()
	result := &HandResult{
		Pot:   hand.Pot,
		Seats: r.resultViews(),
	}

	switch {
	case len(active) == 0:
		// Everyone folded: every player gets their own stake back.
		for _, seat := range hand.Turns.Seats {
			if seat.TotalBet > 0 {
				r.manager.ledger.Payout(seat.PlayerID, seat.TotalBet)
			}
		}
		result.NoWinner = true
		result.Reason = "all players folded"
		result.Pot = 0
	case len(active) == 1:
		winner := active[0]
		r.manager.ledger.Payout(winner.PlayerID, hand.Pot)
		result.WinnerID = winner.PlayerID
		result.WinnerName = winner.PlayerName
		result.Reason = wonByFoldReason
	default:
		var winner *PlayerHandState
		var bestRank poker.HandRank
		for _, seat := range active {
			rank := poker.Classify(seat.Cards)
			if winner == nil || rank > bestRank {
				winner = seat
				bestRank = rank
			}
		}
		r.manager.ledger.Payout(winner.PlayerID, hand.Pot)
		result.WinnerID = winner.PlayerID
		result.WinnerName = winner.PlayerName
		result.Reason = bestRank.String()
	}

	memberIDs := r.memberIDs()
	result.Balances = r.manager.ledger.Balances(memberIDs)

	roomLogger.Info().
		Str(logRoomCode, r.Code).
		Uint32("handNum", r.handNum).
		Str("reason", result.Reason).
		Msgf("Hand resolved, pot %d", result.Pot)

	r.broadcast(&EventMessage{
		Kind:     EventGameResult,
		RoomCode: r.Code,
		Result:   result,
	})

	record := &HandResultRecord{
		RoomCode: r.Code,
		RoomName: r.Name,
		HandNum:  r.handNum,
		Result:   result,
		EndedAt:  time.Now(),
	}
	r.manager.handResolved(record, memberIDs)

	// Back to waiting; the room can start a new hand or tear down.
	r.hand = nil
	atomic.StoreInt32(&r.handActive, 0)
	r.manager.broadcastDirectory()
}

func (r *Room) armTurnTimer() {
	seat := r.hand.Turns.CurrentSeat()
	err := r.actionTimer.Reset(timer.TimerMsg{
		RoomCode: r.Code,
		PlayerID: seat.PlayerID,
		SeatNo:   r.hand.Turns.Current,
		ExpireAt: time.Now().Add(r.turnTimeout),
	})
	if err != nil {
		roomLogger.Error().Str(logRoomCode, r.Code).Msgf("Unable to arm turn timer: %v", err)
	}
}

func (r *Room) broadcast(event *EventMessage) {
	for _, member := range r.members {
		member.sendEvent(event)
	}
}

func (r *Room) broadcastExcept(playerID string, event *EventMessage) {
	for _, member := range r.members {
		if member.ID == playerID {
			continue
		}
		member.sendEvent(event)
	}
}

func (r *Room) memberIDs() []string {
	ids := make([]string, len(r.members))
	for i, member := range r.members {
		ids[i] = member.ID
	}
	return ids
}

// memberViews lists members outside of a hand.
func (r *Room) memberViews() []SeatView {
	views := make([]SeatView, len(r.members))
	for i, member := range r.members {
		views[i] = SeatView{
			SeatNo:     i,
			PlayerID:   member.ID,
			PlayerName: member.Name,
		}
	}
	return views
}

// seatViews projects the hand for one viewer. Only the viewer's own cards
// are revealed; revealAll additionally reveals non-folded hands.
func (r *Room) seatViews(viewerID string, revealAll bool) []SeatView {
	seats := r.hand.Turns.Seats
	views := make([]SeatView, len(seats))
	for i, seat := range seats {
		view := SeatView{
			SeatNo:     i,
			PlayerID:   seat.PlayerID,
			PlayerName: seat.PlayerName,
			NumCards:   len(seat.Cards),
			CurrentBet: seat.CurrentBet,
			Folded:     seat.Folded,
		}
		if seat.PlayerID == viewerID || (revealAll && !seat.Folded) {
			view.Cards = seat.Cards
		}
		views[i] = view
	}
	return views
}

// resultViews reveals every non-folded hand and withholds folded ones.
func (r *Room) resultViews() []SeatView {
	return r.seatViews("", true)
}

func (r *Room) ownCards(playerID string) []poker.Card {
	if seat := r.hand.Seat(playerID); seat != nil {
		return seat.Cards
	}
	return nil
}
