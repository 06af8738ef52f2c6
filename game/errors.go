package game

import "fmt"

// Error codes reported to the offending connection. None of these terminate
// the room or the process.
const (
	ErrCodeInvalidRoom       = "INVALID_ROOM"
	ErrCodeNotYourTurn       = "NOT_YOUR_TURN"
	ErrCodeWrongPhase        = "WRONG_PHASE"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrCodePlayerNotFound    = "PLAYER_NOT_FOUND"
	ErrCodeMalformedMessage  = "MALFORMED_MESSAGE"
)

type InvalidRoomError struct {
	RoomCode string
	Reason   string
}

func (e InvalidRoomError) Error() string {
	return fmt.Sprintf("invalid room [%s]: %s", e.RoomCode, e.Reason)
}

type NotYourTurnError struct {
	PlayerID string
}

func (e NotYourTurnError) Error() string {
	return fmt.Sprintf("it is not player %s's turn", e.PlayerID)
}

type WrongPhaseError struct {
	Phase  GamePhase
	Action string
}

func (e WrongPhaseError) Error() string {
	return fmt.Sprintf("action %s is not allowed in phase %s", e.Action, e.Phase)
}

type InsufficientFundsError struct {
	PlayerID string
	Amount   int64
	Balance  int64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("player %s cannot stake %d with balance %d", e.PlayerID, e.Amount, e.Balance)
}

type PlayerNotFoundError struct {
	PlayerID string
}

func (e PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player %s not found", e.PlayerID)
}

type MalformedMessageError struct {
	Reason string
}

func (e MalformedMessageError) Error() string {
	return e.Reason
}

// ErrorCode maps a game error to its wire code.
func ErrorCode(err error) string {
	switch err.(type) {
	case InvalidRoomError:
		return ErrCodeInvalidRoom
	case NotYourTurnError:
		return ErrCodeNotYourTurn
	case WrongPhaseError:
		return ErrCodeWrongPhase
	case InsufficientFundsError:
		return ErrCodeInsufficientFunds
	case PlayerNotFoundError:
		return ErrCodePlayerNotFound
	case MalformedMessageError:
		return ErrCodeMalformedMessage
	default:
		return ErrCodeMalformedMessage
	}
}
