package timer

import (
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var actionTimerLogger = log.With().Str("logger_name", "timer::action_timer").Logger()

// TimerMsg identifies the turn being timed. The room re-validates every
// field when the callback fires, since the turn may already have moved on.
type TimerMsg struct {
	RoomCode string
	PlayerID string
	SeatNo   int
	ExpireAt time.Time
}

// ActionTimer arms a single-shot countdown for the acting player. Resetting
// replaces any previous countdown, so at most one is live per room.
type ActionTimer struct {
	roomCode string

	chReset   chan TimerMsg
	chPause   chan bool
	chEndLoop chan bool

	callback        func(TimerMsg)
	currentTimerMsg TimerMsg

	secondsTillTimeout uint32
	lastResetAt        time.Time

	crashHandler func()
}

func NewActionTimer(roomCode string, callback func(TimerMsg), crashHandler func()) *ActionTimer {
	at := ActionTimer{
		roomCode:     roomCode,
		chReset:      make(chan TimerMsg),
		chPause:      make(chan bool),
		chEndLoop:    make(chan bool, 10),
		callback:     callback,
		crashHandler: crashHandler,
	}
	return &at
}

func (a *ActionTimer) Run() {
	go a.loop()
}

func (a *ActionTimer) Destroy() {
	a.chEndLoop <- true
}

func (a *ActionTimer) loop() {
	defer func() {
		err := recover()
		if err != nil {
			debug.PrintStack()
			actionTimerLogger.Error().
				Str("room", a.roomCode).
				Msgf("Action timer loop returning due to panic: %s\nStack Trace:\n%s", err, string(debug.Stack()))

			a.crashHandler()
		} else {
			actionTimerLogger.Info().Str("room", a.roomCode).Msg("Action timer loop returning")
		}
	}()

	var expirationTime time.Time
	paused := true
	for {
		select {
		case <-a.chEndLoop:
			return
		case <-a.chPause:
			paused = true
		case msg := <-a.chReset:
			// Start the new countdown.
			a.currentTimerMsg = msg
			expirationTime = msg.ExpireAt
			paused = false
		default:
			if !paused {
				remainingSec := expirationTime.Sub(time.Now()).Seconds()
				if remainingSec < 0 {
					remainingSec = 0
				}
				// Tracked so new observers can see how much time the
				// acting player has left.
				a.secondsTillTimeout = uint32(remainingSec)

				if remainingSec <= 0 {
					// The player timed out.
					a.callback(a.currentTimerMsg)
					expirationTime = time.Time{}
					paused = true
				}
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Pause stops the countdown without discarding the timer loop. Used when the
// acting player responds in time and when a hand ends.
func (a *ActionTimer) Pause() {
	a.chPause <- true
}

// Reset arms the timer for a new turn, replacing any previous countdown.
func (a *ActionTimer) Reset(t TimerMsg) error {
	if t.PlayerID == "" {
		return errors.New("invalid playerID")
	}
	if time.Time.IsZero(t.ExpireAt) {
		return errors.New("invalid expireAt")
	}
	a.lastResetAt = time.Now()
	a.chReset <- t
	return nil
}

func (a *ActionTimer) GetElapsedTime() time.Duration {
	return time.Now().Sub(a.lastResetAt)
}

func (a *ActionTimer) GetRemainingSec() uint32 {
	return a.secondsTillTimeout
}

func (a *ActionTimer) GetCurrentTimerMsg() TimerMsg {
	return a.currentTimerMsg
}
