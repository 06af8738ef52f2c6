package game

// TurnController tracks whose turn it is within a hand. The seat order is
// fixed when the hand starts.
type TurnController struct {
	Seats   []*PlayerHandState
	Current int
}

func NewTurnController(seats []*PlayerHandState) *TurnController {
	return &TurnController{
		Seats:   seats,
		Current: 0,
	}
}

// CurrentSeat returns the seat holding the turn.
func (tc *TurnController) CurrentSeat() *PlayerHandState {
	return tc.Seats[tc.Current]
}

// Advance moves the turn to the next seat that has not folded, wrapping
// around the table. The hand must still have at least one non-folded seat;
// calling Advance with none is a caller error and leaves the turn in place.
func (tc *TurnController) Advance() int {
	for i := 1; i <= len(tc.Seats); i++ {
		idx := (tc.Current + i) % len(tc.Seats)
		if !tc.Seats[idx].Folded {
			tc.Current = idx
			return idx
		}
	}
	return tc.Current
}

// ResetToFirstActive puts the turn on the first non-folded seat. Used on
// phase transitions.
func (tc *TurnController) ResetToFirstActive() int {
	for idx, seat := range tc.Seats {
		if !seat.Folded {
			tc.Current = idx
			return idx
		}
	}
	return tc.Current
}

// AllActed reports whether every non-folded seat satisfies the phase flag.
// Used identically for "all have bet" and "all have drawn".
func (tc *TurnController) AllActed(acted func(*PlayerHandState) bool) bool {
	for _, seat := range tc.Seats {
		if seat.Folded {
			continue
		}
		if !acted(seat) {
			return false
		}
	}
	return true
}

// ActiveSeats returns the non-folded seats in table order.
func (tc *TurnController) ActiveSeats() []*PlayerHandState {
	active := make([]*PlayerHandState, 0, len(tc.Seats))
	for _, seat := range tc.Seats {
		if !seat.Folded {
			active = append(active, seat)
		}
	}
	return active
}

// ActiveCount returns the number of non-folded seats.
func (tc *TurnController) ActiveCount() int {
	count := 0
	for _, seat := range tc.Seats {
		if !seat.Folded {
			count++
		}
	}
	return count
}
