package poker

// HandRank is the category of a five-card hand. Higher values beat lower
// values. Ties within the same category are not broken further.
type HandRank int32

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var rankNames = map[HandRank]string{
	RoyalFlush:    "Royal Flush",
	StraightFlush: "Straight Flush",
	FourOfAKind:   "Four of a Kind",
	FullHouse:     "Full House",
	Flush:         "Flush",
	Straight:      "Straight",
	ThreeOfAKind:  "Three of a Kind",
	TwoPair:       "Two Pair",
	Pair:          "Pair",
	HighCard:      "High Card",
}

func (r HandRank) String() string {
	return rankNames[r]
}

// Classify determines the category of a five-card hand. The result does not
// depend on the order of the cards.
func Classify(cards []Card) HandRank {
	var rankCount [13]int
	suits := make(map[int]int)
	for _, c := range cards {
		rankCount[c.Rank()]++
		suits[c.Suit()]++
	}

	var pairs, trips, quads int
	for _, n := range rankCount {
		switch n {
		case 2:
			pairs++
		case 3:
			trips++
		case 4:
			quads++
		}
	}

	flush := len(suits) == 1
	straight := isStraight(rankCount)
	// A and K together on a straight flush means T-J-Q-K-A.
	royal := straight && flush && rankCount[12] > 0 && rankCount[11] > 0

	switch {
	case royal:
		return RoyalFlush
	case straight && flush:
		return StraightFlush
	case quads == 1:
		return FourOfAKind
	case trips == 1 && pairs == 1:
		return FullHouse
	case flush:
		return Flush
	case straight:
		return Straight
	case trips == 1:
		return ThreeOfAKind
	case pairs == 2:
		return TwoPair
	case pairs == 1:
		return Pair
	default:
		return HighCard
	}
}

// isStraight reports whether the counted ranks form five consecutive values.
// The ace normally sorts highest, so A-2-3-4-5 (the wheel) is special-cased.
func isStraight(rankCount [13]int) bool {
	distinct := 0
	lo, hi := -1, -1
	for i, n := range rankCount {
		if n == 0 {
			continue
		}
		distinct++
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if distinct != 5 {
		return false
	}
	if hi-lo == 4 {
		return true
	}
	// wheel: A,2,3,4,5
	return rankCount[12] > 0 && rankCount[0] > 0 && rankCount[1] > 0 &&
		rankCount[2] > 0 && rankCount[3] > 0
}
