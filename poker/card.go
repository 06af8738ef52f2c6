package poker

import (
	"fmt"
	"strings"
)

// Card packs the rank into the high nibble and the suit into the low nibble.
// Ranks are indexed 0-12 for 2 through A, suits use one bit each.
type Card uint8

var (
	strRanks = "23456789TJQKA"

	charRankToIntRank = map[uint8]int{}
	charSuitToIntSuit = map[uint8]int{
		's': 1, // spades
		'h': 2, // hearts
		'd': 4, // diamonds
		'c': 8, // clubs
	}
	intSuitToCharSuit = "xshxdxxxc"
)

var prettySuits = map[int]string{
	1: "♠", // spades
	2: "❤", // hearts
	4: "♦", // diamonds
	8: "♣", // clubs
}

func init() {
	for i := range strRanks {
		charRankToIntRank[strRanks[i]] = i
	}
}

// NewCard parses a two-character card string such as "As" or "Td".
func NewCard(s string) Card {
	rankInt := charRankToIntRank[s[0]]
	suitInt := charSuitToIntSuit[s[1]]
	return Card(uint8(rankInt<<4) | uint8(suitInt))
}

// NewCards parses a list of two-character card strings.
func NewCards(strs ...string) []Card {
	cards := make([]Card, len(strs))
	for i, s := range strs {
		cards[i] = NewCard(s)
	}
	return cards
}

func (c Card) Rank() int {
	return int(c>>4) & 0xF
}

func (c Card) Suit() int {
	return int(c) & 0xF
}

func (c Card) String() string {
	return string(strRanks[c.Rank()]) + string(intSuitToCharSuit[c.Suit()])
}

func (c Card) MarshalJSON() ([]byte, error) {
	return []byte("\"" + c.String() + "\""), nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	if len(b) != 4 {
		return fmt.Errorf("invalid card %s", string(b))
	}
	*c = NewCard(string(b[1:3]))
	return nil
}

func CardToString(c Card) string {
	return fmt.Sprintf("%s%s", string(strRanks[c.Rank()]), prettySuits[c.Suit()])
}

func CardsToString(cards []Card) string {
	var b strings.Builder
	b.Grow(32)
	fmt.Fprintf(&b, "[")
	for _, c := range cards {
		fmt.Fprintf(&b, " %s ", CardToString(c))
	}
	fmt.Fprintf(&b, "]")
	return b.String()
}
