package poker

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"

	"github.com/pkg/errors"
)

// ErrEmptyDeck is returned when a deal asks for more cards than remain.
var ErrEmptyDeck = errors.New("not enough cards remaining in the deck")

var fullDeck *Deck

func init() {
	fullDeck = &Deck{cards: initializeFullCards()}
}

type Deck struct {
	cards   []Card
	randGen *rand.Rand
}

func newSeed() rand.Source {
	var b [8]byte
	_, err := crypto_rand.Read(b[:])
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}
	return rand.NewSource(int64(binary.LittleEndian.Uint64(b[:])))
}

// NewDeck returns a full ordered 52-card deck. A nil source seeds the
// generator from crypto/rand.
func NewDeck(source rand.Source) *Deck {
	if source == nil {
		source = newSeed()
	}
	deck := &Deck{randGen: rand.New(source)}
	deck.cards = make([]Card, len(fullDeck.cards))
	copy(deck.cards, fullDeck.cards)
	return deck
}

// Shuffle performs an in-place Fisher-Yates permutation of the remaining
// cards. Called once per hand before any dealing.
func (deck *Deck) Shuffle() *Deck {
	for i := len(deck.cards) - 1; i > 0; i-- {
		j := deck.randGen.Intn(i + 1)
		deck.cards[i], deck.cards[j] = deck.cards[j], deck.cards[i]
	}
	return deck
}

// Deal removes and returns the first n cards.
func (deck *Deck) Deal(n int) ([]Card, error) {
	if n > len(deck.cards) {
		return nil, ErrEmptyDeck
	}
	cards := make([]Card, n)
	copy(cards, deck.cards[:n])
	deck.cards = deck.cards[n:]
	return cards, nil
}

// DrawOne removes and returns the front card.
func (deck *Deck) DrawOne() (Card, error) {
	if len(deck.cards) == 0 {
		return 0, ErrEmptyDeck
	}
	card := deck.cards[0]
	deck.cards = deck.cards[1:]
	return card, nil
}

func (deck *Deck) Remaining() int {
	return len(deck.cards)
}

func (deck *Deck) Empty() bool {
	return len(deck.cards) == 0
}

func initializeFullCards() []Card {
	var cards []Card
	for _, rank := range strRanks {
		for suit := range charSuitToIntSuit {
			cards = append(cards, NewCard(string(rank)+string(suit)))
		}
	}
	return cards
}

func (deck *Deck) PrettyPrint() string {
	return CardsToString(deck.cards)
}
