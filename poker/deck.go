package poker

import (
	"errors"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when a deal would underflow the deck. The
// engine treats it as a fatal hand abort; it should never fire for a
// correctly sized table.
var ErrDeckExhausted = errors.New("poker: deck exhausted")

// Deck is a shuffled deck of cards. The zero value is not usable; construct
// with NewDeck. The discard pile collects burns and draw-game discards and
// is reshuffled back in if a draw exchange would otherwise underflow.
type Deck struct {
	cards    []Card
	next     int
	discards []Card
	rng      *rand.Rand
}

// DeckOption configures deck construction.
type DeckOption func(*Deck)

// WithJokers adds the two wildcards used by OFC games.
func WithJokers() DeckOption {
	return func(d *Deck) {
		d.cards = append(d.cards, Joker1, Joker2)
	}
}

// NewDeck creates a shuffled deck using the provided random source.
func NewDeck(rng *rand.Rand, opts ...DeckOption) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 54),
		rng:   rng,
	}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Shuffle()
	return d
}

// Shuffle performs a Fisher-Yates shuffle and rewinds the deal position.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns n cards from the top of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// DealOne removes and returns a single card.
func (d *Deck) DealOne() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// Burn discards the top card face down.
func (d *Deck) Burn() error {
	c, err := d.DealOne()
	if err != nil {
		return err
	}
	d.discards = append(d.discards, c)
	return nil
}

// Discard adds cards to the discard pile. Draw games feed replaced cards
// back through here.
func (d *Deck) Discard(cards ...Card) {
	d.discards = append(d.discards, cards...)
}

// DealWithReshuffle deals n cards, reshuffling the discard pile into the
// remaining deck if the deck alone cannot cover the request. Used by draw
// exchanges, where many-handed tables can legitimately run the stub dry.
func (d *Deck) DealWithReshuffle(n int) ([]Card, error) {
	if d.next+n > len(d.cards) && len(d.discards) > 0 {
		remaining := append([]Card(nil), d.cards[d.next:]...)
		remaining = append(remaining, d.discards...)
		d.discards = nil
		d.cards = remaining
		d.next = 0
		for i := len(d.cards) - 1; i > 0; i-- {
			j := d.rng.IntN(i + 1)
			d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
		}
	}
	return d.Deal(n)
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Size returns the number of cards in the deck, dealt or not. After
// DealWithReshuffle rebuilds the deck, it counts the rebuilt deck only.
func (d *Deck) Size() int {
	return len(d.cards)
}
