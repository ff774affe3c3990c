package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixpot/mixpot/internal/randutil"
)

func TestParseCardRoundTrip(t *testing.T) {
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			parsed, err := ParseCard(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	}

	for _, s := range []string{"JK1", "JK2"} {
		c, err := ParseCard(s)
		require.NoError(t, err)
		assert.True(t, c.IsJoker())
		assert.Equal(t, s, c.String())
	}

	for _, bad := range []string{"", "A", "Zx", "Ax", "10s"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestSuitOrderForBringIn(t *testing.T) {
	// Clubs lowest through spades highest: the bring-in tiebreak order.
	assert.True(t, Clubs < Diamonds && Diamonds < Hearts && Hearts < Spades)
}

func TestDeckDealsUniqueCards(t *testing.T) {
	d := NewDeck(randutil.New(1))
	require.Equal(t, 52, d.Size())

	seen := make(map[Card]bool)
	for d.Remaining() > 0 {
		c, err := d.DealOne()
		require.NoError(t, err)
		require.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	require.Len(t, seen, 52)

	_, err := d.DealOne()
	assert.ErrorIs(t, err, ErrDeckExhausted)
}

func TestDeckWithJokers(t *testing.T) {
	d := NewDeck(randutil.New(1), WithJokers())
	require.Equal(t, 54, d.Size())

	jokers := 0
	for d.Remaining() > 0 {
		c, err := d.DealOne()
		require.NoError(t, err)
		if c.IsJoker() {
			jokers++
		}
	}
	assert.Equal(t, 2, jokers)
}

func TestDeckShuffleDeterministicPerSeed(t *testing.T) {
	a := NewDeck(randutil.New(42))
	b := NewDeck(randutil.New(42))
	ca, err := a.Deal(52)
	require.NoError(t, err)
	cb, err := b.Deal(52)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)

	c := NewDeck(randutil.New(43))
	cc, err := c.Deal(52)
	require.NoError(t, err)
	assert.NotEqual(t, ca, cc)
}

func TestDealWithReshuffleRecyclesDiscards(t *testing.T) {
	d := NewDeck(randutil.New(7))
	dealt, err := d.Deal(49)
	require.NoError(t, err)

	// Feed three dealt cards back as discards; a five-card request must
	// succeed by reshuffling them into the three-card stub.
	d.Discard(dealt[0], dealt[1], dealt[2])
	cards, err := d.DealWithReshuffle(5)
	require.NoError(t, err)
	assert.Len(t, cards, 5)

	// One card left in total now; a further large request still fails.
	_, err = d.DealWithReshuffle(5)
	assert.ErrorIs(t, err, ErrDeckExhausted)
}

func TestResolveJokersPicksBestSubstitution(t *testing.T) {
	// Four to a royal plus a joker: the joker must complete the royal.
	row := MustParseCards("As Ks Qs Js")
	row = append(row, Joker1)
	rank := ResolveJokers(row, nil)
	assert.Equal(t, StraightFlush, rank.Category())
	assert.Equal(t, "Royal Flush", Describe(rank))

	// If the ten of spades is already in use elsewhere, the royal is
	// impossible; another ten still makes a straight, but another spade
	// makes a flush, which ranks higher.
	rank = ResolveJokers(row, MustParseCards("Ts"))
	assert.Equal(t, Flush, rank.Category())
}

func TestResolveJokersTwoWildcards(t *testing.T) {
	row := MustParseCards("As Ks Qs")
	row = append(row, Joker1, Joker2)
	rank := ResolveJokers(row, nil)
	assert.Equal(t, StraightFlush, rank.Category())
}

func TestResolveJokersTopRow(t *testing.T) {
	row := MustParseCards("As Ad")
	row = append(row, Joker1)
	rank := ResolveJokers(row, nil)
	assert.Equal(t, ThreeOfAKind, rank.Category())
}
