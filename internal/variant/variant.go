// Package variant defines the poker game variants the server can host and
// the per-variant policies the engine dispatches on: dealing plan, betting
// structure, hand evaluation mode, and street progression. Adding a variant
// is a registry entry, not an engine change.
package variant

import "fmt"

// Code identifies a game variant. Codes are wire-visible and
// configuration-driven; the registry below carries the canonical set.
type Code string

const (
	NLH    Code = "NLH"
	PLO    Code = "PLO"
	PLO8   Code = "PLO8"
	Stud   Code = "7CS"
	Stud8  Code = "7CS8"
	Razz   Code = "RAZZ"
	Deuce7 Code = "2-7_TD"
	Badugi Code = "BADUGI"
	OFC    Code = "OFC"
)

// BettingStructure selects how bet and raise sizes are bounded.
type BettingStructure int

const (
	NoLimit BettingStructure = iota
	PotLimit
	FixedLimit
)

func (b BettingStructure) String() string {
	switch b {
	case NoLimit:
		return "no_limit"
	case PotLimit:
		return "pot_limit"
	case FixedLimit:
		return "fixed_limit"
	default:
		return "unknown"
	}
}

// Family selects the dealing plan.
type Family int

const (
	FamilyBoard Family = iota // hole cards + community board
	FamilyStud                // up/down streets, bring-in, no button order
	FamilyDraw                // full hand, draw exchanges between rounds
	FamilyOFC                 // open-face placement, no betting
)

// ShowdownMode selects the evaluation used to award pots.
type ShowdownMode int

const (
	ShowdownHigh       ShowdownMode = iota
	ShowdownHighSplit8              // hi-lo split, eight-or-better low
	ShowdownA5Low                   // Razz
	Showdown27Low                   // deuce-to-seven
	ShowdownBadugi
)

// Street is a betting-round label. Each variant walks its own subsequence.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	ThirdStreet
	FourthStreet
	FifthStreet
	SixthStreet
	SeventhStreet
	Predraw
	FirstDraw
	SecondDraw
	ThirdDraw
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "PREFLOP"
	case Flop:
		return "FLOP"
	case Turn:
		return "TURN"
	case River:
		return "RIVER"
	case ThirdStreet:
		return "THIRD_STREET"
	case FourthStreet:
		return "FOURTH_STREET"
	case FifthStreet:
		return "FIFTH_STREET"
	case SixthStreet:
		return "SIXTH_STREET"
	case SeventhStreet:
		return "SEVENTH_STREET"
	case Predraw:
		return "PREDRAW"
	case FirstDraw:
		return "FIRST_DRAW"
	case SecondDraw:
		return "SECOND_DRAW"
	case ThirdDraw:
		return "THIRD_DRAW"
	default:
		return "UNKNOWN"
	}
}

// Definition carries everything the engine needs to run a variant.
type Definition struct {
	Code      Code
	Name      string
	Family    Family
	Structure BettingStructure
	Showdown  ShowdownMode

	// HoleCards is the number of private cards dealt at hand start. For
	// stud it counts the two down cards only; the first up card is part of
	// the initial deal plan.
	HoleCards int

	// HandSize is the full hand size for draw games.
	HandSize int

	// OmahaRule forces exactly-two-hole-card evaluation.
	OmahaRule bool

	// HasButton reports whether the variant uses a dealer button and
	// blinds. Stud games use antes and a bring-in instead.
	HasButton bool

	// MaxDrawCount caps how many cards one exchange may replace.
	MaxDrawCount int

	// DrawRounds is the number of draw phases (0 for non-draw games).
	DrawRounds int

	// Streets is the betting-round sequence.
	Streets []Street

	// BigBetFromStreet is the street index at which fixed-limit games
	// switch from the small bet to the big bet.
	BigBetFromStreet int

	// BoardCards maps street index -> community cards dealt entering that
	// street (board games only).
	BoardCards []int

	// MaxSeats caps seating for the variant (0 means the room default).
	MaxSeats int
}

// IsDrawStreet reports whether a draw phase precedes betting on the street
// at the given index (every street after the first, for draw games).
func (d Definition) IsDrawStreet(streetIdx int) bool {
	return d.DrawRounds > 0 && streetIdx > 0
}

var boardStreets = []Street{Preflop, Flop, Turn, River}
var studStreets = []Street{ThirdStreet, FourthStreet, FifthStreet, SixthStreet, SeventhStreet}
var drawStreets = []Street{Predraw, FirstDraw, SecondDraw, ThirdDraw}

var registry = map[Code]Definition{
	NLH: {
		Code: NLH, Name: "No-Limit Hold'em",
		Family: FamilyBoard, Structure: NoLimit, Showdown: ShowdownHigh,
		HoleCards: 2, HasButton: true,
		Streets: boardStreets, BoardCards: []int{0, 3, 1, 1}, BigBetFromStreet: 2,
	},
	PLO: {
		Code: PLO, Name: "Pot-Limit Omaha",
		Family: FamilyBoard, Structure: PotLimit, Showdown: ShowdownHigh,
		HoleCards: 4, OmahaRule: true, HasButton: true,
		Streets: boardStreets, BoardCards: []int{0, 3, 1, 1}, BigBetFromStreet: 2,
	},
	PLO8: {
		Code: PLO8, Name: "Pot-Limit Omaha Hi-Lo",
		Family: FamilyBoard, Structure: PotLimit, Showdown: ShowdownHighSplit8,
		HoleCards: 4, OmahaRule: true, HasButton: true,
		Streets: boardStreets, BoardCards: []int{0, 3, 1, 1}, BigBetFromStreet: 2,
	},
	Stud: {
		Code: Stud, Name: "Seven-Card Stud",
		Family: FamilyStud, Structure: FixedLimit, Showdown: ShowdownHigh,
		HoleCards: 2,
		Streets:   studStreets, BigBetFromStreet: 2,
	},
	Stud8: {
		Code: Stud8, Name: "Seven-Card Stud Hi-Lo",
		Family: FamilyStud, Structure: FixedLimit, Showdown: ShowdownHighSplit8,
		HoleCards: 2,
		Streets:   studStreets, BigBetFromStreet: 2,
	},
	Razz: {
		Code: Razz, Name: "Razz",
		Family: FamilyStud, Structure: FixedLimit, Showdown: ShowdownA5Low,
		HoleCards: 2,
		Streets:   studStreets, BigBetFromStreet: 2,
	},
	Deuce7: {
		Code: Deuce7, Name: "2-7 Triple Draw",
		Family: FamilyDraw, Structure: FixedLimit, Showdown: Showdown27Low,
		HoleCards: 5, HandSize: 5, HasButton: true,
		MaxDrawCount: 5, DrawRounds: 3,
		Streets: drawStreets, BigBetFromStreet: 2,
	},
	Badugi: {
		Code: Badugi, Name: "Badugi",
		Family: FamilyDraw, Structure: FixedLimit, Showdown: ShowdownBadugi,
		HoleCards: 4, HandSize: 4, HasButton: true,
		MaxDrawCount: 4, DrawRounds: 3,
		Streets: drawStreets, BigBetFromStreet: 2,
	},
	OFC: {
		Code: OFC, Name: "Open-Face Chinese Pineapple",
		Family: FamilyOFC, Showdown: ShowdownHigh,
		HasButton: true, MaxSeats: 3,
	},
}

// Get returns the definition for a code.
func Get(code Code) (Definition, error) {
	def, ok := registry[code]
	if !ok {
		return Definition{}, fmt.Errorf("unknown game variant %q", code)
	}
	return def, nil
}

// MustGet returns the definition for a code, panicking on unknown codes.
// Intended for registry-driven call sites that already validated the code.
func MustGet(code Code) Definition {
	def, err := Get(code)
	if err != nil {
		panic(err)
	}
	return def
}

// Codes returns the canonical variant list in display order.
func Codes() []Code {
	return []Code{NLH, PLO, PLO8, Stud, Stud8, Razz, Deuce7, Badugi, OFC}
}

// Valid reports whether the code names a registered variant.
func Valid(code Code) bool {
	_, ok := registry[code]
	return ok
}
