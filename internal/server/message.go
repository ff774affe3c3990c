package server

import (
	"encoding/json"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/ofc"
	"github.com/mixpot/mixpot/internal/room"
	"github.com/mixpot/mixpot/internal/variant"
)

// Envelope is the wire frame for both directions: {event, data}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals a payload into an envelope.
func NewEnvelope(event string, data any) (*Envelope, error) {
	if data == nil {
		return &Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Data: raw}, nil
}

// Client -> server events.
const (
	EvtJoinRoom         = "join-room"
	EvtLeaveRoom        = "leave-room"
	EvtGetRoomList      = "get-room-list"
	EvtSitDown          = "sit-down"
	EvtQuickJoin        = "quick-join"
	EvtRebuy            = "rebuy"
	EvtImBack           = "im-back"
	EvtLeaveSeat        = "leave-seat"
	EvtPlayerAction     = "player-action"
	EvtDrawExchange     = "draw-exchange"
	EvtUseTimebank      = "use-timebank"
	EvtRequestRoomState = "request-room-state"
	EvtOFCPlaceCards    = "ofc-place-cards"
	EvtCreatePrivate    = "create-private-room"
	EvtJoinPrivate      = "join-private-room"
	EvtUpdateConfig     = "update-room-config"
	EvtSetVariant       = "set-game-variant"
	EvtChangeVariant    = "change-variant"
	EvtSetRotation      = "set-rotation"
	EvtToggleMetaGame   = "toggle-meta-game"
)

// Server -> client events.
const (
	EvtRoomJoined     = "room-joined"
	EvtRoomList       = "room-list"
	EvtSitDownSuccess = "sit-down-success"
	EvtRoomState      = "room-state-update"
	EvtGameStarted    = "game-started"
	EvtYourTurn       = "your-turn"
	EvtTimerUpdate    = "timer-update"
	EvtTimebankUpdate = "timebank-update"
	EvtActionInvalid  = "action-invalid"
	EvtDrawComplete   = "draw-complete"
	EvtPlayerDrew     = "player-drew"
	EvtRunoutStarted  = "runout-started"
	EvtRunoutBoard    = "runout-board"
	EvtShowdownResult = "showdown-result"
	EvtSevenDeuce     = "seven-deuce-bonus"
	EvtNextGame       = "next-game"
	EvtConfigUpdated  = "config-updated"
	EvtConfigPending  = "config-pending"
	EvtConfigApplied  = "config-applied"
	EvtOFCDeal        = "ofc-deal"
	EvtOFCRoundDone   = "ofc-round-complete"
	EvtOFCScoring     = "ofc-scoring"
	EvtOFCError       = "ofc-error"
	EvtError          = "error"
)

// Client payloads.

type JoinRoomData struct {
	RoomID      string `json:"roomId"`
	PlayerName  string `json:"playerName"`
	ResumeToken string `json:"resumeToken,omitempty"`
}

type SitDownData struct {
	SeatIndex int `json:"seatIndex"`
	BuyIn     int `json:"buyIn"`
}

type QuickJoinData struct {
	RoomID string `json:"roomId"`
	BuyIn  int    `json:"buyIn"`
}

type RebuyData struct {
	Amount int `json:"amount"`
}

type PlayerActionData struct {
	Type        string `json:"type"`
	Amount      int    `json:"amount,omitempty"`
	ActionToken string `json:"actionToken"`
}

type DrawExchangeData struct {
	DiscardIndexes []int `json:"discardIndexes"`
}

type OFCPlaceCardsData struct {
	Placements  []ofc.Placement `json:"placements"`
	DiscardCard string          `json:"discardCard,omitempty"`
}

type CreatePrivateRoomData struct {
	Config       room.Config `json:"config"`
	Password     string      `json:"password,omitempty"`
	CustomRoomID string      `json:"customRoomId,omitempty"`
}

type JoinPrivateRoomData struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password,omitempty"`
	BuyIn    int    `json:"buyIn"`
}

type UpdateConfigData struct {
	Config room.Config `json:"config"`
}

type SetVariantData struct {
	Variant variant.Code `json:"variant"`
}

type SetRotationData struct {
	Games        []variant.Code `json:"games"`
	HandsPerGame int            `json:"handsPerGame,omitempty"`
}

type ToggleMetaGameData struct {
	Game    string `json:"game"` // "seven-deuce" | "stand-up"
	Enabled bool   `json:"enabled"`
}

// Server payloads.

type RoomJoinedData struct {
	Room         *RoomView `json:"room"`
	YourSocketID string    `json:"yourSocketId"`
	YourHand     []string  `json:"yourHand,omitempty"`
}

type SitDownSuccessData struct {
	SeatIndex   int    `json:"seatIndex"`
	ResumeToken string `json:"resumeToken"`
}

type GameStartedData struct {
	Room     *RoomView `json:"room"`
	YourHand []string  `json:"yourHand,omitempty"`
}

type YourTurnData struct {
	ValidActions    []game.Action `json:"validActions"`
	CurrentBet      int           `json:"currentBet"`
	MinRaise        int           `json:"minRaise"`
	MinBet          int           `json:"minBet"`
	MaxBet          int           `json:"maxBet"`
	CallAmount      int           `json:"callAmount"`
	BetStructure    string        `json:"betStructure"`
	IsCapped        bool          `json:"isCapped"`
	RaisesRemaining int           `json:"raisesRemaining"`
	FixedBetSize    int           `json:"fixedBetSize,omitempty"`
	Timeout         int           `json:"timeout"`
	ActionToken     string        `json:"actionToken"`
}

type TimerUpdateData struct {
	Seconds int `json:"seconds"`
}

type TimebankUpdateData struct {
	Chips int `json:"chips"`
}

type ActionInvalidData struct {
	Reason string `json:"reason"`
}

type PlayerDrewData struct {
	Seat  int `json:"seat"`
	Count int `json:"count"`
}

type DrawCompleteData struct {
	NewCards []string `json:"newCards"`
	Hand     []string `json:"hand"`
}

type RunoutStartedData struct {
	RunoutPhase   string           `json:"runoutPhase"`
	FullBoard     []string         `json:"fullBoard"`
	RevealedHands []game.ShownHand `json:"revealedHands"`
}

type RunoutBoardData struct {
	Board []string `json:"board"`
	Phase string   `json:"phase"`
}

type NextGameData struct {
	NextGame  variant.Code   `json:"nextGame"`
	GamesList []variant.Code `json:"gamesList"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type RoomListEntry struct {
	ID          string       `json:"id"`
	Variant     variant.Code `json:"variant"`
	Players     int          `json:"players"`
	MaxPlayers  int          `json:"maxPlayers"`
	SmallBlind  int          `json:"smallBlind"`
	BigBlind    int          `json:"bigBlind"`
	HandRunning bool         `json:"handRunning"`
	Private     bool         `json:"private"`
}

type RoomListData struct {
	Rooms []RoomListEntry `json:"rooms"`
}
