package server

import (
	"encoding/json"
	"io"
	rand "math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/randutil"
	"github.com/mixpot/mixpot/internal/room"
)

// End-to-end coverage over a real WebSocket: two clients join a room, get
// seated, the scheduler deals a hand, one folds, and the winner report
// arrives. Real clock, so delays stay in the couple-of-seconds range.

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, server *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(event string, data any) {
	c.t.Helper()
	env, err := NewEnvelope(event, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(env))
}

// waitFor reads frames until the wanted event arrives, failing after the
// deadline. Other events are discarded.
func (c *wsClient) waitFor(event string, timeout time.Duration) json.RawMessage {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.t.Fatalf("waiting for %q: %v", event, err)
		}
		if env.Event == event {
			return env.Data
		}
	}
}

func startTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	logger := log.New(io.Discard)
	seed := int64(100)
	mgr := room.NewManager(logger, room.WithRNGFactory(func() *rand.Rand {
		seed++
		return randutil.New(seed)
	}))
	srv := New(logger, WithRoomManager(mgr))
	srv.ensureRoutes()

	ts := httptest.NewServer(srv.mux)
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestEndToEndHandOverWebSocket(t *testing.T) {
	ts, srv := startTestServer(t)
	_, err := srv.Rooms().CreateRoom("", room.Config{SmallBlind: 5, BigBlind: 10}, "TTABLE")
	require.NoError(t, err)

	alice := dialWS(t, ts)
	bob := dialWS(t, ts)

	alice.send(EvtJoinRoom, JoinRoomData{RoomID: "TTABLE", PlayerName: "Alice"})
	alice.waitFor(EvtRoomJoined, 5*time.Second)
	bob.send(EvtJoinRoom, JoinRoomData{RoomID: "TTABLE", PlayerName: "Bob"})
	bob.waitFor(EvtRoomJoined, 5*time.Second)

	alice.send(EvtSitDown, SitDownData{SeatIndex: 0, BuyIn: 500})
	var sit SitDownSuccessData
	require.NoError(t, json.Unmarshal(alice.waitFor(EvtSitDownSuccess, 5*time.Second), &sit))
	assert.Equal(t, 0, sit.SeatIndex)
	assert.NotEmpty(t, sit.ResumeToken)

	bob.send(EvtSitDown, SitDownData{SeatIndex: 1, BuyIn: 500})
	bob.waitFor(EvtSitDownSuccess, 5*time.Second)

	// Auto-start deals after the grace window; both clients see the hand
	// begin with their private cards only.
	var started GameStartedData
	require.NoError(t, json.Unmarshal(alice.waitFor(EvtGameStarted, 10*time.Second), &started))
	require.Len(t, started.YourHand, 2)
	require.NotNil(t, started.Room)

	bobStarted := GameStartedData{}
	require.NoError(t, json.Unmarshal(bob.waitFor(EvtGameStarted, 10*time.Second), &bobStarted))
	assert.NotEqual(t, started.YourHand, bobStarted.YourHand)

	// Whoever is due to act receives a token and folds; the other wins
	// uncontested.
	actor, other := alice, bob
	active := started.Room.Active
	if started.Room.Seats[active] != nil && started.Room.Seats[active].Name == "Bob" {
		actor, other = bob, alice
	}

	var turn YourTurnData
	require.NoError(t, json.Unmarshal(actor.waitFor(EvtYourTurn, 10*time.Second), &turn))
	require.NotEmpty(t, turn.ActionToken)
	require.Contains(t, turn.ValidActions, game.ActionFold)

	actor.send(EvtPlayerAction, PlayerActionData{Type: "FOLD", ActionToken: turn.ActionToken})

	var result struct {
		Winners []struct {
			PlayerName string `json:"playerName"`
			HandRank   string `json:"handRank"`
			Amount     int    `json:"amount"`
		} `json:"winners"`
		IsUncontested bool `json:"isUncontested"`
	}
	require.NoError(t, json.Unmarshal(other.waitFor(EvtShowdownResult, 10*time.Second), &result))
	require.True(t, result.IsUncontested)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, "Uncontested", result.Winners[0].HandRank)
	assert.Equal(t, 15, result.Winners[0].Amount)
}

func TestWebSocketRejectsActionWithBadToken(t *testing.T) {
	ts, srv := startTestServer(t)
	_, err := srv.Rooms().CreateRoom("", room.Config{SmallBlind: 5, BigBlind: 10}, "TTOKEN")
	require.NoError(t, err)

	alice := dialWS(t, ts)
	bob := dialWS(t, ts)
	alice.send(EvtJoinRoom, JoinRoomData{RoomID: "TTOKEN", PlayerName: "Alice"})
	alice.waitFor(EvtRoomJoined, 5*time.Second)
	bob.send(EvtJoinRoom, JoinRoomData{RoomID: "TTOKEN", PlayerName: "Bob"})
	bob.waitFor(EvtRoomJoined, 5*time.Second)

	alice.send(EvtSitDown, SitDownData{SeatIndex: 0, BuyIn: 500})
	alice.waitFor(EvtSitDownSuccess, 5*time.Second)
	bob.send(EvtSitDown, SitDownData{SeatIndex: 1, BuyIn: 500})
	bob.waitFor(EvtSitDownSuccess, 5*time.Second)
	alice.waitFor(EvtGameStarted, 10*time.Second)

	alice.send(EvtPlayerAction, PlayerActionData{Type: "FOLD", ActionToken: "forged"})
	var invalid ActionInvalidData
	require.NoError(t, json.Unmarshal(alice.waitFor(EvtActionInvalid, 5*time.Second), &invalid))
	assert.Contains(t, invalid.Reason, "token")
}

func TestRoomListOverWebSocket(t *testing.T) {
	ts, srv := startTestServer(t)
	_, err := srv.Rooms().CreateRoom("", room.Config{SmallBlind: 1, BigBlind: 2}, "LISTED")
	require.NoError(t, err)

	c := dialWS(t, ts)
	c.send(EvtGetRoomList, nil)

	var list RoomListData
	require.NoError(t, json.Unmarshal(c.waitFor(EvtRoomList, 5*time.Second), &list))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, "LISTED", list.Rooms[0].ID)
	assert.False(t, list.Rooms[0].HandRunning)
}

func TestHealthAndStatsEndpoints(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Rooms:")
}
