package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tankarena/server/internal/config"
	"tankarena/server/internal/proto"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Hub, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	h := NewHub(cfg, Deps{})
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})
	return h, srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode %q: %v", payload, err)
	}
	return msg
}

// readUntil skips messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	for i := 0; i < 200; i++ {
		msg := readMessage(t, conn)
		if msg["type"] == msgType {
			return msg
		}
	}
	t.Fatalf("no %q message within 200 reads", msgType)
	return nil
}

func connect(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	sendJSON(t, conn, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeConnect, APIVersion: proto.APIVersion})
	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeConnectOk {
		t.Fatalf("handshake reply %v, want connectOk", msg)
	}
	sessionID, _ := msg["sessionId"].(string)
	if sessionID == "" {
		t.Fatalf("connectOk carried no session id")
	}
	return sessionID
}

func TestHandshakeRejectsVersionMismatch(t *testing.T) {
	_, srv := newTestServer(t, nil)
	conn := dialWS(t, srv)

	sendJSON(t, conn, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeConnect, APIVersion: 99})
	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeConnectError {
		t.Fatalf("reply type %v, want connectError", msg["type"])
	}
	if msg["code"] != string(proto.ErrVersionMismatch) {
		t.Fatalf("reply code %v, want version_mismatch", msg["code"])
	}
}

func TestHandshakeRejectsNonConnectFirstMessage(t *testing.T) {
	_, srv := newTestServer(t, nil)
	conn := dialWS(t, srv)

	sendJSON(t, conn, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeHeartbeat})
	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeConnectError {
		t.Fatalf("reply type %v, want connectError", msg["type"])
	}
}

func TestServerFullRefusesConnections(t *testing.T) {
	_, srv := newTestServer(t, func(cfg *config.Config) { cfg.MaxSessions = 1 })

	first := dialWS(t, srv)
	connect(t, first)

	second := dialWS(t, srv)
	sendJSON(t, second, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeConnect, APIVersion: proto.APIVersion})
	msg := readMessage(t, second)
	if msg["type"] != proto.TypeConnectError || msg["code"] != string(proto.ErrServerFull) {
		t.Fatalf("expected server_full connectError, got %v", msg)
	}
}

func TestRoomCreateAndHeartbeat(t *testing.T) {
	h, srv := newTestServer(t, nil)
	conn := dialWS(t, srv)
	connect(t, conn)

	sendJSON(t, conn, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeRoomCreate, Nickname: "alpha"})
	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeRoomCreateOk {
		t.Fatalf("create reply %v", msg)
	}
	code, _ := msg["roomCode"].(string)
	if len(code) != 6 {
		t.Fatalf("room code %q, want 6 characters", code)
	}
	if h.Registry().Len() != 1 {
		t.Fatalf("registry has %d rooms, want 1", h.Registry().Len())
	}

	sentAt := time.Now().UnixMilli()
	sendJSON(t, conn, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeHeartbeat, SentAt: sentAt})
	ack := readUntil(t, conn, proto.TypeHeartbeatAck)
	if int64(ack["clientTime"].(float64)) != sentAt {
		t.Fatalf("heartbeat echo %v, want %d", ack["clientTime"], sentAt)
	}
}

func TestRoomJoinNotifiesCreator(t *testing.T) {
	_, srv := newTestServer(t, nil)

	creator := dialWS(t, srv)
	connect(t, creator)
	sendJSON(t, creator, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeRoomCreate, Nickname: "alpha"})
	created := readMessage(t, creator)
	code := created["roomCode"].(string)

	joiner := dialWS(t, srv)
	connect(t, joiner)
	sendJSON(t, joiner, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeRoomJoin, Nickname: "bravo", RoomCode: code})
	joined := readMessage(t, joiner)
	if joined["type"] != proto.TypeRoomJoinOk {
		t.Fatalf("join reply %v", joined)
	}
	room := joined["room"].(map[string]any)
	players := room["players"].([]any)
	if len(players) != 2 {
		t.Fatalf("room payload has %d players, want 2", len(players))
	}
	if joined["stateId"] != room["stateId"] {
		t.Fatalf("top-level stateId %v does not match room payload %v", joined["stateId"], room["stateId"])
	}
	if joined["stateId"].(float64) != 2 {
		t.Fatalf("stateId %v, want 2 after two joins", joined["stateId"])
	}

	delta := readUntil(t, creator, proto.TypeRoomDelta)
	joinedPlayers := delta["joined"].([]any)
	if len(joinedPlayers) != 1 {
		t.Fatalf("delta joined %v, want one entry", delta["joined"])
	}
	entry := joinedPlayers[0].(map[string]any)
	if entry["nickname"] != "bravo" {
		t.Fatalf("delta nickname %v, want bravo", entry["nickname"])
	}
}

func TestRoomJoinUnknownCode(t *testing.T) {
	_, srv := newTestServer(t, nil)
	conn := dialWS(t, srv)
	connect(t, conn)

	sendJSON(t, conn, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeRoomJoin, Nickname: "alpha", RoomCode: "ZZZZZZ"})
	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeRoomJoinError || msg["code"] != string(proto.ErrUnknownCode) {
		t.Fatalf("expected unknown_code join error, got %v", msg)
	}
}

func TestMessagesGatedBySessionState(t *testing.T) {
	_, srv := newTestServer(t, nil)
	conn := dialWS(t, srv)
	connect(t, conn)

	sendJSON(t, conn, proto.ClientMessage{
		Ver:   proto.Version,
		Type:  proto.TypeInput,
		Tick:  0,
		Input: &proto.InputPayload{MoveX: 1},
	})
	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeServerError || msg["code"] != string(proto.ErrInvalidState) {
		t.Fatalf("expected invalid_state serverError, got %v", msg)
	}
}

func TestMatchFlowDeliversSnapshots(t *testing.T) {
	_, srv := newTestServer(t, nil)

	creator := dialWS(t, srv)
	connect(t, creator)
	sendJSON(t, creator, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeRoomCreate, Nickname: "alpha"})
	created := readMessage(t, creator)
	code := created["roomCode"].(string)

	joiner := dialWS(t, srv)
	connect(t, joiner)
	sendJSON(t, joiner, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeRoomJoin, Nickname: "bravo", RoomCode: code})
	readMessage(t, joiner)

	sendJSON(t, creator, proto.ClientMessage{Ver: proto.Version, Type: proto.TypeStartCountdown, Seconds: 1})
	readUntil(t, creator, proto.TypeCountdownStarted)
	readUntil(t, creator, proto.TypeCountdownFinished)
	readUntil(t, creator, proto.TypeGameMap)
	readUntil(t, creator, proto.TypeGameStart)

	snapshot := readUntil(t, creator, proto.TypeGameSnapshot)
	players := snapshot["players"].([]any)
	if len(players) < 2 {
		t.Fatalf("snapshot has %d players, want at least the two humans", len(players))
	}
	if snapshot["gameId"] == "" {
		t.Fatalf("snapshot carried no game id")
	}

	// The joiner receives the same match start over its own connection.
	readUntil(t, joiner, proto.TypeGameSnapshot)
}

func TestHealthAndDiagnosticsEndpoints(t *testing.T) {
	_, srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/diagnostics")
	if err != nil {
		t.Fatalf("diagnostics request: %v", err)
	}
	defer resp2.Body.Close()
	var diag struct {
		Status     string `json:"status"`
		APIVersion uint16 `json:"apiVersion"`
		TickRate   int    `json:"tickRate"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&diag); err != nil {
		t.Fatalf("decode diagnostics: %v", err)
	}
	if diag.Status != "ok" || diag.APIVersion != proto.APIVersion {
		t.Fatalf("unexpected diagnostics %+v", diag)
	}
	if diag.TickRate != 60 {
		t.Fatalf("diagnostics tick rate %d, want 60", diag.TickRate)
	}
}

func TestSanitizeNickname(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "player"},
		{"alpha", "alpha"},
		{strings.Repeat("x", 40), strings.Repeat("x", 24)},
	}
	for _, tc := range cases {
		if got := sanitizeNickname(tc.in); got != tc.want {
			t.Fatalf("sanitizeNickname(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
