// Package server wires sessions, rooms and the websocket transport into the
// authoritative game server.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tankarena/server/internal/config"
	"tankarena/server/internal/proto"
	"tankarena/server/internal/room"
	"tankarena/server/internal/telemetry"
	"tankarena/server/logging"
	loglifecycle "tankarena/server/logging/lifecycle"
	lognetwork "tankarena/server/logging/network"
)

// Hub owns every connected session and routes client messages to the room
// registry. It is the room layer's Messenger: rooms address sessions by id
// and never see connections.
type Hub struct {
	cfg       config.Config
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	publisher logging.Publisher
	registry  *room.Registry

	mu       sync.Mutex
	sessions map[string]*session
}

// Deps bundles the hub's ambient services.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
}

// NewHub constructs the hub and its room registry.
func NewHub(cfg config.Config, deps Deps) *Hub {
	if deps.Logger == nil {
		deps.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NopMetrics{}
	}
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}

	h := &Hub{
		cfg:       cfg,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		publisher: deps.Publisher,
		sessions:  make(map[string]*session),
	}
	h.registry = room.NewRegistry(room.Config{
		MaxRooms:         cfg.Rooms.MaxRooms,
		CountdownSeconds: cfg.Rooms.CountdownSeconds,
		TickRate:         cfg.Match.TickRate,
		BestOf:           cfg.Match.BestOf,
		RoundDuration:    cfg.Match.RoundDuration.Seconds(),
		FillWithBots:     cfg.Match.FillWithBots,
		JournalCapacity:  cfg.Match.JournalCapacity,
		JournalMaxAge:    cfg.Match.JournalMaxAge,
		KeyframeInterval: cfg.Match.KeyframeInterval,
		ReapGrace:        cfg.Rooms.ReapGrace,
		SweepInterval:    cfg.Rooms.SweepInterval,
	}, room.Deps{
		Messenger: h,
		Logger:    deps.Logger,
		Metrics:   deps.Metrics,
		Publisher: deps.Publisher,
	})
	return h
}

// Registry exposes the room table for the sweep loop and diagnostics.
func (h *Hub) Registry() *room.Registry { return h.registry }

// Close tears down every session and the registry.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for id, sess := range h.sessions {
		sessions = append(sessions, sess)
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	for _, sess := range sessions {
		sess.sub.close()
	}
	h.registry.Close()
}

// register admits a connection that passed the version handshake.
func (h *Hub) register(sub *subscriber, remoteAddr string, clientVersion uint16) (*session, proto.ErrorCode, bool) {
	h.mu.Lock()
	if len(h.sessions) >= h.cfg.MaxSessions {
		h.mu.Unlock()
		return nil, proto.ErrServerFull, false
	}
	sess := &session{
		id:          uuid.NewString(),
		sub:         sub,
		state:       StateConnected,
		connectedAt: time.Now(),
	}
	sub.sessionID = sess.id
	h.sessions[sess.id] = sess
	count := len(h.sessions)
	h.mu.Unlock()

	h.metrics.Store("sessions_active", uint64(count))
	loglifecycle.SessionConnected(context.Background(), h.publisher,
		logging.EntityRef{ID: sess.id, Kind: logging.EntityKindSession},
		loglifecycle.SessionConnectedPayload{RemoteAddr: remoteAddr, Version: int(clientVersion)}, nil)
	h.logger.Printf("session %s: connected from %s", sess.id, remoteAddr)
	return sess, "", true
}

// disconnect removes a session, leaving its room first. Idempotent.
func (h *Hub) disconnect(sessionID, reason string) {
	h.mu.Lock()
	sess, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
	}
	count := len(h.sessions)
	roomCode := ""
	if sess != nil {
		roomCode = sess.roomCode
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	if roomCode != "" {
		if r, found := h.registry.Get(roomCode); found {
			if _, err := r.Drop(sessionID); err != nil && err != room.ErrNotMember {
				h.logger.Printf("session %s: drop on disconnect: %v", sessionID, err)
			}
			// A Waiting room keeps its code for rejoin; a room emptied
			// mid-game is torn down right away.
			if len(r.Members()) == 0 && r.Phase() != room.PhaseWaiting {
				h.registry.Remove(roomCode, "abandoned")
			}
		}
	}
	sess.sub.close()

	h.metrics.Store("sessions_active", uint64(count))
	loglifecycle.SessionDisconnected(context.Background(), h.publisher,
		logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		loglifecycle.SessionDisconnectedPayload{Reason: reason}, nil)
	h.logger.Printf("session %s: disconnected (%s)", sessionID, reason)
}

// SendControl implements room.Messenger on the reliable lane. The message
// is queued for the subscriber's pump; callers (often a room holding its own
// lock) never touch the socket.
func (h *Hub) SendControl(sessionID string, msg any) {
	h.mu.Lock()
	sess, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if !sess.sub.queueControl(msg) {
		h.logger.Printf("session %s: control backlog full", sessionID)
		go h.disconnect(sessionID, "slow_consumer")
	}
}

// SendState implements room.Messenger on the latest-wins lane.
func (h *Hub) SendState(sessionID string, msg any) {
	h.mu.Lock()
	sess, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if sess.sub.queueState(msg) {
		h.metrics.Add("state_frames_dropped", 1)
		lognetwork.StateBacklogDrop(context.Background(), h.publisher, 0,
			logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession}, nil)
	}
}

// handleMessage dispatches one decoded client message. Called from the
// session's read loop only.
func (h *Hub) handleMessage(sess *session, msg proto.ClientMessage) {
	h.mu.Lock()
	state := sess.state
	roomCode := sess.roomCode
	h.mu.Unlock()

	if !allowedInState(state, msg.Type) {
		h.sendServerError(sess, proto.ErrInvalidState, "message not valid in state "+string(state))
		return
	}

	switch msg.Type {
	case proto.TypeRoomCreate:
		h.handleRoomCreate(sess, msg)
	case proto.TypeRoomJoin:
		h.handleRoomJoin(sess, msg)
	case proto.TypeRoomLeave:
		h.handleRoomLeave(sess, roomCode)
	case proto.TypeStartCountdown:
		h.handleStartCountdown(sess, roomCode, msg.Seconds)
	case proto.TypeInput:
		h.handleInput(sess, roomCode, msg)
	case proto.TypeResyncRequest:
		h.handleResync(sess, roomCode, msg)
	case proto.TypeHeartbeat:
		h.handleHeartbeat(sess, msg)
	case proto.TypeDisconnect:
		h.disconnect(sess.id, "client_request")
	default:
		h.sendServerError(sess, proto.ErrGeneral, "unknown message type")
	}
}

func (h *Hub) handleRoomCreate(sess *session, msg proto.ClientMessage) {
	nickname := sanitizeNickname(msg.Nickname)
	_, _, payload, err := h.registry.Create(sess.id, nickname, msg.MapName, msg.BestOf)
	if err != nil {
		h.SendControl(sess.id, proto.RoomCreateErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeRoomCreateError,
			Code: room.CodeFor(err),
		})
		return
	}

	h.mu.Lock()
	sess.state = StateInRoom
	sess.roomCode = payload.RoomCode
	sess.nickname = nickname
	h.mu.Unlock()

	h.SendControl(sess.id, proto.RoomCreateOkMessage{
		Ver:      proto.Version,
		Type:     proto.TypeRoomCreateOk,
		RoomCode: payload.RoomCode,
		Room:     payload,
	})
}

func (h *Hub) handleRoomJoin(sess *session, msg proto.ClientMessage) {
	nickname := sanitizeNickname(msg.Nickname)
	code := msg.RoomCode
	if !room.ValidCode(code) {
		h.SendControl(sess.id, proto.RoomJoinErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeRoomJoinError,
			Code: proto.ErrUnknownCode,
		})
		return
	}
	_, _, payload, err := h.registry.Join(code, sess.id, nickname)
	if err != nil {
		h.SendControl(sess.id, proto.RoomJoinErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeRoomJoinError,
			Code: room.CodeFor(err),
		})
		return
	}

	h.mu.Lock()
	sess.state = StateInRoom
	sess.roomCode = code
	sess.nickname = nickname
	h.mu.Unlock()

	h.SendControl(sess.id, proto.RoomJoinOkMessage{
		Ver:     proto.Version,
		Type:    proto.TypeRoomJoinOk,
		StateID: payload.StateID,
		Room:    payload,
	})
}

func (h *Hub) handleRoomLeave(sess *session, roomCode string) {
	r, found := h.registry.Get(roomCode)
	if !found {
		h.SendControl(sess.id, proto.RoomLeaveErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeRoomLeaveError,
			Code: proto.ErrNotInRoom,
		})
		return
	}
	if _, err := r.Leave(sess.id); err != nil {
		h.SendControl(sess.id, proto.RoomLeaveErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeRoomLeaveError,
			Code: room.CodeFor(err),
		})
		return
	}

	h.mu.Lock()
	sess.state = StateConnected
	sess.roomCode = ""
	h.mu.Unlock()

	h.SendControl(sess.id, proto.RoomLeaveOkMessage{
		Ver:  proto.Version,
		Type: proto.TypeRoomLeaveOk,
	})
}

func (h *Hub) handleStartCountdown(sess *session, roomCode string, seconds int) {
	r, found := h.registry.Get(roomCode)
	if !found {
		h.sendServerError(sess, proto.ErrNotInRoom, "")
		return
	}
	if err := r.StartCountdown(sess.id, seconds); err != nil {
		h.sendServerError(sess, room.CodeFor(err), "")
	}
}

func (h *Hub) handleInput(sess *session, roomCode string, msg proto.ClientMessage) {
	if msg.Input == nil {
		h.SendControl(sess.id, proto.InputErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeInputError,
			Tick: msg.Tick,
			Code: proto.ErrGeneral,
		})
		return
	}
	r, found := h.registry.Get(roomCode)
	if !found {
		h.sendServerError(sess, proto.ErrNotInRoom, "")
		return
	}
	if code, ok := r.SubmitInput(sess.id, msg.Tick, *msg.Input); !ok {
		h.SendControl(sess.id, proto.InputErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeInputError,
			Tick: msg.Tick,
			Code: code,
		})
	}
}

func (h *Hub) handleResync(sess *session, roomCode string, msg proto.ClientMessage) {
	r, found := h.registry.Get(roomCode)
	if !found {
		h.sendServerError(sess, proto.ErrNotInRoom, "")
		return
	}
	if err := r.RequestResync(sess.id, msg.Tick); err != nil {
		h.sendServerError(sess, room.CodeFor(err), "")
	}
}

func (h *Hub) handleHeartbeat(sess *session, msg proto.ClientMessage) {
	now := time.Now()
	var rtt time.Duration
	if msg.SentAt > 0 {
		rtt = now.Sub(time.UnixMilli(msg.SentAt))
		if rtt < 0 {
			rtt = 0
		}
	}

	h.mu.Lock()
	sess.lastHeartbeat = now
	if msg.SentAt > 0 {
		sess.lastRTT = rtt
	}
	h.mu.Unlock()

	h.SendControl(sess.id, proto.HeartbeatAckMessage{
		Ver:        proto.Version,
		Type:       proto.TypeHeartbeatAck,
		ServerTime: now.UnixMilli(),
		ClientTime: msg.SentAt,
		RTTMillis:  rtt.Milliseconds(),
	})
}

func (h *Hub) sendServerError(sess *session, code proto.ErrorCode, message string) {
	h.SendControl(sess.id, proto.ServerErrorMessage{
		Ver:     proto.Version,
		Type:    proto.TypeServerError,
		Code:    code,
		Message: message,
	})
}

const maxNicknameLen = 24

func sanitizeNickname(nickname string) string {
	if nickname == "" {
		return "player"
	}
	runes := []rune(nickname)
	if len(runes) > maxNicknameLen {
		runes = runes[:maxNicknameLen]
	}
	return string(runes)
}

// sessionCount returns the number of registered sessions.
func (h *Hub) sessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

type diagnosticsSession struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	Room          string `json:"room,omitempty"`
	LastHeartbeat int64  `json:"lastHeartbeat,omitempty"`
	RTTMillis     int64  `json:"rttMillis,omitempty"`
}

// DiagnosticsSnapshot exposes per-session heartbeat data for the
// diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]diagnosticsSession, 0, len(h.sessions))
	for _, sess := range h.sessions {
		d := diagnosticsSession{
			ID:        sess.id,
			State:     string(sess.state),
			Room:      sess.roomCode,
			RTTMillis: sess.lastRTT.Milliseconds(),
		}
		if !sess.lastHeartbeat.IsZero() {
			d.LastHeartbeat = sess.lastHeartbeat.UnixMilli()
		}
		out = append(out, d)
	}
	return out
}
