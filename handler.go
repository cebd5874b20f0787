package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"tankarena/server/internal/proto"
	"tankarena/server/internal/room"
	"tankarena/server/logging"
	loglifecycle "tankarena/server/logging/lifecycle"
	lognetwork "tankarena/server/logging/network"
)

const handshakeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Routes builds the HTTP surface: the websocket endpoint plus health and
// diagnostics.
func (h *Hub) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/diagnostics", h.handleDiagnostics)
	return mux
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (h *Hub) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status     string               `json:"status"`
		ServerTime int64                `json:"serverTime"`
		TickRate   int                  `json:"tickRate"`
		APIVersion uint16               `json:"apiVersion"`
		Sessions   []diagnosticsSession `json:"sessions"`
		Rooms      []room.Diagnostics   `json:"rooms"`
		Counters   map[string]uint64    `json:"counters,omitempty"`
	}{
		Status:     "ok",
		ServerTime: time.Now().UnixMilli(),
		TickRate:   h.cfg.Match.TickRate,
		APIVersion: proto.APIVersion,
		Sessions:   h.DiagnosticsSnapshot(),
		Rooms:      h.registry.Diagnostics(),
	}
	if counters, ok := h.metrics.(interface{ Snapshot() map[string]uint64 }); ok {
		payload.Counters = counters.Snapshot()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleWS upgrades the connection, runs the version handshake and then
// pumps client messages through the per-session rate limiter into the hub.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	sub := newSubscriber("", conn, h.cfg.Network.WriteTimeout)

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return
	}
	var hello proto.ClientMessage
	if err := json.Unmarshal(payload, &hello); err != nil || hello.Type != proto.TypeConnect {
		sub.sendControl(proto.ConnectErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeConnectError,
			Code: proto.ErrGeneral,
		})
		conn.Close()
		return
	}
	if hello.APIVersion != proto.APIVersion {
		sub.sendControl(proto.ConnectErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeConnectError,
			Code: proto.ErrVersionMismatch,
		})
		loglifecycle.SessionRejected(context.Background(), h.publisher,
			logging.EntityRef{ID: r.RemoteAddr, Kind: logging.EntityKindUnknown},
			loglifecycle.SessionRejectedPayload{
				Reason:        string(proto.ErrVersionMismatch),
				ClientVersion: int(hello.APIVersion),
			}, nil)
		conn.Close()
		return
	}

	sess, code, ok := h.register(sub, r.RemoteAddr, hello.APIVersion)
	if !ok {
		sub.sendControl(proto.ConnectErrorMessage{
			Ver:  proto.Version,
			Type: proto.TypeConnectError,
			Code: code,
		})
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	if err := sub.sendControl(proto.ConnectOkMessage{
		Ver:       proto.Version,
		Type:      proto.TypeConnectOk,
		SessionID: sess.id,
	}); err != nil {
		h.disconnect(sess.id, "handshake_write_failed")
		return
	}

	go sub.run(func(err error) {
		h.logger.Printf("session %s: write failed: %v", sess.id, err)
		h.disconnect(sess.id, "write_failed")
	})

	// A session that goes silent past several heartbeat intervals is
	// force-disconnected via the read deadline.
	idleTimeout := 4 * h.cfg.Network.HeartbeatInterval
	limiter := rate.NewLimiter(rate.Limit(h.cfg.Network.MessagesPerSecond), h.cfg.Network.MessageBurst)
	for {
		if idleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(idleTimeout))
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			reason := "read_failed"
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				reason = "heartbeat_timeout"
			}
			h.disconnect(sess.id, reason)
			return
		}
		if !limiter.Allow() {
			h.metrics.Add("messages_rate_limited", 1)
			lognetwork.RateLimited(context.Background(), h.publisher,
				logging.EntityRef{ID: sess.id, Kind: logging.EntityKindSession},
				lognetwork.RateLimitPayload{MessageType: "unread"}, nil)
			continue
		}

		var msg proto.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("session %s: discarding malformed message: %v", sess.id, err)
			continue
		}
		if msg.Type == proto.TypeConnect {
			h.sendServerError(sess, proto.ErrInvalidState, "already connected")
			continue
		}
		h.handleMessage(sess, msg)
		if msg.Type == proto.TypeDisconnect {
			return
		}
	}
}
