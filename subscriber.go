package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// controlQueueDepth bounds the reliable lane per subscriber. A client that
// cannot keep up with lobby traffic at this depth is a dead connection.
const controlQueueDepth = 64

// subscriber wraps one websocket connection with two outbound lanes, both
// drained by the pump goroutine so no caller ever blocks on the socket.
// Control messages go through a bounded FIFO and must all arrive; a full
// queue marks the subscriber as a slow consumer. State messages go through a
// one-slot latest-wins outbox, so a slow reader only ever costs itself
// stale frames, never server memory.
type subscriber struct {
	sessionID    string
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex

	controlQ chan any

	stateMu      sync.Mutex
	pendingState any
	stateReady   chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func newSubscriber(sessionID string, conn *websocket.Conn, writeTimeout time.Duration) *subscriber {
	return &subscriber{
		sessionID:    sessionID,
		conn:         conn,
		writeTimeout: writeTimeout,
		controlQ:     make(chan any, controlQueueDepth),
		stateReady:   make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// sendControl marshals and writes a message on the reliable lane
// synchronously. Only the handshake uses it, before the pump starts.
func (s *subscriber) sendControl(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal control message: %w", err)
	}
	return s.write(data)
}

// queueControl enqueues a message on the reliable lane. It reports false
// when the queue is full, which means the client has stopped reading.
func (s *subscriber) queueControl(msg any) bool {
	select {
	case <-s.done:
		return true
	default:
	}
	select {
	case s.controlQ <- msg:
		return true
	default:
		return false
	}
}

// queueState replaces the pending state frame. It reports whether an unsent
// frame was overwritten.
func (s *subscriber) queueState(msg any) (dropped bool) {
	s.stateMu.Lock()
	dropped = s.pendingState != nil
	s.pendingState = msg
	s.stateMu.Unlock()

	select {
	case s.stateReady <- struct{}{}:
	default:
	}
	return dropped
}

// run drains both outbound lanes until the subscriber closes. onError is
// invoked once when a marshal or write fails, after which the pump stops.
func (s *subscriber) run(onError func(error)) {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.controlQ:
			if !s.pumpWrite(msg, onError) {
				return
			}
		case <-s.stateReady:
			s.stateMu.Lock()
			msg := s.pendingState
			s.pendingState = nil
			s.stateMu.Unlock()
			if msg == nil {
				continue
			}
			if !s.pumpWrite(msg, onError) {
				return
			}
		}
	}
}

func (s *subscriber) pumpWrite(msg any, onError func(error)) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		if onError != nil {
			onError(fmt.Errorf("marshal outbound message: %w", err))
		}
		return false
	}
	if err := s.write(data); err != nil {
		if onError != nil {
			onError(err)
		}
		return false
	}
	return true
}

func (s *subscriber) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// close stops the pump and closes the connection. Idempotent.
func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}
