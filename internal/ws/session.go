package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/Indomitable/opentelemetry-inspect/internal/pubsub"
)

// json encodes outbound frames byte-compatible with encoding/json so the
// wire format does not depend on the serializer choice.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// pingByte and pongByte are the single-byte binary heartbeat frames
	// exchanged with the frontend.
	pingByte = 0x09
	pongByte = 0x0A

	// outboundQueueSize bounds the per-session write queue. Listeners block
	// while the queue is full; sustained overload is shed upstream by the
	// per-subscriber broadcast buffers, not here.
	outboundQueueSize = 256
)

// connectResponse is the first frame sent on every session.
type connectResponse struct {
	ClientID string `json:"client_id"`
}

// command is a client request. The payload carries exactly one variant,
// keyed by its name: {"command":{"Subscribe":"logs"}}.
type command struct {
	Command commandPayload `json:"command"`
}

type commandPayload struct {
	Subscribe   *string `json:"Subscribe,omitempty"`
	Unsubscribe *string `json:"Unsubscribe,omitempty"`
}

// frame is one queued WebSocket message.
type frame struct {
	messageType int
	data        []byte
}

// session owns a single client connection. The read loop is the only
// goroutine touching the listeners map, and after the welcome frame the
// dispatcher is the only goroutine writing to the socket.
type session struct {
	conn     *websocket.Conn
	manager  *pubsub.Manager
	logger   *zap.Logger
	clientID string

	outbound chan frame
	closing  chan struct{}

	listeners  map[string]*pubsub.Subscription
	listenerWG sync.WaitGroup

	dispatcherDone chan struct{}
}

func newSession(conn *websocket.Conn, manager *pubsub.Manager, logger *zap.Logger) *session {
	return &session{
		conn:           conn,
		manager:        manager,
		logger:         logger,
		clientID:       uuid.Must(uuid.NewV7()).String(),
		outbound:       make(chan frame, outboundQueueSize),
		closing:        make(chan struct{}),
		listeners:      make(map[string]*pubsub.Subscription),
		dispatcherDone: make(chan struct{}),
	}
}

// run serves the session until the client disconnects, then tears down every
// per-session goroutine before returning.
func (s *session) run() {
	defer s.conn.Close()

	welcome, err := json.Marshal(connectResponse{ClientID: s.clientID})
	if err != nil {
		s.logger.Error("failed to encode welcome frame", zap.Error(err))
		return
	}
	// Written directly, before the dispatcher starts, so the client id is on
	// the wire ahead of any event or pong.
	if err := s.conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		s.logger.Debug("failed to send welcome frame", zap.Error(err))
		return
	}
	framesSent.WithLabelValues("text").Inc()

	go s.dispatch()

	s.logger.Info("websocket client connected", zap.String("client_id", s.clientID))
	s.readLoop()
	s.teardown()
	s.logger.Info("websocket client disconnected", zap.String("client_id", s.clientID))
}

func (s *session) readLoop() {
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		switch messageType {
		case websocket.TextMessage:
			s.handleCommand(data)
		case websocket.BinaryMessage:
			if len(data) == 1 && data[0] == pingByte {
				s.outbound <- frame{websocket.BinaryMessage, []byte{pongByte}}
			}
		}
	}
}

// handleCommand parses and applies one client command. Frames that do not
// decode are ignored so a misbehaving client cannot take the session down.
func (s *session) handleCommand(data []byte) {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.logger.Debug("ignoring malformed command",
			zap.String("client_id", s.clientID),
			zap.Error(err))
		return
	}
	switch {
	case cmd.Command.Subscribe != nil:
		s.subscribe(*cmd.Command.Subscribe)
	case cmd.Command.Unsubscribe != nil:
		s.unsubscribe(*cmd.Command.Unsubscribe)
	}
}

// subscribe registers the client on a topic and starts a listener goroutine
// relaying its events. Subscribing to a topic the session already listens on
// is a no-op, so repeated Subscribe commands never duplicate delivery.
func (s *session) subscribe(topic string) {
	if _, ok := s.listeners[topic]; ok {
		return
	}
	sub := s.manager.Subscribe(topic, s.clientID)
	s.listeners[topic] = sub
	s.listenerWG.Add(1)
	go s.forward(sub)
}

// unsubscribe stops the topic listener and removes the client's registration.
func (s *session) unsubscribe(topic string) {
	sub, ok := s.listeners[topic]
	if !ok {
		return
	}
	delete(s.listeners, topic)
	sub.Cancel()
	s.manager.Unsubscribe(s.clientID, topic)
}

// forward relays events from one topic subscription onto the outbound queue
// until the subscription is canceled or the session starts closing.
func (s *session) forward(sub *pubsub.Subscription) {
	defer s.listenerWG.Done()
	for msg := range sub.Events() {
		data, err := json.Marshal(msg)
		if err != nil {
			s.logger.Error("failed to encode event",
				zap.String("topic", sub.Topic()),
				zap.Error(err))
			continue
		}
		select {
		case s.outbound <- frame{websocket.TextMessage, data}:
		case <-s.closing:
			return
		}
	}
}

// dispatch drains the outbound queue onto the socket. On a write error it
// closes the connection, which unblocks the read loop, and keeps consuming
// the queue so listeners never stall during teardown.
func (s *session) dispatch() {
	defer close(s.dispatcherDone)
	var failed bool
	for f := range s.outbound {
		if failed {
			continue
		}
		if err := s.conn.WriteMessage(f.messageType, f.data); err != nil {
			s.logger.Debug("websocket write failed",
				zap.String("client_id", s.clientID),
				zap.Error(err))
			s.conn.Close()
			failed = true
			continue
		}
		if f.messageType == websocket.BinaryMessage {
			framesSent.WithLabelValues("binary").Inc()
		} else {
			framesSent.WithLabelValues("text").Inc()
		}
	}
}

// teardown runs after the read loop exits: stop the listeners, clear the
// client's subscriptions, then close the queue and join the dispatcher.
func (s *session) teardown() {
	close(s.closing)
	for _, sub := range s.listeners {
		sub.Cancel()
	}
	s.listenerWG.Wait()
	s.manager.UnsubscribeClient(s.clientID)
	close(s.outbound)
	<-s.dispatcherDone
}
