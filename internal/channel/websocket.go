package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SocketConfig holds configuration for the WebSocket channel.
type SocketConfig struct {
	URL             string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	SendBufferSize  int
	EventBufferSize int

	// Reconnect policy applied after an established connection drops.
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultSocketConfig returns the default WebSocket channel configuration.
func DefaultSocketConfig(url string) SocketConfig {
	return SocketConfig{
		URL:             url,
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1 << 20, // snapshots carry full move logs
		SendBufferSize:  64,
		EventBufferSize: 256,
		MaxReconnects:   5,
		ReconnectWait:   time.Second,
	}
}

// Socket is the gorilla/websocket implementation of Channel. A read pump
// decodes inbound envelopes onto the events channel and a write pump drains
// the send queue, so callers never touch the connection directly.
type Socket struct {
	config SocketConfig

	mu     sync.RWMutex
	conn   *websocket.Conn
	status Status

	send   chan Event
	events chan Event
	done   chan struct{}

	closeOnce sync.Once
}

var _ Channel = (*Socket)(nil)

// NewSocket creates a WebSocket channel for the given configuration.
func NewSocket(config SocketConfig) *Socket {
	return &Socket{
		config: config,
		status: StatusDisconnected,
		send:   make(chan Event, config.SendBufferSize),
		events: make(chan Event, config.EventBufferSize),
		done:   make(chan struct{}),
	}
}

// Connect dials the server and starts the read and write pumps. Subsequent
// drops are retried internally per the reconnect policy.
func (s *Socket) Connect(ctx context.Context) error {
	s.setStatus(StatusConnecting)

	conn, err := s.dial(ctx)
	if err != nil {
		s.setStatus(StatusDisconnected)
		return err
	}

	s.adopt(conn)

	go s.writePump()
	go s.readPump(ctx)

	log.Info().Str("url", s.config.URL).Msg("channel connected")
	return nil
}

func (s *Socket) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.config.URL, err)
	}
	return conn, nil
}

func (s *Socket) adopt(conn *websocket.Conn) {
	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		return nil
	})

	s.mu.Lock()
	s.conn = conn
	s.status = StatusConnected
	s.mu.Unlock()

	s.deliver(Event{Type: EventConnected})
}

// Emit queues an event for the server. Fails fast when disconnected.
func (s *Socket) Emit(typ EventType, payload any) error {
	if s.Status() != StatusConnected {
		return ErrNotConnected
	}
	event, err := NewEvent(typ, payload)
	if err != nil {
		return err
	}
	select {
	case s.send <- event:
		return nil
	case <-s.done:
		return ErrNotConnected
	}
}

// Events returns the inbound event stream.
func (s *Socket) Events() <-chan Event {
	return s.events
}

// Status reports the current connection state.
func (s *Socket) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Close shuts the channel down. Events is closed once the pumps stop.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.status = StatusDisconnected
		s.mu.Unlock()
	})
	return nil
}

func (s *Socket) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// deliver hands an event to the consumer without ever blocking the pumps on
// a stalled reader; dropping is logged so a wedged consumer is visible.
func (s *Socket) deliver(event Event) {
	select {
	case s.events <- event:
	default:
		log.Warn().Str("event_type", string(event.Type)).Msg("event buffer full, dropping event")
	}
}

// writePump serializes all writes to the connection: queued events plus
// periodic pings.
func (s *Socket) writePump() {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case event := <-s.send:
			conn := s.current()
			if conn == nil {
				log.Warn().Str("event_type", string(event.Type)).Msg("dropping outbound event, not connected")
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			data, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to marshal outbound event")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to write event")
			}
		case <-ticker.C:
			conn := s.current()
			if conn == nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Msg("failed to send ping")
			}
		}
	}
}

func (s *Socket) current() *websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// readPump reads envelopes off the connection until it drops, then walks the
// reconnect policy. Events is closed once the pump gives up for good.
func (s *Socket) readPump(ctx context.Context) {
	defer close(s.events)

	for {
		conn := s.current()
		if conn == nil {
			return
		}

		if err := s.readLoop(conn); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Msg("unexpected websocket close")
			}
		}

		select {
		case <-s.done:
			return
		default:
		}

		s.setStatus(StatusDisconnected)
		s.deliver(Event{Type: EventDisconnected})

		if !s.reconnect(ctx) {
			return
		}
	}
}

// readLoop decodes messages from one live connection until it errors.
func (s *Socket) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Warn().Err(err).Msg("discarding malformed inbound event")
			continue
		}
		s.deliver(event)
	}
}

// reconnect retries the dial per the configured policy. Returns false when
// attempts are exhausted or the channel is closing.
func (s *Socket) reconnect(ctx context.Context) bool {
	for attempt := 1; attempt <= s.config.MaxReconnects; attempt++ {
		select {
		case <-s.done:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(s.config.ReconnectWait):
		}

		s.setStatus(StatusConnecting)
		conn, err := s.dial(ctx)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("reconnect failed")
			s.setStatus(StatusDisconnected)
			continue
		}

		s.adopt(conn)
		log.Info().Int("attempt", attempt).Msg("channel reconnected")
		return true
	}
	log.Error().Int("attempts", s.config.MaxReconnects).Msg("reconnect attempts exhausted")
	return false
}
