// Package gateway pushes league events to WebSocket clients. Each
// league has its own connection pool; events published through the
// notify pipeline are fanned out to every socket watching that league.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/notify"
)

// Config holds WebSocket connection tuning.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns sensible development defaults. CheckOrigin
// allows every origin; tighten it for production deployments.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

// Manager owns the per-league connection pools and the broadcast loop.
// It implements notify.Publisher so it can sit directly in the event
// pipeline.
type Manager struct {
	mu    sync.RWMutex
	pools map[uuid.UUID]map[*connection]bool

	upgrader    websocket.Upgrader
	config      Config
	broadcastCh chan notify.Event
}

type connection struct {
	id       uuid.UUID
	userID   string
	leagueID uuid.UUID
	ws       *websocket.Conn
	send     chan []byte
	manager  *Manager
}

// NewManager creates a Manager. Call Run before serving connections.
func NewManager(config Config) *Manager {
	return &Manager{
		pools: make(map[uuid.UUID]map[*connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan notify.Event, 1000),
	}
}

// Run drains the broadcast channel until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	log.Info().Msg("gateway broadcast loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("gateway broadcast loop stopped")
			return
		case event := <-m.broadcastCh:
			m.fanOut(event)
		}
	}
}

// Publish enqueues an event for broadcast. Implements notify.Publisher.
// Events are dropped rather than blocking the caller when the queue is
// full.
func (m *Manager) Publish(ctx context.Context, event notify.Event) error {
	select {
	case m.broadcastCh <- event:
		return nil
	default:
		log.Warn().
			Str("league_id", event.LeagueID.String()).
			Str("event", string(event.Type)).
			Msg("broadcast queue full, dropping event")
		return nil
	}
}

// Upgrade promotes an HTTP request to a WebSocket subscribed to the
// league's events.
func (m *Manager) Upgrade(w http.ResponseWriter, r *http.Request, userID string, leagueID uuid.UUID) error {
	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade connection: %w", err)
	}

	conn := &connection{
		id:       uuid.New(),
		userID:   userID,
		leagueID: leagueID,
		ws:       ws,
		send:     make(chan []byte, 256),
		manager:  m,
	}
	m.register(conn)

	go conn.writePump()
	go conn.readPump()

	log.Info().
		Str("connection_id", conn.id.String()).
		Str("user_id", userID).
		Str("league_id", leagueID.String()).
		Msg("websocket connection established")
	return nil
}

func (m *Manager) register(conn *connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pools[conn.leagueID] == nil {
		m.pools[conn.leagueID] = make(map[*connection]bool)
	}
	m.pools[conn.leagueID][conn] = true
}

func (m *Manager) unregister(conn *connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[conn.leagueID]
	if !ok {
		return
	}
	if _, ok := pool[conn]; !ok {
		return
	}
	delete(pool, conn)
	close(conn.send)
	if len(pool) == 0 {
		delete(m.pools, conn.leagueID)
	}
	log.Debug().
		Str("connection_id", conn.id.String()).
		Str("league_id", conn.leagueID.String()).
		Msg("connection unregistered")
}

func (m *Manager) fanOut(event notify.Event) {
	m.mu.RLock()
	pool, ok := m.pools[event.LeagueID]
	if !ok {
		m.mu.RUnlock()
		return
	}
	targets := make([]*connection, 0, len(pool))
	for conn := range pool {
		targets = append(targets, conn)
	}
	m.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}
	for _, conn := range targets {
		select {
		case conn.send <- payload:
		default:
			// Slow consumer, cut it loose.
			log.Warn().
				Str("connection_id", conn.id.String()).
				Msg("send buffer full, closing connection")
			m.unregister(conn)
			conn.ws.Close()
		}
	}
}

// Stats reports connection counts per league.
func (m *Manager) Stats() (total int, leagues int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pool := range m.pools {
		total += len(pool)
	}
	return total, len(m.pools)
}

func (c *connection) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		c.manager.unregister(c)
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(c.manager.config.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.id.String()).
					Msg("unexpected websocket close")
			}
			return
		}
		// Clients only listen; inbound frames just refresh the deadline.
		c.ws.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	}
}
