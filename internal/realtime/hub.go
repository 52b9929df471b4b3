package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	"crm/pkg/platform/httputil"
	"crm/pkg/requestcontext"
)

const (
	defaultSendBuffer   = 32
	defaultWriteTimeout = 10 * time.Second
	maxInboundMessage   = 512
)

type client struct {
	conn       *websocket.Conn
	send       chan []byte
	teamID     id.TeamID
	identityID id.IdentityID
}

// TeamAccessFunc reports whether identityID may follow the events of teamID.
type TeamAccessFunc func(ctx context.Context, identityID id.IdentityID, teamID id.TeamID) bool

// Hub keeps the websocket connections of agents and pushes events to them.
// A client that connects with ?teamId=N only receives events for team N,
// and only if the team access check lets it in.
// Clients that cannot keep up are disconnected rather than slowing down
// the broadcaster.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	closed   bool
	upgrader websocket.Upgrader

	sendBuffer   int
	writeTimeout time.Duration
	logger       *slog.Logger
	metrics      *Metrics
	teamAccess   TeamAccessFunc
}

type HubOption func(*Hub)

func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithMetrics(m *Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithOriginCheck restricts which browser origins may connect.
func WithOriginCheck(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// WithTeamAccess gates ?teamId subscriptions. Without it any authenticated
// client may follow any team.
func WithTeamAccess(fn TeamAccessFunc) HubOption {
	return func(h *Hub) {
		h.teamAccess = fn
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:      make(map[*client]struct{}),
		upgrader:     websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		sendBuffer:   defaultSendBuffer,
		writeTimeout: defaultWriteTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and holds the connection until the peer
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var teamID id.TeamID
	if raw := r.URL.Query().Get("teamId"); raw != "" {
		parsed, err := id.ParseTeamID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		teamID = parsed
	}
	identityID := requestcontext.IdentityID(ctx)
	if !teamID.IsNil() && h.teamAccess != nil && !h.teamAccess(ctx, identityID, teamID) {
		h.logger.WarnContext(ctx, "websocket team subscription denied",
			"identity_id", identityID,
			"team_id", teamID,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "access to team events denied"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}

	c := &client{
		conn:       conn,
		send:       make(chan []byte, h.sendBuffer),
		teamID:     teamID,
		identityID: identityID,
	}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	h.logger.InfoContext(ctx, "websocket client connected",
		"identity_id", c.identityID,
		"team_id", teamID,
		"request_id", requestcontext.RequestID(ctx),
	)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.metrics.setClients(len(h.clients))
	return true
}

// remove unregisters c and closes its send channel exactly once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.setClients(len(h.clients))
}

// readLoop discards inbound frames; it exists to notice the peer closing.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxInboundMessage)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) Broadcast(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode realtime event",
			"type", event.Type,
			"error", err,
		)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.teamID.IsNil() && c.teamID != event.TeamID {
			continue
		}
		select {
		case c.send <- payload:
			h.metrics.incDelivered()
		default:
			h.logger.WarnContext(ctx, "disconnecting slow websocket client",
				"identity_id", c.identityID,
				"request_id", requestcontext.RequestID(ctx),
			)
			h.metrics.incDropped()
			h.removeLocked(c)
		}
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
