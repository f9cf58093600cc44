package main

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub tracks connected clients, enforces connection limits and hands
// clients over to the game
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	game    *Game
	auth    *Auth
	cfg     ServerConfig
	log     zerolog.Logger

	// connection limiting, accessed from HTTP handlers
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a Hub feeding the given game
func NewHub(game *Game, auth *Auth, cfg ServerConfig, log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		game:    game,
		auth:    auth,
		cfg:     cfg,
		log:     log.With().Str("component", "hub").Logger(),
		ipConns: make(map[string]int),
	}
}

// TryAcquire takes a connection slot for ip if both the per-ip and the
// total limit allow it
func (h *Hub) TryAcquire(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.cfg.MaxTotalConns || h.ipConns[ip] >= h.cfg.MaxConnsPerIP {
		return false
	}
	h.ipConns[ip]++
	h.totalConns++
	wsConnections.Inc()
	return true
}

// Release returns a connection slot of ip
func (h *Hub) Release(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.ipConns[ip] <= 0 {
		return
	}
	h.ipConns[ip]--
	if h.ipConns[ip] == 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
	wsConnections.Dec()
}

// Register adds a client and announces it to the game
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	h.log.Info().Str("conn", c.id).Str("ip", c.remoteAddr).Msg("client connected")
	h.game.Connect(c.id, c)
}

// Unregister removes a client from the game and closes its send queue
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	h.game.Disconnect(c.id)
	c.closeSend()
	h.log.Info().Str("conn", c.id).Msg("client disconnected")
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
