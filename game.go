package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// RankingSink receives score changes; the store behind it is updated asynchronously
type RankingSink interface {
	Increment(name string)
	Remove(name string)
	Latest() []interface{}
}

var shipColors = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8",
	"#f58231", "#911eb4", "#46f0f0", "#f032e6",
}

// Game is the tick engine. It owns the World, the spectator queue and the
// set of connected observers; one mutex serializes the tick and every
// inbound mutation.
type Game struct {
	mu       sync.Mutex
	cfg      GameConfig
	world    *World
	lobby    *Lobby
	collider *Collider
	clients  map[string]Broadcaster // connection id -> client
	consoles map[string]bool        // connections receiving console lines
	ranking  RankingSink
	rng      *rand.Rand
	tick     uint64
	log      zerolog.Logger
}

// NewGame creates a game with an empty sea
func NewGame(cfg GameConfig, ranking RankingSink, log zerolog.Logger) *Game {
	return NewGameWithRand(cfg, ranking, log, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)))
}

// NewGameWithRand creates a game drawing respawn positions from rng
func NewGameWithRand(cfg GameConfig, ranking RankingSink, log zerolog.Logger, rng *rand.Rand) *Game {
	if ranking == nil {
		ranking = noopRanking{}
	}
	log = log.With().Str("component", "game").Logger()
	return &Game{
		cfg:      cfg,
		world:    NewWorld(),
		lobby:    NewLobby(cfg.NameMinChars, cfg.NameMaxChars),
		collider: NewCollider(cfg, rng, log),
		clients:  make(map[string]Broadcaster),
		consoles: make(map[string]bool),
		ranking:  ranking,
		rng:      rng,
		log:      log,
	}
}

// Run ticks until ctx is cancelled
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.TickDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.Step()
		case <-ctx.Done():
			return
		}
	}
}

// Connect registers an observer and sends it the current lobby state
func (g *Game) Connect(connID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clients[connID] = client
	client.SendJSON(Envelope{T: MsgCanJoin, Data: g.canJoin()})
	client.SendJSON(Envelope{T: MsgQueue, Data: g.lobby.Names()})
	if list := g.ranking.Latest(); list != nil {
		client.SendJSON(Envelope{T: MsgRanking, Data: list})
	}
}

// Disconnect removes a connection from the arena or the queue
func (g *Game) Disconnect(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.clients, connID)
	delete(g.consoles, connID)

	var name string
	if s, ok := g.world.Ships[connID]; ok {
		name = s.Name
		delete(g.world.Ships, connID)
		g.broadcastJSON(Envelope{T: MsgCanJoin, Data: g.canJoin()})
	} else if n, ok := g.lobby.Remove(connID); ok {
		name = n
		g.broadcastJSON(Envelope{T: MsgQueue, Data: g.lobby.Names()})
	}
	if name == "" {
		return
	}
	g.ranking.Remove(name)
	g.console("%s disconnected", name)
}

// Login admits a name into the spectator queue
func (g *Game) Login(connID, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.lobby.CheckName(name); err != nil {
		return err
	}
	if _, ok := g.lobby.NameOf(connID); ok {
		return ErrAlreadyLoggedIn
	}
	if _, ok := g.world.Ships[connID]; ok {
		return ErrAlreadyLoggedIn
	}
	if g.lobby.Has(name) || g.world.ShipByName(name) != nil {
		return ErrNameTaken
	}

	g.lobby.Add(connID, name)
	g.broadcastJSON(Envelope{T: MsgQueue, Data: g.lobby.Names()})
	g.console("%s logged in", name)
	return nil
}

// Join promotes a queued connection into an active ship
func (g *Game) Join(connID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	name, ok := g.lobby.NameOf(connID)
	if !ok {
		return ErrNotLoggedIn
	}
	if len(g.world.Ships) >= g.cfg.MaxPlayers {
		return ErrArenaFull
	}

	g.lobby.Remove(connID)
	g.world.Ships[connID] = NewShip(connID, name, g.pickColor(), g.cfg)

	g.broadcastJSON(Envelope{T: MsgQueue, Data: g.lobby.Names()})
	g.broadcastJSON(Envelope{T: MsgCanJoin, Data: g.canJoin()})
	g.broadcastJSON(Envelope{T: MsgInfo, Data: name + " joined the battle"})
	return nil
}

// Leave demotes an active ship back to the queue
func (g *Game) Leave(connID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.world.Ships[connID]
	if !ok {
		return ErrNotInArena
	}
	delete(g.world.Ships, connID)
	g.lobby.Add(connID, s.Name)

	g.broadcastJSON(Envelope{T: MsgQueue, Data: g.lobby.Names()})
	g.broadcastJSON(Envelope{T: MsgCanJoin, Data: g.canJoin()})
	g.broadcastJSON(Envelope{T: MsgInfo, Data: s.Name + " left the battle"})
	return nil
}

// Action applies one steering transition; unknown ships are ignored
func (g *Game) Action(connID string, code ActionCode) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.world.Ships[connID]
	if !ok {
		return
	}
	ApplyAction(s, code, g.cfg)
}

// Colors looks up the colors of active ships by name; unknown names map to ""
func (g *Game) Colors(names []string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	colors := make([]string, len(names))
	for i, name := range names {
		if s := g.world.ShipByName(name); s != nil {
			colors[i] = s.Color
		}
	}
	return colors
}

// SubscribeConsole starts sending console lines to a connection
func (g *Game) SubscribeConsole(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.clients[connID]; ok {
		g.consoles[connID] = true
	}
}

// PublishRanking pushes a fresh ranking list to every observer
func (g *Game) PublishRanking(list []interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcastJSON(Envelope{T: MsgRanking, Data: list})
}

// ShipCount returns the number of seated ships
func (g *Game) ShipCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.world.Ships)
}

// Step runs one game tick. A panicking tick is logged and skipped; the
// loop keeps running.
func (g *Game) Step() {
	start := time.Now()

	report, ok := g.advance()
	if !ok {
		return
	}

	for _, sink := range report.Sinks {
		if sink.Killer != "" && sink.Killer != sink.Victim {
			g.ranking.Increment(sink.Killer)
		}
	}
	tickDuration.Observe(time.Since(start).Seconds())
}

// advance does the locked part of a tick
func (g *Game) advance() (report CollisionReport, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			tickPanics.Inc()
			g.log.Error().
				Uint64("tick", g.tick).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tick panicked, skipped")
			report, ok = CollisionReport{}, false
		}
	}()

	g.tick++

	report = g.collider.Detect(g.world)

	var fired []FireEvent
	for _, s := range g.world.sortedShips() {
		fired = append(fired, Integrate(s, g.cfg)...)
	}
	for _, ev := range fired {
		g.world.Spawn(ev)
	}
	for _, p := range g.world.Projectiles {
		p.Move(g.cfg.ProjectileSpeed)
	}

	g.announce(report)
	g.broadcastFrame(g.frame())

	shipsActive.Set(float64(len(g.world.Ships)))
	projectilesActive.Set(float64(len(g.world.Projectiles)))
	return report, true
}

// frame builds the truncated snapshot; sunken ships are hidden
func (g *Game) frame() Frame {
	f := Frame{
		Ships:       make([]ShipState, 0, len(g.world.Ships)),
		Projectiles: make([]ProjectileState, 0, len(g.world.Projectiles)),
		Tick:        g.tick,
	}
	for _, s := range g.world.sortedShips() {
		if s.Sunken {
			continue
		}
		f.Ships = append(f.Ships, s.ToState())
	}
	for _, p := range g.world.sortedProjectiles() {
		f.Projectiles = append(f.Projectiles, p.ToState())
	}
	return f
}

func (g *Game) broadcastFrame(f Frame) {
	data, err := msgpack.Marshal(&f)
	if err != nil {
		g.log.Error().Err(err).Uint64("tick", g.tick).Msg("encode frame")
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
	framesSent.Inc()
}

// announce turns a collision report into info and console lines
func (g *Game) announce(r CollisionReport) {
	for _, sink := range r.Sinks {
		sinksTotal.WithLabelValues(string(sink.Cause)).Inc()
		var line string
		switch sink.Cause {
		case CauseHit:
			line = fmt.Sprintf("%s sank %s", sink.Killer, sink.Victim)
		case CauseRamming:
			line = fmt.Sprintf("%s went down in a collision", sink.Victim)
		default:
			line = fmt.Sprintf("%s ran aground", sink.Victim)
		}
		g.broadcastJSON(Envelope{T: MsgInfo, Data: line})
	}
	for _, name := range r.Fallbacks {
		respawnFallbacks.Inc()
		g.console("respawn fallback for %s at tick %d", name, g.tick)
	}
	for _, name := range r.Respawned {
		g.console("%s respawned", name)
	}
}

func (g *Game) broadcastJSON(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}

func (g *Game) console(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	g.log.Debug().Msg(line)
	for id := range g.consoles {
		if client, ok := g.clients[id]; ok {
			client.SendJSON(Envelope{T: MsgConsole, Data: line})
		}
	}
}

func (g *Game) canJoin() int {
	if len(g.world.Ships) < g.cfg.MaxPlayers {
		return 1
	}
	return 0
}

// pickColor returns the first palette color no ship is using
func (g *Game) pickColor() string {
	used := make(map[string]bool, len(g.world.Ships))
	for _, s := range g.world.Ships {
		used[s.Color] = true
	}
	for _, c := range shipColors {
		if !used[c] {
			return c
		}
	}
	return fmt.Sprintf("#%06x", g.rng.IntN(0x1000000))
}

type noopRanking struct{}

func (noopRanking) Increment(string)      {}
func (noopRanking) Remove(string)         {}
func (noopRanking) Latest() []interface{} { return nil }
