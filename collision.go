package main

import (
	"math/rand/v2"

	"github.com/rs/zerolog"
)

// EntityKind discriminates the collidable entity variants
type EntityKind uint8

const (
	EntityShip EntityKind = iota
	EntityProjectile
)

// Entity is a transient collision view over a ship or a projectile.
// Damage is accumulated in HP and written back once all pairs are resolved.
type Entity struct {
	Kind      EntityKind
	Ship      *Ship
	Proj      *Projectile
	HP        float64
	Destroyed bool
	killer    string
	cause     SinkCause
}

// Pos returns the entity center
func (e *Entity) Pos() Point {
	if e.Kind == EntityShip {
		return e.Ship.Pos()
	}
	return e.Proj.Pos()
}

// Diameter returns the entity diameter
func (e *Entity) Diameter() float64 {
	if e.Kind == EntityShip {
		return e.Ship.Diameter
	}
	return e.Proj.Diameter
}

// Owner returns the name that fired or sails the entity
func (e *Entity) Owner() string {
	if e.Kind == EntityShip {
		return e.Ship.Name
	}
	return e.Proj.Owner
}

// SinkCause tells how a ship was destroyed
type SinkCause string

const (
	CauseHit       SinkCause = "hit"
	CauseRamming   SinkCause = "ramming"
	CauseGrounding SinkCause = "grounding"
)

// SinkEvent reports a ship destroyed during a collision pass
type SinkEvent struct {
	ShipID string
	Victim string
	Killer string // empty unless a cannonball did it
	Cause  SinkCause
}

// CollisionReport summarises one collision pass
type CollisionReport struct {
	Sinks     []SinkEvent
	Respawned []string // names placed back on the sea
	Fallbacks []string // names placed at sea center after sampling gave up
	Removed   int      // projectiles destroyed
}

// Collider runs the respawn, boundary and pairwise passes over a World
type Collider struct {
	cfg GameConfig
	rng *rand.Rand
	log zerolog.Logger
}

// NewCollider creates a collider drawing respawn positions from rng
func NewCollider(cfg GameConfig, rng *rand.Rand, log zerolog.Logger) *Collider {
	return &Collider{cfg: cfg, rng: rng, log: log}
}

// Detect resolves one tick of collisions and mutates the world accordingly
func (c *Collider) Detect(w *World) CollisionReport {
	var report CollisionReport

	c.respawn(w, &report)

	ships := w.sortedShips()
	projs := w.sortedProjectiles()
	entities := make([]*Entity, 0, len(ships)+len(projs))
	for _, s := range ships {
		if s.Sunken {
			continue
		}
		entities = append(entities, &Entity{Kind: EntityShip, Ship: s, HP: s.HP})
	}
	for _, p := range projs {
		entities = append(entities, &Entity{Kind: EntityProjectile, Proj: p})
	}

	for _, e := range entities {
		c.boundary(e)
	}

	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			a, b := entities[i], entities[j]
			if a.Destroyed || b.Destroyed || a.Owner() == b.Owner() {
				continue
			}
			c.pair(a, b)
		}
	}

	for _, e := range entities {
		switch e.Kind {
		case EntityShip:
			if e.Destroyed {
				report.Sinks = append(report.Sinks, SinkEvent{
					ShipID: e.Ship.ID,
					Victim: e.Ship.Name,
					Killer: e.killer,
					Cause:  e.cause,
				})
				e.Ship.Sink(c.cfg)
				continue
			}
			e.Ship.HP = Clamp(e.HP, c.cfg.MinHP, c.cfg.MaxHP)
		case EntityProjectile:
			if e.Destroyed {
				delete(w.Projectiles, e.Proj.ID)
				report.Removed++
			}
		}
	}
	return report
}

// respawn places every sunken ship at a random free spot
func (c *Collider) respawn(w *World, report *CollisionReport) {
	ships := w.sortedShips()
	for _, s := range ships {
		if !s.Sunken {
			continue
		}
		pos, ok := c.freeSpot(w, s.Diameter)
		if !ok {
			pos = Point{X: c.cfg.SeaWidth / 2, Y: c.cfg.SeaHeight / 2}
			report.Fallbacks = append(report.Fallbacks, s.Name)
			c.log.Warn().
				Str("ship", s.Name).
				Int("attempts", c.cfg.RespawnAttempts).
				Msg("no free respawn spot, placing at sea center")
		}
		s.X, s.Y = pos.X, pos.Y
		s.Sunken = false
		report.Respawned = append(report.Respawned, s.Name)
	}
}

// freeSpot rejection-samples a position at least the summed diameters away
// from every live entity
func (c *Collider) freeSpot(w *World, diameter float64) (Point, bool) {
	spanX := c.cfg.SeaWidth - 2*diameter
	spanY := c.cfg.SeaHeight - 2*diameter
	if spanX <= 0 || spanY <= 0 {
		return Point{}, false
	}

	for attempt := 0; attempt < c.cfg.RespawnAttempts; attempt++ {
		p := Point{
			X: diameter + c.rng.Float64()*spanX,
			Y: diameter + c.rng.Float64()*spanY,
		}
		if c.isFree(w, p, diameter) {
			return p, true
		}
	}
	return Point{}, false
}

func (c *Collider) isFree(w *World, p Point, diameter float64) bool {
	for _, other := range w.Ships {
		if other.Sunken {
			continue
		}
		if Distance(p, other.Pos()) < diameter+other.Diameter {
			return false
		}
	}
	for _, proj := range w.Projectiles {
		if Distance(p, proj.Pos()) < diameter+proj.Diameter {
			return false
		}
	}
	return true
}

// boundary destroys entities that leave the sea
func (c *Collider) boundary(e *Entity) {
	switch e.Kind {
	case EntityShip:
		margin := e.Ship.Diameter / 8
		if c.outside(e.Ship.Bow(c.cfg), margin) || c.outside(e.Ship.Stern(c.cfg), margin) {
			e.Destroyed = true
			e.cause = CauseGrounding
		}
	case EntityProjectile:
		if c.outside(e.Proj.Pos(), e.Proj.Diameter/2) {
			e.Destroyed = true
		}
	}
}

func (c *Collider) outside(p Point, margin float64) bool {
	return p.X-margin < 0 || p.X+margin > c.cfg.SeaWidth ||
		p.Y-margin < 0 || p.Y+margin > c.cfg.SeaHeight
}

func (c *Collider) pair(a, b *Entity) {
	switch {
	case a.Kind == EntityProjectile && b.Kind == EntityProjectile:
		if Distance(a.Pos(), b.Pos()) < max(a.Diameter(), b.Diameter()) {
			a.Destroyed = true
			b.Destroyed = true
		}
	case a.Kind == EntityShip && b.Kind == EntityShip:
		if c.shipsCollide(a.Ship, b.Ship) {
			a.Destroyed, a.cause = true, CauseRamming
			b.Destroyed, b.cause = true, CauseRamming
		}
	case a.Kind == EntityShip:
		c.hit(a, b)
	default:
		c.hit(b, a)
	}
}

// hit resolves a cannonball against an enemy hull
func (c *Collider) hit(ship, proj *Entity) {
	if !c.projectileHits(ship.Ship, proj.Proj) {
		return
	}
	proj.Destroyed = true
	ship.HP -= proj.Proj.Power
	if ship.HP <= c.cfg.MinHP {
		ship.Destroyed = true
		ship.cause = CauseHit
		ship.killer = proj.Proj.Owner
	}
}

func (c *Collider) projectileHits(s *Ship, p *Projectile) bool {
	bow, stern := s.Bow(c.cfg), s.Stern(c.cfg)
	pos := p.Pos()
	reach := s.Diameter/8 + p.Diameter/2

	toBow, toStern := Distance(pos, bow), Distance(pos, stern)
	if toBow < reach || toStern < reach {
		return true
	}
	hull := Distance(bow, stern)
	return TriangleArea(hull, toBow, toStern) < MinTriangleArea(hull, reach)
}

func (c *Collider) shipsCollide(a, b *Ship) bool {
	aEnds := [2]Point{a.Bow(c.cfg), a.Stern(c.cfg)}
	bEnds := [2]Point{b.Bow(c.cfg), b.Stern(c.cfg)}
	limit := c.cfg.ShipDiameter() / 4
	for _, pa := range aEnds {
		for _, pb := range bEnds {
			if Distance(pa, pb) < limit {
				return true
			}
		}
	}

	for _, p := range aEnds {
		if c.grazes(p, b) {
			return true
		}
	}
	for _, p := range bEnds {
		if c.grazes(p, a) {
			return true
		}
	}
	return false
}

// grazes reports whether point p touches the side of hull s
func (c *Collider) grazes(p Point, s *Ship) bool {
	if Distance(p, s.Pos()) >= s.Diameter/2+s.Diameter/8 {
		return false
	}
	bow, stern := s.Bow(c.cfg), s.Stern(c.cfg)
	hull := Distance(bow, stern)
	return TriangleArea(hull, Distance(p, bow), Distance(p, stern)) < MinTriangleArea(hull, c.cfg.ShipWidth)
}
