package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectile(t *testing.T) {
	cfg := DefaultGameConfig()
	owner := afloat(cfg)
	owner.Name = "Gunner"
	owner.Color = "#abcdef"
	owner.Angle = 30

	left := NewProjectile(1, owner, SideLeft, 4)
	assert.Equal(t, 120.0, left.Angle)
	assert.Equal(t, ProjectileBaseDiameter+4, left.Diameter)
	assert.Equal(t, "Gunner", left.Owner)
	assert.Equal(t, "#abcdef", left.Color)
	assert.Equal(t, owner.Pos(), left.Pos(), "starts at the owner's position")

	right := NewProjectile(2, owner, SideRight, 4)
	assert.Equal(t, 300.0, right.Angle, "wrapped into [0,360)")
}

func TestProjectileMove(t *testing.T) {
	cfg := DefaultGameConfig()
	owner := afloat(cfg)
	owner.Angle = 270 // right broadside fires along 180
	p := NewProjectile(1, owner, SideRight, 0)

	const ticks = 10
	for i := 0; i < ticks; i++ {
		p.Move(cfg.ProjectileSpeed)
	}

	wantX := owner.X + math.Cos(Radians(180))*cfg.ProjectileSpeed*ticks
	assert.InDelta(t, wantX, p.X, 1e-9)
	assert.InDelta(t, owner.Y, p.Y, 1e-9)
}

func TestProjectileToState(t *testing.T) {
	p := &Projectile{Diameter: 23, Power: 3, Color: "#fff", X: 10.04, Y: 20.06}

	assert.Equal(t, ProjectileState{Diameter: 23, Power: 3, Color: "#fff", X: 10, Y: 20.1}, p.ToState())
}

func TestWorldSpawn(t *testing.T) {
	cfg := DefaultGameConfig()
	w := NewWorld()
	owner := afloat(cfg)

	a := w.Spawn(FireEvent{Ship: owner, Side: SideLeft, Power: 2, At: Point{100, 200}})
	b := w.Spawn(FireEvent{Ship: owner, Side: SideRight, Power: 5, At: Point{110, 200}})

	assert.Less(t, a.ID, b.ID)
	assert.Equal(t, Point{100, 200}, a.Pos(), "starts where the shot left")
	assert.Equal(t, 600.0, owner.X, "spawning must not move the owner")
	require.Len(t, w.Projectiles, 2)
}
