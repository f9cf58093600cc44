package main

import "math"

// ProjectileBaseDiameter is the diameter of a zero-power cannonball
const ProjectileBaseDiameter = 20.0

// Projectile is a cannonball in flight
type Projectile struct {
	ID       uint64
	Owner    string // owner display name
	Diameter float64
	Power    float64
	Color    string
	X, Y     float64
	Angle    float64 // degrees, fixed at launch
}

// NewProjectile fires a broadside from the owner's current position
func NewProjectile(id uint64, owner *Ship, side Side, power float64) *Projectile {
	angle := owner.Angle + 90
	if side == SideRight {
		angle = owner.Angle - 90
	}
	return &Projectile{
		ID:       id,
		Owner:    owner.Name,
		Diameter: ProjectileBaseDiameter + power,
		Power:    power,
		Color:    owner.Color,
		X:        owner.X,
		Y:        owner.Y,
		Angle:    WrapDegrees(angle),
	}
}

// Pos returns the projectile center
func (p *Projectile) Pos() Point {
	return Point{X: p.X, Y: p.Y}
}

// Move advances the projectile one tick along its heading
func (p *Projectile) Move(speed float64) {
	rad := Radians(p.Angle)
	p.X += math.Cos(rad) * speed
	p.Y -= math.Sin(rad) * speed
}

// ToState converts to the client-facing frame entry
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		Diameter: p.Diameter,
		Power:    p.Power,
		Color:    p.Color,
		X:        round1(p.X),
		Y:        round1(p.Y),
	}
}
