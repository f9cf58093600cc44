package main

import "math"

// offMap is where sunken ships wait for the respawn pass
var offMap = Point{X: -1000, Y: -1000}

// Steerage holds the control flags driven by client actions
type Steerage struct {
	Accelerate bool
	Decelerate bool
	TurnLeft   bool
	TurnRight  bool
	ShootLeft  bool
	ShootRight bool
	Repair     bool
}

// Ship is one player's vessel
type Ship struct {
	ID       string // connection id
	Name     string
	Color    string
	Diameter float64
	Sunken   bool
	X, Y     float64
	HP       float64
	FP       float64
	Steerage Steerage
	Speed    float64
	Angle    float64 // degrees, counter-clockwise, 0 = east
	FireL    float64 // left broadside charge
	FireR    float64 // right broadside charge
}

// NewShip creates a ship waiting for its first placement
func NewShip(id, name, color string, cfg GameConfig) *Ship {
	return &Ship{
		ID:       id,
		Name:     name,
		Color:    color,
		Diameter: cfg.ShipDiameter(),
		Sunken:   true,
		X:        offMap.X,
		Y:        offMap.Y,
		HP:       cfg.MaxHP,
		FP:       cfg.MaxFP,
	}
}

// Pos returns the hull center
func (s *Ship) Pos() Point {
	return Point{X: s.X, Y: s.Y}
}

// Bow returns the forward hull point, offset 1.5 ship widths along the heading
func (s *Ship) Bow(cfg GameConfig) Point {
	return s.hullPoint(1.5 * cfg.ShipWidth)
}

// Stern returns the aft hull point
func (s *Ship) Stern(cfg GameConfig) Point {
	return s.hullPoint(-1.5 * cfg.ShipWidth)
}

func (s *Ship) hullPoint(offset float64) Point {
	rad := Radians(s.Angle)
	return Point{
		X: s.X + math.Cos(rad)*offset,
		Y: s.Y - math.Sin(rad)*offset,
	}
}

// Sink resets the ship and hides it until the next respawn pass.
// Projectiles it already fired are left alone.
func (s *Ship) Sink(cfg GameConfig) {
	s.Sunken = true
	s.X, s.Y = offMap.X, offMap.Y
	s.HP = cfg.MaxHP
	s.FP = cfg.MaxFP
	s.Steerage = Steerage{}
	s.Speed = 0
	s.Angle = 0
	s.FireL = 0
	s.FireR = 0
}

// ToState converts to the client-facing frame entry
func (s *Ship) ToState() ShipState {
	return ShipState{
		Color: s.Color,
		X:     round1(s.X),
		Y:     round1(s.Y),
		Speed: round1(s.Speed),
		Angle: round1(s.Angle),
		HP:    round1(s.HP),
		FP:    round1(s.FP),
	}
}
