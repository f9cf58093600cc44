package main

import "math"

// Side selects a broadside
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// FireEvent is a released or discharged broadside
type FireEvent struct {
	Ship  *Ship
	Side  Side
	Power float64
	At    Point // ship position when the shot left
}

// Integrate advances one ship by one tick: steering, charge, repair, fp
// regeneration and movement. Shots fired this tick are returned.
func Integrate(s *Ship, cfg GameConfig) []FireEvent {
	if s.Sunken {
		return nil
	}

	if s.Steerage.Accelerate != s.Steerage.Decelerate {
		step := cfg.Acceleration
		if s.Steerage.Decelerate {
			step = -step
		}
		s.Speed = Clamp(s.Speed+step, cfg.MinSpeed, cfg.MaxSpeed)
	}

	if s.Steerage.TurnLeft != s.Steerage.TurnRight {
		step := cfg.TurnStep
		if s.Steerage.TurnRight {
			step = -step
		}
		s.Angle = WrapDegrees(s.Angle + step)
	}

	var fired []FireEvent
	if power, ok := charge(s, &s.FireL, &s.Steerage.ShootLeft, cfg); ok {
		fired = append(fired, FireEvent{Ship: s, Side: SideLeft, Power: power, At: s.Pos()})
	}
	if power, ok := charge(s, &s.FireR, &s.Steerage.ShootRight, cfg); ok {
		fired = append(fired, FireEvent{Ship: s, Side: SideRight, Power: power, At: s.Pos()})
	}

	repair(s, cfg)

	s.FP = math.Min(s.FP+cfg.FireLoadIncreasing, cfg.MaxFP)

	rad := Radians(s.Angle)
	s.X += math.Cos(rad) * s.Speed
	s.Y -= math.Sin(rad) * s.Speed

	return fired
}

// charge advances one broadside accumulator and reports a shot when the
// charge is released or can no longer grow.
func charge(s *Ship, load *float64, held *bool, cfg GameConfig) (float64, bool) {
	if !*held {
		if *load >= cfg.FireLoadMinimum {
			return discharge(load, held, cfg), true
		}
		return 0, false
	}

	if *load < cfg.FireLoadMinimum {
		if s.FP-cfg.FireLoadMinimum >= cfg.MinFP {
			s.FP -= cfg.FireLoadMinimum
			*load = cfg.FireLoadMinimum
			return 0, false
		}
		// nothing loaded and nothing to load with
		*load = 0
		*held = false
		return 0, false
	}

	// the last step is capped at MaxFP, a full charge fires on the next tick
	step := math.Min(cfg.FireLoadSpeed, cfg.MaxFP-*load)
	if step > 0 && s.FP-step >= cfg.MinFP {
		*load += step
		s.FP -= step
		return 0, false
	}
	return discharge(load, held, cfg), true
}

func discharge(load *float64, held *bool, cfg GameConfig) float64 {
	power := math.Ceil(*load / cfg.MaxFP * 10)
	*load = 0
	*held = false
	return power
}

func repair(s *Ship, cfg GameConfig) {
	if !s.Steerage.Repair {
		return
	}
	if s.FP-cfg.FireLoadSpeed < cfg.MinFP || s.HP >= cfg.MaxHP {
		s.Steerage.Repair = false
		return
	}
	s.FP -= cfg.FireLoadSpeed
	s.HP = math.Min(s.HP+cfg.FireLoadSpeed*cfg.RepairRatio, cfg.MaxHP)
}
