package world

import "math"

// Movement tuning, per unit of speed multiplier.
const (
	StopDistance     = 0.5 // arrival tolerance
	BaseMaxVelocity  = 3.0
	BaseAcceleration = 1.0
	IdleVelocity     = 0.1 // velocity floor while moving and after arrival
)

// Mover drives one entity along the x axis with an accelerate, cruise,
// decelerate profile. The zero value is unusable; call NewMover.
type Mover struct {
	Velocity     float64
	MaxVelocity  float64
	MinVelocity  float64
	Acceleration float64

	accelSign float64
	braking   bool
}

func NewMover(speedMultiplier float64) Mover {
	if speedMultiplier <= 0 {
		speedMultiplier = 1
	}
	return Mover{
		Velocity:     IdleVelocity,
		MaxVelocity:  BaseMaxVelocity * speedMultiplier,
		MinVelocity:  IdleVelocity,
		Acceleration: BaseAcceleration * speedMultiplier,
		accelSign:    1,
	}
}

// Braking reports whether the current move has started decelerating.
func (m *Mover) Braking() bool { return m.braking }

// StoppingDistance is how far the mover travels before stopping when it
// brakes at its acceleration from the current velocity.
func (m *Mover) StoppingDistance() float64 {
	if m.Acceleration <= 0 {
		return 0
	}
	t := m.Velocity / m.Acceleration
	return 0.5*-m.Velocity*t + m.Velocity*t
}

// Step advances x toward dest by one tick of dt seconds. It returns the new
// x, the heading of travel (zero when unchanged), and whether the mover
// arrived. On arrival x is exactly dest and the mover is ready for reuse.
func (m *Mover) Step(x, dest, dt float64) (float64, Direction, bool) {
	path := dest - x
	distance := math.Abs(path)

	var heading Direction
	if m.Velocity > 0 && path != 0 {
		heading = Right
		if path < 0 {
			heading = Left
		}
	}

	a := m.Acceleration * m.accelSign
	if !m.braking && m.StoppingDistance() >= distance-StopDistance {
		m.braking = true
		m.accelSign = -1
	}

	if distance >= StopDistance {
		m.Velocity += a * dt
		m.Velocity = math.Max(m.MinVelocity, math.Min(m.Velocity, m.MaxVelocity))

		step := math.Min(m.Velocity*dt, distance)
		if path < 0 {
			step = -step
		}
		return x + step, heading, false
	}

	m.accelSign = 1
	m.braking = false
	m.Velocity = m.MinVelocity
	return dest, heading, true
}
