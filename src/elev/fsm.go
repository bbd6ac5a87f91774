// Kinematics and door state machine for a single car.

package elev

import (
	"fmt"
	"math"

	"smartlift/src/config"
	"smartlift/src/types"
)

// Advance moves the car dt seconds forward.
//   - without a target the car stands still
//   - with a target it follows a constant acceleration bang-bang profile capped at MaxSpeed
//   - it never passes its target; a step that would reach it snaps onto it and docks
//   - doors cycle Opening -> Open -> (dwell) -> Closing -> Closed, one edge per call
func (m *Motion) Advance(p Params, dt float64) (Event, error) {
	if !(dt > 0) {
		return EventNone, fmt.Errorf("%w: %v", types.ErrInvalidDeltaTime, dt)
	}

	if m.TargetFloor == nil {
		m.Speed = 0
		m.Direction = types.DirIdle
		return m.cycleDoor(p, dt), nil
	}

	target := float64(*m.TargetFloor)
	distance := target - m.CurrentFloor
	if math.Abs(distance) < config.ArrivalThreshold {
		m.arrive()
		return EventArrived, nil
	}

	m.Direction = types.DirectionTo(m.CurrentFloor, target)
	if m.DoorState != types.DoorClosed {
		// Hold until the doors are shut.
		m.Speed = 0
		return m.cycleDoor(p, dt), nil
	}

	sign := math.Copysign(1, distance)
	remaining := math.Abs(distance)
	speed := max(m.Speed*sign, 0)

	brakingDistance := speed * speed / (2 * m.Acceleration)
	if brakingDistance >= remaining {
		speed -= m.Acceleration * dt
	} else {
		speed += m.Acceleration * dt
	}
	speed = min(speed, p.MaxSpeed)
	if speed <= 0 {
		// Braked to a stop short of the target. Creep the rest of the way.
		speed = min(m.Acceleration*dt, p.MaxSpeed)
	}

	step := speed * dt
	if step >= remaining {
		m.arrive()
		return EventArrived, nil
	}

	m.CurrentFloor += sign * step
	m.Speed = sign * speed
	m.clamp(p)
	return m.cycleDoor(p, dt), nil
}

func (m *Motion) arrive() {
	m.CurrentFloor = float64(*m.TargetFloor)
	m.TargetFloor = nil
	m.Speed = 0
	m.Direction = types.DirIdle
	m.DoorState = types.DoorOpening
	m.DoorElapsed = 0
}

func (m *Motion) cycleDoor(p Params, dt float64) Event {
	switch m.DoorState {
	case types.DoorOpening:
		m.DoorState = types.DoorOpen
		m.DoorElapsed = 0
	case types.DoorOpen:
		m.DoorElapsed += dt
		if m.DoorElapsed+1e-9 >= p.DoorDwell {
			m.DoorState = types.DoorClosing
		}
	case types.DoorClosing:
		m.DoorState = types.DoorClosed
		m.DoorElapsed = 0
		return EventDoorsClosed
	}
	return EventNone
}

func (m *Motion) clamp(p Params) {
	m.CurrentFloor = min(max(m.CurrentFloor, 1), float64(p.NumFloors))
}

// SetTarget points the car at floor. Callers check Available first.
func (m *Motion) SetTarget(floor int) {
	m.TargetFloor = &floor
	m.Direction = types.DirectionTo(m.CurrentFloor, float64(floor))
}

// NearestFloor is the floor the car is at or closest to.
func (m Motion) NearestFloor() int {
	return int(math.Round(m.CurrentFloor))
}
