// State types are defined here so the kinematics, the manifest and the registry share one shape.

package elev

import (
	"smartlift/src/config"
	"smartlift/src/types"
)

// Params are the building limits every car is advanced against.
type Params struct {
	NumFloors int
	MaxSpeed  float64
	DoorDwell float64 // seconds
}

func NewParams(cfg config.Config) Params {
	return Params{
		NumFloors: cfg.System.NumFloors,
		MaxSpeed:  cfg.System.MaxSpeed,
		DoorDwell: cfg.DoorDwell.Seconds(),
	}
}

// Motion is the kinematic and door state of one car.
//   - TargetFloor == nil implies Direction == DirIdle and Speed == 0
//   - Speed is signed, positive when travelling up
type Motion struct {
	CurrentFloor float64
	TargetFloor  *int
	Direction    types.Direction
	Speed        float64
	Acceleration float64
	DoorState    types.DoorState
	DoorElapsed  float64
}

// Event is reported by Motion.Advance when the car crosses a state machine edge.
type Event int

const (
	EventNone Event = iota
	EventArrived
	EventDoorsClosed
)

// Rider is a request committed to a car.
type Rider struct {
	Request types.Request
	Boarded bool
}

// Elevator is one car. It lives in a Registry slot and is only touched under that slot's lock.
type Elevator struct {
	ID int
	Motion
	Load       float64
	MaxLoad    float64
	Passengers []Rider
	Faulted    bool
}
