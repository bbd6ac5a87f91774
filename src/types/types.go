package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Direction int

const (
	DirIdle Direction = iota
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "Up"
	case DirDown:
		return "Down"
	default:
		return "Idle"
	}
}

// DirectionTo returns the direction of travel from one position to another.
func DirectionTo(from, to float64) Direction {
	switch {
	case to > from:
		return DirUp
	case to < from:
		return DirDown
	}
	return DirIdle
}

type DoorState int

const (
	DoorClosed DoorState = iota
	DoorOpening
	DoorOpen
	DoorClosing
)

func (d DoorState) String() string {
	switch d {
	case DoorOpening:
		return "Opening"
	case DoorOpen:
		return "Open"
	case DoorClosing:
		return "Closing"
	default:
		return "Closed"
	}
}

// Request is a passenger call. It is never modified after creation.
type Request struct {
	ID             uuid.UUID
	FromFloor      int
	ToFloor        int
	Timestamp      time.Time
	PassengerCount int
}

func NewRequest(from, to, passengers int) Request {
	return Request{
		ID:             uuid.New(),
		FromFloor:      from,
		ToFloor:        to,
		Timestamp:      time.Now(),
		PassengerCount: passengers,
	}
}

// Dir is the direction the passengers want to travel from the pickup floor.
func (r Request) Dir() Direction {
	if r.ToFloor > r.FromFloor {
		return DirUp
	}
	return DirDown
}

func (r Request) String() string {
	return fmt.Sprintf("%d->%d(x%d)", r.FromFloor, r.ToFloor, r.PassengerCount)
}

// Assignment is the outcome of one scheduling decision for one car.
type Assignment struct {
	ElevatorID int
	Requests   []Request
	Cost       float64
}

// Status is the read-only view of a car handed out for display.
type Status struct {
	ID           int
	CurrentFloor float64
	Direction    Direction
	DoorState    DoorState
	Faulted      bool
}
