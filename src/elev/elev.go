package elev

import (
	"log/slog"
	"math"
	"slices"

	"github.com/tiendc/go-deepcopy"

	"smartlift/src/config"
	"smartlift/src/types"
)

// New returns a car docked at floor 1 with its doors closed.
func New(id int, cfg config.SystemConfig) Elevator {
	elevator := Elevator{
		ID: id,
		Motion: Motion{
			CurrentFloor: 1,
			Direction:    types.DirIdle,
			Acceleration: cfg.AccelerationRate,
			DoorState:    types.DoorClosed,
		},
		MaxLoad: cfg.MaxLoad,
	}
	slog.Debug("Elevator initialized", "car", id)
	return elevator
}

// Available reports whether the dispatcher may commit a new target to the car.
func (e *Elevator) Available() bool {
	return !e.Faulted &&
		e.TargetFloor == nil &&
		e.DoorState == types.DoorClosed &&
		len(e.Passengers) == 0
}

func (e *Elevator) Status() types.Status {
	return types.Status{
		ID:           e.ID,
		CurrentFloor: e.CurrentFloor,
		Direction:    e.Direction,
		DoorState:    e.DoorState,
		Faulted:      e.Faulted,
	}
}

// Advance steps the kinematics and runs the manifest on arrivals and door closings.
func (e *Elevator) Advance(p Params, dt float64) error {
	event, err := e.Motion.Advance(p, dt)
	if err != nil {
		return err
	}
	switch event {
	case EventArrived:
		slog.Info("Car arrived", "car", e.ID, "floor", e.NearestFloor())
		e.exchangePassengers()
	case EventDoorsClosed:
		slog.Debug("Doors closed", "car", e.ID, "floor", e.NearestFloor())
		e.nextStop()
	}
	return nil
}

// Assign hands the requests to the car and points it at the first pickup.
// A pickup on the current floor docks immediately.
func (e *Elevator) Assign(requests []types.Request) {
	for _, req := range requests {
		e.Passengers = append(e.Passengers, Rider{Request: req})
	}
	pickup := requests[0].FromFloor
	if math.Abs(float64(pickup)-e.CurrentFloor) < config.ArrivalThreshold {
		e.SetTarget(pickup)
		e.arrive()
		e.exchangePassengers()
		return
	}
	e.SetTarget(pickup)
}

// exchangePassengers lets riders off and on at the floor the car just docked at.
func (e *Elevator) exchangePassengers() {
	floor := e.NearestFloor()
	riders := e.Passengers[:0]
	for _, rider := range e.Passengers {
		req := rider.Request
		switch {
		case rider.Boarded && req.ToFloor == floor:
			e.Load = max(0, e.Load-weight(req))
			slog.Debug("Passengers left", "car", e.ID, "floor", floor, "request", req.ID)
			continue
		case !rider.Boarded && req.FromFloor == floor:
			rider.Boarded = true
			e.Load += weight(req)
			if e.Load > e.MaxLoad {
				slog.Warn("Car overloaded", "car", e.ID, "load", e.Load, "maxLoad", e.MaxLoad)
			}
			slog.Debug("Passengers boarded", "car", e.ID, "floor", floor, "request", req.ID)
		}
		riders = append(riders, rider)
	}
	e.Passengers = riders
}

// nextStop retargets the car at the closest remaining stop of its manifest.
func (e *Elevator) nextStop() {
	best, found := 0, false
	for _, rider := range e.Passengers {
		stop := rider.Request.FromFloor
		if rider.Boarded {
			stop = rider.Request.ToFloor
		}
		if !found || closer(e.CurrentFloor, stop, best) {
			best, found = stop, true
		}
	}
	if found {
		slog.Debug("Next stop", "car", e.ID, "floor", best)
		e.SetTarget(best)
	}
}

// clone returns a copy sharing no memory with e.
func (e *Elevator) clone() Elevator {
	out := *e
	out.Motion = e.Motion.Clone()
	out.Passengers = slices.Clone(e.Passengers)
	return out
}

// Clone deep-copies the motion state, including the target pointer.
func (m Motion) Clone() Motion {
	var out Motion
	if err := deepcopy.Copy(&out, &m); err != nil {
		panic(err)
	}
	return out
}

func closer(pos float64, a, b int) bool {
	da, db := math.Abs(float64(a)-pos), math.Abs(float64(b)-pos)
	if da != db {
		return da < db
	}
	return a < b
}

func weight(req types.Request) float64 {
	return float64(req.PassengerCount) * config.PassengerWeight
}
