package elev

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"smartlift/src/config"
	"smartlift/src/types"
)

// Car is one registry slot. Its mutex is the only serialization point for the elevator in it.
type Car struct {
	mu       sync.Mutex
	elevator Elevator
}

// Registry holds every car of the building. Each car is locked on its own, never all at once.
type Registry struct {
	cars   []*Car
	params Params
	cfg    config.SystemConfig
}

func NewRegistry(cfg config.Config) *Registry {
	reg := &Registry{
		cars:   make([]*Car, cfg.System.NumElevators),
		params: NewParams(cfg),
		cfg:    cfg.System,
	}
	for id := range reg.cars {
		reg.cars[id] = &Car{elevator: New(id, cfg.System)}
	}
	return reg
}

func (reg *Registry) Len() int       { return len(reg.cars) }
func (reg *Registry) Params() Params { return reg.params }

func (reg *Registry) car(id int) (*Car, error) {
	if id < 0 || id >= len(reg.cars) {
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownCar, id)
	}
	return reg.cars[id], nil
}

// exec runs fn under the car's lock. A panic inside fn quarantines the car instead of
// taking the building down.
func (c *Car) exec(fn func(elevator *Elevator) error) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			c.elevator.Faulted = true
			c.elevator.Speed = 0
			slog.Error("Car quarantined", "car", c.elevator.ID, "panic", r)
			err = fmt.Errorf("%w: car %d: %v", types.ErrCarFaulted, c.elevator.ID, r)
		}
	}()
	return fn(&c.elevator)
}

// Snapshot returns a copy of one car.
func (reg *Registry) Snapshot(id int) (Elevator, error) {
	c, err := reg.car(id)
	if err != nil {
		return Elevator{}, err
	}
	var snap Elevator
	err = c.exec(func(elevator *Elevator) error {
		snap = elevator.clone()
		return nil
	})
	return snap, err
}

// Snapshots copies every car, taking one lock at a time. Cars may move between copies.
func (reg *Registry) Snapshots() []Elevator {
	snaps := make([]Elevator, 0, len(reg.cars))
	for id := range reg.cars {
		snap, err := reg.Snapshot(id)
		if err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// Statuses is the display view of every car.
func (reg *Registry) Statuses() []types.Status {
	statuses := make([]types.Status, 0, len(reg.cars))
	for _, c := range reg.cars {
		_ = c.exec(func(elevator *Elevator) error {
			statuses = append(statuses, elevator.Status())
			return nil
		})
	}
	return statuses
}

// Update runs fn against the live car under its lock.
func (reg *Registry) Update(id int, fn func(elevator *Elevator)) error {
	c, err := reg.car(id)
	if err != nil {
		return err
	}
	return c.exec(func(elevator *Elevator) error {
		fn(elevator)
		return nil
	})
}

// Advance ticks one car. Quarantined cars are skipped.
func (reg *Registry) Advance(id int, dt float64) error {
	c, err := reg.car(id)
	if err != nil {
		return err
	}
	return c.exec(func(elevator *Elevator) error {
		if elevator.Faulted {
			return fmt.Errorf("%w: car %d", types.ErrCarFaulted, id)
		}
		return elevator.Advance(reg.params, dt)
	})
}

// AdvanceAll ticks every car in id order. A faulted car does not stop the others.
func (reg *Registry) AdvanceAll(dt float64) error {
	if !(dt > 0) {
		return fmt.Errorf("%w: %v", types.ErrInvalidDeltaTime, dt)
	}
	for id := range reg.cars {
		if err := reg.Advance(id, dt); err != nil && !errors.Is(err, types.ErrCarFaulted) {
			return err
		}
	}
	return nil
}

// Commit applies an assignment if the car is still available. The availability check and the
// write happen under one lock acquisition.
func (reg *Registry) Commit(assignment types.Assignment) error {
	c, err := reg.car(assignment.ElevatorID)
	if err != nil {
		return err
	}
	if len(assignment.Requests) == 0 {
		return nil
	}
	for _, req := range assignment.Requests {
		if req.FromFloor < 1 || req.FromFloor > reg.cfg.NumFloors || req.ToFloor < 1 || req.ToFloor > reg.cfg.NumFloors {
			return fmt.Errorf("%w: request %s in %d floors", types.ErrInvalidFloor, req, reg.cfg.NumFloors)
		}
	}
	return c.exec(func(elevator *Elevator) error {
		if !elevator.Available() {
			return fmt.Errorf("%w: car %d busy", types.ErrNoAvailableCar, elevator.ID)
		}
		elevator.Assign(assignment.Requests)
		return nil
	})
}

// Restore brings a quarantined car back into service, docked at its nearest floor with an
// empty manifest.
func (reg *Registry) Restore(id int) error {
	c, err := reg.car(id)
	if err != nil {
		return err
	}
	return c.exec(func(elevator *Elevator) error {
		if !elevator.Faulted {
			return nil
		}
		fresh := New(id, reg.cfg)
		fresh.CurrentFloor = float64(min(max(elevator.NearestFloor(), 1), reg.cfg.NumFloors))
		*elevator = fresh
		slog.Info("Car restored", "car", id, "floor", fresh.CurrentFloor)
		return nil
	})
}
