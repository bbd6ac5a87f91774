package dispatcher

import (
	"math"
	"slices"
	"time"

	"github.com/tiendc/go-deepcopy"

	"smartlift/src/config"
	"smartlift/src/elev"
	"smartlift/src/types"
)

const maxSimTicks = 100000

// WeightedScan batches requests that arrived close together and spreads them over idle cars.
//   - only requests within LookAhead of the oldest pending one are considered in a pass
//   - up requests are taken lowest pickup first, down requests highest pickup first
//   - cost is EnergyWeight * floors travelled + WaitWeight * simulated seconds until pickup
//   - an idle car may collect several requests heading the same way, up to Capacity passengers
type WeightedScan struct {
	LookAhead    time.Duration
	EnergyWeight float64
	WaitWeight   float64
	Params       elev.Params
	Capacity     int
	Dt           float64
}

func NewWeightedScan(cfg config.Config) WeightedScan {
	return WeightedScan{
		LookAhead:    5 * time.Second,
		EnergyWeight: 0.5,
		WaitWeight:   0.5,
		Params:       elev.NewParams(cfg),
		Capacity:     cfg.System.Capacity(),
		Dt:           cfg.TickInterval.Seconds(),
	}
}

type claim struct {
	dir        types.Direction
	passengers int
	requests   []types.Request
	lastPickup int
	wait       float64
	cost       float64
}

func (w WeightedScan) ComputeAssignments(pending []types.Request, cars []elev.Elevator) []types.Assignment {
	claims := make(map[int]*claim)
	for _, req := range w.window(pending) {
		best := -1
		var bestCost, bestWait float64
		for i, car := range cars {
			if !car.Available() {
				continue
			}
			c := claims[car.ID]
			if c != nil && (c.dir != req.Dir() || c.passengers+req.PassengerCount > w.Capacity) {
				continue
			}
			cost, wait := w.cost(car, c, req)
			if best < 0 || cost < bestCost || (cost == bestCost && car.ID < cars[best].ID) {
				best, bestCost, bestWait = i, cost, wait
			}
		}
		if best < 0 {
			continue
		}

		id := cars[best].ID
		c := claims[id]
		if c == nil {
			c = &claim{dir: req.Dir()}
			claims[id] = c
		}
		c.passengers += req.PassengerCount
		c.requests = append(c.requests, req)
		c.lastPickup = req.FromFloor
		c.wait = bestWait
		c.cost += bestCost
	}

	assignments := make([]types.Assignment, 0, len(claims))
	for id, c := range claims {
		assignments = append(assignments, types.Assignment{ElevatorID: id, Requests: c.requests, Cost: c.cost})
	}
	slices.SortFunc(assignments, func(a, b types.Assignment) int { return a.ElevatorID - b.ElevatorID })
	return assignments
}

// window returns the requests within LookAhead of the oldest one, up requests first.
func (w WeightedScan) window(pending []types.Request) []types.Request {
	if len(pending) == 0 {
		return nil
	}
	oldest := pending[0].Timestamp
	for _, req := range pending[1:] {
		if req.Timestamp.Before(oldest) {
			oldest = req.Timestamp
		}
	}
	horizon := oldest.Add(w.LookAhead)

	var up, down []types.Request
	for _, req := range pending {
		if req.Timestamp.After(horizon) {
			continue
		}
		if req.Dir() == types.DirUp {
			up = append(up, req)
		} else {
			down = append(down, req)
		}
	}
	slices.SortStableFunc(up, func(a, b types.Request) int { return a.FromFloor - b.FromFloor })
	slices.SortStableFunc(down, func(a, b types.Request) int { return b.FromFloor - a.FromFloor })
	return append(up, down...)
}

// cost prices req for car, either as its first request or appended to what it already claimed.
func (w WeightedScan) cost(car elev.Elevator, c *claim, req types.Request) (cost, wait float64) {
	ride := math.Abs(float64(req.ToFloor - req.FromFloor))
	var energy float64
	if c == nil {
		energy = math.Abs(car.CurrentFloor-float64(req.FromFloor)) + ride
		wait = w.eta(car.Motion, car.CurrentFloor, req.FromFloor)
	} else {
		// Only the extra floors up to this pickup count.
		energy = math.Abs(float64(req.FromFloor - c.lastPickup))
		wait = c.wait + w.Params.DoorDwell + w.eta(car.Motion, float64(c.lastPickup), req.FromFloor)
	}
	return w.EnergyWeight*energy + w.WaitWeight*wait, wait
}

// eta simulates a copy of the car from pos to floor and returns the travel time in seconds.
func (w WeightedScan) eta(m elev.Motion, pos float64, floor int) float64 {
	if math.Abs(pos-float64(floor)) < config.ArrivalThreshold {
		return 0
	}
	sim := new(elev.Motion)
	if err := deepcopy.Copy(sim, &m); err != nil {
		panic(err)
	}
	sim.CurrentFloor = pos
	sim.Speed = 0
	sim.DoorState = types.DoorClosed
	sim.SetTarget(floor)

	var elapsed float64
	for range maxSimTicks {
		event, err := sim.Advance(w.Params, w.Dt)
		if err != nil {
			return math.Inf(1)
		}
		elapsed += w.Dt
		if event == elev.EventArrived {
			break
		}
	}
	return elapsed
}
