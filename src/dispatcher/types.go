package dispatcher

import (
	"smartlift/src/elev"
	"smartlift/src/types"
)

// Strategy turns pending requests and car snapshots into assignments. It must not mutate
// its inputs; the dispatcher commits the result.
type Strategy interface {
	ComputeAssignments(pending []types.Request, cars []elev.Elevator) []types.Assignment
}

// Greedy gives every request to its cheapest car by Cost, lowest car id on ties.
type Greedy struct{}

func (Greedy) ComputeAssignments(pending []types.Request, cars []elev.Elevator) []types.Assignment {
	var assignments []types.Assignment
	for _, req := range pending {
		if assignment, ok := cheapestCar(req, cars); ok {
			assignments = append(assignments, assignment)
		}
	}
	return assignments
}

func cheapestCar(req types.Request, cars []elev.Elevator) (types.Assignment, bool) {
	best := -1
	var bestCost float64
	for i, car := range cars {
		if car.Faulted {
			continue
		}
		cost := Cost(car, req)
		if best < 0 || cost < bestCost || (cost == bestCost && car.ID < cars[best].ID) {
			best, bestCost = i, cost
		}
	}
	if best < 0 {
		return types.Assignment{}, false
	}
	return types.Assignment{
		ElevatorID: cars[best].ID,
		Requests:   []types.Request{req},
		Cost:       bestCost,
	}, true
}
