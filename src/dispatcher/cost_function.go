package dispatcher

import (
	"math"

	"smartlift/src/elev"
	"smartlift/src/types"
)

// Cost estimates how far (in floors) a car is from serving a request. Lower is better.
//   - idle car: distance to the pickup
//   - car heading the request's way with the pickup between it and its target: distance to the pickup
//   - otherwise: finish the current leg, then travel back to the pickup
func Cost(elevator elev.Elevator, req types.Request) float64 {
	pos := elevator.CurrentFloor
	pickup := float64(req.FromFloor)
	if elevator.TargetFloor == nil {
		return math.Abs(pos - pickup)
	}

	target := float64(*elevator.TargetFloor)
	if onTheWay(elevator.Direction, pos, target, pickup, req.Dir()) {
		return math.Abs(pos - pickup)
	}
	return math.Abs(pos-target) + math.Abs(target-pickup)
}

func onTheWay(dir types.Direction, pos, target, pickup float64, reqDir types.Direction) bool {
	if dir != reqDir {
		return false
	}
	switch dir {
	case types.DirUp:
		return pos <= pickup && pickup <= target
	case types.DirDown:
		return target <= pickup && pickup <= pos
	}
	return false
}
