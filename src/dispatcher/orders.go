package dispatcher

import (
	"fmt"

	"github.com/google/uuid"

	"smartlift/src/config"
	"smartlift/src/types"
)

// ValidateRequest rejects requests that must never reach the pending queue.
func ValidateRequest(cfg config.SystemConfig, req types.Request) error {
	if req.FromFloor < 1 || req.FromFloor > cfg.NumFloors {
		return fmt.Errorf("%w: from floor %d not in [1, %d]", types.ErrInvalidFloor, req.FromFloor, cfg.NumFloors)
	}
	if req.ToFloor < 1 || req.ToFloor > cfg.NumFloors {
		return fmt.Errorf("%w: to floor %d not in [1, %d]", types.ErrInvalidFloor, req.ToFloor, cfg.NumFloors)
	}
	if req.FromFloor == req.ToFloor {
		return fmt.Errorf("%w: from and to are both %d", types.ErrInvalidFloor, req.FromFloor)
	}
	if capacity := cfg.Capacity(); req.PassengerCount < 1 || req.PassengerCount > capacity {
		return fmt.Errorf("%w: %d not in [1, %d]", types.ErrInvalidPassengerCount, req.PassengerCount, capacity)
	}
	return nil
}

// removeCommitted returns the requests not covered by any committed assignment.
func removeCommitted(requests []types.Request, committed []types.Assignment) []types.Request {
	done := make(map[uuid.UUID]bool)
	for _, assignment := range committed {
		for _, req := range assignment.Requests {
			done[req.ID] = true
		}
	}
	var rest []types.Request
	for _, req := range requests {
		if !done[req.ID] {
			rest = append(rest, req)
		}
	}
	return rest
}
