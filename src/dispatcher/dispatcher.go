package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartlift/src/config"
	"smartlift/src/elev"
	"smartlift/src/types"
)

// Dispatcher owns the pending queue and the request log. It never holds more than one car
// lock at a time, and never holds its own lock while taking a car lock.
type Dispatcher struct {
	registry *elev.Registry
	cfg      config.SystemConfig
	strategy Strategy

	mu      sync.Mutex
	pending []types.Request
	history []types.Request
}

// New returns a dispatcher using strategy, or Greedy when strategy is nil.
func New(registry *elev.Registry, cfg config.SystemConfig, strategy Strategy) *Dispatcher {
	if strategy == nil {
		strategy = Greedy{}
	}
	return &Dispatcher{
		registry: registry,
		cfg:      cfg,
		strategy: strategy,
	}
}

// Enqueue validates req, logs it and tries to assign it right away.
//   - invalid requests are returned as errors and never queued
//   - if no car can take it now, it is queued and ErrNoAvailableCar is returned
func (d *Dispatcher) Enqueue(req types.Request) (types.Assignment, error) {
	if err := ValidateRequest(d.cfg, req); err != nil {
		return types.Assignment{}, err
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}

	d.mu.Lock()
	d.history = append(d.history, req)
	d.mu.Unlock()

	committed, deferred := d.schedule([]types.Request{req})
	if len(deferred) > 0 {
		d.mu.Lock()
		d.pending = append(d.pending, deferred...)
		d.mu.Unlock()
		slog.Info("Request deferred", "request", req.String(), "id", req.ID)
		return types.Assignment{}, fmt.Errorf("%w: request %s", types.ErrNoAvailableCar, req)
	}
	return committed[0], nil
}

// Retry runs one scheduling pass over the pending queue and returns how many requests were assigned.
func (d *Dispatcher) Retry() int {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	_, deferred := d.schedule(batch)

	d.mu.Lock()
	d.pending = append(deferred, d.pending...)
	d.mu.Unlock()
	return len(batch) - len(deferred)
}

// schedule evaluates requests against fresh snapshots and commits what the strategy picks.
// A commit fails if the car stopped being available after its snapshot was taken.
func (d *Dispatcher) schedule(requests []types.Request) (committed []types.Assignment, deferred []types.Request) {
	snapshots := d.registry.Snapshots()
	for _, assignment := range d.strategy.ComputeAssignments(requests, snapshots) {
		if err := d.registry.Commit(assignment); err != nil {
			slog.Debug("Assignment not committed", "car", assignment.ElevatorID, "cost", assignment.Cost, "err", err)
			continue
		}
		slog.Info("Assigned car",
			"car", assignment.ElevatorID,
			"floor", assignment.Requests[0].FromFloor,
			"requests", len(assignment.Requests),
			"cost", assignment.Cost)
		committed = append(committed, assignment)
	}
	return committed, removeCommitted(requests, committed)
}

func (d *Dispatcher) Pending() []types.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.pending)
}

// History returns every accepted request in arrival order, assigned or not.
func (d *Dispatcher) History() []types.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.history)
}

// Run enqueues requests from ingress and retries the pending queue every retryInterval until
// ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, ingress <-chan types.Request, retryInterval time.Duration) error {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-ingress:
			if !ok {
				ingress = nil
				continue
			}
			_, err := d.Enqueue(req)
			switch {
			case err == nil, errors.Is(err, types.ErrNoAvailableCar):
			default:
				slog.Warn("Request rejected", "request", req.String(), "err", err)
			}
		case <-ticker.C:
			if n := d.Retry(); n > 0 {
				slog.Debug("Pending requests assigned", "count", n)
			}
		}
	}
}
