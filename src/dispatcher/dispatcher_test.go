package dispatcher

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"smartlift/src/config"
	"smartlift/src/elev"
	"smartlift/src/types"
)

const testDt = 0.1

func testConfig(t *testing.T, numElevators, numFloors int) config.Config {
	t.Helper()
	system, err := config.New(numElevators, numFloors, 2.5, 2.0, 800)
	if err != nil {
		t.Fatal(err)
	}
	return config.Config{
		System:        system,
		TickInterval:  100 * time.Millisecond,
		DoorDwell:     300 * time.Millisecond,
		RetryInterval: 10 * time.Millisecond,
	}
}

func placeCar(t *testing.T, reg *elev.Registry, id int, floor float64) {
	t.Helper()
	if err := reg.Update(id, func(e *elev.Elevator) { e.CurrentFloor = floor }); err != nil {
		t.Fatal(err)
	}
}

func snapshot(t *testing.T, reg *elev.Registry, id int) elev.Elevator {
	t.Helper()
	snap, err := reg.Snapshot(id)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func tickUntil(t *testing.T, reg *elev.Registry, maxTicks int, done func() bool) {
	t.Helper()
	for range maxTicks {
		if done() {
			return
		}
		if err := reg.AdvanceAll(testDt); err != nil {
			t.Fatal(err)
		}
	}
	if !done() {
		t.Fatalf("condition not reached within %d ticks", maxTicks)
	}
}

func TestEndToEndScenario(t *testing.T) {
	cfg := testConfig(t, 2, 10)
	reg := elev.NewRegistry(cfg)
	placeCar(t, reg, 1, 10)
	d := New(reg, cfg.System, nil)

	req := types.NewRequest(5, 8, 1)
	snaps := reg.Snapshots()
	if c := Cost(snaps[0], req); c != 4 {
		t.Fatalf("cost(car@1) = %v, want 4", c)
	}
	if c := Cost(snaps[1], req); c != 5 {
		t.Fatalf("cost(car@10) = %v, want 5", c)
	}

	assignment, err := d.Enqueue(req)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if assignment.ElevatorID != 0 || assignment.Cost != 4 {
		t.Fatalf("unexpected assignment %+v", assignment)
	}
	if snap := snapshot(t, reg, 0); snap.TargetFloor == nil || *snap.TargetFloor != 5 {
		t.Fatalf("car 0 target = %v, want 5", snap.TargetFloor)
	}
	if snap := snapshot(t, reg, 1); snap.TargetFloor != nil {
		t.Fatalf("car 1 was given a target")
	}

	tickUntil(t, reg, 1000, func() bool {
		return snapshot(t, reg, 0).DoorState == types.DoorOpening
	})
	snap := snapshot(t, reg, 0)
	if math.Abs(snap.CurrentFloor-5) >= config.ArrivalThreshold {
		t.Errorf("car 0 docked at %v, want 5", snap.CurrentFloor)
	}
	if snap.TargetFloor != nil || snap.Direction != types.DirIdle || snap.Speed != 0 {
		t.Errorf("car 0 not docked: %+v", snap.Motion)
	}
	if len(d.Pending()) != 0 || len(d.History()) != 1 {
		t.Errorf("pending %d history %d", len(d.Pending()), len(d.History()))
	}
}

func TestEnqueueRejectsInvalidRequests(t *testing.T) {
	cfg := testConfig(t, 1, 10)
	d := New(elev.NewRegistry(cfg), cfg.System, nil)

	tests := []struct {
		name string
		req  types.Request
		want error
	}{
		{"from below floor 1", types.NewRequest(0, 5, 1), types.ErrInvalidFloor},
		{"to above top floor", types.NewRequest(3, 11, 1), types.ErrInvalidFloor},
		{"same floor", types.NewRequest(4, 4, 1), types.ErrInvalidFloor},
		{"no passengers", types.NewRequest(2, 5, 0), types.ErrInvalidPassengerCount},
		{"over capacity", types.NewRequest(2, 5, cfg.System.Capacity()+1), types.ErrInvalidPassengerCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Enqueue(tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if len(d.Pending()) != 0 || len(d.History()) != 0 {
		t.Errorf("invalid requests leaked into the queue: pending %d history %d", len(d.Pending()), len(d.History()))
	}
}

func TestBusyCheapestCarDefersRequest(t *testing.T) {
	cfg := testConfig(t, 2, 10)
	reg := elev.NewRegistry(cfg)
	placeCar(t, reg, 1, 10)
	d := New(reg, cfg.System, nil)

	if _, err := d.Enqueue(types.NewRequest(3, 6, 1)); err != nil {
		t.Fatal(err)
	}
	// Car 0 is heading up to 3; a pickup at 2 is still closer for it than for car 1 at floor 10.
	_, err := d.Enqueue(types.NewRequest(2, 1, 1))
	if !errors.Is(err, types.ErrNoAvailableCar) {
		t.Fatalf("expected ErrNoAvailableCar, got %v", err)
	}
	if snap := snapshot(t, reg, 0); *snap.TargetFloor != 3 || len(snap.Passengers) != 1 {
		t.Errorf("busy car was double assigned: %+v", snap)
	}
	if snap := snapshot(t, reg, 1); snap.TargetFloor != nil {
		t.Errorf("request leaked to the more expensive car")
	}
	if len(d.Pending()) != 1 || len(d.History()) != 2 {
		t.Fatalf("pending %d history %d", len(d.Pending()), len(d.History()))
	}

	if n := d.Retry(); n != 0 {
		t.Fatalf("Retry assigned %d while the car is busy", n)
	}

	tickUntil(t, reg, 2000, func() bool {
		snap := snapshot(t, reg, 0)
		return snap.Available()
	})
	if n := d.Retry(); n != 1 {
		t.Fatalf("Retry assigned %d, want 1", n)
	}
	if snap := snapshot(t, reg, 0); snap.TargetFloor == nil || *snap.TargetFloor != 2 {
		t.Errorf("car 0 target = %v, want 2", snap.TargetFloor)
	}
	if len(d.Pending()) != 0 {
		t.Errorf("pending not drained")
	}
}

func TestRetryKeepsFIFOOrder(t *testing.T) {
	cfg := testConfig(t, 1, 10)
	reg := elev.NewRegistry(cfg)
	d := New(reg, cfg.System, nil)

	if _, err := d.Enqueue(types.NewRequest(9, 10, 1)); err != nil {
		t.Fatal(err)
	}
	first := types.NewRequest(4, 2, 1)
	second := types.NewRequest(7, 1, 1)
	for _, req := range []types.Request{first, second} {
		if _, err := d.Enqueue(req); !errors.Is(err, types.ErrNoAvailableCar) {
			t.Fatalf("expected deferral, got %v", err)
		}
	}
	d.Retry()
	pending := d.Pending()
	if len(pending) != 2 || pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("pending order changed: %v", pending)
	}
}

func TestConcurrentEnqueueNeverDoubleAssigns(t *testing.T) {
	cfg := testConfig(t, 3, 20)
	reg := elev.NewRegistry(cfg)
	d := New(reg, cfg.System, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := make(chan struct{})
	go func() {
		defer close(ticks)
		for ctx.Err() == nil {
			_ = reg.AdvanceAll(testDt)
			for _, snap := range reg.Snapshots() {
				if len(snap.Passengers) > 1 {
					t.Errorf("car %d holds %d assignments", snap.ID, len(snap.Passengers))
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for worker := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 30 {
				from := 1 + (worker*7+i)%20
				to := 1 + (from+5)%20
				_, err := d.Enqueue(types.NewRequest(from, to, 1))
				if err != nil && !errors.Is(err, types.ErrNoAvailableCar) {
					t.Errorf("Enqueue: %v", err)
				}
				d.Retry()
			}
		}()
	}
	wg.Wait()
	cancel()
	<-ticks

	if got := len(d.History()); got != 6*30 {
		t.Errorf("history has %d requests, want %d", got, 6*30)
	}
}

func TestRunAssignsFromIngress(t *testing.T) {
	cfg := testConfig(t, 2, 10)
	reg := elev.NewRegistry(cfg)
	d := New(reg, cfg.System, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ingress := make(chan types.Request, 4)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, ingress, cfg.RetryInterval) }()

	ingress <- types.NewRequest(6, 2, 1)
	ingress <- types.Request{FromFloor: 3, ToFloor: 3, PassengerCount: 1}

	deadline := time.After(2 * time.Second)
	for {
		snap := snapshot(t, reg, 0)
		if snap.TargetFloor != nil && *snap.TargetFloor == 6 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("car 0 never got target 6: %+v", snap.Motion)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	if len(d.History()) != 1 {
		t.Errorf("invalid request was logged")
	}
}
