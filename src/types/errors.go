package types

import "errors"

var (
	ErrInvalidFloor          = errors.New("invalid floor")
	ErrInvalidPassengerCount = errors.New("invalid passenger count")
	ErrInvalidDeltaTime      = errors.New("delta time must be positive")
	ErrInvalidConfig         = errors.New("invalid system config")

	// ErrNoAvailableCar is not fatal. The request stays pending and is retried.
	ErrNoAvailableCar = errors.New("no available car")

	ErrCarFaulted = errors.New("car is quarantined")
	ErrUnknownCar = errors.New("unknown car")
)
