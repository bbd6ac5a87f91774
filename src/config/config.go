package config

import (
	"fmt"
	"math"
	"time"

	"smartlift/src/types"
)

const (
	DefaultNumElevators     = 4
	DefaultNumFloors        = 32
	DefaultAccelerationRate = 2.5   // floors/s²
	DefaultMaxSpeed         = 2.0   // floors/s
	DefaultMaxLoad          = 800.0 // kg

	TickInterval     = 100 * time.Millisecond
	DoorDwell        = 3 * time.Second
	RetryInterval    = 500 * time.Millisecond
	StatusInterval   = 1 * time.Second
	ArrivalThreshold = 0.01 // floors
	PassengerWeight  = 75.0 // kg
	IngressBuffer    = 100
)

// SystemConfig holds the building parameters. It is passed by value and never changed after New.
type SystemConfig struct {
	NumElevators     int
	NumFloors        int
	AccelerationRate float64
	MaxSpeed         float64
	MaxLoad          float64
}

// Config is a SystemConfig plus the runtime timing of the process.
type Config struct {
	System        SystemConfig
	TickInterval  time.Duration
	DoorDwell     time.Duration
	RetryInterval time.Duration
}

func New(numElevators, numFloors int, accelerationRate, maxSpeed, maxLoad float64) (SystemConfig, error) {
	cfg := SystemConfig{
		NumElevators:     numElevators,
		NumFloors:        numFloors,
		AccelerationRate: accelerationRate,
		MaxSpeed:         maxSpeed,
		MaxLoad:          maxLoad,
	}
	if err := cfg.Validate(); err != nil {
		return SystemConfig{}, err
	}
	return cfg, nil
}

func Default() Config {
	return Config{
		System: SystemConfig{
			NumElevators:     DefaultNumElevators,
			NumFloors:        DefaultNumFloors,
			AccelerationRate: DefaultAccelerationRate,
			MaxSpeed:         DefaultMaxSpeed,
			MaxLoad:          DefaultMaxLoad,
		},
		TickInterval:  TickInterval,
		DoorDwell:     DoorDwell,
		RetryInterval: RetryInterval,
	}
}

func (c SystemConfig) Validate() error {
	switch {
	case c.NumElevators <= 0:
		return fmt.Errorf("%w: num_elevators %d", types.ErrInvalidConfig, c.NumElevators)
	case c.NumFloors < 2:
		return fmt.Errorf("%w: num_floors %d, need at least 2", types.ErrInvalidConfig, c.NumFloors)
	case !positive(c.AccelerationRate):
		return fmt.Errorf("%w: acceleration_rate %v", types.ErrInvalidConfig, c.AccelerationRate)
	case !positive(c.MaxSpeed):
		return fmt.Errorf("%w: max_speed %v", types.ErrInvalidConfig, c.MaxSpeed)
	case !positive(c.MaxLoad):
		return fmt.Errorf("%w: max_load %v", types.ErrInvalidConfig, c.MaxLoad)
	}
	return nil
}

// Capacity is the number of passengers a car can carry.
func (c SystemConfig) Capacity() int {
	return max(1, int(c.MaxLoad/PassengerWeight))
}

func (c Config) Validate() error {
	if err := c.System.Validate(); err != nil {
		return err
	}
	if c.TickInterval <= 0 || c.DoorDwell <= 0 || c.RetryInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", types.ErrInvalidConfig)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
