package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/joho/godotenv"
)

type fileConfig struct {
	NumElevators     int     `yaml:"num_elevators"`
	NumFloors        int     `yaml:"num_floors"`
	AccelerationRate float64 `yaml:"acceleration_rate"`
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxLoad          float64 `yaml:"max_load"`
	TickIntervalMs   int     `yaml:"tick_interval_ms"`
	DoorDwellMs      int     `yaml:"door_dwell_ms"`
	RetryIntervalMs  int     `yaml:"retry_interval_ms"`
}

// Load reads a YAML config file. Fields left out of the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %s: %w", path, err)
	}
	defer file.Close()

	var fc fileConfig
	if err := yaml.NewDecoder(file).Decode(&fc); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	fc.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) {
	if fc.NumElevators != 0 {
		cfg.System.NumElevators = fc.NumElevators
	}
	if fc.NumFloors != 0 {
		cfg.System.NumFloors = fc.NumFloors
	}
	if fc.AccelerationRate != 0 {
		cfg.System.AccelerationRate = fc.AccelerationRate
	}
	if fc.MaxSpeed != 0 {
		cfg.System.MaxSpeed = fc.MaxSpeed
	}
	if fc.MaxLoad != 0 {
		cfg.System.MaxLoad = fc.MaxLoad
	}
	if fc.TickIntervalMs != 0 {
		cfg.TickInterval = time.Duration(fc.TickIntervalMs) * time.Millisecond
	}
	if fc.DoorDwellMs != 0 {
		cfg.DoorDwell = time.Duration(fc.DoorDwellMs) * time.Millisecond
	}
	if fc.RetryIntervalMs != 0 {
		cfg.RetryInterval = time.Duration(fc.RetryIntervalMs) * time.Millisecond
	}
}

// ApplyEnv overrides building parameters from an env file. A missing file leaves cfg as is.
func ApplyEnv(cfg Config, path string) (Config, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read env %s: %w", path, err)
	}

	ints := map[string]*int{
		"LIFT_NUM_ELEVATORS": &cfg.System.NumElevators,
		"LIFT_NUM_FLOORS":    &cfg.System.NumFloors,
	}
	for key, field := range ints {
		if v, ok := env[key]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("env %s=%q: %w", key, v, err)
			}
			*field = n
		}
	}

	floats := map[string]*float64{
		"LIFT_ACCELERATION_RATE": &cfg.System.AccelerationRate,
		"LIFT_MAX_SPEED":         &cfg.System.MaxSpeed,
		"LIFT_MAX_LOAD":          &cfg.System.MaxLoad,
	}
	for key, field := range floats {
		if v, ok := env[key]; ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, fmt.Errorf("env %s=%q: %w", key, v, err)
			}
			*field = f
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
