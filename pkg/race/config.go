package race

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/driver"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/steering"
)

//go:embed config.schema.json
var configSchema []byte

const schemaURL = "config.schema.json"

// DriverConfig is the tuning shared by every AI driver.
type DriverConfig struct {
	Rays              int               `json:"rays"`
	Cone              bool              `json:"cone"` // legacy 7-ray forward cone
	RayLength         float64           `json:"rayLength"`
	MaxSpeed          float64           `json:"maxSpeed"`
	SteerGain         float64           `json:"steerGain"`
	WaypointThreshold float64           `json:"waypointThreshold"`
	UrgentSpeed       float64           `json:"urgentSpeed"`
	FallbackHeading   geometry.Vector2D `json:"fallbackHeading"`
	BrakeMode         string            `json:"brakeMode"`
	BrakeFactor       float64           `json:"brakeFactor"`
	BrakeThreshold    float64           `json:"brakeThreshold"`
}

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Race
	NumCars   int     `json:"numCars"`
	TotalLaps int     `json:"totalLaps"`
	TickRate  int     `json:"tickRate"` // ticks per second
	CarRadius float64 `json:"carRadius"`

	Driver DriverConfig `json:"driver"`

	// Diagnostics
	Debug    bool   `json:"debug"`
	LogLevel string `json:"logLevel"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:  1500,
		WorldHeight: 650,
		NumCars:     11,
		TotalLaps:   3,
		TickRate:    60,
		CarRadius:   11,
		Driver: DriverConfig{
			Rays:              steering.DefaultRays,
			RayLength:         150,
			MaxSpeed:          steering.DefaultMaxSpeed,
			SteerGain:         steering.DefaultSteerGain,
			WaypointThreshold: 50,
			UrgentSpeed:       0.5,
			FallbackHeading:   steering.DefaultFallbackHeading,
			BrakeMode:         steering.BrakeNever,
			BrakeFactor:       steering.DefaultBrakeFactor,
			BrakeThreshold:    1.0,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads a JSON file, validates it against the embedded schema and
// decodes it over DefaultConfig, so absent fields keep their default.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig is LoadConfig for an in-memory document.
func ParseConfig(b []byte) (*Config, error) {
	// 1. Compile Schema
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Validate
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 3. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects tuning the race loop cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %vx%v", c.WorldWidth, c.WorldHeight))
	}
	if c.NumCars < 0 || c.NumCars > len(gridSlots) {
		errs = append(errs, fmt.Errorf("numCars must be in [0,%d], got %d", len(gridSlots), c.NumCars))
	}
	if c.TotalLaps < 1 {
		errs = append(errs, fmt.Errorf("totalLaps must be at least 1, got %d", c.TotalLaps))
	}
	if c.TickRate < 1 {
		errs = append(errs, fmt.Errorf("tickRate must be at least 1, got %d", c.TickRate))
	}
	if c.CarRadius <= 0 {
		errs = append(errs, fmt.Errorf("carRadius must be positive, got %v", c.CarRadius))
	}
	d := c.Driver
	if d.Rays < 1 && !d.Cone {
		errs = append(errs, fmt.Errorf("driver.rays must be at least 1, got %d", d.Rays))
	}
	if d.RayLength <= 0 {
		errs = append(errs, fmt.Errorf("driver.rayLength must be positive, got %v", d.RayLength))
	}
	if d.MaxSpeed < 0 {
		errs = append(errs, fmt.Errorf("driver.maxSpeed must not be negative, got %v", d.MaxSpeed))
	}
	if d.SteerGain <= 0 || d.SteerGain > 1 {
		errs = append(errs, fmt.Errorf("driver.steerGain must be in (0,1], got %v", d.SteerGain))
	}
	if d.WaypointThreshold <= 0 {
		errs = append(errs, fmt.Errorf("driver.waypointThreshold must be positive, got %v", d.WaypointThreshold))
	}
	if d.BrakeFactor < 0 || d.BrakeFactor > 1 {
		errs = append(errs, fmt.Errorf("driver.brakeFactor must be in [0,1], got %v", d.BrakeFactor))
	}
	if _, err := steering.BrakeByName(d.BrakeMode, d.BrakeThreshold); err != nil {
		errs = append(errs, fmt.Errorf("driver.brakeMode: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TickDuration returns the fixed simulation step in seconds.
func (c *Config) TickDuration() float64 {
	return 1 / float64(c.TickRate)
}

// DriverSettings converts the driver section for driver.New.
func (c *Config) DriverSettings() (driver.Settings, error) {
	brake, err := steering.BrakeByName(c.Driver.BrakeMode, c.Driver.BrakeThreshold)
	if err != nil {
		return driver.Settings{}, err
	}
	return driver.Settings{
		Rays:              c.Driver.Rays,
		Cone:              c.Driver.Cone,
		RayLength:         c.Driver.RayLength,
		MaxSpeed:          c.Driver.MaxSpeed,
		SteerGain:         c.Driver.SteerGain,
		BrakeFactor:       c.Driver.BrakeFactor,
		UrgentSpeed:       c.Driver.UrgentSpeed,
		WaypointThreshold: c.Driver.WaypointThreshold,
		Fallback:          c.Driver.FallbackHeading,
		Brake:             brake,
	}, nil
}

// Level maps LogLevel to the goakt logger level, info when unknown.
func (c *Config) Level() log.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarningLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
