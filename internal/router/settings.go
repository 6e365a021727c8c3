package router

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidSettings = errors.New("invalid routing settings")
	ErrStoreNotFrozen  = errors.New("catalogue must be frozen before building the itinerary graph")
)

// Settings are the routing parameters applied to every bus.
type Settings struct {
	// BusWaitTime is the time in minutes spent at a stop before boarding.
	BusWaitTime float64 `json:"bus_wait_time" yaml:"bus_wait_time"`
	// BusVelocity is the travel speed in km/h.
	BusVelocity float64 `json:"bus_velocity" yaml:"bus_velocity"`
}

// DefaultSettings matches the values commonly used by the network documents.
func DefaultSettings() Settings {
	return Settings{BusWaitTime: 6, BusVelocity: 40}
}

func (s Settings) Validate() error {
	if !isFinite(s.BusWaitTime) {
		return fmt.Errorf("%w: bus_wait_time must be finite, got %v", ErrInvalidSettings, s.BusWaitTime)
	}
	if !isFinite(s.BusVelocity) {
		return fmt.Errorf("%w: bus_velocity must be finite, got %v", ErrInvalidSettings, s.BusVelocity)
	}
	if s.BusWaitTime < 0 {
		return fmt.Errorf("%w: bus_wait_time must be non-negative, got %v", ErrInvalidSettings, s.BusWaitTime)
	}
	if s.BusVelocity <= 0 {
		return fmt.Errorf("%w: bus_velocity must be positive, got %v", ErrInvalidSettings, s.BusVelocity)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// metersPerMinute converts BusVelocity into the unit ride edges are weighted in.
func (s Settings) metersPerMinute() float64 {
	return s.BusVelocity * 1000 / 60
}
