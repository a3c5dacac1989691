package resource

import "hospital-ops/internal/common/config"

// Thresholds tune the inventory merge. The defaults match the dashboard's
// long-standing display rules.
type Thresholds struct {
	// UrgentAvailable is the supply level at or below which a row is Urgent.
	UrgentAvailable int
	// CapacityFloor is the minimum capacity of a row created from supply.
	CapacityFloor     int
	HalfCapacityRatio float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{UrgentAvailable: 3, CapacityFloor: 10, HalfCapacityRatio: 0.5}
}

type Config struct {
	Key        string
	Thresholds Thresholds
}

func NewConfig(cfg *config.Config) Config {
	c := Config{
		Key: cfg.Storage.ResourcesKey,
		Thresholds: Thresholds{
			UrgentAvailable:   cfg.Resources.UrgentAvailable,
			CapacityFloor:     cfg.Resources.CapacityFloor,
			HalfCapacityRatio: cfg.Resources.HalfCapacityRatio,
		},
	}
	return c.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Key == "" {
		c.Key = "hospital_resources"
	}
	d := DefaultThresholds()
	if c.Thresholds.UrgentAvailable <= 0 {
		c.Thresholds.UrgentAvailable = d.UrgentAvailable
	}
	if c.Thresholds.CapacityFloor <= 0 {
		c.Thresholds.CapacityFloor = d.CapacityFloor
	}
	if c.Thresholds.HalfCapacityRatio <= 0 || c.Thresholds.HalfCapacityRatio > 1 {
		c.Thresholds.HalfCapacityRatio = d.HalfCapacityRatio
	}
	return c
}
