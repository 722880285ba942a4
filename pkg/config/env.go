// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ApplyEnv.
const (
	EnvWorldWidth    = "QUADSIM_WORLD_WIDTH"
	EnvWorldHeight   = "QUADSIM_WORLD_HEIGHT"
	EnvIndexCapacity = "QUADSIM_INDEX_CAPACITY"
	EnvIndexMaxDepth = "QUADSIM_INDEX_MAX_DEPTH"
	EnvStrategy      = "QUADSIM_STRATEGY"
	EnvMarginFactor  = "QUADSIM_MARGIN_FACTOR"
	EnvSeedCount     = "QUADSIM_SEED_COUNT"
	EnvRandomSeed    = "QUADSIM_RANDOM_SEED"
	EnvTargetFPS     = "QUADSIM_TARGET_FPS"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ApplyEnv overrides fields of config from QUADSIM_* environment
// variables. Unset variables leave fields alone; malformed ones are errors.
func ApplyEnv(config *SimConfig) error {
	if err := envFloat(EnvWorldWidth, &config.World.Width); err != nil {
		return err
	}
	if err := envFloat(EnvWorldHeight, &config.World.Height); err != nil {
		return err
	}
	if err := envInt(EnvIndexCapacity, &config.Index.Capacity); err != nil {
		return err
	}
	if err := envInt(EnvIndexMaxDepth, &config.Index.MaxDepth); err != nil {
		return err
	}
	config.Detection.Strategy = GetEnv(EnvStrategy, config.Detection.Strategy)
	if err := envFloat(EnvMarginFactor, &config.Detection.MarginFactor); err != nil {
		return err
	}
	if err := envInt(EnvSeedCount, &config.Seed.Count); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvRandomSeed); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRandomSeed, err)
		}
		config.Seed.RandomSeed = seed
	}
	return envInt(EnvTargetFPS, &config.Frame.TargetFPS)
}

// LoadConfigFromEnv returns DefaultConfig with environment overrides applied.
func LoadConfigFromEnv() (*SimConfig, error) {
	config := DefaultConfig()
	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
