package idledetector

import (
	"errors"
	"fmt"
	"time"

	"github.com/travigo/idletracker/pkg/util"
)

// Config holds the idle detection parameters. Horizon and EvictionThreshold are counted in ticks.
type Config struct {
	// H: offset between the A and B reference snapshots
	Horizon int
	// M: consecutive misses in the newest snapshot before a candidate is dropped
	EvictionThreshold int
	// R: delay between ticks
	PollInterval time.Duration
	// Stop after this many ticks, 0 runs until cancelled
	MaxTicks int
	// Upper bound on a single snapshot fetch
	FetchTimeout time.Duration
}

var defaultConfig = Config{
	Horizon:           1,
	EvictionThreshold: 10,
	PollInterval:      30 * time.Second,
	MaxTicks:          0,
	FetchTimeout:      20 * time.Second,
}

// GetConfig returns the idle detection configuration from environment variables or defaults
func GetConfig() (Config, error) {
	return configFromEnvironment(util.GetEnvironmentVariables())
}

func configFromEnvironment(env map[string]string) (Config, error) {
	config := defaultConfig

	var err error
	if config.Horizon, err = util.GetEnvironmentInt(env, "TRAVIGO_IDLE_HORIZON", config.Horizon); err != nil {
		return config, err
	}
	if config.EvictionThreshold, err = util.GetEnvironmentInt(env, "TRAVIGO_IDLE_EVICTION_THRESHOLD", config.EvictionThreshold); err != nil {
		return config, err
	}
	if config.PollInterval, err = util.GetEnvironmentDuration(env, "TRAVIGO_IDLE_POLL_INTERVAL", config.PollInterval); err != nil {
		return config, err
	}
	if config.MaxTicks, err = util.GetEnvironmentInt(env, "TRAVIGO_IDLE_MAX_TICKS", config.MaxTicks); err != nil {
		return config, err
	}
	if config.FetchTimeout, err = util.GetEnvironmentDuration(env, "TRAVIGO_IDLE_FETCH_TIMEOUT", config.FetchTimeout); err != nil {
		return config, err
	}

	return config, config.Validate()
}

func (c Config) Validate() error {
	var errs []error

	if c.Horizon < 1 {
		errs = append(errs, fmt.Errorf("horizon must be positive, got %d", c.Horizon))
	}
	if c.EvictionThreshold < 1 {
		errs = append(errs, fmt.Errorf("eviction threshold must be positive, got %d", c.EvictionThreshold))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("max ticks cannot be negative, got %d", c.MaxTicks))
	}
	if c.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("fetch timeout cannot be negative, got %s", c.FetchTimeout))
	}

	return errors.Join(errs...)
}

// TickSeconds is the nominal spacing of two snapshots in whole seconds.
// Sub-second intervals only happen in tests and count as one second.
func (c Config) TickSeconds() int64 {
	seconds := int64(c.PollInterval / time.Second)
	if seconds < 1 {
		return 1
	}

	return seconds
}

// HorizonSeconds is the nominal time between the A and B snapshots. A larger
// observed gap means polls were missed and is compensated with a lag correction.
func (c Config) HorizonSeconds() int64 {
	return int64(c.Horizon) * c.TickSeconds()
}
