package sync

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloudsync/core/schema"
)

// DefaultIntervals are the overrides used when Config.Intervals is empty.
const DefaultIntervals = "Image=1000,Flavor=500"

// Config holds the sync job settings.
type Config struct {
	// BatchSize is the number of documents inserted per round trip.
	BatchSize int `mapstructure:"batch_size" default:"100"`
	// DefaultIntervalSeconds applies to resource types without an override.
	DefaultIntervalSeconds int `mapstructure:"default_interval_seconds" default:"600"`
	// Intervals overrides per resource type, as "Image=1000,Flavor=500".
	// Empty selects DefaultIntervals.
	Intervals string `mapstructure:"intervals" default:"Image=1000,Flavor=500"`
	// StackIntervalSeconds is the interval of the stack job.
	StackIntervalSeconds int `mapstructure:"stack_interval_seconds" default:"1000"`
	// Stacks enables the stack job for OpenStack clouds.
	Stacks bool `mapstructure:"stacks" default:"true"`
	// Resources restricts the scheduled types, comma separated. Empty means all.
	Resources string `mapstructure:"resources" default:""`
	// RunOnStart runs every job once at startup.
	RunOnStart bool `mapstructure:"run_on_start" default:"false"`
	// TimeoutSeconds bounds one sync cycle.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"900"`
}

// Timeout returns the cycle timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IntervalTable parses the interval overrides on top of the default.
func (c Config) IntervalTable() (map[schema.ResourceType]time.Duration, error) {
	def := time.Duration(c.DefaultIntervalSeconds) * time.Second
	if def <= 0 {
		def = 600 * time.Second
	}
	table := make(map[schema.ResourceType]time.Duration, len(schema.AllResourceTypes()))
	for _, rt := range schema.AllResourceTypes() {
		table[rt] = def
	}

	overrides := c.Intervals
	if strings.TrimSpace(overrides) == "" {
		overrides = DefaultIntervals
	}
	for _, pair := range splitList(overrides) {
		name, secs, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid interval %q, want Type=seconds", pair)
		}
		rt, err := schema.ParseResourceType(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(secs))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid interval for %s: %q", rt, secs)
		}
		table[rt] = time.Duration(n) * time.Second
	}
	return table, nil
}

// StackInterval returns the interval of the stack job.
func (c Config) StackInterval() time.Duration {
	if c.StackIntervalSeconds <= 0 {
		return 1000 * time.Second
	}
	return time.Duration(c.StackIntervalSeconds) * time.Second
}

// EnabledTypes returns the resource types to schedule.
func (c Config) EnabledTypes() ([]schema.ResourceType, error) {
	names := splitList(c.Resources)
	if len(names) == 0 {
		return schema.AllResourceTypes(), nil
	}
	out := make([]schema.ResourceType, 0, len(names))
	for _, n := range names {
		rt, err := schema.ParseResourceType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
