package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a cron expression with the same parser the
// scheduler uses, so anything accepted here is guaranteed to be schedulable.
// Standard five-field specs and descriptors like "@every 5m" are accepted.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}
