// Package profile owns the active user profile and keeps the daily
// reminder in step with it.
package profile

import (
	"context"

	"nadgodziny/internal/core"
	"nadgodziny/internal/log"
	"nadgodziny/internal/store"
)

// ReminderScheduler is the slice of the notification side the
// coordinator drives: cancel whatever is pending, then arm one
// recurring daily trigger at the given time of day.
type ReminderScheduler interface {
	Reschedule(ctx context.Context, at core.ClockTime) error
}

// Coordinator mediates profile reads and writes. Profile existence
// gates the rest of the application: until SetActiveProfile succeeds
// once, only onboarding is available. There is no reverse transition.
type Coordinator struct {
	store     *store.RecordStore
	scheduler ReminderScheduler
	logger    *log.Logger
}

func NewCoordinator(s *store.RecordStore, scheduler ReminderScheduler, logger *log.Logger) *Coordinator {
	return &Coordinator{
		store:     s,
		scheduler: scheduler,
		logger:    logger.WithComponent(log.ComponentProfile),
	}
}

// ActiveProfile returns the current profile, or nil before onboarding.
func (c *Coordinator) ActiveProfile() *core.User {
	return c.store.Profile()
}

// Onboarded reports whether a profile exists.
func (c *Coordinator) Onboarded() bool {
	return c.store.Profile() != nil
}

// SetActiveProfile persists the profile and replaces the pending
// reminder with one matching its notification time. A scheduling
// failure is the local analog of a denied notification permission:
// it is skipped without retry and the profile stays saved.
func (c *Coordinator) SetActiveProfile(ctx context.Context, u core.User) {
	c.store.SaveProfile(ctx, u)

	if c.scheduler == nil {
		return
	}
	if err := c.scheduler.Reschedule(ctx, u.NotificationTime); err != nil {
		c.logger.WarnContext(ctx, "Reminder scheduling unavailable, skipping",
			log.FieldReminder, u.NotificationTime.String(),
			log.FieldError, err)
		return
	}

	c.logger.InfoContext(ctx, "Daily reminder scheduled",
		log.FieldUserID, u.ID.String(),
		log.FieldReminder, u.NotificationTime.String(),
		log.FieldOperation, log.OpSchedule)
}
