// Package notify arms the recurring daily reminder. At most one
// trigger is ever pending: rescheduling cancels the previous one
// before arming the next.
package notify

import (
	"context"
	"sync"
	"time"

	"nadgodziny/internal/core"
	"nadgodziny/internal/log"
)

// Publisher delivers a fired reminder to whoever notifies the user.
type Publisher interface {
	PublishReminderDue(ctx context.Context, at core.ClockTime) error
}

// Scheduler owns the single pending reminder timer.
type Scheduler struct {
	mu     sync.Mutex
	pub    Publisher
	logger *log.Logger
	now    func() time.Time
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(pub Publisher, logger *log.Logger) *Scheduler {
	return &Scheduler{
		pub:    pub,
		logger: logger.WithComponent(log.ComponentScheduler),
		now:    time.Now,
	}
}

// NextOccurrence returns the first time strictly after now whose local
// clock reads at.
func NextOccurrence(now time.Time, at core.ClockTime) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Reschedule cancels the pending trigger, if any, and arms a daily
// trigger at the given time of day.
func (s *Scheduler) Reschedule(ctx context.Context, at core.ClockTime) error {
	if err := at.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx, at)

	s.logger.InfoContext(ctx, "Reminder trigger armed",
		log.FieldReminder, at.String(),
		"next_fire", NextOccurrence(s.now(), at).Format(time.RFC3339))
	return nil
}

// Stop cancels the pending trigger and waits for the timer goroutine.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, at core.ClockTime) {
	defer s.wg.Done()

	for {
		wait := NextOccurrence(s.now(), at).Sub(s.now())
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.pub.PublishReminderDue(ctx, at); err != nil {
			// A missed reminder is not worth retrying; the next
			// day's trigger still fires.
			s.logger.ErrorContext(ctx, "Cannot publish reminder",
				log.FieldReminder, at.String(),
				log.FieldError, err)
		} else {
			s.logger.InfoContext(ctx, "Reminder fired",
				log.FieldReminder, at.String(),
				log.FieldOperation, log.OpPublish)
		}
	}
}
