// Package worker delivers notification messages: the daily reminder to
// the user's own address and the monthly report to the supervisor.
package worker

import (
	"context"
	"fmt"
	"time"

	"nadgodziny/internal/amqp"
	"nadgodziny/internal/log"
	"nadgodziny/internal/mailer"
	"nadgodziny/internal/report"
	"nadgodziny/internal/store"
)

// Fixed reminder text, matching the app's daily notification.
const (
	reminderSubject = "Nadgodziny"
	reminderBody    = "Czy pracowałeś dzisiaj po godzinach? Dodaj swoje nadgodziny!"
)

// Worker handles notification envelopes from the queue. It re-reads
// the persisted blobs per message so a long-running worker always sees
// the entries the main service wrote after the worker started.
type Worker struct {
	blobs  store.Blobs
	mail   mailer.Mailer
	logger *log.Logger
}

func New(blobs store.Blobs, mail mailer.Mailer, logger *log.Logger) *Worker {
	return &Worker{
		blobs:  blobs,
		mail:   mail,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage dispatches one envelope. Unknown kinds are dropped.
func (w *Worker) HandleMessage(ctx context.Context, env *amqp.Envelope) error {
	switch env.Kind {
	case amqp.KindReminderDue:
		msg, err := env.ReminderDue()
		if err != nil {
			return err
		}
		return w.handleReminder(ctx, msg)
	case amqp.KindReportRequested:
		msg, err := env.ReportRequested()
		if err != nil {
			return err
		}
		return w.handleReport(ctx, msg)
	default:
		w.logger.WarnContext(ctx, "Dropping message of unknown kind", "kind", env.Kind)
		return nil
	}
}

func (w *Worker) handleReminder(ctx context.Context, msg *amqp.ReminderDueMessage) error {
	records := store.Open(ctx, w.blobs, w.logger)
	profile := records.Profile()
	if profile == nil {
		// The reminder outlived onboarding state; nothing to do.
		w.logger.WarnContext(ctx, "Reminder fired without an active profile, dropping",
			log.FieldReminder, msg.At)
		return nil
	}

	if w.mail == nil {
		w.logger.WarnContext(ctx, "No mailer configured, skipping reminder",
			log.FieldReminder, msg.At)
		return nil
	}

	err := w.mail.Send(ctx, mailer.Message{
		To:      profile.Email,
		Subject: reminderSubject,
		Body:    reminderBody,
	})
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	w.logger.InfoContext(ctx, "Reminder delivered",
		log.FieldRecipient, profile.Email,
		log.FieldReminder, msg.At)
	return nil
}

func (w *Worker) handleReport(ctx context.Context, msg *amqp.ReportRequestedMessage) error {
	records := store.Open(ctx, w.blobs, w.logger)
	profile := records.Profile()
	if profile == nil {
		w.logger.WarnContext(ctx, "Report requested without an active profile, dropping",
			log.FieldYear, msg.Year, log.FieldMonth, msg.Month)
		return nil
	}

	if w.mail == nil {
		// Requeueing would spin forever on an installation without
		// mail; the request is dropped and logged instead.
		w.logger.WarnContext(ctx, "No mailer configured, dropping report request",
			log.FieldYear, msg.Year, log.FieldMonth, msg.Month)
		return nil
	}

	r := report.Monthly(*profile, records.Entries(), msg.Year, time.Month(msg.Month))
	err := w.mail.Send(ctx, mailer.Message{
		To:      r.Recipient,
		Subject: r.Subject,
		Body:    r.Body,
	})
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	w.logger.InfoContext(ctx, "Report delivered",
		log.FieldRecipient, r.Recipient,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month,
		log.FieldHours, r.TotalHours,
		"entries", r.Entries)
	return nil
}
