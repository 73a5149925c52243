package amqp

import (
	"testing"
)

func TestEnvelope_ReminderDueRoundTrip(t *testing.T) {
	env, err := newEnvelope(KindReminderDue, ReminderDueMessage{At: "17:30"})
	if err != nil {
		t.Fatalf("newEnvelope: %v", err)
	}

	data, err := env.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	parsed, err := EnvelopeFromJSON(data)
	if err != nil {
		t.Fatalf("EnvelopeFromJSON: %v", err)
	}
	if parsed.Kind != KindReminderDue {
		t.Errorf("Kind = %q, want %q", parsed.Kind, KindReminderDue)
	}

	msg, err := parsed.ReminderDue()
	if err != nil {
		t.Fatalf("ReminderDue: %v", err)
	}
	if msg.At != "17:30" {
		t.Errorf("At = %q, want 17:30", msg.At)
	}
}

func TestEnvelope_ReportRequestedRoundTrip(t *testing.T) {
	env, err := newEnvelope(KindReportRequested, ReportRequestedMessage{Year: 2024, Month: 3})
	if err != nil {
		t.Fatalf("newEnvelope: %v", err)
	}

	data, err := env.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	parsed, err := EnvelopeFromJSON(data)
	if err != nil {
		t.Fatalf("EnvelopeFromJSON: %v", err)
	}
	msg, err := parsed.ReportRequested()
	if err != nil {
		t.Fatalf("ReportRequested: %v", err)
	}
	if msg.Year != 2024 || msg.Month != 3 {
		t.Errorf("payload = %+v, want year 2024 month 3", msg)
	}
}

func TestEnvelope_KindMismatch(t *testing.T) {
	env, err := newEnvelope(KindReminderDue, ReminderDueMessage{At: "08:00"})
	if err != nil {
		t.Fatalf("newEnvelope: %v", err)
	}

	if _, err := env.ReportRequested(); err == nil {
		t.Error("ReportRequested() accepted a reminder_due envelope")
	}
}

func TestEnvelopeFromJSON_Malformed(t *testing.T) {
	if _, err := EnvelopeFromJSON([]byte("{broken")); err == nil {
		t.Error("EnvelopeFromJSON accepted malformed JSON")
	}
}
