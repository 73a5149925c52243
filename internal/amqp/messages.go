package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the notifications queue.
const (
	KindReminderDue     = "reminder_due"
	KindReportRequested = "report_requested"
)

// Envelope wraps every message with its kind so one queue can carry
// both reminder and report traffic.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ReminderDueMessage tells the worker the daily reminder fired.
// The worker looks up the current profile itself; the message carries
// only the configured time of day for logging.
type ReminderDueMessage struct {
	At string `json:"at"`
}

// ReportRequestedMessage asks the worker to build and email the
// monthly report for the given year and month.
type ReportRequestedMessage struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func newEnvelope(kind string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &Envelope{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   body,
	}, nil
}

// ToJSON converts the envelope to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON creates an envelope from JSON bytes
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ReminderDue unpacks the payload of a reminder_due envelope.
func (e *Envelope) ReminderDue() (*ReminderDueMessage, error) {
	if e.Kind != KindReminderDue {
		return nil, fmt.Errorf("envelope kind is %q, not %q", e.Kind, KindReminderDue)
	}
	var msg ReminderDueMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportRequested unpacks the payload of a report_requested envelope.
func (e *Envelope) ReportRequested() (*ReportRequestedMessage, error) {
	if e.Kind != KindReportRequested {
		return nil, fmt.Errorf("envelope kind is %q, not %q", e.Kind, KindReportRequested)
	}
	var msg ReportRequestedMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
