// Package mailer sends outbound mail: the monthly report to the
// supervisor and the daily reminder to the user's own address.
package mailer

import (
	"context"
	"errors"
)

// ErrMailUnavailable means no mail capability is configured on this
// installation. Callers surface it to the user instead of crashing.
var ErrMailUnavailable = errors.New("mail capability unavailable")

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
