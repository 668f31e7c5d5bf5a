// Package email delivers plain text and HTML messages through SendGrid, AWS SES
// or a log-only sender.
package email

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a sender without credentials
var ErrNotConfigured = errors.New("email: sender not configured")

// ErrSendFailed wraps provider errors and non-2xx responses
var ErrSendFailed = errors.New("email: send failed")

// Sender sends a single message. Implementations are safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one email to one recipient
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Logger is the printf-style logger used by the senders
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// From is the sender identity shared by every provider
type From struct {
	Email string
	Name  string
}
