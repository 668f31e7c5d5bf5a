package email

import "context"

// LogSender only logs messages, used when no provider is configured
type LogSender struct {
	logger Logger
}

func NewLogSender(logger Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the email but doesn't actually send it
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email (log only) to %s: %s", msg.To, msg.Subject)
	return nil
}

var _ Sender = (*LogSender)(nil)
