package email

import (
	"context"
	"errors"
)

// Sender delivers initial account credentials to new teacher accounts.
type Sender interface {
	SendInitialPassword(ctx context.Context, toEmail string, password string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendInitialPassword(_ context.Context, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
