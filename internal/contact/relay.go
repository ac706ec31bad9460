package contact

import (
	"context"
	"fmt"
)

// Relay delivers a message to the site owner.
type Relay interface {
	Send(ctx context.Context, m Message) error
	Name() string
}

// EmailSendError wraps a failed delivery. The form keeps its values so the
// visitor can retry by hand.
type EmailSendError struct {
	Driver string
	Err    error
}

func (e *EmailSendError) Error() string {
	return fmt.Sprintf("send via %s: %v", e.Driver, e.Err)
}

func (e *EmailSendError) Unwrap() error {
	return e.Err
}
