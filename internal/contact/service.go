package contact

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kbeguinel/portfolio/internal/logging"
	"github.com/kbeguinel/portfolio/internal/metrics"
	"github.com/kbeguinel/portfolio/internal/storage"
)

// Delivery statuses shown to the visitor and stored in the message log.
const (
	StatusSent  = "sent"
	StatusError = "error"
)

// MessageLog records every relay attempt.
type MessageLog interface {
	SaveMessage(ctx context.Context, m storage.Message) error
}

// Result is the outcome of one submission.
type Result struct {
	ID     string
	Status string
}

// Service validates, relays and logs contact messages. It never retries.
type Service struct {
	relay   Relay
	log     MessageLog
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService wires a relay to an optional message log and metrics.
func NewService(relay Relay, log MessageLog, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		relay:   relay,
		log:     log,
		logger:  logging.OrNop(logger).Named("contact"),
		metrics: m,
	}
}

// Driver names the relay in use.
func (s *Service) Driver() string {
	return s.relay.Name()
}

// Submit validates m and hands it to the relay. Invalid input returns a
// *ValidationError without contacting the relay; a relay failure returns
// a *EmailSendError alongside a Result with StatusError.
func (s *Service) Submit(ctx context.Context, m Message) (Result, error) {
	m = m.Trimmed()
	if err := m.Validate(); err != nil {
		return Result{Status: StatusError}, err
	}

	res := Result{ID: uuid.NewString(), Status: StatusSent}
	var sendErr error
	if err := s.relay.Send(ctx, m); err != nil {
		sendErr = &EmailSendError{Driver: s.relay.Name(), Err: err}
		res.Status = StatusError
		s.logger.Error("contact message not delivered",
			zap.String("id", res.ID), zap.String("driver", s.relay.Name()), zap.Error(err))
	} else {
		s.logger.Info("contact message delivered",
			zap.String("id", res.ID), zap.String("driver", s.relay.Name()))
	}

	if s.metrics != nil {
		s.metrics.ContactMessages.WithLabelValues(s.relay.Name(), res.Status).Inc()
	}

	if s.log != nil {
		entry := storage.Message{
			ID:      res.ID,
			Name:    m.Name,
			Surname: m.Surname,
			Email:   m.Email,
			Body:    m.Text,
			Driver:  s.relay.Name(),
			Status:  res.Status,
		}
		if sendErr != nil {
			entry.Error = sendErr.Error()
		}
		// The log is best effort; delivery already happened or failed.
		if err := s.log.SaveMessage(ctx, entry); err != nil {
			s.logger.Warn("contact message not logged", zap.String("id", res.ID), zap.Error(err))
		}
	}

	return res, sendErr
}
