package session

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity classifies a notification for the operator.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Messages shown to the operator.
const (
	MsgLoadFailed   = "Failed to load products"
	MsgSaleRecorded = "Sale Recorded!"
	MsgSaleFailed   = "Failed to record sale"
	MsgSaleError    = "Error recording sale"
)

// Notification is a short, transient message for the operator.
type Notification struct {
	ID       uuid.UUID `json:"id"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

func newNotification(message string, severity Severity) Notification {
	return Notification{
		ID:       uuid.New(),
		Message:  message,
		Severity: severity,
		At:       time.Now(),
	}
}

// Sink receives notifications. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(n Notification)
}

// LogSink writes every notification to the logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(n Notification) {
	fields := []zap.Field{
		zap.String("notification_id", n.ID.String()),
		zap.String("message", n.Message),
	}
	if n.Severity == SeverityError {
		s.logger.Warn("operator notification", fields...)
		return
	}
	s.logger.Info("operator notification", fields...)
}

// Fanout delivers each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(n Notification) {
	for _, s := range f {
		if s != nil {
			s.Notify(n)
		}
	}
}
