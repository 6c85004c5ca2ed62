package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Entry is one audited action on a record.
type Entry struct {
	UserID     uuid.UUID
	Role       string
	Action     string
	EntityType string
	EntityID   string
	Method     string
	Path       string
	Status     int
	RequestID  string
	IPAddress  string
	UserAgent  string
	Duration   time.Duration
}

// Service writes the audit trail to a dedicated zap logger, separate from the
// application log.
type Service struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger.Named("audit")}
}

// NewLogger builds the production JSON logger used for the audit trail.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Log records an entry. Failed requests are logged at warn level.
func (s *Service) Log(ctx context.Context, entry Entry) {
	fields := []zap.Field{
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
		zap.String("method", entry.Method),
		zap.String("path", entry.Path),
		zap.Int("status", entry.Status),
	}
	if entry.UserID != uuid.Nil {
		fields = append(fields, zap.String("user_id", entry.UserID.String()))
	}
	if entry.Role != "" {
		fields = append(fields, zap.String("role", entry.Role))
	}
	if entry.EntityID != "" {
		fields = append(fields, zap.String("entity_id", entry.EntityID))
	}
	if entry.RequestID != "" {
		fields = append(fields, zap.String("request_id", entry.RequestID))
	}
	if entry.IPAddress != "" {
		fields = append(fields, zap.String("ip_address", entry.IPAddress))
	}
	if entry.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", entry.UserAgent))
	}
	if entry.Duration > 0 {
		fields = append(fields, zap.Duration("duration", entry.Duration))
	}

	if entry.Status >= 400 {
		s.logger.Warn("audit", fields...)
		return
	}
	s.logger.Info("audit", fields...)
}

// Sync flushes buffered entries.
func (s *Service) Sync() error {
	return s.logger.Sync()
}
