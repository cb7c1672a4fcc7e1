package event

import (
	"context"
	"encoding/json"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/pkg/logger"
)

// Emitter records a domain event for asynchronous publication. Record
// mutations call it best-effort: a failed emit is logged and never
// fails the mutation that triggered it.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{})
}

type Service struct {
	outboxRepo repository.OutboxRepository
	logger     *logger.Logger
}

func NewService(outboxRepo repository.OutboxRepository, logger *logger.Logger) *Service {
	return &Service{outboxRepo: outboxRepo, logger: logger}
}

func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal event payload", "event_type", eventType)
		return
	}

	evt := &model.OutboxEvent{
		EventType: eventType,
		Payload:   body,
		Status:    model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, evt); err != nil {
		s.logger.Error(err, "failed to store outbox event", "event_type", eventType)
	}
}
