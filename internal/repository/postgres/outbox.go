package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	_, err := r.GetDB().ExecContext(ctx, `
		INSERT INTO eventos_salida (id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.EventType, event.Payload, event.Status, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT id, event_type, payload, status, error_message, created_at, processed_at
		FROM eventos_salida
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	events := []*model.OutboxEvent{}
	err := r.GetDB().SelectContext(ctx, &events, query, model.OutboxStatusPending, limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	_, err := r.GetDB().ExecContext(ctx, `
		UPDATE eventos_salida
		SET status = $1, error_message = $2, processed_at = NOW()
		WHERE id = $3`,
		status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.GetDB().ExecContext(ctx, `
		DELETE FROM eventos_salida
		WHERE status = $1 AND processed_at < $2`,
		model.OutboxStatusProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return result.RowsAffected()
}
