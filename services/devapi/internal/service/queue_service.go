package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/config"
	"github.com/bigode/bigode-booking/pkg/events"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/bigode/bigode-booking/services/devapi/internal/repository"
)

type QueueService interface {
	Status(ctx context.Context, barberID string) (domain.QueueStatus, error)
	Join(ctx context.Context, barberID, sessionID string) (domain.QueueTicket, error)
	Position(ctx context.Context, barberID, sessionID string) (domain.QueueTicket, error)
	Leave(ctx context.Context, barberID, sessionID string) error
	Next(ctx context.Context, barberID string) (domain.QueueStatus, error)
	SetOpen(ctx context.Context, barberID string, open bool) error
	RunAutoAdvance(ctx context.Context, every time.Duration)
}

type queueService struct {
	queues    repository.QueueRepository
	catalog   repository.CatalogRepository
	publisher events.Publisher
	cfg       config.QueueConfig
}

func NewQueueService(
	queues repository.QueueRepository,
	catalog repository.CatalogRepository,
	publisher events.Publisher,
	cfg config.QueueConfig,
) QueueService {
	if cfg.MinutesPerClient <= 0 {
		cfg.MinutesPerClient = 40
	}
	if cfg.ServedTTL <= 0 {
		cfg.ServedTTL = 10 * time.Minute
	}
	return &queueService{queues: queues, catalog: catalog, publisher: publisher, cfg: cfg}
}

func (s *queueService) requireBarber(ctx context.Context, barberID string) error {
	if _, _, ok := s.catalog.Barber(ctx, barberID); !ok {
		return ErrNotFound
	}
	return nil
}

func (s *queueService) ticket(position, length int) domain.QueueTicket {
	return domain.QueueTicket{
		Position:          position,
		EstimatedWaitTime: max(position, 0) * s.cfg.MinutesPerClient,
		QueueLength:       length,
	}
}

func (s *queueService) Status(ctx context.Context, barberID string) (domain.QueueStatus, error) {
	if err := s.requireBarber(ctx, barberID); err != nil {
		return domain.QueueStatus{}, err
	}
	open, err := s.queues.IsOpen(ctx, barberID)
	if err != nil {
		return domain.QueueStatus{}, fmt.Errorf("queue open flag: %w", err)
	}
	length, err := s.queues.Length(ctx, barberID)
	if err != nil {
		return domain.QueueStatus{}, fmt.Errorf("queue length: %w", err)
	}
	return domain.QueueStatus{
		IsOpen:            open,
		QueueLength:       length,
		EstimatedWaitTime: length * s.cfg.MinutesPerClient,
	}, nil
}

func (s *queueService) Join(ctx context.Context, barberID, sessionID string) (domain.QueueTicket, error) {
	if sessionID == "" {
		return domain.QueueTicket{}, fmt.Errorf("%w: missing session", ErrInvalidInput)
	}
	if err := s.requireBarber(ctx, barberID); err != nil {
		return domain.QueueTicket{}, err
	}
	open, err := s.queues.IsOpen(ctx, barberID)
	if err != nil {
		return domain.QueueTicket{}, fmt.Errorf("queue open flag: %w", err)
	}
	if !open {
		return domain.QueueTicket{}, ErrQueueClosed
	}

	position, length, err := s.queues.Join(ctx, barberID, sessionID)
	if err != nil {
		return domain.QueueTicket{}, fmt.Errorf("failed to join queue: %w", err)
	}
	s.publish(ctx, events.QueueJoined, barberID, sessionID, position, length)
	logger.InfoContext(ctx, "Client joined queue", "barber_id", barberID, "position", position)
	return s.ticket(position, length), nil
}

func (s *queueService) Position(ctx context.Context, barberID, sessionID string) (domain.QueueTicket, error) {
	if err := s.requireBarber(ctx, barberID); err != nil {
		return domain.QueueTicket{}, err
	}
	position, length, err := s.queues.Position(ctx, barberID, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.QueueTicket{}, ErrNotInQueue
	}
	if err != nil {
		return domain.QueueTicket{}, fmt.Errorf("queue position: %w", err)
	}
	return s.ticket(position, length), nil
}

func (s *queueService) Leave(ctx context.Context, barberID, sessionID string) error {
	if err := s.requireBarber(ctx, barberID); err != nil {
		return err
	}
	removed, err := s.queues.Leave(ctx, barberID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to leave queue: %w", err)
	}
	if !removed {
		return ErrNotInQueue
	}
	length, _ := s.queues.Length(ctx, barberID)
	s.publish(ctx, events.QueueLeft, barberID, sessionID, 0, length)
	return nil
}

// Next serves the head of the queue. Everyone behind moves up one position.
func (s *queueService) Next(ctx context.Context, barberID string) (domain.QueueStatus, error) {
	if err := s.requireBarber(ctx, barberID); err != nil {
		return domain.QueueStatus{}, err
	}
	sessionID, err := s.queues.PopHead(ctx, barberID, s.cfg.ServedTTL)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return domain.QueueStatus{}, fmt.Errorf("failed to serve queue head: %w", err)
	}
	status, statusErr := s.Status(ctx, barberID)
	if err == nil {
		s.publish(ctx, events.QueueServed, barberID, sessionID, 0, status.QueueLength)
		logger.InfoContext(ctx, "Queue head served", "barber_id", barberID, "queue_length", status.QueueLength)
	}
	return status, statusErr
}

func (s *queueService) SetOpen(ctx context.Context, barberID string, open bool) error {
	if err := s.requireBarber(ctx, barberID); err != nil {
		return err
	}
	return s.queues.SetOpen(ctx, barberID, open)
}

// RunAutoAdvance serves every non-empty queue once per tick until ctx ends.
// It stands in for the barber calling the next client.
func (s *queueService) RunAutoAdvance(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	logger.InfoContext(ctx, "Queue auto-advance running", "interval", every.String())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		barbers, err := s.queues.Barbers(ctx)
		if err != nil {
			logger.WarnContext(ctx, "Auto-advance could not list queues", "error", err)
			continue
		}
		for _, barberID := range barbers {
			if n, err := s.queues.Length(ctx, barberID); err != nil || n == 0 {
				continue
			}
			if _, err := s.Next(ctx, barberID); err != nil {
				logger.WarnContext(ctx, "Auto-advance failed", "barber_id", barberID, "error", err)
			}
		}
	}
}

func (s *queueService) publish(ctx context.Context, subject, barberID, sessionID string, position, length int) {
	event := events.QueueEvent{
		BarberID:    barberID,
		SessionID:   sessionID,
		Position:    position,
		QueueLength: length,
		OccurredAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish queue event", "error", err, "subject", subject)
	}
}
