package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/parkfind/backend/internal/event"
)

var ErrEmptyDiscovery = errors.New("discovery message is empty")

// DiscoveryService is the collaborator-facing entry point for proximity
// discoveries and park updates. A discovery can match several find posts at
// once, so it is reported as a pre-rendered message rather than a reference.
type DiscoveryService struct {
	repo PostRepository
	tx   TxRunner
	bus  *event.Bus
}

func NewDiscoveryService(repo PostRepository, tx TxRunner, bus *event.Bus) *DiscoveryService {
	return &DiscoveryService{
		repo: repo,
		tx:   tx,
		bus:  bus,
	}
}

// ReportFindDiscovery raises FindDiscovered for the given user.
func (s *DiscoveryService) ReportFindDiscovery(ctx context.Context, userID uuid.UUID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyDiscovery
	}

	s.bus.Raise(ctx, event.FindDiscovered{
		UserID:  userID,
		Message: message,
	})
	return nil
}

// RecordParkUpdate persists the update and raises ParkUpdated for the watcher
// once the row is committed.
func (s *DiscoveryService) RecordParkUpdate(ctx context.Context, parkName string, watcherID uuid.UUID) (*ParkUpdate, error) {
	var update *ParkUpdate
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.repo.CreateParkUpdate(ctx, parkName, watcherID)
		if err != nil {
			return err
		}
		update = u

		s.bus.Raise(ctx, event.ParkUpdated{
			ParkUpdateID: u.ID,
			UserID:       u.UserID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}
