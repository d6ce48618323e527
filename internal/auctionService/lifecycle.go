package auction

import (
	"fmt"
	"time"

	"pacomprar/internal/models"
)

// EffectiveStatus computes an auction's open/closed state from its close
// time. Pure and deterministic: closed iff now >= CloseAt.
func EffectiveStatus(a models.Auction, now time.Time) string {
	if !now.Before(a.CloseAt) {
		return models.StatusClosed
	}
	return models.StatusOpen
}

// refreshStatus re-evaluates the auction's status and persists it when the
// stored column is stale. Called on every read or mutating path that touches
// an auction or its bids, so storage never serves an "open" status past the
// close time. Only the status field is ever written here.
func (s *Service) refreshStatus(a *models.Auction) error {
	effective := EffectiveStatus(*a, s.now())
	if effective == a.Status {
		return nil
	}
	if err := s.repo.UpdateAuctionStatus(a.ID, effective); err != nil {
		return fmt.Errorf("service: refresh status for auction %d: %w", a.ID, err)
	}
	a.Status = effective
	return nil
}
