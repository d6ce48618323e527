package auction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/utils"
)

func validRatingValue(value int) bool {
	return value >= 1 && value <= 5
}

// recomputeMean refreshes the auction's cached mean rating after a rating
// mutation. When the rating set is empty the cache falls back to the value
// already stored, or to 1.0 if that is unset. Persistence failures are
// logged, not propagated: a stale cache must not fail the rating write that
// already succeeded.
func (s *Service) recomputeMean(a models.Auction) {
	mean, count, err := s.repo.MeanRating(a.ID)
	if err != nil {
		utils.Error("recompute mean rating", map[string]any{"auction_id": a.ID, "error": err.Error()})
		return
	}
	if count == 0 {
		mean = a.Rating
		if mean.IsZero() {
			mean = decimal.NewFromInt(1)
		}
	}
	if err := s.repo.UpdateAuctionRating(a.ID, mean); err != nil {
		utils.Error("persist mean rating", map[string]any{"auction_id": a.ID, "error": err.Error()})
	}
}

// CreateRating stores the caller's rating for the auction and refreshes the
// cached mean. A second rating by the same user on the same auction is
// rejected by the store's uniqueness constraint.
func (s *Service) CreateRating(caller authz.Caller, auctionID uint, value int) (models.Rating, error) {
	if err := requireWrite(authz.AuthenticatedOrReadOnly, caller, authz.Resource{}); err != nil {
		return models.Rating{}, err
	}
	a, err := s.GetAuction(auctionID)
	if err != nil {
		return models.Rating{}, err
	}
	if !validRatingValue(value) {
		return models.Rating{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidRating)
	}
	r := models.Rating{
		AuctionID: auctionID,
		UserID:    caller.ID,
		Value:     value,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.repo.CreateRating(&r); err != nil {
		return models.Rating{}, fmt.Errorf("service: create rating for auction %d: %w", auctionID, err)
	}
	s.recomputeMean(a)
	return r, nil
}

// GetRating fetches a single rating scoped to its auction.
func (s *Service) GetRating(auctionID, ratingID uint) (models.Rating, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return models.Rating{}, err
	}
	r, err := s.repo.GetRatingByID(auctionID, ratingID)
	if err != nil {
		return models.Rating{}, fmt.Errorf("service: get rating %d for auction %d: %w", ratingID, auctionID, err)
	}
	return r, nil
}

// ListRatings returns every rating on the auction.
func (s *Service) ListRatings(auctionID uint) ([]models.Rating, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return nil, err
	}
	ratings, err := s.repo.ListRatingsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: list ratings for auction %d: %w", auctionID, err)
	}
	return ratings, nil
}

// ListRatingsByUser returns every rating the user has left.
func (s *Service) ListRatingsByUser(userID uint) ([]models.Rating, error) {
	ratings, err := s.repo.ListRatingsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: list ratings for user %d: %w", userID, err)
	}
	return ratings, nil
}

// UpdateRating replaces the value of an existing rating and refreshes the
// cached mean. Only the rating's author or an admin may update.
func (s *Service) UpdateRating(caller authz.Caller, auctionID, ratingID uint, value int) (models.Rating, error) {
	a, err := s.GetAuction(auctionID)
	if err != nil {
		return models.Rating{}, err
	}
	r, err := s.repo.GetRatingByID(auctionID, ratingID)
	if err != nil {
		return models.Rating{}, fmt.Errorf("service: get rating %d for auction %d: %w", ratingID, auctionID, err)
	}
	if err := requireWrite(authz.OwnerOrAdmin, caller, authz.Owned(r.UserID)); err != nil {
		return models.Rating{}, err
	}
	if !validRatingValue(value) {
		return models.Rating{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidRating)
	}
	r.Value = value
	r.UpdatedAt = s.now()
	if err := s.repo.UpdateRating(&r); err != nil {
		return models.Rating{}, fmt.Errorf("service: update rating %d: %w", ratingID, err)
	}
	s.recomputeMean(a)
	return r, nil
}

// DeleteRating removes a rating and refreshes the cached mean.
func (s *Service) DeleteRating(caller authz.Caller, auctionID, ratingID uint) error {
	a, err := s.GetAuction(auctionID)
	if err != nil {
		return err
	}
	r, err := s.repo.GetRatingByID(auctionID, ratingID)
	if err != nil {
		return fmt.Errorf("service: get rating %d for auction %d: %w", ratingID, auctionID, err)
	}
	if err := requireWrite(authz.OwnerOrAdmin, caller, authz.Owned(r.UserID)); err != nil {
		return err
	}
	if err := s.repo.DeleteRating(auctionID, ratingID); err != nil {
		return fmt.Errorf("service: delete rating %d: %w", ratingID, err)
	}
	s.recomputeMean(a)
	return nil
}

// UserRating returns the caller's own rating for the auction.
func (s *Service) UserRating(caller authz.Caller, auctionID uint) (models.Rating, error) {
	if !caller.Authenticated {
		return models.Rating{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if _, err := s.GetAuction(auctionID); err != nil {
		return models.Rating{}, err
	}
	r, err := s.repo.GetRatingByUser(auctionID, caller.ID)
	if err != nil {
		return models.Rating{}, fmt.Errorf("service: get rating by user %d for auction %d: %w", caller.ID, auctionID, err)
	}
	return r, nil
}

// UpdateUserRating replaces the caller's own rating for the auction.
func (s *Service) UpdateUserRating(caller authz.Caller, auctionID uint, value int) (models.Rating, error) {
	r, err := s.UserRating(caller, auctionID)
	if err != nil {
		return models.Rating{}, err
	}
	return s.UpdateRating(caller, auctionID, r.ID, value)
}

// DeleteUserRating removes the caller's own rating for the auction.
func (s *Service) DeleteUserRating(caller authz.Caller, auctionID uint) error {
	r, err := s.UserRating(caller, auctionID)
	if err != nil {
		return err
	}
	return s.DeleteRating(caller, auctionID, r.ID)
}
