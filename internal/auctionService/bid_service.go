package auction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
)

// PlaceBid admits a bid on an open auction. The strict-increase check against
// the current high runs again inside the store transaction, so two racing
// bids of the same amount cannot both be admitted.
func (s *Service) PlaceBid(caller authz.Caller, auctionID uint, amount decimal.Decimal) (models.Bid, error) {
	if err := requireWrite(authz.AuthenticatedOrReadOnly, caller, authz.Resource{}); err != nil {
		return models.Bid{}, err
	}
	a, err := s.GetAuction(auctionID)
	if err != nil {
		return models.Bid{}, err
	}
	if a.Status == models.StatusClosed {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionClosed)
	}
	if !amount.IsPositive() {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrNonPositiveAmount)
	}
	bidderID := caller.ID
	b := models.Bid{
		AuctionID: auctionID,
		Amount:    amount,
		CreatedAt: s.now(),
		BidderID:  &bidderID,
	}
	if err := s.repo.PlaceBid(&b); err != nil {
		return models.Bid{}, fmt.Errorf("service: place bid on auction %d: %w", auctionID, err)
	}
	return b, nil
}

// GetBid fetches a single bid scoped to its auction.
func (s *Service) GetBid(auctionID, bidID uint) (models.Bid, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return models.Bid{}, err
	}
	b, err := s.repo.GetBidByID(auctionID, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: get bid %d for auction %d: %w", bidID, auctionID, err)
	}
	return b, nil
}

// ListBids returns the auction's bids ordered by amount, highest first.
func (s *Service) ListBids(auctionID uint) ([]models.Bid, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return nil, err
	}
	bids, err := s.repo.ListBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: list bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

// ListBidsByUser returns every bid the user has placed.
func (s *Service) ListBidsByUser(userID uint) ([]models.Bid, error) {
	bids, err := s.repo.ListBidsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: list bids for user %d: %w", userID, err)
	}
	return bids, nil
}

// UpdateBid replaces the amount of an existing bid. Rejected on closed
// auctions before any ownership check, so even the bidder sees the closed
// error. The amount is not re-checked against sibling bids.
func (s *Service) UpdateBid(caller authz.Caller, auctionID, bidID uint, amount decimal.Decimal) (models.Bid, error) {
	a, err := s.GetAuction(auctionID)
	if err != nil {
		return models.Bid{}, err
	}
	if a.Status == models.StatusClosed {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionClosed)
	}
	b, err := s.repo.GetBidByID(auctionID, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: get bid %d for auction %d: %w", bidID, auctionID, err)
	}
	res := authz.Resource{OwnerID: b.BidderID, AuctionOwnerID: a.OwnerID}
	if err := requireWrite(authz.BidOwnerOrAuctionOwnerOrAdmin, caller, res); err != nil {
		return models.Bid{}, err
	}
	if !amount.IsPositive() {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrNonPositiveAmount)
	}
	b.Amount = amount
	if err := s.repo.UpdateBid(&b); err != nil {
		return models.Bid{}, fmt.Errorf("service: update bid %d: %w", bidID, err)
	}
	return b, nil
}

// DeleteBid removes a bid from an open auction.
func (s *Service) DeleteBid(caller authz.Caller, auctionID, bidID uint) error {
	a, err := s.GetAuction(auctionID)
	if err != nil {
		return err
	}
	if a.Status == models.StatusClosed {
		return fmt.Errorf("service: %w", auctionerrors.ErrAuctionClosed)
	}
	b, err := s.repo.GetBidByID(auctionID, bidID)
	if err != nil {
		return fmt.Errorf("service: get bid %d for auction %d: %w", bidID, auctionID, err)
	}
	res := authz.Resource{OwnerID: b.BidderID, AuctionOwnerID: a.OwnerID}
	if err := requireWrite(authz.BidOwnerOrAuctionOwnerOrAdmin, caller, res); err != nil {
		return err
	}
	if err := s.repo.DeleteBid(auctionID, bidID); err != nil {
		return fmt.Errorf("service: delete bid %d: %w", bidID, err)
	}
	return nil
}
