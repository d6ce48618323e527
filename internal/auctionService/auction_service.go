package auction

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/internal/repository"
)

// minCloseWindow is the minimum distance between an auction's creation and
// its close time.
const minCloseWindow = 15 * 24 * time.Hour

// Service implements the auction business logic: lifecycle evaluation, bid
// validation, rating aggregation, price projection and search.
type Service struct {
	repo repository.AuctionDB
	now  func() time.Time
}

// NewService creates a Service instance backed by the given store.
func NewService(repo repository.AuctionDB) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// requireWrite maps a policy decision to the error taxonomy: anonymous
// callers get an authentication error, known callers a permission error.
func requireWrite(p authz.Policy, c authz.Caller, r authz.Resource) error {
	if !c.Authenticated {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if !p.CanWrite(c, r) {
		return fmt.Errorf("service: %w", auctionerrors.ErrForbidden)
	}
	return nil
}

// AuctionInput carries the client-settable auction fields.
type AuctionInput struct {
	Title         string
	Description   string
	StartingPrice decimal.Decimal
	Rating        decimal.Decimal
	Stock         int
	Brand         string
	CategoryID    uint
	Image         string
	CloseAt       time.Time
}

func (s *Service) validateAuctionInput(in AuctionInput) error {
	if in.Title == "" || in.Description == "" || in.Brand == "" {
		return fmt.Errorf("service: %w - missing title, description or brand", auctionerrors.ErrInvalidInput)
	}
	if !in.StartingPrice.IsPositive() {
		return fmt.Errorf("service: %w - starting price must be positive", auctionerrors.ErrInvalidInput)
	}
	if in.Stock < 1 {
		return fmt.Errorf("service: %w - stock must be at least 1", auctionerrors.ErrInvalidInput)
	}
	if !in.Rating.IsZero() {
		one := decimal.NewFromInt(1)
		five := decimal.NewFromInt(5)
		if in.Rating.LessThan(one) || in.Rating.GreaterThan(five) {
			return fmt.Errorf("service: %w", auctionerrors.ErrInvalidRating)
		}
	}
	if !in.CloseAt.After(s.now().Add(minCloseWindow)) {
		return fmt.Errorf("service: %w", auctionerrors.ErrCloseTooSoon)
	}
	exists, err := s.repo.CategoryExists(in.CategoryID)
	if err != nil {
		return fmt.Errorf("service: check category %d: %w", in.CategoryID, err)
	}
	if !exists {
		return fmt.Errorf("service: %w", auctionerrors.ErrCategoryNotFound)
	}
	return nil
}

// CreateAuction validates the input and stores a new auction owned by the
// caller.
func (s *Service) CreateAuction(caller authz.Caller, in AuctionInput) (models.Auction, error) {
	if err := requireWrite(authz.AuthenticatedOrReadOnly, caller, authz.Resource{}); err != nil {
		return models.Auction{}, err
	}
	if err := s.validateAuctionInput(in); err != nil {
		return models.Auction{}, err
	}
	rating := in.Rating
	if rating.IsZero() {
		rating = decimal.NewFromInt(1)
	}
	ownerID := caller.ID
	a := models.Auction{
		Title:         in.Title,
		Description:   in.Description,
		StartingPrice: in.StartingPrice,
		Rating:        rating,
		Stock:         in.Stock,
		Brand:         in.Brand,
		CategoryID:    in.CategoryID,
		Image:         in.Image,
		CreatedAt:     s.now(),
		CloseAt:       in.CloseAt,
		Status:        models.StatusOpen,
		OwnerID:       &ownerID,
	}
	if err := s.repo.CreateAuction(&a); err != nil {
		return models.Auction{}, fmt.Errorf("service: create auction: %w", err)
	}
	return a, nil
}

// GetAuction fetches an auction, re-evaluating its status on the way out.
func (s *Service) GetAuction(id uint) (models.Auction, error) {
	a, err := s.repo.GetAuctionByID(id)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: get auction %d: %w", id, err)
	}
	if err := s.refreshStatus(&a); err != nil {
		return models.Auction{}, err
	}
	return a, nil
}

// UpdateAuction applies the input to an existing auction. Only the owner or
// an admin may update; creation time, owner and cached rating are preserved.
func (s *Service) UpdateAuction(caller authz.Caller, id uint, in AuctionInput) (models.Auction, error) {
	a, err := s.GetAuction(id)
	if err != nil {
		return models.Auction{}, err
	}
	if err := requireWrite(authz.OwnerOrAdmin, caller, authz.Resource{OwnerID: a.OwnerID}); err != nil {
		return models.Auction{}, err
	}
	if err := s.validateAuctionInput(in); err != nil {
		return models.Auction{}, err
	}
	a.Title = in.Title
	a.Description = in.Description
	a.StartingPrice = in.StartingPrice
	a.Stock = in.Stock
	a.Brand = in.Brand
	a.CategoryID = in.CategoryID
	a.Image = in.Image
	a.CloseAt = in.CloseAt
	a.Status = EffectiveStatus(a, s.now())
	if err := s.repo.UpdateAuction(&a); err != nil {
		return models.Auction{}, fmt.Errorf("service: update auction %d: %w", id, err)
	}
	return a, nil
}

// DeleteAuction removes an auction and, through the store, its bids, ratings
// and comments.
func (s *Service) DeleteAuction(caller authz.Caller, id uint) error {
	a, err := s.GetAuction(id)
	if err != nil {
		return err
	}
	if err := requireWrite(authz.OwnerOrAdmin, caller, authz.Resource{OwnerID: a.OwnerID}); err != nil {
		return err
	}
	if err := s.repo.DeleteAuction(id); err != nil {
		return fmt.Errorf("service: delete auction %d: %w", id, err)
	}
	return nil
}

// ListAuctionsByOwner returns the auctions created by the user.
func (s *Service) ListAuctionsByOwner(userID uint) ([]models.Auction, error) {
	list, err := s.repo.ListAuctionsByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("service: list auctions for user %d: %w", userID, err)
	}
	for i := range list {
		if err := s.refreshStatus(&list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// CurrentPrice projects the auction's current price: the highest admitted
// bid, or the starting price when no bid exists. Derived at read time, never
// persisted.
func (s *Service) CurrentPrice(a models.Auction) (decimal.Decimal, error) {
	max, found, err := s.repo.MaxBidAmount(a.ID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("service: current price for auction %d: %w", a.ID, err)
	}
	if !found {
		return a.StartingPrice, nil
	}
	return max, nil
}

// SearchParams are the raw (unparsed) search filters from the query string.
type SearchParams struct {
	Search    string
	Category  string
	Status    string
	Username  string
	RatingMin string
	PriceMin  string
	PriceMax  string
}

func parsePositiveDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("service: %q: %w", raw, auctionerrors.ErrInvalidNumber)
	}
	return d, nil
}

// SearchAuctions validates the filter parameters and returns the matching
// auctions in ascending id order. Text, category, owner and rating-floor
// filters run in SQL; effective status and the price range are derived
// values, so those candidates are filtered here one by one.
func (s *Service) SearchAuctions(params SearchParams) ([]models.Auction, error) {
	filter := repository.AuctionFilter{Search: params.Search, Username: params.Username}

	if params.Search != "" && len([]rune(params.Search)) < 3 {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrSearchTooShort)
	}
	if params.Category != "" {
		id, err := strconv.ParseUint(params.Category, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("service: %w", auctionerrors.ErrCategoryNotFound)
		}
		exists, err := s.repo.CategoryExists(uint(id))
		if err != nil {
			return nil, fmt.Errorf("service: check category %d: %w", id, err)
		}
		if !exists {
			return nil, fmt.Errorf("service: %w", auctionerrors.ErrCategoryNotFound)
		}
		filter.CategoryID = uint(id)
	}
	if params.RatingMin != "" {
		min, err := parsePositiveDecimal(params.RatingMin)
		if err != nil {
			return nil, err
		}
		filter.RatingMin = &min
	}
	var priceMin, priceMax *decimal.Decimal
	if params.PriceMin != "" {
		min, err := parsePositiveDecimal(params.PriceMin)
		if err != nil {
			return nil, err
		}
		priceMin = &min
	}
	if params.PriceMax != "" {
		max, err := parsePositiveDecimal(params.PriceMax)
		if err != nil {
			return nil, err
		}
		priceMax = &max
	}
	if priceMin != nil && priceMax != nil && priceMin.GreaterThan(*priceMax) {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrInvalidRange)
	}

	list, err := s.repo.SearchAuctions(filter)
	if err != nil {
		return nil, fmt.Errorf("service: search auctions: %w", err)
	}
	for i := range list {
		if err := s.refreshStatus(&list[i]); err != nil {
			return nil, err
		}
	}

	if params.Status != "" {
		filtered := list[:0]
		for _, a := range list {
			if a.Status == params.Status {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}

	if priceMin != nil || priceMax != nil {
		// One price projection per candidate: an O(n) pass, acceptable at
		// this scale.
		filtered := make([]models.Auction, 0, len(list))
		for _, a := range list {
			price, err := s.CurrentPrice(a)
			if err != nil {
				return nil, err
			}
			if priceMin != nil && price.LessThan(*priceMin) {
				continue
			}
			if priceMax != nil && price.GreaterThan(*priceMax) {
				continue
			}
			filtered = append(filtered, a)
		}
		list = filtered
	}
	return list, nil
}
