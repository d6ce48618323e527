package auction

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/internal/repository"
)

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *repository.MockAuctionDB, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewService(mockRepo)
	service.now = func() time.Time { return testNow }
	return service, mockRepo, ctrl
}

// decimalEq matches a decimal by value, not representation.
type decimalEq struct{ want decimal.Decimal }

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return fmt.Sprintf("decimal equal to %s", m.want) }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func openAuction(id uint, ownerID uint) models.Auction {
	return models.Auction{
		ID:            id,
		Title:         "vintage radio",
		Description:   "a working vintage radio",
		StartingPrice: dec("50.00"),
		Rating:        dec("1.00"),
		Stock:         1,
		Brand:         "Philips",
		CategoryID:    1,
		CreatedAt:     testNow.Add(-24 * time.Hour),
		CloseAt:       testNow.Add(30 * 24 * time.Hour),
		Status:        models.StatusOpen,
		OwnerID:       &ownerID,
	}
}

func closedAuction(id uint, ownerID uint) models.Auction {
	a := openAuction(id, ownerID)
	a.CloseAt = testNow.Add(-time.Hour)
	a.Status = models.StatusClosed
	return a
}

// Tests EffectiveStatus
func TestEffectiveStatus(t *testing.T) {
	closeAt := testNow

	tests := []struct {
		name     string
		now      time.Time
		expected string
	}{
		{name: "before_close", now: closeAt.Add(-time.Nanosecond), expected: models.StatusOpen},
		{name: "exactly_at_close", now: closeAt, expected: models.StatusClosed},
		{name: "after_close", now: closeAt.Add(time.Nanosecond), expected: models.StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := models.Auction{CloseAt: closeAt}
			require.Equal(t, tt.expected, EffectiveStatus(a, tt.now))
		})
	}
}

// Tests GetAuction status refresh
func TestService_GetAuction_RefreshesStaleStatus(t *testing.T) {
	service, mockRepo, ctrl := newTestService(t)
	defer ctrl.Finish()

	stale := openAuction(1, 7)
	stale.CloseAt = testNow.Add(-time.Hour) // already past, but stored as open

	mockRepo.EXPECT().GetAuctionByID(uint(1)).Return(stale, nil)
	mockRepo.EXPECT().UpdateAuctionStatus(uint(1), models.StatusClosed).Return(nil)

	a, err := service.GetAuction(1)
	require.NoError(t, err)
	require.Equal(t, models.StatusClosed, a.Status)
}

func TestService_GetAuction_FreshStatusNotPersisted(t *testing.T) {
	service, mockRepo, ctrl := newTestService(t)
	defer ctrl.Finish()

	mockRepo.EXPECT().GetAuctionByID(uint(1)).Return(openAuction(1, 7), nil)

	a, err := service.GetAuction(1)
	require.NoError(t, err)
	require.Equal(t, models.StatusOpen, a.Status)
}

// Tests CreateAuction
func TestService_CreateAuction(t *testing.T) {
	caller := authz.Caller{ID: 7, Username: "ana", Authenticated: true}

	validInput := func() AuctionInput {
		return AuctionInput{
			Title:         "vintage radio",
			Description:   "a working vintage radio",
			StartingPrice: dec("50.00"),
			Stock:         1,
			Brand:         "Philips",
			CategoryID:    1,
			CloseAt:       testNow.Add(30 * 24 * time.Hour),
		}
	}

	tests := []struct {
		name          string
		caller        authz.Caller
		mutate        func(*AuctionInput)
		mockSetup     func(m *repository.MockAuctionDB)
		expectedError error
	}{
		{
			name:          "anonymous_caller",
			caller:        authz.Caller{},
			mutate:        func(*AuctionInput) {},
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrUnauthenticated,
		},
		{
			name:          "missing_title",
			caller:        caller,
			mutate:        func(in *AuctionInput) { in.Title = "" },
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "non_positive_price",
			caller:        caller,
			mutate:        func(in *AuctionInput) { in.StartingPrice = dec("0") },
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "zero_stock",
			caller:        caller,
			mutate:        func(in *AuctionInput) { in.Stock = 0 },
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "initial_rating_out_of_range",
			caller:        caller,
			mutate:        func(in *AuctionInput) { in.Rating = dec("5.5") },
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidRating,
		},
		{
			name:          "close_before_minimum_window",
			caller:        caller,
			mutate:        func(in *AuctionInput) { in.CloseAt = testNow.Add(10 * 24 * time.Hour) },
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrCloseTooSoon,
		},
		{
			name:          "close_exactly_at_minimum_window",
			caller:        caller,
			mutate:        func(in *AuctionInput) { in.CloseAt = testNow.Add(15 * 24 * time.Hour) },
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrCloseTooSoon,
		},
		{
			name:   "unknown_category",
			caller: caller,
			mutate: func(in *AuctionInput) { in.CategoryID = 99 },
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CategoryExists(uint(99)).Return(false, nil)
			},
			expectedError: auctionerrors.ErrCategoryNotFound,
		},
		{
			name:   "success",
			caller: caller,
			mutate: func(*AuctionInput) {},
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CategoryExists(uint(1)).Return(true, nil)
				m.EXPECT().CreateAuction(gomock.Any()).DoAndReturn(func(a *models.Auction) error {
					a.ID = 1
					return nil
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockRepo, ctrl := newTestService(t)
			defer ctrl.Finish()
			tt.mockSetup(mockRepo)

			in := validInput()
			tt.mutate(&in)

			a, err := service.CreateAuction(tt.caller, in)
			if tt.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, uint(1), a.ID)
			require.Equal(t, models.StatusOpen, a.Status)
			require.NotNil(t, a.OwnerID)
			require.Equal(t, caller.ID, *a.OwnerID)
			require.True(t, a.Rating.Equal(dec("1"))) // defaulted
			require.Equal(t, testNow, a.CreatedAt)
		})
	}
}

// Tests UpdateAuction authorization
func TestService_UpdateAuction_Authorization(t *testing.T) {
	owner := authz.Caller{ID: 7, Authenticated: true}
	stranger := authz.Caller{ID: 8, Authenticated: true}
	admin := authz.Caller{ID: 9, IsAdmin: true, Authenticated: true}

	in := AuctionInput{
		Title:         "vintage radio",
		Description:   "restored",
		StartingPrice: dec("60.00"),
		Stock:         1,
		Brand:         "Philips",
		CategoryID:    1,
		CloseAt:       testNow.Add(30 * 24 * time.Hour),
	}

	tests := []struct {
		name          string
		caller        authz.Caller
		mockSetup     func(m *repository.MockAuctionDB)
		expectedError error
	}{
		{
			name:   "stranger_forbidden",
			caller: stranger,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionByID(uint(1)).Return(openAuction(1, 7), nil)
			},
			expectedError: auctionerrors.ErrForbidden,
		},
		{
			name:   "owner_allowed",
			caller: owner,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionByID(uint(1)).Return(openAuction(1, 7), nil)
				m.EXPECT().CategoryExists(uint(1)).Return(true, nil)
				m.EXPECT().UpdateAuction(gomock.Any()).Return(nil)
			},
		},
		{
			name:   "admin_allowed",
			caller: admin,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionByID(uint(1)).Return(openAuction(1, 7), nil)
				m.EXPECT().CategoryExists(uint(1)).Return(true, nil)
				m.EXPECT().UpdateAuction(gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockRepo, ctrl := newTestService(t)
			defer ctrl.Finish()
			tt.mockSetup(mockRepo)

			_, err := service.UpdateAuction(tt.caller, 1, in)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

// Tests CurrentPrice
func TestService_CurrentPrice(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(m *repository.MockAuctionDB)
		expected  decimal.Decimal
	}{
		{
			name: "no_bids_falls_back_to_starting_price",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().MaxBidAmount(uint(1)).Return(decimal.Decimal{}, false, nil)
			},
			expected: dec("50.00"),
		},
		{
			name: "highest_bid_wins",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().MaxBidAmount(uint(1)).Return(dec("75.00"), true, nil)
			},
			expected: dec("75.00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockRepo, ctrl := newTestService(t)
			defer ctrl.Finish()
			tt.mockSetup(mockRepo)

			price, err := service.CurrentPrice(openAuction(1, 7))
			require.NoError(t, err)
			require.True(t, price.Equal(tt.expected), "got %s", price)
		})
	}
}

// Tests SearchAuctions parameter validation
func TestService_SearchAuctions_Validation(t *testing.T) {
	tests := []struct {
		name          string
		params        SearchParams
		mockSetup     func(m *repository.MockAuctionDB)
		expectedError error
	}{
		{
			name:          "search_too_short",
			params:        SearchParams{Search: "ab"},
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrSearchTooShort,
		},
		{
			name:          "non_numeric_category",
			params:        SearchParams{Category: "radios"},
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrCategoryNotFound,
		},
		{
			name:   "unknown_category",
			params: SearchParams{Category: "99"},
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CategoryExists(uint(99)).Return(false, nil)
			},
			expectedError: auctionerrors.ErrCategoryNotFound,
		},
		{
			name:          "negative_rating_min",
			params:        SearchParams{RatingMin: "-1"},
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidNumber,
		},
		{
			name:          "non_numeric_price",
			params:        SearchParams{PriceMin: "cheap"},
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidNumber,
		},
		{
			name:          "inverted_price_range",
			params:        SearchParams{PriceMin: "80", PriceMax: "60"},
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockRepo, ctrl := newTestService(t)
			defer ctrl.Finish()
			tt.mockSetup(mockRepo)

			_, err := service.SearchAuctions(tt.params)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestService_SearchAuctions_StatusFilter(t *testing.T) {
	service, mockRepo, ctrl := newTestService(t)
	defer ctrl.Finish()

	open := openAuction(1, 7)
	closed := closedAuction(2, 7)

	mockRepo.EXPECT().SearchAuctions(repository.AuctionFilter{}).Return([]models.Auction{open, closed}, nil)

	result, err := service.SearchAuctions(SearchParams{Status: models.StatusOpen})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, uint(1), result[0].ID)
}

func TestService_SearchAuctions_PriceRange(t *testing.T) {
	// Auction with starting price 50 and a high bid of 75.
	tests := []struct {
		name     string
		params   SearchParams
		included bool
	}{
		{name: "within_range", params: SearchParams{PriceMin: "60", PriceMax: "80"}, included: true},
		{name: "min_above_current_price", params: SearchParams{PriceMin: "80"}, included: false},
		{name: "boundary_is_inclusive", params: SearchParams{PriceMin: "75", PriceMax: "75"}, included: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockRepo, ctrl := newTestService(t)
			defer ctrl.Finish()

			a := openAuction(1, 7)
			mockRepo.EXPECT().SearchAuctions(repository.AuctionFilter{}).Return([]models.Auction{a}, nil)
			mockRepo.EXPECT().MaxBidAmount(uint(1)).Return(dec("75.00"), true, nil)

			result, err := service.SearchAuctions(tt.params)
			require.NoError(t, err)
			if tt.included {
				require.Len(t, result, 1)
			} else {
				require.Empty(t, result)
			}
		})
	}
}

// Tests DeleteAuction
func TestService_DeleteAuction(t *testing.T) {
	service, mockRepo, ctrl := newTestService(t)
	defer ctrl.Finish()

	owner := authz.Caller{ID: 7, Authenticated: true}
	mockRepo.EXPECT().GetAuctionByID(uint(1)).Return(openAuction(1, 7), nil)
	mockRepo.EXPECT().DeleteAuction(uint(1)).Return(nil)

	require.NoError(t, service.DeleteAuction(owner, 1))
}

func TestService_DeleteAuction_NotFound(t *testing.T) {
	service, mockRepo, ctrl := newTestService(t)
	defer ctrl.Finish()

	mockRepo.EXPECT().GetAuctionByID(uint(99)).
		Return(models.Auction{}, fmt.Errorf("get auction: %w", auctionerrors.ErrAuctionNotFound))

	err := service.DeleteAuction(authz.Caller{ID: 7, Authenticated: true}, 99)
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}
