package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pacomprar/internal/auctionerrors"
	auction "pacomprar/internal/auctionService"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/internal/repository"
	"pacomprar/services/auction/helpers"
)

func injectCaller(caller authz.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller.Authenticated {
			c.Set(helpers.CallerContextKey, caller)
		}
		c.Next()
	}
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func storedAuction(id uint, ownerID uint, closeAt time.Time) models.Auction {
	status := models.StatusOpen
	if !time.Now().UTC().Before(closeAt) {
		status = models.StatusClosed
	}
	return models.Auction{
		ID:            id,
		Title:         "vintage radio",
		Description:   "a working vintage radio",
		StartingPrice: decimal.NewFromInt(50),
		Stock:         1,
		Brand:         "Philips",
		CategoryID:    1,
		CloseAt:       closeAt,
		Status:        status,
		OwnerID:       &ownerID,
	}
}

// Tests PlaceBidHandler end to end against the service with a mocked store.
func TestPlaceBidHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bidder := authz.Caller{ID: 3, Username: "bea", Authenticated: true}
	openClose := time.Now().UTC().Add(30 * 24 * time.Hour)
	closedClose := time.Now().UTC().Add(-time.Hour)

	tests := []struct {
		name           string
		caller         authz.Caller
		url            string
		body           any
		mockSetup      func(m *repository.MockAuctionDB)
		expectedStatus int
		expectedField  string
	}{
		{
			name:   "success",
			caller: bidder,
			url:    "/api/subastas/1/pujas",
			body:   helpers.BidRequest{Amount: decimal.NewFromInt(60)},
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionByID(uint(1)).Return(storedAuction(1, 7, openClose), nil)
				m.EXPECT().PlaceBid(gomock.Any()).DoAndReturn(func(b *models.Bid) error {
					b.ID = 10
					return nil
				})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "anonymous_rejected",
			caller:         authz.Caller{},
			url:            "/api/subastas/1/pujas",
			body:           helpers.BidRequest{Amount: decimal.NewFromInt(60)},
			mockSetup:      func(*repository.MockAuctionDB) {},
			expectedStatus: http.StatusUnauthorized,
			expectedField:  "detail",
		},
		{
			name:   "closed_auction",
			caller: bidder,
			url:    "/api/subastas/1/pujas",
			body:   helpers.BidRequest{Amount: decimal.NewFromInt(60)},
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionByID(uint(1)).Return(storedAuction(1, 7, closedClose), nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "subasta",
		},
		{
			name:           "invalid_json",
			caller:         bidder,
			url:            "/api/subastas/1/pujas",
			body:           `{invalid}`,
			mockSetup:      func(*repository.MockAuctionDB) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "detail",
		},
		{
			name:           "non_numeric_auction_id",
			caller:         bidder,
			url:            "/api/subastas/abc/pujas",
			body:           helpers.BidRequest{Amount: decimal.NewFromInt(60)},
			mockSetup:      func(*repository.MockAuctionDB) {},
			expectedStatus: http.StatusNotFound,
			expectedField:  "detail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			mockRepo := repository.NewMockAuctionDB(ctrl)
			tt.mockSetup(mockRepo)

			h := NewBidHandler(auction.NewService(mockRepo))
			router := gin.New()
			router.POST("/api/subastas/:id_subasta/pujas", injectCaller(tt.caller), h.PlaceBidHandler)

			var payload []byte
			switch b := tt.body.(type) {
			case string:
				payload = []byte(b)
			default:
				var err error
				payload, err = json.Marshal(b)
				require.NoError(t, err)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.expectedField != "" {
				require.Contains(t, body, tt.expectedField)
				return
			}
			require.EqualValues(t, 10, body["id"])
			require.EqualValues(t, 1, body["auction"])
		})
	}
}

// A bid of exactly the current maximum is rejected with the strict-increase
// message keyed on the amount field.
func TestPlaceBidHandler_EqualToCurrentHigh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := repository.NewMockAuctionDB(ctrl)

	openClose := time.Now().UTC().Add(30 * 24 * time.Hour)
	mockRepo.EXPECT().GetAuctionByID(uint(1)).Return(storedAuction(1, 7, openClose), nil)
	mockRepo.EXPECT().PlaceBid(gomock.Any()).
		Return(fmt.Errorf("place bid: %w", auctionerrors.ErrBelowCurrentHigh))

	h := NewBidHandler(auction.NewService(mockRepo))
	router := gin.New()
	router.POST("/api/subastas/:id_subasta/pujas", injectCaller(authz.Caller{ID: 3, Authenticated: true}), h.PlaceBidHandler)

	payload, err := json.Marshal(helpers.BidRequest{Amount: mustDec(t, "75.00")})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/subastas/1/pujas", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "cantidad")
}
