package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/services/auction/helpers"
)

type BidServiceInterface interface {
	PlaceBid(caller authz.Caller, auctionID uint, amount decimal.Decimal) (models.Bid, error)
	GetBid(auctionID, bidID uint) (models.Bid, error)
	ListBids(auctionID uint) ([]models.Bid, error)
	ListBidsByUser(userID uint) ([]models.Bid, error)
	UpdateBid(caller authz.Caller, auctionID, bidID uint, amount decimal.Decimal) (models.Bid, error)
	DeleteBid(caller authz.Caller, auctionID, bidID uint) error
}

type BidHandler struct {
	service BidServiceInterface
}

func NewBidHandler(service BidServiceInterface) *BidHandler {
	return &BidHandler{service: service}
}

// PlaceBidHandler handles POST /api/subastas/:id_subasta/pujas
func (h *BidHandler) PlaceBidHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	var req helpers.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}
	bid, err := h.service.PlaceBid(helpers.CallerFrom(c), auctionID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err)
		return
	}
	c.JSON(http.StatusCreated, bid)
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": bid.AuctionID,
		"amount":     bid.Amount.String(),
	})
}

// ListBidsHandler handles GET /api/subastas/:id_subasta/pujas
func (h *BidHandler) ListBidsHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	bids, err := h.service.ListBids(auctionID)
	if err != nil {
		helpers.RespondError(c, "ListBidsHandler", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(bids))
	helpers.LogSuccess("ListBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetBidHandler handles GET /api/subastas/:id_subasta/pujas/:id_puja
func (h *BidHandler) GetBidHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	bidID, ok := helpers.ParseID(c, "id_puja")
	if !ok {
		return
	}
	bid, err := h.service.GetBid(auctionID, bidID)
	if err != nil {
		helpers.RespondError(c, "GetBidHandler", err)
		return
	}
	c.JSON(http.StatusOK, bid)
	helpers.LogSuccess("GetBidHandler", "bid retrieved successfully", map[string]any{"bid_id": bid.ID})
}

// UpdateBidHandler handles PUT /api/subastas/:id_subasta/pujas/:id_puja
func (h *BidHandler) UpdateBidHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	bidID, ok := helpers.ParseID(c, "id_puja")
	if !ok {
		return
	}
	var req helpers.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateBidHandler", err)
		return
	}
	bid, err := h.service.UpdateBid(helpers.CallerFrom(c), auctionID, bidID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "UpdateBidHandler", err)
		return
	}
	c.JSON(http.StatusOK, bid)
	helpers.LogSuccess("UpdateBidHandler", "bid updated successfully", map[string]any{"bid_id": bid.ID})
}

// DeleteBidHandler handles DELETE /api/subastas/:id_subasta/pujas/:id_puja
func (h *BidHandler) DeleteBidHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	bidID, ok := helpers.ParseID(c, "id_puja")
	if !ok {
		return
	}
	if err := h.service.DeleteBid(helpers.CallerFrom(c), auctionID, bidID); err != nil {
		helpers.RespondError(c, "DeleteBidHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteBidHandler", "bid deleted successfully", map[string]any{"bid_id": bidID})
}

// MyBidsHandler handles GET /api/misPujas
func (h *BidHandler) MyBidsHandler(c *gin.Context) {
	caller := helpers.CallerFrom(c)
	bids, err := h.service.ListBidsByUser(caller.ID)
	if err != nil {
		helpers.RespondError(c, "MyBidsHandler", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(bids))
	helpers.LogSuccess("MyBidsHandler", "bids retrieved successfully", map[string]any{
		"user_id": caller.ID,
		"count":   len(bids),
	})
}
