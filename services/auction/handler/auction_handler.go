package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	auction "pacomprar/internal/auctionService"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/services/auction/helpers"
)

type AuctionServiceInterface interface {
	CreateAuction(caller authz.Caller, in auction.AuctionInput) (models.Auction, error)
	GetAuction(id uint) (models.Auction, error)
	UpdateAuction(caller authz.Caller, id uint, in auction.AuctionInput) (models.Auction, error)
	DeleteAuction(caller authz.Caller, id uint) error
	SearchAuctions(params auction.SearchParams) ([]models.Auction, error)
	ListAuctionsByOwner(userID uint) ([]models.Auction, error)
	CurrentPrice(a models.Auction) (decimal.Decimal, error)
	ListBids(auctionID uint) ([]models.Bid, error)
	ListRatings(auctionID uint) ([]models.Rating, error)
	ListComments(auctionID uint) ([]models.Comment, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

func (h *AuctionHandler) respondList(c *gin.Context, handlerName string, auctions []models.Auction) {
	resp := make([]helpers.AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		price, err := h.service.CurrentPrice(a)
		if err != nil {
			helpers.RespondError(c, handlerName, err)
			return
		}
		resp = append(resp, helpers.NewAuctionResponse(a, price))
	}
	c.JSON(http.StatusOK, resp)
	helpers.LogSuccess(handlerName, "auctions retrieved successfully", map[string]any{"count": len(resp)})
}

// ListAuctionsHandler handles GET /api/subastas
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	params := auction.SearchParams{
		Search:    c.Query("search"),
		Category:  c.Query("categoria"),
		Status:    c.Query("estado"),
		Username:  c.Query("username"),
		RatingMin: c.Query("rating_min"),
		PriceMin:  c.Query("precio_min"),
		PriceMax:  c.Query("precio_max"),
	}
	auctions, err := h.service.SearchAuctions(params)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err)
		return
	}
	h.respondList(c, "ListAuctionsHandler", auctions)
}

// CreateAuctionHandler handles POST /api/subastas
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.AuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	a, err := h.service.CreateAuction(helpers.CallerFrom(c), auctionInput(req))
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err)
		return
	}
	price, err := h.service.CurrentPrice(a)
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err)
		return
	}
	c.JSON(http.StatusCreated, helpers.NewAuctionResponse(a, price))
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": a.ID,
		"owner_id":   a.OwnerID,
	})
}

// GetAuctionHandler handles GET /api/subastas/:id_subasta. The detail view
// nests the auction's bids, ratings and comments.
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	a, err := h.service.GetAuction(id)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err)
		return
	}
	price, err := h.service.CurrentPrice(a)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err)
		return
	}
	bids, err := h.service.ListBids(id)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err)
		return
	}
	ratings, err := h.service.ListRatings(id)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err)
		return
	}
	comments, err := h.service.ListComments(id)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err)
		return
	}
	resp := struct {
		helpers.AuctionResponse
		Bids     []models.Bid     `json:"bids"`
		Ratings  []models.Rating  `json:"ratings"`
		Comments []models.Comment `json:"comments"`
	}{
		AuctionResponse: helpers.NewAuctionResponse(a, price),
		Bids:            emptyIfNil(bids),
		Ratings:         emptyIfNil(ratings),
		Comments:        emptyIfNil(comments),
	}
	c.JSON(http.StatusOK, resp)
	helpers.LogSuccess("GetAuctionHandler", "auction retrieved successfully", map[string]any{"auction_id": a.ID})
}

// UpdateAuctionHandler handles PUT /api/subastas/:id_subasta
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	var req helpers.AuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}
	a, err := h.service.UpdateAuction(helpers.CallerFrom(c), id, auctionInput(req))
	if err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err)
		return
	}
	price, err := h.service.CurrentPrice(a)
	if err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err)
		return
	}
	c.JSON(http.StatusOK, helpers.NewAuctionResponse(a, price))
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated successfully", map[string]any{"auction_id": a.ID})
}

// DeleteAuctionHandler handles DELETE /api/subastas/:id_subasta
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	if err := h.service.DeleteAuction(helpers.CallerFrom(c), id); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{"auction_id": id})
}

// MyAuctionsHandler handles GET /api/misSubastas
func (h *AuctionHandler) MyAuctionsHandler(c *gin.Context) {
	caller := helpers.CallerFrom(c)
	auctions, err := h.service.ListAuctionsByOwner(caller.ID)
	if err != nil {
		helpers.RespondError(c, "MyAuctionsHandler", err)
		return
	}
	h.respondList(c, "MyAuctionsHandler", auctions)
}

func auctionInput(req helpers.AuctionRequest) auction.AuctionInput {
	return auction.AuctionInput{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		Rating:        req.Rating,
		Stock:         req.Stock,
		Brand:         req.Brand,
		CategoryID:    req.Category,
		Image:         req.Image,
		CloseAt:       req.CloseAt,
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
