package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/services/auction/helpers"
)

type RatingServiceInterface interface {
	CreateRating(caller authz.Caller, auctionID uint, value int) (models.Rating, error)
	GetRating(auctionID, ratingID uint) (models.Rating, error)
	ListRatings(auctionID uint) ([]models.Rating, error)
	ListRatingsByUser(userID uint) ([]models.Rating, error)
	UpdateRating(caller authz.Caller, auctionID, ratingID uint, value int) (models.Rating, error)
	DeleteRating(caller authz.Caller, auctionID, ratingID uint) error
	UserRating(caller authz.Caller, auctionID uint) (models.Rating, error)
	UpdateUserRating(caller authz.Caller, auctionID uint, value int) (models.Rating, error)
	DeleteUserRating(caller authz.Caller, auctionID uint) error
}

type RatingHandler struct {
	service RatingServiceInterface
}

func NewRatingHandler(service RatingServiceInterface) *RatingHandler {
	return &RatingHandler{service: service}
}

// CreateRatingHandler handles POST /api/subastas/:id_subasta/ratings
func (h *RatingHandler) CreateRatingHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	var req helpers.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateRatingHandler", err)
		return
	}
	rating, err := h.service.CreateRating(helpers.CallerFrom(c), auctionID, req.Value)
	if err != nil {
		helpers.RespondError(c, "CreateRatingHandler", err)
		return
	}
	c.JSON(http.StatusCreated, rating)
	helpers.LogSuccess("CreateRatingHandler", "rating created successfully", map[string]any{
		"rating_id":  rating.ID,
		"auction_id": rating.AuctionID,
		"value":      rating.Value,
	})
}

// ListRatingsHandler handles GET /api/subastas/:id_subasta/ratings
func (h *RatingHandler) ListRatingsHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	ratings, err := h.service.ListRatings(auctionID)
	if err != nil {
		helpers.RespondError(c, "ListRatingsHandler", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(ratings))
	helpers.LogSuccess("ListRatingsHandler", "ratings retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(ratings),
	})
}

// GetRatingHandler handles GET /api/subastas/:id_subasta/ratings/:id_rating
func (h *RatingHandler) GetRatingHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	ratingID, ok := helpers.ParseID(c, "id_rating")
	if !ok {
		return
	}
	rating, err := h.service.GetRating(auctionID, ratingID)
	if err != nil {
		helpers.RespondError(c, "GetRatingHandler", err)
		return
	}
	c.JSON(http.StatusOK, rating)
	helpers.LogSuccess("GetRatingHandler", "rating retrieved successfully", map[string]any{"rating_id": rating.ID})
}

// UpdateRatingHandler handles PUT /api/subastas/:id_subasta/ratings/:id_rating
func (h *RatingHandler) UpdateRatingHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	ratingID, ok := helpers.ParseID(c, "id_rating")
	if !ok {
		return
	}
	var req helpers.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateRatingHandler", err)
		return
	}
	rating, err := h.service.UpdateRating(helpers.CallerFrom(c), auctionID, ratingID, req.Value)
	if err != nil {
		helpers.RespondError(c, "UpdateRatingHandler", err)
		return
	}
	c.JSON(http.StatusOK, rating)
	helpers.LogSuccess("UpdateRatingHandler", "rating updated successfully", map[string]any{"rating_id": rating.ID})
}

// DeleteRatingHandler handles DELETE /api/subastas/:id_subasta/ratings/:id_rating
func (h *RatingHandler) DeleteRatingHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	ratingID, ok := helpers.ParseID(c, "id_rating")
	if !ok {
		return
	}
	if err := h.service.DeleteRating(helpers.CallerFrom(c), auctionID, ratingID); err != nil {
		helpers.RespondError(c, "DeleteRatingHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteRatingHandler", "rating deleted successfully", map[string]any{"rating_id": ratingID})
}

// MyRatingHandler handles GET /api/subastas/:id_subasta/mi-rating
func (h *RatingHandler) MyRatingHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	rating, err := h.service.UserRating(helpers.CallerFrom(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "MyRatingHandler", err)
		return
	}
	c.JSON(http.StatusOK, rating)
	helpers.LogSuccess("MyRatingHandler", "rating retrieved successfully", map[string]any{"rating_id": rating.ID})
}

// UpdateMyRatingHandler handles PUT /api/subastas/:id_subasta/mi-rating
func (h *RatingHandler) UpdateMyRatingHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	var req helpers.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateMyRatingHandler", err)
		return
	}
	rating, err := h.service.UpdateUserRating(helpers.CallerFrom(c), auctionID, req.Value)
	if err != nil {
		helpers.RespondError(c, "UpdateMyRatingHandler", err)
		return
	}
	c.JSON(http.StatusOK, rating)
	helpers.LogSuccess("UpdateMyRatingHandler", "rating updated successfully", map[string]any{"rating_id": rating.ID})
}

// DeleteMyRatingHandler handles DELETE /api/subastas/:id_subasta/mi-rating
func (h *RatingHandler) DeleteMyRatingHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	if err := h.service.DeleteUserRating(helpers.CallerFrom(c), auctionID); err != nil {
		helpers.RespondError(c, "DeleteMyRatingHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteMyRatingHandler", "rating deleted successfully", map[string]any{"auction_id": auctionID})
}

// MyRatingsHandler handles GET /api/misValoraciones
func (h *RatingHandler) MyRatingsHandler(c *gin.Context) {
	caller := helpers.CallerFrom(c)
	ratings, err := h.service.ListRatingsByUser(caller.ID)
	if err != nil {
		helpers.RespondError(c, "MyRatingsHandler", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(ratings))
	helpers.LogSuccess("MyRatingsHandler", "ratings retrieved successfully", map[string]any{
		"user_id": caller.ID,
		"count":   len(ratings),
	})
}
