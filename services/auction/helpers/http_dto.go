package helpers

import (
	"time"

	"github.com/shopspring/decimal"

	"pacomprar/internal/models"
)

// Request/Response DTOs

type AuctionRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	StartingPrice decimal.Decimal `json:"starting_price" binding:"required"`
	Rating        decimal.Decimal `json:"rating"`
	Stock         int             `json:"stock" binding:"required"`
	Brand         string          `json:"brand" binding:"required"`
	Category      uint            `json:"category" binding:"required"`
	Image         string          `json:"image"`
	CloseAt       time.Time       `json:"close_at" binding:"required"`
}

// AuctionResponse decorates the stored auction with its derived values: the
// current price projection and the category name.
type AuctionResponse struct {
	models.Auction
	CurrentPrice decimal.Decimal `json:"current_price"`
	CategoryName string          `json:"category_name,omitempty"`
}

func NewAuctionResponse(a models.Auction, price decimal.Decimal) AuctionResponse {
	resp := AuctionResponse{Auction: a, CurrentPrice: price}
	if a.Category != nil {
		resp.CategoryName = a.Category.Name
	}
	return resp
}

type BidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type RatingRequest struct {
	Value int `json:"value" binding:"required"`
}

type CommentRequest struct {
	Title string `json:"title" binding:"required"`
	Text  string `json:"text" binding:"required"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}
