package repository

import (
	"github.com/shopspring/decimal"

	"pacomprar/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionFilter narrows an auction search. Zero values mean "no filter".
// Effective-status and price-range filtering happen in the service layer,
// since both are derived values (see the lifecycle evaluator and price
// projector); everything here maps directly to SQL.
type AuctionFilter struct {
	Search     string
	CategoryID uint
	Username   string
	RatingMin  *decimal.Decimal
}

// AuctionDB defines durable storage for the auction system.
type AuctionDB interface {
	// Categories
	CreateCategory(cat *models.Category) error
	GetCategoryByID(id uint) (models.Category, error)
	ListCategories() ([]models.Category, error)
	UpdateCategory(cat *models.Category) error
	DeleteCategory(id uint) error
	CategoryExists(id uint) (bool, error)

	// Auctions
	CreateAuction(a *models.Auction) error
	GetAuctionByID(id uint) (models.Auction, error)
	SearchAuctions(filter AuctionFilter) ([]models.Auction, error)
	ListAuctionsByOwner(userID uint) ([]models.Auction, error)
	UpdateAuction(a *models.Auction) error
	UpdateAuctionStatus(id uint, status string) error
	UpdateAuctionRating(id uint, rating decimal.Decimal) error
	DeleteAuction(id uint) error

	// Bids. PlaceBid re-checks the current maximum under a write lock on the
	// auction row before inserting, so two racing bids cannot both be admitted
	// as the new maximum.
	PlaceBid(b *models.Bid) error
	GetBidByID(auctionID, bidID uint) (models.Bid, error)
	ListBidsByAuction(auctionID uint) ([]models.Bid, error)
	ListBidsByUser(userID uint) ([]models.Bid, error)
	MaxBidAmount(auctionID uint) (decimal.Decimal, bool, error)
	UpdateBid(b *models.Bid) error
	DeleteBid(auctionID, bidID uint) error

	// Ratings. CreateRating maps a (user, auction) uniqueness violation to
	// auctionerrors.ErrDuplicateRating.
	CreateRating(r *models.Rating) error
	GetRatingByID(auctionID, ratingID uint) (models.Rating, error)
	GetRatingByUser(auctionID, userID uint) (models.Rating, error)
	ListRatingsByAuction(auctionID uint) ([]models.Rating, error)
	ListRatingsByUser(userID uint) ([]models.Rating, error)
	UpdateRating(r *models.Rating) error
	DeleteRating(auctionID, ratingID uint) error
	MeanRating(auctionID uint) (decimal.Decimal, int64, error)

	// Comments
	CreateComment(cm *models.Comment) error
	GetCommentByID(auctionID, commentID uint) (models.Comment, error)
	ListCommentsByAuction(auctionID uint) ([]models.Comment, error)
	ListCommentsByUser(userID uint) ([]models.Comment, error)
	UpdateComment(cm *models.Comment) error
	DeleteComment(auctionID, commentID uint) error

	// Users
	CreateUser(u *models.User) error
	GetUserByID(id uint) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(u *models.User) error
	DeleteUser(id uint) error
}
