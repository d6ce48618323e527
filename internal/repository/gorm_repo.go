package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/models"
)

// GormRepo implements AuctionDB on GORM.
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo wraps an already opened *gorm.DB.
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Open connects to Postgres and runs migrations.
func Open(dsn string) (*GormRepo, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return NewGormRepo(db), nil
}

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Auction{},
		&models.Bid{},
		&models.Rating{},
		&models.Comment{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// isUniqueViolation detects unique-index conflicts across postgres and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// Categories

func (r *GormRepo) CreateCategory(cat *models.Category) error {
	if err := r.db.Create(cat).Error; err != nil {
		return fmt.Errorf("create category %q: %w", cat.Name, err)
	}
	return nil
}

func (r *GormRepo) GetCategoryByID(id uint) (models.Category, error) {
	var cat models.Category
	if err := r.db.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, fmt.Errorf("get category %d: %w", id, auctionerrors.ErrCategoryNotFound)
		}
		return models.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return cat, nil
}

func (r *GormRepo) ListCategories() ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.Order("id").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (r *GormRepo) UpdateCategory(cat *models.Category) error {
	if err := r.db.Save(cat).Error; err != nil {
		return fmt.Errorf("update category %d: %w", cat.ID, err)
	}
	return nil
}

// DeleteCategory removes a category and cascades to its auctions (and their
// bids, ratings and comments).
func (r *GormRepo) DeleteCategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var auctionIDs []uint
		if err := tx.Model(&models.Auction{}).Where("category_id = ?", id).Pluck("id", &auctionIDs).Error; err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		if len(auctionIDs) > 0 {
			if err := deleteAuctionChildren(tx, auctionIDs); err != nil {
				return fmt.Errorf("delete category %d: %w", id, err)
			}
			if err := tx.Where("category_id = ?", id).Delete(&models.Auction{}).Error; err != nil {
				return fmt.Errorf("delete category %d: %w", id, err)
			}
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete category %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete category %d: %w", id, auctionerrors.ErrCategoryNotFound)
		}
		return nil
	})
}

func (r *GormRepo) CategoryExists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check category %d: %w", id, err)
	}
	return count > 0, nil
}

// Auctions

func (r *GormRepo) CreateAuction(a *models.Auction) error {
	if err := r.db.Create(a).Error; err != nil {
		return fmt.Errorf("create auction %q: %w", a.Title, err)
	}
	return nil
}

func (r *GormRepo) GetAuctionByID(id uint) (models.Auction, error) {
	var a models.Auction
	if err := r.db.Preload("Category").First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Auction{}, fmt.Errorf("get auction %d: %w", id, auctionerrors.ErrAuctionNotFound)
		}
		return models.Auction{}, fmt.Errorf("get auction %d: %w", id, err)
	}
	return a, nil
}

func (r *GormRepo) SearchAuctions(filter AuctionFilter) ([]models.Auction, error) {
	q := r.db.Model(&models.Auction{})
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?", term, term, term)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Username != "" {
		q = q.Joins("JOIN users ON users.id = auctions.owner_id").Where("users.username = ?", filter.Username)
	}
	if filter.RatingMin != nil {
		q = q.Where("rating > ?", *filter.RatingMin)
	}
	var out []models.Auction
	if err := q.Order("auctions.id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("search auctions: %w", err)
	}
	return out, nil
}

func (r *GormRepo) ListAuctionsByOwner(userID uint) ([]models.Auction, error) {
	var out []models.Auction
	if err := r.db.Where("owner_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list auctions for user %d: %w", userID, err)
	}
	return out, nil
}

func (r *GormRepo) UpdateAuction(a *models.Auction) error {
	if err := r.db.Save(a).Error; err != nil {
		return fmt.Errorf("update auction %d: %w", a.ID, err)
	}
	return nil
}

// UpdateAuctionStatus writes only the status column, the single field the
// lifecycle evaluator is allowed to persist.
func (r *GormRepo) UpdateAuctionStatus(id uint, status string) error {
	if err := r.db.Model(&models.Auction{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return fmt.Errorf("update auction %d status: %w", id, err)
	}
	return nil
}

func (r *GormRepo) UpdateAuctionRating(id uint, rating decimal.Decimal) error {
	if err := r.db.Model(&models.Auction{}).Where("id = ?", id).Update("rating", rating).Error; err != nil {
		return fmt.Errorf("update auction %d rating: %w", id, err)
	}
	return nil
}

func deleteAuctionChildren(tx *gorm.DB, auctionIDs []uint) error {
	if err := tx.Where("auction_id IN ?", auctionIDs).Delete(&models.Bid{}).Error; err != nil {
		return err
	}
	if err := tx.Where("auction_id IN ?", auctionIDs).Delete(&models.Rating{}).Error; err != nil {
		return err
	}
	return tx.Where("auction_id IN ?", auctionIDs).Delete(&models.Comment{}).Error
}

// DeleteAuction removes an auction together with its bids, ratings and
// comments.
func (r *GormRepo) DeleteAuction(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteAuctionChildren(tx, []uint{id}); err != nil {
			return fmt.Errorf("delete auction %d: %w", id, err)
		}
		res := tx.Delete(&models.Auction{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete auction %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete auction %d: %w", id, auctionerrors.ErrAuctionNotFound)
		}
		return nil
	})
}

// Bids

// PlaceBid admits a bid inside a transaction. The auction row is locked for
// update (postgres; sqlite serializes writers on its own), the current
// maximum is re-read, and the strict-increase rule is re-checked before the
// insert, so concurrent submissions cannot both pass validation.
func (r *GormRepo) PlaceBid(b *models.Bid) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var auction models.Auction
		if err := q.First(&auction, b.AuctionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("place bid on auction %d: %w", b.AuctionID, auctionerrors.ErrAuctionNotFound)
			}
			return fmt.Errorf("place bid on auction %d: %w", b.AuctionID, err)
		}
		max, found, err := maxBidAmount(tx, b.AuctionID)
		if err != nil {
			return fmt.Errorf("place bid on auction %d: %w", b.AuctionID, err)
		}
		if found {
			if b.Amount.LessThanOrEqual(max) {
				return fmt.Errorf("place bid on auction %d: %w", b.AuctionID, auctionerrors.ErrBelowCurrentHigh)
			}
		} else if b.Amount.LessThanOrEqual(auction.StartingPrice) {
			return fmt.Errorf("place bid on auction %d: %w", b.AuctionID, auctionerrors.ErrBelowStartingPrice)
		}
		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("place bid on auction %d: %w", b.AuctionID, err)
		}
		return nil
	})
}

func (r *GormRepo) GetBidByID(auctionID, bidID uint) (models.Bid, error) {
	var b models.Bid
	err := r.db.Where("auction_id = ? AND id = ?", auctionID, bidID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Bid{}, fmt.Errorf("get bid %d: %w", bidID, auctionerrors.ErrBidNotFound)
		}
		return models.Bid{}, fmt.Errorf("get bid %d: %w", bidID, err)
	}
	return b, nil
}

// ListBidsByAuction returns the auction's bids ordered by amount descending.
func (r *GormRepo) ListBidsByAuction(auctionID uint) ([]models.Bid, error) {
	var bids []models.Bid
	if err := r.db.Where("auction_id = ?", auctionID).Order("amount DESC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("list bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

func (r *GormRepo) ListBidsByUser(userID uint) ([]models.Bid, error) {
	var bids []models.Bid
	if err := r.db.Where("bidder_id = ?", userID).Order("id").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("list bids for user %d: %w", userID, err)
	}
	return bids, nil
}

func maxBidAmount(db *gorm.DB, auctionID uint) (decimal.Decimal, bool, error) {
	row := db.Model(&models.Bid{}).Where("auction_id = ?", auctionID).Select("MAX(amount)").Row()
	var max decimal.NullDecimal
	if err := row.Scan(&max); err != nil {
		return decimal.Decimal{}, false, err
	}
	if !max.Valid {
		return decimal.Decimal{}, false, nil
	}
	return max.Decimal, true, nil
}

// MaxBidAmount returns the highest bid amount for the auction, with found
// reporting whether any bid exists.
func (r *GormRepo) MaxBidAmount(auctionID uint) (decimal.Decimal, bool, error) {
	max, found, err := maxBidAmount(r.db, auctionID)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("max bid for auction %d: %w", auctionID, err)
	}
	return max, found, nil
}

func (r *GormRepo) UpdateBid(b *models.Bid) error {
	if err := r.db.Save(b).Error; err != nil {
		return fmt.Errorf("update bid %d: %w", b.ID, err)
	}
	return nil
}

func (r *GormRepo) DeleteBid(auctionID, bidID uint) error {
	res := r.db.Where("auction_id = ?", auctionID).Delete(&models.Bid{}, bidID)
	if res.Error != nil {
		return fmt.Errorf("delete bid %d: %w", bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete bid %d: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

// Ratings

func (r *GormRepo) CreateRating(rating *models.Rating) error {
	if err := r.db.Create(rating).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create rating for auction %d: %w", rating.AuctionID, auctionerrors.ErrDuplicateRating)
		}
		return fmt.Errorf("create rating for auction %d: %w", rating.AuctionID, err)
	}
	return nil
}

func (r *GormRepo) GetRatingByID(auctionID, ratingID uint) (models.Rating, error) {
	var rating models.Rating
	err := r.db.Where("auction_id = ? AND id = ?", auctionID, ratingID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Rating{}, fmt.Errorf("get rating %d: %w", ratingID, auctionerrors.ErrRatingNotFound)
		}
		return models.Rating{}, fmt.Errorf("get rating %d: %w", ratingID, err)
	}
	return rating, nil
}

func (r *GormRepo) GetRatingByUser(auctionID, userID uint) (models.Rating, error) {
	var rating models.Rating
	err := r.db.Where("auction_id = ? AND user_id = ?", auctionID, userID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Rating{}, fmt.Errorf("get rating for user %d on auction %d: %w", userID, auctionID, auctionerrors.ErrRatingNotFound)
		}
		return models.Rating{}, fmt.Errorf("get rating for user %d on auction %d: %w", userID, auctionID, err)
	}
	return rating, nil
}

func (r *GormRepo) ListRatingsByAuction(auctionID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.Where("auction_id = ?", auctionID).Order("id").Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("list ratings for auction %d: %w", auctionID, err)
	}
	return ratings, nil
}

func (r *GormRepo) ListRatingsByUser(userID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("list ratings for user %d: %w", userID, err)
	}
	return ratings, nil
}

func (r *GormRepo) UpdateRating(rating *models.Rating) error {
	if err := r.db.Save(rating).Error; err != nil {
		return fmt.Errorf("update rating %d: %w", rating.ID, err)
	}
	return nil
}

func (r *GormRepo) DeleteRating(auctionID, ratingID uint) error {
	res := r.db.Where("auction_id = ?", auctionID).Delete(&models.Rating{}, ratingID)
	if res.Error != nil {
		return fmt.Errorf("delete rating %d: %w", ratingID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete rating %d: %w", ratingID, auctionerrors.ErrRatingNotFound)
	}
	return nil
}

// MeanRating returns the arithmetic mean of the auction's rating values,
// rounded to 2 decimal places, and the number of ratings. A zero count means
// the rating set is empty and the caller should fall back to the stored value.
func (r *GormRepo) MeanRating(auctionID uint) (decimal.Decimal, int64, error) {
	row := r.db.Model(&models.Rating{}).Where("auction_id = ?", auctionID).Select("AVG(value), COUNT(*)").Row()
	var (
		avg   sql.NullFloat64
		count int64
	)
	if err := row.Scan(&avg, &count); err != nil {
		return decimal.Decimal{}, 0, fmt.Errorf("mean rating for auction %d: %w", auctionID, err)
	}
	if !avg.Valid || count == 0 {
		return decimal.Decimal{}, 0, nil
	}
	return decimal.NewFromFloat(avg.Float64).Round(2), count, nil
}

// Comments

func (r *GormRepo) CreateComment(cm *models.Comment) error {
	if err := r.db.Create(cm).Error; err != nil {
		return fmt.Errorf("create comment on auction %d: %w", cm.AuctionID, err)
	}
	return nil
}

func (r *GormRepo) GetCommentByID(auctionID, commentID uint) (models.Comment, error) {
	var cm models.Comment
	err := r.db.Where("auction_id = ? AND id = ?", auctionID, commentID).First(&cm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Comment{}, fmt.Errorf("get comment %d: %w", commentID, auctionerrors.ErrCommentNotFound)
		}
		return models.Comment{}, fmt.Errorf("get comment %d: %w", commentID, err)
	}
	return cm, nil
}

func (r *GormRepo) ListCommentsByAuction(auctionID uint) ([]models.Comment, error) {
	var cms []models.Comment
	if err := r.db.Where("auction_id = ?", auctionID).Order("id").Find(&cms).Error; err != nil {
		return nil, fmt.Errorf("list comments for auction %d: %w", auctionID, err)
	}
	return cms, nil
}

func (r *GormRepo) ListCommentsByUser(userID uint) ([]models.Comment, error) {
	var cms []models.Comment
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&cms).Error; err != nil {
		return nil, fmt.Errorf("list comments for user %d: %w", userID, err)
	}
	return cms, nil
}

func (r *GormRepo) UpdateComment(cm *models.Comment) error {
	if err := r.db.Save(cm).Error; err != nil {
		return fmt.Errorf("update comment %d: %w", cm.ID, err)
	}
	return nil
}

func (r *GormRepo) DeleteComment(auctionID, commentID uint) error {
	res := r.db.Where("auction_id = ?", auctionID).Delete(&models.Comment{}, commentID)
	if res.Error != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete comment %d: %w", commentID, auctionerrors.ErrCommentNotFound)
	}
	return nil
}

// Users

func (r *GormRepo) CreateUser(u *models.User) error {
	if err := r.db.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "email") {
				return fmt.Errorf("create user %q: %w", u.Username, auctionerrors.ErrEmailTaken)
			}
			return fmt.Errorf("create user %q: %w", u.Username, auctionerrors.ErrUsernameTaken)
		}
		return fmt.Errorf("create user %q: %w", u.Username, err)
	}
	return nil
}

func (r *GormRepo) GetUserByID(id uint) (models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("get user %d: %w", id, auctionerrors.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *GormRepo) GetUserByUsername(username string) (models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("get user %q: %w", username, auctionerrors.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

func (r *GormRepo) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *GormRepo) UpdateUser(u *models.User) error {
	if err := r.db.Save(u).Error; err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "email") {
				return fmt.Errorf("update user %d: %w", u.ID, auctionerrors.ErrEmailTaken)
			}
			return fmt.Errorf("update user %d: %w", u.ID, auctionerrors.ErrUsernameTaken)
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

// DeleteUser removes an account and everything it owns: its auctions (with
// their bids, ratings and comments) and its bids, ratings and comments on
// other auctions.
func (r *GormRepo) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var auctionIDs []uint
		if err := tx.Model(&models.Auction{}).Where("owner_id = ?", id).Pluck("id", &auctionIDs).Error; err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		if len(auctionIDs) > 0 {
			if err := deleteAuctionChildren(tx, auctionIDs); err != nil {
				return fmt.Errorf("delete user %d: %w", id, err)
			}
			if err := tx.Where("owner_id = ?", id).Delete(&models.Auction{}).Error; err != nil {
				return fmt.Errorf("delete user %d: %w", id, err)
			}
		}
		if err := tx.Where("bidder_id = ?", id).Delete(&models.Bid{}).Error; err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete user %d: %w", id, auctionerrors.ErrUserNotFound)
		}
		return nil
	})
}
