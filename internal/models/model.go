package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Auction status values. The stored column is a lazily refreshed projection
// of CloseAt versus the clock; it is never trusted without re-evaluation.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// User represents a registered account. Admins may manage any resource.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	BirthDate    time.Time `json:"birth_date"`
	Locality     string    `gorm:"size:100" json:"locality"`
	Municipality string    `gorm:"size:100" json:"municipality"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category groups auctions. Deleting a category cascades to its auctions.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

// Auction is an item open for timed competitive bidding.
type Auction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Title         string          `gorm:"size:150;not null" json:"title"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	StartingPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"starting_price"`
	Rating        decimal.Decimal `gorm:"type:numeric(3,2);not null;default:1.0" json:"rating"`
	Stock         int             `gorm:"not null" json:"stock"`
	Brand         string          `gorm:"size:100;not null" json:"brand"`
	CategoryID    uint            `gorm:"not null;index" json:"category"`
	Category      *Category       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Image         string          `gorm:"size:200" json:"image"`
	CreatedAt     time.Time       `json:"created_at"`
	CloseAt       time.Time       `gorm:"not null" json:"close_at"`
	Status        string          `gorm:"size:10;not null;default:open" json:"status"`
	// OwnerID is nullable: rows imported before ownership tracking have none.
	OwnerID *uint `gorm:"index" json:"owner"`
	Owner   *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Bid is a monetary offer against an auction. Amounts admitted for one
// auction form a strictly increasing sequence over time.
type Bid struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AuctionID uint            `gorm:"not null;index" json:"auction"`
	Auction   *Auction        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	BidderID  *uint           `gorm:"index" json:"bidder"`
	Bidder    *User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Rating is a 1-5 score a user assigns to an auction, at most one per
// (user, auction) pair. The composite unique index enforces the pair at the
// storage consistency boundary.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Value     int       `gorm:"not null" json:"value"`
	AuctionID uint      `gorm:"not null;uniqueIndex:idx_rating_auction_user" json:"auction"`
	Auction   *Auction  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_auction_user" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a free-text note a user attaches to an auction.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuctionID uint      `gorm:"not null;index" json:"auction"`
	Auction   *Auction  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
