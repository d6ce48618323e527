package auctionerrors

import "errors"

// Not-found errors, one per entity kind.
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBidNotFound      = errors.New("bid not found")
	ErrRatingNotFound   = errors.New("rating not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Validation errors: malformed or out-of-range input.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrSearchTooShort = errors.New("search term must be at least 3 characters")
	ErrInvalidNumber  = errors.New("value must be a positive number")
	ErrInvalidRange   = errors.New("minimum price must not exceed maximum price")
	ErrCloseTooSoon   = errors.New("close time must be at least 15 days after creation")
	ErrInvalidRating  = errors.New("rating value must be between 1 and 5")
)

// State-conflict errors: the operation is well-formed but the current
// state of the auction forbids it.
var (
	ErrAuctionClosed      = errors.New("auction is closed")
	ErrNonPositiveAmount  = errors.New("bid amount must be positive")
	ErrBelowStartingPrice = errors.New("bid must exceed the starting price")
	ErrBelowCurrentHigh   = errors.New("bid must exceed the current highest bid")
	ErrDuplicateRating    = errors.New("rating already exists for this user and auction")
)

// Authentication and authorization errors.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrEmailTaken         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain letters and digits")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)
