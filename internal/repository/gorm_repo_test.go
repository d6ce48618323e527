package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return NewGormRepo(db)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func seedUser(t *testing.T, repo *GormRepo, username string) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.CreateUser(&u))
	return u
}

func seedCategory(t *testing.T, repo *GormRepo, name string) models.Category {
	t.Helper()
	cat := models.Category{Name: name}
	require.NoError(t, repo.CreateCategory(&cat))
	return cat
}

func seedAuction(t *testing.T, repo *GormRepo, owner models.User, cat models.Category, startingPrice string) models.Auction {
	t.Helper()
	a := models.Auction{
		Title:         "vintage radio",
		Description:   "a working vintage radio",
		StartingPrice: dec(t, startingPrice),
		Rating:        dec(t, "1.00"),
		Stock:         1,
		Brand:         "Philips",
		CategoryID:    cat.ID,
		CreatedAt:     time.Now().UTC(),
		CloseAt:       time.Now().UTC().Add(30 * 24 * time.Hour),
		Status:        models.StatusOpen,
		OwnerID:       &owner.ID,
	}
	require.NoError(t, repo.CreateAuction(&a))
	return a
}

func placeBid(t *testing.T, repo *GormRepo, auction models.Auction, bidder models.User, amount string) models.Bid {
	t.Helper()
	b := models.Bid{
		AuctionID: auction.ID,
		Amount:    dec(t, amount),
		CreatedAt: time.Now().UTC(),
		BidderID:  &bidder.ID,
	}
	require.NoError(t, repo.PlaceBid(&b))
	return b
}

func TestGormRepo_PlaceBid_StrictIncrease(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	bidder := seedUser(t, repo, "bea")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")

	// First bid must exceed the starting price, equality included.
	b := models.Bid{AuctionID: auction.ID, Amount: dec(t, "100.00"), BidderID: &bidder.ID}
	require.ErrorIs(t, repo.PlaceBid(&b), auctionerrors.ErrBelowStartingPrice)

	placeBid(t, repo, auction, bidder, "150.00")

	// Later bids must exceed the current maximum, equality included.
	b = models.Bid{AuctionID: auction.ID, Amount: dec(t, "150.00"), BidderID: &bidder.ID}
	require.ErrorIs(t, repo.PlaceBid(&b), auctionerrors.ErrBelowCurrentHigh)
	b = models.Bid{AuctionID: auction.ID, Amount: dec(t, "149.99"), BidderID: &bidder.ID}
	require.ErrorIs(t, repo.PlaceBid(&b), auctionerrors.ErrBelowCurrentHigh)

	placeBid(t, repo, auction, bidder, "150.01")

	max, found, err := repo.MaxBidAmount(auction.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, max.Equal(dec(t, "150.01")))
}

func TestGormRepo_PlaceBid_UnknownAuction(t *testing.T) {
	repo := newTestRepo(t)
	b := models.Bid{AuctionID: 99, Amount: dec(t, "10.00")}
	require.ErrorIs(t, repo.PlaceBid(&b), auctionerrors.ErrAuctionNotFound)
}

func TestGormRepo_MaxBidAmount_NoBids(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")

	_, found, err := repo.MaxBidAmount(auction.ID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestGormRepo_ListBidsByAuction_HighestFirst(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	bidder := seedUser(t, repo, "bea")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")

	placeBid(t, repo, auction, bidder, "110.00")
	placeBid(t, repo, auction, bidder, "120.00")
	placeBid(t, repo, auction, bidder, "130.00")

	bids, err := repo.ListBidsByAuction(auction.ID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	require.True(t, bids[0].Amount.Equal(dec(t, "130.00")))
	require.True(t, bids[2].Amount.Equal(dec(t, "110.00")))
}

func TestGormRepo_MeanRating(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")

	mean, count, err := repo.MeanRating(auction.ID)
	require.NoError(t, err)
	require.Zero(t, count)
	require.True(t, mean.IsZero())

	for i, value := range []int{1, 2, 2} {
		rater := seedUser(t, repo, "rater"+string(rune('a'+i)))
		require.NoError(t, repo.CreateRating(&models.Rating{
			AuctionID: auction.ID,
			UserID:    rater.ID,
			Value:     value,
		}))
	}

	mean, count, err = repo.MeanRating(auction.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
	require.True(t, mean.Equal(dec(t, "1.67")), "got %s", mean)
}

func TestGormRepo_CreateRating_Duplicate(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	rater := seedUser(t, repo, "bea")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")

	require.NoError(t, repo.CreateRating(&models.Rating{AuctionID: auction.ID, UserID: rater.ID, Value: 4}))

	err := repo.CreateRating(&models.Rating{AuctionID: auction.ID, UserID: rater.ID, Value: 5})
	require.ErrorIs(t, err, auctionerrors.ErrDuplicateRating)

	// The same user may rate a different auction.
	other := seedAuction(t, repo, owner, cat, "200.00")
	require.NoError(t, repo.CreateRating(&models.Rating{AuctionID: other.ID, UserID: rater.ID, Value: 5}))
}

func TestGormRepo_DeleteAuction_Cascades(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	bidder := seedUser(t, repo, "bea")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")

	placeBid(t, repo, auction, bidder, "110.00")
	require.NoError(t, repo.CreateRating(&models.Rating{AuctionID: auction.ID, UserID: bidder.ID, Value: 4}))
	require.NoError(t, repo.CreateComment(&models.Comment{AuctionID: auction.ID, UserID: bidder.ID, Title: "t", Text: "x"}))

	require.NoError(t, repo.DeleteAuction(auction.ID))

	_, err := repo.GetAuctionByID(auction.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	bids, err := repo.ListBidsByAuction(auction.ID)
	require.NoError(t, err)
	require.Empty(t, bids)
	ratings, err := repo.ListRatingsByAuction(auction.ID)
	require.NoError(t, err)
	require.Empty(t, ratings)
	comments, err := repo.ListCommentsByAuction(auction.ID)
	require.NoError(t, err)
	require.Empty(t, comments)
}

func TestGormRepo_DeleteCategory_CascadesToAuctions(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	bidder := seedUser(t, repo, "bea")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")
	placeBid(t, repo, auction, bidder, "110.00")

	require.NoError(t, repo.DeleteCategory(cat.ID))

	_, err := repo.GetAuctionByID(auction.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	bids, err := repo.ListBidsByAuction(auction.ID)
	require.NoError(t, err)
	require.Empty(t, bids)
}

func TestGormRepo_DeleteUser_CascadesToOwnedRows(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	bidder := seedUser(t, repo, "bea")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")
	placeBid(t, repo, auction, bidder, "110.00")

	require.NoError(t, repo.DeleteUser(owner.ID))

	_, err := repo.GetUserByID(owner.ID)
	require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	_, err = repo.GetAuctionByID(auction.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

func TestGormRepo_CreateUser_UniqueViolations(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "ana")

	dup := models.User{Username: "ana", Email: "other@example.com", PasswordHash: "x"}
	require.ErrorIs(t, repo.CreateUser(&dup), auctionerrors.ErrUsernameTaken)

	dup = models.User{Username: "carla", Email: "ana@example.com", PasswordHash: "x"}
	require.ErrorIs(t, repo.CreateUser(&dup), auctionerrors.ErrEmailTaken)
}

func TestGormRepo_SearchAuctions(t *testing.T) {
	repo := newTestRepo(t)
	ana := seedUser(t, repo, "ana")
	bea := seedUser(t, repo, "bea")
	electronics := seedCategory(t, repo, "Electronics")
	books := seedCategory(t, repo, "Books")

	radio := seedAuction(t, repo, ana, electronics, "100.00")
	novel := models.Auction{
		Title:         "first edition novel",
		Description:   "signed copy",
		StartingPrice: dec(t, "40.00"),
		Rating:        dec(t, "4.50"),
		Stock:         1,
		Brand:         "Penguin",
		CategoryID:    books.ID,
		CreatedAt:     time.Now().UTC(),
		CloseAt:       time.Now().UTC().Add(30 * 24 * time.Hour),
		Status:        models.StatusOpen,
		OwnerID:       &bea.ID,
	}
	require.NoError(t, repo.CreateAuction(&novel))

	t.Run("text_match_is_case_insensitive", func(t *testing.T) {
		out, err := repo.SearchAuctions(AuctionFilter{Search: "PHILIPS"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, radio.ID, out[0].ID)
	})

	t.Run("category_filter", func(t *testing.T) {
		out, err := repo.SearchAuctions(AuctionFilter{CategoryID: books.ID})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, novel.ID, out[0].ID)
	})

	t.Run("username_filter", func(t *testing.T) {
		out, err := repo.SearchAuctions(AuctionFilter{Username: "bea"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, novel.ID, out[0].ID)
	})

	t.Run("rating_floor_is_strict", func(t *testing.T) {
		min := dec(t, "4.50")
		out, err := repo.SearchAuctions(AuctionFilter{RatingMin: &min})
		require.NoError(t, err)
		require.Empty(t, out) // 4.50 is not > 4.50

		min = dec(t, "4.00")
		out, err = repo.SearchAuctions(AuctionFilter{RatingMin: &min})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, novel.ID, out[0].ID)
	})

	t.Run("ascending_id_order", func(t *testing.T) {
		out, err := repo.SearchAuctions(AuctionFilter{})
		require.NoError(t, err)
		require.Len(t, out, 2)
		require.Less(t, out[0].ID, out[1].ID)
	})
}

func TestGormRepo_NotFoundMappings(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetAuctionByID(99)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	_, err = repo.GetCategoryByID(99)
	require.ErrorIs(t, err, auctionerrors.ErrCategoryNotFound)
	_, err = repo.GetBidByID(1, 99)
	require.ErrorIs(t, err, auctionerrors.ErrBidNotFound)
	_, err = repo.GetRatingByID(1, 99)
	require.ErrorIs(t, err, auctionerrors.ErrRatingNotFound)
	_, err = repo.GetCommentByID(1, 99)
	require.ErrorIs(t, err, auctionerrors.ErrCommentNotFound)
	_, err = repo.GetUserByUsername("ghost")
	require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	require.ErrorIs(t, repo.DeleteBid(1, 99), auctionerrors.ErrBidNotFound)
	require.ErrorIs(t, repo.DeleteAuction(99), auctionerrors.ErrAuctionNotFound)
}

func TestGormRepo_UpdateAuctionStatusAndRating(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "ana")
	cat := seedCategory(t, repo, "Electronics")
	auction := seedAuction(t, repo, owner, cat, "100.00")

	require.NoError(t, repo.UpdateAuctionStatus(auction.ID, models.StatusClosed))
	require.NoError(t, repo.UpdateAuctionRating(auction.ID, dec(t, "4.33")))

	got, err := repo.GetAuctionByID(auction.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusClosed, got.Status)
	require.True(t, got.Rating.Equal(dec(t, "4.33")))
}
