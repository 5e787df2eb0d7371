package repository

import (
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory returns a fresh, empty store for each call
type storeFactory func(t *testing.T) AuctionDB

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// seed registers users and one open auction owned by "seller"
func seed(t *testing.T, repo AuctionDB, auctionID string, users ...string) {
	t.Helper()
	ctx := context.Background()

	for _, id := range append([]string{"seller"}, users...) {
		require.NoError(t, repo.SaveUser(ctx, model.User{UserID: id, Username: id + "_name"}))
	}
	require.NoError(t, repo.CreateAuction(ctx, model.Auction{
		AuctionID:   auctionID,
		SellerID:    "seller",
		Title:       "Item " + auctionID,
		Description: "description",
		Category:    model.CategoryBooks,
		ImageURL:    "https://example.com/a.jpg",
		PublishedAt: base,
	}))
}

func newBid(auctionID, bidderID, p string, at time.Time) model.Bid {
	return model.Bid{
		BidID:     fmt.Sprintf("%s-%s-%s-%d", auctionID, bidderID, p, at.UnixNano()),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Price:     price(p),
		CreatedAt: at,
	}
}

// requirePriceMatchesLedger checks current_price == max(bid prices), or unset
// when empty, and that submission times follow acceptance order
func requirePriceMatchesLedger(t *testing.T, repo AuctionDB, auctionID string) {
	t.Helper()
	ctx := context.Background()

	a, err := repo.GetAuction(ctx, auctionID)
	require.NoError(t, err)
	bids, err := repo.GetBidsByAuction(ctx, auctionID)
	require.NoError(t, err)

	if len(bids) == 0 {
		require.False(t, a.CurrentPrice.Valid)
		return
	}
	max := bids[0].Price
	for i, b := range bids {
		if i > 0 {
			require.True(t, b.Price.GreaterThan(bids[i-1].Price), "bids must strictly increase")
			require.False(t, b.CreatedAt.Before(bids[i-1].CreatedAt),
				"bid %s at %s accepted after bid %s at %s", b.Price, b.CreatedAt, bids[i-1].Price, bids[i-1].CreatedAt)
		}
		if b.Price.GreaterThan(max) {
			max = b.Price
		}
	}
	require.True(t, a.CurrentPrice.Valid)
	require.True(t, max.Equal(a.CurrentPrice.Decimal), "current price %s, max bid %s", a.CurrentPrice.Decimal, max)
}

func runStoreContract(t *testing.T, newStore storeFactory) {
	t.Run("record_bid_rules", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1", "u2")

		tests := []struct {
			name      string
			bid       model.Bid
			wantErr   error
			wantPrice string
		}{
			{name: "first_bid", bid: newBid("a1", "u1", "10", base), wantPrice: "10"},
			{name: "too_low", bid: newBid("a1", "u2", "5", base.Add(time.Second)), wantErr: auctionerrors.ErrBidTooLow, wantPrice: "10"},
			{name: "equal", bid: newBid("a1", "u2", "10", base.Add(2*time.Second)), wantErr: auctionerrors.ErrBidTooLow, wantPrice: "10"},
			{name: "higher", bid: newBid("a1", "u2", "15", base.Add(3*time.Second)), wantPrice: "15"},
			{name: "seller", bid: newBid("a1", "seller", "100", base.Add(4*time.Second)), wantErr: auctionerrors.ErrSellerCannotBid, wantPrice: "15"},
			{name: "unknown_auction", bid: newBid("nope", "u1", "100", base), wantErr: auctionerrors.ErrAuctionNotFound, wantPrice: "15"},
			{name: "unknown_bidder", bid: newBid("a1", "ghost", "100", base), wantErr: auctionerrors.ErrUserNotFound, wantPrice: "15"},
		}

		// sequential on purpose: each case builds on the previous ledger state
		for _, tc := range tests {
			_, err := repo.RecordBid(ctx, tc.bid)
			if tc.wantErr != nil {
				require.True(t, errors.Is(err, tc.wantErr), "%s: expected %v, got %v", tc.name, tc.wantErr, err)
			} else {
				require.NoError(t, err, tc.name)
			}
			a, err := repo.GetAuction(ctx, "a1")
			require.NoError(t, err)
			require.True(t, price(tc.wantPrice).Equal(a.CurrentPrice.Decimal), tc.name)
			requirePriceMatchesLedger(t, repo, "a1")
		}

		bids, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, 2)
	})

	t.Run("no_bids_state", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1")

		bids, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Empty(t, bids)
		requirePriceMatchesLedger(t, repo, "a1")

		_, err = repo.GetHighestBid(ctx, "a1")
		require.ErrorIs(t, err, auctionerrors.ErrNoBids)
		_, err = repo.GetHighestBid(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
		_, err = repo.GetBidsByAuction(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})

	t.Run("close_auction", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1")

		_, err := repo.RecordBid(ctx, newBid("a1", "u1", "10", base))
		require.NoError(t, err)

		_, err = repo.CloseAuction(ctx, "a1", "u1")
		require.ErrorIs(t, err, auctionerrors.ErrNotSeller)
		a, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.False(t, a.Closed)

		closed, err := repo.CloseAuction(ctx, "a1", "seller")
		require.NoError(t, err)
		require.True(t, closed.Closed)
		require.Equal(t, model.StateClosed, closed.State())

		_, err = repo.CloseAuction(ctx, "a1", "seller")
		require.ErrorIs(t, err, auctionerrors.ErrAlreadyClosed)
		// ownership is checked before state, so a closed auction still answers NotSeller
		_, err = repo.CloseAuction(ctx, "a1", "u1")
		require.ErrorIs(t, err, auctionerrors.ErrNotSeller)
		_, err = repo.CloseAuction(ctx, "missing", "seller")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

		_, err = repo.RecordBid(ctx, newBid("a1", "u1", "50", base.Add(time.Second)))
		require.ErrorIs(t, err, auctionerrors.ErrAuctionClosed)
		requirePriceMatchesLedger(t, repo, "a1")

		highest, err := repo.GetHighestBid(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, "u1", highest.BidderID)
	})

	t.Run("concurrent_bids_keep_maximum", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		users := make([]string, 0, 40)
		for i := 0; i < 40; i++ {
			users = append(users, fmt.Sprintf("u%d", i))
		}
		seed(t, repo, "a1", users...)
		_, err := repo.RecordBid(ctx, newBid("a1", "u0", "15", base))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 1; i < len(users); i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p := fmt.Sprintf("%d", 15+i)
				_, err := repo.RecordBid(ctx, newBid("a1", users[i], p, base.Add(time.Duration(i)*time.Millisecond)))
				if err != nil {
					assert.ErrorIs(t, err, auctionerrors.ErrBidTooLow)
				}
			}(i)
		}
		wg.Wait()

		a, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.True(t, price(fmt.Sprintf("%d", 15+len(users)-1)).Equal(a.CurrentPrice.Decimal))
		requirePriceMatchesLedger(t, repo, "a1")
	})

	t.Run("store_stamps_submission_time", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1", "u2")

		before := time.Now().UTC()
		// the caller's times run backwards; the ledger must not
		_, err := repo.RecordBid(ctx, newBid("a1", "u1", "20", base.Add(time.Hour)))
		require.NoError(t, err)
		_, err = repo.RecordBid(ctx, newBid("a1", "u2", "25", base))
		require.NoError(t, err)

		bids, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, 2)
		for _, b := range bids {
			require.False(t, b.CreatedAt.Before(before), "bid %s stamped %s before submission", b.Price, b.CreatedAt)
		}
		requirePriceMatchesLedger(t, repo, "a1")
	})

	t.Run("concurrent_20_and_25_against_15", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u0", "u1", "u2")
		_, err := repo.RecordBid(ctx, newBid("a1", "u0", "15", base))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i, p := range []string{"20", "25"} {
			wg.Add(1)
			go func(bidder, p string) {
				defer wg.Done()
				_, _ = repo.RecordBid(ctx, newBid("a1", bidder, p, base.Add(time.Second)))
			}(fmt.Sprintf("u%d", i+1), p)
		}
		wg.Wait()

		a, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.True(t, price("25").Equal(a.CurrentPrice.Decimal))
		requirePriceMatchesLedger(t, repo, "a1")
	})

	t.Run("auction_with_bids_is_one_snapshot", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1", "u2")

		_, _, err := repo.GetAuctionWithBids(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

		a, bids, err := repo.GetAuctionWithBids(ctx, "a1")
		require.NoError(t, err)
		require.False(t, a.CurrentPrice.Valid)
		require.Empty(t, bids)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 30; i++ {
				_, err := repo.RecordBid(ctx, newBid("a1", fmt.Sprintf("u%d", i%2+1), fmt.Sprintf("%d", i), base))
				assert.NoError(t, err)
			}
		}()
		for i := 0; i < 30; i++ {
			a, bids, err := repo.GetAuctionWithBids(ctx, "a1")
			require.NoError(t, err)
			if len(bids) == 0 {
				require.False(t, a.CurrentPrice.Valid)
				continue
			}
			last := bids[len(bids)-1]
			require.True(t, last.Price.Equal(a.CurrentPrice.Decimal),
				"snapshot price %s, last bid %s", a.CurrentPrice.Decimal, last.Price)
		}
		wg.Wait()
		requirePriceMatchesLedger(t, repo, "a1")
	})

	t.Run("close_races_with_bids", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		users := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
		seed(t, repo, "a1", users...)

		var (
			wg     sync.WaitGroup
			closes int
			mu     sync.Mutex
		)
		for i, u := range users {
			wg.Add(1)
			go func(i int, u string) {
				defer wg.Done()
				_, _ = repo.RecordBid(ctx, newBid("a1", u, fmt.Sprintf("%d", 10+i), base.Add(time.Duration(i)*time.Millisecond)))
			}(i, u)
		}
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.CloseAuction(ctx, "a1", "seller"); err == nil {
					mu.Lock()
					closes++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, auctionerrors.ErrAlreadyClosed)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, closes)
		requirePriceMatchesLedger(t, repo, "a1")

		// the ledger is frozen after closing
		before, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		_, err = repo.RecordBid(ctx, newBid("a1", "u1", "1000", base.Add(time.Hour)))
		require.ErrorIs(t, err, auctionerrors.ErrAuctionClosed)
		after, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, len(before), len(after))
	})

	t.Run("list_auctions", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		require.NoError(t, repo.SaveUser(ctx, model.User{UserID: "s1", Username: "s1"}))
		require.NoError(t, repo.SaveUser(ctx, model.User{UserID: "s2", Username: "s2"}))

		for i, a := range []model.Auction{
			{AuctionID: "old", SellerID: "s1", Category: model.CategoryBooks},
			{AuctionID: "mid", SellerID: "s2", Category: model.CategoryToys},
			{AuctionID: "new", SellerID: "s1", Category: model.CategoryBooks},
		} {
			a.Title, a.Description, a.ImageURL = a.AuctionID, "d", "https://example.com/x.jpg"
			a.PublishedAt = base.Add(time.Duration(i) * time.Hour)
			require.NoError(t, repo.CreateAuction(ctx, a))
		}
		_, err := repo.CloseAuction(ctx, "mid", "s2")
		require.NoError(t, err)

		ids := func(auctions []model.Auction) []string {
			out := make([]string, 0, len(auctions))
			for _, a := range auctions {
				out = append(out, a.AuctionID)
			}
			return out
		}

		all, err := repo.ListAuctions(ctx, model.AuctionFilter{})
		require.NoError(t, err)
		require.Equal(t, []string{"new", "mid", "old"}, ids(all))

		open, err := repo.ListAuctions(ctx, model.AuctionFilter{Closed: model.OpenOnly()})
		require.NoError(t, err)
		require.Equal(t, []string{"new", "old"}, ids(open))

		closed, err := repo.ListAuctions(ctx, model.AuctionFilter{Closed: model.ClosedOnly(), SellerID: "s2"})
		require.NoError(t, err)
		require.Equal(t, []string{"mid"}, ids(closed))

		books, err := repo.ListAuctions(ctx, model.AuctionFilter{Category: model.CategoryBooks})
		require.NoError(t, err)
		require.Equal(t, []string{"new", "old"}, ids(books))

		some, err := repo.ListAuctions(ctx, model.AuctionFilter{AuctionIDs: []string{"old", "mid"}})
		require.NoError(t, err)
		require.Equal(t, []string{"mid", "old"}, ids(some))

		none, err := repo.ListAuctions(ctx, model.AuctionFilter{AuctionIDs: []string{}})
		require.NoError(t, err)
		require.Empty(t, none)

		err = repo.CreateAuction(ctx, model.Auction{AuctionID: "orphan", SellerID: "ghost", PublishedAt: base})
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})

	t.Run("bidder_auctions_are_distinct", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1", "u2")
		require.NoError(t, repo.CreateAuction(ctx, model.Auction{
			AuctionID: "a2", SellerID: "seller", Title: "t", Description: "d",
			Category: model.CategoryHome, ImageURL: "https://example.com/y.jpg", PublishedAt: base,
		}))

		for i, b := range []model.Bid{
			newBid("a1", "u1", "1", base),
			newBid("a1", "u2", "2", base.Add(time.Second)),
			newBid("a1", "u1", "3", base.Add(2*time.Second)),
			newBid("a2", "u1", "1", base.Add(3*time.Second)),
		} {
			_, err := repo.RecordBid(ctx, b)
			require.NoError(t, err, i)
		}

		ids, err := repo.GetAuctionIDsByBidder(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, []string{"a1", "a2"}, ids)

		ids, err = repo.GetAuctionIDsByBidder(ctx, "nobody")
		require.NoError(t, err)
		require.Empty(t, ids)
	})

	t.Run("watchlist", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1")

		entry := model.WatchlistEntry{UserID: "u1", AuctionID: "a1", CreatedAt: base}
		require.NoError(t, repo.AddToWatchlist(ctx, entry))
		require.ErrorIs(t, repo.AddToWatchlist(ctx, entry), auctionerrors.ErrAlreadyWatching)

		watching, err := repo.IsWatching(ctx, "u1", "a1")
		require.NoError(t, err)
		require.True(t, watching)

		ids, err := repo.GetWatchedAuctionIDs(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, []string{"a1"}, ids)

		require.NoError(t, repo.RemoveFromWatchlist(ctx, "u1", "a1"))
		require.NoError(t, repo.RemoveFromWatchlist(ctx, "u1", "a1"))

		watching, err = repo.IsWatching(ctx, "u1", "a1")
		require.NoError(t, err)
		require.False(t, watching)

		ids, err = repo.GetWatchedAuctionIDs(ctx, "u1")
		require.NoError(t, err)
		require.Empty(t, ids)

		err = repo.AddToWatchlist(ctx, model.WatchlistEntry{UserID: "u1", AuctionID: "missing", CreatedAt: base})
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})

	t.Run("concurrent_watchlist_adds", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1")

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			added     int
			conflicts int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.AddToWatchlist(ctx, model.WatchlistEntry{UserID: "u1", AuctionID: "a1", CreatedAt: base})
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					added++
				} else if errors.Is(err, auctionerrors.ErrAlreadyWatching) {
					conflicts++
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, added)
		require.Equal(t, 7, conflicts)
	})

	t.Run("comments_newest_first", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()
		seed(t, repo, "a1", "u1")

		for i, text := range []string{"first", "second", "third"} {
			require.NoError(t, repo.AddComment(ctx, model.Comment{
				CommentID: fmt.Sprintf("c%d", i),
				AuctionID: "a1",
				AuthorID:  "u1",
				Text:      text,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		comments, err := repo.GetCommentsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, comments, 3)
		require.Equal(t, "third", comments[0].Text)
		require.Equal(t, "first", comments[2].Text)

		err = repo.AddComment(ctx, model.Comment{CommentID: "x", AuctionID: "missing", AuthorID: "u1", Text: "hi", CreatedAt: base})
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
		_, err = repo.GetCommentsByAuction(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})

	t.Run("users", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		require.NoError(t, repo.SaveUser(ctx, model.User{UserID: "u1", Username: "alice"}))
		require.NoError(t, repo.SaveUser(ctx, model.User{UserID: "u1"}))

		u, err := repo.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "alice", u.Username)

		require.NoError(t, repo.SaveUser(ctx, model.User{UserID: "u1", Username: "alicia"}))
		u, err = repo.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "alicia", u.Username)

		_, err = repo.GetUser(ctx, "ghost")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})
}

// runClockStepBack records bids while the store's clock runs backwards and
// checks the ledger still reads forward in time
func runClockStepBack(t *testing.T, repo AuctionDB, setClock func(func() time.Time)) {
	t.Helper()
	ctx := context.Background()
	seed(t, repo, "a1", "u1", "u2", "u3")

	var (
		mu   sync.Mutex
		tick = base.Add(time.Hour)
	)
	setClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(-time.Minute)
		return tick
	})

	for i, p := range []string{"10", "20", "30"} {
		_, err := repo.RecordBid(ctx, newBid("a1", fmt.Sprintf("u%d", i+1), p, base))
		require.NoError(t, err)
	}

	bids, err := repo.GetBidsByAuction(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, bids, 3)
	require.True(t, base.Add(59*time.Minute).Equal(bids[0].CreatedAt))
	requirePriceMatchesLedger(t, repo, "a1")
}
