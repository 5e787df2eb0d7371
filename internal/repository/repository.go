package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// AuctionStore persists auctions and their lifecycle state
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.Auction, error)
	CloseAuction(ctx context.Context, auctionID, requesterID string) (model.Auction, error)
}

// BidLedger is the append-only per-auction record of accepted bids
type BidLedger interface {
	RecordBid(ctx context.Context, bid model.Bid) (model.Auction, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetAuctionWithBids(ctx context.Context, auctionID string) (model.Auction, []model.Bid, error)
	GetHighestBid(ctx context.Context, auctionID string) (model.Bid, error)
	GetAuctionIDsByBidder(ctx context.Context, userID string) ([]string, error)
}

// WatchlistIndex stores unique (user, auction) memberships
type WatchlistIndex interface {
	AddToWatchlist(ctx context.Context, entry model.WatchlistEntry) error
	RemoveFromWatchlist(ctx context.Context, userID, auctionID string) error
	IsWatching(ctx context.Context, userID, auctionID string) (bool, error)
	GetWatchedAuctionIDs(ctx context.Context, userID string) ([]string, error)
}

// CommentThread is the append-only log of remarks per auction
type CommentThread interface {
	AddComment(ctx context.Context, comment model.Comment) error
	GetCommentsByAuction(ctx context.Context, auctionID string) ([]model.Comment, error)
}

// UserDirectory records identities resolved by the authentication layer
type UserDirectory interface {
	SaveUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID string) (model.User, error)
}

// AuctionDB defines the complete storage interface for the auction system
type AuctionDB interface {
	AuctionStore
	BidLedger
	WatchlistIndex
	CommentThread
	UserDirectory
}

type watchKey struct {
	userID    string
	auctionID string
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// Every check-then-write sequence runs under the write lock.
type MemoryRepo struct {
	mu          sync.RWMutex
	users       map[string]model.User
	auctions    map[string]model.Auction
	bids        map[string][]model.Bid // key: auctionID -> value: bids in acceptance order
	userAuction map[string][]string    // key: userID -> value: auctionIDs user has bid on
	watchlist   map[watchKey]model.WatchlistEntry
	watchOrder  map[string][]string        // key: userID -> value: watched auctionIDs in insertion order
	comments    map[string][]model.Comment // key: auctionID -> value: comments in insertion order
	now         func() time.Time
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:       make(map[string]model.User),
		auctions:    make(map[string]model.Auction),
		bids:        make(map[string][]model.Bid),
		userAuction: make(map[string][]string),
		watchlist:   make(map[watchKey]model.WatchlistEntry),
		watchOrder:  make(map[string][]string),
		comments:    make(map[string][]model.Comment),
		now:         utcNow,
	}
}

func utcNow() time.Time { return time.Now().UTC() }

// submissionTime stamps a bid accepted at now. Times along one auction's
// ledger never decrease, even when the wall clock steps back.
func submissionTime(now, last time.Time) time.Time {
	if now.Before(last) {
		return last
	}
	return now
}

// SaveUser inserts or renames a user
func (r *MemoryRepo) SaveUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[user.UserID]; ok && user.Username == "" {
		user.Username = existing.Username
	}
	r.users[user.UserID] = user
	return nil
}

// GetUser returns a user by ID
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[auction.SellerID]; !ok {
		return fmt.Errorf("create auction %s: seller %s: %w", auction.AuctionID, auction.SellerID, auctionerrors.ErrUserNotFound)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns a single auction
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// ListAuctions returns the auctions matching filter, newest publication first
func (r *MemoryRepo) ListAuctions(_ context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]model.Auction, 0)
	for _, a := range r.auctions {
		if filter.Matches(a) {
			auctions = append(auctions, a)
		}
	}
	sortNewestFirst(auctions)
	return auctions, nil
}

// CloseAuction flips the auction to closed if requesterID is its seller
func (r *MemoryRepo) CloseAuction(_ context.Context, auctionID, requesterID string) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err := auction.CheckClose(requesterID); err != nil {
		return model.Auction{}, fmt.Errorf("close auction: %w", err)
	}

	auction.Closed = true
	r.auctions[auctionID] = auction
	return auction, nil
}

// RecordBid appends the bid and advances the auction's current price in one step.
// The bid's CreatedAt is assigned here, under the write lock.
func (r *MemoryRepo) RecordBid(_ context.Context, bid model.Bid) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[bid.AuctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if _, ok := r.users[bid.BidderID]; !ok {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: bidder %s: %w", bid.AuctionID, bid.BidderID, auctionerrors.ErrUserNotFound)
	}
	if err := auction.CheckBid(bid.BidderID, bid.Price); err != nil {
		return model.Auction{}, fmt.Errorf("record bid: %w", err)
	}

	var last time.Time
	if ledger := r.bids[bid.AuctionID]; len(ledger) > 0 {
		last = ledger[len(ledger)-1].CreatedAt
	}
	bid.CreatedAt = submissionTime(r.now(), last)

	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)
	auction.CurrentPrice.Decimal = bid.Price
	auction.CurrentPrice.Valid = true
	r.auctions[bid.AuctionID] = auction

	for _, id := range r.userAuction[bid.BidderID] {
		if id == bid.AuctionID {
			return auction, nil
		}
	}
	r.userAuction[bid.BidderID] = append(r.userAuction[bid.BidderID], bid.AuctionID)

	return auction, nil
}

// GetBidsByAuction returns all bids for an auction in acceptance order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return append([]model.Bid{}, r.bids[auctionID]...), nil
}

// GetAuctionWithBids returns the auction and its ledger under one read lock
func (r *MemoryRepo) GetAuctionWithBids(_ context.Context, auctionID string) (model.Auction, []model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, nil, fmt.Errorf("get auction with bids %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, append([]model.Bid{}, r.bids[auctionID]...), nil
}

// GetHighestBid returns the max-price bid for an auction
func (r *MemoryRepo) GetHighestBid(_ context.Context, auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Price.GreaterThan(highest.Price) {
			highest = b
		}
	}
	return highest, nil
}

// GetAuctionIDsByBidder returns the distinct auctions a user has bid on
func (r *MemoryRepo) GetAuctionIDsByBidder(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string{}, r.userAuction[userID]...), nil
}

// AddToWatchlist creates the (user, auction) membership
func (r *MemoryRepo) AddToWatchlist(_ context.Context, entry model.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[entry.AuctionID]; !ok {
		return fmt.Errorf("add to watchlist %s: %w", entry.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if _, ok := r.users[entry.UserID]; !ok {
		return fmt.Errorf("add to watchlist for user %s: %w", entry.UserID, auctionerrors.ErrUserNotFound)
	}

	key := watchKey{userID: entry.UserID, auctionID: entry.AuctionID}
	if _, exists := r.watchlist[key]; exists {
		return fmt.Errorf("add to watchlist %s for user %s: %w", entry.AuctionID, entry.UserID, auctionerrors.ErrAlreadyWatching)
	}
	r.watchlist[key] = entry
	r.watchOrder[entry.UserID] = append(r.watchOrder[entry.UserID], entry.AuctionID)
	return nil
}

// RemoveFromWatchlist deletes the membership; removing a missing one is a no-op
func (r *MemoryRepo) RemoveFromWatchlist(_ context.Context, userID, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := watchKey{userID: userID, auctionID: auctionID}
	if _, exists := r.watchlist[key]; !exists {
		return nil
	}
	delete(r.watchlist, key)

	ids := r.watchOrder[userID]
	for i, id := range ids {
		if id == auctionID {
			r.watchOrder[userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// IsWatching reports whether the membership exists
func (r *MemoryRepo) IsWatching(_ context.Context, userID, auctionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.watchlist[watchKey{userID: userID, auctionID: auctionID}]
	return ok, nil
}

// GetWatchedAuctionIDs returns every auction a user watches, open or closed
func (r *MemoryRepo) GetWatchedAuctionIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string{}, r.watchOrder[userID]...), nil
}

// AddComment appends a comment to the auction's thread
func (r *MemoryRepo) AddComment(_ context.Context, comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[comment.AuctionID]; !ok {
		return fmt.Errorf("add comment to auction %s: %w", comment.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if _, ok := r.users[comment.AuthorID]; !ok {
		return fmt.Errorf("add comment by %s: %w", comment.AuthorID, auctionerrors.ErrUserNotFound)
	}
	r.comments[comment.AuctionID] = append(r.comments[comment.AuctionID], comment)
	return nil
}

// GetCommentsByAuction returns the thread newest first
func (r *MemoryRepo) GetCommentsByAuction(_ context.Context, auctionID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get comments for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	thread := r.comments[auctionID]
	out := make([]model.Comment, 0, len(thread))
	for i := len(thread) - 1; i >= 0; i-- {
		out = append(out, thread[i])
	}
	return out, nil
}

// AddAuction adds an auction without seller checks. This method is intended for tests and seeding only.
func (r *MemoryRepo) AddAuction(auction model.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.AuctionID] = auction
}

// AddUser adds a user. This method is intended for tests and seeding only.
func (r *MemoryRepo) AddUser(user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
}

func sortNewestFirst(auctions []model.Auction) {
	sort.SliceStable(auctions, func(i, j int) bool {
		if auctions[i].PublishedAt.Equal(auctions[j].PublishedAt) {
			return auctions[i].AuctionID < auctions[j].AuctionID
		}
		return auctions[i].PublishedAt.After(auctions[j].PublishedAt)
	})
}
