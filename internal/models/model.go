package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an identity handed over by the authentication layer
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// State is the lifecycle state of an auction
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Auction represents a listed item. CurrentPrice is unset until the first accepted bid.
type Auction struct {
	AuctionID    string              `json:"auction_id"`
	SellerID     string              `json:"seller_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Category     Category            `json:"category"`
	ImageURL     string              `json:"image_url"`
	CurrentPrice decimal.NullDecimal `json:"current_price"`
	PublishedAt  time.Time           `json:"published_at"`
	Closed       bool                `json:"closed"`
}

// State reports whether the auction is still accepting bids
func (a Auction) State() State {
	if a.Closed {
		return StateClosed
	}
	return StateOpen
}

// Bid represents a user's accepted price proposal on an auction
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// WatchlistEntry is a unique (user, auction) membership
type WatchlistEntry struct {
	UserID    string    `json:"user_id"`
	AuctionID string    `json:"auction_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a remark left on an auction
type Comment struct {
	CommentID string    `json:"comment_id"`
	AuctionID string    `json:"auction_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// AuctionFilter selects auctions from the store. Zero fields do not filter.
type AuctionFilter struct {
	Closed     *bool
	SellerID   string
	Category   Category
	AuctionIDs []string
}

// Matches reports whether a passes every set predicate of f
func (f AuctionFilter) Matches(a Auction) bool {
	if f.Closed != nil && a.Closed != *f.Closed {
		return false
	}
	if f.SellerID != "" && a.SellerID != f.SellerID {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.AuctionIDs != nil {
		for _, id := range f.AuctionIDs {
			if id == a.AuctionID {
				return true
			}
		}
		return false
	}
	return true
}

// OpenOnly and ClosedOnly are helpers for AuctionFilter.Closed
func OpenOnly() *bool   { v := false; return &v }
func ClosedOnly() *bool { v := true; return &v }
