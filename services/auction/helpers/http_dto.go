package helpers

import "encoding/json"

// Request DTOs
type CreateAuctionRequest struct {
	Title       string `json:"title" binding:"required,max=20"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	ImageURL    string `json:"image_url" binding:"required,url"`
}

type PlaceBidRequest struct {
	Price json.Number `json:"price" binding:"required"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

type WatchlistRequest struct {
	AuctionID   string `json:"auction_id" binding:"required"`
	OnWatchlist bool   `json:"on_watchlist"`
	Next        string `json:"next"`
}

// Response DTOs
type AuctionResponse struct {
	AuctionID    string   `json:"auction_id"`
	SellerID     string   `json:"seller_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	ImageURL     string   `json:"image_url"`
	CurrentPrice *float64 `json:"current_price"`
	PublishedAt  string   `json:"published_at"`
	State        string   `json:"state"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	AuctionID string  `json:"auction_id"`
	BidderID  string  `json:"bidder_id"`
	Price     float64 `json:"price"`
	CreatedAt string  `json:"created_at"`
}

type CommentResponse struct {
	CommentID string `json:"comment_id"`
	AuctionID string `json:"auction_id"`
	AuthorID  string `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type ListingResponse struct {
	Auction      AuctionResponse `json:"auction"`
	Presentation string          `json:"presentation"`
	CategoryName string          `json:"category_name"`

	BidCount              int               `json:"bid_count"`
	HighestBid            *BidResponse      `json:"highest_bid,omitempty"`
	BidMessage            string            `json:"bid_message,omitempty"`
	ViewerIsHighestBidder bool              `json:"viewer_is_highest_bidder"`
	OnWatchlist           bool              `json:"on_watchlist"`
	Comments              []CommentResponse `json:"comments,omitempty"`

	Winner         *UserResponse `json:"winner,omitempty"`
	ViewerIsSeller bool          `json:"viewer_is_seller"`
	ViewerIsWinner bool          `json:"viewer_is_winner"`
}

type WatchlistToggleResponse struct {
	AuctionID   string `json:"auction_id"`
	OnWatchlist bool   `json:"on_watchlist"`
}

type CategoryResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CategoryListingResponse struct {
	Category CategoryResponse  `json:"category"`
	Auctions []AuctionResponse `json:"auctions"`
}

type UserPanelResponse struct {
	Selling []AuctionResponse `json:"selling"`
	Sold    []AuctionResponse `json:"sold"`
	Bidding []AuctionResponse `json:"bidding"`
	Won     []AuctionResponse `json:"won"`
}
