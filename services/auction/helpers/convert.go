package helpers

import (
	"fmt"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/shopspring/decimal"
)

// ParsePrice converts the raw JSON number into a positive price with at most two decimals
func ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w - unparsable price %q", auctionerrors.ErrInvalidBid, raw)
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w - non-positive price", auctionerrors.ErrInvalidBid)
	}
	if !price.Equal(price.Round(2)) {
		return decimal.Decimal{}, fmt.Errorf("%w - more than two decimal places", auctionerrors.ErrInvalidBid)
	}
	return price, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ToAuctionResponse(a model.Auction) AuctionResponse {
	resp := AuctionResponse{
		AuctionID:   a.AuctionID,
		SellerID:    a.SellerID,
		Title:       a.Title,
		Description: a.Description,
		Category:    string(a.Category),
		ImageURL:    a.ImageURL,
		PublishedAt: formatTime(a.PublishedAt),
		State:       string(a.State()),
	}
	if a.CurrentPrice.Valid {
		price := a.CurrentPrice.Decimal.InexactFloat64()
		resp.CurrentPrice = &price
	}
	return resp
}

func ToAuctionResponses(auctions []model.Auction) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, ToAuctionResponse(a))
	}
	return out
}

func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Price:     b.Price.InexactFloat64(),
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func ToBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

func ToCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		CommentID: c.CommentID,
		AuctionID: c.AuctionID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func ToCommentResponses(comments []model.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, ToCommentResponse(c))
	}
	return out
}

func ToListingResponse(v auction.ListingView) ListingResponse {
	resp := ListingResponse{
		Auction:               ToAuctionResponse(v.Auction),
		Presentation:          string(v.Presentation),
		CategoryName:          v.CategoryName,
		BidCount:              v.BidCount,
		BidMessage:            v.BidMessage,
		ViewerIsHighestBidder: v.ViewerIsHighestBidder,
		OnWatchlist:           v.OnWatchlist,
		ViewerIsSeller:        v.ViewerIsSeller,
		ViewerIsWinner:        v.ViewerIsWinner,
	}
	if v.HighestBid != nil {
		bid := ToBidResponse(*v.HighestBid)
		resp.HighestBid = &bid
	}
	if v.Comments != nil {
		resp.Comments = ToCommentResponses(v.Comments)
	}
	if v.Winner != nil {
		resp.Winner = &UserResponse{UserID: v.Winner.UserID, Username: v.Winner.Username}
	}
	return resp
}

func ToCategoryResponses(categories []model.CategoryInfo) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{Code: string(c.Code), Name: c.Name})
	}
	return out
}

func ToUserPanelResponse(p auction.UserPanel) UserPanelResponse {
	return UserPanelResponse{
		Selling: ToAuctionResponses(p.Selling),
		Sold:    ToAuctionResponses(p.Sold),
		Bidding: ToAuctionResponses(p.Bidding),
		Won:     ToAuctionResponses(p.Won),
	}
}
