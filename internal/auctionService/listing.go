package auction

import (
	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"context"
	"errors"
	"fmt"
)

// Presentation selects how a listing is rendered
type Presentation string

const (
	PresentationOpen           Presentation = "open"
	PresentationSold           Presentation = "sold"
	PresentationBought         Presentation = "bought"
	PresentationClosedNoOffers Presentation = "closed_no_offers"
)

const (
	msgNoBids        = "Be the first to bid!"
	msgViewerHighest = "Your bid is the highest bid"
	msgHighestBy     = "Highest bid made by %s"
)

// ListingView is the detail view-model of one auction for one viewer
type ListingView struct {
	Auction      models.Auction
	Presentation Presentation
	CategoryName string

	BidCount              int
	HighestBid            *models.Bid
	BidMessage            string
	ViewerIsHighestBidder bool
	OnWatchlist           bool
	Comments              []models.Comment

	Winner         *models.User
	ViewerIsSeller bool
	ViewerIsWinner bool
}

// Listing builds the detail view of an auction from one consistent read of
// the auction and its bids. viewerID is empty for anonymous viewers.
// Closed auctions are only visible to their seller and their winner.
func (s *AuctionService) Listing(ctx context.Context, auctionID, viewerID string) (ListingView, error) {
	auction, bids, err := s.repo.GetAuctionWithBids(ctx, auctionID)
	if err != nil {
		return ListingView{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	view := ListingView{
		Auction:        auction,
		BidCount:       len(bids),
		ViewerIsSeller: viewerID != "" && viewerID == auction.SellerID,
	}
	view.CategoryName, _ = auction.Category.DisplayName()
	if len(bids) > 0 {
		highest := highestOf(bids)
		view.HighestBid = &highest
		view.ViewerIsHighestBidder = viewerID != "" && highest.BidderID == viewerID
	}

	if auction.Closed {
		return s.closedListing(ctx, view)
	}
	return s.openListing(ctx, view, viewerID)
}

func (s *AuctionService) openListing(ctx context.Context, view ListingView, viewerID string) (ListingView, error) {
	view.Presentation = PresentationOpen

	switch {
	case view.HighestBid == nil:
		view.BidMessage = msgNoBids
	case view.ViewerIsHighestBidder:
		view.BidMessage = msgViewerHighest
	default:
		view.BidMessage = fmt.Sprintf(msgHighestBy, s.displayName(ctx, view.HighestBid.BidderID))
	}

	if viewerID != "" {
		watching, err := s.repo.IsWatching(ctx, viewerID, view.Auction.AuctionID)
		if err != nil {
			return ListingView{}, fmt.Errorf("service: failed to check watchlist for auction %s: %w", view.Auction.AuctionID, err)
		}
		view.OnWatchlist = watching
	}

	comments, err := s.repo.GetCommentsByAuction(ctx, view.Auction.AuctionID)
	if err != nil {
		return ListingView{}, fmt.Errorf("service: failed to get comments for auction %s: %w", view.Auction.AuctionID, err)
	}
	view.Comments = comments

	return view, nil
}

func (s *AuctionService) closedListing(ctx context.Context, view ListingView) (ListingView, error) {
	if view.HighestBid == nil {
		if view.ViewerIsSeller {
			view.Presentation = PresentationClosedNoOffers
			return view, nil
		}
		return ListingView{}, fmt.Errorf("service: auction %s: %w", view.Auction.AuctionID, auctionerrors.ErrClosedAuctionView)
	}

	view.ViewerIsWinner = view.ViewerIsHighestBidder
	switch {
	case view.ViewerIsSeller:
		view.Presentation = PresentationSold
	case view.ViewerIsWinner:
		view.Presentation = PresentationBought
	default:
		return ListingView{}, fmt.Errorf("service: auction %s: %w", view.Auction.AuctionID, auctionerrors.ErrClosedAuctionView)
	}

	winner, err := s.repo.GetUser(ctx, view.HighestBid.BidderID)
	if err != nil && !errors.Is(err, auctionerrors.ErrUserNotFound) {
		return ListingView{}, fmt.Errorf("service: failed to get winner of auction %s: %w", view.Auction.AuctionID, err)
	}
	if err != nil {
		winner = models.User{UserID: view.HighestBid.BidderID}
	}
	view.Winner = &winner

	return view, nil
}

// displayName falls back to the raw ID when the directory has no username
func (s *AuctionService) displayName(ctx context.Context, userID string) string {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil || user.Username == "" {
		return userID
	}
	return user.Username
}

func highestOf(bids []models.Bid) models.Bid {
	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Price.GreaterThan(highest.Price) {
			highest = b
		}
	}
	return highest
}
