package auction

import (
	"auction-house/internal/models"
	"context"
	"fmt"
)

// UserPanel groups the auctions a user takes part in
type UserPanel struct {
	Selling []models.Auction
	Sold    []models.Auction
	Bidding []models.Auction
	Won     []models.Auction
}

// UserPanel collects the user's open and closed listings, the open auctions
// they bid on, and the closed auctions whose highest bid is theirs.
func (s *AuctionService) UserPanel(ctx context.Context, userID string) (UserPanel, error) {
	var (
		panel UserPanel
		err   error
	)

	panel.Selling, err = s.repo.ListAuctions(ctx, models.AuctionFilter{Closed: models.OpenOnly(), SellerID: userID})
	if err != nil {
		return UserPanel{}, fmt.Errorf("service: failed to list selling auctions of %s: %w", userID, err)
	}
	panel.Sold, err = s.repo.ListAuctions(ctx, models.AuctionFilter{Closed: models.ClosedOnly(), SellerID: userID})
	if err != nil {
		return UserPanel{}, fmt.Errorf("service: failed to list sold auctions of %s: %w", userID, err)
	}

	bidOn, err := s.repo.GetAuctionIDsByBidder(ctx, userID)
	if err != nil {
		return UserPanel{}, fmt.Errorf("service: failed to get auctions bid on by %s: %w", userID, err)
	}

	panel.Bidding, err = s.repo.ListAuctions(ctx, models.AuctionFilter{Closed: models.OpenOnly(), AuctionIDs: bidOn})
	if err != nil {
		return UserPanel{}, fmt.Errorf("service: failed to list bidding auctions of %s: %w", userID, err)
	}

	closed, err := s.repo.ListAuctions(ctx, models.AuctionFilter{Closed: models.ClosedOnly(), AuctionIDs: bidOn})
	if err != nil {
		return UserPanel{}, fmt.Errorf("service: failed to list closed auctions bid on by %s: %w", userID, err)
	}
	panel.Won = make([]models.Auction, 0, len(closed))
	for _, a := range closed {
		highest, err := s.repo.GetHighestBid(ctx, a.AuctionID)
		if err != nil {
			return UserPanel{}, fmt.Errorf("service: failed to get highest bid of auction %s: %w", a.AuctionID, err)
		}
		if highest.BidderID == userID {
			panel.Won = append(panel.Won, a)
		}
	}

	return panel, nil
}
