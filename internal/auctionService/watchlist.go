package auction

import (
	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"context"
	"fmt"
	"time"
)

// ToggleWatchlist removes the membership when currentlyWatching is true and
// adds it otherwise. It returns whether the user watches the auction afterwards.
func (s *AuctionService) ToggleWatchlist(ctx context.Context, userID, auctionID string, currentlyWatching bool) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("service: %w - missing user", auctionerrors.ErrLoginRequired)
	}
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return false, fmt.Errorf("service: failed to toggle watchlist: %w", err)
	}

	if currentlyWatching {
		if err := s.repo.RemoveFromWatchlist(ctx, userID, auctionID); err != nil {
			return false, fmt.Errorf("service: failed to remove auction %s from watchlist of %s: %w", auctionID, userID, err)
		}
		return false, nil
	}

	entry := models.WatchlistEntry{UserID: userID, AuctionID: auctionID, CreatedAt: time.Now().UTC()}
	if err := s.repo.AddToWatchlist(ctx, entry); err != nil {
		return false, fmt.Errorf("service: failed to add auction %s to watchlist of %s: %w", auctionID, userID, err)
	}
	return true, nil
}

// Watchlist returns the open auctions a user watches. Closed auctions stay
// stored but are left out of this view.
func (s *AuctionService) Watchlist(ctx context.Context, userID string) ([]models.Auction, error) {
	ids, err := s.repo.GetWatchedAuctionIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist of %s: %w", userID, err)
	}

	auctions, err := s.repo.ListAuctions(ctx, models.AuctionFilter{Closed: models.OpenOnly(), AuctionIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("service: failed to load watchlist of %s: %w", userID, err)
	}
	return auctions, nil
}
