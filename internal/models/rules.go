package models

import (
	"fmt"

	"auction-house/internal/auctionerrors"

	"github.com/shopspring/decimal"
)

// CheckBid applies the acceptance rules for a bid against the auction's
// current state. Stores call it while holding the auction's write lock.
func (a Auction) CheckBid(bidderID string, price decimal.Decimal) error {
	if a.Closed {
		return fmt.Errorf("auction %s: %w", a.AuctionID, auctionerrors.ErrAuctionClosed)
	}
	if bidderID == a.SellerID {
		return fmt.Errorf("auction %s: %w", a.AuctionID, auctionerrors.ErrSellerCannotBid)
	}
	if a.CurrentPrice.Valid && !price.GreaterThan(a.CurrentPrice.Decimal) {
		return fmt.Errorf("auction %s: %w - current highest bid is %s",
			a.AuctionID, auctionerrors.ErrBidTooLow, a.CurrentPrice.Decimal.StringFixed(2))
	}
	return nil
}

// CheckClose applies the rules for closing the auction on behalf of requesterID
func (a Auction) CheckClose(requesterID string) error {
	if requesterID != a.SellerID {
		return fmt.Errorf("auction %s: %w", a.AuctionID, auctionerrors.ErrNotSeller)
	}
	if a.Closed {
		return fmt.Errorf("auction %s: %w", a.AuctionID, auctionerrors.ErrAlreadyClosed)
	}
	return nil
}
