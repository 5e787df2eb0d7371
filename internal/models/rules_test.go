package models

import (
	"errors"
	"testing"

	"auction-house/internal/auctionerrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func priced(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func TestAuction_CheckBid(t *testing.T) {
	t.Parallel()

	open := Auction{AuctionID: "a1", SellerID: "seller"}
	withPrice := Auction{AuctionID: "a1", SellerID: "seller", CurrentPrice: priced("10")}
	closed := Auction{AuctionID: "a1", SellerID: "seller", Closed: true}

	tests := []struct {
		name    string
		auction Auction
		bidder  string
		price   string
		wantErr error
	}{
		{name: "first_bid_any_positive", auction: open, bidder: "u1", price: "0.01"},
		{name: "higher_than_current", auction: withPrice, bidder: "u1", price: "10.01"},
		{name: "equal_to_current", auction: withPrice, bidder: "u1", price: "10", wantErr: auctionerrors.ErrBidTooLow},
		{name: "lower_than_current", auction: withPrice, bidder: "u1", price: "5", wantErr: auctionerrors.ErrBidTooLow},
		{name: "seller_bids", auction: withPrice, bidder: "seller", price: "1000", wantErr: auctionerrors.ErrSellerCannotBid},
		{name: "closed_before_seller_check", auction: closed, bidder: "seller", price: "1", wantErr: auctionerrors.ErrAuctionClosed},
		{name: "closed", auction: closed, bidder: "u1", price: "1", wantErr: auctionerrors.ErrAuctionClosed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.auction.CheckBid(tc.bidder, decimal.RequireFromString(tc.price))
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tc.wantErr), "expected error: %v, got: %v", tc.wantErr, err)
		})
	}
}

func TestAuction_CheckClose(t *testing.T) {
	t.Parallel()

	open := Auction{AuctionID: "a1", SellerID: "seller"}
	closed := Auction{AuctionID: "a1", SellerID: "seller", Closed: true}

	require.NoError(t, open.CheckClose("seller"))
	require.ErrorIs(t, open.CheckClose("u1"), auctionerrors.ErrNotSeller)
	require.ErrorIs(t, closed.CheckClose("seller"), auctionerrors.ErrAlreadyClosed)
	require.ErrorIs(t, closed.CheckClose("u1"), auctionerrors.ErrNotSeller)
}

func TestAuctionFilter_Matches(t *testing.T) {
	t.Parallel()

	a := Auction{AuctionID: "a1", SellerID: "s1", Category: CategoryBooks}

	require.True(t, AuctionFilter{}.Matches(a))
	require.True(t, AuctionFilter{Closed: OpenOnly()}.Matches(a))
	require.False(t, AuctionFilter{Closed: ClosedOnly()}.Matches(a))
	require.False(t, AuctionFilter{SellerID: "s2"}.Matches(a))
	require.False(t, AuctionFilter{Category: CategoryToys}.Matches(a))
	require.True(t, AuctionFilter{AuctionIDs: []string{"a0", "a1"}}.Matches(a))
	require.False(t, AuctionFilter{AuctionIDs: []string{}}.Matches(a))
}

func TestCategory(t *testing.T) {
	t.Parallel()

	name, ok := CategoryElectronics.DisplayName()
	require.True(t, ok)
	require.Equal(t, "Electronics", name)
	require.False(t, Category("cars").Valid())
	require.Len(t, Categories(), 7)
}
