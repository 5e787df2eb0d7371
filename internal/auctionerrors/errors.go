package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoBids          = errors.New("no bids found for auction")
)

// Lifecycle errors
var (
	ErrAuctionClosed     = errors.New("auction is closed")
	ErrSellerCannotBid   = errors.New("seller cannot bid on own auction")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrNotSeller         = errors.New("only the seller can close the auction")
	ErrAlreadyClosed     = errors.New("auction already closed")
	ErrNoWinner          = errors.New("auction has no winner")
	ErrClosedAuctionView = errors.New("this auction is closed")
)

// Watchlist, comment and category errors
var (
	ErrAlreadyWatching      = errors.New("auction already in watchlist")
	ErrInvalidComment       = errors.New("invalid comment")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrCategoryNotSpecified = errors.New("category not specified")
)

// Request errors
var (
	ErrInvalidBid       = errors.New("invalid bid")
	ErrInvalidAuction   = errors.New("invalid auction details")
	ErrLoginRequired    = errors.New("login required")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Kind groups errors by the outcome a caller should surface.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindMethodNotAllowed
	KindValidation
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindValidation:
		return "validation_error"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

type classified struct {
	err  error
	kind Kind
	code string
}

// ordered so that the most specific sentinel wins when an error wraps several
var taxonomy = []classified{
	{ErrAuctionNotFound, KindNotFound, "auction_not_found"},
	{ErrUserNotFound, KindNotFound, "user_not_found"},
	{ErrNoBids, KindNotFound, "no_bids"},
	{ErrNoWinner, KindNotFound, "no_winner"},
	{ErrCategoryNotSpecified, KindNotFound, "category_not_specified"},

	{ErrSellerCannotBid, KindForbidden, "seller_cannot_bid"},
	{ErrNotSeller, KindForbidden, "not_seller"},
	{ErrClosedAuctionView, KindForbidden, "auction_closed_view"},

	{ErrAuctionClosed, KindConflict, "auction_closed"},
	{ErrBidTooLow, KindConflict, "bid_too_low"},
	{ErrAlreadyClosed, KindConflict, "already_closed"},
	{ErrAlreadyWatching, KindConflict, "already_watching"},

	{ErrMethodNotAllowed, KindMethodNotAllowed, "method_not_allowed"},

	{ErrInvalidBid, KindValidation, "invalid_bid"},
	{ErrInvalidAuction, KindValidation, "invalid_auction"},
	{ErrInvalidComment, KindValidation, "invalid_comment"},
	{ErrInvalidCategory, KindValidation, "invalid_category"},

	{ErrLoginRequired, KindUnauthenticated, "login_required"},
}

// KindOf reports the Kind of the first known sentinel found in err's chain.
func KindOf(err error) Kind {
	if c, ok := classify(err); ok {
		return c.kind
	}
	return KindUnknown
}

// Code returns the machine-checkable code for err, or "internal_error".
func Code(err error) string {
	if c, ok := classify(err); ok {
		return c.code
	}
	return "internal_error"
}

func classify(err error) (classified, bool) {
	if err == nil {
		return classified{}, false
	}
	for _, c := range taxonomy {
		if errors.Is(err, c.err) {
			return c, true
		}
	}
	return classified{}, false
}
