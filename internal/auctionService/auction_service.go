package auction

import (
	"auction-house/internal/auctionerrors"
	"auction-house/internal/metrics"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxTitleLength = 20

// AuctionService drives the auction lifecycle: listing, bidding, closing and winner resolution
type AuctionService struct {
	repo repository.AuctionDB
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB) *AuctionService {
	return &AuctionService{
		repo: repo,
	}
}

// CreateAuctionRequest carries the fields a seller supplies when listing an item
type CreateAuctionRequest struct {
	SellerID    string
	Title       string
	Description string
	Category    string
	ImageURL    string
}

// RegisterUser records an identity resolved by the authentication layer
func (s *AuctionService) RegisterUser(ctx context.Context, user models.User) error {
	if user.UserID == "" {
		return fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrLoginRequired)
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("service: failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

// CreateAuction validates the request and lists a new open auction without a price
func (s *AuctionService) CreateAuction(ctx context.Context, req CreateAuctionRequest) (models.Auction, error) {
	if err := validateAuction(req); err != nil {
		return models.Auction{}, err
	}

	auction := models.Auction{
		AuctionID:   utils.GenerateID(),
		SellerID:    req.SellerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    models.Category(req.Category),
		ImageURL:    req.ImageURL,
		PublishedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for seller %s: %w", req.SellerID, err)
	}
	return auction, nil
}

func validateAuction(req CreateAuctionRequest) error {
	if req.SellerID == "" {
		return fmt.Errorf("service: %w - missing seller", auctionerrors.ErrInvalidAuction)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("service: %w - title must be 1 to %d characters", auctionerrors.ErrInvalidAuction, maxTitleLength)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("service: %w - missing description", auctionerrors.ErrInvalidAuction)
	}
	u, err := url.Parse(req.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service: %w - image URL must be an absolute http(s) URL", auctionerrors.ErrInvalidAuction)
	}
	if !models.Category(req.Category).Valid() {
		return fmt.Errorf("service: %w - unknown category %q", auctionerrors.ErrInvalidAuction, req.Category)
	}
	return nil
}

// ActiveAuctions returns open auctions, newest publication first
func (s *AuctionService) ActiveAuctions(ctx context.Context) ([]models.Auction, error) {
	auctions, err := s.repo.ListAuctions(ctx, models.AuctionFilter{Closed: models.OpenOnly()})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active auctions: %w", err)
	}
	return auctions, nil
}

// CategoryListing is the set of open auctions in one category
type CategoryListing struct {
	Category models.CategoryInfo
	Auctions []models.Auction
}

// Categories returns the known categories
func (s *AuctionService) Categories() []models.CategoryInfo {
	return models.Categories()
}

// CategoryAuctions returns open auctions in the given category
func (s *AuctionService) CategoryAuctions(ctx context.Context, category string) (CategoryListing, error) {
	if category == "" {
		return CategoryListing{}, fmt.Errorf("service: %w", auctionerrors.ErrCategoryNotSpecified)
	}
	c := models.Category(category)
	name, ok := c.DisplayName()
	if !ok {
		return CategoryListing{}, fmt.Errorf("service: %w - %q", auctionerrors.ErrInvalidCategory, category)
	}

	auctions, err := s.repo.ListAuctions(ctx, models.AuctionFilter{Closed: models.OpenOnly(), Category: c})
	if err != nil {
		return CategoryListing{}, fmt.Errorf("service: failed to list auctions in category %s: %w", category, err)
	}
	return CategoryListing{Category: models.CategoryInfo{Code: c, Name: name}, Auctions: auctions}, nil
}

// SubmitBid validates and records a bid. The store applies the acceptance
// rules, the submission timestamp and the price update as one atomic step.
func (s *AuctionService) SubmitBid(ctx context.Context, auctionID, bidderID string, price decimal.Decimal) (models.Auction, error) {
	if err := validateBid(auctionID, bidderID, price); err != nil {
		metrics.ObserveBid(auctionerrors.Code(err))
		return models.Auction{}, err
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Price:     price,
	}

	auction, err := s.repo.RecordBid(ctx, bid)
	if err != nil {
		metrics.ObserveBid(auctionerrors.Code(err))
		return models.Auction{}, fmt.Errorf("service: failed to record bid on auction %s by user %s: %w", auctionID, bidderID, err)
	}

	metrics.ObserveBid("accepted")
	return auction, nil
}

// validateBid checks the request shape before any store access
func validateBid(auctionID, bidderID string, price decimal.Decimal) error {
	if auctionID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if !price.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid price", auctionerrors.ErrInvalidBid)
	}
	return nil
}

// CloseAuction irreversibly closes the auction on behalf of its seller
func (s *AuctionService) CloseAuction(ctx context.Context, auctionID, requesterID string) (models.Auction, error) {
	if auctionID == "" || requesterID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing auctionID or requester", auctionerrors.ErrInvalidAuction)
	}

	auction, err := s.repo.CloseAuction(ctx, auctionID, requesterID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
	}

	metrics.AuctionsClosed.Inc()
	return auction, nil
}

// ResolveWinner returns the max-price bid of the auction, or ErrNoWinner when nobody bid
func (s *AuctionService) ResolveWinner(ctx context.Context, auctionID string) (models.Bid, error) {
	highest, err := s.repo.GetHighestBid(ctx, auctionID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		return models.Bid{}, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrNoWinner)
	}
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to resolve winner for auction %s: %w", auctionID, err)
	}
	return highest, nil
}

// Bids returns the ledger of one auction in acceptance order
func (s *AuctionService) Bids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}
