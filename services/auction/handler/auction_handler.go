package handler

//go:generate mockgen -source=auction_handler.go -destination=mock_service.go -package=handler

import (
	"context"
	"fmt"
	"net/http"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, req auction.CreateAuctionRequest) (model.Auction, error)
	ActiveAuctions(ctx context.Context) ([]model.Auction, error)
	CategoryAuctions(ctx context.Context, category string) (auction.CategoryListing, error)
	Categories() []model.CategoryInfo
	Listing(ctx context.Context, auctionID, viewerID string) (auction.ListingView, error)
	Bids(ctx context.Context, auctionID string) ([]model.Bid, error)
	SubmitBid(ctx context.Context, auctionID, bidderID string, price decimal.Decimal) (model.Auction, error)
	CloseAuction(ctx context.Context, auctionID, requesterID string) (model.Auction, error)
	ResolveWinner(ctx context.Context, auctionID string) (model.Bid, error)
	ToggleWatchlist(ctx context.Context, userID, auctionID string, currentlyWatching bool) (bool, error)
	Watchlist(ctx context.Context, userID string) ([]model.Auction, error)
	AddComment(ctx context.Context, auctionID, authorID, text string) (model.Comment, error)
	Comments(ctx context.Context, auctionID string) ([]model.Comment, error)
	UserPanel(ctx context.Context, userID string) (auction.UserPanel, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListActiveAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListActiveAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ActiveAuctions(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListActiveAuctionsHandler", err, nil)
		return
	}

	helpers.JSONList(c, helpers.ToAuctionResponses(auctions), "auctions retrieved successfully")
	helpers.LogSuccess("ListActiveAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"count": len(auctions),
	})
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	sellerID, ok := helpers.RequireUser(c, "CreateAuctionHandler")
	if !ok {
		return
	}

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	created, err := h.service.CreateAuction(c.Request.Context(), auction.CreateAuctionRequest{
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"seller_id": sellerID})
		return
	}

	helpers.Created(c, helpers.ToAuctionResponse(created), "auction created successfully", "/auctions")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": created.AuctionID,
		"seller_id":  sellerID,
		"category":   created.Category,
	})
}

// GetListingHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetListingHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	viewerID := helpers.CurrentUserID(c)

	view, err := h.service.Listing(c.Request.Context(), auctionID, viewerID)
	if err != nil {
		helpers.HandleServiceError(c, "GetListingHandler", err, map[string]any{"auction_id": auctionID, "viewer_id": viewerID})
		return
	}

	helpers.OK(c, helpers.ToListingResponse(view), "listing retrieved successfully")
	helpers.LogSuccess("GetListingHandler", "listing retrieved successfully", map[string]any{
		"auction_id":   auctionID,
		"presentation": view.Presentation,
		"bid_count":    view.BidCount,
	})
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	bids, err := h.service.Bids(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	helpers.JSONList(c, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// SubmitBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) SubmitBidHandler(c *gin.Context) {
	bidderID, ok := helpers.RequireUser(c, "SubmitBidHandler")
	if !ok {
		return
	}
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}
	price, err := helpers.ParsePrice(req.Price.String())
	if err != nil {
		helpers.HandleServiceError(c, "SubmitBidHandler", err, map[string]any{"auction_id": auctionID, "user_id": bidderID})
		return
	}

	updated, err := h.service.SubmitBid(c.Request.Context(), auctionID, bidderID, price)
	if err != nil {
		helpers.HandleServiceError(c, "SubmitBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    bidderID,
			"price":      price.String(),
		})
		return
	}

	helpers.Created(c, helpers.ToAuctionResponse(updated), "bid recorded successfully", helpers.AuctionPath(auctionID))
	helpers.LogSuccess("SubmitBidHandler", "bid recorded successfully", map[string]any{
		"auction_id": auctionID,
		"user_id":    bidderID,
		"price":      price.String(),
	})
}

// CloseAuctionHandler handles POST /auctions/:auction_id/close
func (h *AuctionHandler) CloseAuctionHandler(c *gin.Context) {
	requesterID, ok := helpers.RequireUser(c, "CloseAuctionHandler")
	if !ok {
		return
	}
	auctionID := c.Param("auction_id")

	closed, err := h.service.CloseAuction(c.Request.Context(), auctionID, requesterID)
	if err != nil {
		helpers.HandleServiceError(c, "CloseAuctionHandler", err, map[string]any{"auction_id": auctionID, "user_id": requesterID})
		return
	}

	helpers.Redirect(c, helpers.ToAuctionResponse(closed), "auction closed successfully", helpers.AuctionPath(auctionID))
	helpers.LogSuccess("CloseAuctionHandler", "auction closed successfully", map[string]any{
		"auction_id": auctionID,
		"seller_id":  requesterID,
	})
}

// GetWinnerHandler handles GET /auctions/:auction_id/winner
func (h *AuctionHandler) GetWinnerHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	bid, err := h.service.ResolveWinner(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetWinnerHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	helpers.OK(c, helpers.ToBidResponse(bid), "winner resolved successfully")
	helpers.LogSuccess("GetWinnerHandler", "winner resolved successfully", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bid.BidderID,
	})
}

// AddCommentHandler handles POST /auctions/:auction_id/comments
func (h *AuctionHandler) AddCommentHandler(c *gin.Context) {
	authorID, ok := helpers.RequireUser(c, "AddCommentHandler")
	if !ok {
		return
	}
	auctionID := c.Param("auction_id")

	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddCommentHandler", err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), auctionID, authorID, req.Text)
	if err != nil {
		helpers.HandleServiceError(c, "AddCommentHandler", err, map[string]any{"auction_id": auctionID, "user_id": authorID})
		return
	}

	helpers.Created(c, helpers.ToCommentResponse(comment), "comment added successfully", helpers.AuctionPath(auctionID))
	helpers.LogSuccess("AddCommentHandler", "comment added successfully", map[string]any{
		"auction_id": auctionID,
		"comment_id": comment.CommentID,
	})
}

// GetCommentsHandler handles GET /auctions/:auction_id/comments
func (h *AuctionHandler) GetCommentsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	comments, err := h.service.Comments(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetCommentsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	helpers.JSONList(c, helpers.ToCommentResponses(comments), "comments retrieved successfully")
}

// ToggleWatchlistHandler handles POST /watchlist
func (h *AuctionHandler) ToggleWatchlistHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "ToggleWatchlistHandler")
	if !ok {
		return
	}

	var req helpers.WatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ToggleWatchlistHandler", err)
		return
	}

	watching, err := h.service.ToggleWatchlist(c.Request.Context(), userID, req.AuctionID, req.OnWatchlist)
	if err != nil {
		helpers.HandleServiceError(c, "ToggleWatchlistHandler", err, map[string]any{"auction_id": req.AuctionID, "user_id": userID})
		return
	}

	next := helpers.SafeRedirect(req.Next, helpers.AuctionPath(req.AuctionID))
	helpers.Redirect(c, helpers.WatchlistToggleResponse{AuctionID: req.AuctionID, OnWatchlist: watching}, "watchlist updated successfully", next)
	helpers.LogSuccess("ToggleWatchlistHandler", "watchlist updated successfully", map[string]any{
		"auction_id":   req.AuctionID,
		"user_id":      userID,
		"on_watchlist": watching,
	})
}

// GetWatchlistHandler handles GET /watchlist
func (h *AuctionHandler) GetWatchlistHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "GetWatchlistHandler")
	if !ok {
		return
	}

	auctions, err := h.service.Watchlist(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetWatchlistHandler", err, map[string]any{"user_id": userID})
		return
	}

	helpers.JSONList(c, helpers.ToAuctionResponses(auctions), "watchlist retrieved successfully")
}

// GetCategoriesHandler handles GET /categories
func (h *AuctionHandler) GetCategoriesHandler(c *gin.Context) {
	helpers.JSONList(c, helpers.ToCategoryResponses(h.service.Categories()), "categories retrieved successfully")
}

// GetCategoryAuctionsHandler handles GET /categories/:category
func (h *AuctionHandler) GetCategoryAuctionsHandler(c *gin.Context) {
	category := c.Param("category")

	listing, err := h.service.CategoryAuctions(c.Request.Context(), category)
	if err != nil {
		helpers.HandleServiceError(c, "GetCategoryAuctionsHandler", err, map[string]any{"category": category})
		return
	}

	helpers.OK(c, helpers.CategoryListingResponse{
		Category: helpers.CategoryResponse{Code: string(listing.Category.Code), Name: listing.Category.Name},
		Auctions: helpers.ToAuctionResponses(listing.Auctions),
	}, "category auctions retrieved successfully")
}

// GetUserPanelHandler handles GET /users/me/panel
func (h *AuctionHandler) GetUserPanelHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "GetUserPanelHandler")
	if !ok {
		return
	}

	panel, err := h.service.UserPanel(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetUserPanelHandler", err, map[string]any{"user_id": userID})
		return
	}

	helpers.OK(c, helpers.ToUserPanelResponse(panel), "user panel retrieved successfully")
}

// MethodNotAllowedHandler answers known paths requested with the wrong verb
func MethodNotAllowedHandler(c *gin.Context) {
	err := fmt.Errorf("%s %s: %w", c.Request.Method, c.Request.URL.Path, auctionerrors.ErrMethodNotAllowed)
	helpers.HandleServiceError(c, "MethodNotAllowedHandler", err, nil)
}

// NotFoundHandler answers unknown routes in the JSON envelope
func NotFoundHandler(c *gin.Context) {
	err := fmt.Errorf("route %s not found", c.Request.URL.Path)
	utils.JSONError(c, http.StatusNotFound, err, "route_not_found", "route not found")
}
