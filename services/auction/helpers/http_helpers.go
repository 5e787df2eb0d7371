package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"auction-house/internal/auctionerrors"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by the identity middleware
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// CurrentUserID returns the resolved identity, or "" for anonymous requests
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// RequireUser returns the resolved identity or writes a 401 and returns false
func RequireUser(c *gin.Context, handlerName string) (string, bool) {
	userID := CurrentUserID(c)
	if userID == "" {
		HandleServiceError(c, handlerName, auctionerrors.ErrLoginRequired, nil)
		c.Abort()
		return "", false
	}
	return userID, true
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "validation_error", "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// HandleServiceError maps err to an HTTP response and logs it with ctx
func HandleServiceError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), auctionerrors.Code(err), message)

	fields := map[string]any{"handler": handlerName, "status": status, "error": err.Error()}
	for k, v := range ctx {
		fields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrNoWinner):
		return http.StatusNotFound, "no winner for auction"
	case errors.Is(err, auctionerrors.ErrCategoryNotSpecified):
		return http.StatusNotFound, "category not specified"
	case errors.Is(err, auctionerrors.ErrSellerCannotBid):
		return http.StatusBadRequest, "seller cannot bid"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid too low"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid"
	case errors.Is(err, auctionerrors.ErrAlreadyWatching):
		return http.StatusBadRequest, "already in watchlist"
	case errors.Is(err, auctionerrors.ErrNotSeller):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, auctionerrors.ErrClosedAuctionView):
		return http.StatusForbidden, "this auction is closed"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed"
	case errors.Is(err, auctionerrors.ErrAlreadyClosed):
		return http.StatusConflict, "auction already closed"
	case errors.Is(err, auctionerrors.ErrLoginRequired):
		return http.StatusUnauthorized, "login required"
	case errors.Is(err, auctionerrors.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed"
	}

	switch auctionerrors.KindOf(err) {
	case auctionerrors.KindValidation:
		return http.StatusBadRequest, strings.ReplaceAll(auctionerrors.Code(err), "_", " ")
	case auctionerrors.KindNotFound:
		return http.StatusNotFound, "not found"
	case auctionerrors.KindConflict:
		return http.StatusConflict, "conflict"
	case auctionerrors.KindForbidden:
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// SafeRedirect returns next when it is a local path, otherwise fallback
func SafeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	return next
}

// AuctionPath is the canonical location of an auction's detail view
func AuctionPath(auctionID string) string {
	return "/auctions/" + auctionID
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
