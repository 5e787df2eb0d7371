package server

import (
	auction "auction-house/internal/auctionService"
	handler "auction-house/services/auction/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.AuctionService) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(MetricsMiddleware)

	router.NoMethod(handler.MethodNotAllowedHandler)
	router.NoRoute(handler.NotFoundHandler)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auctionHandler := handler.NewAuctionHandler(auctionService)

	api := router.Group("")
	api.Use(IdentityMiddleware(auctionService))

	auctions := api.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListActiveAuctionsHandler)
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetListingHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.SubmitBidHandler)
		auctions.POST("/:auction_id/close", auctionHandler.CloseAuctionHandler)
		auctions.GET("/:auction_id/winner", auctionHandler.GetWinnerHandler)
		auctions.GET("/:auction_id/comments", auctionHandler.GetCommentsHandler)
		auctions.POST("/:auction_id/comments", auctionHandler.AddCommentHandler)
	}

	watchlist := api.Group("/watchlist")
	{
		watchlist.GET("", auctionHandler.GetWatchlistHandler)
		watchlist.POST("", auctionHandler.ToggleWatchlistHandler)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", auctionHandler.GetCategoriesHandler)
		categories.GET("/:category", auctionHandler.GetCategoryAuctionsHandler)
	}

	users := api.Group("/users")
	{
		users.GET("/me/panel", auctionHandler.GetUserPanelHandler)
	}

	return router
}
