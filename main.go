package main

import (
	auction "auction-house/internal/auctionService"
	"auction-house/internal/config"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		utils.Fatal("Failed to load config", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.Logger.Level); err != nil {
		utils.Warn("Unknown log level, keeping info", map[string]any{"level": cfg.Logger.Level})
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		utils.Fatal("Failed to open storage", map[string]any{"driver": cfg.Storage.Driver, "error": err.Error()})
	}
	defer closeRepo()

	auctionSvc := auction.NewAuctionService(repo)

	if cfg.SeedDemo {
		if err := prepopulateAuctions(ctx, repo, auctionSvc); err != nil {
			utils.Error("Failed to seed demo data", map[string]any{"error": err.Error()})
		}
	}

	router := server.SetupRouter(auctionSvc)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": cfg.Addr(), "storage": cfg.Storage.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("Server stopped unexpectedly", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("Graceful shutdown failed", map[string]any{"error": err.Error()})
	}
	utils.Info("Auction server stopped", nil)
}

// openRepository builds the configured store and a function releasing it
func openRepository(ctx context.Context, cfg config.StorageConfig) (repository.AuctionDB, func(), error) {
	if cfg.Driver == config.DriverSQLite {
		repo, err := repository.NewSQLiteRepo(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				utils.Error("Failed to close database", map[string]any{"error": err.Error()})
			}
		}, nil
	}
	return repository.NewMemoryRepo(), func() {}, nil
}

// prepopulateAuctions adds sample sellers and auctions to an empty store
func prepopulateAuctions(ctx context.Context, repo repository.AuctionDB, svc *auction.AuctionService) error {
	existing, err := repo.ListAuctions(ctx, model.AuctionFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	sellers := []model.User{
		{UserID: "seller1", Username: "alice"},
		{UserID: "seller2", Username: "bob"},
	}
	for _, u := range sellers {
		if err := svc.RegisterUser(ctx, u); err != nil {
			return err
		}
	}

	items := []auction.CreateAuctionRequest{
		{SellerID: "seller1", Title: "Vintage camera", Description: "Working 35mm film camera", Category: "electronics", ImageURL: "https://example.com/camera.jpg"},
		{SellerID: "seller1", Title: "Road bike", Description: "Aluminium frame, size M", Category: "sports", ImageURL: "https://example.com/bike.jpg"},
		{SellerID: "seller2", Title: "First edition novel", Description: "Hardcover, good condition", Category: "books", ImageURL: "https://example.com/book.jpg"},
	}
	for _, item := range items {
		if _, err := svc.CreateAuction(ctx, item); err != nil {
			return err
		}
	}

	utils.Info("Seeded demo auctions", map[string]any{"count": len(items)})
	return nil
}
