package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	auction "auction-house/internal/auctionService"
	model "auction-house/internal/models"
	"auction-house/internal/repository"

	"github.com/shopspring/decimal"
)

// stores lists the backends each micro benchmark runs against
var stores = []struct {
	name string
	open func(b *testing.B) repository.AuctionDB
}{
	{"memory", func(b *testing.B) repository.AuctionDB { return repository.NewMemoryRepo() }},
	{"sqlite", func(b *testing.B) repository.AuctionDB {
		repo, err := repository.NewSQLiteRepo(context.Background(), filepath.Join(b.TempDir(), "bench.db"))
		if err != nil {
			b.Fatalf("open sqlite: %v", err)
		}
		b.Cleanup(func() { _ = repo.Close() })
		return repo
	}},
}

// seedAuctions registers one seller, numUsers bidders and numAuctions open auctions
func seedAuctions(b *testing.B, repo repository.AuctionDB, numUsers, numAuctions int) {
	b.Helper()
	ctx := context.Background()

	if err := repo.SaveUser(ctx, model.User{UserID: "seller"}); err != nil {
		b.Fatalf("save seller: %v", err)
	}
	for i := 0; i < numUsers; i++ {
		if err := repo.SaveUser(ctx, model.User{UserID: fmt.Sprintf("user_%d", i)}); err != nil {
			b.Fatalf("save user: %v", err)
		}
	}
	for i := 0; i < numAuctions; i++ {
		err := repo.CreateAuction(ctx, model.Auction{
			AuctionID:   fmt.Sprintf("auction_%d", i),
			SellerID:    "seller",
			Title:       fmt.Sprintf("Bench %d", i),
			Description: "Benchmark auction",
			Category:    model.CategoryOther,
			ImageURL:    "https://example.com/bench.jpg",
			PublishedAt: time.Now().UTC(),
		})
		if err != nil {
			b.Fatalf("create auction: %v", err)
		}
	}
}

// Benchmark 1: SubmitBid - one bid per auction (Low Contention - Micro Benchmark)
func Benchmark_SubmitBid_Isolated(b *testing.B) {
	for _, store := range stores {
		b.Run(store.name, func(b *testing.B) {
			repo := store.open(b)
			seedAuctions(b, repo, 1, b.N)
			svc := auction.NewAuctionService(repo)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				price := decimal.NewFromInt(int64(1 + rand.Intn(100)))
				if _, err := svc.SubmitBid(ctx, fmt.Sprintf("auction_%d", i), "user_0", price); err != nil {
					b.Fatalf("failed to submit bid: %v", err)
				}
			}
		})
	}
}

// Benchmark 2: SubmitBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_SubmitBid_ConcurrentSharedAuction(b *testing.B) {
	const users = 64

	for _, store := range stores {
		b.Run(store.name, func(b *testing.B) {
			repo := store.open(b)
			seedAuctions(b, repo, users, 1)
			svc := auction.NewAuctionService(repo)
			ctx := context.Background()

			var lastBid int64

			b.ReportAllocs()
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
				for pb.Next() {
					userID := fmt.Sprintf("user_%d", rnd.Intn(users))
					next := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
					_, _ = svc.SubmitBid(ctx, "auction_0", userID, decimal.NewFromInt(next))
				}
			})
		})
	}
}

// Benchmark 3: Listing - read path over an auction with a deep ledger
func Benchmark_Listing_DeepLedger(b *testing.B) {
	const bids = 500

	for _, store := range stores {
		b.Run(store.name, func(b *testing.B) {
			repo := store.open(b)
			seedAuctions(b, repo, 2, 1)
			svc := auction.NewAuctionService(repo)
			ctx := context.Background()

			for i := 1; i <= bids; i++ {
				bidder := fmt.Sprintf("user_%d", i%2)
				if _, err := svc.SubmitBid(ctx, "auction_0", bidder, decimal.NewFromInt(int64(i))); err != nil {
					b.Fatalf("seed bid %d: %v", i, err)
				}
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				view, err := svc.Listing(ctx, "auction_0", "user_0")
				if err != nil {
					b.Fatalf("listing: %v", err)
				}
				if view.BidCount != bids {
					b.Fatalf("expected %d bids, got %d", bids, view.BidCount)
				}
			}
		})
	}
}

// Benchmark 4: ResolveWinner - parallel reads
func Benchmark_ResolveWinner_Parallel(b *testing.B) {
	for _, store := range stores {
		b.Run(store.name, func(b *testing.B) {
			repo := store.open(b)
			seedAuctions(b, repo, 1, 16)
			svc := auction.NewAuctionService(repo)
			ctx := context.Background()

			for i := 0; i < 16; i++ {
				if _, err := svc.SubmitBid(ctx, fmt.Sprintf("auction_%d", i), "user_0", decimal.NewFromInt(10)); err != nil {
					b.Fatalf("seed bid: %v", err)
				}
			}

			b.ReportAllocs()
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
				for pb.Next() {
					if _, err := svc.ResolveWinner(ctx, fmt.Sprintf("auction_%d", rnd.Intn(16))); err != nil {
						b.Errorf("resolve winner: %v", err)
						return
					}
				}
			})
		})
	}
}
