package integrationtests

import (
	auction "auction-house/internal/auctionService"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var published = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

// backends lists the stores every API test runs against
var backends = []struct {
	name string
	open func(t *testing.T) repository.AuctionDB
}{
	{
		name: "memory",
		open: func(t *testing.T) repository.AuctionDB { return repository.NewMemoryRepo() },
	},
	{
		name: "sqlite",
		open: func(t *testing.T) repository.AuctionDB {
			repo, err := repository.NewSQLiteRepo(context.Background(), filepath.Join(t.TempDir(), "auctions.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		},
	},
}

// SetupTestRouterWithAuctions initializes the router and seeds the store with sellers and auctions.
func SetupTestRouterWithAuctions(t *testing.T, repo repository.AuctionDB, auctions ...model.Auction) *gin.Engine {
	t.Helper()
	ctx := context.Background()

	for _, a := range auctions {
		require.NoError(t, repo.SaveUser(ctx, model.User{UserID: a.SellerID, Username: a.SellerID + "_name"}))
		if a.PublishedAt.IsZero() {
			a.PublishedAt = published
		}
		require.NoError(t, repo.CreateAuction(ctx, a))
	}

	service := auction.NewAuctionService(repo)
	return server.SetupRouter(service)
}

func sampleAuction(id, seller string) model.Auction {
	return model.Auction{
		AuctionID:   id,
		SellerID:    seller,
		Title:       "title " + id,
		Description: "integration test auction",
		Category:    model.CategoryElectronics,
		ImageURL:    "https://example.com/" + id + ".jpg",
	}
}

// ExecuteRequestAndParse executes an HTTP request as userID (anonymous if empty) and parses the envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(server.HeaderUserID, userID)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return resp, w
}
