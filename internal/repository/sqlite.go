package repository

import (
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

var _ AuctionDB = (*SQLiteRepo)(nil)

// SQLiteRepo implements AuctionDB on SQLite. The pool holds a single
// connection, so each transaction below is serialized against every other
// write, which makes the bid and close paths atomic per auction.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepo opens (or creates) the database at dbPath and runs migrations
func NewSQLiteRepo(ctx context.Context, dbPath string) (*SQLiteRepo, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}

	return &SQLiteRepo{db: db, now: utcNow}, nil
}

// Close releases the database handle
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveUser inserts a user or updates its username
func (r *SQLiteRepo) SaveUser(ctx context.Context, user model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET username = CASE WHEN excluded.username = '' THEN users.username ELSE excluded.username END`,
		user.UserID, user.Username,
	)
	if err != nil {
		return fmt.Errorf("save user %s: %w", user.UserID, err)
	}
	return nil
}

// GetUser returns a user by ID
func (r *SQLiteRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	return getUser(ctx, r.db, userID)
}

func getUser(ctx context.Context, q queryer, userID string) (model.User, error) {
	var user model.User
	err := q.QueryRowContext(ctx, "SELECT id, username FROM users WHERE id = ?", userID).
		Scan(&user.UserID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

// CreateAuction stores a new auction
func (r *SQLiteRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create auction: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getUser(ctx, tx, auction.SellerID); err != nil {
		return fmt.Errorf("create auction %s: seller: %w", auction.AuctionID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO auctions (id, seller_id, title, description, category, image_url, current_price, published_at, closed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		auction.AuctionID, auction.SellerID, auction.Title, auction.Description, string(auction.Category),
		auction.ImageURL, auction.CurrentPrice, auction.PublishedAt.UnixNano(), auction.Closed,
	)
	if err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create auction: commit: %w", err)
	}
	return nil
}

const auctionColumns = "id, seller_id, title, description, category, image_url, current_price, published_at, closed"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (model.Auction, error) {
	var (
		a         model.Auction
		category  string
		published int64
	)
	err := row.Scan(&a.AuctionID, &a.SellerID, &a.Title, &a.Description, &category,
		&a.ImageURL, &a.CurrentPrice, &published, &a.Closed)
	if err != nil {
		return model.Auction{}, err
	}
	a.Category = model.Category(category)
	a.PublishedAt = time.Unix(0, published).UTC()
	return a, nil
}

// GetAuction returns a single auction
func (r *SQLiteRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	return getAuction(ctx, r.db, auctionID)
}

func getAuction(ctx context.Context, q queryer, auctionID string) (model.Auction, error) {
	a, err := scanAuction(q.QueryRowContext(ctx, "SELECT "+auctionColumns+" FROM auctions WHERE id = ?", auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ListAuctions returns the auctions matching filter, newest publication first
func (r *SQLiteRepo) ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	if filter.AuctionIDs != nil && len(filter.AuctionIDs) == 0 {
		return []model.Auction{}, nil
	}

	var (
		where []string
		args  []any
	)
	if filter.Closed != nil {
		where = append(where, "closed = ?")
		args = append(args, *filter.Closed)
	}
	if filter.SellerID != "" {
		where = append(where, "seller_id = ?")
		args = append(args, filter.SellerID)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if len(filter.AuctionIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.AuctionIDs)), ",")
		where = append(where, "id IN ("+placeholders+")")
		for _, id := range filter.AuctionIDs {
			args = append(args, id)
		}
	}

	query := "SELECT " + auctionColumns + " FROM auctions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published_at DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	auctions := make([]model.Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("list auctions: scan: %w", err)
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list auctions: iterate: %w", err)
	}
	return auctions, nil
}

// CloseAuction flips the auction to closed if requesterID is its seller
func (r *SQLiteRepo) CloseAuction(ctx context.Context, auctionID, requesterID string) (model.Auction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Auction{}, fmt.Errorf("close auction: begin transaction: %w", err)
	}
	defer tx.Rollback()

	auction, err := getAuction(ctx, tx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("close auction: %w", err)
	}
	if err := auction.CheckClose(requesterID); err != nil {
		return model.Auction{}, fmt.Errorf("close auction: %w", err)
	}

	res, err := tx.ExecContext(ctx, "UPDATE auctions SET closed = 1 WHERE id = ? AND closed = 0", auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, err)
	} else if n == 0 {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, auctionerrors.ErrAlreadyClosed)
	}

	if err := tx.Commit(); err != nil {
		return model.Auction{}, fmt.Errorf("close auction: commit: %w", err)
	}

	auction.Closed = true
	return auction, nil
}

// RecordBid appends the bid and advances the auction's current price in one
// transaction. The bid's CreatedAt is assigned inside that transaction.
func (r *SQLiteRepo) RecordBid(ctx context.Context, bid model.Bid) (model.Auction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Auction{}, fmt.Errorf("record bid: begin transaction: %w", err)
	}
	defer tx.Rollback()

	auction, err := getAuction(ctx, tx, bid.AuctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("record bid: %w", err)
	}
	if _, err := getUser(ctx, tx, bid.BidderID); err != nil {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: bidder: %w", bid.AuctionID, err)
	}
	if err := auction.CheckBid(bid.BidderID, bid.Price); err != nil {
		return model.Auction{}, fmt.Errorf("record bid: %w", err)
	}

	var last int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(created_at), 0) FROM bids WHERE auction_id = ?", bid.AuctionID,
	).Scan(&last)
	if err != nil {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: last submission: %w", bid.AuctionID, err)
	}
	bid.CreatedAt = submissionTime(r.now(), time.Unix(0, last).UTC())

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bids (id, auction_id, bidder_id, price, created_at) VALUES (?, ?, ?, ?, ?)",
		bid.BidID, bid.AuctionID, bid.BidderID, bid.Price.String(), bid.CreatedAt.UnixNano(),
	)
	if err != nil {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: insert: %w", bid.AuctionID, err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE auctions SET current_price = ? WHERE id = ? AND closed = 0",
		bid.Price.String(), bid.AuctionID,
	)
	if err != nil {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: update price: %w", bid.AuctionID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	} else if n == 0 {
		return model.Auction{}, fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionClosed)
	}

	if err := tx.Commit(); err != nil {
		return model.Auction{}, fmt.Errorf("record bid: commit: %w", err)
	}

	auction.CurrentPrice = decimal.NewNullDecimal(bid.Price)
	return auction, nil
}

func scanBid(row rowScanner) (model.Bid, error) {
	var (
		b       model.Bid
		created int64
	)
	if err := row.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Price, &created); err != nil {
		return model.Bid{}, err
	}
	b.CreatedAt = time.Unix(0, created).UTC()
	return b, nil
}

// GetBidsByAuction returns all bids for an auction in acceptance order
func (r *SQLiteRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if _, err := getAuction(ctx, r.db, auctionID); err != nil {
		return nil, fmt.Errorf("get bids: %w", err)
	}
	return listBids(ctx, r.db, auctionID)
}

// GetAuctionWithBids reads the auction and its ledger in one transaction
func (r *SQLiteRepo) GetAuctionWithBids(ctx context.Context, auctionID string) (model.Auction, []model.Bid, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Auction{}, nil, fmt.Errorf("get auction with bids: begin transaction: %w", err)
	}
	defer tx.Rollback()

	auction, err := getAuction(ctx, tx, auctionID)
	if err != nil {
		return model.Auction{}, nil, fmt.Errorf("get auction with bids: %w", err)
	}
	bids, err := listBids(ctx, tx, auctionID)
	if err != nil {
		return model.Auction{}, nil, err
	}
	return auction, bids, nil
}

func listBids(ctx context.Context, q queryer, auctionID string) ([]model.Bid, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, auction_id, bidder_id, price, created_at FROM bids WHERE auction_id = ? ORDER BY seq ASC",
		auctionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("get bids for auction %s: scan: %w", auctionID, err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get bids for auction %s: iterate: %w", auctionID, err)
	}
	return bids, nil
}

// GetHighestBid returns the max-price bid for an auction. Prices are
// compared as decimals, earliest accepted first on ties.
func (r *SQLiteRepo) GetHighestBid(ctx context.Context, auctionID string) (model.Bid, error) {
	bids, err := r.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("get highest bid: %w", err)
	}
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Price.GreaterThan(highest.Price) {
			highest = b
		}
	}
	return highest, nil
}

// GetAuctionIDsByBidder returns the distinct auctions a user has bid on
func (r *SQLiteRepo) GetAuctionIDsByBidder(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT auction_id FROM bids WHERE bidder_id = ? GROUP BY auction_id ORDER BY MIN(seq)",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", userID, err)
	}
	return collectIDs(rows)
}

// AddToWatchlist creates the (user, auction) membership
func (r *SQLiteRepo) AddToWatchlist(ctx context.Context, entry model.WatchlistEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add to watchlist: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getAuction(ctx, tx, entry.AuctionID); err != nil {
		return fmt.Errorf("add to watchlist: %w", err)
	}
	if _, err := getUser(ctx, tx, entry.UserID); err != nil {
		return fmt.Errorf("add to watchlist: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO watchlist (user_id, auction_id, created_at) VALUES (?, ?, ?) ON CONFLICT(user_id, auction_id) DO NOTHING",
		entry.UserID, entry.AuctionID, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("add to watchlist %s for user %s: %w", entry.AuctionID, entry.UserID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("add to watchlist %s for user %s: %w", entry.AuctionID, entry.UserID, err)
	} else if n == 0 {
		return fmt.Errorf("add to watchlist %s for user %s: %w", entry.AuctionID, entry.UserID, auctionerrors.ErrAlreadyWatching)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add to watchlist: commit: %w", err)
	}
	return nil
}

// RemoveFromWatchlist deletes the membership; removing a missing one is a no-op
func (r *SQLiteRepo) RemoveFromWatchlist(ctx context.Context, userID, auctionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM watchlist WHERE user_id = ? AND auction_id = ?", userID, auctionID)
	if err != nil {
		return fmt.Errorf("remove from watchlist %s for user %s: %w", auctionID, userID, err)
	}
	return nil
}

// IsWatching reports whether the membership exists
func (r *SQLiteRepo) IsWatching(ctx context.Context, userID, auctionID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM watchlist WHERE user_id = ? AND auction_id = ?", userID, auctionID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check watchlist %s for user %s: %w", auctionID, userID, err)
	}
	return n > 0, nil
}

// GetWatchedAuctionIDs returns every auction a user watches, open or closed
func (r *SQLiteRepo) GetWatchedAuctionIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT auction_id FROM watchlist WHERE user_id = ? ORDER BY created_at ASC, rowid ASC", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get watchlist for user %s: %w", userID, err)
	}
	return collectIDs(rows)
}

// AddComment appends a comment to the auction's thread
func (r *SQLiteRepo) AddComment(ctx context.Context, comment model.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add comment: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getAuction(ctx, tx, comment.AuctionID); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	if _, err := getUser(ctx, tx, comment.AuthorID); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO comments (id, auction_id, author_id, text, created_at) VALUES (?, ?, ?, ?, ?)",
		comment.CommentID, comment.AuctionID, comment.AuthorID, comment.Text, comment.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("add comment to auction %s: %w", comment.AuctionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add comment: commit: %w", err)
	}
	return nil
}

// GetCommentsByAuction returns the thread newest first
func (r *SQLiteRepo) GetCommentsByAuction(ctx context.Context, auctionID string) ([]model.Comment, error) {
	if _, err := getAuction(ctx, r.db, auctionID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, auction_id, author_id, text, created_at FROM comments WHERE auction_id = ? ORDER BY seq DESC",
		auctionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get comments for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		var (
			c       model.Comment
			created int64
		)
		if err := rows.Scan(&c.CommentID, &c.AuctionID, &c.AuthorID, &c.Text, &created); err != nil {
			return nil, fmt.Errorf("get comments for auction %s: scan: %w", auctionID, err)
		}
		c.CreatedAt = time.Unix(0, created).UTC()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get comments for auction %s: iterate: %w", auctionID, err)
	}
	return comments, nil
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
