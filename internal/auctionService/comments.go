package auction

import (
	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/utils"
	"context"
	"fmt"
	"strings"
	"time"
)

// AddComment appends a remark to an auction. Closed auctions still accept comments.
func (s *AuctionService) AddComment(ctx context.Context, auctionID, authorID, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || authorID == "" {
		return models.Comment{}, fmt.Errorf("service: %w - empty text or author", auctionerrors.ErrInvalidComment)
	}

	comment := models.Comment{
		CommentID: utils.GenerateID(),
		AuctionID: auctionID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to add comment to auction %s: %w", auctionID, err)
	}
	return comment, nil
}

// Comments returns the thread of an auction, newest first
func (s *AuctionService) Comments(ctx context.Context, auctionID string) ([]models.Comment, error) {
	comments, err := s.repo.GetCommentsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get comments for auction %s: %w", auctionID, err)
	}
	return comments, nil
}
