package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/naveenspark/bookshelf/pkg/domain"
)

// CommentsAPI is the comment part of the backend.
type CommentsAPI interface {
	CreateComment(ctx context.Context, bookID int, content string) (*domain.CommentCreated, error)
	UpdateComment(ctx context.Context, commentID int, content string) error
	DeleteComment(ctx context.Context, commentID int) error
}

// Comments is the comment write store.
type Comments struct {
	api     CommentsAPI
	log     zerolog.Logger
	loading inflight
}

func NewComments(api CommentsAPI, log zerolog.Logger) *Comments {
	return &Comments{api: api, log: log.With().Str("store", "comments").Logger()}
}

// Loading reports whether a create, update or delete is in flight.
func (c *Comments) Loading() bool { return c.loading.active() }

// Create posts a comment on bookID.
func (c *Comments) Create(ctx context.Context, bookID int, content string) (*domain.CommentCreated, error) {
	if err := domain.Validate(domain.CommentRequest{Content: content}); err != nil {
		return nil, fmt.Errorf("store.CreateComment: %w", err)
	}
	done := c.loading.begin()
	defer done()

	created, err := c.api.CreateComment(ctx, bookID, content)
	if err != nil {
		return nil, fmt.Errorf("store.CreateComment: %w", err)
	}
	return created, nil
}

// Update replaces a comment's content.
func (c *Comments) Update(ctx context.Context, commentID int, content string) error {
	if err := domain.Validate(domain.CommentRequest{Content: content}); err != nil {
		return fmt.Errorf("store.UpdateComment: %w", err)
	}
	done := c.loading.begin()
	defer done()

	if err := c.api.UpdateComment(ctx, commentID, content); err != nil {
		return fmt.Errorf("store.UpdateComment: %w", err)
	}
	return nil
}

// Delete removes a comment.
func (c *Comments) Delete(ctx context.Context, commentID int) error {
	done := c.loading.begin()
	defer done()

	if err := c.api.DeleteComment(ctx, commentID); err != nil {
		c.log.Error().Err(err).Int("comment_id", commentID).Msg("delete comment")
		return fmt.Errorf("store.DeleteComment: %w", err)
	}
	return nil
}
