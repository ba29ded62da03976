package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/tourbook/internal/model"
	"github.com/iliyamo/tourbook/internal/repository"
)

// ReviewService manages comments on tours.
type ReviewService struct {
	comments CommentStore
	tours    TourStore
	users    UserStore
	log      *zap.Logger
}

func NewReviewService(comments CommentStore, tours TourStore, users UserStore, log *zap.Logger) *ReviewService {
	return &ReviewService{comments: comments, tours: tours, users: users, log: orNop(log)}
}

type CommentInput struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// CommentPatch is a partial comment update; nil fields are left unchanged.
type CommentPatch struct {
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

type commentRules struct {
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
}

func validateComment(c *model.Comment) error {
	c.Text = strings.TrimSpace(c.Text)
	return validateStruct(commentRules{Text: c.Text, Rating: c.Rating})
}

// ListComments returns the tour's comments, newest first.
func (s *ReviewService) ListComments(ctx context.Context, tourID string) ([]model.CommentView, error) {
	list, err := s.comments.ListByTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return list, nil
}

func (s *ReviewService) withAuthor(ctx context.Context, c *model.Comment) (*model.CommentView, error) {
	users, err := s.users.Summaries(ctx, []string{c.UserID})
	if err != nil {
		return nil, fmt.Errorf("resolve author: %w", err)
	}
	author := model.UserSummary{ID: c.UserID, Name: users[c.UserID].Name}
	return &model.CommentView{Comment: *c, User: author}, nil
}

// CreateComment posts the caller's comment on a tour.
func (s *ReviewService) CreateComment(ctx context.Context, actor model.Actor, tourID string, in CommentInput) (*model.CommentView, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	c := &model.Comment{UserID: actor.UserID, TourID: tourID, Text: in.Text, Rating: in.Rating}
	if err := validateComment(c); err != nil {
		return nil, err
	}
	if _, err := s.tours.GetByID(ctx, tourID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("load tour: %w", err)
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.withAuthor(ctx, c)
}

func (s *ReviewService) ownComment(ctx context.Context, actor model.Actor, id string) (*model.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if !actor.CanModify(c.UserID) {
		return nil, ErrUnauthorized
	}
	return c, nil
}

// UpdateComment applies a partial update.  Only the author or an admin may
// do so.
func (s *ReviewService) UpdateComment(ctx context.Context, actor model.Actor, id string, p CommentPatch) (*model.CommentView, error) {
	c, err := s.ownComment(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Text != nil {
		c.Text = *p.Text
	}
	if p.Rating != nil {
		c.Rating = *p.Rating
	}
	if err := validateComment(c); err != nil {
		return nil, err
	}
	if err := s.comments.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return s.withAuthor(ctx, c)
}

// DeleteComment removes a comment.  Only the author or an admin may do so.
func (s *ReviewService) DeleteComment(ctx context.Context, actor model.Actor, id string) error {
	if _, err := s.ownComment(ctx, actor, id); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	s.log.Info("comment deleted", zap.String("comment_id", id), zap.String("by", actor.UserID))
	return nil
}
