package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/tourbook/internal/model"
)

// CommentRepo persists tour reviews.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo returns a new CommentRepo bound to the given database.
func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

// RatingStat is the sum and number of ratings left on one tour.
type RatingStat struct {
	Sum   int
	Count int
}

// Create inserts the comment and fills its ID and CreatedAt.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	c.ID = uuid.NewString()
	c.CreatedAt = now()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (id, user_id, tour_id, text, rating, created_at) VALUES (?,?,?,?,?,?)",
		c.ID, c.UserID, c.TourID, c.Text, c.Rating, c.CreatedAt)
	return err
}

// GetByID returns ErrNotFound when no comment has the id.
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.QueryRowContext(ctx,
		"SELECT id,user_id,tour_id,text,rating,created_at FROM comments WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.UserID, &c.TourID, &c.Text, &c.Rating, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByTour returns the tour's comments newest first, each with its
// author's name.  Comments whose author no longer exists keep an empty
// name.
func (r *CommentRepo) ListByTour(ctx context.Context, tourID string) ([]model.CommentView, error) {
	const q = `SELECT c.id, c.user_id, c.tour_id, c.text, c.rating, c.created_at, COALESCE(u.name, '')
               FROM comments c
               LEFT JOIN users u ON u.id = c.user_id
               WHERE c.tour_id = ?
               ORDER BY c.created_at DESC, c.id`
	rows, err := r.db.QueryContext(ctx, q, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CommentView{}
	for rows.Next() {
		var v model.CommentView
		if err := rows.Scan(&v.ID, &v.UserID, &v.TourID, &v.Text, &v.Rating, &v.CreatedAt, &v.User.Name); err != nil {
			return nil, err
		}
		v.User.ID = v.UserID
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update stores the comment's text and rating.
func (r *CommentRepo) Update(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE comments SET text=?, rating=? WHERE id=?", c.Text, c.Rating, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the comment.
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RatingStats aggregates ratings per tour.  Tours without comments are
// absent from the map.
func (r *CommentRepo) RatingStats(ctx context.Context, tourIDs ...string) (map[string]RatingStat, error) {
	out := make(map[string]RatingStat, len(tourIDs))
	if len(tourIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT tour_id, SUM(rating), COUNT(*) FROM comments WHERE tour_id IN ("+placeholders(len(tourIDs))+") GROUP BY tour_id",
		stringArgs(tourIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id string
			st RatingStat
		)
		if err := rows.Scan(&id, &st.Sum, &st.Count); err != nil {
			return nil, err
		}
		out[id] = st
	}
	return out, rows.Err()
}
