package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/tourbook/internal/model"
)

// TourRepo persists the tour catalog.
type TourRepo struct {
	db *sql.DB
}

// NewTourRepo returns a new TourRepo bound to the given database.
func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

const tourColumns = "id,name,description,price,location,image_url,max_capacity,start_date,created_at"

func scanTour(row interface{ Scan(...any) error }) (*model.Tour, error) {
	var (
		t     model.Tour
		start sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &t.Location,
		&t.ImageURL, &t.MaxCapacity, &start, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if start.Valid {
		st := start.Time
		t.StartDate = &st
	}
	return &t, nil
}

func nullTime(t *model.Tour) sql.NullTime {
	if t.StartDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.StartDate.UTC(), Valid: true}
}

// Create inserts a tour and fills its ID and CreatedAt.
func (r *TourRepo) Create(ctx context.Context, t *model.Tour) error {
	t.ID = uuid.NewString()
	t.CreatedAt = now()
	const q = `INSERT INTO tours (id, name, description, price, location, image_url, max_capacity, start_date, created_at)
               VALUES (?,?,?,?,?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.Name, t.Description, t.Price, t.Location,
		t.ImageURL, t.MaxCapacity, nullTime(t), t.CreatedAt)
	return err
}

// GetByID returns ErrNotFound when no tour has the id.
func (r *TourRepo) GetByID(ctx context.Context, id string) (*model.Tour, error) {
	return scanTour(r.db.QueryRowContext(ctx,
		"SELECT "+tourColumns+" FROM tours WHERE id=? LIMIT 1", id))
}

// escapeLike escapes the LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// List returns all tours, oldest first.  A non-empty query restricts the
// result to tours whose name or location contains it, ignoring case.
func (r *TourRepo) List(ctx context.Context, query string) ([]model.Tour, error) {
	q := "SELECT " + tourColumns + " FROM tours"
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
		q += " WHERE LOWER(name) LIKE ? OR LOWER(location) LIKE ?"
		args = append(args, pattern, pattern)
	}
	q += " ORDER BY created_at, id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// GetMany loads the tours with the given ids in the order the ids were
// supplied.  Ids with no matching tour are skipped.
func (r *TourRepo) GetMany(ctx context.Context, ids []string) ([]model.Tour, error) {
	if len(ids) == 0 {
		return []model.Tour{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+tourColumns+" FROM tours WHERE id IN ("+placeholders(len(ids))+")", stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byID := make(map[string]model.Tour, len(ids))
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		byID[t.ID] = *t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Tour, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Update overwrites every mutable column of the tour.
func (r *TourRepo) Update(ctx context.Context, t *model.Tour) error {
	const q = `UPDATE tours SET name=?, description=?, price=?, location=?, image_url=?, max_capacity=?, start_date=?
               WHERE id=?`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Description, t.Price, t.Location,
		t.ImageURL, t.MaxCapacity, nullTime(t), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCascade removes the tour together with its bookings, its comments
// and every wishlist entry that points at it.  Either all of it is removed
// or none of it.
func (r *TourRepo) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "DELETE FROM tours WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	for _, q := range []string{
		"DELETE FROM bookings WHERE tour_id=?",
		"DELETE FROM comments WHERE tour_id=?",
		"DELETE FROM user_wishlist WHERE tour_id=?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
