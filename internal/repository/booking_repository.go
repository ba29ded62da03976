package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/tourbook/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  A booking reserves
// HeadCount places on one tour; its TotalPrice is fixed when it is created.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id,user_id,tour_id,head_count,total_price,booking_date"

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.TourID, &b.HeadCount, &b.TotalPrice, &b.BookingDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBooking(ctx context.Context, ex execer, b *model.Booking) error {
	b.ID = uuid.NewString()
	b.BookingDate = now()
	const q = `INSERT INTO bookings (id, user_id, tour_id, head_count, total_price, booking_date) VALUES (?,?,?,?,?,?)`
	_, err := ex.ExecContext(ctx, q, b.ID, b.UserID, b.TourID, b.HeadCount, b.TotalPrice, b.BookingDate)
	return err
}

// Create inserts the booking without looking at the tour's capacity.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	return insertBooking(ctx, r.db, b)
}

// CreateWithinCapacity sums the head counts already booked on the tour and
// inserts b only when the total stays within maxCapacity, all inside one
// transaction.  It returns ErrCapacity otherwise.  Callers serialise
// concurrent calls for the same tour (see package lock).
func (r *BookingRepo) CreateWithinCapacity(ctx context.Context, b *model.Booking, maxCapacity int) error {
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

	var booked int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(head_count),0) FROM bookings WHERE tour_id=?", b.TourID).Scan(&booked); err != nil {
		return err
	}
	if booked+b.HeadCount > maxCapacity {
		return ErrCapacity
	}
	if err := insertBooking(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns ErrNotFound when no booking has the id.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1", id))
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY booking_date DESC, id", userID)
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY booking_date DESC, id")
}

// Delete removes the booking.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HeadCounts returns the number of places booked per tour.  Tours with no
// bookings are absent from the map.
func (r *BookingRepo) HeadCounts(ctx context.Context, tourIDs ...string) (map[string]int, error) {
	out := make(map[string]int, len(tourIDs))
	if len(tourIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT tour_id, SUM(head_count) FROM bookings WHERE tour_id IN ("+placeholders(len(tourIDs))+") GROUP BY tour_id",
		stringArgs(tourIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id  string
			sum int
		)
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, err
		}
		out[id] = sum
	}
	return out, rows.Err()
}
