package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/tourbook/internal/model"
)

// UserRepo persists users and their wishlists (the identity store).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,created_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts the user, filling ID and CreatedAt.  The password must
// already be hashed.  A taken email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateDetails replaces name and email, and the password hash when
// passwordHash is non-empty.
func (r *UserRepo) UpdateDetails(ctx context.Context, id, name, email, passwordHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		res sql.Result
		err error
	)
	if passwordHash == "" {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE users SET name=?, email=? WHERE id=?", name, email, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE users SET name=?, email=?, password_hash=? WHERE id=?", name, email, passwordHash, id)
	}
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Summaries loads the public projection of the given users keyed by id.
// Unknown ids are absent from the result.
func (r *UserRepo) Summaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	out := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, email FROM users WHERE id IN ("+placeholders(len(ids))+")", stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// WishlistTourIDs returns the user's wishlist in insertion order.
func (r *UserRepo) WishlistTourIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT tour_id FROM user_wishlist WHERE user_id=? ORDER BY seq", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ToggleWishlist removes tourID from the user's wishlist when present and
// appends it otherwise.  It reports whether the tour is on the list
// afterwards.
func (r *UserRepo) ToggleWishlist(ctx context.Context, userID, tourID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"DELETE FROM user_wishlist WHERE user_id=? AND tour_id=?", userID, tourID)
	if err != nil {
		return false, err
	}
	removed, _ := res.RowsAffected()
	if removed == 0 {
		// a concurrent toggle may have inserted the pair first; it is present
		// either way
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_wishlist (user_id, tour_id) VALUES (?,?)", userID, tourID); err != nil && !isDuplicate(err) {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return removed == 0, nil
}
