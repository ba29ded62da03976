package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourbook/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

// --- users ---

func TestUserRepo_Create_NormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "Ann", "ann@example.com", "hash", "user", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &model.User{Name: "Ann", Email: "  Ann@Example.COM ", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))

	assert.Len(t, u.ID, 36)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE email=?")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := NewUserRepo(db).GetByEmail(context.Background(), "Nobody@example.com")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_UpdateDetails_KeepsPasswordWhenEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE users SET name=?, email=? WHERE id=?")).
		WithArgs("New", "new@example.com", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewUserRepo(db).UpdateDetails(context.Background(), "u1", "New", "new@example.com", ""))
}

func TestUserRepo_UpdateDetails_Missing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE users SET name=?, email=?, password_hash=? WHERE id=?")).
		WithArgs("New", "new@example.com", "h", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUserRepo(db).UpdateDetails(context.Background(), "gone", "New", "new@example.com", "h")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_ToggleWishlist(t *testing.T) {
	t.Run("adds when absent", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM user_wishlist")).WithArgs("u1", "t1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q("INSERT INTO user_wishlist")).WithArgs("u1", "t1").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		present, err := NewUserRepo(db).ToggleWishlist(context.Background(), "u1", "t1")
		require.NoError(t, err)
		assert.True(t, present)
	})

	t.Run("removes when present", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM user_wishlist")).WithArgs("u1", "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		present, err := NewUserRepo(db).ToggleWishlist(context.Background(), "u1", "t1")
		require.NoError(t, err)
		assert.False(t, present)
	})

	t.Run("concurrent insert counts as present", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM user_wishlist")).WithArgs("u1", "t1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q("INSERT INTO user_wishlist")).WithArgs("u1", "t1").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'u1-t1' for key 'uq_wishlist_user_tour'"})
		mock.ExpectCommit()

		present, err := NewUserRepo(db).ToggleWishlist(context.Background(), "u1", "t1")
		require.NoError(t, err)
		assert.True(t, present)
	})

	t.Run("rolls back on insert failure", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM user_wishlist")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q("INSERT INTO user_wishlist")).WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		_, err := NewUserRepo(db).ToggleWishlist(context.Background(), "u1", "t1")
		assert.Error(t, err)
	})
}

// --- tours ---

var tourCols = []string{"id", "name", "description", "price", "location", "image_url", "max_capacity", "start_date", "created_at"}

func TestTourRepo_List_EscapesQuery(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("WHERE LOWER(name) LIKE ? OR LOWER(location) LIKE ?")).
		WithArgs(`%50\% off%`, `%50\% off%`).
		WillReturnRows(sqlmock.NewRows(tourCols).
			AddRow("t1", "Alps", "d", 10.5, "Alps", "no-photo.jpg", 20, start, created).
			AddRow("t2", "Beach", "d", 5.0, "Coast", "b.jpg", 10, nil, created))

	tours, err := NewTourRepo(db).List(context.Background(), " 50% OFF ")
	require.NoError(t, err)
	require.Len(t, tours, 2)
	require.NotNil(t, tours[0].StartDate)
	assert.Equal(t, start, *tours[0].StartDate)
	assert.Nil(t, tours[1].StartDate)
}

func TestTourRepo_GetMany_PreservesOrder(t *testing.T) {
	db, mock := newMock(t)
	created := time.Now().UTC()
	mock.ExpectQuery(q("FROM tours WHERE id IN (?,?,?)")).
		WithArgs("b", "missing", "a").
		WillReturnRows(sqlmock.NewRows(tourCols).
			AddRow("a", "A", "d", 1.0, "x", "i", 5, nil, created).
			AddRow("b", "B", "d", 1.0, "x", "i", 5, nil, created))

	tours, err := NewTourRepo(db).GetMany(context.Background(), []string{"b", "missing", "a"})
	require.NoError(t, err)
	require.Len(t, tours, 2)
	assert.Equal(t, "b", tours[0].ID)
	assert.Equal(t, "a", tours[1].ID)
}

func TestTourRepo_DeleteCascade(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM tours WHERE id=?")).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM bookings WHERE tour_id=?")).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q("DELETE FROM comments WHERE tour_id=?")).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM user_wishlist WHERE tour_id=?")).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewTourRepo(db).DeleteCascade(context.Background(), "t1"))
}

func TestTourRepo_DeleteCascade_RollsBackOnFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM tours WHERE id=?")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM bookings WHERE tour_id=?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM comments WHERE tour_id=?")).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	assert.Error(t, NewTourRepo(db).DeleteCascade(context.Background(), "t1"))
}

func TestTourRepo_DeleteCascade_Missing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM tours WHERE id=?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, NewTourRepo(db).DeleteCascade(context.Background(), "nope"), ErrNotFound)
}

// --- bookings ---

func TestBookingRepo_CreateWithinCapacity(t *testing.T) {
	sumQuery := q("SELECT COALESCE(SUM(head_count),0) FROM bookings WHERE tour_id=?")

	t.Run("fits", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(sumQuery).WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(7))
		mock.ExpectExec(q("INSERT INTO bookings")).
			WithArgs(sqlmock.AnyArg(), "u1", "t1", 3, 30.0, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		b := &model.Booking{UserID: "u1", TourID: "t1", HeadCount: 3, TotalPrice: 30}
		require.NoError(t, NewBookingRepo(db).CreateWithinCapacity(context.Background(), b, 10))
		assert.NotEmpty(t, b.ID)
	})

	t.Run("over capacity", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(sumQuery).WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(8))
		mock.ExpectRollback()

		b := &model.Booking{UserID: "u1", TourID: "t1", HeadCount: 3}
		err := NewBookingRepo(db).CreateWithinCapacity(context.Background(), b, 10)
		assert.ErrorIs(t, err, ErrCapacity)
		assert.Empty(t, b.ID)
	})
}

func TestBookingRepo_HeadCounts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("GROUP BY tour_id")).
		WithArgs("t1", "t2").
		WillReturnRows(sqlmock.NewRows([]string{"tour_id", "sum"}).AddRow("t1", 4))

	counts, err := NewBookingRepo(db).HeadCounts(context.Background(), "t1", "t2")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"t1": 4}, counts)
}

func TestBookingRepo_HeadCounts_NoIDs(t *testing.T) {
	db, _ := newMock(t)
	counts, err := NewBookingRepo(db).HeadCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestBookingRepo_Delete_Missing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM bookings WHERE id=?")).WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewBookingRepo(db).Delete(context.Background(), "b1"), ErrNotFound)
}

// --- comments ---

func TestCommentRepo_ListByTour_JoinsAuthor(t *testing.T) {
	db, mock := newMock(t)
	newer := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("LEFT JOIN users u ON u.id = c.user_id")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "tour_id", "text", "rating", "created_at", "name"}).
			AddRow("c2", "u1", "t1", "great", 5, newer, "Ann").
			AddRow("c1", "u2", "t1", "ok", 3, older, ""))

	comments, err := NewCommentRepo(db).ListByTour(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c2", comments[0].ID)
	assert.Equal(t, model.UserSummary{ID: "u1", Name: "Ann"}, comments[0].User)
	assert.Equal(t, "u2", comments[1].User.ID)
}

func TestCommentRepo_RatingStats(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT tour_id, SUM(rating), COUNT(*) FROM comments")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"tour_id", "sum", "count"}).AddRow("t1", 9, 2))

	stats, err := NewCommentRepo(db).RatingStats(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, RatingStat{Sum: 9, Count: 2}, stats["t1"])
}

func TestCommentRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM comments WHERE id=?")).WithArgs("c9").WillReturnError(sql.ErrNoRows)

	_, err := NewCommentRepo(db).GetByID(context.Background(), "c9")
	assert.ErrorIs(t, err, ErrNotFound)
}
