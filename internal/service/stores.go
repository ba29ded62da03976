package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tourbook/internal/model"
	"github.com/iliyamo/tourbook/internal/repository"
)

// UserStore is the identity store the services depend on.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateDetails(ctx context.Context, id, name, email, passwordHash string) error
	WishlistTourIDs(ctx context.Context, userID string) ([]string, error)
	ToggleWishlist(ctx context.Context, userID, tourID string) (bool, error)
	Summaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
}

// TourStore is the catalog store.
type TourStore interface {
	Create(ctx context.Context, t *model.Tour) error
	GetByID(ctx context.Context, id string) (*model.Tour, error)
	List(ctx context.Context, query string) ([]model.Tour, error)
	GetMany(ctx context.Context, ids []string) ([]model.Tour, error)
	Update(ctx context.Context, t *model.Tour) error
	DeleteCascade(ctx context.Context, id string) error
}

// BookingStore is the booking store.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	CreateWithinCapacity(ctx context.Context, b *model.Booking, maxCapacity int) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	Delete(ctx context.Context, id string) error
	HeadCounts(ctx context.Context, tourIDs ...string) (map[string]int, error)
}

// CommentStore is the review store.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByTour(ctx context.Context, tourID string) ([]model.CommentView, error)
	Update(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id string) error
	RatingStats(ctx context.Context, tourIDs ...string) (map[string]repository.RatingStat, error)
}

// EventPublisher sends domain events.  *queue.Publisher satisfies it; a nil
// EventPublisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// publishTimeout bounds how long a request waits on the broker.
const publishTimeout = 2 * time.Second

// publish is best effort: a broker failure is logged and never fails the
// operation that already committed.
func publish(ctx context.Context, ev EventPublisher, log *zap.Logger, key string, payload any) {
	if ev == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := ev.Publish(ctx, key, payload); err != nil {
		log.Warn("publish event failed", zap.String("routing_key", key), zap.Error(err))
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// tourIndex resolves the given tour ids into a lookup map.
func tourIndex(ctx context.Context, tours TourStore, ids []string) (map[string]model.Tour, error) {
	list, err := tours.GetMany(ctx, uniq(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Tour, len(list))
	for _, t := range list {
		out[t.ID] = t
	}
	return out, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
