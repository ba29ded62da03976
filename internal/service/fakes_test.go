package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/tourbook/internal/model"
	"github.com/iliyamo/tourbook/internal/repository"
)

// --- In-memory stores ---
//
// memDB backs all four store fakes so that cascades and joins behave like
// the SQL repositories.  Error hooks let a test fail a single call.

type memDB struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*model.User
	wishlist map[string][]string
	tours    map[string]*model.Tour
	bookings map[string]*model.Booking
	comments map[string]*model.Comment
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[string]*model.User{},
		wishlist: map[string][]string{},
		tours:    map[string]*model.Tour{},
		bookings: map[string]*model.Booking{},
		comments: map[string]*model.Comment{},
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s%d", prefix, db.seq)
}

func (db *memDB) tick() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Second)
}

type memUsers struct {
	*memDB
	createFn func(ctx context.Context, u *model.User) error
}

func (s memUsers) Create(ctx context.Context, u *model.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = s.nextID("u")
	u.CreatedAt = s.tick()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memUsers) UpdateDetails(_ context.Context, id, name, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name, u.Email = name, email
	if hash != "" {
		u.PasswordHash = hash
	}
	return nil
}

func (s memUsers) WishlistTourIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.wishlist[userID]...), nil
}

func (s memUsers) ToggleWishlist(_ context.Context, userID, tourID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.wishlist[userID]
	for i, id := range list {
		if id == tourID {
			s.wishlist[userID] = append(list[:i:i], list[i+1:]...)
			return false, nil
		}
	}
	s.wishlist[userID] = append(list, tourID)
	return true, nil
}

func (s memUsers) Summaries(_ context.Context, ids []string) (map[string]model.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]model.UserSummary{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return out, nil
}

type memTours struct{ *memDB }

func (s memTours) Create(_ context.Context, t *model.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID("t")
	t.CreatedAt = s.tick()
	cp := *t
	s.tours[t.ID] = &cp
	return nil
}

func (s memTours) GetByID(_ context.Context, id string) (*model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s memTours) List(_ context.Context, query string) ([]model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	out := []model.Tour{}
	for _, t := range s.tours {
		if q == "" || strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Location), q) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memTours) GetMany(_ context.Context, ids []string) ([]model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Tour{}
	for _, id := range ids {
		if t, ok := s.tours[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s memTours) Update(_ context.Context, t *model.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	s.tours[t.ID] = &cp
	return nil
}

func (s memTours) DeleteCascade(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tours, id)
	for bid, b := range s.bookings {
		if b.TourID == id {
			delete(s.bookings, bid)
		}
	}
	for cid, c := range s.comments {
		if c.TourID == id {
			delete(s.comments, cid)
		}
	}
	for uid, list := range s.wishlist {
		kept := []string{}
		for _, tid := range list {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		s.wishlist[uid] = kept
	}
	return nil
}

type memBookings struct {
	*memDB
	// afterSum runs between the capacity read and the insert, to widen
	// the race window in concurrency tests.
	afterSum func()
}

func (s memBookings) insert(b *model.Booking) {
	b.ID = s.nextID("b")
	b.BookingDate = s.tick()
	cp := *b
	s.bookings[b.ID] = &cp
}

func (s memBookings) Create(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(b)
	return nil
}

func (s memBookings) CreateWithinCapacity(_ context.Context, b *model.Booking, maxCapacity int) error {
	s.mu.Lock()
	booked := 0
	for _, other := range s.bookings {
		if other.TourID == b.TourID {
			booked += other.HeadCount
		}
	}
	s.mu.Unlock()
	if s.afterSum != nil {
		s.afterSum()
	}
	if booked+b.HeadCount > maxCapacity {
		return repository.ErrCapacity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(b)
	return nil
}

func (s memBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s memBookings) filter(keep func(*model.Booking) bool) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out
}

func (s memBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	return s.filter(func(b *model.Booking) bool { return b.UserID == userID }), nil
}

func (s memBookings) ListAll(_ context.Context) ([]model.Booking, error) {
	return s.filter(func(*model.Booking) bool { return true }), nil
}

func (s memBookings) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s memBookings) HeadCounts(_ context.Context, tourIDs ...string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, id := range tourIDs {
		for _, b := range s.bookings {
			if b.TourID == id {
				out[id] += b.HeadCount
			}
		}
	}
	return out, nil
}

type memComments struct{ *memDB }

func (s memComments) Create(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID("c")
	c.CreatedAt = s.tick()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s memComments) GetByID(_ context.Context, id string) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s memComments) ListByTour(_ context.Context, tourID string) ([]model.CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.CommentView{}
	for _, c := range s.comments {
		if c.TourID != tourID {
			continue
		}
		v := model.CommentView{Comment: *c, User: model.UserSummary{ID: c.UserID}}
		if u, ok := s.users[c.UserID]; ok {
			v.User.Name = u.Name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memComments) Update(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s memComments) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s memComments) RatingStats(_ context.Context, tourIDs ...string) (map[string]repository.RatingStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]repository.RatingStat{}
	for _, id := range tourIDs {
		for _, c := range s.comments {
			if c.TourID == id {
				st := out[id]
				st.Sum += c.Rating
				st.Count++
				out[id] = st
			}
		}
	}
	return out, nil
}

// --- Mock EventPublisher ---

type recordedEvent struct {
	key     string
	payload any
}

type mockPublisher struct {
	mu        sync.Mutex
	events    []recordedEvent
	publishFn func(ctx context.Context, key string, payload any) error
}

func (m *mockPublisher) Publish(ctx context.Context, key string, payload any) error {
	m.mu.Lock()
	m.events = append(m.events, recordedEvent{key: key, payload: payload})
	m.mu.Unlock()
	if m.publishFn != nil {
		return m.publishFn(ctx, key, payload)
	}
	return nil
}

func (m *mockPublisher) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.key
	}
	return out
}

// seedUser inserts a user directly, bypassing hashing.
func seedUser(db *memDB, name, role string) model.Actor {
	u := &model.User{Name: name, Email: strings.ToLower(name) + "@example.com", Role: role}
	_ = memUsers{memDB: db}.Create(context.Background(), u)
	return model.Actor{UserID: u.ID, Role: role}
}

func seedTour(db *memDB, name string, price float64, capacity int) *model.Tour {
	t := &model.Tour{Name: name, Description: "desc", Price: price, Location: "Somewhere", ImageURL: model.DefaultImageURL, MaxCapacity: capacity}
	_ = memTours{db}.Create(context.Background(), t)
	return t
}
