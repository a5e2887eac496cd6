package swipes

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
)

// memStore is an in-memory stand-in for the postgres repos. WithinTx restores
// the previous state when the callback fails.
type memStore struct {
	mu sync.Mutex

	users      map[int64]model.User
	roommates  map[int64]model.Roommate
	properties map[int64]model.Property
	swipes     []model.Swipe
	matches    []model.Match

	nextSwipeID int64
	nextMatchID int64

	failSwipeCreate error
	reciprocityHits int
	lockedPairs     [][2]int64
	txCalls         int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[int64]model.User{},
		roommates:  map[int64]model.Roommate{},
		properties: map[int64]model.Property{},
	}
}

func (m *memStore) addUser(id int64, premium bool, swipeCount int) {
	m.users[id] = model.User{
		ID:         id,
		ExternalID: "ext-" + strconv.FormatInt(id, 10),
		Role:       enums.RoleTenant,
		IsPremium:  premium,
		SwipeCount: swipeCount,
	}
}

func (m *memStore) addRoommate(id, ownerID int64) {
	m.roommates[id] = model.Roommate{ID: id, OwnerID: ownerID}
}

func (m *memStore) addProperty(id, ownerID int64) {
	m.properties[id] = model.Property{ID: id, OwnerID: ownerID}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCalls++

	users := make(map[int64]model.User, len(m.users))
	for k, v := range m.users {
		users[k] = v
	}
	swipes := append([]model.Swipe(nil), m.swipes...)
	matches := append([]model.Match(nil), m.matches...)
	nextSwipeID, nextMatchID := m.nextSwipeID, m.nextMatchID

	if err := fn(ctx, nil); err != nil {
		m.users = users
		m.swipes = swipes
		m.matches = matches
		m.nextSwipeID, m.nextMatchID = nextSwipeID, nextMatchID
		return err
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, userID int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) GetTx(_ context.Context, _ pgx.Tx, userID int64) (model.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) ConsumeSwipe(_ context.Context, _ pgx.Tx, userID int64, limit int) (int, error) {
	u, ok := m.users[userID]
	if !ok || u.SwipeCount >= limit {
		return 0, pgrepo.ErrSwipeQuotaReached
	}
	u.SwipeCount++
	m.users[userID] = u
	return u.SwipeCount, nil
}

func (m *memStore) Create(_ context.Context, _ pgx.Tx, actorUserID int64, target model.Target, action enums.SwipeAction, now time.Time) (model.Swipe, error) {
	if m.failSwipeCreate != nil {
		return model.Swipe{}, m.failSwipeCreate
	}
	m.nextSwipeID++
	rec := model.Swipe{
		ID:          m.nextSwipeID,
		ActorUserID: actorUserID,
		TargetType:  target.Type(),
		TargetID:    target.ID(),
		Action:      action,
		CreatedAt:   now,
	}
	m.swipes = append(m.swipes, rec)
	return rec, nil
}

func (m *memStore) LockPair(_ context.Context, _ pgx.Tx, userA, userB int64) error {
	m.lockedPairs = append(m.lockedPairs, [2]int64{userA, userB})
	return nil
}

func (m *memStore) HasLikedRoommateOwnedBy(_ context.Context, _ pgx.Tx, likerID, ownerID int64) (bool, error) {
	m.reciprocityHits++
	for _, s := range m.swipes {
		if s.ActorUserID != likerID || s.TargetType != enums.TargetTypeRoommate || s.Action != enums.SwipeActionLike {
			continue
		}
		if rm, ok := m.roommates[s.TargetID]; ok && rm.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetRoommate(_ context.Context, _ pgx.Tx, roommateID int64) (model.Roommate, error) {
	rm, ok := m.roommates[roommateID]
	if !ok {
		return model.Roommate{}, pgrepo.ErrRoommateNotFound
	}
	return rm, nil
}

func (m *memStore) GetProperty(_ context.Context, _ pgx.Tx, propertyID int64) (model.Property, error) {
	p, ok := m.properties[propertyID]
	if !ok {
		return model.Property{}, pgrepo.ErrPropertyNotFound
	}
	return p, nil
}

// matchRepo adapts memStore to MatchStore; Create collides with SwipeStore.Create.
type matchRepo struct{ *memStore }

func (r matchRepo) Create(_ context.Context, _ pgx.Tx, user1ID, user2ID int64, relatedType enums.TargetType, relatedID *int64) (model.Match, bool, error) {
	for _, existing := range r.matches {
		if existing.HasUser(user1ID) && existing.HasUser(user2ID) {
			return existing, false, nil
		}
	}
	r.nextMatchID++
	m := model.Match{
		ID:          r.nextMatchID,
		User1ID:     user1ID,
		User2ID:     user2ID,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	}
	r.matches = append(r.matches, m)
	return m, true, nil
}

func (m *memStore) swipeCount(userID int64) int {
	return m.users[userID].SwipeCount
}

type rateLimiterStub struct {
	calls      int
	allowed    bool
	retryAfter int64
	err        error
}

func (s *rateLimiterStub) AllowSwipe(context.Context, int64) (int64, bool, error) {
	s.calls++
	return s.retryAfter, s.allowed, s.err
}

type notifierStub struct {
	mu      sync.Mutex
	matches []model.Match
	err     error
}

func (s *notifierStub) MatchCreated(_ context.Context, match model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, match)
	return s.err
}

type trackerStub struct {
	names []string
	props []map[string]any
}

func (s *trackerStub) Track(_ context.Context, _ int64, name string, props map[string]any) {
	s.names = append(s.names, name)
	s.props = append(s.props, props)
}

func (s *trackerStub) count(name string) int {
	n := 0
	for _, v := range s.names {
		if v == name {
			n++
		}
	}
	return n
}

var errStoreDown = errors.New("store down")

type fixture struct {
	store    *memStore
	limiter  *rateLimiterStub
	notifier *notifierStub
	tracker  *trackerStub
	svc      *Service
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:    store,
		limiter:  &rateLimiterStub{allowed: true},
		notifier: &notifierStub{},
		tracker:  &trackerStub{},
	}
	f.svc = NewService(Dependencies{
		Tx:          store,
		Users:       store,
		Swipes:      store,
		Listings:    store,
		Matches:     matchRepo{store},
		RateLimiter: f.limiter,
		Notifier:    f.notifier,
		Events:      f.tracker,
	}, Config{})
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.svc.dispatch = func(fn func()) { fn() }
	return f
}
