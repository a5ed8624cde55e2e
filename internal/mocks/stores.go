package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/store"
)

// Data is the shared in-memory backing set for the store mocks. The
// three store types operate on one Data so cross-entity behavior, like
// a subtree delete taking its cards with it, works the way the schema's
// cascades do in Postgres.
type Data struct {
	mu     sync.Mutex
	Users  map[uuid.UUID]*domain.User
	Topics map[uuid.UUID]*domain.Topic
	Cards  map[uuid.UUID]*domain.Card
}

// NewData creates an empty in-memory data set.
func NewData() *Data {
	return &Data{
		Users:  make(map[uuid.UUID]*domain.User),
		Topics: make(map[uuid.UUID]*domain.Topic),
		Cards:  make(map[uuid.UUID]*domain.Card),
	}
}

// UserStore returns a store.UserStore view over the data set.
func (d *Data) UserStore() *MockUserStore { return &MockUserStore{data: d} }

// TopicStore returns a store.TopicStore view over the data set.
func (d *Data) TopicStore() *MockTopicStore { return &MockTopicStore{data: d} }

// CardStore returns a store.CardStore view over the data set.
func (d *Data) CardStore() *MockCardStore { return &MockCardStore{data: d} }

// MockUserStore is an in-memory store.UserStore. Setting an Fn field
// overrides the corresponding method, usually to inject an error.
type MockUserStore struct {
	data *Data

	CreateFn func(ctx context.Context, user *domain.User) error
	UpdateFn func(ctx context.Context, user *domain.User) error
}

var _ store.UserStore = (*MockUserStore)(nil)

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	for _, u := range m.data.Users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
	}

	cp := *user
	m.data.Users[user.ID] = &cp
	return nil
}

func (m *MockUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	u, ok := m.data.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	for _, u := range m.data.Users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	if _, ok := m.data.Users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for _, u := range m.data.Users {
		if u.ID != user.ID && u.Username == user.Username {
			return store.ErrUsernameExists
		}
	}

	cp := *user
	m.data.Users[user.ID] = &cp
	return nil
}

func (m *MockUserStore) WithTx(_ *sql.Tx) store.UserStore { return m }

// MockTopicStore is an in-memory store.TopicStore.
type MockTopicStore struct {
	data *Data

	CreateFn        func(ctx context.Context, topic *domain.Topic) error
	UpdateFn        func(ctx context.Context, topic *domain.Topic) error
	DeleteSubtreeFn func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

var _ store.TopicStore = (*MockTopicStore)(nil)

func (m *MockTopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, topic)
	}

	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	cp := *topic
	m.data.Topics[topic.ID] = &cp
	return nil
}

func (m *MockTopicStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Topic, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	t, ok := m.data.Topics[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTopicNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTopicStore) FindByName(
	_ context.Context,
	userID uuid.UUID,
	name string,
	parentID *uuid.UUID,
) (*domain.Topic, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	for _, t := range m.data.Topics {
		if t.UserID != userID || t.Name != name {
			continue
		}
		if !sameParent(t.ParentID, parentID) {
			continue
		}
		cp := *t
		return &cp, nil
	}
	return nil, store.ErrTopicNotFound
}

func (m *MockTopicStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	var topics []*domain.Topic
	for _, t := range m.data.Topics {
		if t.UserID == userID {
			cp := *t
			topics = append(topics, &cp)
		}
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Position != topics[j].Position {
			return topics[i].Position < topics[j].Position
		}
		return topics[i].CreatedAt.Before(topics[j].CreatedAt)
	})

	return topics, nil
}

func (m *MockTopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, topic)
	}

	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	existing, ok := m.data.Topics[topic.ID]
	if !ok || existing.UserID != topic.UserID {
		return store.ErrTopicNotFound
	}

	cp := *topic
	m.data.Topics[topic.ID] = &cp
	return nil
}

func (m *MockTopicStore) DeleteSubtree(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) error {
	if m.DeleteSubtreeFn != nil {
		return m.DeleteSubtreeFn(ctx, userID, ids)
	}

	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	deleted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		t, ok := m.data.Topics[id]
		if !ok || t.UserID != userID {
			continue
		}
		delete(m.data.Topics, id)
		deleted[id] = true
	}

	// Mirror the schema's ON DELETE CASCADE from topics to cards.
	for id, c := range m.data.Cards {
		if deleted[c.TopicID] {
			delete(m.data.Cards, id)
		}
	}

	return nil
}

func (m *MockTopicStore) WithTx(_ *sql.Tx) store.TopicStore { return m }

// MockCardStore is an in-memory store.CardStore.
type MockCardStore struct {
	data *Data

	CreateFn func(ctx context.Context, card *domain.Card) error
	UpdateFn func(ctx context.Context, card *domain.Card) error
}

var _ store.CardStore = (*MockCardStore)(nil)

func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}

	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	cp := *card
	m.data.Cards[card.ID] = &cp
	return nil
}

func (m *MockCardStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Card, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	c, ok := m.data.Cards[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCardStore) ListByTopics(
	_ context.Context,
	userID uuid.UUID,
	topicIDs []uuid.UUID,
) ([]*domain.Card, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	scope := make(map[uuid.UUID]bool, len(topicIDs))
	for _, id := range topicIDs {
		scope[id] = true
	}

	var cards []*domain.Card
	for _, c := range m.data.Cards {
		if c.UserID == userID && scope[c.TopicID] {
			cp := *c
			cards = append(cards, &cp)
		}
	}

	sortCards(cards)
	return cards, nil
}

func (m *MockCardStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	var cards []*domain.Card
	for _, c := range m.data.Cards {
		if c.UserID == userID {
			cp := *c
			cards = append(cards, &cp)
		}
	}

	sortCards(cards)
	return cards, nil
}

func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, card)
	}

	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	existing, ok := m.data.Cards[card.ID]
	if !ok || existing.UserID != card.UserID {
		return store.ErrCardNotFound
	}

	cp := *card
	m.data.Cards[card.ID] = &cp
	return nil
}

func (m *MockCardStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()

	c, ok := m.data.Cards[id]
	if !ok || c.UserID != userID {
		return store.ErrCardNotFound
	}
	delete(m.data.Cards, id)
	return nil
}

func (m *MockCardStore) WithTx(_ *sql.Tx) store.CardStore { return m }

// sortCards orders cards by creation time then ID, matching the
// Postgres stores' study ordering.
func sortCards(cards []*domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID.String() < cards[j].ID.String()
	})
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
