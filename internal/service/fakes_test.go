package service

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexiq/storefront-api/internal/domain"
	"github.com/nexiq/storefront-api/internal/events"
)

var errStoreDown = errors.New("connection refused")

// memoryUsers is a map-backed UserRepository keyed by email.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newMemoryUsers(seed ...*domain.User) *memoryUsers {
	m := &memoryUsers{users: make(map[string]*domain.User)}
	for _, u := range seed {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		m.users[u.Email] = u
	}
	return m
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUsers) Upsert(_ context.Context, email string, profile domain.Document) (*domain.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		id := uuid.NewString()
		m.users[email] = &domain.User{ID: id, Email: email, Role: domain.RoleStandard, Profile: profile.Clone()}
		return &domain.UpsertResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
	}
	changed := false
	if u.Profile == nil {
		u.Profile = domain.Document{}
	}
	for k, v := range profile {
		if existing, ok := u.Profile[k]; !ok || !reflect.DeepEqual(existing, v) {
			u.Profile[k] = v
			changed = true
		}
	}
	result := &domain.UpsertResult{Acknowledged: true, MatchedCount: 1}
	if changed {
		result.ModifiedCount = 1
	}
	return result, nil
}

func (m *memoryUsers) UpdateRole(_ context.Context, email string, role domain.Role) (*domain.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return &domain.UpdateResult{Acknowledged: true}, nil
	}
	result := &domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if u.Role != role {
		u.Role = role
		result.ModifiedCount = 1
	}
	return result, nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) (*domain.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			return &domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return &domain.DeleteResult{Acknowledged: true}, nil
}

func (m *memoryUsers) List(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// memoryDocuments is a map-backed DocumentRepository.
type memoryDocuments struct {
	mu   sync.Mutex
	docs map[string]domain.Document
	ids  []string
	err  error
}

func newMemoryDocuments() *memoryDocuments {
	return &memoryDocuments{docs: make(map[string]domain.Document)}
}

func (m *memoryDocuments) List(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Document, 0, len(m.ids))
	for _, id := range m.ids {
		if doc, ok := m.docs[id]; ok {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (m *memoryDocuments) Get(_ context.Context, id string) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return doc.Clone(), nil
}

func (m *memoryDocuments) Insert(_ context.Context, doc domain.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	id := uuid.NewString()
	stored := doc.Without(domain.DocumentIDKey)
	stored[domain.DocumentIDKey] = id
	m.docs[id] = stored
	m.ids = append(m.ids, id)
	return id, nil
}

func (m *memoryDocuments) Delete(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.docs[id]; !ok {
		return 0, nil
	}
	delete(m.docs, id)
	return 1, nil
}

// memoryOrders is a map-backed OrderRepository and PaymentRepository.
type memoryOrders struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	ids      []string
	payments []*domain.Payment
	err      error
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: make(map[string]*domain.Order)}
}

func (m *memoryOrders) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	order.ID = uuid.NewString()
	order.CreatedAt = time.Now().UTC()
	copied := *order
	m.orders[order.ID] = &copied
	m.ids = append(m.ids, order.ID)
	return nil
}

func (m *memoryOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *o
	return &copied, nil
}

func (m *memoryOrders) ListByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Order, 0, len(all))
	for _, o := range all {
		if o.Email == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryOrders) List(_ context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Order, 0, len(m.ids))
	for _, id := range m.ids {
		if o, ok := m.orders[id]; ok {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryOrders) MarkPaid(_ context.Context, payment *domain.Payment) (*domain.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[payment.OrderID]
	if !ok {
		return &domain.UpdateResult{Acknowledged: true}, nil
	}
	if o.Paid && o.TransactionID != nil && *o.TransactionID == payment.TransactionID {
		return &domain.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	tx := payment.TransactionID
	o.Paid = true
	o.TransactionID = &tx
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now().UTC()
	copied := *payment
	m.payments = append(m.payments, &copied)
	return &domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *memoryOrders) Delete(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.orders[id]; !ok {
		return 0, nil
	}
	delete(m.orders, id)
	return 1, nil
}

func (m *memoryOrders) paymentsFor(email string) []*domain.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out
}

// memoryPayments adapts memoryOrders to PaymentRepository.
type memoryPayments struct {
	orders *memoryOrders
}

func (m memoryPayments) ListByEmail(_ context.Context, email string) ([]*domain.Payment, error) {
	if m.orders.err != nil {
		return nil, m.orders.err
	}
	return m.orders.paymentsFor(email), nil
}

// recorder captures every event published through a real dispatcher.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func newRecordingDispatcher(types ...events.EventType) (events.Dispatcher, *recorder) {
	d := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, t := range types {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, e)
			return nil
		})
	}
	return d, rec
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
