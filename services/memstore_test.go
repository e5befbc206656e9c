package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"order-intake-service/models"
	"order-intake-service/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is an in-memory repository.Store. Transactions are serialised and
// work on a copy of the state that is only kept when fn succeeds, so a failed
// transaction leaves nothing behind.
type memStore struct {
	mu    sync.Mutex
	state *memState
	hooks *memHooks
}

type memHooks struct {
	orderCreateErr error
}

type memState struct {
	users     map[uuid.UUID]models.User
	addresses map[uuid.UUID]models.Address
	products  map[uuid.UUID]models.Product
	orders    map[uuid.UUID]models.Order
}

func newMemStore() *memStore {
	return &memStore{
		state: &memState{
			users:     map[uuid.UUID]models.User{},
			addresses: map[uuid.UUID]models.Address{},
			products:  map[uuid.UUID]models.Product{},
			orders:    map[uuid.UUID]models.Order{},
		},
		hooks: &memHooks{},
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		users:     make(map[uuid.UUID]models.User, len(s.users)),
		addresses: make(map[uuid.UUID]models.Address, len(s.addresses)),
		products:  make(map[uuid.UUID]models.Product, len(s.products)),
		orders:    make(map[uuid.UUID]models.Order, len(s.orders)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		v.OrderItems = append([]models.OrderItem(nil), v.OrderItems...)
		c.orders[k] = v
	}
	return c
}

func (m *memStore) repos(state *memState) *repository.Repositories {
	return &repository.Repositories{
		Users:     &memUsers{state},
		Addresses: &memAddresses{state},
		Products:  &memProducts{state},
		Orders:    &memOrders{state: state, hooks: m.hooks},
	}
}

func (m *memStore) Repos() *repository.Repositories {
	return m.repos(m.state)
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	working := m.state.clone()
	if err := fn(m.repos(working)); err != nil {
		return err
	}
	m.state = working
	return nil
}

func (m *memStore) addProduct(name, sku, price string, active bool) models.Product {
	p := models.Product{ID: uuid.New(), Name: name, SKU: sku, Price: mustDecimal(price), IsActive: active}
	m.state.products[p.ID] = p
	return p
}

func (m *memStore) counts() (users, addresses, orders int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.users), len(m.state.addresses), len(m.state.orders)
}

type memUsers struct{ s *memState }

func (r *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

type memAddresses struct{ s *memState }

func sameAddress(a, b models.Address) bool {
	return a.UserID == b.UserID && a.Type == b.Type && a.AddressLine1 == b.AddressLine1 &&
		a.City == b.City && a.StateProvince == b.StateProvince && a.PostalCode == b.PostalCode &&
		a.Country == b.Country
}

func (r *memAddresses) FindOrCreate(_ context.Context, addr *models.Address) (bool, error) {
	for _, existing := range r.s.addresses {
		if sameAddress(existing, *addr) {
			*addr = existing
			return false, nil
		}
	}
	addr.ID = uuid.New()
	r.s.addresses[addr.ID] = *addr
	return true, nil
}

func (r *memAddresses) MakeDefault(_ context.Context, addr *models.Address) error {
	if _, ok := r.s.addresses[addr.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, a := range r.s.addresses {
		if a.UserID == addr.UserID && a.Type == addr.Type {
			a.IsDefault = id == addr.ID
			r.s.addresses[id] = a
		}
	}
	addr.IsDefault = true
	return nil
}

type memProducts struct{ s *memState }

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) Create(_ context.Context, product *models.Product) error {
	for _, p := range r.s.products {
		if p.SKU == product.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	product.ID = uuid.New()
	r.s.products[product.ID] = *product
	return nil
}

type memOrders struct {
	state *memState
	hooks *memHooks
}

func (r *memOrders) Create(_ context.Context, order *models.Order) error {
	if r.hooks.orderCreateErr != nil {
		return r.hooks.orderCreateErr
	}
	for _, o := range r.state.orders {
		if o.OrderNumber == order.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.OrderItems {
		order.OrderItems[i].ID = uuid.New()
		order.OrderItems[i].OrderID = order.ID
	}
	stored := *order
	stored.OrderItems = append([]models.OrderItem(nil), order.OrderItems...)
	r.state.orders[order.ID] = stored
	return nil
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := r.state.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *memOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *memOrders) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var all []models.Order
	for _, o := range r.state.orders {
		if o.UserID != nil && *o.UserID == userID {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memOrders) UpdateStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) error {
	o, ok := r.state.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	r.state.orders[id] = o
	return nil
}
