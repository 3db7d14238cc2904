package usecase

import (
	"context"
	"sort"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// テスト用のインメモリ実装。
// TxReposとTransactionManagerを1つの構造体で兼ねる（ロールバックはしない）。
type memStore struct {
	orders   map[int64]model.Order
	items    map[int64]model.OrderItem
	products map[int64]model.Product

	nextOrderID   int64
	nextItemID    int64
	nextProductID int64

	now time.Time
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[int64]model.Order{},
		items:    map[int64]model.OrderItem{},
		products: map[int64]model.Product{},
		now:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s)
}

func (s *memStore) Orders() repo.OrderRepository         { return &memOrders{s} }
func (s *memStore) OrderItems() repo.OrderItemRepository { return &memItems{s} }
func (s *memStore) Products() repo.ProductRepository     { return &memProducts{s} }

// 時間を進める（履歴の並び順テスト用）
func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Minute)
	return s.now
}

func (s *memStore) addProduct(title string, price float64) model.Product {
	s.nextProductID++
	p := model.Product{
		ID:       s.nextProductID,
		Title:    title,
		Price:    price,
		Category: "general",
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) activeOrdersOf(userID int64) []model.Order {
	var out []model.Order
	for _, o := range s.orders {
		if o.UserID == userID && !o.Completed {
			out = append(out, o)
		}
	}
	return out
}

func (s *memStore) itemsOf(orderID int64) []model.OrderItem {
	var out []model.OrderItem
	for _, it := range s.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memOrders struct {
	s *memStore
}

func (r *memOrders) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Order, bool, error) {
	active := r.s.activeOrdersOf(userID)
	if len(active) > 0 {
		sort.Slice(active, func(i, j int) bool { return active[i].ID > active[j].ID })
		return active[0], false, nil
	}

	r.s.nextOrderID++
	o := model.Order{
		ID:        r.s.nextOrderID,
		UserID:    userID,
		Completed: false,
		Total:     0,
		CreatedAt: r.s.tick(),
	}
	r.s.orders[o.ID] = o
	return o, true, nil
}

func (r *memOrders) FindActiveByUserID(ctx context.Context, userID int64) (model.Order, error) {
	active := r.s.activeOrdersOf(userID)
	if len(active) == 0 {
		return model.Order{}, repo.ErrNotFound
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID > active[j].ID })
	return active[0], nil
}

func (r *memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *memOrders) ListCompletedByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID && o.Completed {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.s.tick()
	}
	r.s.orders[order.ID] = order
	return order.ID, nil
}

func (r *memOrders) UpdateTotal(ctx context.Context, orderID int64, total float64) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Total = total
	r.s.orders[orderID] = o
	return nil
}

func (r *memOrders) MarkCompleted(ctx context.Context, orderID int64) error {
	o, ok := r.s.orders[orderID]
	if !ok || o.Completed {
		return repo.ErrNotFound
	}
	o.Completed = true
	r.s.orders[orderID] = o
	return nil
}

type memItems struct {
	s *memStore
}

func (r *memItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return r.s.itemsOf(orderID), nil
}

func (r *memItems) FindByOrderAndProduct(ctx context.Context, orderID int64, productID int64) (model.OrderItem, error) {
	for _, it := range r.s.items {
		if it.OrderID == orderID && it.ProductID == productID {
			return it, nil
		}
	}
	return model.OrderItem{}, repo.ErrNotFound
}

func (r *memItems) FindOrCreate(ctx context.Context, orderID int64, productID int64, qty int64, price float64) (model.OrderItem, bool, error) {
	if it, err := r.FindByOrderAndProduct(ctx, orderID, productID); err == nil {
		return it, false, nil
	}

	r.s.nextItemID++
	it := model.OrderItem{
		ID:        r.s.nextItemID,
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		Price:     price,
	}
	r.s.items[it.ID] = it
	return it, true, nil
}

func (r *memItems) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	it, ok := r.s.items[itemID]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	r.s.items[itemID] = it
	return nil
}

func (r *memItems) DeleteByID(ctx context.Context, itemID int64) error {
	if _, ok := r.s.items[itemID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.items, itemID)
	return nil
}

func (r *memItems) DeleteByOrderID(ctx context.Context, orderID int64) error {
	for id, it := range r.s.items {
		if it.OrderID == orderID {
			delete(r.s.items, id)
		}
	}
	return nil
}

type memProducts struct {
	s *memStore
}

func (r *memProducts) List(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProducts) Count(ctx context.Context) (int64, error) {
	return int64(len(r.s.products)), nil
}

func (r *memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memProducts) CreateBulk(ctx context.Context, products []model.Product) error {
	for _, p := range products {
		r.s.nextProductID++
		p.ID = r.s.nextProductID
		r.s.products[p.ID] = p
	}
	return nil
}

func (r *memProducts) DeleteAll(ctx context.Context) error {
	r.s.products = map[int64]model.Product{}
	return nil
}
