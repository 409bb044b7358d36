package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/client"
	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/repository"
)

// fakeTxManager runs the function directly; the fakes below ignore the
// nil transaction handle just like the real repositories fall back to
// their own connection.
type fakeTxManager struct{}

func (fakeTxManager) Do(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

var _ repository.TxManager = fakeTxManager{}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*model.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; ok {
		return apperr.Conflict("product already exists")
	}
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, productID string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindMany(_ context.Context, _ *gorm.DB, productIDs []string) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Product
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) List(_ context.Context, _, _ int) ([]*model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Product
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, _ *gorm.DB, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.StockQuantity < quantity {
		return apperr.InvalidInput("insufficient stock for product " + productID)
	}
	p.StockQuantity -= quantity
	return nil
}

func (r *fakeProductRepo) setPrice(productID string, price decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[productID].Price = price
}

func (r *fakeProductRepo) stock(productID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[productID].StockQuantity
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*model.Cart // keyed by user id
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*model.Cart)}
}

func copyCart(c *model.Cart) *model.Cart {
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	return &cp
}

func (r *fakeCartRepo) FindByUserID(_ context.Context, userID string) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return nil, apperr.NotFound("cart not found for this user")
	}
	return copyCart(cart), nil
}

func (r *fakeCartRepo) Save(_ context.Context, _ *gorm.DB, cart *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, _ *gorm.DB, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, cart := range r.carts {
		if cart.ID == cartID {
			delete(r.carts, userID)
			return nil
		}
	}
	return nil
}

var _ repository.CartRepository = (*fakeCartRepo)(nil)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order

	applyTransitionErr error
}

func newFakeOrderRepo(orders ...*model.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*model.Order)}
	for _, o := range orders {
		r.orders[o.ID] = copyOrder(o)
	}
	return r
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

func (r *fakeOrderRepo) Create(_ context.Context, _ *gorm.DB, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, orderID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, apperr.NotFound("order not found")
	}
	return copyOrder(order), nil
}

func (r *fakeOrderRepo) FindByProviderOrderID(_ context.Context, providerOrderID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.ProviderOrderID == providerOrderID {
			return copyOrder(order), nil
		}
	}
	return nil, apperr.NotFound("order not found")
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, copyOrder(order))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) SetProviderOrderID(_ context.Context, orderID, providerOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return apperr.NotFound("order not found")
	}
	order.ProviderOrderID = providerOrderID
	return nil
}

func (r *fakeOrderRepo) ApplyTransition(_ context.Context, _ *gorm.DB, order *model.Order, from model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyTransitionErr != nil {
		return r.applyTransitionErr
	}
	stored, ok := r.orders[order.ID]
	if !ok {
		return apperr.NotFound("order not found")
	}
	if stored.Status != from {
		return apperr.Conflict("order was updated concurrently")
	}
	stored.Status = order.Status
	stored.IsPaid = order.IsPaid
	stored.PaidAt = order.PaidAt
	stored.IsCancelled = order.IsCancelled
	stored.CancelledAt = order.CancelledAt
	stored.IsDelivered = order.IsDelivered
	stored.DeliveredAt = order.DeliveredAt
	return nil
}

func (r *fakeOrderRepo) get(orderID string) *model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyOrder(r.orders[orderID])
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*model.Payment // keyed by order id
	upserts  int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*model.Payment)}
}

func (r *fakePaymentRepo) UpsertByOrderID(_ context.Context, _ *gorm.DB, payment *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if existing, ok := r.payments[payment.OrderID]; ok {
		existing.Status = payment.Status
		if payment.TransactionReference != "" {
			existing.TransactionReference = payment.TransactionReference
		}
		return nil
	}
	cp := *payment
	r.payments[payment.OrderID] = &cp
	return nil
}

func (r *fakePaymentRepo) FindByOrderID(_ context.Context, orderID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[orderID]
	if !ok {
		return nil, apperr.NotFound("payment not found")
	}
	cp := *payment
	return &cp, nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, _ *gorm.DB, orderID string, status model.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment, ok := r.payments[orderID]; ok {
		payment.Status = status
	}
	return nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

var _ repository.PaymentRepository = (*fakePaymentRepo)(nil)

type fakeWebhookEventRepo struct {
	mu        sync.Mutex
	processed map[string]bool
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{processed: make(map[string]bool)}
}

func (r *fakeWebhookEventRepo) Exists(_ context.Context, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed[eventID], nil
}

func (r *fakeWebhookEventRepo) MarkProcessed(_ context.Context, _ *gorm.DB, eventID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processed[eventID] {
		return apperr.Conflict("webhook event already processed")
	}
	r.processed[eventID] = true
	return nil
}

var _ repository.WebhookEventRepository = (*fakeWebhookEventRepo)(nil)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by user id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperr.Conflict("email is already registered")
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *fakeUserRepo) FindByID(_ context.Context, userID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *user
	return &cp, nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*model.Category
}

func newFakeCategoryRepo(categories ...*model.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: make(map[string]*model.Category)}
	for _, c := range categories {
		cp := *c
		r.categories[c.ID] = &cp
	}
	return r
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Name == category.Name {
			return apperr.Conflict("category already exists")
		}
	}
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, categoryID string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[categoryID]
	if !ok {
		return nil, apperr.NotFound("category not found")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Category
	for _, c := range r.categories {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

var _ repository.CategoryRepository = (*fakeCategoryRepo)(nil)

type fakePaypalClient struct {
	mu sync.Mutex

	createOrderFunc func(ctx context.Context, amount decimal.Decimal, currency, internalOrderID string) (*client.CreateOrderResult, error)
	captureFunc     func(ctx context.Context, providerOrderID string) (*client.CaptureResult, error)
	verifyFunc      func(ctx context.Context, headers http.Header, body []byte) error

	createCalls  int
	captureCalls int
}

func (f *fakePaypalClient) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, internalOrderID string) (*client.CreateOrderResult, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	if f.createOrderFunc != nil {
		return f.createOrderFunc(ctx, amount, currency, internalOrderID)
	}
	return &client.CreateOrderResult{
		ProviderOrderID: "PP-" + internalOrderID,
		ApproveURL:      "https://paypal.test/approve/" + internalOrderID,
	}, nil
}

func (f *fakePaypalClient) CaptureOrder(ctx context.Context, providerOrderID string) (*client.CaptureResult, error) {
	f.mu.Lock()
	f.captureCalls++
	f.mu.Unlock()
	if f.captureFunc != nil {
		return f.captureFunc(ctx, providerOrderID)
	}
	return &client.CaptureResult{CaptureID: "CAP-" + providerOrderID}, nil
}

func (f *fakePaypalClient) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	if f.verifyFunc != nil {
		return f.verifyFunc(ctx, headers, body)
	}
	return nil
}

var _ client.PaypalClient = (*fakePaypalClient)(nil)
