package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "order-intake-service/common/errors"
	"order-intake-service/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, evt models.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) all() []models.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderEvent(nil), p.events...)
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(i int) *int { return &i }

var testPricing = FlatRatePolicy{TaxRate: mustDecimal("0.08"), ShippingFlat: mustDecimal("5.00")}

func newTestService(store *memStore, opts ...OrderServiceOption) (OrderService, *recordingPublisher) {
	pub := &recordingPublisher{}
	opts = append([]OrderServiceOption{WithPasswordCost(bcrypt.MinCost)}, opts...)
	return NewOrderService(store, testPricing, pub, nil, zap.NewNop(), opts...), pub
}

func shippingAddr() models.AddressInput {
	return models.AddressInput{
		Type: models.AddressTypeShipping, FirstName: "Ada", LastName: "Lovelace",
		AddressLine1: "12 Analytical Way", City: "Springfield", StateProvince: "IL", PostalCode: "62701", Country: "us",
	}
}

func billingAddr() models.AddressInput {
	a := shippingAddr()
	a.Type = models.AddressTypeBilling
	a.AddressLine1 = "1 Ledger Rd"
	return a
}

func inlineOrder(email string, productID uuid.UUID, qty int) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		User: models.UserInput{
			Email: email, Password: "correct-horse", FirstName: "Ada", LastName: "Lovelace",
		},
		Addresses:            []models.AddressInput{shippingAddr(), billingAddr()},
		Items:                []models.OrderItemInput{{ProductID: productID, Quantity: qty}},
		ShippingAddressIndex: intPtr(0),
		BillingAddressIndex:  intPtr(1),
		PaymentMethod:        models.PaymentMethodCreditCard,
	}
}

func requireKind(t *testing.T, err error, kind apperrors.Kind, code int) *apperrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected *errors.Error, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestCreateOrder_ComputesTotals(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, pub := newTestService(store)

	conf, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 2))
	require.NoError(t, err)

	assert.Equal(t, "39.98", conf.Subtotal.StringFixed(2))
	assert.Equal(t, "3.20", conf.TaxAmount.StringFixed(2))
	assert.Equal(t, "5.00", conf.ShippingAmount.StringFixed(2))
	assert.Equal(t, "48.18", conf.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, conf.Status)
	assert.Equal(t, models.PaymentStatusProcessing, conf.PaymentStatus)
	assert.Equal(t, 1, conf.ItemsCount)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), conf.OrderNumber)

	stored := store.state.orders[conf.OrderID]
	assert.True(t, stored.TotalAmount.Equal(stored.Subtotal.Add(stored.TaxAmount).Add(stored.ShippingAmount)))
	require.Len(t, stored.OrderItems, 1)
	item := stored.OrderItems[0]
	assert.Equal(t, "MUG-1", item.SKU)
	assert.True(t, item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventOrderCreated, events[0].EventType)
	assert.Equal(t, conf.OrderID.String(), events[0].OrderID)
}

func TestCreateOrder_UnitPriceIsSnapshotted(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	conf, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	require.NoError(t, err)

	p := store.state.products[mug.ID]
	p.Price = mustDecimal("24.99")
	store.state.products[mug.ID] = p

	stored := store.state.orders[conf.OrderID]
	assert.Equal(t, "19.99", stored.OrderItems[0].UnitPrice.StringFixed(2))
}

func TestCreateOrder_ShippingIndexOnBillingAddress(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, pub := newTestService(store)

	req := inlineOrder("ada@example.com", mug.ID, 1)
	req.ShippingAddressIndex = intPtr(1)

	_, err := svc.CreateOrder(context.Background(), req)
	appErr := requireKind(t, err, apperrors.KindValidation, http.StatusUnprocessableEntity)
	assert.Contains(t, appErr.Fields, "shipping_address_index")

	users, addresses, orders := store.counts()
	assert.Zero(t, users)
	assert.Zero(t, addresses)
	assert.Zero(t, orders)
	assert.Empty(t, pub.all())
}

func TestCreateOrder_IndexOutOfRange(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	req := inlineOrder("ada@example.com", mug.ID, 1)
	req.BillingAddressIndex = intPtr(5)

	_, err := svc.CreateOrder(context.Background(), req)
	appErr := requireKind(t, err, apperrors.KindValidation, http.StatusUnprocessableEntity)
	assert.Equal(t, "must be between 0 and 1", appErr.Fields["billing_address_index"])
}

func TestCreateOrder_RejectsStructuralProblems(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	tests := []struct {
		name   string
		mutate func(*models.CreateOrderRequest)
		field  string
	}{
		{"empty items", func(r *models.CreateOrderRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *models.CreateOrderRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"quantity above limit", func(r *models.CreateOrderRequest) { r.Items[0].Quantity = 10001 }, "items[0].quantity"},
		{"no addresses", func(r *models.CreateOrderRequest) { r.Addresses = nil }, "addresses"},
		{"missing email", func(r *models.CreateOrderRequest) { r.User.Email = "" }, "user.email"},
		{"short password", func(r *models.CreateOrderRequest) { r.User.Password = "123" }, "user.password"},
		{"long password", func(r *models.CreateOrderRequest) { r.User.Password = strings.Repeat("a", 73) }, "user.password"},
		{"bad address type", func(r *models.CreateOrderRequest) { r.Addresses[0].Type = "office" }, "addresses[0].type"},
		{"missing city", func(r *models.CreateOrderRequest) { r.Addresses[1].City = " " }, "addresses[1].city"},
		{"unsupported payment method", func(r *models.CreateOrderRequest) { r.PaymentMethod = "barter" }, "payment_method"},
		{"missing index", func(r *models.CreateOrderRequest) { r.ShippingAddressIndex = nil }, "shipping_address_index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := inlineOrder("ada@example.com", mug.ID, 1)
			tt.mutate(req)

			_, err := svc.CreateOrder(context.Background(), req)
			appErr := requireKind(t, err, apperrors.KindValidation, http.StatusUnprocessableEntity)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}

	users, _, orders := store.counts()
	assert.Zero(t, users)
	assert.Zero(t, orders)
}

func TestCreateOrder_MultibytePasswordOverBcryptLimit(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	req := inlineOrder("ada@example.com", mug.ID, 1)
	// 40 characters, 80 bytes.
	req.User.Password = strings.Repeat("é", 40)

	_, err := svc.CreateOrder(context.Background(), req)
	appErr := requireKind(t, err, apperrors.KindValidation, http.StatusUnprocessableEntity)
	assert.Equal(t, "must be at most 72 bytes", appErr.Fields["user.password"])

	users, _, _ := store.counts()
	assert.Zero(t, users)
}

func TestCreateOrder_RejectsAmountsBeyondColumnPrecision(t *testing.T) {
	tests := []struct {
		name  string
		price string
		qty   int
		field string
	}{
		{"subtotal", "9999999.99", 1001, "subtotal"},
		{"total after tax and shipping", "9999999999.00", 1, "total_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			p := store.addProduct("Vault", "VAULT-1", tt.price, true)
			svc, pub := newTestService(store)

			_, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", p.ID, tt.qty))
			appErr := requireKind(t, err, apperrors.KindValidation, http.StatusUnprocessableEntity)
			assert.Equal(t, "must not exceed 9999999999.99", appErr.Fields[tt.field])

			users, addresses, orders := store.counts()
			assert.Zero(t, users)
			assert.Zero(t, addresses)
			assert.Zero(t, orders)
			assert.Empty(t, pub.all())
		})
	}
}

func TestCreateOrder_InactiveProductPersistsNothing(t *testing.T) {
	store := newMemStore()
	retired := store.addProduct("Old Mug", "MUG-0", "9.99", false)
	svc, _ := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", retired.ID, 1))
	requireKind(t, err, apperrors.KindNotFound, http.StatusNotFound)

	users, addresses, orders := store.counts()
	assert.Zero(t, users)
	assert.Zero(t, addresses)
	assert.Zero(t, orders)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	req := inlineOrder("ada@example.com", mug.ID, 1)
	req.Items = append(req.Items, models.OrderItemInput{ProductID: uuid.New(), Quantity: 1})

	_, err := svc.CreateOrder(context.Background(), req)
	requireKind(t, err, apperrors.KindNotFound, http.StatusNotFound)

	_, _, orders := store.counts()
	assert.Zero(t, orders)
}

func TestCreateOrder_ExistingEmailConflicts(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), inlineOrder("  ADA@example.com ", mug.ID, 1))
	appErr := requireKind(t, err, apperrors.KindConflict, http.StatusConflict)
	assert.Equal(t, "already registered", appErr.Fields["user.email"])

	users, _, orders := store.counts()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, orders)
}

func TestCreateOrder_ConcurrentRegistrationSameEmail(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), inlineOrder("race@example.com", mug.ID, 1))
		}(i)
	}
	wg.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsKind(err, apperrors.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicts)

	users, _, orders := store.counts()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, orders)
}

func TestCreateOrder_ReusesAddressesForExistingUser(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	first, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	require.NoError(t, err)

	second := inlineOrder("", mug.ID, 3)
	second.User = models.UserInput{ID: &first.UserID}
	conf, err := svc.CreateOrder(context.Background(), second)
	require.NoError(t, err)

	_, addresses, orders := store.counts()
	assert.Equal(t, 2, addresses)
	assert.Equal(t, 2, orders)
	assert.Equal(t, first.ShippingAddressID, conf.ShippingAddressID)
	assert.Equal(t, first.BillingAddressID, conf.BillingAddressID)
	assert.Equal(t, first.UserID, conf.UserID)
}

func TestIdentityOrder_SortsByAddressKey(t *testing.T) {
	ship, bill := shippingAddr(), billingAddr()
	assert.Equal(t, []int{1, 0}, identityOrder([]models.AddressInput{ship, bill}))
	assert.Equal(t, []int{0, 1}, identityOrder([]models.AddressInput{bill, ship}))

	dup := identityOrder([]models.AddressInput{ship, ship})
	assert.Equal(t, []int{0, 1}, dup)
}

func TestCreateOrder_AddressOrderDoesNotChangeIndexMapping(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	first, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	require.NoError(t, err)

	second := inlineOrder("", mug.ID, 1)
	second.User = models.UserInput{ID: &first.UserID}
	second.Addresses = []models.AddressInput{billingAddr(), shippingAddr()}
	second.ShippingAddressIndex = intPtr(1)
	second.BillingAddressIndex = intPtr(0)
	conf, err := svc.CreateOrder(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, first.ShippingAddressID, conf.ShippingAddressID)
	assert.Equal(t, first.BillingAddressID, conf.BillingAddressID)
	assert.Equal(t, models.AddressTypeShipping, store.state.addresses[conf.ShippingAddressID].Type)
}

func TestCreateOrder_AddressesNestedUnderUser(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	req := inlineOrder("ada@example.com", mug.ID, 1)
	req.User.Addresses = req.Addresses
	req.Addresses = nil

	conf, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	addr := store.state.addresses[conf.ShippingAddressID]
	assert.Equal(t, models.AddressTypeShipping, addr.Type)
	assert.Equal(t, "US", addr.Country)
}

func TestCreateOrder_UnknownUserReference(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	req := inlineOrder("", mug.ID, 1)
	missing := uuid.New()
	req.User = models.UserInput{ID: &missing}

	_, err := svc.CreateOrder(context.Background(), req)
	requireKind(t, err, apperrors.KindNotFound, http.StatusNotFound)
}

func TestCreateOrder_StoresPasswordHash(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	conf, err := svc.CreateOrder(context.Background(), inlineOrder("Ada@Example.com", mug.ID, 1))
	require.NoError(t, err)

	user := store.state.users[conf.UserID]
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestCreateOrder_SingleDefaultAddressPerType(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	req := inlineOrder("ada@example.com", mug.ID, 1)
	req.Addresses[0].IsDefault = true
	first, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	moved := shippingAddr()
	moved.AddressLine1 = "99 Difference Engine Blvd"
	moved.IsDefault = true
	second := inlineOrder("", mug.ID, 1)
	second.User = models.UserInput{ID: &first.UserID}
	second.Addresses = []models.AddressInput{moved, billingAddr()}

	conf, err := svc.CreateOrder(context.Background(), second)
	require.NoError(t, err)

	defaults := 0
	for _, a := range store.state.addresses {
		if a.UserID == first.UserID && a.Type == models.AddressTypeShipping && a.IsDefault {
			defaults++
			assert.Equal(t, conf.ShippingAddressID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestCreateOrder_PaymentStatusFollowsMethod(t *testing.T) {
	tests := []struct {
		method models.PaymentMethod
		want   models.PaymentStatus
	}{
		{"", models.PaymentStatusProcessing},
		{models.PaymentMethodDebitCard, models.PaymentStatusProcessing},
		{models.PaymentMethodPayPal, models.PaymentStatusProcessing},
		{models.PaymentMethodBankTransfer, models.PaymentStatusPending},
		{models.PaymentMethodCashOnDelivery, models.PaymentStatusPending},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			store := newMemStore()
			mug := store.addProduct("Mug", "MUG-1", "19.99", true)
			svc, _ := newTestService(store)

			req := inlineOrder("ada@example.com", mug.ID, 1)
			req.PaymentMethod = tt.method
			conf, err := svc.CreateOrder(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, conf.PaymentStatus)
		})
	}
}

func TestCreateOrder_RetriesOrderNumberCollision(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	taken := models.Order{ID: uuid.New(), OrderNumber: "ORD-TAKEN"}
	store.state.orders[taken.ID] = taken

	calls := 0
	gen := func(time.Time) string {
		calls++
		if calls < 3 {
			return "ORD-TAKEN"
		}
		return "ORD-FRESH"
	}
	svc, _ := newTestService(store, WithOrderNumberFunc(gen))

	conf, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, "ORD-FRESH", conf.OrderNumber)
	assert.Equal(t, 3, calls)
}

func TestCreateOrder_OrderNumberExhaustedIsInternal(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	taken := models.Order{ID: uuid.New(), OrderNumber: "ORD-TAKEN"}
	store.state.orders[taken.ID] = taken

	svc, _ := newTestService(store, WithOrderNumberFunc(func(time.Time) string { return "ORD-TAKEN" }))

	_, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	requireKind(t, err, apperrors.KindInternal, http.StatusInternalServerError)

	users, addresses, orders := store.counts()
	assert.Zero(t, users)
	assert.Zero(t, addresses)
	assert.Equal(t, 1, orders)
}

func TestCreateOrder_StorageFailureRollsBack(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	store.hooks.orderCreateErr = errors.New("connection reset by peer")
	svc, pub := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	appErr := requireKind(t, err, apperrors.KindInternal, http.StatusInternalServerError)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.NotContains(t, appErr.JSON(), "connection reset")

	users, addresses, orders := store.counts()
	assert.Zero(t, users)
	assert.Zero(t, addresses)
	assert.Zero(t, orders)
	assert.Empty(t, pub.all())
}

func TestCreateOrder_CancelledContext(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CreateOrder(ctx, inlineOrder("ada@example.com", mug.ID, 1))
	requireKind(t, err, apperrors.KindInternal, http.StatusInternalServerError)

	users, _, _ := store.counts()
	assert.Zero(t, users)
}

func placeOrder(t *testing.T, store *memStore, svc OrderService) *models.OrderConfirmation {
	t.Helper()
	mug := store.addProduct("Mug", "MUG-"+uuid.NewString()[:6], "19.99", true)
	conf, err := svc.CreateOrder(context.Background(), inlineOrder(uuid.NewString()+"@example.com", mug.ID, 1))
	require.NoError(t, err)
	return conf
}

func TestUpdateOrderStatus_AllowedTransition(t *testing.T) {
	store := newMemStore()
	svc, pub := newTestService(store)
	conf := placeOrder(t, store, svc)

	resp, err := svc.UpdateOrderStatus(context.Background(), conf.OrderID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, resp.Status)
	assert.Equal(t, models.OrderStatusConfirmed, store.state.orders[conf.OrderID].Status)

	events := pub.all()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventOrderStatusChanged, events[1].EventType)
	assert.Equal(t, models.OrderStatusPending, events[1].PreviousStatus)
}

func TestUpdateOrderStatus_SameStatusIsNoop(t *testing.T) {
	store := newMemStore()
	svc, pub := newTestService(store)
	conf := placeOrder(t, store, svc)

	resp, err := svc.UpdateOrderStatus(context.Background(), conf.OrderID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.Len(t, pub.all(), 1)
}

func TestUpdateOrderStatus_IllegalTransition(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	conf := placeOrder(t, store, svc)

	_, err := svc.UpdateOrderStatus(context.Background(), conf.OrderID, models.OrderStatusDelivered)
	requireKind(t, err, apperrors.KindConflict, http.StatusConflict)
	assert.Equal(t, models.OrderStatusPending, store.state.orders[conf.OrderID].Status)
}

func TestUpdateOrderStatus_InvalidAndUnknown(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)

	_, err := svc.UpdateOrderStatus(context.Background(), uuid.New(), "lost")
	requireKind(t, err, apperrors.KindValidation, http.StatusUnprocessableEntity)

	_, err = svc.UpdateOrderStatus(context.Background(), uuid.New(), models.OrderStatusShipped)
	requireKind(t, err, apperrors.KindNotFound, http.StatusNotFound)
}

func TestGetOrderStatus(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	conf := placeOrder(t, store, svc)

	resp, err := svc.GetOrderStatus(context.Background(), conf.OrderID)
	require.NoError(t, err)
	assert.Equal(t, conf.OrderNumber, resp.OrderNumber)

	_, err = svc.GetOrder(context.Background(), uuid.New())
	requireKind(t, err, apperrors.KindNotFound, http.StatusNotFound)
}

func TestListUserOrders_Paginates(t *testing.T) {
	store := newMemStore()
	mug := store.addProduct("Mug", "MUG-1", "19.99", true)
	svc, _ := newTestService(store)

	first, err := svc.CreateOrder(context.Background(), inlineOrder("ada@example.com", mug.ID, 1))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		req := inlineOrder("", mug.ID, 1)
		req.User = models.UserInput{ID: &first.UserID}
		_, err := svc.CreateOrder(context.Background(), req)
		require.NoError(t, err)
	}

	resp, err := svc.ListUserOrders(context.Background(), first.UserID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 2)
	assert.Equal(t, int64(3), resp.Meta.TotalOrders)
	assert.Equal(t, int64(2), resp.Meta.TotalPages)
	assert.True(t, resp.Meta.HasMore)

	last, err := svc.ListUserOrders(context.Background(), first.UserID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, last.Orders, 1)
	assert.False(t, last.Meta.HasMore)

	_, err = svc.ListUserOrders(context.Background(), uuid.New(), 1, 10)
	requireKind(t, err, apperrors.KindNotFound, http.StatusNotFound)
}
