package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "order-intake-service/common/errors"
	"order-intake-service/common/logger"
	"order-intake-service/models"
	aws_pkg "order-intake-service/pkg/aws"
	"order-intake-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxOrderNumberAttempts = 5
	maxItemQuantity        = 10000
	// bcrypt only hashes the first 72 bytes and rejects longer input.
	maxPasswordBytes = 72
)

// maxMoney is the largest amount a numeric(12,2) column holds.
var maxMoney = decimal.RequireFromString("9999999999.99")

// OrderService defines the business logic interface.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderConfirmation, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderStatus(ctx context.Context, id uuid.UUID) (*models.OrderStatusResponse, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.OrderStatusResponse, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*models.OrderListResponse, error)
}

type OrderServiceOption func(*orderServiceImpl)

// WithOrderNumberFunc replaces DefaultOrderNumber.
func WithOrderNumberFunc(fn OrderNumberFunc) OrderServiceOption {
	return func(s *orderServiceImpl) { s.orderNumber = fn }
}

// WithPasswordCost sets the bcrypt cost used for inline registrations.
func WithPasswordCost(cost int) OrderServiceOption {
	return func(s *orderServiceImpl) { s.passwordCost = cost }
}

func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *orderServiceImpl) { s.now = now }
}

type orderServiceImpl struct {
	store        repository.Store
	pricing      PricingPolicy
	events       EventPublisher
	metrics      aws_pkg.MetricsRecorder
	logger       *zap.Logger
	orderNumber  OrderNumberFunc
	passwordCost int
	now          func() time.Time
}

// NewOrderService creates a new OrderService. events and metrics may be nil.
func NewOrderService(
	store repository.Store,
	pricing PricingPolicy,
	events EventPublisher,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
	opts ...OrderServiceOption,
) OrderService {
	s := &orderServiceImpl{
		store:        store,
		pricing:      pricing,
		events:       events,
		metrics:      metrics,
		logger:       logger,
		orderNumber:  DefaultOrderNumber,
		passwordCost: bcrypt.DefaultCost,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// orderPlan is a request that passed validation, with defaults applied.
type orderPlan struct {
	addresses     []models.AddressInput
	shippingIdx   int
	billingIdx    int
	paymentMethod models.PaymentMethod
	paymentStatus models.PaymentStatus
	email         string
	passwordHash  string
}

// CreateOrder validates the request, then resolves the user, addresses and
// products, prices the order and inserts it with its items in one transaction.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderConfirmation, error) {
	start := s.now()

	plan, err := s.plan(req)
	if err != nil {
		s.recordCount(ctx, aws_pkg.MetricOrdersFailed, "validation")
		return nil, err
	}

	var order *models.Order
	err = s.store.Transaction(ctx, func(tx *repository.Repositories) error {
		items, subtotal, err := s.buildItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}
		if subtotal.GreaterThan(maxMoney) {
			return amountTooLarge("subtotal")
		}

		user, err := s.resolveUser(ctx, tx, req.User, plan)
		if err != nil {
			return err
		}

		stored, err := s.resolveAddresses(ctx, tx, user.ID, plan.addresses)
		if err != nil {
			return err
		}

		quote, err := s.pricing.Quote(ctx, subtotal)
		if err != nil {
			return fmt.Errorf("pricing: %w", err)
		}

		total := subtotal.Add(quote.Tax).Add(quote.Shipping)
		if total.GreaterThan(maxMoney) {
			return amountTooLarge("total_amount")
		}

		userID := user.ID
		shippingID := stored[plan.shippingIdx].ID
		billingID := stored[plan.billingIdx].ID
		order = &models.Order{
			UserID:            &userID,
			Status:            models.OrderStatusPending,
			PaymentStatus:     plan.paymentStatus,
			PaymentMethod:     plan.paymentMethod,
			Subtotal:          subtotal,
			TaxAmount:         quote.Tax,
			ShippingAmount:    quote.Shipping,
			TotalAmount:       total,
			ShippingAddressID: &shippingID,
			BillingAddressID:  &billingID,
			Notes:             strings.TrimSpace(req.Notes),
			OrderItems:        items,
		}
		return s.insertOrder(ctx, tx, order)
	})
	if err != nil {
		appErr := asServiceError(err, "create order")
		s.recordCount(ctx, aws_pkg.MetricOrdersFailed, string(appErr.Kind))
		return nil, appErr
	}

	logger.For(ctx, s.logger).Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.OrderItems)),
	)

	s.publish(ctx, models.NewOrderEvent(models.EventOrderCreated, order))
	s.recordCount(ctx, aws_pkg.MetricOrdersCreated, string(order.PaymentMethod))
	s.recordLatency(ctx, aws_pkg.MetricOrderCreateLatency, s.now().Sub(start))

	return &models.OrderConfirmation{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		UserID:            *order.UserID,
		Status:            order.Status,
		PaymentStatus:     order.PaymentStatus,
		PaymentMethod:     order.PaymentMethod,
		Subtotal:          order.Subtotal,
		TaxAmount:         order.TaxAmount,
		ShippingAmount:    order.ShippingAmount,
		TotalAmount:       order.TotalAmount,
		ItemsCount:        len(order.OrderItems),
		ShippingAddressID: *order.ShippingAddressID,
		BillingAddressID:  *order.BillingAddressID,
		CreatedAt:         order.CreatedAt,
	}, nil
}

// plan performs every check that needs no database access. Field keys follow
// the JSON request shape.
func (s *orderServiceImpl) plan(req *models.CreateOrderRequest) (*orderPlan, error) {
	fields := map[string]string{}
	p := &orderPlan{addresses: append([]models.AddressInput(nil), req.SubmittedAddresses()...)}

	if len(req.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			fields[fmt.Sprintf("items[%d].product_id", i)] = "is required"
		}
		switch {
		case item.Quantity < 1:
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		case item.Quantity > maxItemQuantity:
			fields[fmt.Sprintf("items[%d].quantity", i)] = fmt.Sprintf("must be at most %d", maxItemQuantity)
		}
	}

	if len(p.addresses) == 0 {
		fields["addresses"] = "at least one address is required"
	}
	for i := range p.addresses {
		normalizeAddress(&p.addresses[i])
		validateAddress(p.addresses[i], i, fields)
	}
	p.shippingIdx = checkAddressIndex("shipping_address_index", req.ShippingAddressIndex, p.addresses, models.AddressTypeShipping, fields)
	p.billingIdx = checkAddressIndex("billing_address_index", req.BillingAddressIndex, p.addresses, models.AddressTypeBilling, fields)

	p.paymentMethod = req.PaymentMethod
	if p.paymentMethod == "" {
		p.paymentMethod = models.PaymentMethodCreditCard
	}
	status, ok := initialPaymentStatus(p.paymentMethod)
	if !ok {
		fields["payment_method"] = "unsupported payment method"
	}
	p.paymentStatus = status

	validateUser(req.User, fields)

	if len(fields) > 0 {
		return nil, apperrors.Validation("Order request is invalid", fields)
	}

	if !req.User.IsReference() {
		p.email = normalizeEmail(req.User.Email)
		hash, err := bcrypt.GenerateFromPassword([]byte(req.User.Password), s.passwordCost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.Validation("Order request is invalid", map[string]string{
				"user.password": fmt.Sprintf("must be at most %d bytes", maxPasswordBytes),
			})
		}
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("hash password: %w", err))
		}
		p.passwordHash = string(hash)
	}
	return p, nil
}

func validateUser(u models.UserInput, fields map[string]string) {
	if u.IsReference() {
		if *u.ID == uuid.Nil {
			fields["user.id"] = "must be a valid user id"
		}
		return
	}
	email := normalizeEmail(u.Email)
	if email == "" {
		fields["user.email"] = "is required"
	} else if at := strings.LastIndex(email, "@"); at <= 0 || at == len(email)-1 {
		fields["user.email"] = "must be a valid email address"
	}
	switch {
	case len(u.Password) < 8:
		fields["user.password"] = "must be at least 8 characters"
	case len(u.Password) > maxPasswordBytes:
		fields["user.password"] = fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	}
	if strings.TrimSpace(u.FirstName) == "" {
		fields["user.first_name"] = "is required"
	}
	if strings.TrimSpace(u.LastName) == "" {
		fields["user.last_name"] = "is required"
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeAddress(a *models.AddressInput) {
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	a.City = strings.TrimSpace(a.City)
	a.StateProvince = strings.TrimSpace(a.StateProvince)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	if a.Country == "" {
		a.Country = "US"
	}
}

func validateAddress(a models.AddressInput, i int, fields map[string]string) {
	key := func(name string) string { return fmt.Sprintf("addresses[%d].%s", i, name) }

	if a.Type != models.AddressTypeBilling && a.Type != models.AddressTypeShipping {
		fields[key("type")] = "must be one of: billing shipping"
	}
	required := map[string]string{
		"address_line_1": a.AddressLine1,
		"city":           a.City,
		"state_province": a.StateProvince,
		"postal_code":    a.PostalCode,
	}
	for name, v := range required {
		if v == "" {
			fields[key(name)] = "is required"
		}
	}
	if len(a.Country) != 2 {
		fields[key("country")] = "must be exactly 2 characters"
	}
}

func checkAddressIndex(name string, idx *int, addrs []models.AddressInput, want models.AddressType, fields map[string]string) int {
	switch {
	case idx == nil:
		fields[name] = "is required"
	case len(addrs) == 0:
		fields[name] = "no addresses were submitted"
	case *idx < 0 || *idx >= len(addrs):
		fields[name] = fmt.Sprintf("must be between 0 and %d", len(addrs)-1)
	case addrs[*idx].Type != want:
		fields[name] = fmt.Sprintf("must reference a %s address", want)
	default:
		return *idx
	}
	return -1
}

// buildItems loads the referenced products and snapshots their price into
// each item. Any missing or inactive product fails the whole order.
func (s *orderServiceImpl) buildItems(ctx context.Context, tx *repository.Repositories, inputs []models.OrderItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if !seen[in.ProductID] {
			seen[in.ProductID] = true
			ids = append(ids, in.ProductID)
		}
	}

	products, err := tx.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero
	for _, in := range inputs {
		p, ok := byID[in.ProductID]
		if !ok || !p.IsActive {
			return nil, decimal.Zero, apperrors.NotFound(fmt.Sprintf("Product %s not found", in.ProductID))
		}
		total := p.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			Quantity:   in.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: total,
		})
		subtotal = subtotal.Add(total)
	}
	return items, subtotal, nil
}

func (s *orderServiceImpl) resolveUser(ctx context.Context, tx *repository.Repositories, in models.UserInput, plan *orderPlan) (*models.User, error) {
	if in.IsReference() {
		user, err := tx.Users.FindByID(ctx, *in.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
			return nil, apperrors.NotFound("User not found")
		}
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		return user, nil
	}

	if _, err := tx.Users.FindByEmail(ctx, plan.email); err == nil {
		return nil, emailConflict()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	user := &models.User{
		Email:        plan.email,
		PasswordHash: plan.passwordHash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		IsActive:     true,
	}
	if err := tx.Users.Create(ctx, user); err != nil {
		// a concurrent registration won the race for the unique email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, emailConflict()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func amountTooLarge(field string) error {
	return apperrors.Validation("Order amount is too large", map[string]string{
		field: "must not exceed " + maxMoney.StringFixed(2),
	})
}

func emailConflict() error {
	e := apperrors.Conflict("A user with this email already exists; reference the existing user by id")
	e.Fields = map[string]string{"user.email": "already registered"}
	return e
}

// resolveAddresses returns the stored row for each submitted address, in
// submission order, creating the rows that do not exist yet.
func (s *orderServiceImpl) resolveAddresses(ctx context.Context, tx *repository.Repositories, userID uuid.UUID, inputs []models.AddressInput) ([]models.Address, error) {
	stored := make([]models.Address, len(inputs))
	for _, i := range identityOrder(inputs) {
		in := inputs[i]
		addr := models.Address{
			UserID:        userID,
			Type:          in.Type,
			FirstName:     strings.TrimSpace(in.FirstName),
			LastName:      strings.TrimSpace(in.LastName),
			Company:       strings.TrimSpace(in.Company),
			AddressLine1:  in.AddressLine1,
			AddressLine2:  strings.TrimSpace(in.AddressLine2),
			City:          in.City,
			StateProvince: in.StateProvince,
			PostalCode:    in.PostalCode,
			Country:       in.Country,
			Phone:         strings.TrimSpace(in.Phone),
		}
		if _, err := tx.Addresses.FindOrCreate(ctx, &addr); err != nil {
			return nil, fmt.Errorf("resolve address %d: %w", i, err)
		}
		if in.IsDefault && !addr.IsDefault {
			if err := tx.Addresses.MakeDefault(ctx, &addr); err != nil {
				return nil, fmt.Errorf("set default address %d: %w", i, err)
			}
		}
		stored[i] = addr
	}
	return stored, nil
}

// identityOrder returns the input positions sorted by address identity key.
// Concurrent orders for one user then take row locks in the same order.
func identityOrder(inputs []models.AddressInput) []int {
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	key := func(a models.AddressInput) string {
		return strings.Join([]string{string(a.Type), a.AddressLine1, a.City, a.StateProvince, a.PostalCode, a.Country}, "\x00")
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key(inputs[order[a]]) < key(inputs[order[b]])
	})
	return order
}

func (s *orderServiceImpl) insertOrder(ctx context.Context, tx *repository.Repositories, order *models.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.orderNumber(s.now())
		err := tx.Orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("insert order: %w", err)
		}
		logger.For(ctx, s.logger).Warn("Order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
		order.ID = uuid.Nil
	}
	return fmt.Errorf("insert order: no unique order number after %d attempts", maxOrderNumberAttempts)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.store.Repos().Orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, asServiceError(err, "get order")
	}
	return order, nil
}

func (s *orderServiceImpl) GetOrderStatus(ctx context.Context, id uuid.UUID) (*models.OrderStatusResponse, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return statusResponse(order), nil
}

// UpdateOrderStatus moves an order along its lifecycle. Setting the current
// status again is a no-op.
func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.OrderStatusResponse, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("Invalid status", map[string]string{
			"status": "must be one of: pending confirmed processing shipped delivered cancelled refunded",
		})
	}

	var order *models.Order
	var previous models.OrderStatus
	err := s.store.Transaction(ctx, func(tx *repository.Repositories) error {
		o, err := tx.Orders.FindByIDForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Order not found")
		}
		if err != nil {
			return err
		}
		order, previous = o, o.Status

		if o.Status == status {
			return nil
		}
		if !CanTransition(o.Status, status) {
			return apperrors.Conflict(fmt.Sprintf("Cannot change order status from %s to %s", o.Status, status))
		}
		if err := tx.Orders.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		o.Status = status
		o.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "update order status")
	}

	if previous != status {
		evt := models.NewOrderEvent(models.EventOrderStatusChanged, order)
		evt.PreviousStatus = previous
		s.publish(ctx, evt)
		s.recordCount(ctx, aws_pkg.MetricOrderStatusChanged, string(status))
		logger.For(ctx, s.logger).Info("Order status changed",
			zap.String("order_id", id.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(status)),
		)
	}
	return statusResponse(order), nil
}

// ListUserOrders retrieves paginated orders for a user
func (s *orderServiceImpl) ListUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*models.OrderListResponse, error) {
	repos := s.store.Repos()
	if _, err := repos.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, asServiceError(err, "load user")
	}

	orders, total, err := repos.Orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, asServiceError(err, "list orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}

	return &models.OrderListResponse{
		Orders: orders,
		Meta: models.MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page)*int64(limit),
		},
	}, nil
}

func statusResponse(o *models.Order) *models.OrderStatusResponse {
	return &models.OrderStatusResponse{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		UpdatedAt:     o.UpdatedAt,
	}
}

// asServiceError keeps taxonomy errors and wraps everything else as internal.
func asServiceError(err error, op string) *apperrors.Error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	return apperrors.Internal(fmt.Errorf("%s: %w", op, err))
}

func (s *orderServiceImpl) publish(ctx context.Context, evt models.OrderEvent) {
	if s.events != nil {
		s.events.PublishOrderEvent(ctx, evt)
	}
}

func (s *orderServiceImpl) recordCount(ctx context.Context, metric, reason string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": "order-intake", "Reason": reason})
	}()
}

func (s *orderServiceImpl) recordLatency(ctx context.Context, metric string, d time.Duration) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		_ = s.metrics.RecordLatency(ctx, metric, d, map[string]string{"Service": "order-intake"})
	}()
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
