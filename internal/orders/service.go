package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Motasaith/abdulshop-backend/internal/inventory"
	"github.com/Motasaith/abdulshop-backend/internal/mailer"
	"github.com/Motasaith/abdulshop-backend/internal/notifications"
	"github.com/Motasaith/abdulshop-backend/internal/products"
	"github.com/Motasaith/abdulshop-backend/internal/settlement"
	"github.com/Motasaith/abdulshop-backend/internal/tracking"
	"github.com/Motasaith/abdulshop-backend/pkg/config"
	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
	"github.com/Motasaith/abdulshop-backend/pkg/enums"
	pkgerrors "github.com/Motasaith/abdulshop-backend/pkg/errors"
	"github.com/Motasaith/abdulshop-backend/pkg/logger"
	"github.com/Motasaith/abdulshop-backend/pkg/pagination"
	"github.com/Motasaith/abdulshop-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies the caller of an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// IsAdmin reports whether the actor carries administrative privileges.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// CreateOrderItem is a requested order line; price and name are snapshotted
// from the catalog at creation, not taken from the client.
type CreateOrderItem struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput captures everything needed to place an order.
type CreateOrderInput struct {
	Actor           Actor
	Items           []CreateOrderItem
	ShippingAddress types.Address
	PaymentMethod   string
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
}

// ListParams configures order listing.
type ListParams struct {
	Actor  Actor
	Limit  int
	Cursor string
	// All lists every order instead of the caller's own; admin only.
	All bool
}

// ListResult wraps returned orders and the cursor for the next page.
type ListResult struct {
	Items  []OrderDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

// Service owns the order state machine and orchestrates inventory,
// settlement, notification and email side effects around it.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkPaid(ctx context.Context, actor Actor, orderID uuid.UUID, result *types.PaymentResult) (*OrderDTO, error)
	MarkShipped(ctx context.Context, orderID uuid.UUID, info *types.TrackingInfo, estimated *time.Time) (*OrderDTO, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	Track(ctx context.Context, trackingNumber string) (*TrackingView, error)
	TrackByOrder(ctx context.Context, orderID uuid.UUID, email string) (*TrackingView, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	products   products.Repository
	inventory  inventory.Service
	settlement settlement.Service
	notifier   notifications.Service
	mail       mailer.Mailer
	logg       *logger.Logger
	cfg        config.OrdersConfig
	now        func() time.Time
}

// NewService wires the order lifecycle dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	productRepo products.Repository,
	inventorySvc inventory.Service,
	settlementSvc settlement.Service,
	notifier notifications.Service,
	mail mailer.Mailer,
	logg *logger.Logger,
	cfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if productRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if inventorySvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory service required")
	}
	if settlementSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settlement service required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailer required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		products:   productRepo,
		inventory:  inventorySvc,
		settlement: settlementSvc,
		notifier:   notifier,
		mail:       mail,
		logg:       logg,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// Create persists the order in processing/unpaid state, then runs the
// best-effort side effects: stock decrement, vendor notification, and the
// confirmation email. Only the persist itself can fail the request.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if input.ShippingAddress.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}
	if input.TaxPrice.IsNegative() || input.ShippingPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax and shipping prices must not be negative")
	}
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
	}

	items, itemsPrice, err := s.snapshotItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		UserID:          input.Actor.UserID,
		TrackingNumber:  s.newTrackingNumber(),
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		ItemsPrice:      itemsPrice,
		TaxPrice:        input.TaxPrice.Round(2),
		ShippingPrice:   input.ShippingPrice.Round(2),
		TotalPrice:      itemsPrice.Add(input.TaxPrice).Add(input.ShippingPrice).Round(2),
		Status:          enums.OrderStatusProcessing,
		CreatedAt:       now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if err := s.inventory.DecrementForOrder(ctx, order.Items); err != nil {
		s.logg.Warn(ctx, "inventory decrement failed: "+err.Error())
	}
	s.notifyVendors(ctx, order, enums.NotificationTypeNewOrder, "New order received")
	s.sendConfirmation(ctx, order)

	return toOrderDTO(order), nil
}

// MarkPaid flips the order to paid exactly once and triggers settlement.
// A repeated confirmation returns the paid order without distributing again,
// and a settlement failure never reverts the payment.
func (s *service) MarkPaid(ctx context.Context, actor Actor, orderID uuid.UUID, result *types.PaymentResult) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(actor, order); err != nil {
		return nil, err
	}

	claimed, err := s.repo.MarkPaid(ctx, orderID, s.now().UTC(), result)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}

	order, err = s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return toOrderDTO(order), nil
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if err := s.settlement.Distribute(ctx, order); err != nil {
		s.logg.Error(ctx, "settlement failed, payment retained", err)
	}
	return toOrderDTO(order), nil
}

// MarkShipped moves processing -> shipped and fires the shipped email.
func (s *service) MarkShipped(ctx context.Context, orderID uuid.UUID, info *types.TrackingInfo, estimated *time.Time) (*OrderDTO, error) {
	won, err := s.repo.MarkShipped(ctx, orderID, s.now().UTC(), info, estimated)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order shipped")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be shipped from its current state").
			WithDetails(map[string]any{"status": order.Status})
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.notifyVendors(ctx, order, enums.NotificationTypeOrderShipped, "Order shipped")
	s.sendShipped(ctx, order, info)
	return toOrderDTO(order), nil
}

// MarkDelivered moves shipped -> delivered.
func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	won, err := s.repo.MarkDelivered(ctx, orderID, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order delivered")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be delivered from its current state").
			WithDetails(map[string]any{"status": order.Status})
	}
	return toOrderDTO(order), nil
}

// Cancel succeeds only while the order is still processing; concurrent ship
// and cancel resolve through the guarded update, never both.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(actor, order); err != nil {
		return nil, err
	}

	won, err := s.repo.Cancel(ctx, orderID, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	order, err = s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only processing orders can be cancelled").
			WithDetails(map[string]any{"status": order.Status})
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.notifyVendors(ctx, order, enums.NotificationTypeOrderCancelled, "Order cancelled")
	return toOrderDTO(order), nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(actor, order); err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if params.All && !params.Actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	query := listOrdersParams{Limit: params.Limit}
	if !params.All {
		userID := params.Actor.UserID
		query.UserID = &userID
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toOrderDTO(&rows[i]))
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

// Track resolves a public tracking number to the sanitized timeline view.
func (s *service) Track(ctx context.Context, trackingNumber string) (*TrackingView, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}

	order, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by tracking number")
	}
	return s.trackingView(order), nil
}

// TrackByOrder resolves an order id + email pair to the same view; the email
// must match the order owner so tracking numbers cannot be fished by id.
func (s *service) TrackByOrder(ctx context.Context, orderID uuid.UUID, email string) (*TrackingView, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByID(ctx, order.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order owner")
	}
	if !strings.EqualFold(user.Email, email) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.trackingView(order), nil
}

func (s *service) trackingView(order *models.Order) *TrackingView {
	return &TrackingView{
		TrackingNumber:    order.TrackingNumber,
		Status:            order.Status,
		TotalPrice:        order.TotalPrice,
		EstimatedDelivery: order.EstimatedDelivery,
		Timeline:          tracking.Project(*order, s.now().UTC()),
	}
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) authorizeOwner(actor Actor, order *models.Order) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.IsAdmin() || order.UserID == actor.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
}

// snapshotItems resolves each requested product and freezes its current name
// and price into the order line. Later catalog edits never touch these rows.
func (s *service) snapshotItems(ctx context.Context, requested []CreateOrderItem) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(requested))
	for _, item := range requested {
		ids = append(ids, item.ProductID)
	}
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	catalog := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		catalog[row.ID] = row
	}

	items := make([]models.OrderItem, 0, len(requested))
	itemsPrice := decimal.Zero
	for _, item := range requested {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		productID := product.ID
		items = append(items, models.OrderItem{
			ProductID: &productID,
			Name:      product.Name,
			Price:     product.Price,
			Qty:       item.Qty,
		})
		itemsPrice = itemsPrice.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return items, itemsPrice.Round(2), nil
}

// notifyVendors emits one fire-and-forget note per distinct vendor store in
// the order. Unresolvable products are skipped.
func (s *service) notifyVendors(ctx context.Context, order *models.Order, kind enums.NotificationType, title string) {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logg.Warn(ctx, "vendor notification skipped: "+err.Error())
		return
	}

	seen := make(map[uuid.UUID]struct{})
	for _, row := range rows {
		if _, ok := seen[row.StoreID]; ok {
			continue
		}
		seen[row.StoreID] = struct{}{}
		storeID := row.StoreID
		err := s.notifier.Notify(ctx, notifications.Note{
			StoreID: &storeID,
			Type:    kind,
			Title:   title,
			Message: "Order " + order.TrackingNumber,
			Data:    map[string]any{"order_id": order.ID, "tracking_number": order.TrackingNumber},
		})
		if err != nil {
			s.logg.Warn(ctx, "vendor notification failed: "+err.Error())
		}
	}
}

func (s *service) sendConfirmation(ctx context.Context, order *models.Order) {
	user, err := s.repo.FindUserByID(ctx, order.UserID)
	if err != nil {
		s.logg.Warn(ctx, "confirmation email skipped: "+err.Error())
		return
	}
	if err := s.mail.SendOrderConfirmation(ctx, user, order); err != nil {
		s.logg.Warn(ctx, "confirmation email failed: "+err.Error())
	}
}

func (s *service) sendShipped(ctx context.Context, order *models.Order, info *types.TrackingInfo) {
	user, err := s.repo.FindUserByID(ctx, order.UserID)
	if err != nil {
		s.logg.Warn(ctx, "shipped email skipped: "+err.Error())
		return
	}
	if err := s.mail.SendOrderShipped(ctx, user, order, info); err != nil {
		s.logg.Warn(ctx, "shipped email failed: "+err.Error())
	}
}

func (s *service) newTrackingNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return s.cfg.TrackingPrefix + "-" + raw[:12]
}
