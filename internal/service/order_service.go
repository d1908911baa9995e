package service

import (
	"context"
	"time"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	store       *store.Store
	events      EventPublisher
	idempotency IdempotencyStore
	ttl         CacheConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	events EventPublisher,
	idempotency IdempotencyStore,
	ttl CacheConfig,
) *OrderService {
	return &OrderService{
		store:       store,
		events:      events,
		idempotency: idempotency,
		ttl:         ttl,
		logger:      util.GetLogger(),
		now:         time.Now,
	}
}

// CreateOrder creates a basket order with one line per game key.
func (s *OrderService) CreateOrder(ctx context.Context, req *OrderCreateRequest, idempotencyKey string) (resp *OrderCreateResponse, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer func() { util.EndSpan(span, err) }()

	if req == nil || len(req.Games) == 0 {
		return nil, newValidationError("games", "at least one game key is required")
	}

	var cached OrderCreateResponse
	if lookupIdempotent(ctx, s.idempotency, s.logger, "orders:new", idempotencyKey, &cached) {
		return &cached, nil
	}

	release, err := claimIdempotent(ctx, s.idempotency, s.logger, "orders:new", idempotencyKey)
	if err != nil {
		return nil, err
	}
	defer release()

	// A duplicate may have completed between the lookup and the lock.
	if lookupIdempotent(ctx, s.idempotency, s.logger, "orders:new", idempotencyKey, &cached) {
		return &cached, nil
	}

	order := models.NewOrder(s.now().UTC())
	if req.CustomerID != nil {
		order.CustomerID = nonEmpty(*req.CustomerID)
	}

	err = s.store.InTx(ctx, "order_create", func(uow *store.UnitOfWork) error {
		for _, key := range req.Games {
			game, err := uow.Games.GetByKey(ctx, key)
			if err != nil {
				return err
			}
			if game == nil {
				return newValidationError("games", "game with key %q does not exist", key)
			}

			detail := models.NewOrderDetail()
			detail.ProductID = &game.Key
			detail.ProductName = &game.Name
			detail.Price = game.Price
			detail.Quantity = 1
			detail.Discount = decimal.Zero
			detail.Sum = models.LineSum(detail.Price, detail.Quantity, detail.Discount)
			order.OrderDetails = append(order.OrderDetails, detail)
		}
		return uow.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	resp = &OrderCreateResponse{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		OrderDate:    order.OrderDate,
		CreationDate: order.CreationDate,
		PaidDate:     order.PaidDate,
		Price:        decimal.Zero,
		Discount:     decimal.Zero,
		Sum:          decimal.Zero,
		OrderDetails: toDetailModels(order.OrderDetails),
	}
	items := make([]models.OrderItemData, 0, len(order.OrderDetails))
	for _, d := range order.OrderDetails {
		resp.Price = resp.Price.Add(d.Price.Mul(decimal.NewFromInt(int64(d.Quantity))))
		resp.Discount = resp.Discount.Add(d.Discount)
		resp.Sum = resp.Sum.Add(d.Sum)
		items = append(items, models.OrderItemData{
			ProductID: *d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.Price,
		})
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.OrderDetails)),
		zap.String("sum", resp.Sum.StringFixed(2)))

	if s.events != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent: models.NewBaseEvent(models.EventTypeOrderCreated),
			OrderID:   order.ID,
			Total:     resp.Sum,
			Items:     items,
		}
		if order.CustomerID != nil {
			event.CustomerID = *order.CustomerID
		}
		if err := s.events.PublishOrderCreated(ctx, event); err != nil {
			util.EventsPublishFailedTotal.WithLabelValues(models.EventTypeOrderCreated).Inc()
			s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	rememberIdempotent(ctx, s.idempotency, s.logger, "orders:new", idempotencyKey, resp, s.ttl.IdempotencyTTL)
	return resp, nil
}

// PaidOrders returns paid orders with their lines.
func (s *OrderService) PaidOrders(ctx context.Context) ([]OrderResult, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PaidOrders")
	defer span.End()

	orders, err := s.store.UnitOfWork().Orders.ListPaid(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]OrderResult, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderResult{
			ID:           o.ID,
			OrderDate:    o.OrderDate,
			CustomerID:   o.CustomerID,
			OrderDetails: toDetailModels(o.OrderDetails),
		})
	}
	return result, nil
}

// OrderDetails returns the lines of the order, or nil if it does not exist.
func (s *OrderService) OrderDetails(ctx context.Context, id string) ([]OrderDetailModel, error) {
	order, err := s.store.UnitOfWork().Orders.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}
	return toDetailModels(order.OrderDetails), nil
}

// GetOrder returns the order header, or nil if it does not exist.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*OrderModel, error) {
	order, err := s.store.UnitOfWork().Orders.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}
	return &OrderModel{
		ID:         order.ID,
		OrderDate:  order.OrderDate,
		CustomerID: order.CustomerID,
	}, nil
}

// BasketOrders returns one entry per basket order built from its first
// line. Orders without lines are skipped.
func (s *OrderService) BasketOrders(ctx context.Context) ([]BasketOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.BasketOrders")
	defer span.End()

	orders, err := s.store.UnitOfWork().Orders.ListBasket(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]BasketOrder, 0, len(orders))
	for _, o := range orders {
		if len(o.OrderDetails) == 0 {
			continue
		}
		first := o.OrderDetails[0]
		result = append(result, BasketOrder{
			ID:          o.ID,
			ProductID:   first.ProductID,
			ProductName: first.ProductName,
			Sum:         first.Sum,
			Price:       first.Price,
			Quantity:    first.Quantity,
			Discount:    first.Discount,
		})
	}
	return result, nil
}

func toDetailModels(details []models.OrderDetail) []OrderDetailModel {
	result := make([]OrderDetailModel, 0, len(details))
	for _, d := range details {
		result = append(result, OrderDetailModel{
			ID:        d.ID,
			ProductID: d.ProductID,
			Price:     d.Price,
			Quantity:  d.Quantity,
			Discount:  d.Discount,
		})
	}
	return result
}
