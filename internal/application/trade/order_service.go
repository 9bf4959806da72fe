package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	"github.com/murdhanno/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const serviceName = "OrderService"

// OrderService handles order business operations
type OrderService struct {
	orderRepo      trade.OrderRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	metrics        *telemetry.InvoiceMetrics
	now            func() time.Time
}

// NewOrderService creates a new OrderService. Reads go through orderRepo;
// order placement runs inside txScope.
func NewOrderService(orderRepo trade.OrderRepository, txScope TransactionScope) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics attaches business metrics
func (s *OrderService) SetMetrics(m *telemetry.InvoiceMetrics) {
	s.metrics = m
}

// CreateOrder reserves an invoice number and item serials, prices every line
// from its product, draws the stock (falling back to compatible sizes) and
// stores the order. Stock and order commit in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, actor shared.Actor, req CreateOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "CreateOrder",
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Please select at least one product")
	}
	customer, err := trade.NewCustomer(req.CustomerName, req.CustomerPhone, req.CustomerAddress)
	if err != nil {
		return nil, err
	}

	var (
		order   *trade.Order
		touched []*catalog.Product
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders := repos.OrderRepo()
		stock := newStockDraw(repos.ProductRepo())

		number, err := orders.NextNumber(ctx)
		if err != nil {
			return err
		}
		order, err = trade.NewOrder(actor.UserID, number, customer, req.DeliveryCharge, req.Discount)
		if err != nil {
			return err
		}
		order.SetLocation(req.CityName, req.ZoneName, req.ShippingRequested)

		var last int64
		for _, in := range req.Items {
			product, err := stock.draw(ctx, in.ProductID, in.Quantity)
			if err != nil {
				return err
			}

			serial, err := nextSerial(ctx, orders, last)
			if err != nil {
				return err
			}
			last = serial

			item, err := trade.NewOrderItem(serial, product.DisplayName(), product.Code, product.Size, in.Quantity, product.Price)
			if err != nil {
				return err
			}
			productID := product.ID
			item.ProductID = &productID
			if err := order.AddItem(*item); err != nil {
				return err
			}
		}

		if err := order.Finalize(); err != nil {
			return err
		}
		if err := orders.Save(ctx, order); err != nil {
			return err
		}
		touched, err = stock.save(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCreated(ctx, order.TotalAmount)
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, order.Number)
	logger.L(ctx).Info("order created",
		zap.Int64("order_number", order.Number),
		zap.Int("items", order.ItemCount()),
		zap.String("total", order.TotalAmount.String()),
	)
	s.publish(ctx, order)
	for _, p := range touched {
		if p.IsLowStock() {
			logger.L(ctx).Warn("product stock is low",
				zap.String("product_id", p.ID.String()),
				zap.String("product", p.DisplayName()),
				zap.String("size", p.Size),
				zap.Int("quantity", p.Quantity),
			)
		}
		if err := shared.PublishAndClear(ctx, s.eventPublisher, p); err != nil {
			logger.L(ctx).Warn("failed to publish product events",
				zap.String("product_id", p.ID.String()),
				zap.Error(err),
			)
		}
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// nextSerial reserves the next item serial. Serials within one order are
// strictly increasing even when the store hands out the same value twice
// before the order is saved.
func nextSerial(ctx context.Context, orders trade.OrderRepository, last int64) (int64, error) {
	serial, err := orders.NextItemSerial(ctx)
	if err != nil {
		return 0, err
	}
	if serial <= last {
		serial = last + 1
	}
	return serial, nil
}

// FindOrder loads an order the actor may see. Orders of other users are
// reported as forbidden.
func (s *OrderService) FindOrder(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.CreatedBy) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied")
	}
	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.FindOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// ListOrders lists orders newest first. Non-admin users only see their own.
func (s *OrderService) ListOrders(ctx context.Context, actor shared.Actor, filter OrderListFilter) (shared.Paginated[OrderListItemResponse], error) {
	domainFilter := trade.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		CreatedBy: actor.Scope(),
		From:      filter.From,
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	domainFilter.Normalize()

	if filter.Status != "" {
		status := trade.OrderStatus(filter.Status)
		if !status.IsValid() {
			return shared.Paginated[OrderListItemResponse]{}, shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+filter.Status)
		}
		domainFilter.Status = &status
	}
	if filter.To != nil {
		to := trade.EndOfDay(*filter.To)
		domainFilter.To = &to
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, err
	}

	return shared.NewPaginated(ToOrderListItemResponses(orders), total, domainFilter.Page, domainFilter.PageSize), nil
}

// UpdateStatus moves an order along its lifecycle. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	if !actor.IsAdmin {
		return nil, shared.NewDomainError("FORBIDDEN", "Only administrators can change order status")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	old := order.Status
	if err := order.UpdateStatus(trade.OrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("order status updated",
		zap.Int64("order_number", order.Number),
		zap.String("from", old.String()),
		zap.String("to", order.Status.String()),
	)
	s.publish(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// SalesReport aggregates the orders created between the request's start and
// end days, both inclusive
func (s *OrderService) SalesReport(ctx context.Context, actor shared.Actor, req SalesReportRequest) (trade.SalesReport, error) {
	start, end, err := s.reportWindow(req)
	if err != nil {
		return trade.SalesReport{}, err
	}

	orders, err := s.orderRepo.FindAll(ctx, trade.OrderFilter{
		Filter:    shared.Filter{OrderBy: "created_at", OrderDir: "asc"},
		CreatedBy: actor.Scope(),
		From:      &start,
		To:        &end,
	})
	if err != nil {
		return trade.SalesReport{}, err
	}
	return trade.BuildSalesReport(start, end, orders), nil
}

func (s *OrderService) reportWindow(req SalesReportRequest) (time.Time, time.Time, error) {
	today := s.now()
	end := today
	if req.End != nil {
		end = *req.End
	}
	start := end.Add(-DefaultReportWindow)
	if req.Start != nil {
		start = *req.Start
	}

	y, m, d := start.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	end = trade.EndOfDay(end)
	if end.Before(start) {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_DATE_RANGE", "End date must not be before start date")
	}
	return start, end, nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, order); err != nil {
		logger.L(ctx).Warn("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
