package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dukerupert/njord/internal/domain"
)

// createdViaAPI marks orders created through the HTTP API.
const createdViaAPI = "rest-api"

// OrderTransformer inspects or rewrites a mapped order before it is saved.
// Transformers run in registration order; the first error aborts the write.
type OrderTransformer func(ctx context.Context, order *domain.Order, req *OrderRequest, creating bool) error

// OrderObserver runs after a successful save. Observer failures are logged,
// never surfaced; the write has already committed.
type OrderObserver func(ctx context.Context, order *domain.Order, creating bool)

// OrderConfig is the store configuration captured once at construction and
// threaded into every call.
type OrderConfig struct {
	// Currency is the store currency applied to new orders.
	Currency string

	// Precision is the number of fractional digits for monetary output.
	Precision int

	// PricesIncludeTax stamps new orders with the store's tax-inclusive
	// pricing mode.
	PricesIncludeTax bool

	// Location is the site-local timezone for response timestamps.
	Location *time.Location
}

// OrderService provides business logic for order operations.
type OrderService interface {
	// Create builds a new order from the request. An empty request is
	// valid and yields a pending order with zero totals.
	Create(ctx context.Context, req *OrderRequest) (*domain.Order, error)

	// Update applies the supplied request fields to an existing order.
	Update(ctx context.Context, id int64, req *OrderRequest) (*domain.Order, error)

	// Get loads a single order.
	Get(ctx context.Context, id int64) (*domain.Order, error)

	// List returns a page of orders plus the total match count.
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int64, error)

	// Delete trashes the order, or erases it when force is set. The
	// returned order is the pre-deletion representation.
	Delete(ctx context.Context, id int64, force bool) (*domain.Order, error)

	// Response renders an order with the service's configured precision
	// and timezone.
	Response(order *domain.Order) *OrderResponse
}

// orderService implements OrderService.
type orderService struct {
	store        domain.OrderStore
	calculator   domain.TotalsCalculator
	payments     domain.PaymentCompleter
	cfg          OrderConfig
	transformers []OrderTransformer
	observers    []OrderObserver
	logger       zerolog.Logger
	now          func() time.Time
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(
	logger zerolog.Logger,
	store domain.OrderStore,
	calculator domain.TotalsCalculator,
	payments domain.PaymentCompleter,
	cfg OrderConfig,
	transformers []OrderTransformer,
	observers []OrderObserver,
) (OrderService, error) {
	if store == nil {
		return nil, errors.New("order store is required")
	}
	if calculator == nil {
		return nil, errors.New("totals calculator is required")
	}
	if payments == nil {
		return nil, errors.New("payment completer is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}

	return &orderService{
		store:        store,
		calculator:   calculator,
		payments:     payments,
		cfg:          cfg,
		transformers: transformers,
		observers:    observers,
		logger:       logger.With().Str("component", "order_service").Logger(),
		now:          time.Now,
	}, nil
}

func (s *orderService) Create(ctx context.Context, req *OrderRequest) (*domain.Order, error) {
	return s.save(ctx, req, nil, true)
}

func (s *orderService) Update(ctx context.Context, id int64, req *OrderRequest) (*domain.Order, error) {
	existing, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, req, existing, false)
}

// save runs the write workflow: map, transform, recompute, persist, then
// conditionally complete payment. Any failure aborts the whole write; no
// partial state is ever surfaced as success.
func (s *orderService) save(ctx context.Context, req *OrderRequest, existing *domain.Order, creating bool) (*domain.Order, error) {
	const op = "order.save"
	now := s.now().UTC()

	var order *domain.Order
	if creating {
		order = domain.NewOrder(s.cfg.Currency)
		order.OrderKey = "order_" + uuid.NewString()
		order.CreatedVia = createdViaAPI
		order.PricesIncludeTax = s.cfg.PricesIncludeTax
		order.DateCreated = now
	} else {
		// Mutations run against a scratch copy so a failed write leaves
		// the loaded aggregate untouched.
		order = existing.Clone()
	}

	if err := applyOrderRequest(order, req, now); err != nil {
		return nil, err
	}

	for _, transform := range s.transformers {
		if err := transform(ctx, order, req, creating); err != nil {
			return nil, err
		}
	}

	// Totals are always recomputed from scratch on create. On update the
	// recomputation is skipped when no contributing field was supplied;
	// this is an optimization and always-recomputing must stay safe.
	if creating {
		if err := s.calculator.CalculateTotals(ctx, order, false); err != nil {
			return nil, err
		}
	} else if req.TouchesTotals() {
		if err := s.calculator.CalculateTotals(ctx, order, true); err != nil {
			return nil, err
		}
	}

	order.DateModified = now

	if err := s.store.Save(ctx, order); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to save order")
	}

	if req.SetPaid != nil && *req.SetPaid && (creating || order.NeedsPayment()) {
		if err := s.payments.MarkPaid(ctx, order); err != nil {
			return nil, err
		}
		if err := s.store.Save(ctx, order); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to save paid order")
		}
	}

	// Re-read so the response reflects store-assigned identities and any
	// trigger-applied state, not the in-memory working copy.
	saved, err := s.store.Find(ctx, order.ID)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to reload order")
	}

	for _, observe := range s.observers {
		observe(ctx, saved, creating)
	}

	s.logger.Info().
		Int64("order_id", saved.ID).
		Bool("creating", creating).
		Str("status", string(saved.Status)).
		Msg("order saved")

	return saved, nil
}

func (s *orderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.store.Find(ctx, id)
}

func (s *orderService) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int64, error) {
	ids, total, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.store.Find(ctx, id)
		if err != nil {
			// A row deleted between the two queries is not an error;
			// counts are best-effort.
			if domain.IsCode(err, domain.ENOTFOUND) {
				continue
			}
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, nil
}

func (s *orderService) Delete(ctx context.Context, id int64, force bool) (*domain.Order, error) {
	const op = "order.delete"

	order, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id, force); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to delete order")
	}
	if !force {
		order.SetStatus(domain.OrderStatusTrash, s.now().UTC())
	}
	return order, nil
}

func (s *orderService) Response(order *domain.Order) *OrderResponse {
	return NewOrderResponse(order, ResponseOptions{
		Precision: s.cfg.Precision,
		Location:  s.cfg.Location,
	})
}
