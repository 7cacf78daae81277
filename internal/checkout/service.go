package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/grocery-pos-backend/internal/events"
	"github.com/wichananm65/grocery-pos-backend/internal/metrics"
	"github.com/wichananm65/grocery-pos-backend/internal/order"
	"github.com/wichananm65/grocery-pos-backend/internal/pricing"
)

const publishTimeout = 5 * time.Second

// ProductLookup is the unlocked catalog read used by Quote.
type ProductLookup interface {
	Lookup(ctx context.Context, ids []int) (map[int]pricing.Item, error)
}

type CustomerResolver interface {
	FindIDByPhone(ctx context.Context, phone string) (int64, bool, error)
}

type Config struct {
	TaxRate         decimal.Decimal
	GuestCustomerID int64
	StockPolicy     StockPolicy
}

// Deps are the collaborators of a Service. Store and Catalog are required.
type Deps struct {
	Store     Store
	Catalog   ProductLookup
	Customers CustomerResolver
	Publisher events.Publisher
	Metrics   *metrics.Checkout
	Logger    *log.Logger
}

type Service struct {
	cfg       Config
	store     Store
	catalog   ProductLookup
	customers CustomerResolver
	publisher events.Publisher
	metrics   *metrics.Checkout
	logger    *log.Logger
	now       func() time.Time
}

func NewService(cfg Config, d Deps) *Service {
	if cfg.StockPolicy == "" {
		cfg.StockPolicy = StockStrict
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		cfg:       cfg,
		store:     d.Store,
		catalog:   d.Catalog,
		customers: d.Customers,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		logger:    d.Logger,
		now:       time.Now,
	}
}

type QuoteRequest struct {
	Lines   []pricing.CartLine
	TaxRate *decimal.Decimal
}

type Request struct {
	Lines      []pricing.CartLine
	CustomerID *int64
	Phone      string
	EmployeeID *int64
	TaxRate    *decimal.Decimal
}

type Result struct {
	OrderID  int64
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Quote prices a cart against the current catalog without locking or
// writing anything.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (pricing.Quote, error) {
	q, err := s.quote(ctx, req)
	s.metrics.ObserveQuote(outcome(err))
	return q, err
}

func (s *Service) quote(ctx context.Context, req QuoteRequest) (pricing.Quote, error) {
	if err := pricing.ValidateLines(req.Lines); err != nil {
		return pricing.Quote{}, err
	}
	items, err := s.catalog.Lookup(ctx, pricing.DistinctProductIDs(req.Lines))
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("lookup products: %w", err)
	}
	return pricing.PriceCart(req.Lines, s.taxRate(req.TaxRate), func(id int) (pricing.Item, bool) {
		it, ok := items[id]
		return it, ok
	})
}

// Checkout records a sale atomically: the order header, one line per cart
// line and the stock decrements either all commit or none do.
func (s *Service) Checkout(ctx context.Context, req Request) (res Result, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveCheckout(outcome(err), time.Since(start))
	}()

	if err := pricing.ValidateLines(req.Lines); err != nil {
		return Result{}, err
	}
	customerID, err := s.resolveCustomer(ctx, req)
	if err != nil {
		return Result{}, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ids := pricing.DistinctProductIDs(req.Lines)
	locked, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return Result{}, err
	}

	quote, err := pricing.PriceCart(req.Lines, s.taxRate(req.TaxRate), func(id int) (pricing.Item, bool) {
		p, ok := locked[id]
		return pricing.Item{Name: p.Name, Price: p.Price}, ok
	})
	if err != nil {
		return Result{}, err
	}

	wanted := pricing.QuantitiesByProduct(req.Lines)
	if s.cfg.StockPolicy == StockStrict {
		for _, id := range ids {
			if available := locked[id].Stock; wanted[id] > available {
				return Result{}, &InsufficientStockError{ProductID: id, Requested: wanted[id], Available: available}
			}
		}
	}

	o := order.Order{
		CustomerID: &customerID,
		EmployeeID: req.EmployeeID,
		DatePlaced: s.now().UTC(),
		Status:     order.StatusPaid,
		Subtotal:   quote.Subtotal,
		Tax:        quote.Tax,
		Total:      quote.Total,
	}
	o.ID, err = tx.InsertOrder(ctx, o)
	if err != nil {
		return Result{}, err
	}

	lines := make([]order.Line, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		lines = append(lines, order.Line{
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	if err := tx.InsertLines(ctx, o.ID, lines); err != nil {
		return Result{}, err
	}

	for _, id := range ids {
		if err := tx.DecrementStock(ctx, id, wanted[id]); err != nil {
			return Result{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}

	s.publish(ctx, o, lines)
	return Result{OrderID: o.ID, Subtotal: quote.Subtotal, Tax: quote.Tax, Total: quote.Total}, nil
}

func (s *Service) resolveCustomer(ctx context.Context, req Request) (int64, error) {
	if req.CustomerID != nil && *req.CustomerID > 0 {
		return *req.CustomerID, nil
	}
	if req.Phone != "" && s.customers != nil {
		id, ok, err := s.customers.FindIDByPhone(ctx, req.Phone)
		if err != nil {
			return 0, fmt.Errorf("resolve customer: %w", err)
		}
		if ok {
			return id, nil
		}
	}
	return s.cfg.GuestCustomerID, nil
}

func (s *Service) taxRate(override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return s.cfg.TaxRate
}

// publish is best effort. The sale is already committed.
func (s *Service) publish(ctx context.Context, o order.Order, lines []order.Line) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := events.OrderPlaced{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		EmployeeID: o.EmployeeID,
		Subtotal:   o.Subtotal.StringFixed(2),
		Tax:        o.Tax.StringFixed(2),
		Total:      o.Total.StringFixed(2),
		Lines:      make([]events.OrderPlacedLine, 0, len(lines)),
		PlacedAt:   o.DatePlaced,
	}
	for _, l := range lines {
		evt.Lines = append(evt.Lines, events.OrderPlacedLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
		})
	}
	if err := s.publisher.PublishOrderPlaced(ctx, evt); err != nil {
		s.logger.Printf("publish order %d placed: %v", o.ID, err)
	}
}

func outcome(err error) string {
	var (
		badQty   *pricing.BadQuantityError
		notFound *pricing.ProductNotFoundError
		noStock  *InsufficientStockError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, pricing.ErrEmptyCart):
		return metrics.OutcomeEmptyCart
	case errors.As(err, &badQty):
		return metrics.OutcomeBadQuantity
	case errors.As(err, &notFound):
		return metrics.OutcomeProductNotFound
	case errors.As(err, &noStock):
		return metrics.OutcomeInsufficientStock
	default:
		return metrics.OutcomeError
	}
}
