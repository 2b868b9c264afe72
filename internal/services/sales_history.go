package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"bookstore/internal/apperr"
	"bookstore/internal/dto"
	"bookstore/internal/logger"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"go.uber.org/zap"
)

// QueryShape identifies which order query answers a sales-history request.
type QueryShape int

const (
	ShapeCustomerInRange QueryShape = iota + 1
	ShapeCustomer
	ShapeProductInRange
	ShapeProduct
	ShapeDateRange
	ShapeAll
)

func (s QueryShape) String() string {
	switch s {
	case ShapeCustomerInRange:
		return "customer+date"
	case ShapeCustomer:
		return "customer"
	case ShapeProductInRange:
		return "product+date"
	case ShapeProduct:
		return "product"
	case ShapeDateRange:
		return "date"
	case ShapeAll:
		return "all"
	default:
		return fmt.Sprintf("QueryShape(%d)", int(s))
	}
}

// SalesFilter holds the optional sales-history filters. From and To are calendar
// dates; the range only applies when both are set.
type SalesFilter struct {
	CustomerID *uint
	ProductID  *uint
	From       *time.Time
	To         *time.Time
}

// HasDateRange reports whether both ends of the date range are set.
func (f SalesFilter) HasDateRange() bool {
	return f.From != nil && f.To != nil
}

type salesRule struct {
	shape   QueryShape
	matches func(SalesFilter) bool
}

// salesRules is evaluated top to bottom; the first match wins. A product filter
// takes over whenever it is present, so a customer given together with a product
// is not applied.
var salesRules = []salesRule{
	{ShapeCustomerInRange, func(f SalesFilter) bool { return f.CustomerID != nil && f.HasDateRange() && f.ProductID == nil }},
	{ShapeCustomer, func(f SalesFilter) bool { return f.CustomerID != nil && f.ProductID == nil }},
	{ShapeProductInRange, func(f SalesFilter) bool { return f.ProductID != nil && f.HasDateRange() }},
	{ShapeProduct, func(f SalesFilter) bool { return f.ProductID != nil }},
	{ShapeDateRange, func(f SalesFilter) bool { return f.HasDateRange() }},
	{ShapeAll, func(SalesFilter) bool { return true }},
}

// ResolveShape returns the query shape selected for f.
func ResolveShape(f SalesFilter) QueryShape {
	for _, rule := range salesRules {
		if rule.matches(f) {
			return rule.shape
		}
	}
	return ShapeAll
}

// DayBounds expands two calendar dates to [from 00:00:00, to 23:59:59.999999999] in UTC.
func DayBounds(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

type salesQuery func(ctx context.Context, r repositories.OrderRepository, f SalesFilter, start, end time.Time, p repositories.PageRequest) ([]models.Order, int64, error)

var salesQueries = map[QueryShape]salesQuery{
	ShapeCustomerInRange: func(ctx context.Context, r repositories.OrderRepository, f SalesFilter, start, end time.Time, p repositories.PageRequest) ([]models.Order, int64, error) {
		return r.FindByUserAndCreatedBetween(ctx, *f.CustomerID, start, end, p)
	},
	ShapeCustomer: func(ctx context.Context, r repositories.OrderRepository, f SalesFilter, _, _ time.Time, p repositories.PageRequest) ([]models.Order, int64, error) {
		return r.FindByUser(ctx, *f.CustomerID, p)
	},
	ShapeProductInRange: func(ctx context.Context, r repositories.OrderRepository, f SalesFilter, start, end time.Time, p repositories.PageRequest) ([]models.Order, int64, error) {
		return r.FindByProductAndCreatedBetween(ctx, *f.ProductID, start, end, p)
	},
	ShapeProduct: func(ctx context.Context, r repositories.OrderRepository, f SalesFilter, _, _ time.Time, p repositories.PageRequest) ([]models.Order, int64, error) {
		return r.FindByProduct(ctx, *f.ProductID, p)
	},
	ShapeDateRange: func(ctx context.Context, r repositories.OrderRepository, _ SalesFilter, start, end time.Time, p repositories.PageRequest) ([]models.Order, int64, error) {
		return r.FindByCreatedBetween(ctx, start, end, p)
	},
	ShapeAll: func(ctx context.Context, r repositories.OrderRepository, _ SalesFilter, _, _ time.Time, p repositories.PageRequest) ([]models.Order, int64, error) {
		return r.FindAll(ctx, p)
	},
}

// SalesHistoryService answers the admin sales-history view.
type SalesHistoryService struct {
	orderRepo repositories.OrderRepository
	log       *zap.Logger
}

// NewSalesHistoryService creates a new SalesHistoryService.
func NewSalesHistoryService(orderRepo repositories.OrderRepository) *SalesHistoryService {
	return &SalesHistoryService{
		orderRepo: orderRepo,
		log:       logger.L().Named("sales"),
	}
}

// GetSalesHistory returns one page of orders matching f, newest first.
func (s *SalesHistoryService) GetSalesHistory(ctx context.Context, page, size int, f SalesFilter) (*dto.Page[dto.Order], error) {
	if page < 0 {
		return nil, fmt.Errorf("page must not be negative, got %d: %w", page, apperr.ErrInvalidInput)
	}
	if size < 1 {
		return nil, fmt.Errorf("size must be at least 1, got %d: %w", size, apperr.ErrInvalidInput)
	}
	if page > math.MaxInt/size {
		return nil, fmt.Errorf("page %d is out of range for size %d: %w", page, size, apperr.ErrInvalidInput)
	}

	shape := ResolveShape(f)
	if f.CustomerID != nil && f.ProductID != nil {
		s.log.Warn("customer filter ignored because a product filter is set",
			zap.Uint("customer_id", *f.CustomerID), zap.Uint("product_id", *f.ProductID))
	}

	var start, end time.Time
	if f.HasDateRange() {
		start, end = DayBounds(*f.From, *f.To)
	}

	orders, total, err := salesQueries[shape](ctx, s.orderRepo, f, start, end, repositories.PageRequest{Page: page, Size: size})
	if err != nil {
		return nil, fmt.Errorf("failed to load sales history (%s): %w", shape, err)
	}

	result := dto.NewPage(dto.FromOrders(orders), page, size, total)
	return &result, nil
}
