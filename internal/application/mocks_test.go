package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) OpenOrders(ctx context.Context, seriesFilter string, limit int) ([]domain.PendingOrder, error) {
	args := m.Called(ctx, seriesFilter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingOrder), args.Error(1)
}

func (m *MockOrderReader) AllOpenOrders(ctx context.Context) ([]domain.PendingOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingOrder), args.Error(1)
}

func (m *MockOrderReader) PendingApprovalOrders(ctx context.Context, limit int) ([]domain.PendingOrder, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingOrder), args.Error(1)
}

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) AllProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogReader) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type MockShelfReader struct {
	mock.Mock
}

func (m *MockShelfReader) AllLocations(ctx context.Context) ([]domain.ShelfLocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShelfLocation), args.Error(1)
}

type MockWorkflowReader struct {
	mock.Mock
}

func (m *MockWorkflowReader) StatesByOrderIDs(ctx context.Context, orderIDs []string) (map[string]domain.WorkflowState, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.WorkflowState), args.Error(1)
}

type MockCustomerReader struct {
	mock.Mock
}

func (m *MockCustomerReader) ActiveCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

type MockActivityReader struct {
	mock.Mock
}

func (m *MockActivityReader) EventsSince(ctx context.Context, since time.Time) ([]domain.CustomerActivityEvent, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustomerActivityEvent), args.Error(1)
}

func (m *MockActivityReader) LastActivityByCustomer(ctx context.Context) (map[string]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

type MockCommerceReader struct {
	mock.Mock
}

func (m *MockCommerceReader) OpenCarts(ctx context.Context) ([]domain.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Cart), args.Error(1)
}

func (m *MockCommerceReader) OrdersSince(ctx context.Context, since time.Time) ([]domain.SalesOrder, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SalesOrder), args.Error(1)
}

type MockCreditReader struct {
	mock.Mock
}

func (m *MockCreditReader) PositionsByCustomerIDs(ctx context.Context, customerIDs []string) (map[string]domain.CreditPosition, error) {
	args := m.Called(ctx, customerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.CreditPosition), args.Error(1)
}

// Fixture helpers

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func rawLine(code string, remaining, reserved, delivered float64) domain.RawOrderLine {
	return domain.RawOrderLine{
		ProductCode:          strPtr(code),
		RemainingQty:         f64Ptr(remaining),
		ReservedQty:          f64Ptr(reserved),
		ReservedDeliveredQty: f64Ptr(delivered),
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
