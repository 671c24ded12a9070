package orders

import (
	"context"
	"testing"

	"shopsphere/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrdersRepo struct {
	stock      map[uint64]int
	orders     map[uint64]domain.Order
	nextID     uint64
	cancelled  []uint64
	statusSets map[uint64]string
}

func newFakeOrdersRepo(stock map[uint64]int) *fakeOrdersRepo {
	return &fakeOrdersRepo{
		stock:      stock,
		orders:     map[uint64]domain.Order{},
		statusSets: map[uint64]string{},
	}
}

func (f *fakeOrdersRepo) CreateWithStockDecrement(_ context.Context, order *domain.Order) error {
	// All-or-nothing, like the transactional repository.
	for _, item := range order.Items {
		if f.stock[item.ProductID] < item.Quantity {
			return domain.NewBadRequest("insufficient stock for product %d", item.ProductID)
		}
	}
	for _, item := range order.Items {
		f.stock[item.ProductID] -= item.Quantity
	}

	f.nextID++
	order.ID = f.nextID
	f.orders[order.ID] = *order
	return nil
}

func (f *fakeOrdersRepo) CancelWithStockRestore(_ context.Context, order *domain.Order) error {
	for _, item := range order.Items {
		f.stock[item.ProductID] += item.Quantity
	}
	stored := f.orders[order.ID]
	stored.Status = domain.OrderStatusCancelled
	f.orders[order.ID] = stored
	f.cancelled = append(f.cancelled, order.ID)
	return nil
}

func (f *fakeOrdersRepo) FindByID(_ context.Context, id uint64) (domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.NewNotFound("order %d not found", id)
	}
	return order, nil
}

func (f *fakeOrdersRepo) FindByUser(_ context.Context, userID uint, _, _ int) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrdersRepo) UpdateStatus(_ context.Context, id uint64, status string) error {
	order, ok := f.orders[id]
	if !ok {
		return domain.NewNotFound("order %d not found", id)
	}
	order.Status = status
	f.orders[id] = order
	f.statusSets[id] = status
	return nil
}

type fakeProductRepo struct {
	products map[uint64]domain.Product
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.NewNotFound("product %d not found", id)
	}
	return p, nil
}

type fakeTracker struct {
	events []string
}

func (f *fakeTracker) Track(_ uint, eventType string, _ uint64, _ map[string]any) {
	f.events = append(f.events, eventType)
}

func newTestOrdersService() (*ordersService, *fakeOrdersRepo, *fakeTracker) {
	repo := newFakeOrdersRepo(map[uint64]int{1: 10, 2: 1})
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Name: "Monstera", Price: 25.5, Stock: 10},
		2: {ID: 2, Name: "Fiddle Leaf", Price: 80, Stock: 1},
	}}
	tracker := &fakeTracker{}

	return NewOrdersService(repo, products, tracker), repo, tracker
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	svc, repo, tracker := newTestOrdersService()

	order, err := svc.CreateOrder(context.Background(), 1, []CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}, "card")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.InDelta(t, 2*25.5+80, order.Total, 1e-9)
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.InDelta(t, 25.5, order.Items[0].PriceEach, 1e-9)
	assert.InDelta(t, 51.0, order.Items[0].Subtotal, 1e-9)

	assert.Equal(t, 8, repo.stock[1])
	assert.Equal(t, 0, repo.stock[2])

	// One purchase event per line.
	assert.Equal(t, []string{domain.EventPurchase, domain.EventPurchase}, tracker.events)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, repo, tracker := newTestOrdersService()

	_, err := svc.CreateOrder(context.Background(), 1, []CartItem{
		{ProductID: 2, Quantity: 5},
	}, "card")
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "BAD_REQUEST", appErr.Code)

	assert.Equal(t, 1, repo.stock[2], "stock untouched on failure")
	assert.Empty(t, tracker.events, "no purchase events on failure")
}

func TestCreateOrderRejectsDuplicateLines(t *testing.T) {
	svc, _, _ := newTestOrdersService()

	_, err := svc.CreateOrder(context.Background(), 1, []CartItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, Quantity: 2},
	}, "card")
	require.Error(t, err)
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	svc, _, _ := newTestOrdersService()

	_, err := svc.CreateOrder(context.Background(), 1, nil, "card")
	require.Error(t, err)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	svc, repo, _ := newTestOrdersService()

	order, err := svc.CreateOrder(context.Background(), 1, []CartItem{{ProductID: 1, Quantity: 3}}, "card")
	require.NoError(t, err)
	assert.Equal(t, 7, repo.stock[1])

	cancelled, err := svc.CancelOrder(context.Background(), order.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, repo.stock[1])

	// Cancelling again is a no-op.
	again, err := svc.CancelOrder(context.Background(), order.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, again.Status)
	assert.Len(t, repo.cancelled, 1)
}

func TestCancelOrderForbiddenForOtherUser(t *testing.T) {
	svc, _, _ := newTestOrdersService()

	order, err := svc.CreateOrder(context.Background(), 1, []CartItem{{ProductID: 1, Quantity: 1}}, "card")
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), order.ID, 2, false)
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	// An admin may cancel on the user's behalf.
	_, err = svc.CancelOrder(context.Background(), order.ID, 2, true)
	require.NoError(t, err)
}

func TestCancelShippedOrderFails(t *testing.T) {
	svc, repo, _ := newTestOrdersService()

	order, err := svc.CreateOrder(context.Background(), 1, []CartItem{{ProductID: 1, Quantity: 1}}, "card")
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), order.ID, 1, false)
	require.Error(t, err)
	assert.Empty(t, repo.cancelled)
}

func TestUpdateOrderStatusValidation(t *testing.T) {
	svc, _, _ := newTestOrdersService()

	order, err := svc.CreateOrder(context.Background(), 1, []CartItem{{ProductID: 1, Quantity: 1}}, "card")
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, "teleported")
	require.Error(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.Error(t, err, "cancellation goes through the cancel flow")

	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)
}
