package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvatsbhartiya/storefront/internal/adapter/nats"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/metrics"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
)

type orderFixture struct {
	orders    *MockOrderRepository
	users     *MockUserRepository
	catalog   *MockCatalogService
	publisher *MockMessagePublisher
	sender    *MockEmailSender
	svc       OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(MockOrderRepository),
		users:     new(MockUserRepository),
		catalog:   new(MockCatalogService),
		publisher: new(MockMessagePublisher),
		sender:    new(MockEmailSender),
	}
	f.svc = NewOrderService(f.orders, f.users, f.catalog, f.publisher, f.sender, metrics.NewManager("test"), logger.NewNop())
	return f
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&entity.User{ID: "u1", Email: "jane@example.com"}, nil).Once()
	f.catalog.On("Get", mock.Anything, "p1").Return(&entity.Product{ID: "p1", Name: "Airpods", Price: 89.99, Image: "/a.jpg"}, nil).Once()
	f.catalog.On("Get", mock.Anything, "p2").Return(&entity.Product{ID: "p2", Name: "Mouse", Price: 10}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.UserID == "u1" && len(o.Items) == 2 && o.Status == entity.StatusPendingPayment
	})).Return("o1", nil).Once()
	f.publisher.On("Publish", mock.Anything, nats.SubjectOrderCreated, mock.MatchedBy(func(e OrderCreatedEvent) bool {
		return e.OrderID == "o1" && e.ItemCount == 2
	})).Return(nil).Once()
	f.sender.On("Send", mock.Anything, []string{"jane@example.com"}, "Order o1 confirmed", "", mock.AnythingOfType("string")).Return(nil).Once()

	order, err := f.svc.PlaceOrder(context.Background(), PlaceOrderParams{UserID: "u1"}, []cart.LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, "jane@example.com", order.Email)
	assert.InDelta(t, 189.98, order.TotalAmount, 1e-9)
	assert.Equal(t, "/a.jpg", order.Items[0].Image)
	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_GuestWithoutEmailSkipsConfirmation(t *testing.T) {
	f := newOrderFixture()
	f.catalog.On("Get", mock.Anything, "p1").Return(&entity.Product{ID: "p1", Name: "Airpods", Price: 1}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return("o2", nil).Once()
	f.publisher.On("Publish", mock.Anything, nats.SubjectOrderCreated, mock.Anything).Return(nil).Once()

	order, err := f.svc.PlaceOrder(context.Background(), PlaceOrderParams{}, []cart.LineItem{{ProductID: "p1", Quantity: 1}})

	require.NoError(t, err)
	assert.Equal(t, "o2", order.ID)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderParams{}, nil)

	assert.ErrorIs(t, err, ErrEmptyCart)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_UnavailableProduct(t *testing.T) {
	f := newOrderFixture()
	f.catalog.On("Get", mock.Anything, "gone").Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderParams{}, []cart.LineItem{{ProductID: "gone", Quantity: 1}})

	assert.ErrorIs(t, err, ErrProductUnavailable)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_UnknownUser(t *testing.T) {
	f := newOrderFixture()
	f.users.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderParams{UserID: "ghost"}, []cart.LineItem{{ProductID: "p1", Quantity: 1}})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderService_PlaceOrder_EmailFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture()
	f.catalog.On("Get", mock.Anything, "p1").Return(&entity.Product{ID: "p1", Name: "Airpods", Price: 1}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return("o3", nil).Once()
	f.publisher.On("Publish", mock.Anything, nats.SubjectOrderCreated, mock.Anything).Return(errors.New("nats down")).Once()
	f.sender.On("Send", mock.Anything, []string{"guest@example.com"}, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	order, err := f.svc.PlaceOrder(context.Background(), PlaceOrderParams{Email: "guest@example.com"}, []cart.LineItem{{ProductID: "p1", Quantity: 1}})

	require.NoError(t, err)
	assert.Equal(t, "o3", order.ID)
}

func TestOrderService_ListByUser_NormalizesPaging(t *testing.T) {
	f := newOrderFixture()
	expected := &repository.ListOrdersResult{CurrentPage: 1, PageSize: defaultPageSize}
	f.orders.On("List", mock.Anything, repository.ListOrdersParams{UserID: "u1", Page: 1, PageSize: defaultPageSize}).Return(expected, nil).Once()
	f.orders.On("List", mock.Anything, repository.ListOrdersParams{UserID: "u1", Page: 3, PageSize: maxPageSize}).Return(expected, nil).Once()

	_, err := f.svc.ListByUser(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	_, err = f.svc.ListByUser(context.Background(), "u1", 3, 1000)
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
}

func TestOrderService_Receipt(t *testing.T) {
	f := newOrderFixture()
	item, err := entity.NewOrderItem("p1", "Airpods", 2, 89.99)
	require.NoError(t, err)
	order, err := entity.NewOrder("u1", "", []entity.OrderItem{*item}, entity.Address{})
	require.NoError(t, err)
	order.ID = "o1"
	f.orders.On("GetByID", mock.Anything, "o1").Return(order, nil).Once()

	body, name, err := f.svc.Receipt(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, "receipt_o1.txt", name)
	assert.Contains(t, string(body), "Order ID: o1")
	assert.Contains(t, string(body), "- Airpods (x2) @ 89.99 = 179.98")
	assert.Contains(t, string(body), "Total Amount: 179.98")
}

func TestOrderService_Receipt_NotFound(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "nope").Return(nil, repository.ErrNotFound).Once()

	_, _, err := f.svc.Receipt(context.Background(), "nope")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}
