package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vaibhavvatsbhartiya/storefront/internal/adapter/email"
	"github.com/vaibhavvatsbhartiya/storefront/internal/adapter/nats"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/metrics"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PlaceOrderParams struct {
	UserID          string
	Email           string
	ShippingAddress entity.Address
}

type OrderCreatedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId,omitempty"`
	TotalAmount float64   `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, params PlaceOrderParams, items []cart.LineItem) (*entity.Order, error)
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) (*repository.ListOrdersResult, error)
	Receipt(ctx context.Context, orderID string) ([]byte, string, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	userRepo     repository.UserRepository
	catalog      CatalogService
	msgPublisher nats.MessagePublisher
	emailSender  email.EmailSender
	metrics      *metrics.Manager
	log          logger.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	catalog CatalogService,
	msgPublisher nats.MessagePublisher,
	emailSender email.EmailSender,
	m *metrics.Manager,
	log logger.Logger,
) OrderService {
	if msgPublisher == nil {
		msgPublisher = nats.NewNoopPublisher()
	}
	if emailSender == nil {
		emailSender = email.NewNoopSender(log)
	}
	return &orderService{
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		catalog:      catalog,
		msgPublisher: msgPublisher,
		emailSender:  emailSender,
		metrics:      m,
		log:          log,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, params PlaceOrderParams, items []cart.LineItem) (*entity.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(attribute.Int("cart.lines", len(items))))
	defer span.End()

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	emailAddr := strings.TrimSpace(params.Email)
	if params.UserID != "" {
		user, err := s.userRepo.GetByID(ctx, params.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown user %s", ErrInvalidInput, params.UserID)
			}
			return nil, fmt.Errorf("could not get user: %w", err)
		}
		if emailAddr == "" {
			emailAddr = user.Email
		}
	}

	orderItems := make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := s.catalog.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductID)
			}
			return nil, fmt.Errorf("could not resolve product %s: %w", item.ProductID, err)
		}
		orderItem, err := entity.NewOrderItem(product.ID, product.Name, item.Quantity, product.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		orderItem.Image = product.Image
		orderItems = append(orderItems, *orderItem)
	}

	order, err := entity.NewOrder(params.UserID, emailAddr, orderItems, params.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	orderID, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		s.log.Errorf("Failed to create order for user %s: %v", params.UserID, err)
		span.RecordError(err)
		return nil, fmt.Errorf("could not create order: %w", err)
	}
	order.ID = orderID
	s.metrics.IncOrdersPlaced()
	s.log.Infof("Order placed: ID=%s, UserID=%s, Total=%.2f", order.ID, order.UserID, order.TotalAmount)

	event := OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	}
	if err := s.msgPublisher.Publish(ctx, nats.SubjectOrderCreated, event); err != nil {
		s.log.Warnf("Failed to publish %s for order %s: %v", nats.SubjectOrderCreated, order.ID, err)
	}

	if order.Email != "" {
		subject := fmt.Sprintf("Order %s confirmed", order.ID)
		if err := s.emailSender.Send(ctx, []string{order.Email}, subject, "", renderReceipt(order)); err != nil {
			s.log.Warnf("Failed to send confirmation for order %s: %v", order.ID, err)
		}
	}

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.log.Errorf("Failed to get order %s: %v", orderID, err)
		return nil, fmt.Errorf("could not get order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID string, page, pageSize int) (*repository.ListOrdersResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result, err := s.orderRepo.List(ctx, repository.ListOrdersParams{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.log.Errorf("Failed to list orders for user %q: %v", userID, err)
		return nil, fmt.Errorf("could not list orders: %w", err)
	}
	return result, nil
}

func (s *orderService) Receipt(ctx context.Context, orderID string) ([]byte, string, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	fileName := fmt.Sprintf("receipt_%s.txt", order.ID)
	return []byte(renderReceipt(order)), fileName, nil
}

func renderReceipt(order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order ID: %s\n", order.ID)
	if order.UserID != "" {
		fmt.Fprintf(&b, "User ID: %s\n", order.UserID)
	}
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "Placed: %s\n\nItems:\n", order.CreatedAt.Format(time.RFC1123))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s (x%d) @ %.2f = %.2f\n", item.ProductName, item.Quantity, item.PricePerUnit, item.TotalPrice)
	}
	fmt.Fprintf(&b, "\nTotal Amount: %.2f\n", order.TotalAmount)
	return b.String()
}
