package entity

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

type OrderItem struct {
	ProductID    string  `bson:"product_id" json:"product"`
	ProductName  string  `bson:"product_name" json:"name"`
	Image        string  `bson:"image,omitempty" json:"image,omitempty"`
	Quantity     int     `bson:"quantity" json:"qty"`
	PricePerUnit float64 `bson:"price_per_unit" json:"price"`
	TotalPrice   float64 `bson:"total_price" json:"totalPrice"`
}

func NewOrderItem(productID, productName string, quantity int, pricePerUnit float64) (*OrderItem, error) {
	if productID == "" {
		return nil, errors.New("product ID cannot be empty")
	}
	if productName == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if pricePerUnit < 0 {
		return nil, errors.New("price per unit cannot be negative")
	}
	return &OrderItem{
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		TotalPrice:   float64(quantity) * pricePerUnit,
	}, nil
}

type Order struct {
	ID              string      `bson:"_id,omitempty" json:"_id"`
	UserID          string      `bson:"user_id,omitempty" json:"user,omitempty"`
	Email           string      `bson:"email,omitempty" json:"email,omitempty"`
	Items           []OrderItem `bson:"items" json:"orderItems"`
	TotalAmount     float64     `bson:"total_amount" json:"totalPrice"`
	Status          OrderStatus `bson:"status" json:"status"`
	ShippingAddress Address     `bson:"shipping_address,omitempty" json:"shippingAddress"`
	CreatedAt       time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updatedAt"`
	Version         int         `bson:"version" json:"-"`
}

func NewOrder(userID, email string, items []OrderItem, shippingAddr Address) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	now := time.Now().UTC()
	order := &Order{
		UserID:          userID,
		Email:           email,
		Items:           items,
		Status:          StatusPendingPayment,
		ShippingAddress: shippingAddr,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	order.CalculateTotalAmount()
	return order, nil
}

func (o *Order) CalculateTotalAmount() {
	var total float64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	o.TotalAmount = total
}

var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusPaid, StatusCancelled},
	StatusPaid:           {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

func (o *Order) UpdateStatus(newStatus OrderStatus) error {
	if o.Status == newStatus {
		return nil
	}
	allowed, ok := validTransitions[o.Status]
	if !ok {
		return fmt.Errorf("cannot transition from unknown status %s", o.Status)
	}
	if !slices.Contains(allowed, newStatus) {
		return fmt.Errorf("invalid status transition from %s to %s", o.Status, newStatus)
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	o.Version++
	return nil
}
