package repository

import (
	"context"

	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
)

type ListOrdersParams struct {
	UserID   string
	Page     int
	PageSize int
}

type ListOrdersResult struct {
	Orders      []entity.Order
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (string, error)
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error)
}
