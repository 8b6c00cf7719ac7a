package repository

import (
	"context"

	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
)

type UpdateProductParams struct {
	Name        *string
	Price       *float64
	Image       *string
	Description *string
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) (string, error)
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
	Update(ctx context.Context, productID string, params UpdateProductParams) (*entity.Product, error)
	Delete(ctx context.Context, productID string) error
}
