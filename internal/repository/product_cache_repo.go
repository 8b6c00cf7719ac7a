package repository

import (
	"context"
	"time"

	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
)

// ProductDetailCache returns ErrNotFound on a cache miss.
type ProductDetailCache interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productID string) error
}
