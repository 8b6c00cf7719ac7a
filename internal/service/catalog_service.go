package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vaibhavvatsbhartiya/storefront/internal/adapter/nats"
	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/metrics"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultProductCacheTTL = 5 * time.Minute
)

// ImageStorage stores product images and returns a public URL.
type ImageStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

type CreateProductParams struct {
	Name        string
	Price       float64
	Image       string
	Description string
}

type ProductEvent struct {
	ProductID  string    `json:"productId"`
	Name       string    `json:"name,omitempty"`
	Price      float64   `json:"price,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type CatalogService interface {
	List(ctx context.Context) ([]entity.Product, error)
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Create(ctx context.Context, params CreateProductParams) (*entity.Product, error)
	Update(ctx context.Context, productID string, params repository.UpdateProductParams) (*entity.Product, error)
	Delete(ctx context.Context, productID string) error
	AttachImage(ctx context.Context, productID, fileName string, data []byte) (*entity.Product, error)
}

type CatalogServiceConfig struct {
	ProductCacheTTL time.Duration
}

type catalogService struct {
	productRepo  repository.ProductRepository
	productCache repository.ProductDetailCache
	storage      ImageStorage
	msgPublisher nats.MessagePublisher
	metrics      *metrics.Manager
	log          logger.Logger
	cacheTTL     time.Duration
}

// NewCatalogService builds the product catalog. productCache and storage may
// be nil: reads then always hit the repository and AttachImage returns
// ErrStorageDisabled.
func NewCatalogService(
	productRepo repository.ProductRepository,
	productCache repository.ProductDetailCache,
	storage ImageStorage,
	msgPublisher nats.MessagePublisher,
	m *metrics.Manager,
	log logger.Logger,
	cfg CatalogServiceConfig,
) CatalogService {
	cacheTTL := cfg.ProductCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultProductCacheTTL
	}
	if msgPublisher == nil {
		msgPublisher = nats.NewNoopPublisher()
	}
	return &catalogService{
		productRepo:  productRepo,
		productCache: productCache,
		storage:      storage,
		msgPublisher: msgPublisher,
		metrics:      m,
		log:          log,
		cacheTTL:     cacheTTL,
	}
}

func (s *catalogService) List(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.log.Errorf("Failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) Get(ctx context.Context, productID string) (*entity.Product, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.String("product.id", productID)))
	defer span.End()

	if s.productCache != nil {
		cached, err := s.productCache.Get(ctx, productID)
		switch {
		case err == nil && cached != nil:
			s.metrics.ObserveCacheLookup("hit")
			s.log.Debugf("Product %s found in cache", productID)
			return cached, nil
		case errors.Is(err, repository.ErrNotFound):
			s.metrics.ObserveCacheLookup("miss")
		default:
			s.metrics.ObserveCacheLookup("error")
			s.log.Warnf("Error getting product %s from cache: %v. Falling back to repository.", productID, err)
		}
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.log.Errorf("Failed to get product %s: %v", productID, err)
		span.RecordError(err)
		return nil, fmt.Errorf("could not get product: %w", err)
	}

	if s.productCache != nil {
		if err := s.productCache.Set(ctx, product, s.cacheTTL); err != nil {
			s.log.Warnf("Failed to set product %s to cache: %v", productID, err)
		}
	}
	return product, nil
}

func (s *catalogService) Create(ctx context.Context, params CreateProductParams) (*entity.Product, error) {
	product, err := entity.NewProduct(params.Name, params.Price, params.Image, params.Description)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.productRepo.Create(ctx, product)
	if err != nil {
		s.log.Errorf("Failed to create product %q: %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	product.ID = id
	s.log.Infof("Product created: ID=%s, Name=%s", product.ID, product.Name)

	s.publish(ctx, nats.SubjectProductCreated, product)
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, productID string, params repository.UpdateProductParams) (*entity.Product, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: product name cannot be empty", ErrInvalidInput)
		}
		params.Name = &name
	}
	if params.Price != nil && *params.Price < 0 {
		return nil, fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}

	product, err := s.productRepo.Update(ctx, productID, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.log.Errorf("Failed to update product %s: %v", productID, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	s.invalidate(ctx, productID)
	s.publish(ctx, nats.SubjectProductUpdated, product)
	return product, nil
}

func (s *catalogService) Delete(ctx context.Context, productID string) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		s.log.Errorf("Failed to delete product %s: %v", productID, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	s.log.Infof("Product deleted: ID=%s", productID)

	s.invalidate(ctx, productID)
	s.publish(ctx, nats.SubjectProductDeleted, &entity.Product{ID: productID})
	return nil
}

func (s *catalogService) AttachImage(ctx context.Context, productID, fileName string, data []byte) (*entity.Product, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("could not get product: %w", err)
	}

	url, err := s.storage.Upload(ctx, fileName, data)
	if err != nil {
		s.log.Errorf("Failed to upload image for product %s: %v", productID, err)
		return nil, fmt.Errorf("could not upload image: %w", err)
	}

	return s.Update(ctx, productID, repository.UpdateProductParams{Image: &url})
}

func (s *catalogService) invalidate(ctx context.Context, productID string) {
	if s.productCache == nil {
		return
	}
	if err := s.productCache.Delete(ctx, productID); err != nil {
		s.log.Warnf("Failed to invalidate cached product %s: %v", productID, err)
	}
}

func (s *catalogService) publish(ctx context.Context, subject string, product *entity.Product) {
	event := ProductEvent{
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.msgPublisher.Publish(ctx, subject, event); err != nil {
		s.log.Warnf("Failed to publish %s for product %s: %v", subject, product.ID, err)
	}
}
