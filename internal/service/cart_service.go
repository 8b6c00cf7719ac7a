package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	defaultQuoteWorkers = 8
)

// QuoteLine is a cart line item joined with its catalog data. Lines whose
// product is gone are returned with Available=false and no price.
type QuoteLine struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name,omitempty"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"qty"`
	LineTotal float64 `json:"lineTotal"`
	Available bool    `json:"available"`
}

type Quote struct {
	Items     []QuoteLine `json:"items"`
	ItemCount int         `json:"itemCount"`
	Total     float64     `json:"total"`
}

type CartService interface {
	Quote(ctx context.Context, items []cart.LineItem) (*Quote, error)
}

type CartServiceConfig struct {
	QuoteWorkers int
}

type cartService struct {
	catalog CatalogService
	log     logger.Logger
	workers int
}

func NewCartService(catalog CatalogService, log logger.Logger, cfg CartServiceConfig) CartService {
	workers := cfg.QuoteWorkers
	if workers <= 0 {
		workers = defaultQuoteWorkers
	}
	return &cartService{
		catalog: catalog,
		log:     log,
		workers: workers,
	}
}

func (s *cartService) Quote(ctx context.Context, items []cart.LineItem) (*Quote, error) {
	ctx, span := tracer.Start(ctx, "CartService.Quote", trace.WithAttributes(attribute.Int("cart.lines", len(items))))
	defer span.End()

	lines := make([]QuoteLine, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, item := range items {
		lines[i] = QuoteLine{ProductID: item.ProductID, Quantity: item.Quantity}
		g.Go(func() error {
			product, err := s.catalog.Get(gctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					s.log.Warnf("Quote: product %s in cart no longer exists", item.ProductID)
					return nil
				}
				return fmt.Errorf("get product %s: %w", item.ProductID, err)
			}
			lines[i].Name = product.Name
			lines[i].Image = product.Image
			lines[i].Price = product.Price
			lines[i].LineTotal = product.Price * float64(item.Quantity)
			lines[i].Available = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not quote cart: %w", err)
	}

	quote := &Quote{Items: lines}
	for _, line := range lines {
		quote.ItemCount += line.Quantity
		if line.Available {
			quote.Total += line.LineTotal
		}
	}
	return quote, nil
}
