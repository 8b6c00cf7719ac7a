package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
)

func TestCartService_Quote_TotalsAvailableLines(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("Get", mock.Anything, "p1").Return(&entity.Product{ID: "p1", Name: "Airpods", Price: 89.99}, nil).Once()
	catalog.On("Get", mock.Anything, "p2").Return(&entity.Product{ID: "p2", Name: "Mouse", Price: 10}, nil).Once()
	svc := NewCartService(catalog, logger.NewNop(), CartServiceConfig{QuoteWorkers: 2})

	quote, err := svc.Quote(context.Background(), []cart.LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	})

	require.NoError(t, err)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, "p1", quote.Items[0].ProductID)
	assert.Equal(t, "p2", quote.Items[1].ProductID)
	assert.InDelta(t, 179.98, quote.Items[0].LineTotal, 1e-9)
	assert.InDelta(t, 30.0, quote.Items[1].LineTotal, 1e-9)
	assert.InDelta(t, 209.98, quote.Total, 1e-9)
	assert.Equal(t, 5, quote.ItemCount)
	catalog.AssertExpectations(t)
}

func TestCartService_Quote_MissingProductIsUnavailable(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("Get", mock.Anything, "p1").Return(&entity.Product{ID: "p1", Name: "Airpods", Price: 50}, nil).Once()
	catalog.On("Get", mock.Anything, "gone").Return(nil, repository.ErrNotFound).Once()
	svc := NewCartService(catalog, logger.NewNop(), CartServiceConfig{})

	quote, err := svc.Quote(context.Background(), []cart.LineItem{
		{ProductID: "gone", Quantity: 4},
		{ProductID: "p1", Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, quote.Items, 2)
	assert.False(t, quote.Items[0].Available)
	assert.Equal(t, 4, quote.Items[0].Quantity)
	assert.Zero(t, quote.Items[0].LineTotal)
	assert.True(t, quote.Items[1].Available)
	assert.Equal(t, 50.0, quote.Total)
}

func TestCartService_Quote_Empty(t *testing.T) {
	svc := NewCartService(new(MockCatalogService), logger.NewNop(), CartServiceConfig{})

	quote, err := svc.Quote(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, quote.Items)
	assert.Zero(t, quote.Total)
}

func TestCartService_Quote_RepositoryFailure(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("Get", mock.Anything, "p1").Return(nil, errors.New("mongo down")).Once()
	svc := NewCartService(catalog, logger.NewNop(), CartServiceConfig{})

	_, err := svc.Quote(context.Background(), []cart.LineItem{{ProductID: "p1", Quantity: 1}})

	assert.Error(t, err)
}
