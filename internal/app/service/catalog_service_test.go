package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ikkim/sangjo-partner-backend/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductSource struct {
	calls    int
	products []catalog.Product
	err      error
}

func (f *fakeProductSource) GetProducts(ctx context.Context) ([]catalog.Product, error) {
	f.calls++
	return f.products, f.err
}

func TestCatalogService_CachesProducts(t *testing.T) {
	source := &fakeProductSource{products: []catalog.Product{
		{Brand: "LG", Model: "OLED65", Name: "올레드 TV", Tag: "TV"},
	}}
	svc := NewCatalogService(source, time.Minute)

	for i := 0; i < 3; i++ {
		products, err := svc.GetProducts(context.Background())
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "OLED65", products[0].Model)
	}
	assert.Equal(t, 1, source.calls)
}

func TestCatalogService_SourceError(t *testing.T) {
	boom := errors.New("script down")
	source := &fakeProductSource{err: boom}
	svc := NewCatalogService(source, time.Minute)

	_, err := svc.GetProducts(context.Background())
	assert.ErrorIs(t, err, boom)

	// 실패는 캐시하지 않는다
	source.err = nil
	products, err := svc.GetProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Equal(t, 2, source.calls)
}

func TestCatalogService_NotConfigured(t *testing.T) {
	svc := NewCatalogService(nil, 0)
	_, err := svc.GetProducts(context.Background())
	assert.ErrorIs(t, err, catalog.ErrNotConfigured)
}
