package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/sangjo-partner-backend/pkg/catalog"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/redis"
	"github.com/patrickmn/go-cache"
)

const catalogCacheKey = "catalog:products"

// ProductSource 가전 카탈로그 원천 (*catalog.Client)
type ProductSource interface {
	GetProducts(ctx context.Context) ([]catalog.Product, error)
}

type CatalogService interface {
	GetProducts(ctx context.Context) ([]catalog.Product, error)
}

// catalogService 프로세스 메모리 -> redis -> 스크립트 순으로 찾는다
type catalogService struct {
	source ProductSource
	local  *cache.Cache
	ttl    time.Duration
}

func NewCatalogService(source ProductSource, ttl time.Duration) CatalogService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &catalogService{
		source: source,
		local:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
	}
}

func (s *catalogService) GetProducts(ctx context.Context) ([]catalog.Product, error) {
	if cached, ok := s.local.Get(catalogCacheKey); ok {
		return cached.([]catalog.Product), nil
	}

	var products []catalog.Product
	err := redis.GetJSON(ctx, catalogCacheKey, &products)
	if err == nil {
		s.local.SetDefault(catalogCacheKey, products)
		return products, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		logger.Warn("Catalog redis lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if s.source == nil {
		return nil, catalog.ErrNotConfigured
	}

	products, err = s.source.GetProducts(ctx)
	if err != nil {
		logger.Error("Failed to fetch catalog products", err)
		return nil, err
	}
	if products == nil {
		products = []catalog.Product{}
	}

	s.local.SetDefault(catalogCacheKey, products)
	if err := redis.SetJSON(ctx, catalogCacheKey, products, s.ttl); err != nil {
		logger.Warn("Failed to cache catalog in redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Catalog products refreshed", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}
