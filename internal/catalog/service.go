package catalog

import (
	"context"
	"errors"
	"sync"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/models"
)

// Service memoizes barcode lookups for the process lifetime. Only positive
// results are cached, so a barcode missing from the catalog today can still
// resolve after the catalog is updated. Lookup failures are absorbed and
// reported as "no data".
type Service interface {
	Lookup(ctx context.Context, barcode string, useCache bool) *models.ProductMetadata
	Clear()
}

type service struct {
	client Client

	mu    sync.RWMutex
	cache map[string]*models.ProductMetadata
}

func NewService(client Client) Service {
	return &service{
		client: client,
		cache:  make(map[string]*models.ProductMetadata),
	}
}

func (s *service) Lookup(ctx context.Context, barcode string, useCache bool) *models.ProductMetadata {
	if useCache {
		s.mu.RLock()
		cached, ok := s.cache[barcode]
		s.mu.RUnlock()
		if ok {
			log.Debugf(ctx, "Using cached result for barcode %s", barcode)
			return cached
		}
	}

	meta, err := s.client.Lookup(ctx, barcode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Debugf(ctx, "No catalog entry for barcode %s", barcode)
		} else {
			log.Errorw(ctx, "Catalog lookup failed", "barcode", barcode, "error", err)
		}
		return nil
	}

	if useCache {
		s.mu.Lock()
		s.cache[barcode] = meta
		s.mu.Unlock()
	}
	return meta
}

func (s *service) Clear() {
	s.mu.Lock()
	s.cache = make(map[string]*models.ProductMetadata)
	s.mu.Unlock()
}
