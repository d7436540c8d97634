package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

const (
	doctorListCacheKey = "doctors:all"
	topDoctorsCacheKey = "doctors:top"
)

// DoctorDirectoryService searches the doctor directory. The full list is
// fetched once and filtered locally; with a cache it is shared across runs.
type DoctorDirectoryService struct {
	api     providers.DoctorAPI
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// DirectoryOption configures a DoctorDirectoryService
type DirectoryOption func(*DoctorDirectoryService)

// WithDirectoryCache stores directory listings in cache for ttl
func WithDirectoryCache(cache providers.CacheProvider, ttl time.Duration) DirectoryOption {
	return func(s *DoctorDirectoryService) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithDirectoryMetrics records cache hits and misses
func WithDirectoryMetrics(m *observability.Metrics) DirectoryOption {
	return func(s *DoctorDirectoryService) { s.metrics = m }
}

// NewDoctorDirectoryService creates a new directory service
func NewDoctorDirectoryService(api providers.DoctorAPI, opts ...DirectoryOption) *DoctorDirectoryService {
	s := &DoctorDirectoryService{api: api}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the doctors matching filter in the requested order
func (s *DoctorDirectoryService) Search(ctx context.Context, filter entities.DoctorFilter) ([]entities.Doctor, error) {
	ctx, span := observability.StartSpan(ctx, "DoctorDirectoryService.Search")
	defer span.End()

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, apperrors.NewValidationError("minimum price is above maximum price")
	}

	all, err := s.cached(ctx, doctorListCacheKey, s.api.ListDoctors)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return filter.Apply(all), nil
}

// Get returns one doctor
func (s *DoctorDirectoryService) Get(ctx context.Context, id string) (*entities.Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("doctor id is required")
	}
	return s.api.GetDoctor(ctx, id)
}

// Top returns the backend's top-rated doctors
func (s *DoctorDirectoryService) Top(ctx context.Context) ([]entities.Doctor, error) {
	return s.cached(ctx, topDoctorsCacheKey, s.api.TopDoctors)
}

// Invalidate drops cached listings
func (s *DoctorDirectoryService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return errors.Join(
		s.cache.Delete(ctx, doctorListCacheKey),
		s.cache.Delete(ctx, topDoctorsCacheKey),
	)
}

// cached serves key from the cache when possible. Cache failures only cost
// a fetch; they are logged and never returned.
func (s *DoctorDirectoryService) cached(ctx context.Context, key string, fetch func(context.Context) ([]entities.Doctor, error)) ([]entities.Doctor, error) {
	if s.cache == nil {
		return fetch(ctx)
	}
	logger := observability.LoggerFromContext(ctx)

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var doctors []entities.Doctor
		if jsonErr := json.Unmarshal(raw, &doctors); jsonErr == nil {
			observability.RecordCacheHit(ctx, s.metrics, key)
			return doctors, nil
		}
		logger.Warn().Str("key", key).Msg("discarding unreadable cache entry")
	case errors.Is(err, providers.ErrCacheMiss):
	default:
		logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	observability.RecordCacheMiss(ctx, s.metrics, key)

	doctors, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(doctors); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return doctors, nil
}
