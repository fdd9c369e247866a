package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/pkg/metrics"
)

const (
	pathMonthly  = "/realisasi-bulan"
	pathYearly   = "/realisasi-tahun"
	pathPerMonth = "/realisasi-perbulan"
	pathArticles = "/articles"
	pathRankings = "/sijagur/peringkat-kinerja"

	articlesKey = "all"
)

// DashboardService reads dashboard data through the authorized Gin API client
// and reshapes it into view models. Processed results are kept in an optional
// snapshot cache; cache failures never fail a request.
type DashboardService struct {
	api   ports.APICaller
	cache ports.SnapshotCache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewDashboardService wires the service. cache may be nil.
func NewDashboardService(api ports.APICaller, cache ports.SnapshotCache, ttl time.Duration, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		api:   api,
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("component", "dashboard").Logger(),
	}
}

func (s *DashboardService) MonthlyCards(ctx context.Context, q ports.DashboardQuery) ([]domain.Card, error) {
	return cached(ctx, s, ports.KindMonthly, q.Key(), func(ctx context.Context) ([]domain.Card, error) {
		return s.fetchMonthly(ctx, q)
	})
}

func (s *DashboardService) YearlyCards(ctx context.Context, q ports.DashboardQuery) ([]domain.Card, error) {
	return cached(ctx, s, ports.KindYearly, q.Key(), func(ctx context.Context) ([]domain.Card, error) {
		return s.fetchYearly(ctx, q)
	})
}

func (s *DashboardService) Articles(ctx context.Context) ([]domain.Article, error) {
	return cached(ctx, s, ports.KindArticles, articlesKey, s.fetchArticles)
}

func (s *DashboardService) Rankings(ctx context.Context, q ports.DashboardQuery) (json.RawMessage, error) {
	return cached(ctx, s, ports.KindRankings, q.Key(), func(ctx context.Context) (json.RawMessage, error) {
		return s.fetchRankings(ctx, q)
	})
}

func (s *DashboardService) Stats(ctx context.Context, q ports.DashboardQuery) (domain.RealisationStats, error) {
	return cached(ctx, s, ports.KindPerMonth, q.Key(), func(ctx context.Context) (domain.RealisationStats, error) {
		return s.fetchStats(ctx, q)
	})
}

// Refresh refetches kind and overwrites its snapshot, bypassing the cache read.
func (s *DashboardService) Refresh(ctx context.Context, kind ports.DashboardKind, q ports.DashboardQuery) error {
	var (
		v   any
		key = q.Key()
		err error
	)
	switch kind {
	case ports.KindMonthly:
		v, err = s.fetchMonthly(ctx, q)
	case ports.KindYearly:
		v, err = s.fetchYearly(ctx, q)
	case ports.KindPerMonth:
		v, err = s.fetchStats(ctx, q)
	case ports.KindArticles:
		v, err = s.fetchArticles(ctx)
		key = articlesKey
	case ports.KindRankings:
		v, err = s.fetchRankings(ctx, q)
	default:
		return fmt.Errorf("refresh: unknown dashboard kind %q", kind)
	}
	if err != nil {
		return err
	}
	s.store(ctx, kind, key, v)
	return nil
}

func (s *DashboardService) fetchMonthly(ctx context.Context, q ports.DashboardQuery) ([]domain.Card, error) {
	res, err := s.get(ctx, pathMonthly, q)
	if err != nil {
		return nil, err
	}
	return MonthlyCards(res.Body), nil
}

func (s *DashboardService) fetchYearly(ctx context.Context, q ports.DashboardQuery) ([]domain.Card, error) {
	res, err := s.get(ctx, pathYearly, q)
	if err != nil {
		return nil, err
	}
	return YearlyCards(res.Body), nil
}

func (s *DashboardService) fetchStats(ctx context.Context, q ports.DashboardQuery) (domain.RealisationStats, error) {
	res, err := s.get(ctx, pathPerMonth, q)
	if err != nil {
		return domain.RealisationStats{}, err
	}
	return SummariseBudget(res.Body), nil
}

func (s *DashboardService) fetchArticles(ctx context.Context) ([]domain.Article, error) {
	res, err := s.api.Call(ctx, http.MethodGet, pathArticles, nil)
	if err != nil {
		return nil, err
	}
	return ExtractArticles(res.Body), nil
}

func (s *DashboardService) fetchRankings(ctx context.Context, q ports.DashboardQuery) (json.RawMessage, error) {
	res, err := s.get(ctx, pathRankings, q)
	if err != nil {
		return nil, err
	}
	if !json.Valid(res.Body) {
		return nil, errors.New("rankings: backend returned invalid JSON")
	}
	return json.RawMessage(res.Body), nil
}

func (s *DashboardService) get(ctx context.Context, path string, q ports.DashboardQuery) (*ports.Response, error) {
	return s.api.Call(ctx, http.MethodGet, path+"?"+q.Values().Encode(), nil)
}

func (s *DashboardService) load(ctx context.Context, kind ports.DashboardKind, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Load(ctx, kind, key, dst)
	switch {
	case err == nil:
		metrics.SnapshotLookupsTotal.WithLabelValues("hit").Inc()
		return true
	case errors.Is(err, domain.ErrSnapshotMiss):
		metrics.SnapshotLookupsTotal.WithLabelValues("miss").Inc()
	default:
		metrics.SnapshotLookupsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("snapshot read failed, bypassing cache")
	}
	return false
}

func (s *DashboardService) store(ctx context.Context, kind ports.DashboardKind, key string, v any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Store(ctx, kind, key, v, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("snapshot write failed")
	}
}

// cached serves kind/key from the snapshot cache, falling back to fetch and
// storing its result.
func cached[T any](ctx context.Context, s *DashboardService, kind ports.DashboardKind, key string, fetch func(context.Context) (T, error)) (T, error) {
	var out T
	if s.load(ctx, kind, key, &out) {
		return out, nil
	}
	out, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.store(ctx, kind, key, out)
	return out, nil
}
