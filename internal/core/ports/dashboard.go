package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// DashboardKind names a dashboard dataset.
type DashboardKind string

const (
	KindMonthly  DashboardKind = "realisasi-bulan"
	KindYearly   DashboardKind = "realisasi-tahun"
	KindPerMonth DashboardKind = "realisasi-perbulan"
	KindArticles DashboardKind = "articles"
	KindRankings DashboardKind = "rankings"
)

// DashboardQuery carries the filters forwarded to the Gin API. Zero Tahun or
// Bulan lets the backend default to the current period.
type DashboardQuery struct {
	Idsatker int `query:"idsatker" validate:"gte=0"`
	Tahun    int `query:"tahun"    validate:"omitempty,gte=2000,lte=2100"`
	Bulan    int `query:"bulan"    validate:"omitempty,gte=1,lte=12"`
}

// Values renders the query string sent upstream.
func (q DashboardQuery) Values() url.Values {
	v := url.Values{}
	v.Set("idsatker", strconv.Itoa(q.Idsatker))
	if q.Tahun > 0 {
		v.Set("tahun", strconv.Itoa(q.Tahun))
	}
	if q.Bulan > 0 {
		v.Set("bulan", strconv.Itoa(q.Bulan))
	}
	return v
}

// Key identifies the query in caches.
func (q DashboardQuery) Key() string {
	return fmt.Sprintf("%d:%d:%d", q.Idsatker, q.Tahun, q.Bulan)
}

// DashboardService fetches Gin API data and reshapes it for the dashboard.
type DashboardService interface {
	MonthlyCards(ctx context.Context, q DashboardQuery) ([]domain.Card, error)
	YearlyCards(ctx context.Context, q DashboardQuery) ([]domain.Card, error)
	Articles(ctx context.Context) ([]domain.Article, error)
	Rankings(ctx context.Context, q DashboardQuery) (json.RawMessage, error)
	Stats(ctx context.Context, q DashboardQuery) (domain.RealisationStats, error)
	// Refresh refetches kind and overwrites its cached snapshot.
	Refresh(ctx context.Context, kind DashboardKind, q DashboardQuery) error
}

// SnapshotCache stores processed dashboard payloads for a limited time.
type SnapshotCache interface {
	// Load returns domain.ErrSnapshotMiss when nothing is cached.
	Load(ctx context.Context, kind DashboardKind, key string, dst any) error
	Store(ctx context.Context, kind DashboardKind, key string, v any, ttl time.Duration) error
}

// RefreshJob asks for one dashboard dataset to be refetched.
type RefreshJob struct {
	Kind  DashboardKind
	Query DashboardQuery
}

// ShardKey groups jobs that must not run concurrently.
func (j RefreshJob) ShardKey() string {
	return string(j.Kind) + "|" + j.Query.Key()
}
