package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/pkg/metrics"
	"github.com/sijagur/dashboard-gateway/pkg/logger"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Refresher warms dashboard snapshots in the background. Jobs are routed to a
// fixed set of workers by hashing kind and query, so one dataset is never
// refreshed by two workers at once.
type Refresher struct {
	workers  []chan ports.RefreshJob
	service  ports.DashboardService
	jobs     []ports.RefreshJob
	interval time.Duration
	log      zerolog.Logger
}

// NewRefresher creates a Refresher with numWorkers sharded workers that
// refetches jobs every interval. If numWorkers <= 0, defaultWorkers is used.
// A non-positive interval disables the ticker; Enqueue still works.
func NewRefresher(numWorkers int, interval time.Duration, jobs []ports.RefreshJob, service ports.DashboardService, log zerolog.Logger) *Refresher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Refresher{
		workers:  make([]chan ports.RefreshJob, numWorkers),
		service:  service,
		jobs:     jobs,
		interval: interval,
		log:      logger.Component(log, "refresher"),
	}
	for i := range r.workers {
		r.workers[i] = make(chan ports.RefreshJob, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines and, when an interval is set, the
// ticker that enqueues the configured jobs. Everything stops when ctx is
// cancelled.
func (r *Refresher) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
	if r.interval > 0 && len(r.jobs) > 0 {
		go r.runTicker(ctx)
	}
}

// Enqueue hands job to its worker without blocking. It reports false when the
// worker's queue is full and the job was dropped.
func (r *Refresher) Enqueue(job ports.RefreshJob) bool {
	idx := r.shardIndex(job.ShardKey())
	select {
	case r.workers[idx] <- job:
		metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(r.workers[idx])))
		return true
	default:
		r.log.Warn().Str("kind", string(job.Kind)).Int("worker_id", idx).Msg("refresh queue full, job dropped")
		return false
	}
}

// EnqueueBatch enqueues jobs in order and returns how many were accepted.
func (r *Refresher) EnqueueBatch(jobs []ports.RefreshJob) int {
	accepted := 0
	for _, j := range jobs {
		if r.Enqueue(j) {
			accepted++
		}
	}
	return accepted
}

// shardIndex maps a shard key deterministically to a worker index.
func (r *Refresher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(r.workers)))
}

func (r *Refresher) runTicker(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.EnqueueBatch(r.jobs)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EnqueueBatch(r.jobs)
		}
	}
}

func (r *Refresher) runWorker(ctx context.Context, id int, ch <-chan ports.RefreshJob) {
	depth := metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := r.service.Refresh(ctx, job.Kind, job.Query); err != nil {
				metrics.RefreshJobsTotal.WithLabelValues(string(job.Kind), "failure").Inc()
				r.log.Error().Err(err).
					Str("kind", string(job.Kind)).
					Int("worker_id", id).
					Msg("dashboard refresh failed")
				continue
			}
			metrics.RefreshJobsTotal.WithLabelValues(string(job.Kind), "success").Inc()
		}
	}
}

// DefaultJobs is the refresh set for one satker: every dashboard dataset for
// the current period.
func DefaultJobs(idsatker int) []ports.RefreshJob {
	q := ports.DashboardQuery{Idsatker: idsatker}
	return []ports.RefreshJob{
		{Kind: ports.KindMonthly, Query: q},
		{Kind: ports.KindYearly, Query: q},
		{Kind: ports.KindPerMonth, Query: q},
		{Kind: ports.KindArticles, Query: q},
		{Kind: ports.KindRankings, Query: q},
	}
}
