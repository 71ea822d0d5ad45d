package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/incident-map-service/internal/domain"
	"github.com/couchcryptid/incident-map-service/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

// Extractor reads the full feed.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
}

// Publisher forwards the mappable points of a snapshot downstream.
type Publisher interface {
	Publish(ctx context.Context, points []domain.MapPoint, refreshedAt time.Time) error
}

// Snapshot is the dataset of one successful refresh. It is never mutated
// after being stored.
type Snapshot struct {
	Dataset     domain.Dataset
	RefreshedAt time.Time
}

// Pipeline orchestrates the extract-assemble-publish loop and holds the
// latest snapshot for readers.
type Pipeline struct {
	extractor Extractor
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration

	current atomic.Pointer[Snapshot]
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher enables forwarding of mappable points after each refresh.
func WithPublisher(p Publisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

// WithClock sets the time source used for snapshot timestamps and the
// refresh ticker.
func WithClock(c clockwork.Clock) Option {
	return func(pl *Pipeline) { pl.clock = c }
}

// New creates a Pipeline that refreshes every interval.
func New(e Extractor, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: e,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
		interval:  interval,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Snapshot returns the latest snapshot, or false before the first refresh.
func (p *Pipeline) Snapshot() (*Snapshot, bool) {
	s := p.current.Load()
	return s, s != nil
}

// CheckReadiness returns nil once a snapshot is available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.current.Load() == nil {
		return errors.New("feed has not been loaded yet")
	}
	return nil
}

// Run refreshes immediately and then on every tick until the context is
// cancelled. Failed refreshes are retried with exponential backoff; the
// previous snapshot stays in place meanwhile.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		if err := p.RefreshOnce(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, p.clock, backoff) {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			backoff = sharedretry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		if !sleepWithContext(ctx, p.clock, p.interval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RefreshOnce runs a single extract-assemble-publish cycle and swaps in the
// new snapshot. Publish failures are logged and counted but do not keep the
// snapshot from being stored.
func (p *Pipeline) RefreshOnce(ctx context.Context) error {
	start := time.Now()

	records, err := p.extractor.Extract(ctx)
	if err != nil {
		p.metrics.RefreshErrors.Inc()
		return err
	}
	p.metrics.RecordsAssembled.Add(float64(len(records)))

	ds := domain.Assemble(records)
	p.recordRejections(ds.Unmappable)

	snap := &Snapshot{Dataset: ds, RefreshedAt: p.clock.Now()}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, ds.Mappable, snap.RefreshedAt); err != nil {
			p.metrics.PublishErrors.Inc()
			p.logger.Error("publish failed", "error", err, "points", len(ds.Mappable))
		} else {
			p.metrics.PointsPublished.Add(float64(len(ds.Mappable)))
		}
	}

	p.current.Store(snap)
	p.metrics.MappableRecords.Set(float64(len(ds.Mappable)))
	p.metrics.UnmappableRecords.Set(float64(len(ds.Unmappable)))
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("feed refreshed",
		"records", len(records),
		"mappable", len(ds.Mappable),
		"unmappable", len(ds.Unmappable),
	)
	return nil
}

// recordRejections counts and logs every failing coordinate field.
func (p *Pipeline) recordRejections(rejected []domain.RejectedRecord) {
	for _, r := range rejected {
		if r.LatitudeError != nil {
			p.metrics.DecodeFailures.WithLabelValues(domain.FieldLatitude, reasonLabel(r.LatitudeError)).Inc()
		}
		if r.LongitudeError != nil {
			p.metrics.DecodeFailures.WithLabelValues(domain.FieldLongitude, reasonLabel(r.LongitudeError)).Inc()
		}
		p.logger.Debug("record not mappable", "row", r.Row, "address", r.Address, "reasons", r.Reasons())
	}
}

func reasonLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingValue):
		return "missing"
	case errors.Is(err, domain.ErrInsufficientPrecision):
		return "precision"
	default:
		return "unparseable"
	}
}

// sleepWithContext mirrors sharedretry.SleepWithContext on an injectable clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
