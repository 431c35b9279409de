// Package insights serves filtered aggregates over an immutable snapshot of
// the normalized tables. A reload builds a whole new snapshot and swaps it in
// atomically; readers never see a mix of two loads.
package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"chat-insights/internal/aggregate"
	"chat-insights/internal/filter"
	"chat-insights/internal/models"
	"chat-insights/internal/normalize"
	"chat-insights/internal/observability"
	"chat-insights/internal/source"
)

// Listener is told about every reload outcome.
type Listener interface {
	SnapshotLoaded(ctx context.Context, info models.SnapshotInfo)
	SnapshotFailed(ctx context.Context, err error)
}

// Snapshot is one loaded, normalized state of the source. It is never
// modified after it is published.
type Snapshot struct {
	Tables  models.NormalizedTables
	Options models.FilterOptions
	Info    models.SnapshotInfo
}

type Config struct {
	Location       *time.Location
	IncludePrivate bool
	POCLabels      map[string]string
	TopN           int
}

type Service struct {
	src       source.Source
	cfg       Config
	logger    *zap.Logger
	listeners []Listener

	current  atomic.Pointer[Snapshot]
	reloadMu sync.Mutex
	loggedMu sync.Mutex
	logged   map[normalize.Cause]struct{}
	now      func() time.Time
}

func NewService(src source.Source, cfg Config, logger *zap.Logger, listeners ...Listener) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		src:       src,
		cfg:       cfg,
		logger:    logger.Named("insights"),
		listeners: listeners,
		logged:    map[normalize.Cause]struct{}{},
		now:       time.Now,
	}
}

// LoadNormalized fetches the five tables once and normalizes them. It does
// not touch the published snapshot.
func (s *Service) LoadNormalized(ctx context.Context) (models.NormalizedTables, error) {
	tables, _, _, err := s.load(ctx)
	return tables, err
}

func (s *Service) load(ctx context.Context) (models.NormalizedTables, *normalize.Diagnostics, string, error) {
	ctx, span := observability.Tracer("insights").Start(ctx, "insights.load")
	defer span.End()

	raw, err := s.src.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return models.NormalizedTables{}, nil, "", fmt.Errorf("fetch raw tables: %w", err)
	}
	span.SetAttributes(attribute.String("source.version", raw.Version))

	tables, diag, err := normalize.Normalize(raw, normalize.Options{
		Location:       s.cfg.Location,
		IncludePrivate: s.cfg.IncludePrivate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalize failed")
		return models.NormalizedTables{}, nil, "", fmt.Errorf("normalize: %w", err)
	}
	return tables, diag, raw.Version, nil
}

// Reload builds a new snapshot and publishes it. On failure the previous
// snapshot stays in service. Listeners are notified after the reload lock is
// released, so a slow listener never delays the next reload.
func (s *Service) Reload(ctx context.Context) error {
	info, err := s.reload(ctx)
	if err != nil {
		for _, l := range s.listeners {
			l.SnapshotFailed(ctx, err)
		}
		return err
	}
	for _, l := range s.listeners {
		l.SnapshotLoaded(ctx, info)
	}
	return nil
}

func (s *Service) reload(ctx context.Context) (models.SnapshotInfo, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := s.now()
	tables, diag, version, err := s.load(ctx)
	if err != nil {
		status := "error"
		if errors.Is(err, models.ErrSchema) {
			status = "schema_error"
		}
		observability.ObserveSnapshotLoad(status, time.Since(start))
		s.logger.Error("snapshot load failed", zap.String("status", status), zap.Error(err))
		return models.SnapshotInfo{}, err
	}

	s.reportDiagnostics(diag)
	snap := &Snapshot{
		Tables:  tables,
		Options: ComputeFilterOptions(tables),
		Info: models.SnapshotInfo{
			Version:   version,
			LoadedAt:  s.now().UTC(),
			Rows:      tables.RowCounts(),
			Malformed: diag.Malformed(),
		},
	}
	s.current.Store(snap)

	observability.ObserveSnapshotLoad("ok", time.Since(start))
	observability.SetSnapshotRows(snap.Info.Rows)
	s.logger.Info("snapshot loaded",
		zap.String("version", version),
		zap.Int("groups", len(tables.Groups)),
		zap.Int("messages", len(tables.Messages)),
		zap.Duration("took", time.Since(start)))
	return snap.Info, nil
}

// reportDiagnostics logs each distinct cause the first time it is seen by
// this service and counts every affected row.
func (s *Service) reportDiagnostics(diag *normalize.Diagnostics) {
	s.loggedMu.Lock()
	defer s.loggedMu.Unlock()
	for _, c := range diag.Causes() {
		observability.AddMalformedRows(c.Table, c.Field, c.Reason, c.Rows)
		if _, ok := s.logged[c.Cause]; ok {
			continue
		}
		s.logged[c.Cause] = struct{}{}
		s.logger.Warn("malformed rows",
			zap.String("table", c.Table),
			zap.String("field", c.Field),
			zap.String("reason", c.Reason),
			zap.Int("rows", c.Rows))
	}
}

// Snapshot returns the published snapshot.
func (s *Service) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, models.ErrSnapshotNotLoaded
	}
	return snap, nil
}

func (s *Service) SnapshotInfo() (models.SnapshotInfo, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return models.SnapshotInfo{}, err
	}
	return snap.Info, nil
}

func (s *Service) FilterOptions() (models.FilterOptions, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return models.FilterOptions{}, err
	}
	return snap.Options, nil
}

// FilterAndAggregate filters normalized tables and computes every aggregate
// with the service's POC labels and ranking size.
func (s *Service) FilterAndAggregate(n models.NormalizedTables, p filter.Params) models.AggregateResult {
	return FilterAndAggregate(n, p, aggregate.Options{TopN: s.cfg.TopN, POCLabels: s.cfg.POCLabels})
}

// FilterAndAggregate is the pure core of a query.
func FilterAndAggregate(n models.NormalizedTables, p filter.Params, opts aggregate.Options) models.AggregateResult {
	return aggregate.Compute(filter.Apply(n.Unfiltered(), p), opts)
}

// Query answers one filter against the published snapshot.
func (s *Service) Query(ctx context.Context, p filter.Params) (models.AggregateResult, error) {
	_, span := observability.Tracer("insights").Start(ctx, "insights.query")
	defer span.End()

	snap, err := s.Snapshot()
	if err != nil {
		return models.AggregateResult{}, err
	}
	span.SetAttributes(
		attribute.String("filter.group", p.Group),
		attribute.String("filter.sub_identifier", p.SubIdentifier),
		attribute.String("snapshot.version", snap.Info.Version),
	)
	return s.FilterAndAggregate(snap.Tables, p), nil
}

// Run reloads every interval until ctx ends. A schema error stops the loop
// since retrying cannot fix it; other failures keep the old snapshot and
// wait for the next tick.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Reload(ctx); errors.Is(err, models.ErrSchema) {
				s.logger.Error("stopping refresh after schema error", zap.Error(err))
				return err
			}
		}
	}
}
