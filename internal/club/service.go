// Package club implements the treasurer operations of a club workbook. Every
// operation collects the tables it changes on its own refresh log and flushes
// that log once, so each derived view is rebuilt at most once per call.
package club

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.alis.build/alog"

	"clubsheet/internal/notify"
	"clubsheet/internal/observability"
	"clubsheet/internal/refresh"
	"clubsheet/internal/sheet"
	"clubsheet/internal/table"
	"clubsheet/internal/views"
	"clubsheet/pkg/domain"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Option configures a Service.
type Option func(*Service)

// WithMetricsRecorder reports one observation per operation to r.
func WithMetricsRecorder(r observability.MetricsRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithTracer wraps each operation in a span from t.
func WithTracer(t observability.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithNotifier sends payment receipts through n.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source used for new rows.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// Service runs club operations against one workbook.
type Service struct {
	wb       sheet.Workbook
	graph    *refresh.Graph
	metrics  observability.MetricsRecorder
	tracer   observability.Tracer
	notifier notify.Notifier
	clock    Clock
}

// NewService binds the view refresh graph to wb.
func NewService(wb sheet.Workbook, opts ...Option) (*Service, error) {
	s := &Service{
		wb:       wb,
		graph:    refresh.NewGraph(),
		metrics:  observability.Noop{},
		tracer:   observability.Noop{},
		notifier: notify.Log{},
		clock:    ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := views.Register(s.graph, wb); err != nil {
		return nil, fmt.Errorf("register views: %w", err)
	}
	return s, nil
}

// Workbook returns the backing workbook.
func (s *Service) Workbook() sheet.Workbook { return s.wb }

// Graph returns the view refresh graph.
func (s *Service) Graph() *refresh.Graph { return s.graph }

func (s *Service) now() time.Time { return s.clock.Now().UTC() }

func (s *Service) today() *domain.DateValue {
	return domain.Ptr(domain.NewDate(s.now()))
}

// run executes one operation. The refresh log is flushed even when fn fails
// part way, so views match whatever rows were already written.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context, log *refresh.Log) error) (err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	opID := uuid.NewString()
	defer func() {
		span.End(err)
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}()
	alog.Debugf(ctx, "%s [%s] started", op, opID)

	log := s.graph.NewLog()
	opErr := fn(ctx, log)
	dirty := log.Dirty()
	refreshErr := log.Run(ctx)
	if err = errors.Join(opErr, refreshErr); err != nil {
		alog.Warnf(ctx, "%s [%s] failed: %v", op, opID, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	alog.Infof(ctx, "%s [%s] done, refreshed %d tables", op, opID, len(dirty))
	return nil
}

func (s *Service) grid(ctx context.Context, t domain.Table) (sheet.Grid, error) {
	return table.Open(ctx, s.wb, t)
}

func appendRows[E domain.Entry](ctx context.Context, s *Service, log *refresh.Log, entries ...E) ([]domain.IntValue, error) {
	g, err := s.grid(ctx, entries[0].Table())
	if err != nil {
		return nil, err
	}
	ids, err := table.Append(ctx, g, entries)
	if err != nil {
		return nil, err
	}
	log.Include(entries[0].Table())
	return ids, nil
}

func updateRows[E domain.Entry](ctx context.Context, s *Service, log *refresh.Log, entries ...E) error {
	if len(entries) == 0 {
		return nil
	}
	g, err := s.grid(ctx, entries[0].Table())
	if err != nil {
		return err
	}
	// Rows may already be rewritten when Update fails on a later entry.
	log.Include(entries[0].Table())
	return table.Update(ctx, g, entries)
}

func removeRows[E domain.Entry](ctx context.Context, s *Service, log *refresh.Log, entries ...E) error {
	if len(entries) == 0 {
		return nil
	}
	g, err := s.grid(ctx, entries[0].Table())
	if err != nil {
		return err
	}
	log.Include(entries[0].Table())
	return table.Remove(ctx, g, entries)
}

// Initialize creates every table and view grid and writes the club settings.
func (s *Service) Initialize(ctx context.Context, info domain.ClubInfo) error {
	return s.run(ctx, "initialize", func(ctx context.Context, log *refresh.Log) error {
		for _, t := range domain.Tables() {
			if _, err := table.Ensure(ctx, s.wb, t); err != nil {
				return fmt.Errorf("ensure %s: %w", t, err)
			}
		}
		if err := views.Ensure(ctx, s.wb); err != nil {
			return err
		}
		g, err := s.grid(ctx, domain.TableClubInfo)
		if err != nil {
			return err
		}
		if err := table.SetSingleton(ctx, g, info.Row()); err != nil {
			return err
		}
		log.Include(domain.Tables()...)
		return nil
	})
}

// TableEdited is the trigger for a direct edit of one table's grid.
func (s *Service) TableEdited(ctx context.Context, name string) error {
	t, err := domain.ParseTable(name)
	if err != nil {
		return err
	}
	return s.run(ctx, "table_edited", func(_ context.Context, log *refresh.Log) error {
		log.Include(t)
		return nil
	})
}

// RefreshAll rebuilds every view.
func (s *Service) RefreshAll(ctx context.Context) error {
	return s.run(ctx, "refresh_all", func(_ context.Context, log *refresh.Log) error {
		log.Include(domain.Tables()...)
		return nil
	})
}
