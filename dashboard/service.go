// Package dashboard serves the sales views over HTTP and on a schedule.
// Every request builds a fresh dataset; concurrent requests share the
// build that is already in flight.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/servicing/ventas/logging"
	"github.com/servicing/ventas/ventas"
)

// Builder produces a dataset; *ventas.Assembler implements it
type Builder interface {
	Build(ctx context.Context) (*ventas.Dataset, error)
}

// BuildStatus describes the most recent finished build
type BuildStatus struct {
	BuildID  string               `json:"buildId"`
	BuiltAt  time.Time            `json:"construido"`
	Duration string               `json:"duracion"`
	Error    string               `json:"error,omitempty"`
	Months   []ventas.MonthReport `json:"meses"`
}

// Service builds datasets on demand
type Service struct {
	builder       Builder
	metrics       *Metrics
	topExecutives int
	group         singleflight.Group

	mu   sync.RWMutex
	last BuildStatus
}

// NewService creates a service; metrics may be nil
func NewService(builder Builder, metrics *Metrics, topExecutives int) *Service {
	if topExecutives <= 0 {
		topExecutives = ventas.DefaultTopExecutives
	}
	return &Service{
		builder:       builder,
		metrics:       metrics,
		topExecutives: topExecutives,
		last:          BuildStatus{Months: []ventas.MonthReport{}},
	}
}

// TopExecutives returns the ranking size used when a request names none
func (s *Service) TopExecutives() int {
	return s.topExecutives
}

// Dataset returns a freshly built dataset. A caller that arrives while a
// build is running waits for that build instead of starting another one.
// The build itself is not cancelled when ctx is; each month is bounded by
// the assembler timeout.
func (s *Service) Dataset(ctx context.Context) (*ventas.Dataset, error) {
	ch := s.group.DoChan("dataset", func() (interface{}, error) {
		return s.build(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ventas.Dataset), nil
	}
}

func (s *Service) build(ctx context.Context) (*ventas.Dataset, error) {
	buildID := uuid.NewString()
	logger := slog.With("build_id", buildID)
	start := time.Now()

	logger.Info("Building sales dataset")
	ds, err := s.builder.Build(ctx)
	took := time.Since(start)
	s.metrics.ObserveBuild(ds, took, err)

	status := BuildStatus{
		BuildID:  buildID,
		BuiltAt:  start,
		Duration: took.Round(time.Millisecond).String(),
		Months:   []ventas.MonthReport{},
	}
	if err != nil {
		status.Error = err.Error()
		s.setStatus(status)
		logger.Error("Dataset build failed", "error", err, logging.Since(start))
		return nil, err
	}

	status.BuiltAt = ds.BuiltAt
	status.Months = append(status.Months, ds.Report...)
	s.setStatus(status)

	logger.Info("Dataset built", "months", ds.MonthCount(), logging.Since(start))
	return ds, nil
}

func (s *Service) setStatus(status BuildStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = status
}

// Status returns the outcome of the last finished build
func (s *Service) Status() BuildStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.last
	out.Months = append([]ventas.MonthReport{}, s.last.Months...)
	return out
}
