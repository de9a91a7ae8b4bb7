package usecase

import (
	"context"
	"time"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/logging"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/metrics"
)

// sweptAnnotation distinguishes "gateway never responded" from a failure the
// gateway itself reported.
const sweptAnnotation = "reconciliation: gateway never confirmed within staleness window"

type sweeperStore interface {
	ListStale(ctx context.Context, before time.Time) ([]domain.Transaction, error)
	MarkFailedIfStale(ctx context.Context, txnid, errMsg string, now time.Time) (bool, error)
}

// Sweeper bounds the lifetime of transactions the gateway never confirmed.
// The stale set is a snapshot; each transition is a conditional update, so a
// callback that commits between the read and the write simply wins and the
// row is skipped.
type Sweeper struct {
	Store     sweeperStore
	Logger    logging.Logger
	Metrics   *metrics.Counters
	Interval  time.Duration
	Threshold time.Duration
	Now       func() time.Time
}

type SweepReport struct {
	Examined int
	Swept    int
	Skipped  int
	Failed   int
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run drives SweepOnce on a fixed interval until the context is cancelled.
// Overlapping runs are harmless: force-failing an already-failed row is a
// no-op at the store level.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce force-fails every row stuck in INITIATED or PROCESSING past the
// staleness threshold. One bad row never aborts the rest of the batch;
// per-row failures are logged and counted.
func (s *Sweeper) SweepOnce(ctx context.Context) SweepReport {
	s.Metrics.IncSweep()

	now := s.now()
	cutoff := now.Add(-s.Threshold)

	stale, err := s.Store.ListStale(ctx, cutoff)
	if err != nil {
		s.Logger.Error("sweep query failed", map[string]any{"error": err.Error()})
		return SweepReport{}
	}

	report := SweepReport{Examined: len(stale)}

	for _, t := range stale {
		ok, err := s.Store.MarkFailedIfStale(ctx, t.Txnid, sweptAnnotation, now)
		if err != nil {
			report.Failed++
			s.Logger.Error("sweep transition failed", map[string]any{
				"txnid": t.Txnid,
				"error": err.Error(),
			})
			continue
		}
		if !ok {
			// A callback settled the row after our snapshot.
			report.Skipped++
			continue
		}
		report.Swept++
	}

	s.Metrics.AddSwept(report.Swept)
	s.Metrics.AddSweepFailures(report.Failed)

	s.Logger.Info("reconciliation sweep finished", map[string]any{
		"examined": report.Examined,
		"swept":    report.Swept,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	})

	return report
}
