package project

import (
	"context"
	"fmt"
	"time"

	"assetgraph/internal/change"
	"assetgraph/internal/graph"

	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// ReportFunc receives the outcome of every cycle a watcher runs.
type ReportFunc func(batch change.Batch, report *graph.Report)

// Watcher runs a cycle whenever the asset tree has been quiet for the
// debounce interval after a change.
type Watcher struct {
	project   *Project
	collector *change.Collector
	debounce  time.Duration
}

// NewWatcher starts collecting changes below the asset directory.
func (p *Project) NewWatcher(ctx context.Context) (*Watcher, error) {
	collector, err := change.NewCollector(p.Config.Project.Root, p.Config.Project.AssetsDir, p.Index, p.Logger.Named("collector"))
	if err != nil {
		return nil, err
	}
	if err := collector.Start(ctx); err != nil {
		collector.Close()
		return nil, fmt.Errorf("starting collector: %w", err)
	}

	debounce := time.Duration(p.Config.Watch.Debounce)
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{project: p, collector: collector, debounce: debounce}, nil
}

// Run blocks until ctx is done. Cycles never overlap.
func (w *Watcher) Run(ctx context.Context, sink graph.Sink, onReport ReportFunc) error {
	defer w.collector.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.collector.Changed():
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := w.collector.Drain()
			if batch.IsEmpty() {
				continue
			}

			report, err := w.project.Runner.Cycle(ctx, &batch, sink)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.project.Logger.Error("cycle failed", zap.Error(err))
				continue
			}
			if onReport != nil {
				onReport(batch, report)
			}
		}
	}
}
