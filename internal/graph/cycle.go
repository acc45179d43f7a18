package graph

import (
	"context"
	"fmt"

	"assetgraph/internal/change"
	apperrors "assetgraph/internal/errors"
	"assetgraph/internal/loader"
	"assetgraph/internal/node"
	"assetgraph/internal/target"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is the outcome of one (node, target) pair in a cycle.
type Result struct {
	NodeID    string        `json:"node_id"`
	NodeName  string        `json:"node_name"`
	Target    target.Target `json:"target"`
	Revisited bool          `json:"revisited"`
	Assets    int           `json:"assets"`
	Repair    loader.Repair `json:"repair"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
	Warning   string        `json:"warning,omitempty"`
}

// Report collects the results of one cycle.
type Report struct {
	Results []Result `json:"results"`
}

// Revisited counts the pairs that were evaluated.
func (r *Report) Revisited() int {
	n := 0
	for _, res := range r.Results {
		if res.Revisited {
			n++
		}
	}
	return n
}

// Failed returns the pairs whose evaluation failed.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Cycle runs every loader node for every configured target. A nil batch is
// the first run: only pairs without published output are evaluated. An
// evaluation failure aborts only its own pair.
func (r *Runner) Cycle(ctx context.Context, batch *change.Batch, sink Sink) (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.list()
	if err != nil {
		return nil, err
	}

	var normalized change.Batch
	if batch != nil {
		normalized = batch.Normalized()
	}

	report := &Report{}
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		l := r.Loader(rec)
		before := rec.Settings.Clone()
		for _, t := range before.Targets() {
			decide := func(prior node.Groups) bool {
				if batch == nil {
					return prior == nil
				}
				return l.DecideRevisit(&rec.Data, t, normalized, prior)
			}
			res, err := r.runTarget(rec, l, t, decide, sink)
			if err != nil {
				return report, err
			}
			report.Results = append(report.Results, res)
		}

		if repaired(report.Results, rec.Data.ID) {
			rec.Settings = l.Settings()
			if err := r.save(rec); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

func (r *Runner) runTarget(rec *Record, l *loader.Loader, t target.Target, decide func(prior node.Groups) bool, sink Sink) (Result, error) {
	res := Result{
		NodeID:   rec.Data.ID,
		NodeName: rec.Data.Name,
		Target:   t,
	}

	prior, err := r.snapshots.FindAssetGroup(rec.Data.ID, t)
	if err != nil {
		return res, fmt.Errorf("reading snapshot of %s: %w", rec.Data.Name, err)
	}

	res.Repair = l.CheckAndCorrectPath(t)
	if l.LoadPathFor(t) == "" {
		res.Warning = apperrors.EmptyConfiguration(rec.Data.ID, rec.Data.Name).Message
	}

	res.Revisited = decide(prior)
	if !res.Revisited {
		return res, nil
	}

	var published node.Groups
	emit := func(conn *node.Connection, out node.Groups) {
		published = out
		if sink != nil {
			sink(rec, t, conn, out)
		}
	}

	if err := l.Evaluate(&rec.Data, t, nil, rec.Connections, emit); err != nil {
		res.Err = err
		res.Error = err.Error()
		if apperrors.IsType(err, apperrors.ErrorTypeMissingDirectory) {
			r.logger.Error("loader evaluation failed",
				zap.String("node", rec.Data.Name),
				zap.Stringer("target", t),
				zap.Error(err),
			)
			return res, nil
		}
		return res, err
	}

	res.Assets = len(published[node.DefaultOutput])
	if err := r.snapshots.Save(rec.Data.ID, t, published); err != nil {
		return res, fmt.Errorf("saving snapshot of %s: %w", rec.Data.Name, err)
	}
	return res, nil
}

// Evaluate forces an evaluation of node id for t and publishes the result.
func (r *Runner) Evaluate(ctx context.Context, id string, t target.Target, sink Sink) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	rec, err := r.get(id)
	if err != nil {
		return Result{}, err
	}

	l := r.Loader(rec)
	always := func(node.Groups) bool { return true }
	res, err := r.runTarget(rec, l, t, always, sink)
	if err != nil {
		return res, err
	}
	if res.Repair.Kind != loader.RepairNone {
		rec.Settings = l.Settings()
		if err := r.save(rec); err != nil {
			return res, err
		}
	}
	return res, res.Err
}

func repaired(results []Result, nodeID string) bool {
	for _, res := range results {
		if res.NodeID == nodeID && res.Repair.Kind != loader.RepairNone {
			return true
		}
	}
	return false
}

func newConnectionID() string {
	return uuid.New().String()
}
