// Package engagement turns viewer interactions into additive counter
// updates on content.
package engagement

import (
	"context"
	"time"

	"personafeed/internal/common"
	"personafeed/internal/logger"
	"personafeed/internal/telemetry"
)

// Deltas carries per-counter increments. Nil fields leave the counter alone.
type Deltas struct {
	Views    *int64 `json:"views,omitempty"`
	Likes    *int64 `json:"likes,omitempty"`
	Comments *int64 `json:"comments,omitempty"`
	Shares   *int64 `json:"shares,omitempty"`
}

// Single is a +1 on the counter of et.
func Single(et common.EngagementType) Deltas {
	var d Deltas
	d.Add(et, 1)
	return d
}

func (d *Deltas) Add(et common.EngagementType, n int64) {
	var slot **int64
	switch et {
	case common.EngagementView:
		slot = &d.Views
	case common.EngagementLike:
		slot = &d.Likes
	case common.EngagementComment:
		slot = &d.Comments
	case common.EngagementShare:
		slot = &d.Shares
	default:
		return
	}
	if *slot == nil {
		v := int64(0)
		*slot = &v
	}
	**slot += n
}

// Columns maps present counters to their column names.
func (d Deltas) Columns() map[string]int64 {
	cols := make(map[string]int64, 4)
	for _, c := range []struct {
		name string
		v    *int64
	}{
		{common.EngagementView.Column(), d.Views},
		{common.EngagementLike.Column(), d.Likes},
		{common.EngagementComment.Column(), d.Comments},
		{common.EngagementShare.Column(), d.Shares},
	} {
		if c.v != nil {
			cols[c.name] = *c.v
		}
	}
	return cols
}

// Validate rejects negative increments; counters only grow.
func (d Deltas) Validate() error {
	for col, v := range d.Columns() {
		if v < 0 {
			return common.NewValidationError("%s delta must not be negative", col)
		}
	}
	return nil
}

type MetricsUpdater interface {
	UpdateMetrics(ctx context.Context, contentID int64, d Deltas) error
}

// EventSink receives every applied increment. Implementations must not block
// for long; failures are logged by the caller and otherwise ignored.
type EventSink interface {
	RecordEngagement(ctx context.Context, contentID int64, kind string, delta int64, at time.Time) error
}

type Accumulator struct {
	updater MetricsUpdater
	sink    EventSink
	log     logger.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewAccumulator wires an accumulator. sink may be nil.
func NewAccumulator(updater MetricsUpdater, sink EventSink, log logger.Logger, metrics *telemetry.Metrics) *Accumulator {
	return &Accumulator{
		updater: updater,
		sink:    sink,
		log:     log,
		metrics: metrics,
		now:     time.Now,
	}
}

// Record applies exactly one +1 for et.
func (a *Accumulator) Record(ctx context.Context, contentID int64, et common.EngagementType) error {
	if !et.IsValid() {
		return common.NewInvalidEngagementTypeError(string(et))
	}
	if err := a.updater.UpdateMetrics(ctx, contentID, Single(et)); err != nil {
		return err
	}
	a.observe(ctx, contentID, et, 1)
	return nil
}

// RecordBatch folds events into one additive update. Unknown types reject
// the whole batch before anything is written.
func (a *Accumulator) RecordBatch(ctx context.Context, contentID int64, events []common.EngagementType) error {
	var d Deltas
	counts := make(map[common.EngagementType]int64, 4)
	for _, et := range events {
		if !et.IsValid() {
			return common.NewInvalidEngagementTypeError(string(et))
		}
		d.Add(et, 1)
		counts[et]++
	}
	if len(counts) == 0 {
		return nil
	}
	if err := a.updater.UpdateMetrics(ctx, contentID, d); err != nil {
		return err
	}
	for et, n := range counts {
		a.observe(ctx, contentID, et, n)
	}
	return nil
}

func (a *Accumulator) observe(ctx context.Context, contentID int64, et common.EngagementType, n int64) {
	a.metrics.ObserveEngagement(string(et), n)
	if a.sink == nil {
		return
	}
	if err := a.sink.RecordEngagement(ctx, contentID, string(et), n, a.now()); err != nil {
		a.log.Warn(ctx, "engagement event not logged",
			logger.F("content_id", contentID),
			logger.F("type", string(et)),
			logger.Err(err))
	}
}
