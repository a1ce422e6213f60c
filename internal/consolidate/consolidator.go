// Package consolidate implements the multi-source product consolidation
// pipeline: look up a SKU in each source collaborator, resolve field-level
// conflicts by source priority, score the result, and hand back one
// immutable consolidated record per SKU.
package consolidate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/sku"
	"github.com/ridebase/catalog-cli/internal/source"
	"github.com/ridebase/catalog-cli/internal/store"
)

// defaultConcurrency bounds parallel SKU consolidations in a batch, keeping
// pressure off the source collaborators.
const defaultConcurrency = 4

// Consolidator is the single entry point of the pipeline. It holds no state
// between calls beyond its wiring; each consolidation is a pure function of
// the three source inputs at call time.
type Consolidator struct {
	lookups     map[model.Source]source.Lookup
	limiters    map[model.Source]*rate.Limiter
	policy      sku.Policy
	concurrency int
	audit       store.Store // optional: audit trail of consolidations
}

// Option configures a Consolidator.
type Option func(*Consolidator)

// WithConcurrency caps parallel SKU consolidations in ConsolidateBatch.
func WithConcurrency(n int) Option {
	return func(c *Consolidator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRateLimit caps lookups per second against each source collaborator.
func WithRateLimit(perSecond float64) Option {
	return func(c *Consolidator) {
		if perSecond <= 0 {
			return
		}
		for src := range c.lookups {
			c.limiters[src] = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithAuditStore persists every consolidated record to the audit trail. A
// re-consolidation appends a newer record; it never rewrites the old one.
func WithAuditStore(st store.Store) Option {
	return func(c *Consolidator) { c.audit = st }
}

// WithSKUPolicy overrides the SKU normalization policy.
func WithSKUPolicy(p sku.Policy) Option {
	return func(c *Consolidator) { c.policy = p }
}

// New wires a Consolidator over the given source lookups.
func New(lookups []source.Lookup, opts ...Option) *Consolidator {
	c := &Consolidator{
		lookups:     make(map[model.Source]source.Lookup, len(lookups)),
		limiters:    make(map[model.Source]*rate.Limiter),
		policy:      sku.DefaultPolicy,
		concurrency: defaultConcurrency,
	}
	for _, l := range lookups {
		c.lookups[l.Source()] = l
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithOptions applies further options after construction, for callers that
// override config-derived settings with flags.
func (c *Consolidator) WithOptions(opts ...Option) *Consolidator {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consolidate runs the full pipeline for one SKU against the requested
// sources (nil means all wired sources). Returns NoDataFoundError when every
// available source came back empty; an unavailable source is skipped and
// omitted from sources_checked so the confidence score reflects the reduced
// diversity.
func (c *Consolidator) Consolidate(ctx context.Context, rawSKU string, sources []model.Source) (*model.ConsolidatedRecord, error) {
	key, err := c.policy.Normalize(rawSKU)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("sku", key))

	var (
		checked []model.Source
		records []model.SourceRecord
	)
	for _, src := range c.requested(sources) {
		lookup, ok := c.lookups[src]
		if !ok {
			continue
		}

		if limiter := c.limiters[src]; limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		rec, err := lookup.Get(ctx, key)
		if err != nil {
			var unavailable *source.UnavailableError
			if errors.As(err, &unavailable) {
				log.Warn("source unavailable, proceeding without it",
					zap.String("source", string(src)), zap.Error(err))
				continue
			}
			return nil, err
		}

		checked = append(checked, src)
		if rec != nil && len(rec.Fields) > 0 {
			records = append(records, *rec)
		}
	}

	if len(records) == 0 {
		return nil, &NoDataFoundError{SKU: key, SourcesChecked: checked}
	}

	resolution := Resolve(records)
	confidence := ConfidenceScore(len(records), len(resolution.Conflicts), len(resolution.Fields))

	out := &model.ConsolidatedRecord{
		SKU:               key,
		Fields:            resolution.Fields,
		SourcesChecked:    checked,
		Conflicts:         resolution.Conflicts,
		CompletenessScore: CompletenessScore(resolution.Fields),
		ConfidenceScore:   confidence,
		Recommendation:    RecommendationFor(confidence),
		ConsolidatedAt:    time.Now().UTC(),
	}

	if c.audit != nil {
		if err := c.audit.SaveConsolidation(ctx, out); err != nil {
			log.Error("audit store write failed", zap.Error(err))
		}
	}

	log.Info("consolidated",
		zap.Int("sources_with_data", len(records)),
		zap.Int("fields", len(out.Fields)),
		zap.Int("conflicts", len(out.Conflicts)),
		zap.Float64("confidence", out.ConfidenceScore),
		zap.String("recommendation", string(out.Recommendation)),
	)
	return out, nil
}

// BatchItem is one SKU's outcome inside a batch: a record or an error, never
// both.
type BatchItem struct {
	Record *model.ConsolidatedRecord `json:"record,omitempty"`
	Err    error                     `json:"-"`
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Processed      int `json:"processed"`
	Succeeded      int `json:"succeeded"`
	Failed         int `json:"failed"`
	HighConfidence int `json:"high_confidence"`
	NeedsReview    int `json:"needs_review"`
}

// BatchResult maps each input SKU to its outcome.
type BatchResult struct {
	Items   map[string]BatchItem `json:"items"`
	Summary BatchSummary         `json:"summary"`
}

// ConsolidateBatch consolidates every SKU independently with bounded
// concurrency. One SKU's failure never aborts the rest; cancelling the
// context stops dispatching further SKUs.
func (c *Consolidator) ConsolidateBatch(ctx context.Context, skus []string, sources []model.Source) *BatchResult {
	result := &BatchResult{Items: make(map[string]BatchItem, len(skus))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, rawSKU := range skus {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec, err := c.Consolidate(gctx, rawSKU, sources)

			mu.Lock()
			defer mu.Unlock()
			result.Summary.Processed++
			if err != nil {
				result.Items[rawSKU] = BatchItem{Err: err}
				result.Summary.Failed++
				zap.L().Error("batch item failed", zap.String("sku", rawSKU), zap.Error(err))
				return nil // per-SKU isolation
			}
			result.Items[rawSKU] = BatchItem{Record: rec}
			result.Summary.Succeeded++
			if rec.Recommendation == model.RecommendationHigh {
				result.Summary.HighConfidence++
			} else {
				result.Summary.NeedsReview++
			}
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// requested filters the wired sources down to the requested set, preserving
// canonical order so lookups and sources_checked stay deterministic.
func (c *Consolidator) requested(sources []model.Source) []model.Source {
	if len(sources) == 0 {
		return model.AllSources()
	}
	want := make(map[model.Source]bool, len(sources))
	for _, s := range sources {
		want[s] = true
	}
	var out []model.Source
	for _, s := range model.AllSources() {
		if want[s] {
			out = append(out, s)
		}
	}
	return out
}
