package service

import (
	"context"
	"time"

	"github.com/pageza/recipify/backend/internal/metrics"
	"github.com/sirupsen/logrus"
)

// StalePruner deletes stale edges.
type StalePruner interface {
	PruneStale(ctx context.Context, batchSize int) (int64, error)
}

// SimilarityPruner periodically removes edges that outlived the staleness
// window without being reinforced.
type SimilarityPruner struct {
	store     StalePruner
	interval  time.Duration
	batchSize int
	log       *logrus.Logger
}

// NewSimilarityPruner creates a SimilarityPruner.
func NewSimilarityPruner(store StalePruner, interval time.Duration, batchSize int, log *logrus.Logger) *SimilarityPruner {
	return &SimilarityPruner{
		store:     store,
		interval:  interval,
		batchSize: batchSize,
		log:       log,
	}
}

// Run prunes once immediately and then every interval until ctx is cancelled.
func (p *SimilarityPruner) Run(ctx context.Context) {
	p.log.WithField("interval", p.interval.String()).Info("Similarity pruner started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.PruneOnce(ctx)

		select {
		case <-ctx.Done():
			p.log.Info("Similarity pruner stopped")
			return
		case <-ticker.C:
		}
	}
}

// PruneOnce runs a single pruning pass and returns the number of removed edges.
func (p *SimilarityPruner) PruneOnce(ctx context.Context) int64 {
	n, err := p.store.PruneStale(ctx, p.batchSize)
	if n > 0 {
		metrics.SimilarityEdgesPruned.Add(float64(n))
	}
	if err != nil {
		if ctx.Err() == nil {
			p.log.WithError(err).Error("Pruning stale similarity edges failed")
		}
		return n
	}
	if n > 0 {
		p.log.WithField("edges", n).Info("Pruned stale similarity edges")
	}
	return n
}
