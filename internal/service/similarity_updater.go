package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/config"
	"github.com/pageza/recipify/backend/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const similarityBreakerName = "similarity-updater"

// SimilarityUpdateService turns a positive review into co-review edges
// between the reviewed recipe and the reviewer's other recent favourites.
type SimilarityUpdateService struct {
	edges      EdgeWriter
	candidates CandidateSource
	cache      RelatedCache
	cfg        config.SimilarityConfig
	breaker    *gobreaker.CircuitBreaker[int]
	log        *logrus.Logger
}

// NewSimilarityUpdateService creates a SimilarityUpdateService. cache may be nil.
func NewSimilarityUpdateService(edges EdgeWriter, candidates CandidateSource, cache RelatedCache, cfg config.SimilarityConfig, log *logrus.Logger) *SimilarityUpdateService {
	s := &SimilarityUpdateService{
		edges:      edges,
		candidates: candidates,
		cache:      cache,
		cfg:        cfg,
		log:        log,
	}

	s.breaker = gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        similarityBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Similarity circuit breaker state change")
		},
	})

	return s
}

// OnReviewCreated applies similarity updates for a newly created review.
// Ratings below the positive threshold are ignored. Failures are logged,
// counted and swallowed so the review write always succeeds.
func (s *SimilarityUpdateService) OnReviewCreated(ctx context.Context, reviewerID, recipeID uuid.UUID, rating int) {
	if rating < s.cfg.PositiveThreshold {
		return
	}

	start := time.Now()
	defer func() {
		metrics.SimilarityUpdateDuration.Observe(time.Since(start).Seconds())
	}()

	// The update outlives a client disconnect but not its own budget.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.UpdateTimeout)
	defer cancel()

	entry := s.log.WithFields(logrus.Fields{
		"reviewer_id": reviewerID,
		"recipe_id":   recipeID,
		"rating":      rating,
	})

	n, err := s.breaker.Execute(func() (int, error) {
		return s.apply(ctx, reviewerID, recipeID)
	})
	if err != nil {
		reason := failureReason(ctx, err)
		metrics.SimilarityUpdateFailures.WithLabelValues(reason).Inc()
		entry.WithError(err).WithField("reason", reason).Warn("Similarity update failed")
		return
	}

	entry.WithField("edges", n).Debug("Similarity updated")
}

// apply upserts one edge per candidate and returns how many succeeded. It
// keeps going past individual failures and reports them together.
func (s *SimilarityUpdateService) apply(ctx context.Context, reviewerID, recipeID uuid.UUID) (int, error) {
	candidates, err := s.candidates.RecentPositiveRecipeIDs(ctx, reviewerID, s.cfg.PositiveThreshold, recipeID, s.cfg.CandidateCap)
	if err != nil {
		return 0, fmt.Errorf("loading candidates: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	var (
		errs    []error
		touched = []uuid.UUID{recipeID}
	)
	for _, other := range candidates {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, _, err := s.edges.Upsert(ctx, recipeID, other); err != nil {
			errs = append(errs, err)
			continue
		}
		touched = append(touched, other)
	}

	if len(touched) > 1 && s.cache != nil {
		if err := s.cache.Invalidate(ctx, touched...); err != nil {
			s.log.WithError(err).Warn("Failed to invalidate related cache")
		}
	}

	return len(touched) - 1, errors.Join(errs...)
}

func failureReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	default:
		return "store"
	}
}

// BreakerState reports the circuit breaker state, for health reporting.
func (s *SimilarityUpdateService) BreakerState() string {
	return s.breaker.State().String()
}
