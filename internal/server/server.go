// Package server wires configuration, storage and services into the HTTP
// server and the background similarity pruner.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipify/backend/config"
	"github.com/pageza/recipify/backend/internal/api"
	"github.com/pageza/recipify/backend/internal/cache"
	"github.com/pageza/recipify/backend/internal/middleware"
	"github.com/pageza/recipify/backend/internal/router"
	"github.com/pageza/recipify/backend/internal/service"
	"github.com/pageza/recipify/backend/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	log    *logrus.Logger
	router http.Handler
	http   *http.Server
	pruner *service.SimilarityPruner
}

// New builds the server. redisClient may be nil, which disables the related
// cache and the review rate limit.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *Server {
	base := store.NewBase(db, log)
	edges := store.NewSimilarityStore(base, cfg.Similarity.StalenessWindow)
	recipes := store.NewRecipeStore(base)
	reviews := store.NewReviewStore(base)
	social := store.NewSocialStore(base)

	var related service.RelatedCache
	if c := cache.NewRelatedCache(redisClient, cfg.Similarity.CacheTTL); c.Enabled() {
		related = c
	}

	updater := service.NewSimilarityUpdateService(edges, reviews, related, cfg.Similarity, log)
	query := service.NewSimilarityQueryService(edges, related, log)

	handler := router.SetupRouter(cfg.CORSOrigins, api.Deps{
		Log:           log,
		DB:            db,
		Redis:         redisClient,
		Tokens:        service.NewTokenService(social, cfg.JWTSecret),
		Recipes:       service.NewRecipeService(recipes, query, query, log),
		Reviews:       service.NewReviewService(reviews, recipes, updater, log),
		Social:        service.NewSocialService(social, recipes),
		Feed:          service.NewFeedService(recipes, reviews, social, query, cfg.Feed, cfg.Similarity.PositiveThreshold, log),
		ReviewLimiter: middleware.NewReviewRateLimiter(redisClient, log),
	})

	return &Server{
		cfg:    cfg,
		log:    log,
		router: handler,
		pruner: service.NewSimilarityPruner(edges, cfg.Similarity.PruneInterval, cfg.Similarity.PruneBatchSize, log),
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP and runs the pruner until ctx is cancelled, then shuts
// both down gracefully.
func (s *Server) Run(ctx context.Context) error {
	pruneCtx, stopPruner := context.WithCancel(ctx)
	pruned := make(chan struct{})
	go func() {
		defer close(pruned)
		s.pruner.Run(pruneCtx)
	}()
	defer func() {
		stopPruner()
		<-pruned
	}()

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.http.Addr).Info("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
