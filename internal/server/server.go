// Package server exposes recipe matching and the offer catalog over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/logging"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/shopping"
)

// Options wires a Server. Recipes and Offers are required.
type Options struct {
	Recipes     catalog.RecipeSource
	Offers      catalog.OfferSource
	Engine      *match.Engine
	Aggregator  *shopping.Aggregator
	Logger      *slog.Logger
	CORSOrigins []string
	RateLimit   float64
	RateBurst   int
}

// Server handles the HTTP API.
type Server struct {
	recipes    catalog.RecipeSource
	offers     catalog.OfferSource
	engine     *match.Engine
	aggregator *shopping.Aggregator
	logger     *slog.Logger
	limiter    *RateLimiter
	origins    []string
}

// invalidator is implemented by offer sources that cache.
type invalidator interface {
	Invalidate()
}

// New builds a server. Nil engine, aggregator and logger get defaults.
func New(opts Options) *Server {
	s := &Server{
		recipes:    opts.Recipes,
		offers:     opts.Offers,
		engine:     opts.Engine,
		aggregator: opts.Aggregator,
		logger:     opts.Logger,
		limiter:    NewRateLimiter(opts.RateLimit, opts.RateBurst),
		origins:    opts.CORSOrigins,
	}
	if s.engine == nil {
		s.engine = match.NewEngine()
	}
	if s.aggregator == nil {
		s.aggregator = shopping.NewAggregator(s.engine, shopping.PerRecipe)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// Router returns the bare route table.
func (s *Server) Router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", s.health)

	router.GET("/api/recipes", s.listRecipes)
	router.GET("/api/recipes/:id", s.recipeOrView)
	router.POST("/api/recipes/shopping-list", s.shoppingList)

	router.GET("/api/offers", s.listOffers)
	router.GET("/api/offers/stats", s.offerStats)
	router.POST("/api/offers/refresh", s.refreshOffers)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.logger.Error("handler panic", "path", r.URL.Path, "panic", fmt.Sprint(v), "request_id", RequestID(r.Context()))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
	return router
}

// Handler returns the router behind the middleware chain:
// request id, logging, CORS, rate limit.
func (s *Server) Handler() http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(s.limiter.Middleware(s.Router()))

	return requestIDMiddleware(loggingMiddleware(s.logger, corsHandler))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
