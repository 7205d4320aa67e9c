package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/persistence/es"
	"github.com/LouYuanbo1/jobcrawler/internal/service/aggregator"
	"github.com/LouYuanbo1/jobcrawler/internal/service/indexer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// 抓取接口会启动浏览器,写超时要比普通接口长得多
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 5 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

type Server struct {
	cfg        *config.Server
	sources    *config.Sources
	aggregator aggregator.Service
	// store 和 indexer 未启用时为 nil,对应接口返回 503
	store   es.JobStore
	indexer indexer.Service
	logger  *zap.Logger
}

func NewServer(
	cfg *config.Server,
	sources *config.Sources,
	agg aggregator.Service,
	store es.JobStore,
	idx indexer.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		cfg:        cfg,
		sources:    sources,
		aggregator: agg,
		store:      store,
		indexer:    idx,
		logger:     logger.Named("http"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleJobs)
			r.Get("/common", s.handleCommonJobs)
			r.Get("/source/{source}", s.handleSourceJobs)
			r.Get("/{id}", s.handleJobDetail)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Post("/crawl", s.handleCrawl)
			r.Get("/stats", s.handleStats)
		})
		r.Get("/stored", s.handleStored)
		r.Get("/stored/similar", s.handleSimilar)
	})
	return r
}

// Run 阻塞直到 ctx 结束或监听失败,ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return eris.Wrapf(err, "httpapi: listen on %s", s.cfg.Addr)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "httpapi: shutdown")
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
