package api

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summarizer/config"
	"github.com/nijaru/yt-summarizer/middleware"
	"github.com/nijaru/yt-summarizer/services/metadata"
	"github.com/nijaru/yt-summarizer/services/summary"
	"github.com/nijaru/yt-summarizer/services/transcript"
	"github.com/nijaru/yt-summarizer/validation"
)

type Server struct {
	video       *VideoHandler
	summary     *SummaryHandler
	metadata    metadata.Service
	transcripts transcript.Service
	config      *config.Config
	logger      *logrus.Logger
	server      *http.Server
	startTime   time.Time
}

type ServerOption func(*Server)

// NewServer creates a new API server with the provided services and options
func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// WithServices sets up the handlers with the provided services
func WithServices(metadataSvc metadata.Service, transcriptSvc transcript.Service, summarySvc summary.Service) ServerOption {
	return func(s *Server) {
		validator := validation.NewValidator(s.config)
		s.metadata = metadataSvc
		s.transcripts = transcriptSvc
		s.video = NewVideoHandler(metadataSvc, transcriptSvc)
		s.summary = NewSummaryHandler(summarySvc, validator, s.config.MaxBodyBytes)
	}
}

// WithLogger sets a custom logger for the server
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// Handler exposes the full middleware-wrapped route table.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	general := s.rateLimited(s.config.RateLimit.RequestsPerMinute)
	summaries := s.rateLimited(s.config.RateLimit.SummaryPerMinute)

	if s.video != nil {
		mux.Handle("GET /get_video_info", general(s.video.HandleVideoInfo))
		mux.Handle("GET /get_transcript", general(s.video.HandleTranscript))
	}
	if s.summary != nil {
		mux.Handle("POST /generate_summary", summaries(s.summary.HandleGenerateSummary))
		mux.HandleFunc("GET /audio/{filename}", s.summary.HandleAudio)
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /", http.FileServer(http.Dir(s.config.StaticDir)))

	return s.middleware(mux)
}

// rateLimited returns a wrapper giving every route it wraps one shared
// per-client budget.
func (s *Server) rateLimited(perMinute int) func(http.HandlerFunc) http.Handler {
	if !s.config.RateLimit.Enabled || !s.config.Middleware.EnableRateLimit || perMinute <= 0 {
		return func(h http.HandlerFunc) http.Handler { return h }
	}
	limiter := middleware.NewRateLimiter(perMinute, s.config.RateLimit.BurstSize)
	return func(h http.HandlerFunc) http.Handler {
		return limiter.Middleware(h)
	}
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	mw := s.config.Middleware

	var middlewares []func(http.Handler) http.Handler
	if mw.EnableRecover {
		middlewares = append(middlewares, middleware.Recovery(s.logger))
	}
	if mw.EnableRequestID {
		middlewares = append(middlewares, middleware.RequestID())
	}
	if mw.EnableLogger {
		middlewares = append(middlewares, middleware.Logging(s.logger))
	}
	if mw.EnableCORS {
		middlewares = append(middlewares, middleware.CORS(s.config.CORS))
	}
	if mw.EnableTimeout {
		middlewares = append(middlewares, middleware.Timeout(s.config.RequestTimeout))
	}

	return middleware.Chain(handler, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
		if proc := processStats(r.Context()); proc != nil {
			status["process"] = proc
		}

		caches := map[string]interface{}{}
		if s.metadata != nil {
			caches["metadata"] = s.metadata.CacheStats()
		}
		if s.transcripts != nil {
			caches["transcript"] = s.transcripts.CacheStats()
		}
		status["caches"] = caches
	}

	respondJSON(w, r, http.StatusOK, status)
}

// processStats reads OS-level figures for this process. Fields the platform
// cannot report are left out.
func processStats(ctx context.Context) map[string]interface{} {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil
	}

	stats := map[string]interface{}{"pid": p.Pid}
	if memInfo, err := p.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
		stats["rss"] = memInfo.RSS
		stats["vms"] = memInfo.VMS
	}
	if cpuPct, err := p.CPUPercentWithContext(ctx); err == nil {
		stats["cpu_percent"] = cpuPct
	}
	if threads, err := p.NumThreadsWithContext(ctx); err == nil {
		stats["threads"] = threads
	}
	if fds, err := p.NumFDsWithContext(ctx); err == nil {
		stats["open_fds"] = fds
	}
	return stats
}
