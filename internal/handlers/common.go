package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/boardsnap/boardsnap/internal/analysis"
	"github.com/boardsnap/boardsnap/internal/config"
	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/images"
	"github.com/boardsnap/boardsnap/internal/lichess"
	"github.com/boardsnap/boardsnap/internal/models"
	"github.com/boardsnap/boardsnap/internal/providers"
	"github.com/boardsnap/boardsnap/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analyzer runs one image analysis
type Analyzer interface {
	Analyze(ctx context.Context, image images.Payload, cfg providers.Config) analysis.Result
}

// Options configures the HTTP API
type Options struct {
	Analyzer       Analyzer
	Settings       config.KeyValueStore
	Fetcher        *images.Fetcher
	LichessBaseURL string
	RequestTimeout time.Duration
	Capacity       int
}

type Handler struct {
	store    *storage.AnalysisStore
	analyzer Analyzer
	settings config.KeyValueStore
	fetcher  *images.Fetcher
	links    *lichess.Builder
	timeout  time.Duration
}

type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    apperrors.Kind `json:"kind,omitempty"`
	Message string         `json:"message,omitempty"`
}

func New(opts Options) *Handler {
	if opts.Analyzer == nil {
		opts.Analyzer = analysis.NewService()
	}
	if opts.Settings == nil {
		opts.Settings = config.NewMemoryStore(nil)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = images.NewFetcher()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = config.DefaultRequestTimeout
	}
	return &Handler{
		store:    storage.New(opts.Capacity),
		analyzer: opts.Analyzer,
		settings: opts.Settings,
		fetcher:  opts.Fetcher,
		links:    lichess.NewBuilder(opts.LichessBaseURL, nil),
		timeout:  opts.RequestTimeout,
	}
}

// Router builds the gin engine serving the API
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = images.MaxImageSize

	r.GET("/healthcheck", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/analyze", h.HandleAnalyze)
	api.GET("/analyses", h.HandleAnalyses)
	api.GET("/analyses/:id", h.HandleAnalysisDetail)
	api.DELETE("/analyses/:id", h.HandleAnalysisDelete)
	api.POST("/link", h.HandleLink)

	r.GET("/open", h.HandleOpen)

	return r
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}

// Response helpers
func (h *Handler) writeError(c *gin.Context, code int, message string, err error) {
	resp := ErrorResponse{Error: message, Kind: apperrors.KindOf(err)}
	if err != nil {
		resp.Message = err.Error()
		slog.Error(message, "status", code, "err", err)
	} else {
		slog.Error(message, "status", code)
	}
	c.AbortWithStatusJSON(code, resp)
}

// analyze resolves the provider, runs the analysis with the request timeout and stores the record
func (h *Handler) analyze(ctx context.Context, payload images.Payload, info models.ImageInfo, provider, model string) *models.AnalysisRecord {
	var result analysis.Result
	cfg, err := config.Resolve(h.settings, provider, model)
	if err != nil {
		result = analysis.Failure(err)
	} else {
		ctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()
		result = h.analyzer.Analyze(ctx, payload, cfg)
	}

	record := &models.AnalysisRecord{Result: result, Image: info}
	if result.Success {
		action, err := h.links.Build(result.PGN)
		if err != nil {
			slog.Warn("Failed to build lichess link", "id", result.ID, "err", err)
		} else {
			record.Link = &action
		}
	}

	h.store.Set(record)
	return record
}
