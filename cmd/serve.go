package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/venue-cli/internal/analysis"
	"github.com/sells-group/venue-cli/internal/catalog"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		env, err := initAnalysis(cfg, "serve", reg)
		if err != nil {
			return err
		}

		if cfg.Server.HealthCheckSecs > 0 {
			go env.Checker.Run(ctx)
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(env.Aggregator, env.CompetitorSource, reg, cfg.Server.AllowedOrigins, cfg.Analysis.DefaultBusinessType),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// analyzeRequest is the body of POST /api/v1/analyze and /api/v1/competitors.
type analyzeRequest struct {
	BusinessType string `json:"business_type"`
	Location     string `json:"location"`
}

// buildRouter wires the API routes. gatherer backs /metrics; a nil gatherer
// serves the default registry. Requests without a business type use
// defaultType.
func buildRouter(
	agg *analysis.Aggregator,
	comp *analysis.CompetitorAggregator,
	gatherer prometheus.Gatherer,
	origins []string,
	defaultType string,
) http.Handler {
	if defaultType == "" {
		defaultType = catalog.DefaultBusinessType
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"default":        defaultType,
				"business_types": catalog.BusinessTypes(),
			})
		})

		r.Post("/analyze", func(w http.ResponseWriter, r *http.Request) {
			req, ok := decodeAnalyzeRequest(w, r, defaultType)
			if !ok {
				return
			}

			var c *analysis.CompetitorAggregator
			if includes(r, "competitors") {
				c = comp
			}

			report, err := analysis.Run(r.Context(), agg, c, req.BusinessType, req.Location)
			if err != nil {
				zap.L().Error("api: analyze failed", zap.String("location", req.Location), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "analysis failed")
				return
			}
			writeJSON(w, http.StatusOK, report)
		})

		r.Post("/competitors", func(w http.ResponseWriter, r *http.Request) {
			req, ok := decodeAnalyzeRequest(w, r, defaultType)
			if !ok {
				return
			}
			// Failures are reported in the body's error field.
			writeJSON(w, http.StatusOK, comp.Competitors(r.Context(), req.BusinessType, req.Location))
		})
	})

	return r
}

const maxRequestBytes = 64 << 10

func decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request, defaultType string) (analyzeRequest, bool) {
	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.Location = strings.TrimSpace(req.Location)
	if req.Location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return req, false
	}
	if strings.TrimSpace(req.BusinessType) == "" {
		req.BusinessType = defaultType
	}
	return req, true
}

// includes reports whether the comma-separated include query parameter
// names part.
func includes(r *http.Request, part string) bool {
	for _, p := range strings.Split(r.URL.Query().Get("include"), ",") {
		if strings.TrimSpace(p) == part {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
