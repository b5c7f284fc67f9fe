package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	auth "Fastener/internal/auth"
	"Fastener/internal/calc/batch"
	"Fastener/internal/calc/importer"
	"Fastener/internal/calc/joint"
	"Fastener/internal/calc/report"
	"Fastener/internal/config"
	"Fastener/internal/metrics"
	repo "Fastener/internal/repo"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// observe counts requests per route template and logs them.
func observe(m *metrics.Metrics, logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.IncrementRequest(route, rec.code)
			logger.Info("request", "method", r.Method, "route", route, "code", rec.code, "duration", time.Since(start))
		})
	}
}

type deps struct {
	cfg      *config.Config
	analyzer *joint.Analyzer
	store    *repo.Store
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
}

func HandleList(router *mux.Router, d deps) {
	authEnv := &auth.Authenv{JWTkey: []byte(d.cfg.Auth.TokenKey), Logger: d.logger}
	limiter := auth.NewIPRateLimiter(rate.Limit(d.cfg.Auth.Rate), d.cfg.Auth.Burst)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(observe(d.metrics, d.logger))
	api.Use(limiter.LimitMiddleware)
	api.Use(authEnv.AuthMiddleware)

	jointH := &joint.Handler{Analyzer: d.analyzer}
	if d.store != nil {
		jointH.Store = d.store
	}
	workers := d.cfg.Analysis.Workers
	batchH := &batch.Handler{Analyzer: d.analyzer, Workers: workers, Timeout: d.cfg.Analysis.BatchTimeout, Metrics: d.metrics}
	importH := &importer.Handler{Analyzer: d.analyzer, Workers: workers}
	reportH := &report.Handler{Analyzer: d.analyzer, Workers: workers}

	api.HandleFunc("/analyze", jointH.Analyze).Methods("POST")
	api.HandleFunc("/batch", batchH.Analyze).Methods("POST")
	api.HandleFunc("/import", importH.Import).Methods("POST")
	api.HandleFunc("/export/xlsx", importH.Export).Methods("POST")
	api.HandleFunc("/report/pdf", reportH.Generate).Methods("POST")
	api.HandleFunc("/materials", jointH.Materials).Methods("GET")
	api.HandleFunc("/threads", jointH.Threads).Methods("GET")

	if d.store != nil {
		resultsH := &repo.Handler{Repo: d.store}
		api.HandleFunc("/results", resultsH.List).Methods("GET")
		api.HandleFunc("/results/{id}", resultsH.Get).Methods("GET")
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tbl, standards, err := joint.Tables(cfg.Analysis.MaterialsFile, cfg.Analysis.StandardFiles)
	if err != nil {
		return err
	}
	analyzer := joint.NewAnalyzer(tbl, standards,
		joint.WithLogger(logger),
		joint.WithMetrics(m),
		joint.WithDefaultStandard(cfg.Analysis.Standard),
	)

	d := deps{cfg: cfg, analyzer: analyzer, metrics: m, registry: reg, logger: logger}
	if cfg.Database.Driver != "" {
		store, err := repo.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		d.store = store
	}
	if cfg.Auth.TokenKey == "" {
		logger.Warn("TOKEN_KEY is not set, API authentication is disabled")
	}

	router := mux.NewRouter()
	HandleList(router, d)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           CORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "addr", cfg.Server.Addr, "materials", tbl.Version(), "store", cfg.Database.Driver)
		var err error
		if cfg.Server.CertFile != "" {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errc:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()
	logger.Info("server stopped")
	return nil
}

func main() {
	var cfgPath string
	cmd := &cobra.Command{
		Use:           "fastener-server",
		Short:         "Serve the joint analysis HTTP API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to the YAML config file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
