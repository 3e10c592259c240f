package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sldlayout/pkg/buildinfo"
	"github.com/matzehuels/sldlayout/pkg/cache"
	sldErrors "github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/observability"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/pipeline"
)

const (
	// maxTopologySize bounds the request body of the layout endpoints.
	maxTopologySize = 8 << 20

	shutdownTimeout = 10 * time.Second
)

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

// serveCommand creates the serve command running the layout HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisURL  string
		logFormat string
		flags     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Endpoints:
  POST /v1/layout   topology JSON in, layout JSON out
  POST /v1/dot      topology JSON in, debug view out (?format=dot|svg|png)
  GET  /healthz     liveness and cache reachability
  GET  /metrics     Prometheus metrics

Both layout endpoints accept ?strategy= and ?refresh=true. Results are cached
in Redis when --redis is set, in the local cache directory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.params(cmd)
			if err != nil {
				return err
			}
			formatter, err := parseLogFormat(logFormat)
			if err != nil {
				return err
			}
			c.Logger.SetFormatter(formatter)
			return c.runServe(cmd.Context(), addr, redisURL, p)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log record format: text, json or logfmt")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for the shared layout cache (redis://host:6379/0)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisURL string, p params.Parameters) error {
	runner, err := c.newServerRunner(ctx, redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	metrics := observability.NewPrometheusHooks(nil)
	observability.SetCacheHooks(metrics)
	runner.Hooks = metrics

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, metrics, p, c.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	c.Logger.Debug("server started", "addr", addr, "build", buildinfo.String())
	printSuccess("Serving layouts on %s", StyleLink.Render(addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServerRunner creates a runner backed by Redis when url is set.
func (c *CLI) newServerRunner(ctx context.Context, url string) (*pipeline.Runner, error) {
	if url == "" {
		return c.newRunner(false)
	}
	rc, err := cache.NewRedisCache(url)
	if err != nil {
		return nil, err
	}
	if err := cache.RetryWithBackoff(ctx, func() error { return rc.Ping(ctx) }); err != nil {
		rc.Close()
		return nil, sldErrors.Wrap(sldErrors.ErrCodeInternal, err, "connect to redis")
	}
	return pipeline.NewRunner(rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope()), c.Logger), nil
}

// server answers the layout HTTP API.
type server struct {
	runner   *pipeline.Runner
	metrics  *observability.PrometheusHooks
	defaults params.Parameters
	logger   *log.Logger
}

// newServer returns the routed handler of the layout API.
func newServer(runner *pipeline.Runner, metrics *observability.PrometheusHooks, defaults params.Parameters, logger *log.Logger) http.Handler {
	s := &server{runner: runner, metrics: metrics, defaults: defaults, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/dot", s.handleDOT)
	})
	return r
}

// instrument logs every request and reports it to the HTTP metrics.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := withLogger(r.Context(), requestLogger(s.logger, r))
		s.metrics.OnRequest(ctx, r.Method, r.URL.Path)

		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.OnResponse(ctx, r.Method, route, ww.Status(), time.Since(start))
		loggerFromContext(ctx).Debug("handled request", "route", route, "status", ww.Status(), "duration", time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "version": buildinfo.Version}
	if p, ok := s.runner.Cache.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["cache"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["cache"] = "ok"
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setResultHeaders(w, result, result.CacheInfo.LayoutHit)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result.Layout)
}

func (s *server) handleDOT(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	opts.Detailed, _ = strconv.ParseBool(r.URL.Query().Get("detailed"))

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setResultHeaders(w, result, result.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// options reads the topology body and the parameter overrides of r.
func (s *server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTopologySize))
	if err != nil {
		return pipeline.Options{}, sldErrors.Wrap(sldErrors.ErrCodeInvalidInput, err, "read request body")
	}

	p := s.defaults
	q := r.URL.Query()
	if v := q.Get("strategy"); v != "" {
		p.PositionStrategy = v
	}
	refresh, _ := strconv.ParseBool(q.Get("refresh"))

	return pipeline.Options{
		Input:   body,
		Params:  &p,
		Refresh: refresh,
		Logger:  loggerFromContext(r.Context()),
	}, nil
}

func setResultHeaders(w http.ResponseWriter, result *pipeline.Result, hit bool) {
	w.Header().Set("X-Run-ID", result.RunID)
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Element string `json:"element,omitempty"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := sldErrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:   sldErrors.UserMessage(err),
		Code:    string(sldErrors.GetCode(err)),
		Element: sldErrors.ElementOf(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
