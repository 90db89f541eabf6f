package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/cleanup"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/config"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/history"
)

// runServe serves the built output tree. With --watch (or serve.watch in the
// config) the dashboard is rebuilt whenever the reports directory changes.
func runServe(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ExitOnError)
	addr := fs.String("addr", cfg.Serve.Addr, "Listen address")
	watch := fs.Bool("watch", cfg.Serve.Watch, "Rebuild the dashboard when the reports directory changes")
	fs.Parse(args)

	ctx := context.Background()

	if tp, err := setupTracing(ctx); err != nil {
		slog.Warn("tracing setup failed", "err", err)
	} else if tp != nil {
		defer tp.Shutdown(ctx)
	}

	cleanup.Start(5*time.Minute, 30*time.Minute)

	// Build once up front so a fresh checkout serves something.
	repo := history.NewFileRepository(cfg.LedgerPath)
	if err := buildSite(ctx, repo, cfg); err != nil {
		return err
	}

	if *watch {
		go watchReports(ctx, cfg)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /", cacheControl(http.FileServer(http.Dir(cfg.OutputDir))))

	var handler http.Handler = mux
	handler = otelhttp.NewHandler(handler, "dashboard")
	handler = recoverMiddleware(handler)
	handler = loggingMiddleware(handler)

	slog.Info("serving dashboard", "addr", *addr, "dir", cfg.OutputDir)
	return http.ListenAndServe(*addr, handler)
}

// setupTracing installs an OTLP trace exporter when an endpoint is present in
// the environment (OTEL_EXPORTER_OTLP_ENDPOINT). Without one the global
// no-op tracer stays in place.
func setupTracing(ctx context.Context) (*sdktrace.TracerProvider, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return nil, nil
	}
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return tp, nil
}

// watchReports rebuilds the dashboard after every change in the reports
// directory. A failed rebuild is logged and the previous output keeps being
// served.
func watchReports(ctx context.Context, cfg *config.Config) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("watch: cannot create watcher", "err", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.ReportsDir); err != nil {
		slog.Error("watch: cannot watch reports dir", "dir", cfg.ReportsDir, "err", err)
		return
	}
	slog.Info("watch: rebuilding on reports changes", "dir", cfg.ReportsDir)

	repo := history.NewFileRepository(cfg.LedgerPath)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := buildSite(ctx, repo, cfg); err != nil {
				slog.Error("watch: rebuild failed — keeping previous output", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("watch: watcher error", "err", err)
		}
	}
}

func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic while serving", "err", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
