// Package main runs the sales dashboard on PocketBase
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"

	"github.com/servicing/ventas/config"
	"github.com/servicing/ventas/dashboard"
	"github.com/servicing/ventas/google"
	"github.com/servicing/ventas/logging"
	"github.com/servicing/ventas/ratelimit"
	"github.com/servicing/ventas/source"
	"github.com/servicing/ventas/ventas"
)

func main() {
	// Format: 2026-01-06T14:05:52Z [ventas] LEVEL message
	// LOG_LEVEL applies until the configuration is loaded
	slog.SetDefault(logging.NewLogger("ventas", os.Stdout))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Init("ventas", logging.ParseLevel(cfg.LogLevel))

	src, err := newSource(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to create data source", "source", cfg.Source, "error", err)
		os.Exit(1)
	}

	layout, err := cfg.Layout()
	if err != nil {
		slog.Error("Invalid column layout", "error", err)
		os.Exit(1)
	}

	assembler := ventas.NewAssembler(src,
		ventas.WithLayout(layout),
		ventas.WithMonthTimeout(cfg.MonthTimeout),
	)
	metrics := dashboard.NewMetrics()
	svc := dashboard.NewService(assembler, metrics, cfg.TopExecutives)
	scheduler := dashboard.NewScheduler(svc, cfg.ReportSchedule)

	app := pocketbase.New()

	var publicDir string
	app.RootCmd.PersistentFlags().StringVar(
		&publicDir,
		"publicDir",
		defaultPublicDir(),
		"the directory to serve static files",
	)

	var indexFallback bool
	app.RootCmd.PersistentFlags().BoolVar(
		&indexFallback,
		"indexFallback",
		true,
		"fallback the request to index.html on missing static path",
	)

	app.OnServe().Bind(&hook.Handler[*core.ServeEvent]{
		Func: func(e *core.ServeEvent) error {
			slog.Info("Initializing sales dashboard", "source", cfg.Source)
			dashboard.RegisterRoutes(e, svc, metrics)
			return e.Next()
		},
	})

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		if err := scheduler.Start(); err != nil {
			slog.Error("Failed to start report scheduler", "error", err)
		}
		return e.Next()
	})

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		scheduler.Stop()
		return e.Next()
	})

	// Register static file serving (with lowest priority)
	app.OnServe().Bind(&hook.Handler[*core.ServeEvent]{
		Func: func(e *core.ServeEvent) error {
			if !e.Router.HasRoute(http.MethodGet, "/{path...}") {
				e.Router.GET("/{path...}", apis.Static(os.DirFS(publicDir), indexFallback))
			}
			return e.Next()
		},
		Priority: 999,
	})

	if err := app.Start(); err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}
}

// newSource picks the spreadsheet or workbook source named by the config
func newSource(ctx context.Context, cfg *config.Config) (ventas.Source, error) {
	switch cfg.Source {
	case config.SourceXLSX:
		return source.NewWorkbook(cfg.WorkbookPath), nil
	case config.SourceSheets:
		srv, err := google.NewSheetsService(ctx, cfg.Google())
		if err != nil {
			return nil, err
		}
		limiter := ratelimit.NewRateLimiter(cfg.RateLimit())
		return source.NewSheets(srv, cfg.SpreadsheetID, limiter), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// the default pb_public dir location is relative to the executable
func defaultPublicDir() string {
	if strings.HasPrefix(os.Args[0], os.TempDir()) {
		// most likely ran with go run
		return "./pb_public"
	}

	return filepath.Join(filepath.Dir(os.Args[0]), "pb_public")
}
