package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/api"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/auth"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/config"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/parser"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/report"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/samples"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/summary"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		cfgFile     = flag.String("config", "", "path to config.yaml (default: ./config.yaml or ~/.equipment-visualizer/config.yaml)")
		seed        = flag.Bool("seed", false, "create the demo/demo user and import the bundled sample CSV on startup")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("equipviz-server %s (built %s)\n", Version, BuildTime)
		return
	}

	cfg, err := config.LoadServer(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	// Storage: Postgres when a DSN is configured, in-memory otherwise.
	var (
		store   storage.Store
		pinger  api.Pinger
		backend = "memory"
	)
	if cfg.DatabaseDSN != "" {
		version, dirty, err := storage.Migrate(cfg.DatabaseDSN)
		if err != nil {
			logger.Error("migrations failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Uint64("schema_version", uint64(version)), slog.Bool("dirty", dirty))

		pg, err := storage.NewPostgresStore(context.Background(), cfg.DatabaseDSN)
		if err != nil {
			logger.Error("database connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pg.Close()
		store, pinger, backend = pg, pg, "postgres"
	} else {
		store = storage.NewMemoryStore()
		logger.Warn("no database_dsn configured, datasets are kept in memory")
	}

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Error("upload directory unusable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *seed {
		if err := seedDemoData(context.Background(), logger, store, files); err != nil {
			logger.Error("seeding demo data failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	authSvc := auth.NewService(store)
	handlers := api.NewHandlers(&api.Dependencies{
		Store:          store,
		Files:          files,
		Auth:           authSvc,
		Renderer:       report.NewRenderer(),
		Reports:        report.NewCache(cfg.ReportCacheSize, cfg.ReportCacheTTL()),
		DB:             pinger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Version:        Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.ReadTimeoutSec) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Uploads and report rendering run as long as they need.
			path := c.Request().URL.Path
			return strings.Contains(path, "/upload") || strings.Contains(path, "/report")
		},
		ErrorMessage: "request took too long",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			// PDFs are already compressed; metrics scrapes stay plain.
			path := c.Request().URL.Path
			return strings.Contains(path, "/report") || path == "/metrics"
		},
	}))

	// Whole request body, multipart overhead included.
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+(1<<20), 10)))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{
			"http://localhost:8090", "http://127.0.0.1:8090",
			"http://localhost:3000", "http://127.0.0.1:3000",
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.RegisterRoutes(e, handlers, authSvc)

	s := &http.Server{
		Addr:         cfg.Addr(),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}

	printBanner(cfg, backend)

	if err := run(e, s, logger, cfg.ShutdownTimeout()); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run starts the server and blocks until a shutdown signal or a server
// error, then drains in-flight requests within the shutdown timeout.
func run(e *echo.Echo, s *http.Server, logger *slog.Logger, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", s.Addr))
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(ctx)
}

// seedDemoData makes a fresh install usable immediately: a demo/demo
// login plus the bundled sample CSV, imported through the same
// parse-summarize-store pipeline uploads take.
func seedDemoData(ctx context.Context, logger *slog.Logger, store storage.Store, files *storage.FileStore) error {
	user, err := store.GetUserByUsername(ctx, "demo")
	if errors.Is(err, storage.ErrNotFound) {
		hash, hashErr := auth.HashPassword("demo")
		if hashErr != nil {
			return fmt.Errorf("hash demo password: %w", hashErr)
		}
		user, err = store.CreateUser(ctx, "demo", hash)
		if err != nil {
			return fmt.Errorf("create demo user: %w", err)
		}
		logger.Info("created demo user", slog.String("username", "demo"))
	} else if err != nil {
		return fmt.Errorf("look up demo user: %w", err)
	}

	data, err := samples.Read(samples.EquipmentCSV)
	if err != nil {
		return err
	}
	table, err := parser.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse bundled sample: %w", err)
	}
	storedName, _, err := files.Save(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("store bundled sample: %w", err)
	}
	ds, err := store.CreateDataset(ctx, user.ID, samples.EquipmentCSV, storedName, summary.Summarize(table))
	if err != nil {
		_ = files.Remove(storedName)
		return fmt.Errorf("record bundled sample: %w", err)
	}
	logger.Info("imported bundled sample",
		slog.Int64("dataset_id", ds.ID),
		slog.String("username", "demo"),
		slog.Int("rows", ds.RowCount),
	)
	return nil
}

func printBanner(cfg *config.Server, backend string) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║        Chemical Equipment Parameter Visualizer            ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Storage:    %-45s║\n", backend)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Listen:     http://%-38s║\n", cfg.Addr())
	fmt.Printf("║  Uploads:    %-45s║\n", cfg.UploadDir)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
