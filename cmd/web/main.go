package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/client"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/config"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/webapp"
)

// Version info (set during build)
var Version = "dev"

func main() {
	var (
		cfgFile     = flag.String("config", "", "path to config.yaml (default: ./config.yaml or ~/.equipment-visualizer/config.yaml)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("equipviz-web %s\n", Version)
		return
	}

	cfg, err := config.LoadClient(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	api := client.New(cfg.ServerURL, cfg.Timeout())
	web := webapp.New(api, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/favicon.ico"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())

	if err := web.Register(e); err != nil {
		logger.Error("template setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("web client listening",
		slog.String("addr", cfg.WebAddr),
		slog.String("backend", cfg.ServerURL),
	)
	if err := run(e, cfg.WebAddr, logger); err != nil {
		logger.Error("web client exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("web client stopped")
}

// run starts the server and blocks until a shutdown signal or a server
// error, then drains in-flight requests.
func run(e *echo.Echo, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
