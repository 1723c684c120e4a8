package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/bereanapp/berean/internal/api/route"
	appctx "github.com/bereanapp/berean/internal/app"
	"github.com/bereanapp/berean/internal/cachestore"
	"github.com/bereanapp/berean/internal/config"
	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/registry"
	"github.com/bereanapp/berean/internal/resource"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/enrichman/httpgrace"
)

func main() {
	// Optional .env for local development; real deployments use env vars.
	if err := godotenv.Load(); err == nil {
		logger.WithComponent("main").Debug("loaded .env file")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Misc.LogLevel)
	if err != nil {
		logger.WithComponent("main").Warnf("invalid log level '%s', using 'info': %v", cfg.Misc.LogLevel, err)
		logLevel = logrus.InfoLevel
	}
	logger.Logger.SetLevel(logLevel)
	logger.WithComponent("main").Debugf("log level set to: %s", logLevel.String())
	logger.WithComponent("main").Infof("App will run on port: %d", cfg.Server.Port)

	fetcher, err := resource.NewHTTPFetcher(cfg.Origin.BaseURL, cfg.Origin.RequestTimeout)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init origin fetcher: %v", err)
	}

	storage := cachestore.NewStorage()
	reg, err := registry.NewRegistration(registry.Options{
		Prefix:       cfg.Cache.Prefix,
		ManifestPath: cfg.Cache.PrecacheManifest,
		UpdatePoll:   cfg.Cache.UpdatePoll,
		Storage:      storage,
		Fetcher:      fetcher,
	})
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init registration: %v", err)
	}

	if err := reg.Register(context.Background()); err != nil {
		logger.WithComponent("main").Fatalf("cannot install initial cache version: %v", err)
	}

	app, err := appctx.New(cfg, storage, reg)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown()

	app.StartWatchers()

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := route.SetupRoutes(app, logger.Logger)
	srv := createGraceHttpServer(app.BaseCtx, "main-server", app.Config.Server, r)

	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Fatal(err)
	}
}

func createGraceHttpServer(ctx context.Context, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
