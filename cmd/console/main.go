package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-clinic-console/apiclient"
	"github.com/jrsteele09/go-clinic-console/internal/config"
	"github.com/jrsteele09/go-clinic-console/internal/logging"
	"github.com/jrsteele09/go-clinic-console/internal/metrics"
	"github.com/jrsteele09/go-clinic-console/server"
	"github.com/jrsteele09/go-clinic-console/server/consolesession"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/session/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running console")
	}
	log.Info().Msg("Console stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logger := logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	sessionStorage, closer, err := storage.Open(context.Background(), c, c.GetDataFolder())
	if err != nil {
		return err
	}
	defer closer.Close()

	m := metrics.New()
	api := apiclient.New(c.GetAPIBaseURL(), apiclient.WithLogger(logger))
	registry := consolesession.New(
		func(id string) (*session.Store, error) {
			return session.NewStore(api, sessionStorage,
				session.WithStorageKey(c.GetSessionKey()+"."+id),
				session.WithRequestTimeout(c.GetRequestTimeout()),
				session.WithLogger(logger),
				session.WithMetrics(m),
			)
		},
		consolesession.WithIdleAge(c.GetIdleSessionAge()),
		consolesession.WithRecorder(m),
		consolesession.WithLogger(logger),
	)
	stopSweeper, err := registry.StartSweeper(c.GetIdleSweepSchedule())
	if err != nil {
		return err
	}
	defer stopSweeper()

	handler, err := server.New(c, api, registry, m, server.WithLogger(logger))
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().
		Str("api", c.GetAPIBaseURL()).
		Str("session_store", c.GetSessionStore()).
		Str("guard_fallback", c.GetGuardFallback()).
		Msg("Console configured")

	go listenAndServe(srv, logger)
	waitForStopSignal()
	return shutdown(srv)
}

func listenAndServe(srv *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", srv.Addr).Msg("Console listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
