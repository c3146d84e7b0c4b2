package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-clinic-console/devapi"
	"github.com/jrsteele09/go-clinic-console/internal/config"
	"github.com/jrsteele09/go-clinic-console/internal/logging"
	fakepatientrepo "github.com/jrsteele09/go-clinic-console/patients/repofake"
	fakeuserrepo "github.com/jrsteele09/go-clinic-console/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running dev API")
	}
}

func run() error {
	c, err := config.New()
	if err != nil {
		return err
	}
	logger := logging.Setup(c.GetEnv(), c.GetLogLevel())
	figure.NewFigure("Clinic API", "cybermedium", true).Print()
	fmt.Println()

	accounts := fakeuserrepo.NewFakeAccountRepo()
	if err := devapi.Seed(accounts, c.GetDevAPISeedPassword()); err != nil {
		return err
	}
	logger.Info().
		Strs("accounts", []string{devapi.SeedAdminEmail, devapi.SeedDoctorEmail, devapi.SeedReceptionEmail}).
		Msg("Seeded staff accounts")

	handler := devapi.New(
		accounts,
		fakepatientrepo.NewFakePatientRepo(),
		devapi.NewTokens(c.GetDevAPISigningKey(), c.GetDevAPITokenExpiry()),
		devapi.WithResponseShape(devapi.ResponseShape(c.GetDevAPIResponseShape())),
		devapi.WithLogger(logger),
	)
	if c.GetEnv() == "DEV" {
		handler.LogRoutes()
	}

	srv := &http.Server{Addr: c.GetDevAPIPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("shape", c.GetDevAPIResponseShape()).Msg("Dev API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server.ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
