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
	"github.com/joho/godotenv"
	"github.com/jrsteele09/klarbill-gateway/assistant"
	"github.com/jrsteele09/klarbill-gateway/backend"
	"github.com/jrsteele09/klarbill-gateway/conversation"
	"github.com/jrsteele09/klarbill-gateway/internal/config"
	"github.com/jrsteele09/klarbill-gateway/server"
	"github.com/jrsteele09/klarbill-gateway/sessions"
	"github.com/jrsteele09/klarbill-gateway/sessions/boltrepo"
	"github.com/jrsteele09/klarbill-gateway/sessions/gormrepo"
	fakesessionrepo "github.com/jrsteele09/klarbill-gateway/sessions/repofakes"
	"github.com/jrsteele09/klarbill-gateway/support"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sweepInterval = 10 * time.Minute

func main() {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
	}

	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	sessionRepo, closeRepo, err := openSessionRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	client, err := newBackendClient(c)
	if err != nil {
		return err
	}

	var sender support.Sender
	if c.GetSmtpHost() != "" {
		sender = support.NewSMTPSender(c.GetSmtpHost(), c.GetSmtpPort(), c.GetSmtpAccount(), c.GetSmtpPassword())
	}
	svc, err := assistant.NewService(
		assistant.Repos{Sessions: sessionRepo, Conversations: conversation.NewInMemoryRepo()},
		client,
		assistant.WithLogMirroring(c.GetLogMirroring()),
		assistant.WithSupport(c.GetSupportEmail(), sender),
	)
	if err != nil {
		return pkgerrors.Wrap(err, "[run] assistant service")
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.RunSweeper(ctx, sweepInterval, c.GetMaxSessionAge())

	handler, err := server.New(c, svc, client)
	if err != nil {
		return pkgerrors.Wrap(err, "[run] server")
	}
	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := listenAndServe(httpServer); err != nil {
			log.Err(err).Msg("listen")
		}
	}()
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

// openSessionRepo returns the configured store and its close function.
func openSessionRepo(c config.Config) (sessions.Repo, func(), error) {
	switch c.GetStore() {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory session store, sessions are lost on restart")
		return fakesessionrepo.NewFakeSessionRepo(), func() {}, nil
	case config.StorePostgres:
		repo, err := gormrepo.Open(c.GetDatabaseURL())
		if err != nil {
			return nil, nil, pkgerrors.Wrap(err, "[openSessionRepo] postgres")
		}
		log.Info().Msg("session store connected to PostgreSQL")
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.Err(err).Msg("close session store")
			}
		}, nil
	}

	repo, err := boltrepo.Open(c.GetSessionDBPath())
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "[openSessionRepo] bolt")
	}
	log.Info().Str("path", c.GetSessionDBPath()).Msg("session store opened")
	return repo, func() {
		if err := repo.Close(); err != nil {
			log.Err(err).Msg("close session store")
		}
	}, nil
}

func newBackendClient(c config.Config) (*backend.Client, error) {
	options := []backend.ClientOption{backend.WithTimeout(c.GetBackendTimeout())}
	if c.GetBackendTokenURL() != "" {
		options = append(options, backend.WithClientCredentials(c.GetBackendTokenURL(), c.GetBackendClientID(), c.GetBackendClientSecret()))
	}
	client, err := backend.New(c.GetBackendURL(), options...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[newBackendClient]")
	}
	log.Info().Str("backend", client.String()).Msg("backend configured")
	return client, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
