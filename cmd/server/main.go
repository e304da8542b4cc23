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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vidstream/go-video-backend/auth"
	"github.com/vidstream/go-video-backend/internal/config"
	"github.com/vidstream/go-video-backend/media"
	"github.com/vidstream/go-video-backend/server"
	"github.com/vidstream/go-video-backend/token"
	"github.com/vidstream/go-video-backend/users/mongorepo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	c := config.New()
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(c.GetMongoURI()))
	if err != nil {
		return fmt.Errorf("mongo.Connect: %w", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	log.Info().Str("database", c.GetMongoDatabase()).Msg("connected to mongodb")

	userRepo, err := mongorepo.New(ctx, client.Database(c.GetMongoDatabase()))
	if err != nil {
		return fmt.Errorf("mongorepo.New: %w", err)
	}

	mediaStore, err := media.NewS3Store(ctx, c)
	if err != nil {
		return fmt.Errorf("media.NewS3Store: %w", err)
	}

	accessSigner := token.NewHMACSigner(c.GetAccessTokenSecret())
	refreshSigner := token.NewHMACSigner(c.GetRefreshTokenSecret())
	issuer := token.NewIssuer(accessSigner, refreshSigner,
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()))

	sessions, err := auth.NewSessionService(
		auth.Repos{Users: userRepo, Media: mediaStore},
		issuer,
		token.NewVerifier(refreshSigner),
	)
	if err != nil {
		return fmt.Errorf("auth.NewSessionService: %w", err)
	}

	srv := &http.Server{
		Addr:    c.GetPort(),
		Handler: server.New(c, sessions, token.NewVerifier(accessSigner)),
	}

	go listenAndServe(srv)
	waitForStopSignal()
	return shutdown(srv)
}

func listenAndServe(srv *http.Server) {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
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
