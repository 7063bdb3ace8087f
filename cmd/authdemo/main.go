package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azaliaz/bookshop/internal/auth"
	"github.com/azaliaz/bookshop/internal/authdemo"
	"github.com/azaliaz/bookshop/internal/config"
	"github.com/azaliaz/bookshop/internal/logger"
	"github.com/azaliaz/bookshop/internal/session"
	"github.com/azaliaz/bookshop/internal/storage"
)

func main() {
	cfg, err := config.ReadConfig(os.Args[1:], 3000)
	if err != nil {
		log.Fatal(err)
	}
	log := logger.Get(cfg.Debug)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		<-c

		log.Debug().Msg("ctx cancel; catch os signal")
		cancel()
	}()

	var sessions session.Store = session.NewMemStore(cfg.SessionTTL)
	if cfg.Redis.Addr != "" {
		client, err := session.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Error().Err(err).Msg("connecting to redis failed, using memory sessions")
		} else {
			defer client.Close()
			sessions = session.NewRedisStore(client, cfg.SessionTTL)
		}
	}

	gateway, err := auth.NewGateway(storage.NewAccounts(), sessions, cfg.HashCost)
	if err != nil {
		log.Fatal().Err(err).Msg("auth gateway init failed")
	}
	if err = gateway.SeedAccount(ctx, auth.Credentials{Username: "admin", Password: "12345"}); err != nil {
		log.Fatal().Err(err).Msg("seeding demo account failed")
	}

	serv := authdemo.New(*cfg, gateway)
	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serv.Run(gCtx)
	})
	group.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return serv.ShutdownServer(shutdownCtx)
	})

	if err = group.Wait(); err != nil {
		log.Info().Str("stopping reason", err.Error()).Msg("server stopped")
		return
	}
	log.Info().Msg("server stopped")
}
