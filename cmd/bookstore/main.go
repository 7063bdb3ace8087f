package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/azaliaz/bookshop/internal/config"
	"github.com/azaliaz/bookshop/internal/logger"
	"github.com/azaliaz/bookshop/internal/server"
	"github.com/azaliaz/bookshop/internal/storage"
)

func main() {
	cfg, err := config.ReadConfig(os.Args[1:], 8080)
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

	recs, err := storage.LoadRecords(cfg.HashCost)
	if err != nil {
		log.Fatal().Err(err).Msg("load records failed")
	}

	var stor server.Storage = storage.New(recs, cfg.HashCost)
	if cfg.DBDsn != "" {
		if err = storage.Migrations(cfg.DBDsn, cfg.MigratePath); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		db, err := storage.NewDB(ctx, cfg.DBDsn, cfg.HashCost)
		if err != nil {
			log.Error().Err(err).Msg("connecting to data base failed, using memory storage")
		} else {
			defer db.Close()
			if err := db.Seed(ctx, recs); err != nil {
				log.Fatal().Err(err).Msg("seeding data base failed")
			}
			stor = db
		}
	}

	serv := server.New(*cfg, stor)
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
