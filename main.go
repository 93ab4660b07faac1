package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"quartz/app/config"
	"quartz/app/service/engine"
	"quartz/app/service/interview"
	"quartz/app/service/phrasing"
	"quartz/app/service/roster"
	"quartz/app/storage"
	"quartz/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, storage.New)
	do.Provide(di, roster.New)
	do.Provide(di, phrasing.New)
	do.Provide(di, interview.NewRegistry)
	do.Provide(di, interview.New)
	do.Provide(di, engine.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*engine.Service](di).Run(appCtx)

	<-appCtx.Done()
}
