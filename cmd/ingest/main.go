// Command ingest runs evidence connectors on their configured schedules.
// Each feed gets a cron entry; an initial sweep runs every connector once at
// startup so a fresh deployment has evidence before the first tick.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/lodestar-watch/lodestar/internal/api"
	"github.com/lodestar-watch/lodestar/internal/config"
	"github.com/lodestar-watch/lodestar/internal/infrastructure"
	"github.com/lodestar-watch/lodestar/internal/ingest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}

	runtime := api.NewRuntime(cfg, infra)
	runtime.Logger = infra.Logger.With("module", "ingest")

	domain, err := api.NewDomain(runtime)
	if err != nil {
		log.Fatal("domain init failed: ", err)
	}

	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed: ", err)
	}
	infra.Lifecycle.WaitForStartup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := runtime.Logger

	schedules := make(map[string]string, len(cfg.Ingest.Feeds))
	for _, feed := range cfg.Ingest.Feeds {
		schedules[feed.Name] = feed.Schedule
	}

	// Initial sweep: run every connector once, concurrently.
	var g errgroup.Group
	for _, connector := range domain.Connectors {
		g.Go(func() error {
			run, err := domain.Pipeline.Run(ctx, connector)
			if err != nil {
				logger.Error("initial sweep failed", "connector", connector.Name(), "error", err)
				return nil
			}
			logger.Info("initial sweep complete",
				"connector", connector.Name(),
				"status", run.Status,
				"ingested", run.ItemsIngested,
			)
			return nil
		})
	}
	g.Wait()

	// Recover keeps a panicking job from taking down the whole scheduler.
	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	for _, connector := range domain.Connectors {
		if _, err := scheduler.AddFunc(schedules[connector.Name()], func() {
			run, err := domain.Pipeline.Run(ctx, connector)
			if err != nil {
				if errors.Is(err, ingest.ErrRunInFlight) {
					logger.Warn("skipping tick, previous run still in flight",
						"connector", connector.Name(),
					)
					return
				}
				logger.Error("scheduled run failed", "connector", connector.Name(), "error", err)
				return
			}
			logger.Info("scheduled run complete",
				"connector", connector.Name(),
				"status", run.Status,
				"seen", run.ItemsSeen,
				"ingested", run.ItemsIngested,
				"deduplicated", run.ItemsDeduplicated,
			)
		}); err != nil {
			log.Fatalf("invalid schedule for connector %s: %v", connector.Name(), err)
		}
	}

	scheduler.Start()
	logger.Info("scheduler started", "connectors", len(domain.Connectors))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down scheduler")
	cancel()
	<-scheduler.Stop().Done()

	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatal("shutdown failed: ", err)
	}
}
