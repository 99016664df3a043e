package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	config "github.com/kicklink/kicklink-services/configs"
	"github.com/kicklink/kicklink-services/internal/gamesvc/db"
	"github.com/kicklink/kicklink-services/internal/gamesvc/notify"
	"github.com/kicklink/kicklink-services/internal/gamesvc/store"
	"github.com/kicklink/kicklink-services/internal/sweepsvc"
)

const SERVICE_NAME = "sweep"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
}

func main() {
	cfg, err := sweepsvc.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// pg connection
	dbpool, err := db.Connect(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbpool.Close()
	log.Printf("pg connection established successfully")

	notifier := notify.NewClient(cfg.NotifierURL.String(), []byte(cfg.ServiceJWTSecret), cfg.NotifierTimeout)
	sweeper := sweepsvc.NewSweeper(store.NewGameStore(dbpool), notifier, cfg.Options())

	log.Infof("%s service sweeping every %s", SERVICE_NAME, cfg.Interval)
	sweeper.Run(ctx, cfg.Interval)
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
