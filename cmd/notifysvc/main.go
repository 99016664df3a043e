package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/kicklink/kicklink-services/configs"
	"github.com/kicklink/kicklink-services/internal/db"
	gamedb "github.com/kicklink/kicklink-services/internal/gamesvc/db"
	gamestore "github.com/kicklink/kicklink-services/internal/gamesvc/store"
	nats "github.com/kicklink/kicklink-services/internal/nats"
	"github.com/kicklink/kicklink-services/internal/notifysvc/broker"
	notifyconfig "github.com/kicklink/kicklink-services/internal/notifysvc/config"
	handlers "github.com/kicklink/kicklink-services/internal/notifysvc/handlers"
	"github.com/kicklink/kicklink-services/internal/notifysvc/push"
	"github.com/kicklink/kicklink-services/internal/notifysvc/service"
	"github.com/kicklink/kicklink-services/internal/notifysvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "notify"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
}

func main() {
	cfg, err := notifyconfig.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	// pg connection
	dbpool, err := gamedb.Connect(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbpool.Close()
	log.Printf("pg connection established successfully")

	// mongo is only an audit log, run without it when unreachable
	var receipts service.ReceiptRecorder
	mongoClient, mongoDB, err := db.ConnectToDB(ctx, cfg.MongoURI, "kicklink")
	if err != nil {
		log.Warnf("push receipts disabled: %v", err)
	} else {
		defer mongoClient.Disconnect(context.Background())
		if err := db.CreateTTLIndexForCollection(ctx, mongoDB, store.ReceiptCollection); err != nil {
			log.Warnf("unable to create receipt ttl index: %v", err)
		}
		receipts = store.NewReceiptStore(mongoDB, cfg.ReceiptTTL)
		log.Printf("mongo connection established successfully")
	}

	// Connect to NATS
	var publisher service.StatusPublisher
	n, err := nats.Connect("notify service "+instanceId, cfg.NatsURL, cfg.NatsToken)
	if err != nil {
		log.Warnf("game status events disabled, unable to connect to NATS server: %v", err)
	} else {
		defer n.Conn.Close()
		publisher = broker.NewBroker(n.Conn)
		log.Printf("NATS connection established successfully %s", n.Url)
	}

	expo := push.NewExpoClient(cfg.ExpoURL.String(), cfg.ExpoAccessToken, cfg.PushTimeout)
	notifier := service.NewNotifierService(
		gamestore.NewGameStore(dbpool),
		gamestore.NewEnrollmentStore(dbpool),
		expo, receipts, publisher, cfg.StoreTimeout,
	)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	h := handlers.NewHandler(notifier, []byte(cfg.ServiceJWTSecret), cfg.Port)
	h.SetRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
