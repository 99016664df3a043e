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
	"github.com/kicklink/kicklink-services/internal/gamesvc/broker"
	gameconfig "github.com/kicklink/kicklink-services/internal/gamesvc/config"
	"github.com/kicklink/kicklink-services/internal/gamesvc/db"
	handlers "github.com/kicklink/kicklink-services/internal/gamesvc/handlers"
	"github.com/kicklink/kicklink-services/internal/gamesvc/notify"
	"github.com/kicklink/kicklink-services/internal/gamesvc/payment"
	"github.com/kicklink/kicklink-services/internal/gamesvc/service"
	"github.com/kicklink/kicklink-services/internal/gamesvc/store"
	nats "github.com/kicklink/kicklink-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
}

func main() {
	cfg, err := gameconfig.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// pg connection
	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbpool.Close()
	log.Printf("pg connection established successfully")

	if err := db.Migrate(ctx, dbpool); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	gameStore := store.NewGameStore(dbpool)
	enrollmentStore := store.NewEnrollmentStore(dbpool)
	profileStore := store.NewProfileStore(dbpool)

	// chat messages are still stored without NATS, only realtime delivery stops
	var publisher service.MessagePublisher
	n, err := nats.Connect("game service "+instanceId, cfg.NatsURL, cfg.NatsToken)
	if err != nil {
		log.Warnf("chat fan-out disabled, unable to connect to NATS server: %v", err)
	} else {
		defer n.Conn.Close()
		publisher = broker.NewBroker(n.Conn)
		log.Printf("NATS connection established successfully %s", n.Url)
	}

	stripe := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeTimeout)
	notifier := notify.NewClient(cfg.NotifierURL.String(), []byte(cfg.ServiceJWTSecret), cfg.NotifierTimeout)

	gameService := service.NewGameService(gameStore, profileStore)
	checkoutService := service.NewCheckoutService(gameStore, stripe, cfg.ClientURL, cfg.CheckoutCurrency, cfg.StoreTimeout)
	webhookService := service.NewWebhookService(stripe, enrollmentStore, gameStore, notifier, cfg.StoreTimeout)
	communityService := service.NewCommunityService(
		profileStore,
		store.NewLikeStore(dbpool),
		store.NewChatStore(dbpool),
		store.NewTeamStore(dbpool),
		publisher,
		cfg.StoreTimeout,
	)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.CORSOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	// webhook deliveries wait for enrollment plus the notifier call
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(c.Handler)

	// Init handlers and routes; the limiter protects the client api from
	// over requests and is not applied to webhook deliveries
	h := handlers.NewHandler(checkoutService, webhookService, gameService, communityService, cfg.Port)
	h.SetRoutes(r, httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
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
