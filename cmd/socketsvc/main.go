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
	"github.com/kicklink/kicklink-services/internal/comm"
	"github.com/kicklink/kicklink-services/internal/nats"
	log "github.com/sirupsen/logrus"

	config "github.com/kicklink/kicklink-services/configs"

	"github.com/kicklink/kicklink-services/internal/socketsvc/broker"
	socketconfig "github.com/kicklink/kicklink-services/internal/socketsvc/config"
	"github.com/kicklink/kicklink-services/internal/socketsvc/routes"
	"github.com/kicklink/kicklink-services/internal/socketsvc/ws"
)

const SERVICE_NAME = "socket"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
}

func main() {
	cfg, err := socketconfig.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Connect to NATS
	n, err := nats.Connect("socket service "+instanceId, cfg.NatsURL, cfg.NatsToken)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.CORSOrigins)

	// Middleware; no Timeout, websocket handlers outlive the request
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Initialize websocket handler
	s := ws.NewWs()

	// Initialize routes
	routes.SetRoutes(r, s, cfg.Port)

	// every instance receives every event and forwards it to its own sockets
	b := broker.NewBroker(n.Conn, s.Send, s.GetRoomSockets)
	statusSub, err := b.Subscribe(comm.SubjectGameStatus, b.HandleGameStatus)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to %s %v", comm.SubjectGameStatus, err)
	}
	chatSub, err := b.Subscribe(comm.SubjectChatMessage, b.HandleChatMessage)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to %s %v", comm.SubjectChatMessage, err)
	}

	// Create server with timeout settings
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
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

	statusSub.Unsubscribe()
	chatSub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
