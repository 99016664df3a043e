package config

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/joho/godotenv"
)

// LoadEnv loads ./.env when present. A missing file is not fatal: in
// containers the environment is injected directly.
func LoadEnv(service string) {
	log.Infof("%s service configuration and env variables loading started ...", service)
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = "./.env"
	}
	if err := godotenv.Load(envPath); err != nil {
		log.Warnf("unable to load %s, using process environment: %s", envPath, err)
		return
	}

	log.Infof("%s file loaded.", envPath)
}

func CreateUniqueInstance(service string) string {
	id, err := uuid.NewV4() // instance identifier
	if err != nil {
		log.Errorf("error generating instanceId: %s", err)
		os.Exit(1)
	}
	log.Infof(service+" service with Instance ID: %s is ready", id)
	return id.String()
}

// CORS allows the mobile dev servers and the public web origin.
func CORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"http://localhost:8081", "http://localhost:19006"}
	}

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return corsOptions
}

// Logging configures the global logrus logger. LOG_LEVEL picks the level and
// LOG_DIR, when set, redirects output to <LOG_DIR>/<service>.log.
func Logging(service string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	logFolder := os.Getenv("LOG_DIR")
	if logFolder == "" {
		log.SetOutput(os.Stdout)
		log.Infof("log to stdout started for service: %s", service)
		return
	}

	_, err = os.Stat(logFolder)
	if os.IsNotExist(err) {
		err = os.MkdirAll(logFolder, 0755)
		if err != nil {
			log.Warnf("unable to create folder for log %s", err)
			return
		}
	}

	logFilePath := filepath.Join(logFolder, service+".log")

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}

	log.SetOutput(file)

	log.Infof("log to file started for service: %s", service)
}

func CustomLoggerMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.WithFields(log.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"remote":     r.RemoteAddr,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start),
				}).Infof("%s %s %s", r.Method, r.RequestURI, http.StatusText(ww.Status()))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
