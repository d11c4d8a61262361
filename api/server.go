package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rpupo63/blog-publishing-backend/config"
	"github.com/rpupo63/blog-publishing-backend/database"
	"github.com/rpupo63/blog-publishing-backend/notify"
	"github.com/rpupo63/blog-publishing-backend/services"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database, hub *notify.Hub, notifier *notify.Notifier) (Server, error) {
	c := config.New()

	port := config.GetString(c, "PORT", "3001")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	scrapeTimeout := time.Duration(config.GetInt(c, "SCRAPE_TIMEOUT_SECONDS", 15)) * time.Second
	scraper := services.NewMetadataScraper(scrapeTimeout)

	// Image storage is optional; without a bucket, post creation still works
	// but image uploads are rejected.
	var uploader imageUploader
	if bucket := config.GetString(c, "S3_BUCKET", ""); bucket != "" {
		store, err := services.NewS3ImageStore(
			context.Background(),
			config.GetString(c, "AWS_REGION", "us-east-1"),
			bucket,
			config.GetString(c, "S3_ENDPOINT", ""),
			config.GetString(c, "S3_PUBLIC_BASE_URL", ""),
		)
		if err != nil {
			return Server{}, fmt.Errorf("initialize image store: %w", err)
		}
		uploader = store
	} else {
		log.Warn().Msg("S3_BUCKET not set, image uploads disabled")
	}

	router := newRouter(database, uploader, scraper, hub, notifier, withConfig(c), withStartupTime(startupTime))

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(
	database database.Database,
	uploader imageUploader,
	scraper metadataScraper,
	hub *notify.Hub,
	notifier *notify.Notifier,
	opts ...func(*router),
) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	acceptedOrigins := config.GetStrings(router.config, "ACCEPTED_ORIGINS")
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"*"}
	}
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins: acceptedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	handlers := initializeHandlers(database, uploader, scraper, notifier)

	setupRoutes(chiRouter, handlers, hub)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
