// @title           Profile Share API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/api"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/config"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/database"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/notify"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/ratelimit"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/share"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/Yoni-hub/connectura-platform-sub000/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Cannot load configuration: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Cannot connect to the database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Cannot ping the database: %v", err)
	}
	log.Println("Connected to the database")

	var limiter share.Limiter
	if cfg.Redis.Addr != "" {
		redisLimiter, err := ratelimit.NewLimiter(cfg.Redis.Addr)
		if err != nil {
			log.Fatalf("Cannot connect to redis: %v", err)
		}
		limiter = redisLimiter
		log.Printf("Attempt limiter enabled via redis at %s", cfg.Redis.Addr)
	} else {
		log.Println("WARN: No redis address configured, running without the attempt limiter")
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	notifier := notify.NewDispatcher(store, wsHub)
	shares := share.NewService(store, notifier, limiter, cfg.Share.Timeout)
	server := api.NewServer(cfg, store, shares, wsHub)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/ws", server.ServeWsHandler)

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)

	r.Post("/api/v1/access/verify", server.VerifyAccessHandler)
	r.Post("/api/v1/access/edits", server.SubmitEditsHandler)
	r.Post("/api/v1/access/close", server.CloseAccessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Get("/me", server.GetCurrentUserHandler)
		r.Get("/profile", server.GetProfileHandler)
		r.Put("/profile", server.UpdateProfileHandler)
		r.Post("/shares", server.CreateShareHandler)
		r.Get("/shares", server.ListActiveSharesHandler)
		r.Get("/shares/pending", server.ListPendingSharesHandler)
		r.Post("/shares/{token}/approve", server.ApproveShareEditsHandler)
		r.Post("/shares/{token}/decline", server.DeclineShareEditsHandler)
		r.Delete("/shares/{token}", server.RevokeShareHandler)
		r.Get("/sessions", server.ListSessionsHandler)
		r.Delete("/sessions/{sessionId}", server.DeleteSessionHandler)
		r.Post("/sessions/terminate_all", server.TerminateAllSessionsHandler)
		r.Get("/events", server.GetEventsHandler)
	})

	log.Println("Starting server on :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("Cannot start the server: %v", err)
	}
}
