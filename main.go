package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"campus-hub/internal/auth"
	"campus-hub/internal/auth/auth_api"
	authdb "campus-hub/internal/auth/db"
	"campus-hub/internal/bookings"
	"campus-hub/internal/bookings/booking_api"
	bookingdb "campus-hub/internal/bookings/db"
	bookingkafka "campus-hub/internal/bookings/kafka"
	"campus-hub/internal/bookings/pass"
	bookingredis "campus-hub/internal/bookings/redis"
	"campus-hub/internal/config"
	"campus-hub/internal/database/migrations"
	"campus-hub/internal/events"
	eventdb "campus-hub/internal/events/db"
	"campus-hub/internal/events/event_api"
	"campus-hub/internal/kafka"
	"campus-hub/internal/logger"
	"campus-hub/internal/models"
	"campus-hub/internal/venues"
	venuedb "campus-hub/internal/venues/db"
	"campus-hub/internal/venues/venue_api"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err))
	}
	log.Info("REDIS", "Redis connection successful")
	return client
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	}

	redisClient := connectRedis(cfg, log)
	defer redisClient.Close()

	var producer *bookingkafka.Producer
	if cfg.Kafka.Enabled {
		if !cfg.Kafka.MockMode {
			topics := []string{
				cfg.Kafka.Topics.BookingRequested,
				cfg.Kafka.Topics.BookingApproved,
				cfg.Kafka.Topics.BookingRejected,
			}
			if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
				log.Warn("KAFKA", fmt.Sprintf("Failed to ensure topics: %v", err))
			}
		}
		producer = bookingkafka.NewProducer(cfg.Kafka, log)
		defer producer.Close()
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userDB := &authdb.DB{Bun: bunDB}
	venueDB := &venuedb.DB{Bun: bunDB}
	eventDB := &eventdb.DB{Bun: bunDB}
	bookingDB := &bookingdb.DB{Bun: bunDB}

	authService := auth.NewService(userDB, issuer)
	venueService := venues.NewVenueService(venueDB)
	eventService := events.NewEventService(eventDB, venueDB, userDB)

	var publisher bookings.KafkaPublisher
	if producer != nil {
		publisher = producer
	}
	bookingService := bookings.NewBookingService(
		bookingDB, eventDB, venueDB, userDB,
		bookingredis.NewRedis(redisClient),
		publisher, log,
	)

	authHandler := auth_api.NewHandler(authService, log)
	venueHandler := venue_api.NewHandler(venueService, log)
	eventHandler := event_api.NewHandler(eventService, log)
	bookingHandler := booking_api.NewHandler(bookingService, pass.NewGenerator(cfg.Auth.QRSecret), log)

	authed := auth.Middleware(issuer)

	r := chi.NewRouter()
	r.Use(log.RequestLogger)

	r.Get("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Campus Hub API is running"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/api/venues", func(r chi.Router) {
		r.Get("/", venueHandler.ListVenues)
		r.Group(func(r chi.Router) {
			r.Use(authed, auth.RequireRole(models.RoleAdmin))
			r.Post("/", venueHandler.CreateVenue)
			r.Patch("/{venueId}/deactivate", venueHandler.DeactivateVenue)
		})
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Group(func(r chi.Router) {
			r.Use(authed, auth.RequireRole(models.RoleClubHead, models.RoleFaculty))
			r.Post("/", eventHandler.CreateEvent)
		})
		r.Group(func(r chi.Router) {
			r.Use(authed, auth.RequireRole(models.RoleClubHead, models.RoleFaculty, models.RoleAdmin))
			r.Get("/mine", eventHandler.ListMyEvents)
			r.Get("/{eventId}", eventHandler.GetEvent)
			r.Patch("/{eventId}", eventHandler.UpdateEvent)
			r.Delete("/{eventId}", eventHandler.DeleteEvent)
		})
	})

	r.Route("/api/bookings", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authed, auth.RequireRole(models.RoleClubHead, models.RoleFaculty))
			r.Post("/", bookingHandler.CreateBooking)
			r.Get("/mine", bookingHandler.ListMyBookings)
		})
		r.Group(func(r chi.Router) {
			r.Use(authed, auth.RequireRole(models.RoleAdmin))
			r.Get("/pending", bookingHandler.ListPendingBookings)
			r.Patch("/{bookingId}/decision", bookingHandler.DecideBooking)
		})
		r.Group(func(r chi.Router) {
			r.Use(authed, auth.RequireRole(models.RoleClubHead, models.RoleFaculty, models.RoleAdmin))
			r.Get("/{bookingId}/pass", bookingHandler.BookingPass)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Campus Hub API on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Campus Hub shutdown complete")
}
