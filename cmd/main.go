/**
 * @description
 * This is the main entry point for the banking service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, the Redis client, the RabbitMQ producer, the repository, the core
 * application service, the daily summary scheduler, and the HTTP server. It
 * wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/abbasmsh1/Banker/internal/api"
	"github.com/abbasmsh1/Banker/internal/app"
	"github.com/abbasmsh1/Banker/internal/config"
	"github.com/abbasmsh1/Banker/internal/store"
	"github.com/abbasmsh1/Banker/pkg/rabbitmq"
)

func main() {
	// Load .env first so viper and os.Getenv see the same values.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found; relying on environment\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"token secret must be configured\" env=TOKEN_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting banker\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	if err := store.EnsureSchema(context.Background(), dbpool); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"schema migration failed\" err=%v", err)
	}

	// Redis is optional: without it the service runs with login rate limiting
	// and idempotency replay disabled.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; rate limiting and idempotency disabled\" env=REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; rate limiting and idempotency disabled\" err=%v", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; rate limiting and idempotency disabled\" err=%v", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	// RabbitMQ is optional: transfer events are best-effort.
	var producer *rabbitmq.EventProducer
	if strings.TrimSpace(cfg.RabbitMQURL) != "" {
		producer, err = rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; transfer events disabled\" err=%v", err)
			producer = nil
		} else {
			defer producer.Close()
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}

	repository := store.NewPostgresRepository(dbpool)

	tokens := app.NewTokenManager(cfg.TokenSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	service := app.NewService(repository, tokens)
	if redisClient != nil && cfg.LoginRateLimitPerMinute > 0 {
		service.SetLoginRateLimiter(app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix, cfg.LoginRateLimitPerMinute, time.Minute))
	}
	if producer != nil {
		service.SetEventPublisher(producer, cfg.TransferEventExchange)
	}

	// Bootstrap the admin user when credentials are configured.
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := service.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"admin bootstrap failed\" err=%v", err)
		}
	}

	// Schedule the daily summary job.
	jobLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	scheduler := app.NewScheduler(app.NewJobs(repository, jobLogger), jobLogger, cfg.DailySummarySchedule)
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(service, redisClient, cfg.AllowedOrigins())

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
