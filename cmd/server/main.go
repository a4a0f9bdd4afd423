package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"

	"venuepos/backend/internal/cache"
	"venuepos/backend/internal/config"
	"venuepos/backend/internal/httpapi"
	"venuepos/backend/internal/notify"
	"venuepos/backend/internal/service"
	"venuepos/backend/internal/store"
	"venuepos/backend/internal/store/memory"
	pgstore "venuepos/backend/internal/store/postgres"
)

const producerName = "venuepos-backend"

func main() {
	cfg := config.Load()
	loc, err := cfg.Validate()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		if cfg.DBAutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				log.Fatalf("postgres migration failed: %v", err)
			}
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	var redisClient *redis.Client
	availability := cache.AvailabilityCache(cache.NoopAvailabilityCache{})
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		redisCache := cache.NewRedisAvailabilityCache(client)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
			_ = client.Close()
		} else {
			redisClient = client
			availability = redisCache
			closers = append(closers, client.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	dispatcher := notify.NewDispatcher(producerName, cfg.NotifyBuffer, notificationSinks(cfg, repo, redisClient)...)
	dispatcher.Start()

	svc := service.New(repo, dispatcher, availability, loc)
	svc.SetAvailabilityTTL(cfg.AvailabilityTTL)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin).WithLoginLimit(cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("venue POS backend listening on %s (timezone %s)", cfg.Address(), loc)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	// Flush queued notifications before the store and redis go away.
	dispatcher.Close()
	if dropped := dispatcher.Dropped(); dropped > 0 {
		log.Printf("notifications dropped during run: %d", dropped)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// notificationSinks always persists to the repository and fans out to every
// broker that is configured. A broker that cannot be reached at startup is
// skipped rather than failing the boot.
func notificationSinks(cfg config.Config, repo notify.NotificationWriter, redisClient *redis.Client) []notify.Sink {
	sinks := []notify.Sink{notify.NewStoreSink(repo)}

	if redisClient != nil {
		sinks = append(sinks, notify.NewRedisSink(redisClient, notify.DefaultRedisChannel))
	}
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	if cfg.RabbitMQURL != "" {
		rabbit, err := notify.NewRabbitSink(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.Printf("rabbitmq unavailable (%v), skipping sink", err)
		} else {
			sinks = append(sinks, rabbit)
		}
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	log.Printf("notification sinks: %v", names)
	return sinks
}
