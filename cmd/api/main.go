package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/bins"
	"github.com/gestaozabele/coleta/internal/config"
	"github.com/gestaozabele/coleta/internal/db"
	"github.com/gestaozabele/coleta/internal/events"
	internalhttp "github.com/gestaozabele/coleta/internal/http"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/service"
	"github.com/gestaozabele/coleta/internal/trucks"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
		return fmt.Errorf("config: %w", err)
	}
	setupLogger(cfg)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
	} else {
		log.Warn().Msg("REDIS_URL vazio: cache de estatísticas desligado")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			return fmt.Errorf("amqp: %w", err)
		}
		publisher = amqpPublisher
	} else {
		log.Warn().Msg("AMQP_URL vazio: eventos de lixeiras desligados")
	}
	defer publisher.Close()

	queries := repo.New(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	handler, err := internalhttp.NewRouter(internalhttp.Deps{
		Config:   cfg,
		DB:       pool,
		Redis:    redisClient,
		Auth:     service.NewAuthService(queries, jwtManager),
		Citizens: service.NewCitizenService(queries),
		Bins:     bins.NewService(bins.NewRepository(pool), redisClient, cfg.StatsCacheTTL, publisher),
		Trucks:   trucks.NewService(trucks.NewRepository(pool)),
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("env", cfg.Env).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogger usa saída legível em desenvolvimento e JSON nos demais ambientes.
func setupLogger(cfg *config.Config) {
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		log.Warn().Str("level", cfg.LogLevel).Msg("LOG_LEVEL inválido, usando info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
