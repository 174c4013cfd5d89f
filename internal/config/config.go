package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	Env             string
	LogLevel        string
	DBDSN           string
	DBMaxConns      int32
	RedisURL        string
	AMQPURL         string
	JWTSecret       string
	JWTTTL          time.Duration
	StatsCacheTTL   time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// IsDevelopment indica se detalhes internos podem ser expostos nas respostas.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.Env = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "development")))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	maxConns, err := parseIntEnv("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		return nil, errors.New("DB_MAX_CONNS inválido")
	}
	cfg.DBMaxConns = int32(maxConns)

	// Redis e AMQP são opcionais: sem URL, cache e eventos ficam desligados.
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	cfg.AMQPURL = strings.TrimSpace(getEnv("AMQP_URL", ""))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	ttl, err := parseDurationEnv("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTTTL = ttl

	statsTTL, err := parseDurationEnv("STATS_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.StatsCacheTTL = statsTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic, err = parseRateLimit("RATE_LIMIT_PUBLIC", RateLimitConfig{RequestsPerSecond: 10, Burst: 20})
	if err != nil {
		return nil, err
	}
	cfg.RateLimitAuth, err = parseRateLimit("RATE_LIMIT_AUTH", RateLimitConfig{RequestsPerSecond: 10, Burst: 40})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return n, nil
}

func parseRateLimit(prefix string, def RateLimitConfig) (RateLimitConfig, error) {
	out := def
	if val := strings.TrimSpace(getEnv(prefix+"_RPS", "")); val != "" {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil || rps <= 0 {
			return RateLimitConfig{}, errors.New(prefix + "_RPS inválido")
		}
		out.RequestsPerSecond = rps
	}
	burst, err := parseIntEnv(prefix+"_BURST", def.Burst)
	if err != nil || burst <= 0 {
		return RateLimitConfig{}, errors.New(prefix + "_BURST inválido")
	}
	out.Burst = burst
	return out, nil
}
