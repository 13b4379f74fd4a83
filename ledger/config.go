package ledger

import (
	"os"
	"strconv"
	"time"
)

// Config holds claimd settings, read from the environment.
type Config struct {
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string
	ServerPort       string
	JWTSecret        string
	TicketTTL        time.Duration

	RPCURL          string
	TokenConfigPath string
	KeypairPath     string
	TransferTimeout time.Duration

	// Plausibility bound: at most one coin per bonus spawn interval, plus one.
	BonusInterval time.Duration

	RateLimit float64 // requests per second per client IP
	RateBurst int
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseUser:     getEnv("DATABASE_USER", "postgres"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "password"),
		DatabaseName:     getEnv("DATABASE_NAME", "poopdodge"),
		DatabaseSSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		RPCURL:           getEnv("REWARD_RPC_URL", "https://api.devnet.solana.com"),
		TokenConfigPath:  getEnv("REWARD_TOKEN_CONFIG", "token-config.json"),
		KeypairPath:      getEnv("REWARD_KEYPAIR", "reward-pool-keypair.json"),
	}

	var err error
	if cfg.TicketTTL, err = getDuration("TICKET_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TransferTimeout, err = getDuration("REWARD_TRANSFER_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.BonusInterval, err = getDuration("BONUS_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = strconv.ParseFloat(getEnv("RATE_LIMIT", "2"), 64); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = strconv.Atoi(getEnv("RATE_BURST", "5")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}
