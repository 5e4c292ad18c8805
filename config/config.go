package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	RPCURL         string // contract gateway JSON-RPC endpoint
	MessageAPIURL  string // message service base URL
	GroupID        int64
	Address        string
	AuthToken      string
	DBPath         string
	PollIntervalMs int
	LogLevel       string
}

func Load() *Config {
	// Local overrides; missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{
		RPCURL:         "http://localhost:8545",
		MessageAPIURL:  "http://localhost:8080",
		DBPath:         "fanhub.db",
		PollIntervalMs: 1000,
		LogLevel:       "info",
	}

	if url := os.Getenv("FANHUB_RPC_URL"); url != "" {
		cfg.RPCURL = url
	}

	if url := os.Getenv("FANHUB_MESSAGE_API_URL"); url != "" {
		cfg.MessageAPIURL = url
	}

	if idStr := os.Getenv("FANHUB_GROUP_ID"); idStr != "" {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			cfg.GroupID = id
		}
	}

	if addr := os.Getenv("FANHUB_ADDRESS"); addr != "" {
		cfg.Address = addr
	}

	if token := os.Getenv("FANHUB_AUTH_TOKEN"); token != "" {
		cfg.AuthToken = token
	}

	if path := os.Getenv("FANHUB_DB_PATH"); path != "" {
		cfg.DBPath = path
	}

	if msStr := os.Getenv("FANHUB_POLL_INTERVAL_MS"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil && ms > 0 {
			cfg.PollIntervalMs = ms
		}
	}

	if level := os.Getenv("FANHUB_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg
}
