package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=money_transfer_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "TransferApp"
const defaultChannelKey = "TransferKey001"
const defaultSchedulerInterval = 5 * time.Second
const defaultMigrationsDir = "migrations"

type Config struct {
	DatabaseDSN       string
	MigrationsDir     string
	StorageBackend    string
	HTTPAddr          string
	ChannelID         string
	ChannelKeyHash    string
	SchedulerInterval time.Duration
	KafkaBrokers      []string
	KafkaTopic        string
}

func Load() (Config, error) {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	migrationsDir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if migrationsDir == "" {
		migrationsDir = defaultMigrationsDir
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	if backend == "" {
		backend = "postgres"
	}
	if backend != "postgres" && backend != "memory" {
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND %q", backend)
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}

	channelID := strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if channelID == "" {
		channelID = defaultChannelID
	}

	channelKeyHash, err := resolveChannelKeyHash()
	if err != nil {
		return Config{}, err
	}

	interval := defaultSchedulerInterval
	if raw := strings.TrimSpace(os.Getenv("SCHEDULER_INTERVAL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse SCHEDULER_INTERVAL: %w", err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("SCHEDULER_INTERVAL must be positive")
		}
		interval = parsed
	}

	var brokers []string
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if b := strings.TrimSpace(broker); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	topic := strings.TrimSpace(os.Getenv("KAFKA_TOPIC"))
	if topic == "" {
		topic = "transaction_completed"
	}

	return Config{
		DatabaseDSN:       normalizeConnectionString(conn),
		MigrationsDir:     migrationsDir,
		StorageBackend:    backend,
		HTTPAddr:          httpAddr,
		ChannelID:         channelID,
		ChannelKeyHash:    channelKeyHash,
		SchedulerInterval: interval,
		KafkaBrokers:      brokers,
		KafkaTopic:        topic,
	}, nil
}

// resolveChannelKeyHash prefers a pre-computed bcrypt hash from the
// environment; otherwise the plaintext key (or the development default) is
// hashed at load so the plaintext never lives on the Config.
func resolveChannelKeyHash() (string, error) {
	if hash := strings.TrimSpace(os.Getenv("CHANNEL_KEY_HASH")); hash != "" {
		return hash, nil
	}

	key := strings.TrimSpace(os.Getenv("CHANNEL_KEY"))
	if key == "" {
		key = defaultChannelKey
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash channel key: %w", err)
	}

	return string(hashed), nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
