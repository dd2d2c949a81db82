package config

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Config is the runtime configuration of cafe-svc.
type Config struct {
	Addr     string
	LogLevel string
	Version  string

	EthAPIURL      string
	EthAPITimeout  time.Duration
	WalletRPCURL   string
	PinningAPIURL  string
	PinningGateway string
	PinningKey     string
	PinningSecret  string

	OrdersTopic  string
	SalesGroupID string

	BalanceCacheTTL time.Duration
	SessionTTL      time.Duration
	PublicURL       string

	// AdminToken guards the /api/admin routes. Empty disables them.
	AdminToken string
}

// Load reads the configuration from the environment, loading a .env file
// first when one is present.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:            getEnv("APP_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Version:         getEnv("APP_VERSION", "0.0.1"),
		EthAPIURL:       getEnv("ETH_API_URL", "https://ethereum-api.xyz"),
		EthAPITimeout:   getDuration("ETH_API_TIMEOUT", 30*time.Second),
		WalletRPCURL:    getEnv("WALLET_RPC_URL", "http://localhost:8545"),
		PinningAPIURL:   getEnv("PINNING_API_URL", "https://api.pinata.cloud"),
		PinningGateway:  getEnv("PINNING_GATEWAY_URL", "https://gateway.pinata.cloud"),
		PinningKey:      os.Getenv("PINATA_API_KEY"),
		PinningSecret:   os.Getenv("PINATA_API_SECRET"),
		OrdersTopic:     getEnv("KAFKA_ORDERS_TOPIC", "orders"),
		SalesGroupID:    getEnv("KAFKA_SALES_GROUP", "cafe-sales"),
		BalanceCacheTTL: getDuration("BALANCE_CACHE_TTL", time.Minute),
		SessionTTL:      getDuration("SESSION_TTL", 2*time.Hour),
		PublicURL:       getEnv("PUBLIC_URL", "http://localhost:8080"),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
	}
}

func MustInitPostgres() *sql.DB {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")

	connStr := "host=" + dbHost + " port=" + dbPort + " user=" + dbUser +
		" password=" + dbPassword + " dbname=" + dbName + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database: ", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	return client
}

func NewKafkaReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{os.Getenv("KAFKA_BROKER")},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(os.Getenv("KAFKA_BROKER")),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warnf("invalid duration %q for %s, using %s", value, key, defaultValue)
	return defaultValue
}
