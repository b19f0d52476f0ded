package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/infrastructure/pooling"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/kafka"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/tracing"
)

const serviceName = "tms-core"

// Config holds application configuration
type Config struct {
	ServerAddr      string
	LogLevel        logging.LogLevel
	DefaultLanguage string
	MongoDB         *mongodb.Config
	Kafka           *kafka.Config
	Pooling         *pooling.Config
	Tracing         *tracing.Config
}

// loadConfig reads the environment. A .env file in the working directory is
// applied first when present; real environment variables win over it.
func loadConfig() *Config {
	_ = godotenv.Load()

	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", mongoConfig.URI)
	mongoConfig.Database = getEnv("MONGODB_DATABASE", mongoConfig.Database)
	mongoConfig.ReplicaSet = getEnv("MONGODB_REPLICA_SET", "")
	mongoConfig.CommitTimeout = getDuration("MONGODB_COMMIT_TIMEOUT", mongoConfig.CommitTimeout)

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaConfig.ClientID = serviceName

	poolingConfig := pooling.DefaultConfig(getEnv("POOLING_BASE_URL", "http://localhost:8090"))
	poolingConfig.Timeout = getDuration("POOLING_TIMEOUT", poolingConfig.Timeout)

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", tracingConfig.OTLPEndpoint)
	tracingConfig.Environment = getEnv("ENVIRONMENT", tracingConfig.Environment)
	tracingConfig.Enabled = getBool("TRACING_ENABLED", true)
	tracingConfig.SampleRate = getFloat("TRACING_SAMPLE_RATE", tracingConfig.SampleRate)

	return &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		LogLevel:        logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		MongoDB:         mongoConfig,
		Kafka:           kafkaConfig,
		Pooling:         poolingConfig,
		Tracing:         tracingConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}
