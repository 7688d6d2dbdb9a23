package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Analog scenario configuration.
	ReferenceSID    string
	NPoints         int
	Eps             float64
	MinSamples      int
	NComponents     int
	TopN            int
	WindBoost       float64
	RMWShrink       float64
	AnalogPoolSize  int
	EncodeCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	nPoints, err := parseIntEnv("N_POINTS", 20, 1)
	if err != nil {
		return nil, err
	}
	minSamples, err := parseIntEnv("MIN_SAMPLES", 3, 1)
	if err != nil {
		return nil, err
	}
	nComponents, err := parseIntEnv("N_COMPONENTS", 10, 1)
	if err != nil {
		return nil, err
	}
	topN, err := parseIntEnv("TOP_N", 5, 1)
	if err != nil {
		return nil, err
	}
	poolSize, err := parseIntEnv("ANALOG_POOL_SIZE", 50, 2)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseIntEnv("ENCODE_CACHE_SIZE", 1000, 0)
	if err != nil {
		return nil, err
	}

	eps, err := parseFloatEnv("EPS", 1.0)
	if err != nil {
		return nil, err
	}
	windBoost, err := parseFloatEnv("WIND_BOOST", 1.15)
	if err != nil {
		return nil, err
	}
	rmwShrink, err := parseFloatEnv("RMW_SHRINK", 0.85)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "historical-cyclone-tracks"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "synthetic-scenario-tracks"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "cyclone-analog"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ReferenceSID:    os.Getenv("REFERENCE_SID"),
		NPoints:         nPoints,
		Eps:             eps,
		MinSamples:      minSamples,
		NComponents:     nComponents,
		TopN:            topN,
		WindBoost:       windBoost,
		RMWShrink:       rmwShrink,
		AnalogPoolSize:  poolSize,
		EncodeCacheSize: cacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ReferenceSID == "" {
		return nil, errors.New("REFERENCE_SID is required")
	}
	if cfg.WindBoost <= 0 {
		return nil, errors.New("WIND_BOOST must be positive")
	}
	if cfg.RMWShrink <= 0 {
		return nil, errors.New("RMW_SHRINK must be positive")
	}

	return cfg, nil
}

func parseIntEnv(name string, def, min int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return n, nil
}

func parseFloatEnv(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, nil
}
