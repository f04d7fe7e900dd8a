package config

import (
	"encoding/base64"
	"fmt"
	"time"
)

const defaultOpTimeout = 5 * time.Second

type Config struct {
	ServerAddr     string
	MongoURI       string
	MongoDatabase  string
	SigningKey     []byte
	AllowedOrigins []string
	KafkaBrokers   []string
	KafkaTopic     string
	OpTimeout      time.Duration
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, mongoURI, mongoDatabase, base64Secret string,
	allowedOrigins, kafkaBrokers []string, kafkaTopic string, opTimeout time.Duration) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if mongoURI == "" {
		return nil, fmt.Errorf("mongo URI cannot be empty")
	}
	if mongoDatabase == "" {
		return nil, fmt.Errorf("mongo database cannot be empty")
	}
	if len(kafkaBrokers) > 0 && kafkaTopic == "" {
		return nil, fmt.Errorf("kafka topic is required when brokers are set")
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		MongoURI:       mongoURI,
		MongoDatabase:  mongoDatabase,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		KafkaBrokers:   kafkaBrokers,
		KafkaTopic:     kafkaTopic,
		OpTimeout:      opTimeout,
	}, nil
}
