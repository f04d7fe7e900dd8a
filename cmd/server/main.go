package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/reelchat/reelchat/internal/api"
	"github.com/reelchat/reelchat/internal/config"
	"github.com/reelchat/reelchat/internal/database"
	"github.com/reelchat/reelchat/internal/events"
	"github.com/reelchat/reelchat/internal/server"
	"github.com/reelchat/reelchat/internal/stats"
	"go.uber.org/zap"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	mongoURI       string
	mongoDB        string
	signingKey     string
	allowedOrigins stringSliceFlag
	kafkaBrokers   stringSliceFlag
	kafkaTopic     string
	opTimeout      time.Duration
	dev            bool
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "mongodb connection URI")
	flag.StringVar(&mongoDB, "mongo-db", "reelchat", "mongodb database name")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Var(&kafkaBrokers, "kafka-brokers", "comma-separated list of kafka brokers (optional)")
	flag.StringVar(&kafkaTopic, "kafka-topic", "message.stored", "kafka topic for stored-message events")
	flag.DurationVar(&opTimeout, "op-timeout", 5*time.Second, "timeout for store-backed operations")
	flag.BoolVar(&dev, "dev", false, "enable development logging")
	flag.Parse()

	zapLogger, err := newLogger(dev)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	cfg, err := config.NewConfig(addr, mongoURI, mongoDB, signingKey,
		allowedOrigins, kafkaBrokers, kafkaTopic, opTimeout)
	if err != nil {
		logger.Fatalw("config", "error", err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbConn, err := database.NewMongoChatRepository(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		logger.Fatalw("connect to mongo", "error", err)
	}
	defer func() {
		if err := dbConn.Close(context.Background()); err != nil {
			logger.Errorw("close mongo connection", "error", err)
		}
	}()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Errorw("close event publisher", "error", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	chatServer, err := server.NewChatServer(logger, dbConn, publisher, statsUpdater, cfg.OpTimeout)
	if err != nil {
		logger.Fatalw("new chat server", "error", err)
	}

	srv := api.NewChatApp(mux, logger, chatServer, dbConn, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Infow("received signal", "signal", sig.String())
	case err := <-errCh:
		logger.Errorw("server", "error", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalw("http server shutdown", "error", err)
	}

	logger.Info("shutdown complete")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
