package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	kafkain "dispatch/internal/adapters/in/kafka"
	mqttin "dispatch/internal/adapters/in/mqtt"
	kafkaout "dispatch/internal/adapters/out/kafka"
	mqttout "dispatch/internal/adapters/out/mqtt"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/offerrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	config := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	gormDB := mustConnectDB(config)

	publisher, err := kafkaout.NewSaramaEventPublisher(
		config.KafkaBrokers, config.KafkaOrderEventsTopic, config.KafkaTrackingTopic)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}
	defer func() {
		_ = publisher.Close()
	}()

	notifier, err := mqttout.NewOfferNotifier(config.MqttBrokerURL, config.MqttClientID+"-offers")
	if err != nil {
		log.Fatalf("Failed to connect offer notifier: %v", err)
	}
	defer notifier.Close()

	root, err := cmd.NewCompositionRoot(config, gormDB, publisher, notifier, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = root.WarmUp(ctx); err != nil {
		log.Fatalf("Failed to warm up from storage: %v", err)
	}

	locationConsumer, err := mqttin.NewLocationConsumer(
		config.MqttBrokerURL, config.MqttClientID+"-locations",
		root.CreateReportLocationCommandHandler(), logger)
	if err != nil {
		log.Fatalf("Failed to connect location consumer: %v", err)
	}
	if err = locationConsumer.Start(); err != nil {
		log.Fatalf("Failed to subscribe to location topics: %v", err)
	}
	defer locationConsumer.Close()

	orderConsumer, err := kafkain.NewOrderConsumer(
		config.KafkaBrokers, config.KafkaConsumerGroup, config.KafkaOrderCreatedTopic,
		root.CreateCreateOrderCommandHandler(), root.CreateDispatchOrderCommandHandler(), logger)
	if err != nil {
		log.Fatalf("Failed to create order consumer: %v", err)
	}
	go func() {
		if runErr := orderConsumer.Run(ctx); runErr != nil {
			logger.Error("order consumer stopped", "error", runErr)
		}
	}()
	defer func() {
		_ = orderConsumer.Close()
	}()

	jobManager := jobs.NewJobManager(
		root.CreateDispatchOrderCommandHandler(),
		root.CreateSweepStaleCouriersCommandHandler(),
		config.StaleCourierTTL,
		logger,
	)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, root, config.HTTPPort, logger)
}

func startWebServer(ctx context.Context, root *cmd.CompositionRoot, port string, logger *slog.Logger) {
	server := httpin.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateCancelOrderCommandHandler(),
		root.CreateMarkOrderPickedUpCommandHandler(),
		root.CreateCompleteOrderCommandHandler(),
		root.CreateSetCourierOnlineCommandHandler(),
		root.CreateSetCourierOfflineCommandHandler(),
		root.CreateAcceptOfferCommandHandler(),
		root.CreateDeclineOfferCommandHandler(),
		root.CreateReportLocationCommandHandler(),
		root.CreateGetActiveOrdersQueryHandler(),
		root.CreateGetAvailableCouriersQueryHandler(),
	)

	e := echo.New()
	server.RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
			logger.Info("http server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
}

func mustConnectDB(config cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName, config.DBSslMode)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &courierrepo.CourierDTO{}, &offerrepo.OfferDTO{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return gormDB
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Fatalf("Error loading .env file")
	}

	return cmd.Config{
		HTTPPort:   envString("HTTP_PORT"),
		DBHost:     envString("DB_HOST"),
		DBPort:     envString("DB_PORT"),
		DBUser:     envString("DB_USER"),
		DBPassword: envString("DB_PASSWORD"),
		DBName:     envString("DB_NAME"),
		DBSslMode:  envString("DB_SSLMODE"),

		KafkaBrokers:           strings.Split(envString("KAFKA_BROKERS"), ","),
		KafkaConsumerGroup:     envString("KAFKA_CONSUMER_GROUP"),
		KafkaOrderCreatedTopic: envString("KAFKA_ORDER_CREATED_TOPIC"),
		KafkaOrderEventsTopic:  envString("KAFKA_ORDER_EVENTS_TOPIC"),
		KafkaTrackingTopic:     envString("KAFKA_TRACKING_TOPIC"),

		MqttBrokerURL: envString("MQTT_BROKER_URL"),
		MqttClientID:  envString("MQTT_CLIENT_ID"),

		MaxRadiusKm:    envFloat("DISPATCH_MAX_RADIUS_KM", 5.0),
		DistanceWeight: envFloat("DISPATCH_DISTANCE_WEIGHT", 0.7),
		RateWeight:     envFloat("DISPATCH_RATE_WEIGHT", 0.3),
		OfferTTL:       envDuration("DISPATCH_OFFER_TTL", 15*time.Second),

		TrackingMinMoveMeters: envFloat("TRACKING_MIN_MOVE_METERS", 20.0),
		TrackingMinInterval:   envDuration("TRACKING_MIN_INTERVAL", 5*time.Second),

		StaleCourierTTL: envDuration("STALE_COURIER_TTL", 2*time.Minute),
	}
}

func envString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return value
}
