package cmd

import "time"

// Config carries every runtime setting of the dispatch service. Values are
// read from the environment in main and parsed once.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers           []string
	KafkaConsumerGroup     string
	KafkaOrderCreatedTopic string
	KafkaOrderEventsTopic  string
	KafkaTrackingTopic     string

	MqttBrokerURL string
	MqttClientID  string

	// Dispatch tunables.
	MaxRadiusKm    float64
	DistanceWeight float64
	RateWeight     float64
	OfferTTL       time.Duration

	// Tracking throttle.
	TrackingMinMoveMeters float64
	TrackingMinInterval   time.Duration

	// Couriers silent longer than this go offline.
	StaleCourierTTL time.Duration
}
