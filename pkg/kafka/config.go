package kafka

import "time"

// Config holds Kafka producer parameters.
type Config struct {
	// ClientID identifies this service in broker logs.
	ClientID string

	Brokers []string

	// WriteTimeout bounds a single write; zero keeps the kafka-go default (10s).
	WriteTimeout time.Duration

	// MaxAttempts is the number of delivery attempts per batch before giving up.
	MaxAttempts int

	AllowAutoTopicCreation bool
}
