package config

type EventsConfig struct {
	KafkaEnabled bool     `yaml:"kafka_enabled"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	RedisChannel string   `yaml:"redis_channel"`
}

func loadEventsConfig() *EventsConfig {
	return &EventsConfig{
		KafkaEnabled: getEnvAsBool("KAFKA_ENABLED", false),
		KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_RIDE_EVENTS_TOPIC", "ride.events"),
		RedisChannel: getEnv("REDIS_RIDE_EVENTS_CHANNEL", "ride_events"),
	}
}
