package config

import (
	"time"

	"github.com/spf13/viper"
)

// Kafka holds the brokers task notifications are written to. Topic is the
// default used when notify.kafka_topic is not set.
type Kafka struct {
	Brokers        []string      `json:"brokers" yaml:"brokers"`
	ClientID       string        `json:"client_id" yaml:"client_id"`
	Topic          string        `json:"topic" yaml:"topic"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

func getKafkaConfigs(v *viper.Viper) *Kafka {
	const prefix = "data.kafka."
	clientID := v.GetString(prefix + "client_id")
	if clientID == "" {
		clientID = "taskdesk"
	}
	return &Kafka{
		Brokers:        v.GetStringSlice(prefix + "brokers"),
		ClientID:       clientID,
		Topic:          v.GetString(prefix + "topic"),
		ConnectTimeout: durationOr(v, prefix+"connect_timeout", 10*time.Second),
		WriteTimeout:   durationOr(v, prefix+"write_timeout", 10*time.Second),
	}
}
