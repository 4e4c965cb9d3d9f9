package config

import (
	"time"

	"github.com/spf13/viper"
)

// Notify configures the notification hub and its sinks.
type Notify struct {
	// Sinks lists enabled sinks: websocket, log, redis, kafka, rabbitmq.
	Sinks            []string
	KafkaTopic       string
	RabbitMQExchange string
	RedisChannel     string
	Buffer           int
	Workers          int
	Timeout          time.Duration
}

// Enabled reports whether sink is listed.
func (n *Notify) Enabled(sink string) bool {
	for _, s := range n.Sinks {
		if s == sink {
			return true
		}
	}
	return false
}

func getNotifyConfig(v *viper.Viper) *Notify {
	return &Notify{
		Sinks:            v.GetStringSlice("notify.sinks"),
		KafkaTopic:       getStringOrDefault(v, "notify.kafka_topic", "taskdesk.notifications"),
		RabbitMQExchange: getStringOrDefault(v, "notify.rabbitmq_exchange", "taskdesk.notifications"),
		RedisChannel:     getStringOrDefault(v, "notify.redis_channel", "taskdesk:notifications"),
		Buffer:           getIntOrDefault(v, "notify.buffer", 256),
		Workers:          getIntOrDefault(v, "notify.workers", 2),
		Timeout:          getDurationOrDefault(v, "notify.timeout", 5*time.Second),
	}
}
