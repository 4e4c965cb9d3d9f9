package rabbitmq

import (
	"testing"

	"github.com/ncobase/taskdesk/data/config"
)

func TestBuildURL(t *testing.T) {
	cases := []struct {
		cfg  config.RabbitMQ
		want string
	}{
		{config.RabbitMQ{URL: "amqp://guest:guest@mq:5672/"}, "amqp://guest:guest@mq:5672/"},
		{config.RabbitMQ{URL: "mq:5672", Username: "app", Password: "pw", Vhost: "tasks"}, "amqp://app:pw@mq:5672/tasks"},
		{config.RabbitMQ{URL: "mq:5672"}, "amqp://mq:5672/"},
	}
	for _, tc := range cases {
		got, err := BuildURL(&tc.cfg)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("BuildURL(%+v) = %q, want %q", tc.cfg, got, tc.want)
		}
	}
	if _, err := BuildURL(&config.RabbitMQ{}); err == nil {
		t.Error("empty URL accepted")
	}
}
