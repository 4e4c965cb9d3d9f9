package config

import (
	"time"

	"github.com/spf13/viper"
)

// Backend selects where signed-in users' tasks live.
type Backend struct {
	// Driver is one of sql, mongo, postgrest or memory.
	Driver    string
	PostgREST *PostgREST
	Breaker   *Breaker
}

// PostgREST is a Supabase-compatible REST endpoint.
type PostgREST struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Breaker configures the circuit breaker around the backend.
type Breaker struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	Failures    uint32
}

func getBackendConfig(v *viper.Viper) *Backend {
	return &Backend{
		Driver: getStringOrDefault(v, "backend.driver", "memory"),
		PostgREST: &PostgREST{
			URL:     v.GetString("backend.postgrest.url"),
			APIKey:  v.GetString("backend.postgrest.api_key"),
			Timeout: getDurationOrDefault(v, "backend.postgrest.timeout", 10*time.Second),
		},
		Breaker: &Breaker{
			MaxRequests: getUint32OrDefault(v, "backend.breaker.max_requests", 1),
			Interval:    getDurationOrDefault(v, "backend.breaker.interval", time.Minute),
			Timeout:     getDurationOrDefault(v, "backend.breaker.timeout", 30*time.Second),
			Failures:    getUint32OrDefault(v, "backend.breaker.failures", 5),
		},
	}
}
