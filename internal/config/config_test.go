package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SALON_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GRPCAddr() != "0.0.0.0:50051" {
		t.Fatalf("GRPCAddr = %q", cfg.GRPCAddr())
	}
	if cfg.StoreDriver != StoreDriverPostgres || cfg.HTTPAddr != ":8080" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Hours.OpenHour != 10 || cfg.Hours.LastStartHour != 18 || cfg.Hours.CloseHour != 19 || cfg.Hours.Location != time.UTC {
		t.Fatalf("hours = %+v", cfg.Hours)
	}
	if cfg.CatalogTTL != 5*time.Minute || cfg.GRPCRequestTimeout != 10*time.Second {
		t.Fatalf("durations = %v %v", cfg.CatalogTTL, cfg.GRPCRequestTimeout)
	}
	if cfg.RedisAddr != "" || len(cfg.KafkaBrokers) != 0 || cfg.OTelEnabled {
		t.Fatalf("optional integrations enabled by default: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SALON_TIMEZONE", "Europe/Warsaw")
	t.Setenv("GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("SALON_STORE_DRIVER", "Memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SALON_OPEN_HOUR", "9")
	t.Setenv("SALON_REDIS_CATALOG_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GRPCAddr() != "127.0.0.1:6000" {
		t.Fatalf("GRPCAddr = %q", cfg.GRPCAddr())
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.Hours.OpenHour != 9 || cfg.Hours.Location.String() != "Europe/Warsaw" {
		t.Fatalf("hours = %+v", cfg.Hours)
	}
	if cfg.CatalogTTL != 30*time.Second {
		t.Fatalf("CatalogTTL = %v", cfg.CatalogTTL)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "driver", env: map[string]string{"SALON_STORE_DRIVER": "mongo"}, want: "store.driver"},
		{name: "hours", env: map[string]string{"SALON_LAST_START_HOUR": "19"}, want: "salon hours"},
		{name: "timezone", env: map[string]string{"SALON_TIMEZONE": "Mars/Olympus"}, want: "salon.timezone"},
		{name: "duration", env: map[string]string{"SALON_SHUTDOWN_TIMEOUT": "soon"}, want: "shutdown.timeout"},
		{name: "sample ratio", env: map[string]string{"SALON_OTEL_SAMPLE_RATIO": "2"}, want: "otel.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SALON_TIMEZONE", "UTC")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
