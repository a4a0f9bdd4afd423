package main

import (
	"testing"

	redis "github.com/redis/go-redis/v9"

	"venuepos/backend/internal/config"
	"venuepos/backend/internal/store/memory"
)

func sinkNames(t *testing.T, cfg config.Config, client *redis.Client) []string {
	t.Helper()

	sinks := notificationSinks(cfg, memory.New(), client)
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	return names
}

func TestNotificationSinksDefaultsToStoreOnly(t *testing.T) {
	names := sinkNames(t, config.Config{}, nil)
	if len(names) != 1 || names[0] != "store" {
		t.Fatalf("expected only the store sink, got %v", names)
	}
}

func TestNotificationSinksAddsConfiguredBrokers(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	cfg := config.Config{KafkaBrokers: []string{"127.0.0.1:9092"}, KafkaTopic: "test.notifications"}
	names := sinkNames(t, cfg, client)

	want := []string{"store", "redis", "kafka"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sink %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestConfigValidateGuardsStartup(t *testing.T) {
	if _, err := (config.Config{AuthSecret: "short", BusinessTimezone: "UTC"}).Validate(); err == nil {
		t.Fatalf("expected weak secret to be rejected")
	}
	loc, err := (config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", BusinessTimezone: "Asia/Jakarta"}).Validate()
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if loc.String() != "Asia/Jakarta" {
		t.Fatalf("unexpected location %s", loc)
	}
}
