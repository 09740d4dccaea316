package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Queue.QueueName != "campaign_launches" {
		t.Errorf("Queue.QueueName = %q, want campaign_launches", cfg.Queue.QueueName)
	}
	if cfg.Dispatcher.MaxInFlight != 3 {
		t.Errorf("Dispatcher.MaxInFlight = %d, want 3", cfg.Dispatcher.MaxInFlight)
	}
	if cfg.Dispatcher.DefaultSendDelay != 3*time.Second {
		t.Errorf("Dispatcher.DefaultSendDelay = %v, want 3s", cfg.Dispatcher.DefaultSendDelay)
	}
	if cfg.Dispatcher.SendTimeout != 30*time.Second {
		t.Errorf("Dispatcher.SendTimeout = %v, want 30s", cfg.Dispatcher.SendTimeout)
	}
	if cfg.Scheduler.PollInterval != 30*time.Second {
		t.Errorf("Scheduler.PollInterval = %v, want 30s", cfg.Scheduler.PollInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISPATCH_MAX_IN_FLIGHT", "5")
	t.Setenv("BOT_SEND_DELAY_MS", "1500")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dispatcher.MaxInFlight != 5 {
		t.Errorf("Dispatcher.MaxInFlight = %d, want 5", cfg.Dispatcher.MaxInFlight)
	}
	if cfg.Dispatcher.DefaultSendDelay != 1500*time.Millisecond {
		t.Errorf("Dispatcher.DefaultSendDelay = %v, want 1.5s", cfg.Dispatcher.DefaultSendDelay)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("DISPATCH_SEND_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("Load() with invalid DISPATCH_SEND_TIMEOUT = nil, want error")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "wacrm", Password: "secret",
		DBName: "wacrm", SSLMode: "disable",
	}

	want := "host=localhost port=5432 user=wacrm password=secret dbname=wacrm sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
