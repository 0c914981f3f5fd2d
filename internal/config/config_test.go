package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("ESTATEHUB_JWT_SECRET", "0123456789abcdef-secret")

	yamlContent := `
database:
  path: "test.db"
api:
  auth:
    jwt_secret: "${ESTATEHUB_JWT_SECRET}"
booking:
  capacity_policy: room_count
telegram:
  notify_chat_ids: [100, 200]
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.Auth.JWTSecret != "0123456789abcdef-secret" {
		t.Errorf("expected expanded jwt secret, got %q", cfg.API.Auth.JWTSecret)
	}
	if cfg.Booking.CapacityPolicy != "room_count" {
		t.Errorf("expected room_count policy, got %s", cfg.Booking.CapacityPolicy)
	}
	if len(cfg.Telegram.NotifyChatIDs) != 2 {
		t.Errorf("expected 2 notify chats, got %d", len(cfg.Telegram.NotifyChatIDs))
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.Booking.CapacityPolicy != "guest_count" {
		t.Errorf("expected guest_count policy, got %s", cfg.Booking.CapacityPolicy)
	}
	if cfg.Booking.MinCancelNotice() != 24*time.Hour {
		t.Errorf("expected 24h cancel notice, got %v", cfg.Booking.MinCancelNotice())
	}
	if cfg.Booking.MaxBookingDays != 365 {
		t.Errorf("expected 365 max booking days, got %d", cfg.Booking.MaxBookingDays)
	}
	if cfg.API.HTTP.Port != 8080 || cfg.API.GRPC.Port != 8081 {
		t.Errorf("unexpected ports http=%d grpc=%d", cfg.API.HTTP.Port, cfg.API.GRPC.Port)
	}
	if cfg.API.Auth.TokenTTL() != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.API.Auth.TokenTTL())
	}
	if cfg.Booking.AttemptWindow() != time.Minute {
		t.Errorf("expected 1m attempt window, got %v", cfg.Booking.AttemptWindow())
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		var c Config
		c.applyDefaults()
		c.Database.Path = "db.sqlite"
		c.API.Auth.JWTSecret = "0123456789abcdef"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing db path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "short secret", mutate: func(c *Config) { c.API.Auth.JWTSecret = "short" }, wantErr: true},
		{name: "unknown policy", mutate: func(c *Config) { c.Booking.CapacityPolicy = "beds" }, wantErr: true},
		{name: "negative notice", mutate: func(c *Config) { c.Booking.MinCancelNoticeHours = -1 }, wantErr: true},
		{
			name: "bad backup interval",
			mutate: func(c *Config) {
				c.Backup.Enabled = true
				c.Backup.Interval = "daily"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
