package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_NAME", "REDIS_HOST", "REDIS_PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPort != "5432" {
		t.Fatalf("DBPort = %q, want 5432", cfg.DBPort)
	}
	if cfg.RedisPort != "6379" {
		t.Fatalf("RedisPort = %q, want 6379", cfg.RedisPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_NAME", "questhunt_test")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.DBName != "questhunt_test" {
		t.Fatalf("DBName = %q, want questhunt_test", cfg.DBName)
	}
}
