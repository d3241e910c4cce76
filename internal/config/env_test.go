package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"SHRUB_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SHRUB_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadServe(t *testing.T) {
	t.Setenv("SHRUB_STORE", "redis")
	t.Setenv("SHRUB_REDIS_TTL", "90s")
	t.Setenv("SHRUB_DISTRIBUTED_LOCK", "true")

	cfg, err := LoadServe()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.RedisTTL != 90*time.Second {
		t.Errorf("expected 90s ttl, got %v", cfg.RedisTTL)
	}
	if !cfg.DistributedLock {
		t.Error("expected distributed lock")
	}
}

var testKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestEncryptionKeys(t *testing.T) {
	t.Setenv("SHRUB_ENCRYPTION_KEY", testKey)
	t.Setenv("SHRUB_ENCRYPTION_FALLBACK_KEYS", testKey+","+testKey)
	t.Setenv("SHRUB_MASK_KEYS", "password,ssn")

	cfg, err := LoadServe()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(active) != 32 || len(fallback) != 2 {
		t.Errorf("expected one active and two fallback keys, got %d and %d", len(active), len(fallback))
	}
	if len(cfg.MaskKeys) != 2 || cfg.MaskKeys[1] != "ssn" {
		t.Errorf("unexpected mask keys %v", cfg.MaskKeys)
	}

	active, fallback, err = Serve{}.EncryptionKeys()
	if err != nil || active != nil || fallback != nil {
		t.Errorf("expected encryption off, got %v %v %v", active, fallback, err)
	}
}

func TestServeValidate(t *testing.T) {
	cases := map[string]Serve{
		"unknown store":      {Store: "etcd"},
		"file without dir":   {Store: StoreFile},
		"lock without redis": {Store: StoreMemory, DistributedLock: true},
		"short key":          {Store: StoreMemory, EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short"))},
		"key not base64":     {Store: StoreMemory, EncryptionKey: "%%%"},
		"fallback only":      {Store: StoreMemory, EncryptionFallbackKeys: []string{testKey}},
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if err := (Serve{Store: StoreFile, Dir: "x"}).Validate(); err != nil {
		t.Errorf("file store: %v", err)
	}
}
