package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("notifyd", flag.ContinueOnError)
	f, err := parseFlags(fs, []string{"-listen", ":9999", "-store", "sqlite", "-store-dsn", "x.db", "-check-config"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if f.listen != ":9999" || f.storeDriver != "sqlite" || f.storeDSN != "x.db" || !f.checkConfig {
		t.Fatalf("unexpected flags: %+v", f)
	}
	if f.envFile != ".env" {
		t.Fatalf("expected default env file, got %q", f.envFile)
	}
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "notifyd.yaml")
	if err := os.WriteFile(cfgPath, []byte("listen_addr: \":7000\"\nstore_driver: file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NOTIFY_LISTEN_ADDR", ":7100")
	t.Setenv("NOTIFY_STORE_DRIVER", "sqlite")

	cfg, err := loadConfig(cliFlags{configFile: cfgPath, envFile: filepath.Join(dir, "none.env"), listen: ":7200"})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":7200" {
		t.Fatalf("flag should win, got %q", cfg.ListenAddr)
	}
	if cfg.StoreDriver != "sqlite" {
		t.Fatalf("env should override file, got %q", cfg.StoreDriver)
	}
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("NOTIFY_REDIS_TTL", "later")
	if _, err := loadConfig(cliFlags{}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(cliFlags{configFile: filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
