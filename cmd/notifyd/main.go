package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/config"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/daemon"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// cliFlags have the highest precedence: flags > env > file > defaults.
type cliFlags struct {
	configFile  string
	envFile     string
	listen      string
	storeDriver string
	storeDSN    string
	checkConfig bool
}

func parseFlags(fs *flag.FlagSet, args []string) (cliFlags, error) {
	var f cliFlags
	fs.StringVar(&f.configFile, "config", "", "Path to YAML config file")
	fs.StringVar(&f.envFile, "env", ".env", "Path to .env file (ignored when missing)")
	fs.StringVar(&f.listen, "listen", "", "HTTP listen address, e.g. :8080")
	fs.StringVar(&f.storeDriver, "store", "", "Store driver: memory, file, sqlite or postgres")
	fs.StringVar(&f.storeDSN, "store-dsn", "", "Store path or connection string")
	fs.BoolVar(&f.checkConfig, "check-config", false, "print configuration warnings and exit")
	err := fs.Parse(args)
	return f, err
}

func loadConfig(f cliFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return nil, err
	}
	cfg := config.DefaultConfig()
	if f.configFile != "" {
		c, err := config.LoadConfigFromFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed loading config: %w", err)
		}
		cfg = c
	}
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	if f.listen != "" {
		cfg.ListenAddr = f.listen
	}
	if f.storeDriver != "" {
		cfg.StoreDriver = f.storeDriver
	}
	if f.storeDSN != "" {
		cfg.StoreDSN = f.storeDSN
	}
	return cfg, nil
}

func main() {
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatal(err)
	}

	if f.checkConfig {
		warnings := cfg.Validate()
		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		if len(warnings) == 0 {
			fmt.Println("configuration ok")
		}
		return
	}

	cleanup, err := logging.InitWithRotation(cfg.LogFile, cfg.LogLevel, logging.Rotation{
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	d, err := daemon.New(context.Background(), cfg)
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("failed to build notifyd")
	}
	if err := d.Start(); err != nil {
		logging.Get().Fatal().Err(err).Msg("failed to start notifyd")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logging.Get().Info().Msg("shutdown signal received, waiting for active operations to complete")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	d.Stop(ctx)
}
