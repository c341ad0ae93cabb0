// Package daemon assembles notifyd from configuration and owns its lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/cache"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/config"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/events"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/httpapi"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/metrics"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/notify"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/registry"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/templates"
)

// Daemon holds every long-lived component of notifyd.
type Daemon struct {
	cfg      *config.Config
	store    store.Store
	users    registry.UserDirectory
	redis    *redis.Client
	registry *registry.Registry
	mirror   *notify.Mirror
	handler  http.Handler
	consumer *events.Consumer

	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc // stops background loops started by Start
	wg       sync.WaitGroup
}

// New builds the daemon: store, directory cache, providers, chat mirror,
// registry and HTTP routes. Nothing listens until Start.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	for _, w := range cfg.Validate() {
		logging.Get().Warn().Str("warning", w).Msg("config validation")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &Daemon{cfg: cfg, store: st, users: st}

	seeded, err := seedUsers(ctx, st, cfg.SeedFile)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	if cfg.RedisAddr != "" {
		d.redis = cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		dir := cache.NewDirectory(st, d.redis, cfg.RedisTTL)
		for _, id := range seeded {
			if err := dir.Invalidate(ctx, id); err != nil {
				logging.Get().Warn().Err(err).Str("user", id).Msg("failed to invalidate cached user")
			}
		}
		d.users = dir
	}

	catalog, err := templates.Default()
	if err != nil {
		_ = d.closeBackends()
		return nil, err
	}

	d.mirror = buildMirror(cfg)
	var opts []registry.Option
	if d.mirror.Len() > 0 {
		logging.Get().Info().Int("services", d.mirror.Len()).Msg("staff chat mirror enabled")
		opts = append(opts, registry.WithBroadcaster(d.mirror))
	}
	d.registry = registry.New(d.users, st, buildEmail(cfg, catalog), buildSMS(cfg, st, catalog), opts...)

	api := httpapi.New(d.registry, d.users, st, d.healthChecks())
	api.ExposeMetrics = cfg.MetricsEnabled
	d.handler = api.Routes()
	return d, nil
}

// Registry returns the notification registry.
func (d *Daemon) Registry() *registry.Registry { return d.registry }

// Handler returns the HTTP routes.
func (d *Daemon) Handler() http.Handler { return d.handler }

// Addr returns the bound listen address once Start has run.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

func (d *Daemon) healthChecks() map[string]httpapi.Check {
	checks := map[string]httpapi.Check{
		"store": func(ctx context.Context) error {
			_, err := d.store.ListStaffAndAdmins(ctx)
			return err
		},
	}
	if d.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return d.redis.Ping(ctx).Err() }
	}
	if d.cfg.NATSURL != "" {
		checks["nats"] = func(context.Context) error {
			if d.consumer == nil || !d.consumer.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}
	}
	return checks
}

// Start binds the HTTP listener, subscribes to order events when NATS is
// configured and starts the Influx pusher. It does not block.
func (d *Daemon) Start() error {
	ln, err := net.Listen("tcp", d.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.cfg.ListenAddr, err)
	}
	d.listener = ln

	if d.cfg.NATSURL != "" {
		nc, err := events.Connect(d.cfg.NATSURL, "notifyd")
		if err != nil {
			_ = ln.Close()
			return err
		}
		d.consumer = events.NewConsumer(nc, events.NewHandler(d.registry, d.users), d.cfg.NATSQueue, d.cfg.EventTimeout)
		if err := d.consumer.Start(); err != nil {
			_ = d.consumer.Stop()
			_ = ln.Close()
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	if d.cfg.InfluxURL != "" {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			metrics.StartInfluxPusher(ctx, d.cfg.InfluxURL, d.cfg.InfluxToken, d.cfg.InfluxOrg, d.cfg.InfluxBucket, d.cfg.InfluxInterval)
		}()
	}

	d.server = &http.Server{Handler: d.handler, ReadHeaderTimeout: 10 * time.Second}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		logging.Get().Info().Str("addr", ln.Addr().String()).Msg("starting notifyd")
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Get().Error().Err(err).Msg("http server stopped")
		}
	}()
	return nil
}

// Stop drains event intake, shuts the HTTP server down, waits for pending
// chat mirror sends and closes the backends. ctx bounds the whole shutdown.
func (d *Daemon) Stop(ctx context.Context) {
	if d.consumer != nil {
		if err := d.consumer.Stop(); err != nil {
			logging.Get().Warn().Err(err).Msg("failed to drain event consumer")
		}
	}
	if d.server != nil {
		if err := d.server.Shutdown(ctx); err != nil {
			logging.Get().Warn().Err(err).Msg("http shutdown incomplete")
		}
	}
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logging.Get().Info().Msg("all active operations completed")
	case <-ctx.Done():
		logging.Get().Warn().Msg("shutdown timeout exceeded, some operations may be incomplete")
	}

	if err := d.mirror.Wait(ctx); err != nil {
		logging.Get().Warn().Err(err).Msg("timed out waiting for chat mirror to finish")
	}
	if err := d.closeBackends(); err != nil {
		logging.Get().Warn().Err(err).Msg("failed to close backends")
	}
}

func (d *Daemon) closeBackends() error {
	var errs []error
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	errs = append(errs, d.store.Close())
	return errors.Join(errs...)
}
