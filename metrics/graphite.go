// Package metrics configures reporting of the go-metrics registry used by
// graygelf clients.
package metrics

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cyberdelia/go-metrics-graphite"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/GiG/graygelf/runenv"
)

const graphiteConfigEnvPrefix = "graygelf_graphite"

// GraphiteConfig holds basic Graphite configuration.
type GraphiteConfig struct {
	Host     string
	Port     int           `default:"2003"`
	Prefix   string        `default:"graygelf"`
	Interval time.Duration `default:"1m"`
}

// Init processes the environment in search of Graphite configuration and sets
// up reporting of registry. Without Graphite host metrics are periodically
// printed to stderr. Runtime and process CPU statistics are captured until ctx
// is done. The id makes the Graphite prefix unique per process.
func Init(ctx context.Context, registry metrics.Registry, id string) error {
	cfg, err := graphiteConfigFromEnv()
	if err != nil {
		return err
	}

	metrics.RegisterRuntimeMemStats(registry)
	go captureRuntimeMemStats(ctx, registry, cfg.Interval)
	go CaptureCPUTime(ctx, registry, cfg.Interval)

	if cfg.Host == "" {
		log.Info("No metric storage specified - using stderr to periodically print metrics")
		SetupStderr(registry, cfg.Interval)
		return nil
	}
	prefix := buildUniquePrefix(cfg.Prefix, id)
	if err := SetupGraphite(registry, cfg, prefix); err != nil {
		return err
	}
	log.Infof("Metrics will be sent to Graphite with prefix: %s", prefix)
	return nil
}

// graphiteConfigFromEnv reads Graphite configuration. A non-positive interval
// is replaced with one minute.
func graphiteConfigFromEnv() (GraphiteConfig, error) {
	var cfg GraphiteConfig
	if err := envconfig.Process(graphiteConfigEnvPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(err, "invalid graphite configuration")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return cfg, nil
}

// SetupGraphite will configure metric system to periodically send metrics to
// Graphite.
func SetupGraphite(registry metrics.Registry, cfg GraphiteConfig, prefix string) error {
	addr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		return errors.Wrap(err, "invalid Graphite address")
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	go graphite.Graphite(registry, interval, prefix, addr)
	return nil
}

func captureRuntimeMemStats(ctx context.Context, registry metrics.Registry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CaptureRuntimeMemStatsOnce(registry)
		}
	}
}

func buildUniquePrefix(basePrefix, id string) string {
	hostname := runenv.HostnameOr("unknown")
	return fmt.Sprintf("%s.%s.%s", basePrefix, normalizeValue(hostname), normalizeValue(id))
}

func normalizeValue(value string) string {
	return strings.Replace(value, ".", "_", -1)
}
