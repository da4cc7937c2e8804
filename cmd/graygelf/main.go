package main

import (
	"context"
	"os"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/getsentry/raven-go"
	"github.com/kelseyhightower/envconfig"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	gometrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/GiG/graygelf"
	"github.com/GiG/graygelf/gelf"
	"github.com/GiG/graygelf/metrics"
	"github.com/GiG/graygelf/runenv"
)

const environmentPrefix = "graygelf"

// Version designates the version of application.
var Version string

// Config contains command line tool configuration. Client configuration is
// read separately by graygelf.ConfigFromEnv.
type Config struct {
	// Sets logging level to `debug` when true, `info` otherwise
	Debug bool `default:"false"`
	// Level of every sent line
	Level string `default:"info"`
	// Format of input lines: plain, logfmt or json
	Format string `default:"plain"`
	// Keys removed from parsed logfmt and json lines, comma separated
	DropKeys []string `default:"password,secret,token" split_words:"true"`
	// Time given to send queued messages after stdin is closed
	ShutdownTimeout time.Duration `default:"5s" split_words:"true"`
	// SentryDSN is an address used for sending logs to Sentry
	SentryDSN string `split_words:"true"`
}

var config Config

func init() {
	if err := envconfig.Process(environmentPrefix, &config); err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if err := initSentry(config); err != nil {
		log.WithError(err).Fatal("Failed to initialize Sentry")
	}

	if config.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func initSentry(config Config) error {
	if len(config.SentryDSN) == 0 {
		return nil
	}

	environment, err := runenv.Environment()
	if err != nil {
		return errors.Wrap(err, "unable to determine runtime environment")
	}

	if environment == runenv.LocalEnv {
		log.Infof("Disabling Sentry integration for the %s environment", environment)
		return nil
	}
	log.Infof("Enabling Sentry integration for the %s environment", environment)

	client, err := raven.New(config.SentryDSN)
	if err != nil {
		return errors.Wrap(err, "unable to setup raven client")
	}
	client.SetRelease(Version)
	client.SetEnvironment(string(environment))

	sentryHook, err := logrus_sentry.NewWithClientSentryHook(client, []log.Level{
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
	})
	if err != nil {
		return errors.Wrap(err, "unable to setup sentry hook for logger")
	}
	sentryHook.Timeout = time.Second
	log.AddHook(sentryHook)

	return nil
}

func main() {
	log.Infof("GrayGELF (version: %s)", Version)

	level, err := gelf.ParseLevel(config.Level)
	if err != nil {
		log.WithError(err).Fatal("Invalid level")
	}
	clientConfig, err := graygelf.ConfigFromEnv()
	if err != nil {
		log.WithError(err).Fatal("Failed to load client configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := metrics.Init(ctx, gometrics.DefaultRegistry, uuid.New()); err != nil {
		log.WithError(err).Fatal("Failed to initialize metrics")
	}

	client, err := graygelf.New(clientConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create GELF client")
	}
	client.OnError(func(err error) {
		log.WithError(err).Warn("Unable to send log line")
	})

	stream, err := client.Stream(level, config.Format, config.DropKeys...)
	if err != nil {
		log.WithError(err).Fatal("Invalid line format")
	}
	if _, err := stream.ReadFrom(os.Stdin); err != nil {
		log.WithError(err).Error("Reading stdin failed")
	}
	_ = stream.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, config.ShutdownTimeout)
	defer shutdownCancel()
	if err := client.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Not all log lines were sent")
		os.Exit(1)
	}
	log.Info("All log lines sent")
}
