package metrics

import (
	"time"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// SetupStderr will configure metric system to periodically print metrics on
// stderr.
func SetupStderr(registry metrics.Registry, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go metrics.Log(registry, interval, log.StandardLogger())
}
