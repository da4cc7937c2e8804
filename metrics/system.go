package metrics

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/shirou/gopsutil/process"
	log "github.com/sirupsen/logrus"
)

// CPUUtilizationMetric is the gauge updated by CaptureCPUTime.
const CPUUtilizationMetric = "runtime.CpuStats.Utilization"

// CPUTime returns an amount of CPU time (in seconds) assigned to the current
// process by system.
func CPUTime() (float64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, errors.Wrap(err, "unable to find own process")
	}
	t, err := p.Times()
	if err != nil {
		return 0, errors.Wrap(err, "unable to get CPU times")
	}

	// cpu.TimesStat.Total also sums idle time.
	total := t.User + t.System + t.Nice + t.Iowait + t.Irq + t.Softirq +
		t.Steal + t.Guest + t.GuestNice + t.Stolen

	return total, nil
}

// CaptureCPUTime updates the CPU utilization gauge of the current process
// every interval until ctx is done. It is a blocking call so it is advised to
// call this function in goroutine.
func CaptureCPUTime(ctx context.Context, registry metrics.Registry, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	gauge := metrics.NewGaugeFloat64()
	if err := registry.Register(CPUUtilizationMetric, gauge); err != nil {
		log.WithError(err).Warn("Could not register CPU utilisation metric")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastSeconds, _ := CPUTime() // 0.0 is a valid starting point
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		seconds, err := CPUTime()
		if err != nil {
			log.WithError(err).Warn("Unable to update CPU utilization metric")
			continue
		}
		gauge.Update((seconds - lastSeconds) / interval.Seconds())
		lastSeconds = seconds
	}
}
