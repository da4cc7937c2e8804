package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIfNotFailsToGetCPUTime(t *testing.T) {
	_, err := CPUTime()

	assert.NoError(t, err)
}

func TestIfCapturesCPUTimeUntilContextDone(t *testing.T) {
	registry := metrics.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		CaptureCPUTime(ctx, registry, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for registry.Get(CPUUtilizationMetric) == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.NotNil(t, registry.Get(CPUUtilizationMetric))
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CPU time capture did not stop")
	}
	assert.IsType(t, metrics.NewGaugeFloat64(), registry.Get(CPUUtilizationMetric))
}
