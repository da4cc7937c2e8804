package graygelf

import (
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"

	"github.com/GiG/graygelf/xio"
)

type clientMetrics struct {
	built                metrics.Counter
	droppedQueueFull     metrics.Counter
	sent                 metrics.Counter
	chunked              metrics.Counter
	encodeErrors         metrics.Counter
	transportErrors      metrics.Counter
	droppedBecauseOfRate metrics.Counter
	droppedBecauseOfSize metrics.Counter
	writeTimer           metrics.Timer
}

func newClientMetrics(registry metrics.Registry) clientMetrics {
	return clientMetrics{
		built:                metrics.GetOrRegisterCounter("graygelf.messages.Built", registry),
		droppedQueueFull:     metrics.GetOrRegisterCounter("graygelf.messages.Dropped.QueueFull", registry),
		sent:                 metrics.GetOrRegisterCounter("graygelf.datagrams.Sent", registry),
		chunked:              metrics.GetOrRegisterCounter("graygelf.datagrams.Chunked", registry),
		encodeErrors:         metrics.GetOrRegisterCounter("graygelf.errors.Encode", registry),
		transportErrors:      metrics.GetOrRegisterCounter("graygelf.errors.Transport", registry),
		droppedBecauseOfRate: metrics.GetOrRegisterCounter("graygelf.dropped.RateExceeded", registry),
		droppedBecauseOfSize: metrics.GetOrRegisterCounter("graygelf.dropped.SizeExceeded", registry),
		writeTimer:           metrics.GetOrRegisterTimer("graygelf.WriteTimer", registry),
	}
}

// countWriteError increments the counter matching the cause of a failed
// datagram write.
func (m clientMetrics) countWriteError(err error) {
	switch errors.Cause(err) {
	case xio.ErrSizeLimitExceeded:
		m.droppedBecauseOfSize.Inc(1)
	case xio.ErrRateLimitExceeded:
		m.droppedBecauseOfRate.Inc(1)
	default:
		m.transportErrors.Inc(1)
	}
}
