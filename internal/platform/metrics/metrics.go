package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64
	batches         uint64
	failedBatches   uint64
	eventsTotal     uint64
	eventsValid     uint64
	eventsInvalid   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordBatch counts one generated batch and its events.
func (c *Collector) RecordBatch(valid, invalid int) {
	atomic.AddUint64(&c.batches, 1)
	atomic.AddUint64(&c.eventsTotal, uint64(valid+invalid))
	atomic.AddUint64(&c.eventsValid, uint64(valid))
	atomic.AddUint64(&c.eventsInvalid, uint64(invalid))
}

// RecordBatchFailure counts a batch aborted before producing events.
func (c *Collector) RecordBatchFailure() {
	atomic.AddUint64(&c.failedBatches, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":      total,
		"errorsTotal":        errs,
		"avgDurationMs":      avg,
		"totalDurationMs":    totalMs,
		"batchesTotal":       atomic.LoadUint64(&c.batches),
		"batchesFailedTotal": atomic.LoadUint64(&c.failedBatches),
		"eventsTotal":        atomic.LoadUint64(&c.eventsTotal),
		"eventsValidTotal":   atomic.LoadUint64(&c.eventsValid),
		"eventsInvalidTotal": atomic.LoadUint64(&c.eventsInvalid),
	}
}
