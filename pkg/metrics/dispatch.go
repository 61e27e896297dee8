package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics tracks the daily dispatch pipeline.
type DispatchMetrics struct {
	queued         prometheus.Counter
	notifySuccess  prometheus.Counter
	notifyFailure  prometheus.Counter
	runDuration    prometheus.Histogram
	lastRunQueued  prometheus.Gauge
	notifyDuration prometheus.Histogram
}

// NewDispatchMetrics registers dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	queued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_orders_queued_total",
		Help: "Scheduled orders moved to queued by dispatch runs.",
	})
	notifySuccess := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_notify_success_total",
		Help: "Vendor notifications delivered.",
	})
	notifyFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_notify_failure_total",
		Help: "Vendor notifications that failed after the order was queued.",
	})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_run_duration_seconds",
		Help:    "Duration of full dispatch runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	lastRunQueued := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_last_run_queued",
		Help: "Orders queued by the most recent dispatch run.",
	})
	notifyDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_notify_duration_seconds",
		Help:    "Duration of individual vendor notification calls in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(queued, notifySuccess, notifyFailure, runDuration, lastRunQueued, notifyDuration)
	return &DispatchMetrics{
		queued:         queued,
		notifySuccess:  notifySuccess,
		notifyFailure:  notifyFailure,
		runDuration:    runDuration,
		lastRunQueued:  lastRunQueued,
		notifyDuration: notifyDuration,
	}
}

// AddQueued records orders moved to queued in a run.
func (d *DispatchMetrics) AddQueued(count int) {
	if d == nil || d.queued == nil {
		return
	}
	d.queued.Add(float64(count))
	d.lastRunQueued.Set(float64(count))
}

// IncNotifySuccess counts a delivered vendor notification.
func (d *DispatchMetrics) IncNotifySuccess() {
	if d == nil || d.notifySuccess == nil {
		return
	}
	d.notifySuccess.Inc()
}

// IncNotifyFailure counts a failed vendor notification.
func (d *DispatchMetrics) IncNotifyFailure() {
	if d == nil || d.notifyFailure == nil {
		return
	}
	d.notifyFailure.Inc()
}

// ObserveRun records the duration of a complete dispatch run.
func (d *DispatchMetrics) ObserveRun(duration time.Duration) {
	if d == nil || d.runDuration == nil {
		return
	}
	d.runDuration.Observe(duration.Seconds())
}

// ObserveNotify records the duration of one vendor notification call.
func (d *DispatchMetrics) ObserveNotify(duration time.Duration) {
	if d == nil || d.notifyDuration == nil {
		return
	}
	d.notifyDuration.Observe(duration.Seconds())
}
