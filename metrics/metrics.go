// Package metrics implements the worker's Prometheus instrumentation
// (SPEC_FULL.md §4 Domain Stack): per-channel push/pull counters,
// per-operator schedule counters, and tracker propagation depth, exposed
// by the worker's optional debug HTTP server.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds one worker's metric set, registered against its own
// prometheus.Registry so multiple workers in one process (Process/Thread
// allocator kinds share an OS process) don't collide on metric names.
type Registry struct {
	reg *prometheus.Registry

	ChannelPushed   *prometheus.CounterVec
	ChannelPulled   *prometheus.CounterVec
	OperatorSchedules *prometheus.CounterVec
	OperatorHasMoreWork *prometheus.CounterVec
	TrackerPropagationDepth prometheus.Histogram
	TrackerPushedChanges prometheus.Counter
}

// New constructs and registers a fresh metric set tagged with worker
// (the global worker index, so /metrics across a multi-worker process
// distinguishes them).
func New(worker int) *Registry {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"worker": strconv.Itoa(worker)}

	r := &Registry{
		reg: reg,
		ChannelPushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xdf", Subsystem: "channel", Name: "pushed_total",
			Help: "Items pushed onto a channel.", ConstLabels: constLabels,
		}, []string{"channel"}),
		ChannelPulled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xdf", Subsystem: "channel", Name: "pulled_total",
			Help: "Items pulled off a channel.", ConstLabels: constLabels,
		}, []string{"channel"}),
		OperatorSchedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xdf", Subsystem: "operator", Name: "schedule_total",
			Help: "Schedule invocations per operator.", ConstLabels: constLabels,
		}, []string{"operator"}),
		OperatorHasMoreWork: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xdf", Subsystem: "operator", Name: "has_more_work_total",
			Help: "Schedule invocations that reported more work pending.", ConstLabels: constLabels,
		}, []string{"operator"}),
		TrackerPropagationDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "xdf", Subsystem: "tracker", Name: "propagation_depth",
			Help: "Number of drain passes PropagateAll took to reach a fixed point.", ConstLabels: constLabels,
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		TrackerPushedChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "xdf", Subsystem: "tracker", Name: "pushed_changes_total",
			Help: "Target frontier changes delivered to operators.", ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		r.ChannelPushed, r.ChannelPulled,
		r.OperatorSchedules, r.OperatorHasMoreWork,
		r.TrackerPropagationDepth, r.TrackerPushedChanges,
	)
	return r
}

// Registerer exposes the underlying prometheus.Registerer for a caller
// that wants to add further collectors (e.g. go_collector-style runtime
// stats) before serving /metrics.
func (r *Registry) Registerer() prometheus.Registerer { return r.reg }

// Gatherer exposes the underlying prometheus.Gatherer for an HTTP
// handler.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
