package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline holds the counters for the intake/notify/purge pipeline.
type Pipeline struct {
	FilesAccepted        prometheus.Counter
	FilesRejected        *prometheus.CounterVec
	NotificationsSent    prometheus.Counter
	NotificationFailures prometheus.Counter
	ObjectsPurged        prometheus.Counter
	Redeliveries         *prometheus.CounterVec
}

// NewPipeline creates the pipeline counters and registers them on reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		FilesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "files_accepted_total",
			Help: "Total number of uploads that passed validation.",
		}),
		FilesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "files_rejected_total",
			Help: "Total number of uploads rejected by the extension allow-list.",
		}, []string{"extension"}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of upload notifications sent.",
		}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total number of notification sends that failed.",
		}),
		ObjectsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objects_purged_total",
			Help: "Total number of aged objects deleted by the janitor.",
		}),
		Redeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redeliveries_total",
			Help: "Total number of retried invocations per component.",
		}, []string{"component"}),
	}

	collectors := []prometheus.Collector{
		p.FilesAccepted,
		p.FilesRejected,
		p.NotificationsSent,
		p.NotificationFailures,
		p.ObjectsPurged,
		p.Redeliveries,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}
