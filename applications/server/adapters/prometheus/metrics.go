package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/donmikel/uploadguard/applications/server/domain"
	"github.com/donmikel/uploadguard/applications/server/interfaces"
)

const namespace = "uploadguard"

type metrics struct {
	uploadsTotal *prometheus.CounterVec
	servesTotal  *prometheus.CounterVec
}

// NewMetrics registers the upload and serve counters on registry.
func NewMetrics(registry prometheus.Registerer) interfaces.Metrics {
	factory := promauto.With(registry)

	return &metrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_decisions_total",
			Help:      "Total number of upload decisions by transport and reason",
		}, []string{"transport", "reason"}),

		servesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_served_total",
			Help:      "Total number of stored files served by response content type",
		}, []string{"content_type"}),
	}
}

func (m *metrics) UploadDecided(transport domain.Transport, reason domain.Reason) {
	m.uploadsTotal.WithLabelValues(transport.String(), string(reason)).Inc()
}

func (m *metrics) FileServed(contentType string) {
	m.servesTotal.WithLabelValues(contentType).Inc()
}
