package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the person module. Counters track writes
// to the directory graph; histograms track the query paths.
type Metrics struct {
	PersonsCreated   prometheus.Counter
	PersonsUpdated   prometheus.Counter
	PersonsDeleted   prometheus.Counter
	RelationsCreated prometheus.Counter
	RelationsDeleted prometheus.Counter
	ImagesUploaded   prometheus.Counter
	ListDuration     prometheus.Histogram
	ReportDuration   prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the person module metrics on the given registerer. Tests
// pass a fresh registry so repeated construction never collides.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PersonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "personsdir_persons_created_total",
			Help: "Total number of persons created",
		}),
		PersonsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "personsdir_persons_updated_total",
			Help: "Total number of persons updated",
		}),
		PersonsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "personsdir_persons_deleted_total",
			Help: "Total number of persons deleted",
		}),
		RelationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "personsdir_relations_created_total",
			Help: "Total number of relation edges created",
		}),
		RelationsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "personsdir_relations_deleted_total",
			Help: "Total number of relation edges deleted",
		}),
		ImagesUploaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "personsdir_images_uploaded_total",
			Help: "Total number of person photos uploaded",
		}),
		ListDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "personsdir_list_persons_duration_seconds",
			Help:    "Duration of ListPersons queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ReportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "personsdir_related_persons_report_duration_seconds",
			Help:    "Duration of the related persons report",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveList records the duration of a ListPersons query.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}

// ObserveReport records the duration of a related persons report.
func (m *Metrics) ObserveReport(start time.Time) {
	m.ReportDuration.Observe(time.Since(start).Seconds())
}
