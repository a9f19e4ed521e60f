package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// Prom implements screenshot.Metrics backed by Prometheus counters.
type Prom struct {
	stored             *prometheus.CounterVec
	dedupHits          prometheus.Counter
	views              prometheus.Counter
	deleted            prometheus.Counter
	indexWriteFailures *prometheus.CounterVec
	once               sync.Once
	registerer         prometheus.Registerer
}

// NewProm constructs Prometheus-backed metrics under the given namespace,
// registered on the default registerer.
func NewProm(namespace string) *Prom {
	return NewPromWith(namespace, prometheus.DefaultRegisterer)
}

// NewPromWith constructs Prometheus-backed metrics registered on reg.
// Tests pass their own registry to avoid duplicate registration.
func NewPromWith(namespace string, reg prometheus.Registerer) *Prom {
	p := &Prom{
		stored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenshots_stored_total",
			Help:      "Screenshots stored by tenant type",
		}, []string{"tenant_type"}),
		dedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenshot_dedup_hits_total",
			Help:      "Uploads deduplicated by content address",
		}),
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenshot_views_total",
			Help:      "Screenshot retrievals by id",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenshots_deleted_total",
			Help:      "Screenshots deleted explicitly or by expiry sweep",
		}),
		indexWriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenshot_index_write_failures_total",
			Help:      "Secondary index writes that failed, by index",
		}, []string{"index"}),
		registerer: reg,
	}
	p.register()
	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		p.registerer.MustRegister(p.stored, p.dedupHits, p.views, p.deleted, p.indexWriteFailures)
	})
}

func (p *Prom) IncStored(tenantType string) {
	p.stored.WithLabelValues(tenantType).Inc()
}

func (p *Prom) IncDedupHit() { p.dedupHits.Inc() }

func (p *Prom) IncViews() { p.views.Inc() }

func (p *Prom) IncDeleted() { p.deleted.Inc() }

func (p *Prom) IncIndexWriteFailure(index string) {
	p.indexWriteFailures.WithLabelValues(index).Inc()
}

var (
	defaultOnce sync.Once
	defaultProm *Prom
)

// Default returns the process-wide metrics, creating and registering them
// on first use. Repeated wiring (e.g. in tests) must go through here to
// avoid duplicate registration on the default registry.
func Default() *Prom {
	defaultOnce.Do(func() { defaultProm = NewProm("rapidtriage") })
	return defaultProm
}

// Handler returns an HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Compile-time check that Prom implements the Metrics interface.
var _ screenshot.Metrics = (*Prom)(nil)
