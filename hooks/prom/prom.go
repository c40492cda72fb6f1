// Package promhooks exports kvcache events and pool state to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	hooks, _ := promhooks.New(reg, "users")
//	users, _ := kvcache.New[User](kvcache.Options[User]{Name: "users", Hooks: hooks, ...})
//	_ = reg.Register(promhooks.NewPoolCollector(users))
package promhooks

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/kvcache"
)

const namespace = "kvcache"

// Event label values.
const (
	EventHit             = "hit"
	EventMiss            = "miss"
	EventWriteSkipped    = "write_skipped"
	EventWriteBackFailed = "write_back_failed"
	EventDecodeFailed    = "decode_failed"
	EventConnDiscarded   = "conn_discarded"
)

// Hooks counts events in kvcache_events_total{cache, event}. Hooks for
// several caches can share one registry.
type Hooks struct {
	hit, miss, skipped, writeBack, decode, discarded prometheus.Counter
}

var _ kvcache.Hooks = (*Hooks)(nil)

func New(reg prometheus.Registerer, cacheName string) (*Hooks, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Cache events by type.",
	}, []string{"cache", "event"})

	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		vec = existing
	}

	l := func(ev string) prometheus.Counter { return vec.WithLabelValues(cacheName, ev) }
	return &Hooks{
		hit:       l(EventHit),
		miss:      l(EventMiss),
		skipped:   l(EventWriteSkipped),
		writeBack: l(EventWriteBackFailed),
		decode:    l(EventDecodeFailed),
		discarded: l(EventConnDiscarded),
	}, nil
}

func (h *Hooks) Hit(string)                       { h.hit.Inc() }
func (h *Hooks) Miss(string)                      { h.miss.Inc() }
func (h *Hooks) WriteSkipped(string, kvcache.TTL) { h.skipped.Inc() }
func (h *Hooks) WriteBackFailed(string, error)    { h.writeBack.Inc() }
func (h *Hooks) DecodeFailed(string, error)       { h.decode.Inc() }
func (h *Hooks) ConnDiscarded(error)              { h.discarded.Inc() }

// StatusSource is satisfied by every kvcache.Cache.
type StatusSource interface {
	Status() kvcache.Status
}

var sizeDesc = prometheus.NewDesc(namespace+"_pool_size",
	"Connections held or reserved by the pool.", []string{"cache"}, nil)

var availableDesc = prometheus.NewDesc(namespace+"_pool_available",
	"Idle connections ready for use.", []string{"cache"}, nil)

var pendingDesc = prometheus.NewDesc(namespace+"_pool_pending",
	"Callers waiting for a connection.", []string{"cache"}, nil)

// PoolCollector reads Status on every scrape.
type PoolCollector struct {
	srcs []StatusSource
}

var _ prometheus.Collector = (*PoolCollector)(nil)

func NewPoolCollector(srcs ...StatusSource) *PoolCollector {
	return &PoolCollector{srcs: srcs}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sizeDesc
	ch <- availableDesc
	ch <- pendingDesc
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.srcs {
		st := src.Status()
		ch <- prometheus.MustNewConstMetric(sizeDesc, prometheus.GaugeValue, float64(st.Size), st.Name)
		ch <- prometheus.MustNewConstMetric(availableDesc, prometheus.GaugeValue, float64(st.Available), st.Name)
		ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(st.Pending), st.Name)
	}
}
