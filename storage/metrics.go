package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsDB counts the operations performed on the wrapped DB.
type MetricsDB struct {
	DB

	gets       *prometheus.CounterVec
	puts       prometheus.Counter
	deletes    prometheus.Counter
	batchSizes prometheus.Histogram
}

// NewMetricsDB wraps db and registers its collectors with reg. A nil reg
// means prometheus.DefaultRegisterer; collectors that are already registered
// there are reused.
func NewMetricsDB(db DB, reg prometheus.Registerer) *MetricsDB {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &MetricsDB{
		DB: db,
		gets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Help:      "Number of store reads by result",
				Name:      "gets_total",
				Namespace: "mpt",
				Subsystem: "store",
			},
			[]string{"result"},
		),
		puts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Help:      "Number of single key writes",
				Name:      "puts_total",
				Namespace: "mpt",
				Subsystem: "store",
			},
		),
		deletes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Help:      "Number of single key deletions",
				Name:      "deletes_total",
				Namespace: "mpt",
				Subsystem: "store",
			},
		),
		batchSizes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Help:      "Number of operations per written batch",
				Name:      "batch_size",
				Namespace: "mpt",
				Subsystem: "store",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
	m.gets = register(reg, m.gets)
	m.puts = register(reg, m.puts)
	m.deletes = register(reg, m.deletes)
	m.batchSizes = register(reg, m.batchSizes)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Get implements the DB interface.
func (m *MetricsDB) Get(key []byte) ([]byte, error) {
	val, err := m.DB.Get(key)
	switch {
	case err != nil:
		m.gets.WithLabelValues("error").Inc()
	case val == nil:
		m.gets.WithLabelValues("miss").Inc()
	default:
		m.gets.WithLabelValues("hit").Inc()
	}
	return val, err
}

// Put implements the DB interface.
func (m *MetricsDB) Put(key []byte, value []byte) error {
	m.puts.Inc()
	return m.DB.Put(key, value)
}

// Delete implements the DB interface.
func (m *MetricsDB) Delete(key []byte) error {
	m.deletes.Inc()
	return m.DB.Delete(key)
}

// WriteBatch implements the DB interface.
func (m *MetricsDB) WriteBatch(batch *Batch) error {
	m.batchSizes.Observe(float64(batch.Len()))
	return m.DB.WriteBatch(batch)
}
