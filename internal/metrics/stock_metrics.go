package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics содержит метрики движков заказов и заявок.
type StockMetrics struct {
	// Счётчики документов
	ordersRegistered *prometheus.CounterVec
	ordersReturned   prometheus.Counter
	requestsCreated  prometheus.Counter
	requestsClosed   prometheus.Counter
	settlements      prometheus.Counter

	// Отказы по нехватке остатка
	stockRejections prometheus.Counter

	// Гистограмма времени выполнения операций движков
	opDuration *prometheus.HistogramVec
}

// NewStockMetrics создаёт метрики и регистрирует их в default registerer.
func NewStockMetrics() *StockMetrics {
	return newStockMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStockMetricsWithRegisterer(registerer prometheus.Registerer) *StockMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StockMetrics{
		ordersRegistered: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ims_orders_registered_total",
			Help: "Total number of orders registered, by direction",
		}, []string{"direction"}),
		ordersReturned: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ims_orders_returned_total",
			Help: "Total number of orders whose stock was returned",
		}),
		requestsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ims_requests_created_total",
			Help: "Total number of pending requests created",
		}),
		requestsClosed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ims_requests_closed_total",
			Help: "Total number of requests fully settled and removed",
		}),
		settlements: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ims_request_settlements_total",
			Help: "Total number of request line settlements applied",
		}),
		stockRejections: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ims_stock_rejections_total",
			Help: "Total number of operations rejected due to insufficient stock",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "ims_engine_op_duration_seconds",
			Help:    "Duration of engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderRegistered увеличивает счётчик проведённых заказов.
func (m *StockMetrics) RecordOrderRegistered(direction string) {
	m.ordersRegistered.WithLabelValues(direction).Inc()
}

// RecordOrderReturned увеличивает счётчик возвратов.
func (m *StockMetrics) RecordOrderReturned() {
	m.ordersReturned.Inc()
}

// RecordRequestCreated увеличивает счётчик созданных заявок.
func (m *StockMetrics) RecordRequestCreated() {
	m.requestsCreated.Inc()
}

// RecordRequestClosed увеличивает счётчик полностью погашенных заявок.
func (m *StockMetrics) RecordRequestClosed() {
	m.requestsClosed.Inc()
}

// RecordSettlement увеличивает счётчик применённых погашений.
func (m *StockMetrics) RecordSettlement() {
	m.settlements.Inc()
}

// RecordStockRejection увеличивает счётчик отказов по нехватке остатка.
func (m *StockMetrics) RecordStockRejection() {
	m.stockRejections.Inc()
}

// RecordOpDuration записывает время выполнения операции движка.
func (m *StockMetrics) RecordOpDuration(op string, duration time.Duration) {
	m.opDuration.WithLabelValues(op).Observe(duration.Seconds())
}
