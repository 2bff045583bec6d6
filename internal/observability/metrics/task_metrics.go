package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TaskMetrics captures dispatcher task health signals.
type TaskMetrics struct {
	runs      *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	processed *prometheus.CounterVec
}

var (
	taskMetricsOnce sync.Once
	taskMetrics     *TaskMetrics
)

// Tasks returns the singleton task metrics registry.
func Tasks() *TaskMetrics {
	taskMetricsOnce.Do(func() {
		taskMetrics = newTaskMetrics(prometheus.DefaultRegisterer)
	})
	return taskMetrics
}

// ResetTaskMetricsForTest resets the task metrics singleton for tests.
func ResetTaskMetricsForTest() {
	taskMetricsOnce = sync.Once{}
	taskMetrics = nil
}

func newTaskMetrics(registerer prometheus.Registerer) *TaskMetrics {
	m := &TaskMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platform_task_runs_total",
			Help: "Dispatcher task invocations by task name.",
		}, []string{"task"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platform_task_errors_total",
			Help: "Dispatcher task failures by task name.",
		}, []string{"task"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "platform_task_duration_seconds",
			Help:    "Dispatcher task latency by task name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platform_task_items_processed_total",
			Help: "Items handled per dispatcher task.",
		}, []string{"task"}),
	}
	registerer.MustRegister(m.runs, m.errors, m.duration, m.processed)
	return m
}

func (m *TaskMetrics) IncRun(task string) {
	m.runs.WithLabelValues(task).Inc()
}

func (m *TaskMetrics) IncError(task string) {
	m.errors.WithLabelValues(task).Inc()
}

func (m *TaskMetrics) ObserveDuration(task string, d time.Duration) {
	m.duration.WithLabelValues(task).Observe(d.Seconds())
}

func (m *TaskMetrics) AddProcessed(task string, n int) {
	if n <= 0 {
		return
	}
	m.processed.WithLabelValues(task).Add(float64(n))
}
