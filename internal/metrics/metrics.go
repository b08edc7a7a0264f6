package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "portal_decisions_total", Help: "Reviewer decisions by entity and outcome"},
		[]string{"entity", "outcome"},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "portal_submissions_total", Help: "Student submissions by entity"},
		[]string{"entity"},
	)
	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "portal_notification_failures_total", Help: "Notifications that could not be enqueued or delivered"},
	)
)

func Register() {
	prometheus.MustRegister(Decisions, Submissions, NotificationFailures)
}

func RecordDecision(entity, outcome string) {
	Decisions.WithLabelValues(entity, outcome).Inc()
}

func RecordSubmission(entity string) {
	Submissions.WithLabelValues(entity).Inc()
}

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
