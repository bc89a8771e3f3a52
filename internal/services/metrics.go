package services

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes recorded in isp_form_submissions_total.
const (
	outcomeCreated   = "created"
	outcomeReplayed  = "replayed"
	outcomeInvalid   = "invalid"
	outcomeDuplicate = "duplicate"
	outcomeError     = "error"
)

var (
	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isp_form_submissions_total",
			Help: "Form submissions by outcome.",
		},
		[]string{"outcome"},
	)

	documentsRendered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "isp_form_documents_rendered_total",
			Help: "PDF exports rendered.",
		},
	)
)

func init() {
	prometheus.MustRegister(submissions, documentsRendered)
}
