package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDecision(t *testing.T) {
	before := testutil.ToFloat64(Decisions.WithLabelValues("housing_request", "NoCapacity"))
	RecordDecision("housing_request", "NoCapacity")
	RecordDecision("housing_request", "NoCapacity")
	after := testutil.ToFloat64(Decisions.WithLabelValues("housing_request", "NoCapacity"))
	if after-before != 2 {
		t.Fatalf("expected counter to grow by 2, got %v", after-before)
	}
}

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(Submissions.WithLabelValues("visa_permit"))
	RecordSubmission("visa_permit")
	if got := testutil.ToFloat64(Submissions.WithLabelValues("visa_permit")) - before; got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}
