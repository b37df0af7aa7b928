package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// promRecorder is shared by the tests below: NewPrometheusRecorder registers
// its collectors with the default registry, which accepts them only once per
// process. Each test uses its own case id.
var promRecorder = NewPrometheusRecorder()

func TestPrometheusRecorderObserveRequestSuccess(t *testing.T) {
	p := promRecorder
	p.ObserveRequest("case-1", 100, 50, 2.5, true)

	assert.InDelta(t, 1, testutil.ToFloat64(p.requestsTotal.WithLabelValues("case-1", "success")), 0.0001)
	assert.InDelta(t, 100, testutil.ToFloat64(p.tokensTotal.WithLabelValues("case-1", "prompt")), 0.0001)
	assert.InDelta(t, 50, testutil.ToFloat64(p.tokensTotal.WithLabelValues("case-1", "completion")), 0.0001)
	assert.InDelta(t, 2.5, testutil.ToFloat64(p.costsTotal.WithLabelValues("case-1")), 0.0001)
}

func TestPrometheusRecorderObserveRequestFailureSkipsTokensAndCost(t *testing.T) {
	p := promRecorder
	p.ObserveRequest("case-2", 100, 50, 2.5, false)

	assert.InDelta(t, 1, testutil.ToFloat64(p.requestsTotal.WithLabelValues("case-2", "error")), 0.0001)
	assert.InDelta(t, 0, testutil.ToFloat64(p.tokensTotal.WithLabelValues("case-2", "prompt")), 0.0001)
	assert.InDelta(t, 0, testutil.ToFloat64(p.costsTotal.WithLabelValues("case-2")), 0.0001)
}
