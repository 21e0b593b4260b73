package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"kommunicate-mcp-go/pkg/kommunicate"
)

// InstrumentedDoer records every outbound Kommunicate request.
type InstrumentedDoer struct {
	next    kommunicate.Doer
	metrics *Metrics
}

// NewInstrumentedDoer wraps next with request metrics.
func NewInstrumentedDoer(next kommunicate.Doer, metrics *Metrics) *InstrumentedDoer {
	return &InstrumentedDoer{next: next, metrics: metrics}
}

// Do implements kommunicate.Doer
func (d *InstrumentedDoer) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := d.next.Do(req)

	statusCode := "error"
	if err == nil {
		statusCode = strconv.Itoa(resp.StatusCode)
	}
	d.metrics.RecordRemoteRequest(req.Method, req.URL.Path, statusCode, time.Since(start))

	return resp, err
}
