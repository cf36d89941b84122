package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Exporter publishes a gatherer's metrics when a short-lived command ends.
// Either target may be empty.
type Exporter struct {
	TextfilePath   string
	PushgatewayURL string
	Job            string
	Gatherer       prometheus.Gatherer
}

// Enabled reports whether any target is configured.
func (e Exporter) Enabled() bool {
	return e.TextfilePath != "" || e.PushgatewayURL != ""
}

// Export writes the textfile and pushes to the Pushgateway. Both are attempted;
// the first error is returned.
func (e Exporter) Export(ctx context.Context) error {
	gatherer := e.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	var first error
	if e.TextfilePath != "" {
		if err := prometheus.WriteToTextfile(e.TextfilePath, gatherer); err != nil {
			first = fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	if e.PushgatewayURL != "" {
		job := e.Job
		if job == "" {
			job = "farmers-connect"
		}
		if err := push.New(e.PushgatewayURL, job).Gatherer(gatherer).PushContext(ctx); err != nil && first == nil {
			first = fmt.Errorf("push metrics: %w", err)
		}
	}
	return first
}
