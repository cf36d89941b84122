// Package inference sends a form snapshot to a model endpoint and classifies
// the reply into one terminal status.
package inference

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"farmers-connect/internal/common/errors"
	httpclient "farmers-connect/internal/common/http"
	"farmers-connect/internal/common/logger"
	"farmers-connect/internal/common/metrics"
	"farmers-connect/internal/common/observability"
	"farmers-connect/internal/form"
	"farmers-connect/internal/submission"
)

// Outcome classifies a Submit call.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeApplicationError
	OutcomeTransportError
	// OutcomeInvalid means local validation stopped the submission.
	OutcomeInvalid
	// OutcomeRejected means another submission was already in flight.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeApplicationError:
		return "application_error"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Dispatched reports whether a request was sent.
func (o Outcome) Dispatched() bool {
	return o == OutcomeSucceeded || o == OutcomeApplicationError || o == OutcomeTransportError
}

// Result is what Submit returns. Message is the text shown in the result slot;
// for dispatched submissions it equals the guard's terminal status message.
type Result struct {
	Outcome   Outcome
	Message   string
	Err       error
	RequestID string
}

type Orchestrator struct {
	config Config
	schema form.Schema
	guard  *submission.Guard
	client *httpclient.Client
	logger logger.Logger
	obs    *observability.Observability
}

func NewOrchestrator(
	cfg Config,
	schema form.Schema,
	guard *submission.Guard,
	client *httpclient.Client,
	log logger.Logger,
	obs *observability.Observability,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigInvalidError(err)
	}
	if cfg.LoadingMessage == "" {
		cfg.LoadingMessage = LoadingMessage
	}
	if guard == nil {
		guard = submission.NewGuard()
	}
	if client == nil {
		client = httpclient.NewClient(30 * time.Second)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Orchestrator{
		config: cfg,
		schema: schema,
		guard:  guard,
		client: client,
		logger: log.With(map[string]interface{}{"form": cfg.Form}),
		obs:    obs,
	}, nil
}

func (o *Orchestrator) Config() Config {
	return o.config
}

func (o *Orchestrator) Guard() *submission.Guard {
	return o.guard
}

// Submit validates state, dispatches it and records exactly one terminal
// status on the guard. Invalid and rejected submissions leave the guard as is.
func (o *Orchestrator) Submit(ctx context.Context, state form.State) Result {
	if validation := form.Validate(o.schema, state); !validation.Valid {
		msg := form.ValidationMessage(o.schema, validation)
		metrics.FormSubmissionsRejected.WithLabelValues(o.config.Form, "invalid").Inc()
		o.logger.Debug("Submission rejected by validation", map[string]interface{}{
			"errors": validation.GetErrorMessages(),
		})
		return Result{Outcome: OutcomeInvalid, Message: msg, Err: errors.NewValidationError(msg)}
	}

	if !o.guard.TryBegin(o.config.LoadingMessage) {
		metrics.FormSubmissionsRejected.WithLabelValues(o.config.Form, "in_flight").Inc()
		return Result{Outcome: OutcomeRejected, Err: errors.NewSubmissionInFlightError(o.config.Form)}
	}

	gauge := metrics.FormSubmissionsInFlight.WithLabelValues(o.config.Form)
	gauge.Inc()
	defer gauge.Dec()

	start := time.Now()
	result := o.dispatch(ctx, state.Clone())
	metrics.FormSubmissionDuration.WithLabelValues(o.config.Form).Observe(time.Since(start).Seconds())
	metrics.FormSubmissions.WithLabelValues(o.config.Form, result.Outcome.String()).Inc()

	if err := o.guard.End(submission.Outcome{
		Succeeded: result.Outcome == OutcomeSucceeded,
		Message:   result.Message,
	}); err != nil {
		o.logger.Error("Submission guard out of sync", errors.Fields(errors.Normalize(err)))
	}

	fields := map[string]interface{}{
		"outcome":    result.Outcome.String(),
		"requestId":  result.RequestID,
		"durationMs": time.Since(start).Milliseconds(),
	}
	if result.Err != nil {
		fields["error"] = result.Err.Error()
	}
	o.logger.Info("Submission completed", fields)
	return result
}

func (o *Orchestrator) dispatch(ctx context.Context, payload form.State) (result Result) {
	url := o.config.URL()
	ctx, span := o.obs.StartSpan(ctx, "inference.submit",
		attribute.String("form", o.config.Form),
		attribute.String("convention", o.config.Convention.String()),
	)
	defer func() {
		span.SetAttributes(attribute.String("outcome", result.Outcome.String()))
		observability.EndSpan(span, result.Err)
	}()

	resp, err := o.client.PostJSON(ctx, url, payload)
	if err != nil {
		return transportFailure(url, err, "")
	}

	var body map[string]interface{}
	if err := resp.DecodeJSON(&body); err != nil {
		return transportFailure(url, err, resp.RequestID)
	}

	if o.succeeded(resp, body) {
		return Result{
			Outcome:   OutcomeSucceeded,
			Message:   stringField(body, o.config.MessageField),
			RequestID: resp.RequestID,
		}
	}

	msg := stringField(body, o.config.ErrorField)
	if msg == "" {
		msg = o.config.Fallback
	}
	return Result{
		Outcome:   OutcomeApplicationError,
		Message:   msg,
		Err:       errors.NewApplicationError(url, msg, resp.StatusCode),
		RequestID: resp.RequestID,
	}
}

func (o *Orchestrator) succeeded(resp *httpclient.Response, body map[string]interface{}) bool {
	switch o.config.Convention {
	case BooleanFlagConvention:
		flag, ok := body[successField].(bool)
		return ok && flag
	case HTTPStatusConvention:
		return resp.OK()
	default:
		return false
	}
}

func transportFailure(url string, err error, requestID string) Result {
	stdErr := errors.NewTransportError(url, err)
	return Result{
		Outcome:   OutcomeTransportError,
		Message:   errors.DisplayMessage(stdErr),
		Err:       stdErr,
		RequestID: requestID,
	}
}

// stringField reads a display value from the body. Missing and null fields
// are "", non-string values are formatted.
func stringField(body map[string]interface{}, name string) string {
	if name == "" {
		return ""
	}
	switch v := body[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
