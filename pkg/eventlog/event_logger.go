// Package eventlog is the application's logging facade. Every call is mirrored
// to a console sink and forwarded to the monitoring agent as custom events,
// metrics, noticed errors or transaction attributes.
package eventlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Avi18971911/Herald/pkg/agent"
	"github.com/Avi18971911/Herald/pkg/eventlog/model"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultMetricUnit  = "count"
	serverUserAgent    = "server"
	unknownDuration    = "unknown"
	millisecondsUnit   = "milliseconds"
	timingMetricPrefix = "custom.timing."
	apiMetricPrefix    = "api.response_time."
)

// Operation names reported to the FailureRecorder.
const (
	consoleOperation   = "console"
	eventOperation     = "custom_event"
	metricOperation    = "metric"
	errorOperation     = "notice_error"
	attributeOperation = "custom_attribute"
)

// EventLogger never returns errors and never panics: a broken sink must not
// become an application failure.
type EventLogger interface {
	Info(ctx context.Context, message string, attributes model.Attributes)
	Warn(ctx context.Context, message string, attributes model.Attributes)
	Error(ctx context.Context, message string, err error, attributes model.Attributes)
	RecordMetric(ctx context.Context, name string, value float64, unit string)
	AddAttributes(ctx context.Context, fields ...model.Field)
	StartTiming(ctx context.Context, name string) *Timing
	LogUserActivity(ctx context.Context, activity string, userId string, additionalData model.Attributes)
	LogApiCall(ctx context.Context, endpoint string, method string, status int, duration time.Duration)
}

type EventLoggerImpl struct {
	agent    agent.Agent
	console  ConsoleSink
	failures FailureRecorder
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*EventLoggerImpl)

func WithClock(now func() time.Time) Option {
	return func(el *EventLoggerImpl) {
		el.now = now
	}
}

func WithFailureRecorder(failures FailureRecorder) Option {
	return func(el *EventLoggerImpl) {
		el.failures = failures
	}
}

func NewEventLoggerImpl(
	agent agent.Agent,
	console ConsoleSink,
	logger *zap.Logger,
	opts ...Option,
) *EventLoggerImpl {
	el := &EventLoggerImpl{
		agent:    agent,
		console:  console,
		failures: noopFailureRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

func (el *EventLoggerImpl) Info(ctx context.Context, message string, attributes model.Attributes) {
	el.log(ctx, model.InfoLevel, message, attributes)
}

func (el *EventLoggerImpl) Warn(ctx context.Context, message string, attributes model.Attributes) {
	el.log(ctx, model.WarnLevel, message, attributes)
}

func (el *EventLoggerImpl) Error(ctx context.Context, message string, err error, attributes model.Attributes) {
	el.safely(consoleOperation, func() error {
		el.console.Log(model.ErrorLevel, message, err, attributes)
		return nil
	})

	errMessage, stack := "", ""
	if err != nil {
		params := make(map[string]interface{}, len(attributes)+1)
		params["message"] = message
		for key, value := range attributes {
			params[key] = value
		}
		el.safely(errorOperation, func() error {
			return el.agent.NoticeError(ctx, err, params)
		})
		errMessage, stack = err.Error(), stackOf(err)
	}

	event := model.NewErrorLogEvent(message, errMessage, stack, el.now(), attributes)
	el.emit(ctx, model.AppLogEventType, event.Payload())
}

func (el *EventLoggerImpl) RecordMetric(ctx context.Context, name string, value float64, unit string) {
	if unit == "" {
		unit = defaultMetricUnit
	}
	el.safely(metricOperation, func() error {
		return el.agent.RecordMetric(ctx, name, value)
	})
	event := model.NewMetricEvent(name, value, unit, el.now())
	el.emit(ctx, model.CustomMetricEventType, event.Payload())
}

// AddAttributes writes fields into the transaction carried by ctx, in order.
func (el *EventLoggerImpl) AddAttributes(ctx context.Context, fields ...model.Field) {
	for _, field := range fields {
		el.safely(attributeOperation, func() error {
			return el.agent.AddCustomAttribute(ctx, field.Key, field.Value)
		})
	}
}

func (el *EventLoggerImpl) StartTiming(ctx context.Context, name string) *Timing {
	return newTiming(ctx, name, el.now(), el)
}

func (el *EventLoggerImpl) LogUserActivity(
	ctx context.Context,
	activity string,
	userId string,
	additionalData model.Attributes,
) {
	attributes := model.Attributes{
		"activity":  activity,
		"userAgent": serverUserAgent,
	}
	if userId != "" {
		attributes["userId"] = userId
	}
	for key, value := range additionalData {
		attributes[key] = value
	}
	el.Info(ctx, "User activity: "+activity, attributes)
}

// LogApiCall classifies status >= 400 as a failure. A duration that rounds
// down to zero milliseconds is treated as not measured.
func (el *EventLoggerImpl) LogApiCall(
	ctx context.Context,
	endpoint string,
	method string,
	status int,
	duration time.Duration,
) {
	isError := status >= 400
	message := fmt.Sprintf("API Call: %s %s", method, endpoint)
	millis := duration.Milliseconds()
	formattedDuration := unknownDuration
	if millis != 0 {
		formattedDuration = formatMilliseconds(duration)
	}
	attributes := model.Attributes{
		"endpoint": endpoint,
		"method":   method,
		"status":   status,
		"duration": formattedDuration,
		"success":  !isError,
	}

	if isError {
		el.Error(ctx, message, nil, attributes)
	} else {
		el.Info(ctx, message, attributes)
	}

	if millis != 0 {
		el.RecordMetric(
			ctx,
			apiMetricPrefix+strings.ToLower(method),
			float64(millis),
			millisecondsUnit,
		)
	}
}

func (el *EventLoggerImpl) log(ctx context.Context, level model.Level, message string, attributes model.Attributes) {
	el.safely(consoleOperation, func() error {
		el.console.Log(level, message, nil, attributes)
		return nil
	})
	event := model.NewLogEvent(level, message, el.now(), attributes)
	el.emit(ctx, model.AppLogEventType, event.Payload())
}

func (el *EventLoggerImpl) emit(ctx context.Context, eventType string, payload map[string]interface{}) {
	el.safely(eventOperation, func() error {
		return el.agent.RecordCustomEvent(ctx, eventType, payload)
	})
}

func (el *EventLoggerImpl) safely(operation string, forward func() error) {
	defer func() {
		if r := recover(); r != nil {
			el.degraded(operation, fmt.Errorf("recovered from panic: %v", r))
		}
	}()
	if err := forward(); err != nil {
		el.degraded(operation, err)
	}
}

func (el *EventLoggerImpl) degraded(operation string, err error) {
	el.logger.Warn(
		"Failed to forward telemetry",
		zap.String("operation", operation),
		zap.Error(err),
	)
	el.failures.ForwardFailure(operation)
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackOf returns the first stack trace found in the chain of err, or "" if no
// error in the chain carries one.
func stackOf(err error) string {
	var tracer stackTracer
	if !errors.As(err, &tracer) {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", tracer.StackTrace()), "\n")
}

func formatMilliseconds(duration time.Duration) string {
	return fmt.Sprintf("%dms", duration.Milliseconds())
}
