package model

import "time"

// ISO8601 is the timestamp layout stamped on every emitted event.
const ISO8601 = "2006-01-02T15:04:05.000Z07:00"

const (
	AppLogEventType       = "AppLog"
	CustomMetricEventType = "CustomMetric"
)

type Level string

const (
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Attributes are the free-form key/values a caller attaches to a log call.
type Attributes map[string]interface{}

// Field is an ordered key/value pair, used where write order matters.
type Field struct {
	Key   string
	Value interface{}
}

// LogEvent is a single log record destined for the AppLog event stream.
// Fields are unexported so an event cannot change once constructed.
type LogEvent struct {
	level      Level
	message    string
	timestamp  string
	errMessage string
	stack      string
	attributes Attributes
}

func NewLogEvent(level Level, message string, at time.Time, attributes Attributes) LogEvent {
	return LogEvent{
		level:      level,
		message:    message,
		timestamp:  FormatTimestamp(at),
		attributes: copyAttributes(attributes),
	}
}

// NewErrorLogEvent builds an error-level event. errMessage and stack are empty
// strings when the caller supplied no error.
func NewErrorLogEvent(message string, errMessage string, stack string, at time.Time, attributes Attributes) LogEvent {
	event := NewLogEvent(ErrorLevel, message, at, attributes)
	event.errMessage = errMessage
	event.stack = stack
	return event
}

func (e LogEvent) Level() Level           { return e.level }
func (e LogEvent) Message() string        { return e.message }
func (e LogEvent) Timestamp() string      { return e.timestamp }
func (e LogEvent) Attributes() Attributes { return copyAttributes(e.attributes) }

// Payload flattens the event into the shape sent to the agent. Caller
// attributes are merged last and win over the fixed keys.
func (e LogEvent) Payload() map[string]interface{} {
	payload := make(map[string]interface{}, len(e.attributes)+5)
	payload["level"] = string(e.level)
	payload["message"] = e.message
	if e.level == ErrorLevel {
		payload["error"] = e.errMessage
		payload["stack"] = e.stack
	}
	payload["timestamp"] = e.timestamp
	for key, value := range e.attributes {
		payload[key] = value
	}
	return payload
}

// MetricEvent mirrors a numeric metric update into the CustomMetric stream.
type MetricEvent struct {
	Name      string
	Value     float64
	Unit      string
	Timestamp string
}

func NewMetricEvent(name string, value float64, unit string, at time.Time) MetricEvent {
	return MetricEvent{
		Name:      name,
		Value:     value,
		Unit:      unit,
		Timestamp: FormatTimestamp(at),
	}
}

func (m MetricEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"metricName": m.Name,
		"value":      m.Value,
		"unit":       m.Unit,
		"timestamp":  m.Timestamp,
	}
}

func FormatTimestamp(at time.Time) string {
	return at.UTC().Format(ISO8601)
}

func copyAttributes(attributes Attributes) Attributes {
	copied := make(Attributes, len(attributes))
	for key, value := range attributes {
		copied[key] = value
	}
	return copied
}
