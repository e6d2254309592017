package model

import "time"

type CollectedLog struct {
	Id         string                 `json:"_id,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Severity   Level                  `json:"severity"`
	Message    string                 `json:"message"`
	Service    string                 `json:"service"`
	TraceId    string                 `json:"trace_id,omitempty"`
	SpanId     string                 `json:"span_id,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type Level string

const (
	InfoLevel  Level = "info"
	ErrorLevel Level = "error"
	DebugLevel Level = "debug"
	WarnLevel  Level = "warn"
)
