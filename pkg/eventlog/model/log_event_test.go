package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var at = time.Date(2025, 1, 15, 10, 30, 0, 123_000_000, time.FixedZone("EST", -5*3600))

func TestLogEvent_Payload(t *testing.T) {
	t.Run("Formats the timestamp in UTC with milliseconds", func(t *testing.T) {
		event := NewLogEvent(InfoLevel, "msg", at, nil)
		assert.Equal(t, "2025-01-15T15:30:00.123Z", event.Timestamp())
	})

	t.Run("Lets caller attributes override fixed keys", func(t *testing.T) {
		event := NewLogEvent(InfoLevel, "msg", at, Attributes{"message": "override"})
		assert.Equal(t, "override", event.Payload()["message"])
		assert.Equal(t, "msg", event.Message())
	})

	t.Run("Only error events carry error and stack", func(t *testing.T) {
		info := NewLogEvent(InfoLevel, "msg", at, nil).Payload()
		assert.NotContains(t, info, "error")
		assert.NotContains(t, info, "stack")

		failure := NewErrorLogEvent("msg", "", "", at, nil).Payload()
		assert.Equal(t, "", failure["error"])
		assert.Equal(t, "", failure["stack"])
	})

	t.Run("Is not affected by later changes to the caller map", func(t *testing.T) {
		attributes := Attributes{"k": "v"}
		event := NewLogEvent(WarnLevel, "msg", at, attributes)
		attributes["k"] = "changed"
		event.Attributes()["k"] = "changed too"
		assert.Equal(t, "v", event.Payload()["k"])
	})
}

func TestMetricEvent_Payload(t *testing.T) {
	event := NewMetricEvent("page.render.home", 51, "milliseconds", at)
	assert.Equal(t, map[string]interface{}{
		"metricName": "page.render.home",
		"value":      51.0,
		"unit":       "milliseconds",
		"timestamp":  "2025-01-15T15:30:00.123Z",
	}, event.Payload())
}
