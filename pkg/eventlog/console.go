package eventlog

import (
	"io"
	"time"

	"github.com/Avi18971911/Herald/pkg/eventlog/model"
	"github.com/sirupsen/logrus"
)

// ConsoleSink is the local mirror of every log call.
type ConsoleSink interface {
	Log(level model.Level, message string, err error, attributes model.Attributes)
}

type LogrusConsoleSink struct {
	logger *logrus.Logger
}

func NewLogrusConsoleSink(logger *logrus.Logger) *LogrusConsoleSink {
	return &LogrusConsoleSink{logger: logger}
}

// NewConsoleLogger builds the logrus logger behind the console sink. format is
// "json" or "text"; an unparsable level falls back to debug.
func NewConsoleLogger(format string, level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		parsedLevel = logrus.DebugLevel
	}
	log.Level = parsedLevel
	if format == "text" {
		log.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}
	} else {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	}
	log.Out = out
	return log
}

func (cs *LogrusConsoleSink) Log(level model.Level, message string, err error, attributes model.Attributes) {
	entry := cs.logger.WithFields(logrus.Fields(attributes))
	if err != nil {
		entry = entry.WithError(err)
	}
	switch level {
	case model.ErrorLevel:
		entry.Error(message)
	case model.WarnLevel:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}
