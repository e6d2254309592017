package handler

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Avi18971911/Herald/pkg/eventlog"
	"github.com/Avi18971911/Herald/pkg/eventlog/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	testPath            = "/api/test"
	requestIdLength     = 6
	internalServerError = "Internal server error"
)

// ApiTestGetHandler creates a handler that exercises the event logger.
// @Summary Exercise the event logger
// @Tags test
// @Produce json
// @Success 200 {object} ApiTestResponseDTO "Processing finished"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /api/test [get]
func ApiTestGetHandler(
	el eventlog.EventLogger,
	processingDelay time.Duration,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		startTime := time.Now()

		userAgent := r.Header.Get("User-Agent")
		if userAgent == "" {
			userAgent = "unknown"
		}
		el.Info(ctx, "API route accessed", model.Attributes{
			"path":      testPath,
			"method":    http.MethodGet,
			"userAgent": userAgent,
		})

		if err := simulateProcessing(ctx, processingDelay); err != nil {
			logger.Error("Error encountered during simulated processing", zap.Error(err))
			el.Error(ctx, "API route error", err, model.Attributes{
				"path":   testPath,
				"method": http.MethodGet,
			})
			el.LogApiCall(ctx, testPath, http.MethodGet, http.StatusInternalServerError, time.Since(startTime))
			HttpError(w, internalServerError, http.StatusInternalServerError, logger)
			return
		}

		el.RecordMetric(ctx, "api.test.calls", 1, "")
		el.AddAttributes(
			ctx,
			model.Field{Key: "customAttribute", Value: "test-value"},
			model.Field{Key: "requestId", Value: newRequestId()},
		)

		duration := time.Since(startTime)
		el.LogApiCall(ctx, testPath, http.MethodGet, http.StatusOK, duration)

		writeJson(w, ApiTestResponseDTO{
			Message:   "API test successful",
			Timestamp: model.FormatTimestamp(time.Now()),
			Duration:  formatMilliseconds(duration),
		}, http.StatusOK, logger)
	}
}

// ApiTestPostHandler creates a handler that echoes a JSON body back, or fails on request.
// @Summary Echo a JSON body
// @Tags test
// @Accept json
// @Produce json
// @Param body body object true "Any non-null JSON value; an object with a truthy shouldError simulates a failure"
// @Success 200 {object} PostTestResponseDTO "The echoed body"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /api/test [post]
func ApiTestPostHandler(
	el eventlog.EventLogger,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		startTime := time.Now()

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logger.Error("Error encountered when closing request body", zap.Error(err))
			}
		}(r.Body)

		body, err := processPostBody(ctx, el, r.Body)
		if err != nil {
			logger.Error("Error encountered when processing POST body", zap.Error(err))
			el.Error(ctx, "POST API route error", err, model.Attributes{
				"path":   testPath,
				"method": http.MethodPost,
			})
			el.LogApiCall(ctx, testPath, http.MethodPost, http.StatusInternalServerError, time.Since(startTime))
			HttpError(w, internalServerError, http.StatusInternalServerError, logger)
			return
		}

		el.LogApiCall(ctx, testPath, http.MethodPost, http.StatusOK, time.Since(startTime))
		writeJson(w, PostTestResponseDTO{
			Message:   "POST request processed",
			Received:  body,
			Timestamp: model.FormatTimestamp(time.Now()),
		}, http.StatusOK, logger)
	}
}

func processPostBody(
	ctx context.Context,
	el eventlog.EventLogger,
	reader io.Reader,
) (interface{}, error) {
	dec := json.NewDecoder(reader)
	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode request body")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.WithStack(ErrTrailingData)
	}
	if body == nil {
		return nil, errors.WithStack(ErrNullBody)
	}

	el.Info(ctx, "POST request received", model.Attributes{
		"path":     testPath,
		"method":   http.MethodPost,
		"bodyKeys": joinKeys(body),
	})

	if object, ok := body.(map[string]interface{}); ok && isTruthy(object["shouldError"]) {
		return nil, errors.New("Simulated error for testing")
	}
	return body, nil
}

func simulateProcessing(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "request cancelled before processing")
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "request cancelled during processing")
	}
}

// isTruthy follows JavaScript truthiness for decoded JSON values.
func isTruthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	default:
		return true
	}
}

// joinKeys lists the own keys of a decoded JSON value: sorted member names of
// an object, element indices of an array or character indices of a string.
// Other scalars have none.
func joinKeys(body interface{}) string {
	var keys []string
	switch v := body.(type) {
	case map[string]interface{}:
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	case []interface{}:
		keys = indices(len(v))
	case string:
		keys = indices(utf8.RuneCountInString(v))
	}
	return strings.Join(keys, ", ")
}

func indices(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

func newRequestId() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:requestIdLength]
}

func formatMilliseconds(duration time.Duration) string {
	return strconv.FormatInt(duration.Milliseconds(), 10) + "ms"
}

var (
	ErrNullBody     = errors.New("request body is null")
	ErrTrailingData = errors.New("request body has data after the JSON value")
)
