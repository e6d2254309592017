package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/Avi18971911/Herald/pkg/eventlog"
	"github.com/Avi18971911/Herald/pkg/eventlog/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const homePage = "/"

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Metadata.Title}}</title>
<meta name="description" content="{{.Metadata.Description}}">
</head>
<body>
<main>
<h1>{{.Metadata.Title}}</h1>
<p>{{.Metadata.Description}}</p>
{{if .UserId}}<p>Signed in as {{.UserId}}</p>{{end}}
<p>Exercise the API with <code>GET /api/test</code> and <code>POST /api/test</code>.</p>
</main>
</body>
</html>
`))

type PageMetadata struct {
	Title       string
	Description string
}

type homePageData struct {
	Metadata PageMetadata
	UserId   string
}

// GenerateHomeMetadata builds the head metadata of the home page.
func GenerateHomeMetadata(ctx context.Context, el eventlog.EventLogger) PageMetadata {
	el.Info(ctx, "Home page metadata generated", model.Attributes{
		"page":   homePage,
		"action": "generateMetadata",
	})
	return PageMetadata{
		Title:       "My App with Herald",
		Description: "Go service with Herald monitoring and logging",
	}
}

// RenderServerLogging reports server side rendering of the home page. A
// failure is logged and returned; it never stops the page from rendering.
func RenderServerLogging(ctx context.Context, el eventlog.EventLogger, renderDelay time.Duration) error {
	startTime := time.Now()
	el.Info(ctx, "Home page server-side rendering started", model.Attributes{
		"page":      homePage,
		"timestamp": model.FormatTimestamp(startTime),
	})

	if err := simulateRendering(ctx, renderDelay); err != nil {
		el.Error(ctx, "Home page server-side rendering failed", err, model.Attributes{
			"page":       homePage,
			"renderMode": "server",
		})
		return err
	}

	duration := time.Since(startTime)
	el.RecordMetric(ctx, "page.render.home", float64(duration.Milliseconds()), "milliseconds")
	el.Info(ctx, "Home page server-side rendering completed", model.Attributes{
		"page":     homePage,
		"duration": formatMilliseconds(duration),
		"success":  true,
	})
	el.AddAttributes(
		ctx,
		model.Field{Key: "pageType", Value: "home"},
		model.Field{Key: "renderMode", Value: "server"},
		model.Field{Key: "version", Value: "1.0.0"},
	)
	return nil
}

// HomeHandler creates a handler for the server rendered home page.
// @Summary Home page
// @Tags pages
// @Produce html
// @Param userId query string false "Id of the visiting user"
// @Success 200 {string} string "Rendered page"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router / [get]
func HomeHandler(
	el eventlog.EventLogger,
	renderDelay time.Duration,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userId := r.URL.Query().Get("userId")

		metadata := GenerateHomeMetadata(ctx, el)
		if err := RenderServerLogging(ctx, el, renderDelay); err != nil {
			logger.Warn("Home page server-side rendering failed", zap.Error(err))
		}
		el.LogUserActivity(ctx, "page_view", userId, model.Attributes{"page": homePage})

		var page bytes.Buffer
		err := homeTemplate.Execute(&page, homePageData{Metadata: metadata, UserId: userId})
		if err != nil {
			logger.Error("Error encountered when rendering home page", zap.Error(err))
			HttpError(w, internalServerError, http.StatusInternalServerError, logger)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := page.WriteTo(w); err != nil {
			logger.Error("Error encountered when writing home page", zap.Error(err))
		}
	}
}

func simulateRendering(ctx context.Context, delay time.Duration) error {
	if err := simulateProcessing(ctx, delay); err != nil {
		return errors.Wrap(err, "home page render interrupted")
	}
	return nil
}
