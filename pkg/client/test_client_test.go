package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Avi18971911/Herald/pkg/agent"
	"github.com/Avi18971911/Herald/pkg/eventlog"
	"github.com/Avi18971911/Herald/pkg/server/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHeraldServer(t *testing.T) *httptest.Server {
	fa := agent.NewFakeAgent()
	console := eventlog.NewLogrusConsoleSink(eventlog.NewConsoleLogger("json", "info", io.Discard))
	el := eventlog.NewEventLoggerImpl(fa, console, zap.NewNop())
	server := httptest.NewServer(router.CreateRouter(el, fa, prometheus.NewRegistry(), router.Delays{}, zap.NewNop()))
	t.Cleanup(server.Close)
	return server
}

func newClient(baseUrl string, prefix string) *TestClient {
	panel := NewPanel(prefix, nil)
	panel.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 15, 0, time.UTC) }
	return NewTestClient(baseUrl, http.DefaultClient, panel, zap.NewNop())
}

func TestTestClient_Run(t *testing.T) {
	server := newHeraldServer(t)

	t.Run("Logs a successful GET", func(t *testing.T) {
		c := newClient(server.URL, "")

		require.NoError(t, c.Run(context.Background(), ScenarioGet))

		lines := c.Panel().Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "09:30:15: Making API call to /api/test", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], `09:30:15: API call successful: {"message":"API test successful"`), lines[1])
	})

	t.Run("Logs the simulated error response", func(t *testing.T) {
		c := newClient(server.URL, "")

		require.NoError(t, c.Run(context.Background(), ScenarioError))

		assert.Equal(t, []string{
			"09:30:15: Making API call with error to /api/test",
			`09:30:15: API call response: {"error":"Internal server error"}`,
		}, c.Panel().Lines())
	})

	t.Run("Logs a successful POST", func(t *testing.T) {
		c := newClient(server.URL, "")

		require.NoError(t, c.Run(context.Background(), ScenarioPost))

		lines := c.Panel().Lines()
		require.Len(t, lines, 2)
		assert.Contains(t, lines[1], "POST successful: ")
		assert.Contains(t, lines[1], `"received":{"message":"Hello from client","shouldError":false,"userId":"12345"}`)
	})

	t.Run("Runs every scenario in order", func(t *testing.T) {
		c := newClient(server.URL, "")

		require.NoError(t, c.Run(context.Background(), ScenarioAll))

		lines := c.Panel().Lines()
		require.Len(t, lines, 6)
		assert.Contains(t, lines[0], "Making API call to /api/test")
		assert.Contains(t, lines[2], "Making successful POST to /api/test")
		assert.Contains(t, lines[4], "Making API call with error to /api/test")
	})

	t.Run("Rejects unknown scenarios", func(t *testing.T) {
		c := newClient(server.URL, "")

		assert.ErrorIs(t, c.Run(context.Background(), Scenario("delete")), ErrUnknownScenario)
		assert.Empty(t, c.Panel().Lines())
	})

	t.Run("Logs transport failures", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()
		c := newClient(closed.URL, "")

		require.NoError(t, c.Run(context.Background(), ScenarioPost))

		lines := c.Panel().Lines()
		require.Len(t, lines, 2)
		assert.Contains(t, lines[1], "POST failed: ")
	})

	t.Run("Logs non JSON replies as failures", func(t *testing.T) {
		plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer plain.Close()
		c := newClient(plain.URL, "")

		require.NoError(t, c.Run(context.Background(), ScenarioGet))

		assert.Contains(t, c.Panel().Lines()[1], "API call failed: response is not JSON")
	})
}

func TestRunUsers(t *testing.T) {
	server := newHeraldServer(t)

	t.Run("Runs one client per user", func(t *testing.T) {
		clients, err := RunUsers(context.Background(), 3, ScenarioGet, func(user int) *TestClient {
			return newClient(server.URL, "user-"+string(rune('0'+user)))
		})

		require.NoError(t, err)
		require.Len(t, clients, 3)
		for i, c := range clients {
			lines := c.Panel().Lines()
			require.Len(t, lines, 2)
			assert.True(t, strings.HasPrefix(lines[0], "[user-"+string(rune('1'+i))+"] "), lines[0])
		}
	})

	t.Run("Requires a user", func(t *testing.T) {
		_, err := RunUsers(context.Background(), 0, ScenarioGet, nil)

		assert.ErrorIs(t, err, ErrNoUsers)
	})

	t.Run("Surfaces unknown scenarios", func(t *testing.T) {
		_, err := RunUsers(context.Background(), 2, Scenario("nope"), func(user int) *TestClient {
			return newClient(server.URL, "")
		})

		assert.ErrorIs(t, err, ErrUnknownScenario)
	})
}

func TestPanel(t *testing.T) {
	var out strings.Builder
	panel := NewPanel("", &out)
	panel.now = func() time.Time { return time.Date(2025, 6, 1, 18, 5, 0, 0, time.UTC) }

	panel.AddLog("first")
	panel.AddLog("second")

	assert.Equal(t, []string{"18:05:00: first", "18:05:00: second"}, panel.Lines())
	assert.Equal(t, "18:05:00: first\n18:05:00: second\n", out.String())

	panel.Clear()
	assert.Empty(t, panel.Lines())
}
