package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggingRouter(logs *bytes.Buffer, seen *[]byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	base := slog.New(slog.NewJSONHandler(logs, nil))
	r := gin.New()
	r.Use(Logging(base))

	echo := func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		*seen = b
		c.Status(http.StatusOK)
	}
	r.POST("/webhooks/payments", echo)
	r.POST("/orders", echo)
	r.POST("/echo/*rest", echo)
	return r
}

func TestLoggingSkipsWebhookBodyCapture(t *testing.T) {
	var logs bytes.Buffer
	var seen []byte
	r := loggingRouter(&logs, &seen)

	payload := `{"id":"evt_1","type":"checkout.session.completed"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// the handler must see the delivery byte-exact, and the payload must
	// not leak into the log line
	assert.Equal(t, payload, string(seen))
	assert.NotContains(t, logs.String(), "req_body")
	assert.NotContains(t, logs.String(), "evt_1")
}

func TestLoggingCapturesAndRestoresJSONBody(t *testing.T) {
	var logs bytes.Buffer
	var seen []byte
	r := loggingRouter(&logs, &seen)

	payload := `{"name":"Ana","email":"ana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, string(seen))
	assert.Contains(t, logs.String(), "req_body")
	assert.Contains(t, logs.String(), "***redacted***")
	assert.NotContains(t, logs.String(), "ana@example.com")
}

func TestLoggingSkipMatchesRouteNotRawPath(t *testing.T) {
	// a raw path that merely contains the webhook segment still gets
	// captured: the skip keys on the registered route
	var logs bytes.Buffer
	var seen []byte
	r := loggingRouter(&logs, &seen)

	payload := `{"note":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/echo/webhooks/payments", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, string(seen))
	assert.Contains(t, logs.String(), "req_body")
}
