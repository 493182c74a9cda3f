package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp), w.Body.String())
	return resp
}

func mountTestController(rs *RouterService) {
	ctrl := NewRESTController("TestController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "ip", func(ctx *RequestContext) *ServiceResult {
			return OKResult(ctx.ClientIP(), "")
		})

		rs.AddPostHandler(c, nil, "echo", func(ctx *RequestContext) *ServiceResult {
			var payload map[string]any
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				return BadRequestResult("bad", nil)
			}
			return OKResult(payload, "ok")
		})

		rs.AddPostHandler(c, nil, "panic", func(*RequestContext) *ServiceResult {
			panic("boom")
		})

		rs.AddPostHandler(c, rs.RateLimiterFactory().CreateRateLimiter(1, time.Minute), "limited", func(*RequestContext) *ServiceResult {
			return OKResult(nil, "ok")
		})
	})

	rs.MountController(ctrl)
}

func newTestRouterService(t *testing.T) *RouterService {
	t.Helper()

	logger := log.NewLoggerWithWriter(io.Discard, nil)
	rs := CreateRouterService(logger, nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	t.Cleanup(rs.Cleanup)
	return rs
}

func serve(rs *RouterService, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func TestTrustedProxies_DisabledByDefault(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := serve(rs, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
	assert.JSONEq(t, `"10.0.0.2"`, string(resp.Data))
}

func TestTrustedProxies_StarTrustsForwardedFor(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "*")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := serve(rs, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `"1.1.1.1"`, string(decodeEnvelope(t, w).Data))
}

func TestMaxBodySize_Returns413(t *testing.T) {
	t.Setenv("MAX_REQUEST_BODY_BYTES", "10")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(bytes.Repeat([]byte{'a'}, 50)))
	req.Header.Set("Content-Type", "application/json")

	w := serve(rs, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestWrongMethod_Returns405Envelope(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/echo", nil))

	require.Equal(t, http.StatusMethodNotAllowed, w.Code, w.Body.String())
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Method not allowed", resp.Error)
}

func TestUnknownRoute_Returns404Envelope(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decodeEnvelope(t, w).Error)
}

func TestPanic_RecoveredAsInternalServerError(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodPost, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeEnvelope(t, w).Error)

	// The engine keeps serving after a panic.
	w = serve(rs, httptest.NewRequest(http.MethodGet, "/ip", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerRateLimit_Returns429(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	first := serve(rs, httptest.NewRequest(http.MethodPost, "/limited", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := serve(rs, httptest.NewRequest(http.MethodPost, "/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.False(t, decodeEnvelope(t, second).Success)

	// Other routes use the global limiter and are unaffected.
	assert.Equal(t, http.StatusOK, serve(rs, httptest.NewRequest(http.MethodGet, "/ip", nil)).Code)
}

func TestCorrelationID_EchoedOrGenerated(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	assert.Equal(t, "abc-123", serve(rs, req).Header().Get("X-Correlation-ID"))

	assert.NotEmpty(t, serve(rs, httptest.NewRequest(http.MethodGet, "/ip", nil)).Header().Get("X-Correlation-ID"))
}

func TestServiceResult_ToJSON(t *testing.T) {
	ok := OKResult(map[string]int{"n": 1}, "done").ToJSON()
	assert.Equal(t, true, ok["success"])
	assert.Equal(t, "done", ok["message"])
	assert.NotContains(t, ok, "error")

	bare := OKResult(nil, "").ToJSON()
	assert.NotContains(t, bare, "message")
	assert.NotContains(t, bare, "data")

	bad := BadRequestResult("Please provide a valid email address", nil).ToJSON()
	assert.Equal(t, false, bad["success"])
	assert.Equal(t, "Please provide a valid email address", bad["error"])
	assert.NotContains(t, bad, "data")
}

func TestNormalizePath(t *testing.T) {
	root := NewRESTController("root", "/", nil)
	api := NewRESTController("api", "api", nil)

	assert.Equal(t, "/", normalizePath(root, ""))
	assert.Equal(t, "/health", normalizePath(root, "health"))
	assert.Equal(t, "/api/submit", normalizePath(api, "submit"))
	assert.Equal(t, "/api/admin/emails", normalizePath(api, "admin/emails/"))
}

func TestMetricsEndpoint_CountsRequests(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "true")
	rs := newTestRouterService(t)
	mountTestController(rs)

	serve(rs, httptest.NewRequest(http.MethodGet, "/ip", nil))

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/ip",status="200"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	rs := newTestRouterService(t)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotNil(t, rs.MetricsRegisterer())
}
