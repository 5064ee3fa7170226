package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/friendsvc/api/rest"
	"github.com/kasuganosora/friendsvc/api/sse"
	apiws "github.com/kasuganosora/friendsvc/api/ws"
	"github.com/kasuganosora/friendsvc/audit"
	"github.com/kasuganosora/friendsvc/events"
	mw "github.com/kasuganosora/friendsvc/middleware"
	"github.com/kasuganosora/friendsvc/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// TestServer wraps a real HTTP server with every component wired together.
type TestServer struct {
	DB     *gorm.DB
	Pub    *events.Publisher
	Audit  *audit.Service
	Server *httptest.Server
	URL    string // http://127.0.0.1:<port>
	WSURL  string // ws://127.0.0.1:<port>/ws
}

// NewTestServer creates a fully wired server for integration testing.
// It mirrors the dependency wiring in main.go.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// ---- Infrastructure ----
	st, db := testutil.SetupTestStore(t)
	logger := zap.NewNop()
	pub := events.NewPublisher(testutil.SetupTestBroker(t), logger)
	auditSvc := audit.New(db, logger)

	// ---- Gin HTTP Server ----
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(1000), 2000))
	r.Use(mw.Audit(auditSvc))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apirest.Register(r, apirest.NewHandlers(st, pub), mw.IPWhitelist([]string{"127.0.0.1", "::1"}))
	r.GET("/events", sse.NewHandler(pub, logger).ServeSSE)
	r.GET("/ws", apiws.NewHandler(pub, nil, logger).ServeWS)

	server := httptest.NewServer(r)
	url := server.URL

	return &TestServer{
		DB:     db,
		Pub:    pub,
		Audit:  auditSvc,
		Server: server,
		URL:    url,
		WSURL:  "ws" + url[len("http"):] + "/ws",
	}
}

// Close shuts down the server and flushes pending audit entries.
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Audit.Stop(context.Background())
}

// --- HTTP helpers ---

// Do sends a request with an optional JSON body.
func (ts *TestServer) Do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// PostJSON sends a POST request with a JSON body.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	return ts.Do(t, http.MethodPost, path, body)
}

// Get sends a GET request.
func (ts *TestServer) Get(t *testing.T, path string) *http.Response {
	t.Helper()
	return ts.Do(t, http.MethodGet, path, nil)
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// CreateUser registers a user and returns its id.
func (ts *TestServer) CreateUser(t *testing.T, email string) int64 {
	t.Helper()
	resp := ts.PostJSON(t, "/users/", map[string]string{"email": email, "password": "pass1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]interface{}
	ReadJSON(t, resp, &result)
	return int64(result["id"].(float64))
}
