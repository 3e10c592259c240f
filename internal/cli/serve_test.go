package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sldlayout/pkg/cache"
	"github.com/matzehuels/sldlayout/pkg/observability"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/pipeline"
	"github.com/matzehuels/sldlayout/pkg/sld/sldtest"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(c, nil, logger)
	metrics := observability.NewPrometheusHooks(nil)
	runner.Hooks = metrics

	srv := httptest.NewServer(newServer(runner, metrics, params.Default(), logger))
	t.Cleanup(func() {
		srv.Close()
		runner.Close()
	})
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestServerHealth(t *testing.T) {
	srv := startTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
}

func TestServerLayout(t *testing.T) {
	srv := startTestServer(t)

	first := post(t, srv.URL+"/v1/layout", sldtest.Topology)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "application/json", first.Header.Get("Content-Type"))
	assert.Equal(t, "miss", first.Header.Get("X-Cache"))
	assert.NotEmpty(t, first.Header.Get("X-Run-ID"))

	var layout map[string]any
	require.NoError(t, json.Unmarshal([]byte(readBody(t, first)), &layout))
	assert.Equal(t, "substation", layout["id"])
	assert.Len(t, layout["panels"], 1)

	second := post(t, srv.URL+"/v1/layout", sldtest.Topology)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "hit", second.Header.Get("X-Cache"))

	fresh := post(t, srv.URL+"/v1/layout?refresh=true", sldtest.Topology)
	require.Equal(t, http.StatusOK, fresh.StatusCode)
	assert.Equal(t, "miss", fresh.Header.Get("X-Cache"))
}

func TestServerLayoutErrors(t *testing.T) {
	srv := startTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"invalid json", "/v1/layout", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty body", "/v1/layout", ``, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown strategy", "/v1/layout?strategy=random", sldtest.Topology, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown format", "/v1/dot?format=gif", sldtest.Topology, http.StatusUnprocessableEntity, "UNSUPPORTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestServerErrorElement(t *testing.T) {
	srv := startTestServer(t)
	body := strings.Replace(sldtest.Topology, `{"id": "L1", "kind": "feeder"}`, `{"id": "L 1", "kind": "feeder"}`, 1)

	resp := post(t, srv.URL+"/v1/layout", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "INVALID_INPUT", e.Code)
	assert.Equal(t, "L 1", e.Element)
}

func TestServerDOT(t *testing.T) {
	srv := startTestServer(t)

	resp := post(t, srv.URL+"/v1/dot?format=dot&detailed=true", sldtest.Topology)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))

	body := readBody(t, resp)
	assert.True(t, strings.HasPrefix(body, "graph G {"))
	assert.Contains(t, body, `subgraph "cluster_VL1"`)
	assert.Contains(t, body, `Serial(`)
}

func TestServerMetrics(t *testing.T) {
	srv := startTestServer(t)
	readBody(t, post(t, srv.URL+"/v1/layout", sldtest.Topology))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, `sldlayout_stage_duration_seconds_count{stage="cells"} 1`)
	assert.Contains(t, body, `sldlayout_http_requests_total{method="POST",route="/v1/layout",status="200"} 1`)
}
