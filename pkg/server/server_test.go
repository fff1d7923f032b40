/*
File: server_test.go
Description: Tests for the dashboard server: page serving, the stats API,
health endpoint, websocket broadcast, and slow-client eviction.
*/

package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/output"
	"github.com/aflmon/aflmon/pkg/server"
	"github.com/aflmon/aflmon/pkg/stats"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestServer builds a server over a one-instance campaign fixture.
func newTestServer(t *testing.T) (*server.Server, string) {
	t.Helper()
	dir := t.TempDir()
	sub := filepath.Join(dir, "main01")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	content := fmt.Sprintf(`fuzzer_pid        : %d
execs_done        : 5000
execs_per_sec     : 250.00
corpus_count      : 40
bitmap_cvg        : 10.00%%
saved_crashes     : 1
afl_banner        : main01
`, os.Getpid())
	require.NoError(t, os.WriteFile(filepath.Join(sub, stats.StatsFileName), []byte(content), 0o644))

	m := monitor.New(monitor.Config{FindingsDir: dir}, quietLogger())
	return server.New(server.Config{Addr: "127.0.0.1:0", FindingsDir: dir}, m, quietLogger()), dir
}

func TestIndexServesDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "aflmon dashboard")
	assert.Contains(t, string(body), "/api/stats")
}

func TestStatsAPI(t *testing.T) {
	srv, dir := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// First call collects inline.
	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report output.JSONReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, dir, report.Metadata.FindingsDir)
	require.Len(t, report.Fuzzers, 1)
	assert.Equal(t, "main01", report.Fuzzers[0].Name)
	assert.Equal(t, int64(5000), report.Fuzzers[0].ExecsDone)
	assert.Equal(t, 1, report.Summary.AliveFuzzers)
}

func TestStatsAPICORS(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestPlotAPI(t *testing.T) {
	srv, dir := newTestServer(t)
	plot := `# relative_time, cycles_done, cur_item, corpus_count, pending_total, pending_favs, total_edges, saved_crashes, saved_hangs, max_depth, execs_per_sec, total_execs, edges_found
30, 0, 1, 12, 4, 1, 8000, 0, 0, 2, 250.00, 7500, 150
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main01", "plot_data"), []byte(plot), 0o644))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/plot/main01")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var points []stats.PlotPoint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	require.Len(t, points, 1)
	assert.Equal(t, int64(7500), points[0].TotalExecs)

	// An instance without plot_data yields an empty array, not an error.
	resp2, err := http.Get(ts.URL + "/api/plot/main01.nope")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, monitor.Version, health["version"])
}

func TestWebsocketReceivesBroadcast(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration races the Refresh below; give the hub a moment.
	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var health map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			return false
		}
		clients, _ := health["clients"].(float64)
		return clients >= 1
	}, 2*time.Second, 10*time.Millisecond)

	srv.Refresh(context.Background())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var report output.JSONReport
	require.NoError(t, json.Unmarshal(message, &report))
	require.Len(t, report.Fuzzers, 1)
	assert.Equal(t, "main01", report.Fuzzers[0].Name)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	// Give the listener a moment to start, then cancel.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
