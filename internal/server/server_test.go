package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/logging"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/physics"
	"github.com/san-kum/motiontwin/internal/planner"
	"github.com/san-kum/motiontwin/internal/telemetry"
)

type stubPlanner struct {
	err   error
	calls int
}

func (s *stubPlanner) Plan(ctx context.Context, from, to dynamo.Vec3) (*planner.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &planner.Result{From: from, To: to}, nil
}

func (s *stubPlanner) PlanPathParallel(ctx context.Context, points []dynamo.Vec3, limit int) (*planner.PathResult, error) {
	return nil, s.err
}

func (s *stubPlanner) Model() physics.Model                 { return physics.DefaultModel() }
func (s *stubPlanner) Constraints() optim.MotionConstraints { return optim.DefaultConstraints() }

func newTestServer(t *testing.T, p Planner, opts ...Option) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewHandler(p, opts...))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func realPlanner(t *testing.T, opts ...planner.Option) *planner.MotionPlanner {
	t.Helper()
	p, err := planner.New(physics.DefaultModel(), optim.DefaultConstraints(), opts...)
	require.NoError(t, err)
	return p
}

func TestPlan(t *testing.T) {
	ts := newTestServer(t, realPlanner(t))

	resp := post(t, ts.URL+"/api/plan", `{"from":[0,0,0],"to":[100,0,0]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var res planner.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, dynamo.Vec3{100, 0, 0}, res.To)
	require.NotNil(t, res.Profile)
	assert.Equal(t, optim.ShapeTrapezoidal, res.Profile.Shape)
	assert.Nil(t, res.Trace, "trace is opt-in")
	assert.GreaterOrEqual(t, res.Quality.Overall, 0.0)
	assert.LessOrEqual(t, res.Quality.Overall, 100.0)
}

func TestPlan_WithTrace(t *testing.T) {
	ts := newTestServer(t, realPlanner(t))

	resp := post(t, ts.URL+"/api/plan?trace=true", `{"from":[0,0,0],"to":[10,0,0]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res planner.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.NotNil(t, res.Trace)
	assert.Greater(t, res.Trace.Len(), 1)
}

func TestPlan_BadRequests(t *testing.T) {
	stub := &stubPlanner{}
	ts := newTestServer(t, stub)

	for _, body := range []string{
		`not json`,
		`{"from":[0,0,0]}`,
		`{"from":[0,0,0],"to":[1,2,3],"speed":5}`,
		`{"from":[0,0,0],"to":"origin"}`,
	} {
		resp := post(t, ts.URL+"/api/plan", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

		var e errorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		assert.NotEmpty(t, e.Error)
	}
	assert.Zero(t, stub.calls, "invalid bodies never reach the planner")
}

func TestPlan_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: pose", dynamo.ErrInput), http.StatusBadRequest},
		{fmt.Errorf("%w: limits", dynamo.ErrConfig), http.StatusBadRequest},
		{fmt.Errorf("segment 0: %w", dynamo.ErrInvalidState), http.StatusUnprocessableEntity},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		ts := newTestServer(t, &stubPlanner{err: tt.err})
		resp := post(t, ts.URL+"/api/plan", `{"from":[0,0,0],"to":[1,0,0]}`)
		assert.Equal(t, tt.want, resp.StatusCode, tt.err.Error())
	}
}

func TestPath(t *testing.T) {
	ts := newTestServer(t, realPlanner(t), WithPathLimit(2))

	resp := post(t, ts.URL+"/api/path", `{"points":[[0,0,0],[20,0,0],[20,20,0]]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var path planner.PathResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&path))
	require.Len(t, path.Segments, 2)
	assert.LessOrEqual(t, path.Min, path.Average)
	assert.LessOrEqual(t, path.Average, path.Max)
	for _, seg := range path.Segments {
		assert.Nil(t, seg.Trace)
	}
}

func TestGetModel(t *testing.T) {
	ts := newTestServer(t, &stubPlanner{})

	resp, err := http.Get(ts.URL + "/api/model")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m ModelResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Equal(t, physics.DefaultModel(), m.Model)
	assert.Equal(t, optim.DefaultConstraints(), m.Constraints)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := telemetry.New(reg)
	require.NoError(t, err)

	ts := newTestServer(t, realPlanner(t, planner.WithTelemetry(rec)), WithMetrics(reg))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	post(t, ts.URL+"/api/plan", `{"from":[0,0,0],"to":[5,0,0]}`)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "motiontwin_plans_total")
}

func TestMetricsDisabled(t *testing.T) {
	ts := newTestServer(t, &stubPlanner{})
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRun_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, "127.0.0.1:0", NewHandler(&stubPlanner{}), logging.NewNop()) }()

	cancel()
	assert.NoError(t, <-done)
}
