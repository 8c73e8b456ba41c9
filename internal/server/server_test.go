package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnunamak/copilotmeter/internal/display"
)

type stubRefresher struct {
	state display.State
	ok    bool
	calls int
}

func (s *stubRefresher) Refresh(context.Context) (display.State, bool) {
	s.calls++
	return s.state, s.ok
}

func usageState(used float64) display.State {
	return display.State{
		Mode: display.ModeUsage,
		Usage: &display.Usage{
			PlanLabel: "Pro",
			Premium:   display.Meter{UsedPercent: used, Level: display.LevelFor(used)},
			Chat:      display.Meter{Unlimited: true},
			Level:     display.LevelFor(used),
		},
	}
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	srv := New(&StateHolder{}, &stubRefresher{}, nil)
	rec := do(t, srv.Router(), http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetState_BeforeFirstRefresh(t *testing.T) {
	srv := New(&StateHolder{}, &stubRefresher{}, nil)
	rec := do(t, srv.Router(), http.MethodGet, "/api/state")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetState(t *testing.T) {
	holder := &StateHolder{}
	holder.Show(usageState(72))
	srv := New(holder, &stubRefresher{}, nil)

	rec := do(t, srv.Router(), http.MethodGet, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "usage", body["mode"])
	assert.Equal(t, "72%", body["label"])
	usage := body["usage"].(map[string]any)
	assert.Equal(t, "Pro", usage["plan_label"])
	assert.Equal(t, "high", usage["level"])
}

func TestPostRefresh(t *testing.T) {
	ref := &stubRefresher{state: display.NoCredentials(), ok: true}
	srv := New(&StateHolder{}, ref, nil)

	rec := do(t, srv.Router(), http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ref.calls)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "setup", body["mode"])
	assert.Equal(t, "--", body["label"])
}

func TestPostRefresh_Abandoned(t *testing.T) {
	srv := New(&StateHolder{}, &stubRefresher{ok: false}, nil)
	rec := do(t, srv.Router(), http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRefreshRequiresPost(t *testing.T) {
	srv := New(&StateHolder{}, &stubRefresher{}, nil)
	rec := do(t, srv.Router(), http.MethodGet, "/api/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := New(&StateHolder{}, &stubRefresher{}, nil)
	rec := do(t, srv.Router(), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
