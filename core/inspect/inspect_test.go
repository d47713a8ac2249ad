package inspect_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/inspect"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/router"
)

func def(name string) *component.Definition {
	return &component.Definition{Name: name}
}

func setup(t *testing.T, routes ...*route.Config) (*router.Router, *inspect.Inspector) {
	t.Helper()
	if len(routes) == 0 {
		routes = []*route.Config{
			{ID: "home", Path: []string{"home"}, Component: def("home"), Title: "Home"},
			{ID: "user", Path: []string{"users/:id"}, Component: def("user")},
		}
	}
	bus := event.NewBus()
	r, err := router.New(def("app"), routes, router.WithPublisher(event.NewPublisher(event.NewSyncTransport(bus))))
	require.NoError(t, err)

	ins := inspect.New(r, bus)
	t.Cleanup(ins.Close)
	return r, ins
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	_, ins := setup(t)
	rec := do(t, ins, http.MethodGet, "/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Routes []route.Entry `json:"routes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Routes, 2)
	assert.Equal(t, "users/:id", body.Routes[1].Path)
	assert.Equal(t, "Home", body.Routes[0].Title)
}

func TestRoutes_Strategy(t *testing.T) {
	t.Parallel()

	_, ins := setup(t, &route.Config{ID: "lazy", Path: []string{"lazy"}, Strategy: func(context.Context, route.StrategyRequest) (*component.Definition, error) {
		return def("lazy"), nil
	}})
	rec := do(t, ins, http.MethodGet, "/routes", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "lazy")
}

func TestLoadAndCurrent(t *testing.T) {
	t.Parallel()

	r, ins := setup(t)

	rec := do(t, ins, http.MethodGet, "/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"current":null}`, rec.Body.String())

	rec = do(t, ins, http.MethodPost, "/load", `{"url":"users/7"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Committed bool `json:"committed"`
		Current   struct {
			Path       string `json:"path"`
			Parameters []struct {
				RouteID string            `json:"route_id"`
				Params  map[string]string `json:"params"`
			} `json:"parameters"`
		} `json:"current"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Committed)
	assert.Equal(t, "users/7", resp.Current.Path)
	require.Len(t, resp.Current.Parameters, 1)
	assert.Equal(t, "user", resp.Current.Parameters[0].RouteID)
	assert.Equal(t, map[string]string{"id": "7"}, resp.Current.Parameters[0].Params)
	assert.Equal(t, "users/7", r.Current().Path)

	rec = do(t, ins, http.MethodGet, "/current", "")
	assert.Contains(t, rec.Body.String(), `"path":"users/7"`)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed body", `{"url":`, http.StatusBadRequest},
		{"unknown history", `{"url":"home","history":"sideways"}`, http.StatusBadRequest},
		{"unknown plan", `{"url":"home","plan":"merge"}`, http.StatusBadRequest},
		{"unknown route", `{"url":"nowhere"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ins := setup(t)
			rec := do(t, ins, http.MethodPost, "/load", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestLoad_StoppedRouter(t *testing.T) {
	t.Parallel()

	r, ins := setup(t)
	r.Stop()
	rec := do(t, ins, http.MethodPost, "/load", `{"url":"home"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEvents(t *testing.T) {
	t.Parallel()

	_, ins := setup(t)
	srv := httptest.NewServer(ins)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() event.Event {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var ev event.Event
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}

	assert.Equal(t, "Snapshot", read().Name)
	assert.Equal(t, 1, ins.Clients())

	res, err := http.Post(srv.URL+"/load", "application/json", bytes.NewBufferString(`{"url":"home"}`))
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, "NavigationStart", read().Name)
	end := read()
	assert.Equal(t, "NavigationEnd", end.Name)
	payload, ok := end.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "home", payload["url"])
	assert.Equal(t, "Home", payload["title"])

	ins.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
	require.Eventually(t, func() bool { return ins.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestEvents_WithoutBus(t *testing.T) {
	t.Parallel()

	r, err := router.New(def("app"), nil)
	require.NoError(t, err)
	ins := inspect.New(r, nil)
	defer ins.Close()

	rec := do(t, ins, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRun(t *testing.T) {
	t.Parallel()

	r, err := router.New(def("app"), nil)
	require.NoError(t, err)
	ins := inspect.New(r, nil, inspect.WithAddr("127.0.0.1:0"), inspect.WithShutdownTimeout(time.Second))
	defer ins.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ins.Run(ctx)() }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("inspector did not stop")
	}
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	_, err := inspect.Config{}.Options()
	assert.ErrorIs(t, err, inspect.ErrMissingAddress)

	r, err := router.New(def("app"), nil)
	require.NoError(t, err)
	ins, err := inspect.NewFromConfig(inspect.Config{Addr: "127.0.0.1:0", ClientBuffer: 4, LoadRate: 1, LoadBurst: 1}, r, nil)
	require.NoError(t, err)
	defer ins.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, ins, http.MethodPost, "/load", `{"url":"missing"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, ins, http.MethodPost, "/load", `{"url":"missing"}`).Code)
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	r, err := router.New(def("app"), nil)
	require.NoError(t, err)

	plain := inspect.New(r, nil)
	defer plain.Close()
	assert.Equal(t, http.StatusNotFound, do(t, plain, http.MethodGet, "/metrics", "").Code)

	ins := inspect.New(r, nil, inspect.WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})))
	defer ins.Close()
	rec := do(t, ins, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	var failing error
	r, err := router.New(def("app"), nil)
	require.NoError(t, err)
	ins := inspect.New(r, nil, inspect.WithHealthChecks(func(context.Context) error { return failing }))
	defer ins.Close()

	rec := do(t, ins, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	rec = do(t, ins, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())

	failing = assert.AnError
	assert.Equal(t, http.StatusServiceUnavailable, do(t, ins, http.MethodGet, "/health/ready", "").Code)

	failing = nil
	r.Stop()
	assert.Equal(t, http.StatusServiceUnavailable, do(t, ins, http.MethodGet, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(t, ins, http.MethodGet, "/health/live", "").Code)
}
