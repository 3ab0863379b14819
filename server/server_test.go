package server

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

	"github.com/lixenwraith/sightgrid/scene"
	"github.com/lixenwraith/sightgrid/service"
	"github.com/lixenwraith/sightgrid/world"
)

const pillarScene = `
name: pillar
grid:
  width: 5
  height: 5
  cell_width: 1
  workers: 1
obstacles:
  - kind: box
    min: [-0.5, -0.5]
    max: [0.5, 0.5]
    top: 3
`

type staticSource struct{ w *world.World }

func (s staticSource) Current() *world.World { return s.w }

func pillarWorld(t *testing.T) *world.World {
	t.Helper()
	f, err := scene.Parse([]byte(pillarScene))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	w, err := world.Build(context.Background(), f)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return w
}

func newTestRouter(t *testing.T, w *world.World) http.Handler {
	t.Helper()
	return NewRouter(DefaultConfig(), NewHandler(staticSource{w}))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, pillarWorld(t)), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["status"]; got != "ok" {
		t.Errorf("Expected status ok, got %q", got)
	}

	rec = do(t, newTestRouter(t, nil), http.MethodGet, "/health", "")
	if got := decode[map[string]string](t, rec)["status"]; got != "loading" {
		t.Errorf("Expected status loading without a world, got %q", got)
	}
}

func TestGrid(t *testing.T) {
	rec := do(t, newTestRouter(t, pillarWorld(t)), http.MethodGet, "/grid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	got := decode[map[string]any](t, rec)
	if got["scene"] != "pillar" || got["cols"] != 5.0 || got["nodes"] != 25.0 {
		t.Errorf("Unexpected grid stats %v", got)
	}
	if got["upright_edges"].(float64) <= 0 {
		t.Errorf("Expected upright edges, got %v", got["upright_edges"])
	}
}

func TestPath(t *testing.T) {
	h := newTestRouter(t, pillarWorld(t))

	rec := do(t, h, http.MethodPost, "/path", `{"start":[-2,0],"goal":[2,0]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[pathResponse](t, rec)
	if !resp.Found || resp.ID == "" {
		t.Fatalf("Expected found path with id, got %+v", resp)
	}
	if last := resp.Waypoints[len(resp.Waypoints)-1]; last != [2]float64{2, 0} {
		t.Errorf("Expected path to end at goal, got %v", last)
	}
	if resp.Cost <= 4 {
		t.Errorf("Expected detour longer than 4 around the pillar, got %v", resp.Cost)
	}

	rec = do(t, h, http.MethodPost, "/path", `{"start":[-2,0],"goal":[2,0],"max_path_length":3}`)
	if resp := decode[pathResponse](t, rec); resp.Found || len(resp.Waypoints) != 0 {
		t.Errorf("Expected no path under a tight length bound, got %+v", resp)
	}
}

func TestPath_Errors(t *testing.T) {
	h := newTestRouter(t, pillarWorld(t))

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"start":`},
		{"unknown field", `{"start":[0,0],"goal":[1,1],"speed":3}`},
		{"bad mode", `{"start":[0,0],"goal":[1,1],"mode":"hex"}`},
		{"repeat is websocket only", `{"start":[0,0],"goal":[1,1],"repeat":true,"repeat_ms":10}`},
		{"repeat_ms alone", `{"start":[0,0],"goal":[1,1],"repeat_ms":10}`},
	}
	for _, tt := range tests {
		if rec := do(t, h, http.MethodPost, "/path", tt.body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
		}
	}

	if rec := do(t, newTestRouter(t, nil), http.MethodPost, "/path", `{}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a world, got %d", rec.Code)
	}
}

func TestVisibility(t *testing.T) {
	h := newTestRouter(t, pillarWorld(t))

	tests := []struct {
		query string
		want  bool
	}{
		{"ax=-2&az=0&bx=2&bz=0&height=upright", false},
		{"ax=-2&az=-2&bx=2&bz=-2&height=upright", true},
		{"ax=-2&az=-2&bx=2&bz=-2&height=crouch", true},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, "/visibility?"+tt.query, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.query, rec.Code)
		}
		if got := decode[visibilityResponse](t, rec); got.Visible != tt.want {
			t.Errorf("%s: expected visible=%v, got %+v", tt.query, tt.want, got)
		}
	}

	if rec := do(t, h, http.MethodGet, "/visibility?ax=1&az=x&bx=0&bz=0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad coordinate, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/visibility?ax=0&az=0&bx=1&bz=1&height=prone", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad height, got %d", rec.Code)
	}
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	return conn
}

func TestWebSocket_SingleAndRepeat(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, pillarWorld(t)))
	defer srv.Close()
	conn := dialWS(t, srv)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"start":[-2,-2],"goal":[2,2]}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var first pathResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !first.Found || first.Session == "" {
		t.Errorf("Expected found path with session id, got %+v", first)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"start":[-2,0],"goal":[2,0],"repeat":true,"repeat_ms":10}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		var resp pathResponse
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
		if resp.Session != first.Session {
			t.Errorf("Expected session %s, got %s", first.Session, resp.Session)
		}
		ids[resp.ID] = true
	}
	if len(ids) != 3 {
		t.Errorf("Expected 3 distinct repeated replies, got %d", len(ids))
	}
}

func TestWebSocket_BadRequest(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, pillarWorld(t)))
	defer srv.Close()
	conn := dialWS(t, srv)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	frames := []string{
		`not json`,
		`{"start":[0,0],"goal":[1,1],"speed":3}`,
		`{"start":[0,0],"goal":[1,1],"mode":"hex"}`,
	}
	for _, frame := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		var resp map[string]any
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if resp["error"] == nil || resp["session"] == "" {
			t.Errorf("%s: expected error reply with session, got %v", frame, resp)
		}
		if _, ok := resp["found"]; ok {
			t.Errorf("%s: expected no path result, got %v", frame, resp)
		}
	}
}

func TestService_Lifecycle(t *testing.T) {
	hub := service.NewHub()
	if err := hub.Register(world.NewStaticService(pillarWorld(t))); err != nil {
		t.Fatalf("Register world failed: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	svc := NewService(cfg)
	if err := hub.Register(svc); err != nil {
		t.Fatalf("Register http failed: %v", err)
	}

	if err := hub.InitAll(hub); err != nil {
		t.Fatalf("InitAll failed: %v", err)
	}
	if err := hub.StartAll(); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	defer hub.StopAll()

	resp, err := http.Post("http://"+svc.Addr()+"/path", "application/json",
		bytes.NewBufferString(`{"start":[-2,-2],"goal":[2,-2]}`))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	var got pathResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !got.Found || got.Scene != "pillar" {
		t.Errorf("Expected found path on pillar scene, got %+v", got)
	}

	hub.StopAll()
	if svc.Addr() != "" {
		t.Error("Expected listener released after stop")
	}
}

func TestService_InitWithoutHub(t *testing.T) {
	if err := NewService(DefaultConfig()).Init(); err == nil {
		t.Error("Expected Init without hub to fail")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SIGHTGRID_ADDR", ":9999")
	t.Setenv("SIGHTGRID_READ_TIMEOUT", "3s")
	t.Setenv("SIGHTGRID_WRITE_TIMEOUT", "garbage")
	t.Setenv("SIGHTGRID_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SIGHTGRID_SCENE", "arena.yaml")
	t.Setenv("SIGHTGRID_WATCH", "true")

	cfg := LoadConfig()
	if cfg.Addr != ":9999" || cfg.ReadTimeout != 3*time.Second {
		t.Errorf("Expected env overrides, got %+v", cfg)
	}
	if cfg.WriteTimeout != DefaultConfig().WriteTimeout {
		t.Errorf("Expected default write timeout for bad value, got %v", cfg.WriteTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("Expected two origins, got %v", cfg.CORSOrigins)
	}
	if cfg.ScenePath != "arena.yaml" || !cfg.Watch {
		t.Errorf("Expected scene settings from env, got %+v", cfg)
	}
}
