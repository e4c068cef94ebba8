package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/floorview/pkg/config"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/floorplan/viewer"
	"github.com/matzehuels/floorview/pkg/source"
)

var ground = floorplan.Floor{
	ID:   "ground",
	Name: "Ground floor",
	Blocks: []floorplan.RoomBlock{
		{ID: "kitchen", Name: "Kitchen", Rect: geom.Rect{X: 0, Y: 0, Width: 100, Height: 50}},
		{ID: "hall", Name: "Hall", Rect: geom.Rect{X: 100, Y: 0, Width: 100, Height: 50}},
	},
}

type fixture struct {
	srv  *Server
	http *httptest.Server
	mem  *realtime.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := realtime.NewMemory()
	cfg := config.Default()
	s := New(cfg, source.NewStatic(ground), mem, log.New(io.Discard))
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		ts.Close()
		s.Sessions().Close()
	})
	return &fixture{srv: s, http: ts, mem: mem}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.http.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := f.http.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func (f *fixture) createSession(t *testing.T, floorID string) sessionResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/v1/sessions", createSessionRequest{
		FloorID:  floorID,
		Viewport: geom.Size{Width: 800, Height: 600},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d", resp.StatusCode)
	}
	return decodeBody[sessionResponse](t, resp)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "ground")

	if sess.ID == "" || sess.FloorID != "ground" {
		t.Fatalf("session = %+v", sess)
	}
	fr := sess.Frame
	if fr.ZoomPercent != 100 || fr.ShowReset || fr.Empty || len(fr.Blocks) != 2 {
		t.Errorf("frame = %+v", fr)
	}
	// 200x50 floor centered in 800x600 at scale 1.
	if got := fr.Blocks[0].Rect; got.X != 300 || got.Y != 275 {
		t.Errorf("kitchen on screen at %+v, want (300,275)", got)
	}
}

func TestCreateSessionErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"bad floor id", createSessionRequest{FloorID: "a/b", Viewport: geom.Size{Width: 1, Height: 1}}, http.StatusBadRequest},
		{"no viewport", createSessionRequest{FloorID: "ground"}, http.StatusBadRequest},
		{"unknown field", map[string]any{"floor": "ground"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/api/v1/sessions", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestUnknownFloorShowsEditorAction(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "attic")
	if !sess.Frame.Empty {
		t.Fatalf("frame for unknown floor not empty: %+v", sess.Frame)
	}

	base := "/api/v1/sessions/" + sess.ID
	f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "start", Contacts: []geom.Point{{X: 10, Y: 10}}})
	resp := f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "end"})
	got := decodeBody[sessionResponse](t, resp)
	if len(got.Intents) != 1 || got.Intents[0] != (viewer.Intent{Kind: viewer.IntentEditor, Target: "attic"}) {
		t.Errorf("intents = %+v", got.Intents)
	}
}

func TestTapOpensRoom(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "ground")
	base := "/api/v1/sessions/" + sess.ID

	f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "start", Contacts: []geom.Point{{X: 350, Y: 300}}})
	resp := f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "end"})
	got := decodeBody[sessionResponse](t, resp)
	if len(got.Intents) != 1 || got.Intents[0] != (viewer.Intent{Kind: viewer.IntentRoom, Target: "kitchen"}) {
		t.Errorf("intents = %+v", got.Intents)
	}

	// A tap outside every room opens nothing.
	f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "start", Contacts: []geom.Point{{X: 10, Y: 10}}})
	f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "end"})

	resp = f.do(t, http.MethodGet, base+"/intents", nil)
	if again := decodeBody[[]viewer.Intent](t, resp); len(again) != 0 {
		t.Errorf("intents not drained: %+v", again)
	}
}

func TestPanZoomReset(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "ground")
	base := "/api/v1/sessions/" + sess.ID

	f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "start", Contacts: []geom.Point{{X: 100, Y: 100}}})
	resp := f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "move", Contacts: []geom.Point{{X: 130, Y: 115}}})
	got := decodeBody[sessionResponse](t, resp)
	if off := got.Frame.Transform.Offset; off.X != 330 || off.Y != 290 {
		t.Errorf("offset after pan = %+v, want (330,290)", off)
	}
	if !got.Frame.ShowReset {
		t.Error("reset control hidden after pan")
	}
	f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "end"})

	resp = f.do(t, http.MethodPost, base+"/zoom", zoomRequest{Factor: 5})
	if got := decodeBody[sessionResponse](t, resp); got.Frame.ZoomPercent != 200 {
		t.Errorf("zoom percent = %d, want 200 (clamped)", got.Frame.ZoomPercent)
	}

	resp = f.do(t, http.MethodPost, base+"/pan", geom.Point{X: -10, Y: 0})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("pan status = %d", resp.StatusCode)
	}

	resp = f.do(t, http.MethodPost, base+"/reset", nil)
	got = decodeBody[sessionResponse](t, resp)
	if got.Frame.ShowReset || got.Frame.ZoomPercent != 100 {
		t.Errorf("frame after reset = %+v", got.Frame)
	}

	if resp := f.do(t, http.MethodPost, base+"/zoom", zoomRequest{Direction: "sideways"}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad zoom status = %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodPost, base+"/input", inputRequest{Phase: "hover"}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad phase status = %d", resp.StatusCode)
	}
}

func TestResizeRecenters(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "ground")

	resp := f.do(t, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/resize", geom.Size{Width: 1000, Height: 600})
	got := decodeBody[sessionResponse](t, resp)
	if got.Frame.Viewport.Width != 1000 || got.Frame.Blocks[0].Rect.X != 400 {
		t.Errorf("frame after resize = %+v", got.Frame)
	}
}

func TestPublishedPatchReachesSession(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "ground")

	resp := f.do(t, http.MethodPost, "/api/v1/floors/ground/patches", map[string]any{"roomId": "hall", "lightOn": true})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("publish status = %d", resp.StatusCode)
	}

	resp = f.do(t, http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	got := decodeBody[sessionResponse](t, resp)
	if !got.Frame.Blocks[1].LightOn || got.Frame.Blocks[0].LightOn {
		t.Errorf("blocks after patch = %+v", got.Frame.Blocks)
	}

	if resp := f.do(t, http.MethodPost, "/api/v1/floors/ground/patches", map[string]any{"roomId": "hall"}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty patch status = %d", resp.StatusCode)
	}
}

func TestSVG(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "ground")

	resp := f.do(t, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/svg", nil)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Kitchen") || !strings.Contains(string(body), "100%") {
		t.Errorf("svg missing content:\n%s", body)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "ground")
	path := "/api/v1/sessions/" + sess.ID

	if resp := f.do(t, http.MethodDelete, path, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if f.mem.Subscribers("ground") != 0 {
		t.Error("unmounted session still subscribed")
	}
	resp := f.do(t, http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
	if e := decodeBody[errorResponse](t, resp); e.Code != "SESSION_NOT_FOUND" {
		t.Errorf("error code = %q", e.Code)
	}
}

func TestFloors(t *testing.T) {
	f := newFixture(t)

	ids := decodeBody[[]string](t, f.do(t, http.MethodGet, "/api/v1/floors", nil))
	if len(ids) != 1 || ids[0] != "ground" {
		t.Errorf("floors = %v", ids)
	}
	fl := decodeBody[floorplan.Floor](t, f.do(t, http.MethodGet, "/api/v1/floors/ground", nil))
	if len(fl.Blocks) != 2 {
		t.Errorf("floor = %+v", fl)
	}
	if resp := f.do(t, http.MethodGet, "/healthz", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestStreamRelaysPatches(t *testing.T) {
	f := newFixture(t)
	u := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/api/v1/floors/ground/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for f.mem.Subscribers("ground") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("relay never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := f.mem.Publish(context.Background(), "ground", realtime.LightPatch("kitchen", true)); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	p, err := realtime.Decode(data)
	if err != nil || p.RoomID != "kitchen" || p.LightOn == nil || !*p.LightOn {
		t.Errorf("relayed patch = %+v, %v", p, err)
	}
}

func TestStatusFor(t *testing.T) {
	if statusFor("SOMETHING_ELSE") != http.StatusInternalServerError {
		t.Error("unknown code should map to 500")
	}
	if statusFor("FLOOR_NOT_FOUND") != http.StatusNotFound {
		t.Error("FLOOR_NOT_FOUND should map to 404")
	}
}
